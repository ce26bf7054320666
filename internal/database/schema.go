package database

import "fmt"

// Esquema del espejo relacional. El espejo es una vista derivada del estado
// en Drive/Sheets: se puede recrear desde cero en cualquier momento con una
// sincronización completa.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS clients (
		id BIGSERIAL PRIMARY KEY,
		nombre TEXT NOT NULL,
		cedula TEXT NOT NULL UNIQUE,
		fecha TEXT NOT NULL DEFAULT '',
		folder_url TEXT,
		folder_id TEXT,
		has_folder BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS documents (
		id BIGSERIAL PRIMARY KEY,
		client_id BIGINT NOT NULL REFERENCES clients(id) ON DELETE CASCADE,
		type TEXT NOT NULL,
		label TEXT NOT NULL DEFAULT '',
		folder_exists BOOLEAN NOT NULL DEFAULT FALSE,
		has_files BOOLEAN NOT NULL DEFAULT FALSE,
		file_count INTEGER NOT NULL DEFAULT 0,
		folder_id TEXT,
		folder_url TEXT,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (client_id, type)
	)`,
	`CREATE TABLE IF NOT EXISTS files (
		id BIGSERIAL PRIMARY KEY,
		document_id BIGINT NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		file_id TEXT NOT NULL,
		url TEXT NOT NULL DEFAULT '',
		download_url TEXT,
		size BIGINT,
		last_modified TIMESTAMPTZ,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS sync_status (
		id BIGSERIAL PRIMARY KEY,
		last_sync TIMESTAMPTZ NOT NULL,
		status TEXT NOT NULL,
		total_clients INTEGER NOT NULL DEFAULT 0,
		total_documents INTEGER NOT NULL DEFAULT 0,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_documents_client_id ON documents(client_id)`,
	`CREATE INDEX IF NOT EXISTS idx_files_document_id ON files(document_id)`,
	`CREATE INDEX IF NOT EXISTS idx_clients_nombre ON clients(LOWER(nombre))`,
}

// EnsureSchema crea las tablas del espejo si no existen.
func (db *DB) EnsureSchema() error {
	for _, stmt := range schemaStatements {
		if _, err := db.ExecWithTimeout(stmt); err != nil {
			return fmt.Errorf("error creating mirror schema: %w", err)
		}
	}
	return nil
}
