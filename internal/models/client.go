package models

import "time"

// Client representa un cliente de crédito espejado desde el registro de
// Google Sheets. La cédula es el identificador único de negocio.
type Client struct {
	ID        int64     `json:"id" db:"id"`
	Nombre    string    `json:"nombre" db:"nombre"`
	Cedula    string    `json:"cedula" db:"cedula"`
	Fecha     string    `json:"fecha" db:"fecha"`
	FolderURL *string   `json:"folder_url,omitempty" db:"folder_url"`
	FolderID  *string   `json:"folder_id,omitempty" db:"folder_id"`
	HasFolder bool      `json:"has_folder" db:"has_folder"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Document representa el estado de un tipo de documento para un cliente.
// Invariante: a lo sumo una fila por (client_id, type).
type Document struct {
	ID        int64        `json:"id" db:"id"`
	ClientID  int64        `json:"client_id" db:"client_id"`
	Type      DocumentType `json:"type" db:"type"`
	Label     string       `json:"label" db:"label"`
	Exists    bool         `json:"exists" db:"folder_exists"`
	HasFiles  bool         `json:"has_files" db:"has_files"`
	FileCount int          `json:"file_count" db:"file_count"`
	FolderID  *string      `json:"folder_id,omitempty" db:"folder_id"`
	FolderURL *string      `json:"folder_url,omitempty" db:"folder_url"`
	CreatedAt time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" db:"updated_at"`
}

// File representa un archivo válido dentro de la subcarpeta de un documento.
type File struct {
	ID           int64      `json:"id" db:"id"`
	DocumentID   int64      `json:"document_id" db:"document_id"`
	Name         string     `json:"name" db:"name"`
	FileID       string     `json:"file_id" db:"file_id"`
	URL          string     `json:"url" db:"url"`
	DownloadURL  *string    `json:"download_url,omitempty" db:"download_url"`
	Size         *int64     `json:"size,omitempty" db:"size"`
	LastModified *time.Time `json:"last_modified,omitempty" db:"last_modified"`
	CreatedAt    time.Time  `json:"created_at" db:"created_at"`
}

// SyncOutcome representa el resultado registrado de una sincronización.
type SyncOutcome string

const (
	SyncOutcomeSuccess SyncOutcome = "success"
	SyncOutcomeError   SyncOutcome = "error"
)

// SyncStatus representa el registro de la última sincronización con Drive.
type SyncStatus struct {
	ID             int64       `json:"id" db:"id"`
	LastSync       time.Time   `json:"last_sync" db:"last_sync"`
	Status         SyncOutcome `json:"status" db:"status"`
	TotalClients   int         `json:"total_clients" db:"total_clients"`
	TotalDocuments int         `json:"total_documents" db:"total_documents"`
	CreatedAt      time.Time   `json:"created_at" db:"created_at"`
}

// DocumentsProgress resume el avance documental de un cliente sobre el
// denominador fijo de 8 tipos.
type DocumentsProgress struct {
	Completed  int `json:"completed"`
	Total      int `json:"total"`
	Percentage int `json:"percentage"`
}

// FileInfo es la vista de un archivo expuesta por la capa de consultas.
type FileInfo struct {
	Name         string     `json:"name"`
	ID           string     `json:"id"`
	URL          string     `json:"url"`
	DownloadURL  string     `json:"downloadUrl"`
	Size         *int64     `json:"size,omitempty"`
	LastModified *time.Time `json:"lastModified,omitempty"`
}

// DocumentStatus es la vista normalizada de un tipo de documento. La capa de
// consultas siempre produce las 8 entradas, sintetizando las ausentes.
type DocumentStatus struct {
	Type      DocumentType `json:"type"`
	Label     string       `json:"label"`
	Exists    bool         `json:"exists"`
	HasFiles  bool         `json:"hasFiles"`
	FileCount int          `json:"fileCount"`
	Files     []FileInfo   `json:"files"`
	FolderID  *string      `json:"folderId,omitempty"`
	FolderURL *string      `json:"folderUrl,omitempty"`
}

// ClientInfo es la vista completa de un cliente con sus 8 documentos.
type ClientInfo struct {
	Name      string           `json:"name"`
	Cedula    string           `json:"id"`
	Fecha     string           `json:"fecha"`
	FolderURL string           `json:"folderUrl"`
	Documents []DocumentStatus `json:"documents"`
}

// ClientProgress es la fila del dashboard: un cliente con su avance.
type ClientProgress struct {
	Nombre          string            `json:"nombre"`
	Cedula          string            `json:"cedula"`
	Fecha           string            `json:"fecha"`
	FolderURL       string            `json:"folderUrl"`
	HasFolder       bool              `json:"hasFolder"`
	DocumentsStatus DocumentsProgress `json:"documentsStatus"`
	DocumentDetails []DocumentDetail  `json:"documentDetails"`
}

// DocumentDetail es el resumen por tipo incluido en cada fila del dashboard.
type DocumentDetail struct {
	Type      DocumentType `json:"type"`
	Label     string       `json:"label"`
	HasFiles  bool         `json:"hasFiles"`
	FileCount int          `json:"fileCount"`
}

// Dashboard agrupa todas las filas con sus metadatos de frescura.
type Dashboard struct {
	Clients      []ClientProgress `json:"clients"`
	TotalClients int              `json:"totalClients"`
	LastUpdated  string           `json:"lastUpdated"`
}
