package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/habicapital/docs-service/internal/models"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
)

// DocumentRepository maneja las operaciones de base de datos para Document
type DocumentRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewDocumentRepository crea una nueva instancia del repositorio
func NewDocumentRepository(db *DB, logger *logrus.Logger) *DocumentRepository {
	return &DocumentRepository{
		db:     db,
		logger: logger,
	}
}

const documentColumns = `id, client_id, type, label, folder_exists, has_files, file_count, folder_id, folder_url, created_at, updated_at`

func scanDocument(scanner interface{ Scan(...interface{}) error }) (*models.Document, error) {
	var doc models.Document
	err := scanner.Scan(
		&doc.ID, &doc.ClientID, &doc.Type, &doc.Label, &doc.Exists,
		&doc.HasFiles, &doc.FileCount, &doc.FolderID, &doc.FolderURL,
		&doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// UpsertTx inserta o actualiza el documento por (client_id, type) dentro de
// la transacción de sincronización y retorna su id. Mantiene el invariante
// de una sola fila por cliente y tipo.
func (r *DocumentRepository) UpsertTx(tx *sql.Tx, clientID int64, doc *models.DocumentListing, hasFiles bool, fileCount int) (int64, error) {
	query := `
		INSERT INTO documents (client_id, type, label, folder_exists, has_files, file_count, folder_id, folder_url, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''), NULLIF($8, ''), $9)
		ON CONFLICT (client_id, type) DO UPDATE SET
			label = EXCLUDED.label,
			folder_exists = EXCLUDED.folder_exists,
			has_files = EXCLUDED.has_files,
			file_count = EXCLUDED.file_count,
			folder_id = EXCLUDED.folder_id,
			folder_url = EXCLUDED.folder_url,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	var id int64
	err := tx.QueryRow(query,
		clientID, string(doc.Type), doc.Type.Label(), doc.Exists,
		hasFiles, fileCount, doc.FolderID, doc.FolderURL, time.Now(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error upserting document %s: %w", doc.Type, err)
	}

	return id, nil
}

// DeleteByClientTx elimina los documentos de un cliente (y sus archivos en
// cascada) dentro de una transacción. Es la base del refresh de un solo
// cliente después de una subida.
func (r *DocumentRepository) DeleteByClientTx(tx *sql.Tx, clientID int64) error {
	if _, err := tx.Exec(`DELETE FROM documents WHERE client_id = $1`, clientID); err != nil {
		return fmt.Errorf("error deleting documents for client %d: %w", clientID, err)
	}
	return nil
}

// GetByClientID retorna los documentos de un cliente ordenados por tipo.
func (r *DocumentRepository) GetByClientID(clientID int64) ([]models.Document, error) {
	query := `SELECT ` + documentColumns + ` FROM documents WHERE client_id = $1 ORDER BY type`

	rows, err := r.db.QueryWithTimeout(query, clientID)
	if err != nil {
		return nil, fmt.Errorf("error querying documents: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

// GetByClientIDs retorna los documentos de varios clientes en una sola
// consulta, para armar el dashboard en una pasada.
func (r *DocumentRepository) GetByClientIDs(clientIDs []int64) ([]models.Document, error) {
	if len(clientIDs) == 0 {
		return nil, nil
	}

	query := `SELECT ` + documentColumns + ` FROM documents WHERE client_id = ANY($1) ORDER BY client_id, type`

	rows, err := r.db.QueryWithTimeout(query, pq.Array(clientIDs))
	if err != nil {
		return nil, fmt.Errorf("error querying documents: %w", err)
	}
	defer rows.Close()

	return collectDocuments(rows)
}

func collectDocuments(rows *sql.Rows) ([]models.Document, error) {
	var documents []models.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning document: %w", err)
		}
		documents = append(documents, *doc)
	}
	return documents, rows.Err()
}
