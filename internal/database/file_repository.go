package database

import (
	"database/sql"
	"fmt"

	"github.com/habicapital/docs-service/internal/models"
	"github.com/sirupsen/logrus"
)

// FileRepository maneja las operaciones de base de datos para File
type FileRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewFileRepository crea una nueva instancia del repositorio
func NewFileRepository(db *DB, logger *logrus.Logger) *FileRepository {
	return &FileRepository{
		db:     db,
		logger: logger,
	}
}

// InsertTx inserta un archivo ligado a su documento dentro de la
// transacción de sincronización.
func (r *FileRepository) InsertTx(tx *sql.Tx, documentID int64, file *models.FileListing) error {
	query := `
		INSERT INTO files (document_id, name, file_id, url, download_url, size, last_modified)
		VALUES ($1, $2, $3, $4, NULLIF($5, ''), NULLIF($6, 0), $7)
	`

	_, err := tx.Exec(query,
		documentID, file.Name, file.ID, file.URL,
		file.DownloadURL, file.Size, file.LastModified,
	)
	if err != nil {
		return fmt.Errorf("error inserting file %s: %w", file.Name, err)
	}

	return nil
}

// GetByDocumentID retorna los archivos de un documento, los más recientes
// primero.
func (r *FileRepository) GetByDocumentID(documentID int64) ([]models.File, error) {
	query := `
		SELECT id, document_id, name, file_id, url, download_url, size, last_modified, created_at
		FROM files
		WHERE document_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.QueryWithTimeout(query, documentID)
	if err != nil {
		return nil, fmt.Errorf("error querying files: %w", err)
	}
	defer rows.Close()

	var files []models.File
	for rows.Next() {
		var f models.File
		err := rows.Scan(
			&f.ID, &f.DocumentID, &f.Name, &f.FileID, &f.URL,
			&f.DownloadURL, &f.Size, &f.LastModified, &f.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("error scanning file: %w", err)
		}
		files = append(files, f)
	}

	return files, rows.Err()
}

// CountAll retorna el total de archivos espejados.
func (r *FileRepository) CountAll() (int, error) {
	var count int
	err := r.db.QueryRowWithTimeout(`SELECT COUNT(*) FROM files`).Scan(&count)
	if err != nil && err != sql.ErrNoRows {
		return 0, fmt.Errorf("error counting files: %w", err)
	}
	return count, nil
}
