package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/habicapital/docs-service/internal/models"
	"github.com/sirupsen/logrus"
)

// SyncStatusRepository maneja el registro de sincronizaciones
type SyncStatusRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewSyncStatusRepository crea una nueva instancia del repositorio
func NewSyncStatusRepository(db *DB, logger *logrus.Logger) *SyncStatusRepository {
	return &SyncStatusRepository{
		db:     db,
		logger: logger,
	}
}

// Record registra el resultado de una corrida de sincronización. Se escribe
// fuera de la transacción del refresh: un fallo del sync también debe quedar
// registrado.
func (r *SyncStatusRepository) Record(outcome models.SyncOutcome, totalClients, totalDocuments int) error {
	query := `
		INSERT INTO sync_status (last_sync, status, total_clients, total_documents)
		VALUES ($1, $2, $3, $4)
	`

	_, err := r.db.ExecWithTimeout(query, time.Now(), string(outcome), totalClients, totalDocuments)
	if err != nil {
		return fmt.Errorf("error recording sync status: %w", err)
	}

	return nil
}

// GetLatest retorna el registro de la sincronización más reciente, o
// (nil, nil) si nunca se ha sincronizado.
func (r *SyncStatusRepository) GetLatest() (*models.SyncStatus, error) {
	query := `
		SELECT id, last_sync, status, total_clients, total_documents, created_at
		FROM sync_status
		ORDER BY last_sync DESC
		LIMIT 1
	`

	var status models.SyncStatus
	err := r.db.QueryRowWithTimeout(query).Scan(
		&status.ID, &status.LastSync, &status.Status,
		&status.TotalClients, &status.TotalDocuments, &status.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying sync status: %w", err)
	}

	return &status, nil
}
