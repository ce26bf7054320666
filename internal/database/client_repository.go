package database

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/habicapital/docs-service/internal/models"
	"github.com/sirupsen/logrus"
)

// ClientRepository maneja las operaciones de base de datos para Client
type ClientRepository struct {
	db     *DB
	logger *logrus.Logger
}

// NewClientRepository crea una nueva instancia del repositorio
func NewClientRepository(db *DB, logger *logrus.Logger) *ClientRepository {
	return &ClientRepository{
		db:     db,
		logger: logger,
	}
}

const clientColumns = `id, nombre, cedula, fecha, folder_url, folder_id, has_folder, created_at, updated_at`

// scanClient lee una fila de clients.
func scanClient(scanner interface{ Scan(...interface{}) error }) (*models.Client, error) {
	var client models.Client
	err := scanner.Scan(
		&client.ID, &client.Nombre, &client.Cedula, &client.Fecha,
		&client.FolderURL, &client.FolderID, &client.HasFolder,
		&client.CreatedAt, &client.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// UpsertTx inserta o actualiza un cliente por cédula dentro de la
// transacción de sincronización y retorna su id.
func (r *ClientRepository) UpsertTx(tx *sql.Tx, listing *models.ClientListing) (int64, error) {
	query := `
		INSERT INTO clients (nombre, cedula, fecha, folder_url, folder_id, has_folder, updated_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), $6, $7)
		ON CONFLICT (cedula) DO UPDATE SET
			nombre = EXCLUDED.nombre,
			fecha = EXCLUDED.fecha,
			folder_url = EXCLUDED.folder_url,
			folder_id = EXCLUDED.folder_id,
			has_folder = EXCLUDED.has_folder,
			updated_at = EXCLUDED.updated_at
		RETURNING id
	`

	var id int64
	err := tx.QueryRow(query,
		listing.Nombre, listing.Cedula, listing.Fecha,
		listing.FolderURL, listing.FolderID, listing.HasFolder, time.Now(),
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("error upserting client %s: %w", listing.Cedula, err)
	}

	return id, nil
}

// DeleteAllTx elimina todos los clientes (los documentos y archivos caen en
// cascada). Solo se usa dentro de la transacción del refresh completo.
func (r *ClientRepository) DeleteAllTx(tx *sql.Tx) error {
	if _, err := tx.Exec(`DELETE FROM clients`); err != nil {
		return fmt.Errorf("error deleting clients: %w", err)
	}
	return nil
}

// FindByNameOrID busca un cliente por cédula exacta o, en su defecto, por
// coincidencia parcial de nombre. Retorna (nil, nil) si no hay coincidencia.
func (r *ClientRepository) FindByNameOrID(clientName, clientID string) (*models.Client, error) {
	var row *sql.Row
	switch {
	case clientID != "":
		query := `SELECT ` + clientColumns + ` FROM clients WHERE cedula = $1 LIMIT 1`
		row = r.db.QueryRowWithTimeout(query, clientID)
	case clientName != "":
		query := `SELECT ` + clientColumns + ` FROM clients WHERE nombre ILIKE $1 ORDER BY id LIMIT 1`
		row = r.db.QueryRowWithTimeout(query, "%"+clientName+"%")
	default:
		return nil, nil
	}

	client, err := scanClient(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("error querying client: %w", err)
	}

	return client, nil
}

// GetAll retorna todos los clientes ordenados por fecha descendente.
func (r *ClientRepository) GetAll() ([]models.Client, error) {
	query := `SELECT ` + clientColumns + ` FROM clients ORDER BY fecha DESC, id`

	rows, err := r.db.QueryWithTimeout(query)
	if err != nil {
		return nil, fmt.Errorf("error querying clients: %w", err)
	}
	defer rows.Close()

	var clients []models.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning client: %w", err)
		}
		clients = append(clients, *client)
	}

	return clients, rows.Err()
}
