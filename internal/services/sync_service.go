package services

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/habicapital/docs-service/internal/database"
	"github.com/habicapital/docs-service/internal/drive"
	"github.com/habicapital/docs-service/internal/models"
	"github.com/sirupsen/logrus"
)

// Interfaces mínimas sobre el espejo para poder probar el servicio con
// implementaciones falsas.
type txRunner interface {
	WithTransaction(fn func(*sql.Tx) error) error
}

type clientMirror interface {
	UpsertTx(tx *sql.Tx, listing *models.ClientListing) (int64, error)
	DeleteAllTx(tx *sql.Tx) error
	FindByNameOrID(clientName, clientID string) (*models.Client, error)
}

type documentMirror interface {
	UpsertTx(tx *sql.Tx, clientID int64, doc *models.DocumentListing, hasFiles bool, fileCount int) (int64, error)
	DeleteByClientTx(tx *sql.Tx, clientID int64) error
}

type fileMirror interface {
	InsertTx(tx *sql.Tx, documentID int64, file *models.FileListing) error
}

type syncRecorder interface {
	Record(outcome models.SyncOutcome, totalClients, totalDocuments int) error
}

// SyncService espeja el estado de Drive en las tablas relacionales. El
// refresh completo es destructivo (borrar y repoblar) pero corre dentro de
// una transacción: un fallo a mitad de camino no deja el espejo vacío. No
// hay reintento automático; el llamador decide si reintenta.
type SyncService struct {
	runner    txRunner
	clients   clientMirror
	documents documentMirror
	files     fileMirror
	recorder  syncRecorder
	directory drive.Directory
	logger    *logrus.Logger

	// Las subidas concurrentes para un mismo cliente no se coordinan
	// upstream; este lock por cédula evita que dos refresh del mismo
	// cliente se pisen entre sí.
	clientLocks keyedMutex
}

// NewSyncService crea una nueva instancia del servicio
func NewSyncService(db *database.DB, directory drive.Directory, logger *logrus.Logger) *SyncService {
	return &SyncService{
		runner:    db,
		clients:   database.NewClientRepository(db, logger),
		documents: database.NewDocumentRepository(db, logger),
		files:     database.NewFileRepository(db, logger),
		recorder:  database.NewSyncStatusRepository(db, logger),
		directory: directory,
		logger:    logger,
	}
}

// newSyncServiceWithMirror arma el servicio con dependencias explícitas.
func newSyncServiceWithMirror(runner txRunner, clients clientMirror, documents documentMirror, files fileMirror, recorder syncRecorder, directory drive.Directory, logger *logrus.Logger) *SyncService {
	return &SyncService{
		runner:    runner,
		clients:   clients,
		documents: documents,
		files:     files,
		recorder:  recorder,
		directory: directory,
		logger:    logger,
	}
}

// SyncAll trae el listado completo de clientes desde el lado Drive en una
// sola llamada y hace el refresh destructivo del espejo. Los clientes con
// datos incompletos se omiten y se cuentan como fallos sin abortar la
// corrida; un error de SQL hace rollback completo al estado anterior.
func (s *SyncService) SyncAll(ctx context.Context) *models.SyncResult {
	start := time.Now()
	runID := uuid.New()

	log := s.logger.WithField("sync_run", runID)
	log.Info("Starting full mirror sync")

	listings, err := s.directory.AllClients(ctx)
	if err != nil {
		log.WithError(err).Error("Error fetching client listing from Drive")
		s.recordOutcome(models.SyncOutcomeError, 0, 0)
		return &models.SyncResult{
			Success: false,
			Message: fmt.Sprintf("Error obteniendo clientes de Drive: %v", err),
		}
	}

	if len(listings) == 0 {
		return &models.SyncResult{
			Success: false,
			Message: "No se encontraron clientes en el registro",
			Stats:   &models.SyncStats{DurationMS: time.Since(start).Milliseconds()},
		}
	}

	stats := models.SyncStats{}
	err = s.runner.WithTransaction(func(tx *sql.Tx) error {
		if err := s.clients.DeleteAllTx(tx); err != nil {
			return err
		}

		for i := range listings {
			listing := &listings[i]
			if listing.Cedula == "" || listing.Nombre == "" {
				log.WithField("nombre", listing.Nombre).Warn("Skipping client with incomplete registry data")
				stats.Failures++
				continue
			}

			docs, files, err := s.writeClientTx(tx, listing)
			if err != nil {
				return fmt.Errorf("error syncing client %s: %w", listing.Cedula, err)
			}
			stats.ClientsUpdated++
			stats.DocumentsUpdated += docs
			stats.FilesUpdated += files
		}

		return nil
	})
	if err != nil {
		log.WithError(err).Error("Full mirror sync failed, previous state preserved")
		s.recordOutcome(models.SyncOutcomeError, 0, 0)
		return &models.SyncResult{
			Success: false,
			Message: fmt.Sprintf("Error en sincronización: %v", err),
		}
	}

	s.recordOutcome(models.SyncOutcomeSuccess, stats.ClientsUpdated, stats.DocumentsUpdated)
	stats.DurationMS = time.Since(start).Milliseconds()

	log.WithFields(logrus.Fields{
		"clients":   stats.ClientsUpdated,
		"documents": stats.DocumentsUpdated,
		"files":     stats.FilesUpdated,
		"failures":  stats.Failures,
		"duration":  stats.DurationMS,
	}).Info("Full mirror sync completed")

	message := fmt.Sprintf("Sincronización completada: %d clientes, %d documentos, %d archivos",
		stats.ClientsUpdated, stats.DocumentsUpdated, stats.FilesUpdated)
	if stats.Failures > 0 {
		message = fmt.Sprintf("%s (%d fallos)", message, stats.Failures)
	}

	return &models.SyncResult{
		Success: true,
		Message: message,
		Stats:   &stats,
	}
}

// SyncClient refresca el espejo de un solo cliente después de una subida,
// dejando las filas de los demás clientes intactas. Es el mismo upsert del
// refresh completo acotado a un cliente.
func (s *SyncService) SyncClient(ctx context.Context, clientName, clientID string) *models.SyncResult {
	unlock := s.clientLocks.Lock(drive.NormalizeID(clientID))
	defer unlock()

	listing, err := s.directory.ClientByNameOrID(ctx, clientName, clientID)
	if err != nil {
		s.logger.WithError(err).Error("Error fetching client from Drive")
		return &models.SyncResult{
			Success: false,
			Message: fmt.Sprintf("Error obteniendo datos del cliente: %v", err),
		}
	}
	if listing == nil {
		return &models.SyncResult{
			Success: false,
			Message: "No se encontró carpeta para el cliente especificado",
		}
	}

	// La cédula de la carpeta puede no venir en la respuesta de Drive;
	// conservar la del espejo si ya existe.
	if listing.Cedula == "" {
		if existing, err := s.clients.FindByNameOrID(clientName, clientID); err == nil && existing != nil {
			listing.Cedula = existing.Cedula
			if listing.Fecha == "" {
				listing.Fecha = existing.Fecha
			}
		}
	}
	if listing.Cedula == "" {
		return &models.SyncResult{
			Success: false,
			Message: "Cliente no encontrado en la base de datos",
		}
	}

	stats := models.SyncStats{}
	err = s.runner.WithTransaction(func(tx *sql.Tx) error {
		clientRowID, err := s.clients.UpsertTx(tx, listing)
		if err != nil {
			return err
		}
		if err := s.documents.DeleteByClientTx(tx, clientRowID); err != nil {
			return err
		}

		docs, files, err := s.writeDocumentsTx(tx, clientRowID, listing.Documents)
		if err != nil {
			return err
		}
		stats.ClientsUpdated = 1
		stats.DocumentsUpdated = docs
		stats.FilesUpdated = files
		return nil
	})
	if err != nil {
		s.logger.WithError(err).WithField("cedula", listing.Cedula).Error("Client refresh failed")
		return &models.SyncResult{
			Success: false,
			Message: fmt.Sprintf("Error sincronizando cliente: %v", err),
		}
	}

	s.logger.WithFields(logrus.Fields{
		"cedula":    listing.Cedula,
		"documents": stats.DocumentsUpdated,
		"files":     stats.FilesUpdated,
	}).Info("Client mirror refreshed")

	return &models.SyncResult{
		Success: true,
		Message: "Cliente sincronizado correctamente",
		Stats:   &stats,
	}
}

// writeClientTx upserta un cliente completo con sus documentos y archivos.
func (s *SyncService) writeClientTx(tx *sql.Tx, listing *models.ClientListing) (int, int, error) {
	clientRowID, err := s.clients.UpsertTx(tx, listing)
	if err != nil {
		return 0, 0, err
	}
	return s.writeDocumentsTx(tx, clientRowID, listing.Documents)
}

// writeDocumentsTx upserta los documentos de un cliente recalculando
// has_files y file_count a partir de la lista de archivos ya validada, en
// lugar de confiar en el booleano que reporta el lado Drive.
func (s *SyncService) writeDocumentsTx(tx *sql.Tx, clientRowID int64, documents []models.DocumentListing) (int, int, error) {
	docsWritten := 0
	filesWritten := 0

	for i := range documents {
		doc := &documents[i]
		if !doc.Type.IsValid() {
			s.logger.WithField("type", doc.Type).Warn("Skipping unknown document type from upstream")
			continue
		}

		validFiles := FilterValidFiles(doc.Files)

		docRowID, err := s.documents.UpsertTx(tx, clientRowID, doc, len(validFiles) > 0, len(validFiles))
		if err != nil {
			return docsWritten, filesWritten, err
		}
		docsWritten++

		for j := range validFiles {
			if err := s.files.InsertTx(tx, docRowID, &validFiles[j]); err != nil {
				return docsWritten, filesWritten, err
			}
			filesWritten++
		}
	}

	return docsWritten, filesWritten, nil
}

// recordOutcome registra el resultado de la corrida; un fallo al registrar
// solo se loguea.
func (s *SyncService) recordOutcome(outcome models.SyncOutcome, clients, documents int) {
	if err := s.recorder.Record(outcome, clients, documents); err != nil {
		s.logger.WithError(err).Warn("Error recording sync status")
	}
}

// keyedMutex serializa operaciones por clave.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// Lock toma el lock de la clave y retorna la función para liberarlo.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	if k.locks == nil {
		k.locks = make(map[string]*sync.Mutex)
	}
	lock, ok := k.locks[key]
	if !ok {
		lock = &sync.Mutex{}
		k.locks[key] = lock
	}
	k.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
