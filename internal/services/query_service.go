package services

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/habicapital/docs-service/internal/cache"
	"github.com/habicapital/docs-service/internal/database"
	"github.com/habicapital/docs-service/internal/models"
	"github.com/sirupsen/logrus"
)

const dashboardRedisKey = "dashboard:v1"

// Fuentes reportadas en el meta de las respuestas.
const (
	SourceCache    = "cache"
	SourceRedis    = "redis"
	SourceDatabase = "database"
)

type clientReader interface {
	FindByNameOrID(clientName, clientID string) (*models.Client, error)
	GetAll() ([]models.Client, error)
}

type documentReader interface {
	GetByClientID(clientID int64) ([]models.Document, error)
	GetByClientIDs(clientIDs []int64) ([]models.Document, error)
}

type fileReader interface {
	GetByDocumentID(documentID int64) ([]models.File, error)
}

type syncStatusReader interface {
	GetLatest() (*models.SyncStatus, error)
}

type redisCache interface {
	Get(key string) (string, error)
	SetWithTTL(key string, value interface{}, ttl time.Duration) error
	Delete(key string) error
}

// QueryService es la capa de lectura sobre el espejo. Nunca toca Drive: todo
// sale de Postgres, con un caché en memoria por proceso y, si hay Redis, un
// segundo nivel compartido para el snapshot del dashboard.
type QueryService struct {
	clients    clientReader
	documents  documentReader
	files      fileReader
	syncStatus syncStatusReader
	cache      *cache.Cache
	redis      redisCache
	cacheTTL   time.Duration
	logger     *logrus.Logger
	location   *time.Location
}

// NewQueryService crea una nueva instancia del servicio. Redis es opcional;
// con nil el dashboard solo usa el caché en memoria.
func NewQueryService(db *database.DB, redis *database.Redis, memCache *cache.Cache, cacheTTL time.Duration, logger *logrus.Logger) *QueryService {
	s := &QueryService{
		clients:    database.NewClientRepository(db, logger),
		documents:  database.NewDocumentRepository(db, logger),
		files:      database.NewFileRepository(db, logger),
		syncStatus: database.NewSyncStatusRepository(db, logger),
		cache:      memCache,
		cacheTTL:   cacheTTL,
		logger:     logger,
		location:   loadLocation(logger),
	}
	if redis != nil {
		s.redis = redis
	}
	return s
}

// newQueryServiceWithMirror arma el servicio con dependencias explícitas.
func newQueryServiceWithMirror(clients clientReader, documents documentReader, files fileReader, syncStatus syncStatusReader, memCache *cache.Cache, logger *logrus.Logger) *QueryService {
	return &QueryService{
		clients:    clients,
		documents:  documents,
		files:      files,
		syncStatus: syncStatus,
		cache:      memCache,
		cacheTTL:   cache.DefaultTTL,
		logger:     logger,
		location:   time.UTC,
	}
}

func loadLocation(logger *logrus.Logger) *time.Location {
	loc, err := time.LoadLocation("America/Bogota")
	if err != nil {
		logger.WithError(err).Warn("Error loading timezone, falling back to UTC")
		return time.UTC
	}
	return loc
}

// FindClientByNameOrID busca un cliente en el espejo. Retorna (nil, nil) si
// no existe.
func (s *QueryService) FindClientByNameOrID(clientName, clientID string) (*models.Client, error) {
	return s.clients.FindByNameOrID(clientName, clientID)
}

// GetClientWithDocuments retorna la vista completa de un cliente con sus 8
// tipos de documento, sintetizando los que el espejo no tiene. Retorna
// también la fuente de los datos para el meta de la respuesta.
func (s *QueryService) GetClientWithDocuments(clientName, clientID string) (*models.ClientInfo, string, error) {
	if info := s.cache.GetClient(clientName, clientID); info != nil {
		return info, SourceCache, nil
	}

	client, err := s.clients.FindByNameOrID(clientName, clientID)
	if err != nil {
		return nil, "", err
	}
	if client == nil {
		return nil, "", nil
	}

	docs, err := s.documents.GetByClientID(client.ID)
	if err != nil {
		return nil, "", err
	}

	docByType := make(map[models.DocumentType]*models.Document, len(docs))
	for i := range docs {
		docByType[docs[i].Type] = &docs[i]
	}

	// Siempre 8 entradas en orden canónico, con placeholders para los
	// tipos que el espejo no tiene.
	statuses := make([]models.DocumentStatus, 0, models.TotalDocumentTypes)
	for _, docType := range models.DocumentTypes() {
		doc, ok := docByType[docType]
		if !ok {
			statuses = append(statuses, models.DocumentStatus{
				Type:  docType,
				Label: docType.Label(),
				Files: []models.FileInfo{},
			})
			continue
		}

		files, err := s.files.GetByDocumentID(doc.ID)
		if err != nil {
			return nil, "", err
		}

		fileInfos := make([]models.FileInfo, 0, len(files))
		for _, f := range files {
			info := models.FileInfo{
				Name:         f.Name,
				ID:           f.FileID,
				URL:          f.URL,
				Size:         f.Size,
				LastModified: f.LastModified,
			}
			if f.DownloadURL != nil {
				info.DownloadURL = *f.DownloadURL
			}
			fileInfos = append(fileInfos, info)
		}

		statuses = append(statuses, models.DocumentStatus{
			Type:      doc.Type,
			Label:     doc.Label,
			Exists:    doc.Exists,
			HasFiles:  doc.HasFiles,
			FileCount: doc.FileCount,
			Files:     fileInfos,
			FolderID:  doc.FolderID,
			FolderURL: doc.FolderURL,
		})
	}

	info := &models.ClientInfo{
		Name:      client.Nombre,
		Cedula:    client.Cedula,
		Fecha:     formatFecha(client.Fecha),
		Documents: statuses,
	}
	if client.FolderURL != nil {
		info.FolderURL = *client.FolderURL
	}

	s.cache.SetClient(clientName, clientID, info)

	return info, SourceDatabase, nil
}

// GetAllClientsWithProgress arma el dashboard: todos los clientes con su
// avance documental. Memoria primero, luego Redis, luego Postgres.
func (s *QueryService) GetAllClientsWithProgress() (*models.Dashboard, string, error) {
	if dashboard := s.cache.GetDashboard(); dashboard != nil {
		return dashboard, SourceCache, nil
	}

	if s.redis != nil {
		if raw, err := s.redis.Get(dashboardRedisKey); err == nil && raw != "" {
			var dashboard models.Dashboard
			if err := json.Unmarshal([]byte(raw), &dashboard); err == nil {
				s.cache.SetDashboard(&dashboard)
				return &dashboard, SourceRedis, nil
			}
			s.logger.Warn("Discarding malformed dashboard payload from Redis")
		}
	}

	clients, err := s.clients.GetAll()
	if err != nil {
		return nil, "", err
	}

	clientIDs := make([]int64, 0, len(clients))
	for _, c := range clients {
		clientIDs = append(clientIDs, c.ID)
	}

	docs, err := s.documents.GetByClientIDs(clientIDs)
	if err != nil {
		return nil, "", err
	}

	docsByClient := make(map[int64][]models.Document, len(clients))
	for _, doc := range docs {
		docsByClient[doc.ClientID] = append(docsByClient[doc.ClientID], doc)
	}

	rows := make([]models.ClientProgress, 0, len(clients))
	for _, client := range clients {
		row := models.ClientProgress{
			Nombre:    client.Nombre,
			Cedula:    client.Cedula,
			Fecha:     formatFecha(client.Fecha),
			HasFolder: client.HasFolder,
		}
		if client.FolderURL != nil {
			row.FolderURL = *client.FolderURL
		}
		row.DocumentsStatus, row.DocumentDetails = progressFor(docsByClient[client.ID])
		rows = append(rows, row)
	}

	dashboard := &models.Dashboard{
		Clients:      rows,
		TotalClients: len(rows),
		LastUpdated:  s.lastSyncLabel(),
	}

	s.cache.SetDashboard(dashboard)
	if s.redis != nil {
		if raw, err := json.Marshal(dashboard); err == nil {
			if err := s.redis.SetWithTTL(dashboardRedisKey, raw, s.cacheTTL); err != nil {
				s.logger.WithError(err).Warn("Error caching dashboard in Redis")
			}
		}
	}

	return dashboard, SourceDatabase, nil
}

// SyncStatus retorna el registro de la última sincronización, o (nil, nil)
// si nunca se ha corrido.
func (s *QueryService) SyncStatus() (*models.SyncStatus, error) {
	return s.syncStatus.GetLatest()
}

// CacheStats retorna los contadores del caché en memoria.
func (s *QueryService) CacheStats() cache.Stats {
	return s.cache.GetStats()
}

// InvalidateClient descarta las vistas cacheadas de un cliente y el
// dashboard. Se llama después de subir un documento o crear una carpeta.
func (s *QueryService) InvalidateClient(clientName, clientID string) {
	s.cache.InvalidateClient(clientName, clientID)
	s.InvalidateDashboard()
}

// InvalidateDashboard descarta el snapshot del dashboard en memoria y Redis.
func (s *QueryService) InvalidateDashboard() {
	s.cache.InvalidateDashboard()
	if s.redis != nil {
		if err := s.redis.Delete(dashboardRedisKey); err != nil {
			s.logger.WithError(err).Warn("Error invalidating dashboard in Redis")
		}
	}
}

// ClearCache vacía el caché en memoria y el snapshot de Redis.
func (s *QueryService) ClearCache() {
	s.cache.Clear()
	if s.redis != nil {
		if err := s.redis.Delete(dashboardRedisKey); err != nil {
			s.logger.WithError(err).Warn("Error clearing dashboard in Redis")
		}
	}
}

// lastSyncLabel formatea la hora de la última sincronización en hora de
// Colombia, o "Nunca" si no hay registro.
func (s *QueryService) lastSyncLabel() string {
	status, err := s.syncStatus.GetLatest()
	if err != nil {
		s.logger.WithError(err).Warn("Error reading sync status for dashboard")
		return "Nunca"
	}
	if status == nil {
		return "Nunca"
	}
	return status.LastSync.In(s.location).Format("02/01/2006 15:04")
}

// progressFor calcula el avance de un cliente sobre el denominador fijo de 8
// tipos. Un tipo cuenta como completado solo si tiene archivos reales.
func progressFor(docs []models.Document) (models.DocumentsProgress, []models.DocumentDetail) {
	docByType := make(map[models.DocumentType]*models.Document, len(docs))
	for i := range docs {
		docByType[docs[i].Type] = &docs[i]
	}

	completed := 0
	details := make([]models.DocumentDetail, 0, models.TotalDocumentTypes)
	for _, docType := range models.DocumentTypes() {
		detail := models.DocumentDetail{
			Type:  docType,
			Label: docType.Label(),
		}
		if doc, ok := docByType[docType]; ok {
			detail.HasFiles = doc.HasFiles && doc.FileCount > 0
			detail.FileCount = doc.FileCount
		}
		if detail.HasFiles {
			completed++
		}
		details = append(details, detail)
	}

	progress := models.DocumentsProgress{
		Completed:  completed,
		Total:      models.TotalDocumentTypes,
		Percentage: int(math.Round(float64(completed) / float64(models.TotalDocumentTypes) * 100)),
	}

	return progress, details
}

// formatFecha convierte fechas YYYY-MM-DD del registro a DD/MM/YYYY para el
// frontend. Cualquier otro formato pasa sin tocar.
func formatFecha(fecha string) string {
	parsed, err := time.Parse("2006-01-02", fecha)
	if err != nil {
		return fecha
	}
	return fmt.Sprintf("%02d/%02d/%04d", parsed.Day(), parsed.Month(), parsed.Year())
}
