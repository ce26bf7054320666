package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/habicapital/docs-service/internal/drive"
	"github.com/habicapital/docs-service/internal/models"
	"github.com/habicapital/docs-service/internal/relay"
	"github.com/habicapital/docs-service/internal/services"
	"github.com/sirupsen/logrus"
)

// API maneja todos los endpoints de la API
type API struct {
	queryService  *services.QueryService
	syncService   *services.SyncService
	uploadService *services.UploadService
	logger        *logrus.Logger
}

// NewAPI crea una nueva instancia de la API
func NewAPI(
	queryService *services.QueryService,
	syncService *services.SyncService,
	uploadService *services.UploadService,
	logger *logrus.Logger,
) *API {
	return &API{
		queryService:  queryService,
		syncService:   syncService,
		uploadService: uploadService,
		logger:        logger,
	}
}

// SearchClient busca un cliente y retorna su estado documental completo
func (api *API) SearchClient(c *gin.Context) {
	start := time.Now()

	var req models.SearchClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		api.logger.WithError(err).Error("Error binding search client request")
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	if req.ClientName == "" && req.ClientID == "" {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Client name or id is required", []models.ErrorDetail{
			{Field: "clientName", Issue: "At least one of clientName or clientId must be provided"},
		}))
		return
	}

	info, source, err := api.queryService.GetClientWithDocuments(req.ClientName, req.ClientID)
	if err != nil {
		api.logger.WithError(err).Error("Error searching client")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error searching client"))
		return
	}
	if info == nil {
		c.JSON(http.StatusNotFound, models.NewNotFoundError("Cliente no encontrado"))
		return
	}

	response := models.NewSuccessResponse(info)
	response.Meta = &models.Meta{
		QueryTimeMS: time.Since(start).Milliseconds(),
		Source:      source,
	}
	c.JSON(http.StatusOK, response)
}

// GetDashboard retorna todos los clientes con su avance documental
func (api *API) GetDashboard(c *gin.Context) {
	start := time.Now()

	dashboard, source, err := api.queryService.GetAllClientsWithProgress()
	if err != nil {
		api.logger.WithError(err).Error("Error building dashboard")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error building dashboard"))
		return
	}

	response := models.NewSuccessResponse(dashboard)
	response.Meta = &models.Meta{
		QueryTimeMS: time.Since(start).Milliseconds(),
		Source:      source,
		LastUpdated: dashboard.LastUpdated,
	}
	c.JSON(http.StatusOK, response)
}

// Sync dispara una sincronización completa o consulta su estado según la
// acción del request
func (api *API) Sync(c *gin.Context) {
	var req models.SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	switch req.Action {
	case "sync":
		result := api.syncService.SyncAll(c.Request.Context())
		if !result.Success {
			c.JSON(http.StatusInternalServerError, models.NewInternalError(result.Message))
			return
		}
		api.queryService.ClearCache()

		response := models.NewSuccessResponse(result.Stats)
		response.Message = result.Message
		c.JSON(http.StatusOK, response)
	case "status":
		api.getSyncStatus(c)
	default:
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid action", []models.ErrorDetail{
			{Field: "action", Issue: "Must be 'sync' or 'status'"},
		}))
	}
}

// GetSyncStatus consulta el registro de la última sincronización
func (api *API) GetSyncStatus(c *gin.Context) {
	api.getSyncStatus(c)
}

func (api *API) getSyncStatus(c *gin.Context) {
	status, err := api.queryService.SyncStatus()
	if err != nil {
		api.logger.WithError(err).Error("Error getting sync status")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error getting sync status"))
		return
	}

	response := models.NewSuccessResponse(gin.H{
		"lastSync": status,
		"cache":    api.queryService.CacheStats(),
	})
	if status == nil {
		response.Message = "Nunca se ha sincronizado"
	}
	c.JSON(http.StatusOK, response)
}

// AutoSyncClient refresca el espejo de un solo cliente
func (api *API) AutoSyncClient(c *gin.Context) {
	var req models.SearchClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid request format", []models.ErrorDetail{
			{Field: "body", Issue: err.Error()},
		}))
		return
	}

	if req.ClientName == "" && req.ClientID == "" {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Client name or id is required", []models.ErrorDetail{
			{Field: "clientName", Issue: "At least one of clientName or clientId must be provided"},
		}))
		return
	}

	result := api.syncService.SyncClient(c.Request.Context(), req.ClientName, req.ClientID)
	if !result.Success {
		c.JSON(http.StatusBadGateway, models.NewUpstreamError(result.Message))
		return
	}
	api.queryService.InvalidateClient(req.ClientName, req.ClientID)

	response := models.NewSuccessResponse(result.Stats)
	response.Message = result.Message
	c.JSON(http.StatusOK, response)
}

// RefreshCache vacía los cachés de lectura
func (api *API) RefreshCache(c *gin.Context) {
	api.queryService.ClearCache()

	response := models.NewSuccessResponse(nil)
	response.Message = "Caché invalidado correctamente"
	c.JSON(http.StatusOK, response)
}

// UploadDocument recibe un archivo multipart y lo sube a la subcarpeta del
// tipo de documento del cliente
func (api *API) UploadDocument(c *gin.Context) {
	clientName := c.PostForm("clientName")
	clientID := c.PostForm("clientId")
	documentType := models.DocumentType(c.PostForm("documentType"))

	if clientName == "" && clientID == "" {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Client name or id is required", []models.ErrorDetail{
			{Field: "clientName", Issue: "At least one of clientName or clientId must be provided"},
		}))
		return
	}
	if !documentType.IsValid() {
		c.JSON(http.StatusBadRequest, models.NewValidationError("Invalid document type", []models.ErrorDetail{
			{Field: "documentType", Issue: "Must be one of the known document folder names"},
		}))
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, models.NewValidationError("File is required", []models.ErrorDetail{
			{Field: "file", Issue: err.Error()},
		}))
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		api.logger.WithError(err).Error("Error opening uploaded file")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error reading uploaded file"))
		return
	}
	defer file.Close()

	result, err := api.uploadService.UploadDocument(c.Request.Context(), &services.UploadRequest{
		ClientName:   clientName,
		ClientID:     clientID,
		DocumentType: documentType,
		FileName:     fileHeader.Filename,
		FileSize:     fileHeader.Size,
		File:         file,
	})
	if err != nil {
		api.respondUploadError(c, err)
		return
	}

	response := models.NewSuccessResponse(result)
	response.Message = result.Message
	c.JSON(http.StatusOK, response)
}

// respondUploadError traduce los errores del servicio de subida a códigos
// HTTP del sobre de error.
func (api *API) respondUploadError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrOversizeFile), errors.Is(err, relay.ErrFileTooLarge):
		c.JSON(http.StatusRequestEntityTooLarge, models.NewOversizeFileError(err.Error()))
	case errors.Is(err, services.ErrTargetNotFound):
		c.JSON(http.StatusNotFound, models.NewNotFoundError("No se encontró carpeta para el cliente y tipo de documento"))
	case errors.Is(err, drive.ErrUpstreamUnreachable):
		api.logger.WithError(err).Error("Drive upstream unreachable during upload")
		c.JSON(http.StatusBadGateway, models.NewUpstreamError("Drive service unreachable"))
	case errors.Is(err, drive.ErrInvalidResponse):
		api.logger.WithError(err).Error("Invalid Drive upstream response during upload")
		c.JSON(http.StatusBadGateway, models.NewErrorResponse(models.ErrorCodeBadUpstream, "Invalid response from Drive service"))
	default:
		api.logger.WithError(err).Error("Error uploading document")
		c.JSON(http.StatusInternalServerError, models.NewInternalError("Error uploading document"))
	}
}

// CreateFolder crea la carpeta del último cliente registrado
func (api *API) CreateFolder(c *gin.Context) {
	result, err := api.uploadService.CreateClientFolder(c.Request.Context())
	if err != nil {
		switch {
		case errors.Is(err, drive.ErrUpstreamUnreachable):
			api.logger.WithError(err).Error("Drive upstream unreachable creating folder")
			c.JSON(http.StatusBadGateway, models.NewUpstreamError("Drive service unreachable"))
		case errors.Is(err, drive.ErrInvalidResponse):
			api.logger.WithError(err).Error("Invalid Drive upstream response creating folder")
			c.JSON(http.StatusBadGateway, models.NewErrorResponse(models.ErrorCodeBadUpstream, "Invalid response from Drive service"))
		default:
			api.logger.WithError(err).Error("Error creating client folder")
			c.JSON(http.StatusInternalServerError, models.NewInternalError("Error creating client folder"))
		}
		return
	}

	response := models.NewSuccessResponse(result)
	response.Message = "Carpeta creada correctamente"
	c.JSON(http.StatusOK, response)
}
