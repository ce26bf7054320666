package services

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/habicapital/docs-service/internal/config"
	"github.com/habicapital/docs-service/internal/drive"
	"github.com/habicapital/docs-service/internal/models"
	"github.com/habicapital/docs-service/internal/relay"
	"github.com/sirupsen/logrus"
)

// ErrOversizeFile indica que el archivo supera el límite absoluto de subida.
var ErrOversizeFile = errors.New("file exceeds maximum upload size")

// ErrTargetNotFound indica que no existe carpeta destino para la subida.
var ErrTargetNotFound = errors.New("upload target folder not found")

type relayUploader interface {
	Upload(ctx context.Context, target relay.FileTarget, file io.Reader) error
}

type largeFileUploader interface {
	UploadLargeFile(ctx context.Context, target *drive.UploadTarget, fileName string, file io.Reader, documentType models.DocumentType, clientName, clientID string) (*models.UploadResult, error)
}

type clientRefresher interface {
	SyncClient(ctx context.Context, clientName, clientID string) *models.SyncResult
}

type cacheInvalidator interface {
	InvalidateClient(clientName, clientID string)
	InvalidateDashboard()
}

// UploadService enruta las subidas de documentos. Los archivos chicos van por
// el webhook del relay; los grandes van directo al Apps Script, que es el
// único camino que aguanta ese tamaño. Después de subir refresca el espejo
// del cliente para que la siguiente consulta ya vea el archivo.
type UploadService struct {
	directory    drive.Directory
	relay        relayUploader
	largeUploads largeFileUploader
	refresher    clientRefresher
	invalidator  cacheInvalidator
	relayMaxMB   float64
	maxFileMB    float64
	logger       *logrus.Logger
}

// NewUploadService crea una nueva instancia del servicio
func NewUploadService(directory drive.Directory, relayClient *relay.Client, script *drive.ScriptClient, syncService *SyncService, queryService *QueryService, cfg config.UploadConfig, logger *logrus.Logger) *UploadService {
	return &UploadService{
		directory:    directory,
		relay:        relayClient,
		largeUploads: script,
		refresher:    syncService,
		invalidator:  queryService,
		relayMaxMB:   cfg.RelayMaxMB,
		maxFileMB:    cfg.MaxFileMB,
		logger:       logger,
	}
}

// UploadRequest describe una subida ya validada por el handler HTTP.
type UploadRequest struct {
	ClientName   string
	ClientID     string
	DocumentType models.DocumentType
	FileName     string
	FileSize     int64
	File         io.Reader
}

// UploadDocument resuelve la carpeta destino y sube el archivo por el camino
// que corresponde a su tamaño. El tamaño se valida antes de tocar la red.
func (s *UploadService) UploadDocument(ctx context.Context, req *UploadRequest) (*models.UploadResult, error) {
	if !req.DocumentType.IsValid() {
		return nil, fmt.Errorf("invalid document type: %s", req.DocumentType)
	}
	if req.ClientName == "" && req.ClientID == "" {
		return nil, fmt.Errorf("client name or id is required")
	}
	if IsJunkFileName(req.FileName) {
		return nil, fmt.Errorf("invalid file name: %s", req.FileName)
	}

	sizeMB := float64(req.FileSize) / (1024 * 1024)
	if sizeMB > s.maxFileMB {
		return nil, fmt.Errorf("%w: %.2f MB (max %.0f MB)", ErrOversizeFile, sizeMB, s.maxFileMB)
	}

	target, err := s.directory.ResolveUploadTarget(ctx, req.ClientName, req.ClientID, req.DocumentType)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrTargetNotFound
	}

	log := s.logger.WithFields(logrus.Fields{
		"file":    req.FileName,
		"type":    req.DocumentType,
		"size_mb": fmt.Sprintf("%.2f", sizeMB),
	})

	var result *models.UploadResult
	if sizeMB <= s.relayMaxMB {
		err = s.relay.Upload(ctx, relay.FileTarget{
			FolderID:     target.FolderID,
			FolderName:   target.FolderName,
			DocumentType: req.DocumentType,
			ClientName:   req.ClientName,
			ClientID:     req.ClientID,
			FileName:     req.FileName,
		}, req.File)
		if err != nil {
			return nil, err
		}
		result = &models.UploadResult{
			Message:    "Archivo enviado correctamente",
			FileName:   req.FileName,
			FolderID:   target.FolderID,
			FolderName: target.FolderName,
			FolderURL:  target.FolderURL,
			Method:     "zapier_relay",
		}
		log.Info("File uploaded through relay webhook")
	} else {
		result, err = s.largeUploads.UploadLargeFile(ctx, target, req.FileName, req.File, req.DocumentType, req.ClientName, req.ClientID)
		if err != nil {
			return nil, err
		}
		log.Info("File uploaded directly to Apps Script")
	}

	result.FileSizeMB = fmt.Sprintf("%.2f MB", sizeMB)

	// El refresh posterior es de mejor esfuerzo: el archivo ya está en
	// Drive aunque el espejo tarde en enterarse.
	if outcome := s.refresher.SyncClient(ctx, req.ClientName, req.ClientID); !outcome.Success {
		s.logger.WithField("message", outcome.Message).Warn("Post-upload client refresh failed")
	}
	s.invalidator.InvalidateClient(req.ClientName, req.ClientID)

	return result, nil
}

// CreateClientFolder crea la carpeta del último cliente registrado y descarta
// el dashboard cacheado para que refleje al cliente nuevo.
func (s *UploadService) CreateClientFolder(ctx context.Context) (*models.CreateFolderResult, error) {
	result, err := s.directory.CreateClientFolder(ctx)
	if err != nil {
		return nil, err
	}

	s.invalidator.InvalidateDashboard()

	return result, nil
}
