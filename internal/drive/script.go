package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/habicapital/docs-service/internal/models"
	"github.com/sirupsen/logrus"
)

// Errores del protocolo con el Apps Script.
var (
	// ErrUpstreamUnreachable indica que el script no respondió o respondió
	// con un status no exitoso.
	ErrUpstreamUnreachable = errors.New("upstream unreachable")
	// ErrInvalidResponse indica una respuesta no-JSON o con forma inesperada.
	ErrInvalidResponse = errors.New("invalid upstream response")
)

// El script reporta "no encontrado" como ok:false con este prefijo en el
// mensaje; es parte del contrato con la versión desplegada del script.
const notFoundPrefix = "No se encontró carpeta"

// ScriptClient habla el protocolo JSON del Apps Script desplegado sobre el
// Drive de clientes: acciones findFolder, getAllClients, uploadLargeFile y
// la acción por defecto de creación de carpeta.
type ScriptClient struct {
	url        string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewScriptClient crea una nueva instancia del cliente del Apps Script
func NewScriptClient(url string, timeout time.Duration, logger *logrus.Logger) *ScriptClient {
	return &ScriptClient{
		url:        url,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

type scriptRequest struct {
	Action       string `json:"action,omitempty"`
	ClientName   string `json:"clientName,omitempty"`
	ClientID     string `json:"clientId,omitempty"`
	DocumentType string `json:"documentType,omitempty"`
}

type scriptFile struct {
	Name         string `json:"name"`
	ID           string `json:"id"`
	URL          string `json:"url"`
	DownloadURL  string `json:"downloadUrl"`
	Size         int64  `json:"size"`
	LastModified string `json:"lastModified"`
}

type scriptDocument struct {
	Type      string       `json:"type"`
	Exists    bool         `json:"exists"`
	FolderID  string       `json:"folderId"`
	FolderURL string       `json:"folderUrl"`
	HasFiles  bool         `json:"hasFiles"`
	FileCount int          `json:"fileCount"`
	Files     []scriptFile `json:"files"`
}

type scriptClientRow struct {
	Fecha           string           `json:"fecha"`
	Nombre          string           `json:"nombre"`
	Cedula          string           `json:"cedula"`
	FolderURL       string           `json:"folderUrl"`
	FolderID        string           `json:"folderId"`
	HasFolder       bool             `json:"hasFolder"`
	DocumentDetails []scriptDocument `json:"documentDetails"`
}

type scriptEnvelope struct {
	OK    bool   `json:"ok"`
	Error string `json:"error"`

	// getAllClients
	Clients []scriptClientRow `json:"clients"`

	// findFolder sin documentType (modo optimizado)
	Data *struct {
		ClientName      string           `json:"clientName"`
		ClientFolderURL string           `json:"clientFolderUrl"`
		Documents       []scriptDocument `json:"documents"`
	} `json:"data"`

	// findFolder con documentType
	FolderID     string `json:"folderId"`
	FolderName   string `json:"folderName"`
	FolderURL    string `json:"folderUrl"`
	ClientFolder string `json:"clientFolder"`

	// uploadLargeFile / creación de carpeta
	FileID      string `json:"fileId"`
	FileName    string `json:"fileName"`
	FileURL     string `json:"fileUrl"`
	DownloadURL string `json:"downloadUrl"`
	Message     string `json:"message"`
}

// post envía una acción JSON al script y decodifica el sobre de respuesta.
func (c *ScriptClient) post(ctx context.Context, req scriptRequest) (*scriptEnvelope, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("error encoding script request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("error creating script request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrUpstreamUnreachable, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrUpstreamUnreachable, resp.StatusCode)
	}

	var envelope scriptEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		c.logger.WithField("payload", string(raw)).Error("Non-JSON response from Apps Script")
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	return &envelope, nil
}

// AllClients ejecuta la acción getAllClients.
func (c *ScriptClient) AllClients(ctx context.Context) ([]models.ClientListing, error) {
	envelope, err := c.post(ctx, scriptRequest{Action: "getAllClients"})
	if err != nil {
		return nil, err
	}
	if !envelope.OK {
		return nil, fmt.Errorf("apps script error: %s", envelope.Error)
	}
	if envelope.Clients == nil {
		return nil, fmt.Errorf("%w: missing clients field", ErrInvalidResponse)
	}

	listings := make([]models.ClientListing, 0, len(envelope.Clients))
	for _, row := range envelope.Clients {
		listings = append(listings, models.ClientListing{
			Nombre:    row.Nombre,
			Cedula:    row.Cedula,
			Fecha:     row.Fecha,
			FolderURL: row.FolderURL,
			FolderID:  row.FolderID,
			HasFolder: row.HasFolder,
			Documents: convertScriptDocuments(row.DocumentDetails),
		})
	}

	return listings, nil
}

// ClientByNameOrID ejecuta findFolder sin documentType: el script responde
// con la agregación completa de los 8 documentos.
func (c *ScriptClient) ClientByNameOrID(ctx context.Context, clientName, clientID string) (*models.ClientListing, error) {
	envelope, err := c.post(ctx, scriptRequest{
		Action:     "findFolder",
		ClientName: clientName,
		ClientID:   clientID,
	})
	if err != nil {
		return nil, err
	}
	if !envelope.OK {
		if strings.HasPrefix(envelope.Error, notFoundPrefix) {
			return nil, nil
		}
		return nil, fmt.Errorf("apps script error: %s", envelope.Error)
	}
	if envelope.Data == nil {
		return nil, fmt.Errorf("%w: missing data field", ErrInvalidResponse)
	}

	return &models.ClientListing{
		Nombre:    envelope.Data.ClientName,
		Cedula:    NormalizeID(clientID),
		FolderURL: envelope.Data.ClientFolderURL,
		HasFolder: true,
		Documents: convertScriptDocuments(envelope.Data.Documents),
	}, nil
}

// ResolveUploadTarget ejecuta findFolder con documentType para resolver la
// subcarpeta destino de una subida.
func (c *ScriptClient) ResolveUploadTarget(ctx context.Context, clientName, clientID string, documentType models.DocumentType) (*UploadTarget, error) {
	envelope, err := c.post(ctx, scriptRequest{
		Action:       "findFolder",
		ClientName:   clientName,
		ClientID:     clientID,
		DocumentType: string(documentType),
	})
	if err != nil {
		return nil, err
	}
	if !envelope.OK {
		if strings.HasPrefix(envelope.Error, notFoundPrefix) || strings.Contains(envelope.Error, "no encontrada") {
			return nil, nil
		}
		return nil, fmt.Errorf("apps script error: %s", envelope.Error)
	}

	return &UploadTarget{
		FolderID:     envelope.FolderID,
		FolderName:   envelope.FolderName,
		FolderURL:    envelope.FolderURL,
		ClientFolder: envelope.ClientFolder,
	}, nil
}

// CreateClientFolder ejecuta la acción por defecto del script: crear la
// carpeta del último cliente registrado con sus 8 subcarpetas.
func (c *ScriptClient) CreateClientFolder(ctx context.Context) (*models.CreateFolderResult, error) {
	envelope, err := c.post(ctx, scriptRequest{})
	if err != nil {
		return nil, err
	}
	if !envelope.OK {
		return nil, fmt.Errorf("apps script error: %s", envelope.Error)
	}

	return &models.CreateFolderResult{FolderURL: envelope.FolderURL}, nil
}

// UploadLargeFile sube un archivo grande directamente al script como
// multipart, evitando el relay de Zapier.
func (c *ScriptClient) UploadLargeFile(ctx context.Context, target *UploadTarget, fileName string, file io.Reader, documentType models.DocumentType, clientName, clientID string) (*models.UploadResult, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fields := map[string]string{
		"action":       "uploadLargeFile",
		"folderId":     target.FolderID,
		"folderName":   target.FolderName,
		"fileName":     fileName,
		"documentType": string(documentType),
		"clientName":   clientName,
		"clientId":     clientID,
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return nil, fmt.Errorf("error writing multipart field %s: %w", key, err)
		}
	}

	part, err := writer.CreateFormFile("file", fileName)
	if err != nil {
		return nil, fmt.Errorf("error creating multipart file: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("error copying file content: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("error closing multipart writer: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, &body)
	if err != nil {
		return nil, fmt.Errorf("error creating upload request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstreamUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrUpstreamUnreachable, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: HTTP %d", ErrUpstreamUnreachable, resp.StatusCode)
	}

	var envelope scriptEnvelope
	if err := json.Unmarshal(raw, &envelope); err != nil {
		c.logger.WithField("payload", string(raw)).Error("Non-JSON response from Apps Script upload")
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	if !envelope.OK {
		return nil, fmt.Errorf("apps script error: %s", envelope.Error)
	}

	c.logger.WithFields(logrus.Fields{
		"file":   fileName,
		"folder": target.FolderName,
	}).Info("Large file uploaded through Apps Script")

	return &models.UploadResult{
		Message:    envelope.Message,
		FileName:   envelope.FileName,
		FolderID:   target.FolderID,
		FolderName: target.FolderName,
		FolderURL:  target.FolderURL,
		Method:     "direct_appscript_upload",
	}, nil
}

// convertScriptDocuments normaliza los documentos del script al contrato
// interno, garantizando las 8 entradas aunque el script haya omitido alguna.
func convertScriptDocuments(docs []scriptDocument) []models.DocumentListing {
	byType := make(map[string]scriptDocument, len(docs))
	for _, d := range docs {
		byType[d.Type] = d
	}

	result := make([]models.DocumentListing, 0, models.TotalDocumentTypes)
	for _, docType := range models.DocumentTypes() {
		d, ok := byType[string(docType)]
		if !ok {
			result = append(result, models.DocumentListing{
				Type:  docType,
				Files: []models.FileListing{},
			})
			continue
		}

		files := make([]models.FileListing, 0, len(d.Files))
		for _, f := range d.Files {
			listing := models.FileListing{
				Name:        f.Name,
				ID:          f.ID,
				URL:         f.URL,
				DownloadURL: f.DownloadURL,
				Size:        f.Size,
			}
			if ts, err := time.Parse(time.RFC3339, f.LastModified); err == nil {
				listing.LastModified = &ts
			}
			files = append(files, listing)
		}

		result = append(result, models.DocumentListing{
			Type:      docType,
			Exists:    d.Exists,
			FolderID:  d.FolderID,
			FolderURL: d.FolderURL,
			HasFiles:  d.HasFiles,
			FileCount: d.FileCount,
			Files:     files,
		})
	}

	return result
}
