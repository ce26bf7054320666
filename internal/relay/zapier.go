package relay

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/habicapital/docs-service/internal/models"
	"github.com/sirupsen/logrus"
)

// ErrFileTooLarge indica que el webhook rechazó el archivo por tamaño.
var ErrFileTooLarge = errors.New("file too large for relay")

// Client envía archivos pequeños al webhook de Zapier, que a su vez los sube
// a la carpeta de Drive indicada. Los archivos grandes no pasan por acá:
// van directo al Apps Script.
type Client struct {
	webhookURL string
	httpClient *http.Client
	logger     *logrus.Logger
}

// NewClient crea una nueva instancia del cliente del relay
func NewClient(webhookURL string, timeout time.Duration, logger *logrus.Logger) *Client {
	return &Client{
		webhookURL: webhookURL,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Upload envía el archivo y los metadatos de destino al webhook como
// multipart/form-data.
func (c *Client) Upload(ctx context.Context, target FileTarget, file io.Reader) error {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)

	fields := map[string]string{
		"folderId":     target.FolderID,
		"folderName":   target.FolderName,
		"documentType": string(target.DocumentType),
		"clientName":   target.ClientName,
		"clientId":     target.ClientID,
		"fileName":     target.FileName,
	}
	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			return fmt.Errorf("error writing relay field %s: %w", key, err)
		}
	}

	part, err := writer.CreateFormFile("file", target.FileName)
	if err != nil {
		return fmt.Errorf("error creating relay file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("error copying file to relay request: %w", err)
	}
	if err := writer.Close(); err != nil {
		return fmt.Errorf("error closing relay writer: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.webhookURL, &body)
	if err != nil {
		return fmt.Errorf("error creating relay request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("error calling relay webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusRequestEntityTooLarge {
		return ErrFileTooLarge
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(resp.Body)
		c.logger.WithFields(logrus.Fields{
			"status":  resp.StatusCode,
			"payload": string(raw),
		}).Error("Relay webhook returned error")
		return fmt.Errorf("relay webhook error: HTTP %d %s", resp.StatusCode, resp.Status)
	}

	c.logger.WithFields(logrus.Fields{
		"file":   target.FileName,
		"folder": target.FolderName,
	}).Info("File sent to relay webhook")

	return nil
}

// FileTarget describe el archivo y su carpeta destino para el relay.
type FileTarget struct {
	FolderID     string
	FolderName   string
	DocumentType models.DocumentType
	ClientName   string
	ClientID     string
	FileName     string
}
