package drive

import (
	"context"
	"fmt"

	"github.com/habicapital/docs-service/internal/models"
	"github.com/sirupsen/logrus"
)

// Aggregator produce el estado documental completo de un cliente: las 8
// subcarpetas esperadas con sus archivos válidos.
type Aggregator struct {
	provider Provider
	logger   *logrus.Logger
}

// NewAggregator crea una nueva instancia del agregador
func NewAggregator(provider Provider, logger *logrus.Logger) *Aggregator {
	return &Aggregator{
		provider: provider,
		logger:   logger,
	}
}

// AggregateDocuments enumera los 8 tipos de documento de un cliente en una
// sola pasada: un único listado de subcarpetas alimenta un mapa por nombre
// que se consulta una vez por tipo esperado, en lugar de re-enumerar las
// subcarpetas por cada tipo. El resultado siempre tiene exactamente 8
// entradas en el orden del enum; las subcarpetas ausentes se reportan con
// exists=false y cero archivos.
func (a *Aggregator) AggregateDocuments(ctx context.Context, clientFolder *Folder) ([]models.DocumentListing, error) {
	subfolders, err := a.provider.Subfolders(ctx, clientFolder.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing subfolders of %s: %w", clientFolder.Name, err)
	}

	subfolderByName := make(map[string]*Folder, len(subfolders))
	for i := range subfolders {
		subfolderByName[subfolders[i].Name] = &subfolders[i]
	}

	documents := make([]models.DocumentListing, 0, models.TotalDocumentTypes)
	for _, docType := range models.DocumentTypes() {
		subfolder, ok := subfolderByName[string(docType)]
		if !ok {
			documents = append(documents, models.DocumentListing{
				Type:  docType,
				Files: []models.FileListing{},
			})
			continue
		}

		files := a.listValidFiles(ctx, subfolder)
		documents = append(documents, models.DocumentListing{
			Type:      docType,
			Exists:    true,
			FolderID:  subfolder.ID,
			FolderURL: subfolder.URL,
			HasFiles:  len(files) > 0,
			FileCount: len(files),
			Files:     files,
		})
	}

	return documents, nil
}

// listValidFiles lista los archivos válidos de una subcarpeta. Un error al
// listar se trata como subcarpeta sin archivos: un archivo problemático no
// aborta la agregación completa.
func (a *Aggregator) listValidFiles(ctx context.Context, subfolder *Folder) []models.FileListing {
	files, err := a.provider.Files(ctx, subfolder.ID)
	if err != nil {
		a.logger.WithError(err).WithField("folder", subfolder.Name).Warn("Error listing files, treating folder as empty")
		return []models.FileListing{}
	}

	valid := make([]models.FileListing, 0, len(files))
	for _, f := range files {
		if f.Trashed {
			a.logger.WithField("file", f.Name).Debug("Skipping trashed file")
			continue
		}
		if f.Size == 0 {
			a.logger.WithField("file", f.Name).Debug("Skipping empty file")
			continue
		}
		valid = append(valid, models.FileListing{
			Name:         f.Name,
			ID:           f.ID,
			URL:          f.URL,
			DownloadURL:  f.DownloadURL,
			Size:         f.Size,
			LastModified: f.LastModified,
		})
	}

	return valid
}
