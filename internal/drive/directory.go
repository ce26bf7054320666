package drive

import (
	"context"
	"fmt"
	"time"

	"github.com/habicapital/docs-service/internal/models"
	"github.com/sirupsen/logrus"
)

// RegistryEntry es una fila del registro de clientes (la hoja "Creditos").
type RegistryEntry struct {
	Row       int
	Fecha     string
	Nombre    string
	Cedula    string
	FolderURL string
}

// Registry abstrae el registro de clientes en Google Sheets.
type Registry interface {
	// Clients retorna todas las filas con datos válidos del registro.
	Clients(ctx context.Context) ([]RegistryEntry, error)
	// SetFolderURL escribe la URL de la carpeta creada en la fila dada.
	SetFolderURL(ctx context.Context, row int, url string) error
}

// UploadTarget es la carpeta destino resuelta para una subida.
type UploadTarget struct {
	FolderID     string
	FolderName   string
	FolderURL    string
	ClientFolder string
}

// Directory es la vista del lado Drive que consumen la sincronización y las
// subidas. Tiene dos implementaciones: la nativa (registro + matcher +
// agregador sobre la API de Google) y el cliente del Apps Script heredado.
type Directory interface {
	// AllClients retorna el listado masivo de clientes con sus documentos.
	AllClients(ctx context.Context) ([]models.ClientListing, error)
	// ClientByNameOrID retorna el listado de un solo cliente, o (nil, nil)
	// si no hay carpeta que coincida.
	ClientByNameOrID(ctx context.Context, clientName, clientID string) (*models.ClientListing, error)
	// ResolveUploadTarget resuelve la subcarpeta destino de una subida, o
	// (nil, nil) si el cliente o la subcarpeta no existen.
	ResolveUploadTarget(ctx context.Context, clientName, clientID string, documentType models.DocumentType) (*UploadTarget, error)
	// CreateClientFolder crea la carpeta del último cliente registrado con
	// sus 8 subcarpetas y retorna la URL.
	CreateClientFolder(ctx context.Context) (*models.CreateFolderResult, error)
}

// Service es la implementación nativa de Directory sobre un Provider y un
// Registry. Replica el comportamiento del Apps Script con la API de Google.
type Service struct {
	provider   Provider
	registry   Registry
	matcher    *Matcher
	aggregator *Aggregator
	rootID     string
	logger     *logrus.Logger
}

// NewService crea una nueva instancia del directorio nativo
func NewService(provider Provider, registry Registry, rootFolderID string, logger *logrus.Logger) *Service {
	return &Service{
		provider:   provider,
		registry:   registry,
		matcher:    NewMatcher(provider, rootFolderID, logger),
		aggregator: NewAggregator(provider, logger),
		rootID:     rootFolderID,
		logger:     logger,
	}
}

// AllClients recorre el registro y, por cada cliente, resuelve su carpeta y
// agrega sus documentos. Un cliente sin carpeta se reporta con hasFolder
// en false y sin documentos, no se omite.
func (s *Service) AllClients(ctx context.Context) ([]models.ClientListing, error) {
	entries, err := s.registry.Clients(ctx)
	if err != nil {
		return nil, fmt.Errorf("error reading client registry: %w", err)
	}

	listings := make([]models.ClientListing, 0, len(entries))
	for _, entry := range entries {
		listing := models.ClientListing{
			Nombre:    entry.Nombre,
			Cedula:    entry.Cedula,
			Fecha:     entry.Fecha,
			FolderURL: entry.FolderURL,
			Documents: []models.DocumentListing{},
		}

		folder, err := s.matcher.FindClientFolder(ctx, entry.Nombre, entry.Cedula)
		if err != nil {
			return nil, err
		}
		if folder != nil {
			documents, err := s.aggregator.AggregateDocuments(ctx, folder)
			if err != nil {
				return nil, err
			}
			listing.FolderID = folder.ID
			listing.FolderURL = folder.URL
			listing.HasFolder = true
			listing.Documents = documents
		}

		listings = append(listings, listing)
	}

	s.logger.WithField("clients", len(listings)).Info("Client listing aggregated from Drive")
	return listings, nil
}

// ClientByNameOrID resuelve un solo cliente: carpeta más agregación completa.
func (s *Service) ClientByNameOrID(ctx context.Context, clientName, clientID string) (*models.ClientListing, error) {
	folder, err := s.matcher.FindClientFolder(ctx, clientName, clientID)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, nil
	}

	documents, err := s.aggregator.AggregateDocuments(ctx, folder)
	if err != nil {
		return nil, err
	}

	return &models.ClientListing{
		Nombre:    folder.Name,
		Cedula:    NormalizeID(clientID),
		FolderID:  folder.ID,
		FolderURL: folder.URL,
		HasFolder: true,
		Documents: documents,
	}, nil
}

// ResolveUploadTarget busca la carpeta del cliente y dentro de ella la
// subcarpeta exacta del tipo de documento.
func (s *Service) ResolveUploadTarget(ctx context.Context, clientName, clientID string, documentType models.DocumentType) (*UploadTarget, error) {
	folder, err := s.matcher.FindClientFolder(ctx, clientName, clientID)
	if err != nil {
		return nil, err
	}
	if folder == nil {
		return nil, nil
	}

	subfolder, err := s.matcher.FindSubfolder(ctx, folder, string(documentType))
	if err != nil {
		return nil, err
	}
	if subfolder == nil {
		return nil, nil
	}

	return &UploadTarget{
		FolderID:     subfolder.ID,
		FolderName:   subfolder.Name,
		FolderURL:    subfolder.URL,
		ClientFolder: folder.Name,
	}, nil
}

// CreateClientFolder crea la carpeta del último cliente del registro con el
// formato fecha_nombre_cedula, sus 8 subcarpetas de documentos, y escribe la
// URL resultante de vuelta en el registro.
func (s *Service) CreateClientFolder(ctx context.Context) (*models.CreateFolderResult, error) {
	entries, err := s.registry.Clients(ctx)
	if err != nil {
		return nil, fmt.Errorf("error reading client registry: %w", err)
	}
	if len(entries) == 0 {
		return nil, fmt.Errorf("client registry is empty")
	}

	entry := entries[len(entries)-1]
	folderName := formatFolderName(entry)

	folder, err := s.provider.CreateFolder(ctx, s.rootID, folderName)
	if err != nil {
		return nil, fmt.Errorf("error creating client folder %s: %w", folderName, err)
	}

	for _, docType := range models.DocumentTypes() {
		if _, err := s.provider.CreateFolder(ctx, folder.ID, string(docType)); err != nil {
			return nil, fmt.Errorf("error creating subfolder %s: %w", docType, err)
		}
	}

	if err := s.registry.SetFolderURL(ctx, entry.Row, folder.URL); err != nil {
		s.logger.WithError(err).Warn("Folder created but registry write-back failed")
	}

	s.logger.WithFields(logrus.Fields{
		"folder": folderName,
		"cedula": entry.Cedula,
	}).Info("Client folder created")

	return &models.CreateFolderResult{
		FolderName: folderName,
		FolderURL:  folder.URL,
	}, nil
}

// formatFolderName arma el nombre de carpeta fecha_nombre_cedula.
func formatFolderName(entry RegistryEntry) string {
	fecha := entry.Fecha
	if parsed, err := time.Parse("2006-01-02", fecha); err == nil {
		fecha = parsed.Format("20060102")
	}
	return fecha + "_" + NormalizeName(entry.Nombre) + "_" + NormalizeID(entry.Cedula)
}
