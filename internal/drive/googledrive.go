package drive

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
	gdrive "google.golang.org/api/drive/v3"
	"google.golang.org/api/option"
)

const folderMimeType = "application/vnd.google-apps.folder"

// GoogleDriveProvider implementa Provider sobre la API de Google Drive v3.
// Es el equivalente nativo del DriveApp que usa el Apps Script.
type GoogleDriveProvider struct {
	service *gdrive.Service
	logger  *logrus.Logger
}

// NewGoogleDriveProvider crea el proveedor con credenciales de cuenta de servicio
func NewGoogleDriveProvider(ctx context.Context, credentialsFile string, logger *logrus.Logger) (*GoogleDriveProvider, error) {
	service, err := gdrive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(gdrive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("error creating Drive service: %w", err)
	}

	return &GoogleDriveProvider{
		service: service,
		logger:  logger,
	}, nil
}

// Subfolders lista las subcarpetas inmediatas de una carpeta.
func (p *GoogleDriveProvider) Subfolders(ctx context.Context, folderID string) ([]Folder, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType = '%s' and trashed = false", folderID, folderMimeType)

	var folders []Folder
	pageToken := ""
	for {
		call := p.service.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name, webViewLink)").
			PageSize(1000).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		list, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("%w: listing folders: %v", ErrUpstreamUnreachable, err)
		}

		for _, f := range list.Files {
			folders = append(folders, Folder{
				ID:   f.Id,
				Name: f.Name,
				URL:  f.WebViewLink,
			})
		}

		if list.NextPageToken == "" {
			break
		}
		pageToken = list.NextPageToken
	}

	return folders, nil
}

// Files lista los archivos inmediatos de una carpeta. Incluye los archivos
// en papelera: el agregador es quien decide la validez.
func (p *GoogleDriveProvider) Files(ctx context.Context, folderID string) ([]FileInfo, error) {
	query := fmt.Sprintf("'%s' in parents and mimeType != '%s'", folderID, folderMimeType)

	var files []FileInfo
	pageToken := ""
	for {
		call := p.service.Files.List().
			Q(query).
			Fields("nextPageToken, files(id, name, size, trashed, modifiedTime, webViewLink, webContentLink)").
			PageSize(1000).
			Context(ctx)
		if pageToken != "" {
			call = call.PageToken(pageToken)
		}

		list, err := call.Do()
		if err != nil {
			return nil, fmt.Errorf("%w: listing files: %v", ErrUpstreamUnreachable, err)
		}

		for _, f := range list.Files {
			info := FileInfo{
				ID:          f.Id,
				Name:        f.Name,
				URL:         f.WebViewLink,
				DownloadURL: fmt.Sprintf("https://drive.google.com/file/d/%s/view", f.Id),
				Size:        f.Size,
				Trashed:     f.Trashed,
			}
			if ts, err := time.Parse(time.RFC3339, f.ModifiedTime); err == nil {
				info.LastModified = &ts
			}
			files = append(files, info)
		}

		if list.NextPageToken == "" {
			break
		}
		pageToken = list.NextPageToken
	}

	return files, nil
}

// CreateFolder crea una subcarpeta dentro de la carpeta dada.
func (p *GoogleDriveProvider) CreateFolder(ctx context.Context, parentID, name string) (*Folder, error) {
	created, err := p.service.Files.Create(&gdrive.File{
		Name:     name,
		MimeType: folderMimeType,
		Parents:  []string{parentID},
	}).Fields("id, name, webViewLink").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("%w: creating folder %s: %v", ErrUpstreamUnreachable, name, err)
	}

	p.logger.WithFields(logrus.Fields{
		"folder": name,
		"parent": parentID,
	}).Debug("Folder created in Drive")

	return &Folder{
		ID:   created.Id,
		Name: created.Name,
		URL:  created.WebViewLink,
	}, nil
}
