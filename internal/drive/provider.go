package drive

import (
	"context"
	"time"
)

// Folder representa una carpeta del almacenamiento.
type Folder struct {
	ID   string
	Name string
	URL  string
}

// FileInfo representa un archivo tal como lo reporta el almacenamiento.
// Un archivo es válido solo si no está en la papelera y su tamaño es mayor
// a cero; los inválidos se excluyen de la agregación por completo.
type FileInfo struct {
	ID           string
	Name         string
	URL          string
	DownloadURL  string
	Size         int64
	Trashed      bool
	LastModified *time.Time
}

// Provider abstrae el acceso al árbol de carpetas (Google Drive en
// producción, un árbol en memoria en los tests).
type Provider interface {
	// Subfolders lista las subcarpetas inmediatas de una carpeta.
	Subfolders(ctx context.Context, folderID string) ([]Folder, error)
	// Files lista los archivos inmediatos de una carpeta, incluyendo los
	// que están en papelera: el filtrado de validez es del agregador.
	Files(ctx context.Context, folderID string) ([]FileInfo, error)
	// CreateFolder crea una subcarpeta dentro de la carpeta dada.
	CreateFolder(ctx context.Context, parentID, name string) (*Folder, error)
}
