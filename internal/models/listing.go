package models

import "time"

// Estas estructuras son el contrato entre el lado Drive (directorio de
// carpetas) y el servicio de sincronización. Son el resultado crudo de la
// agregación por cliente, antes de la validación defensiva del sync.

// FileListing es un archivo tal como lo reporta el lado Drive.
type FileListing struct {
	Name         string     `json:"name"`
	ID           string     `json:"id"`
	URL          string     `json:"url"`
	DownloadURL  string     `json:"downloadUrl"`
	Size         int64      `json:"size"`
	LastModified *time.Time `json:"lastModified,omitempty"`
}

// DocumentListing es el estado de un tipo de documento reportado por el lado
// Drive. HasFiles y FileCount se recalculan en el sync a partir de Files: el
// booleano upstream no se toma como verdad absoluta.
type DocumentListing struct {
	Type      DocumentType  `json:"type"`
	Exists    bool          `json:"exists"`
	FolderID  string        `json:"folderId,omitempty"`
	FolderURL string        `json:"folderUrl,omitempty"`
	HasFiles  bool          `json:"hasFiles"`
	FileCount int           `json:"fileCount"`
	Files     []FileListing `json:"files"`
}

// ClientListing es la fila completa de un cliente en el listado masivo.
type ClientListing struct {
	Nombre    string            `json:"nombre"`
	Cedula    string            `json:"cedula"`
	Fecha     string            `json:"fecha"`
	FolderURL string            `json:"folderUrl,omitempty"`
	FolderID  string            `json:"folderId,omitempty"`
	HasFolder bool              `json:"hasFolder"`
	Documents []DocumentListing `json:"documentDetails"`
}
