package models

// SearchClientRequest es el request de búsqueda de un cliente. Al menos uno
// de los dos campos debe venir informado; la validación es del handler.
type SearchClientRequest struct {
	ClientName string `json:"clientName"`
	ClientID   string `json:"clientId"`
}

// SyncRequest es el request del endpoint de sincronización manual.
type SyncRequest struct {
	Action string `json:"action"`
}

// SyncStats son los contadores de una corrida de sincronización.
type SyncStats struct {
	ClientsUpdated   int   `json:"clientsUpdated"`
	DocumentsUpdated int   `json:"documentsUpdated"`
	FilesUpdated     int   `json:"filesUpdated"`
	Failures         int   `json:"failures"`
	DurationMS       int64 `json:"duration"`
}

// SyncResult es el resultado que el servicio de sincronización reporta a su
// llamador. No hay reintento automático: el reintento es una acción manual.
type SyncResult struct {
	Success bool       `json:"success"`
	Message string     `json:"message"`
	Stats   *SyncStats `json:"stats,omitempty"`
}

// UploadResult es la respuesta de una subida de documento.
type UploadResult struct {
	Message    string `json:"message"`
	FileName   string `json:"fileName"`
	FileSizeMB string `json:"fileSize"`
	FolderID   string `json:"folderId"`
	FolderName string `json:"folderName"`
	FolderURL  string `json:"folderUrl"`
	Method     string `json:"method"`
}

// CreateFolderResult es la respuesta de la creación de carpeta de cliente.
type CreateFolderResult struct {
	FolderName string `json:"folderName"`
	FolderURL  string `json:"folderUrl"`
}
