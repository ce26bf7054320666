package services

import (
	"strings"

	"github.com/habicapital/docs-service/internal/models"
)

// El lado Drive ya filtra archivos en papelera y vacíos, pero el sync no
// confía ciegamente en el booleano hasFiles que viene de arriba: recalcula
// el estado a partir de la lista real de archivos, descartando además
// nombres basura que puedan haberse colado.

// IsJunkFileName detecta archivos temporales y artefactos de sistema
// operativo que no cuentan como documentos del cliente.
func IsJunkFileName(name string) bool {
	if name == "" {
		return true
	}
	lower := strings.ToLower(name)
	switch {
	case strings.HasPrefix(lower, "~$"): // temporales de Office
		return true
	case strings.HasPrefix(lower, "."): // ocultos (.DS_Store, etc)
		return true
	case lower == "desktop.ini", lower == "thumbs.db": // Windows
		return true
	}
	return false
}

// FilterValidFiles retorna solo los archivos que cuentan como documentos.
// El filtro de papelera y tamaño cero ya ocurrió en la agregación; acá solo
// se descartan los nombres basura.
func FilterValidFiles(files []models.FileListing) []models.FileListing {
	valid := make([]models.FileListing, 0, len(files))
	for _, f := range files {
		if IsJunkFileName(f.Name) {
			continue
		}
		valid = append(valid, f)
	}
	return valid
}
