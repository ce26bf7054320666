package drive

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// Matcher localiza la carpeta de un cliente dentro de la carpeta raíz y las
// subcarpetas de tipo de documento dentro de la carpeta del cliente.
type Matcher struct {
	provider     Provider
	rootFolderID string
	logger       *logrus.Logger
}

// NewMatcher crea una nueva instancia del matcher
func NewMatcher(provider Provider, rootFolderID string, logger *logrus.Logger) *Matcher {
	return &Matcher{
		provider:     provider,
		rootFolderID: rootFolderID,
		logger:       logger,
	}
}

// FindClientFolder busca la carpeta de un cliente por nombre y/o cédula en
// un único recorrido de las subcarpetas de la raíz. Una carpeta coincide por
// nombre si su título en minúsculas contiene el nombre normalizado, y por
// cédula si contiene la cadena de dígitos. Una coincidencia por cédula gana
// sobre una por nombre; entre coincidencias por nombre gana la primera en
// orden de iteración. No encontrar carpeta no es un error: retorna (nil, nil).
func (m *Matcher) FindClientFolder(ctx context.Context, clientName, clientID string) (*Folder, error) {
	searchName := NormalizeName(clientName)
	searchID := NormalizeID(clientID)

	if searchName == "" && searchID == "" {
		return nil, nil
	}

	folders, err := m.provider.Subfolders(ctx, m.rootFolderID)
	if err != nil {
		return nil, fmt.Errorf("error listing root folders: %w", err)
	}

	var nameMatch *Folder
	for i := range folders {
		folderName := strings.ToLower(folders[i].Name)

		if searchID != "" && strings.Contains(folderName, searchID) {
			m.logger.WithFields(logrus.Fields{
				"folder": folders[i].Name,
				"cedula": searchID,
			}).Debug("Client folder matched by cedula")
			return &folders[i], nil
		}

		if nameMatch == nil && searchName != "" && strings.Contains(folderName, searchName) {
			folder := folders[i]
			nameMatch = &folder
		}
	}

	if nameMatch != nil {
		m.logger.WithField("folder", nameMatch.Name).Debug("Client folder matched by name")
		return nameMatch, nil
	}

	m.logger.WithFields(logrus.Fields{
		"name":   searchName,
		"cedula": searchID,
	}).Debug("No client folder matched")
	return nil, nil
}

// FindSubfolder busca la subcarpeta de un tipo de documento dentro de la
// carpeta del cliente por igualdad exacta de nombre (sensible a mayúsculas).
// Si no existe retorna (nil, nil): no hay fallback a la carpeta del cliente.
func (m *Matcher) FindSubfolder(ctx context.Context, clientFolder *Folder, documentType string) (*Folder, error) {
	subfolders, err := m.provider.Subfolders(ctx, clientFolder.ID)
	if err != nil {
		return nil, fmt.Errorf("error listing subfolders of %s: %w", clientFolder.Name, err)
	}

	for i := range subfolders {
		if subfolders[i].Name == documentType {
			return &subfolders[i], nil
		}
	}

	return nil, nil
}
