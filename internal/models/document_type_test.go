package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDocumentTypesOrderAndCount(t *testing.T) {
	types := DocumentTypes()
	assert.Len(t, types, TotalDocumentTypes)
	assert.Equal(t, DocumentTypeEscritura, types[0])
	assert.Equal(t, DocumentTypeFinanzas, types[7])
}

func TestDocumentTypeIsValid(t *testing.T) {
	for _, docType := range DocumentTypes() {
		assert.True(t, docType.IsValid(), string(docType))
	}
	assert.False(t, DocumentType("09_desconocido").IsValid())
	assert.False(t, DocumentType("").IsValid())
	// El contrato es sensible a mayúsculas: la carpeta real es 08_Finanzas.
	assert.False(t, DocumentType("08_finanzas").IsValid())
}

func TestDocumentTypeLabel(t *testing.T) {
	assert.Equal(t, "Pagaré", DocumentTypePagare.Label())
	assert.Equal(t, "09_otro", DocumentType("09_otro").Label())
}
