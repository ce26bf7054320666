package models

// DocumentType representa una de las 8 categorías fijas de documentos
// requeridos por cliente de crédito. El orden y los nombres son el contrato
// entre las carpetas de Drive y el espejo relacional: deben coincidir
// exactamente con los nombres de las subcarpetas.
type DocumentType string

const (
	DocumentTypeEscritura            DocumentType = "01_escritura"
	DocumentTypePagare               DocumentType = "02_pagare"
	DocumentTypeContratoCredito      DocumentType = "03_contrato_credito"
	DocumentTypeCartaDeInstrucciones DocumentType = "04_carta_de_instrucciones"
	DocumentTypeAceptacionDeCredito  DocumentType = "05_aceptacion_de_credito"
	DocumentTypeAvaluo               DocumentType = "06_avaluo"
	DocumentTypeContratoInterco      DocumentType = "07_contrato_interco"
	DocumentTypeFinanzas             DocumentType = "08_Finanzas"
)

// DocumentTypes retorna los 8 tipos en orden fijo.
func DocumentTypes() []DocumentType {
	return []DocumentType{
		DocumentTypeEscritura,
		DocumentTypePagare,
		DocumentTypeContratoCredito,
		DocumentTypeCartaDeInstrucciones,
		DocumentTypeAceptacionDeCredito,
		DocumentTypeAvaluo,
		DocumentTypeContratoInterco,
		DocumentTypeFinanzas,
	}
}

// TotalDocumentTypes es el denominador fijo para el cálculo de progreso.
const TotalDocumentTypes = 8

var documentTypeLabels = map[DocumentType]string{
	DocumentTypeEscritura:            "Escritura",
	DocumentTypePagare:               "Pagaré",
	DocumentTypeContratoCredito:      "Contrato de Crédito",
	DocumentTypeCartaDeInstrucciones: "Carta de Instrucciones",
	DocumentTypeAceptacionDeCredito:  "Aceptación de Crédito",
	DocumentTypeAvaluo:               "Avalúo",
	DocumentTypeContratoInterco:      "Contrato Interco",
	DocumentTypeFinanzas:             "Finanzas",
}

// Label retorna la etiqueta legible del tipo de documento.
func (t DocumentType) Label() string {
	if label, ok := documentTypeLabels[t]; ok {
		return label
	}
	return string(t)
}

// IsValid verifica que el tipo sea uno de los 8 conocidos.
func (t DocumentType) IsValid() bool {
	_, ok := documentTypeLabels[t]
	return ok
}
