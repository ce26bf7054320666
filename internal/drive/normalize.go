package drive

import (
	"regexp"
	"strings"
)

var (
	whitespaceRe = regexp.MustCompile(`\s+`)
	nonDigitRe   = regexp.MustCompile(`[^\d]`)
)

// NormalizeName normaliza un nombre de cliente para búsqueda: recorta,
// pasa a minúsculas y colapsa espacios en "_". Las carpetas de clientes se
// crean con el mismo formato (fecha_nombre_cedula), así que el substring
// normalizado coincide con el título de la carpeta.
func NormalizeName(name string) string {
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return ""
	}
	return strings.ToLower(whitespaceRe.ReplaceAllString(trimmed, "_"))
}

// NormalizeID normaliza una cédula: deja únicamente los dígitos.
// Es idempotente: NormalizeID(NormalizeID(s)) == NormalizeID(s).
func NormalizeID(id string) string {
	return nonDigitRe.ReplaceAllString(id, "")
}
