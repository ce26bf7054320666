package models

// ErrorCode representa el código de error
type ErrorCode string

const (
	ErrorCodeInvalidRequest ErrorCode = "INVALID_REQUEST"
	ErrorCodeNotFound       ErrorCode = "NOT_FOUND"
	ErrorCodeOversizeFile   ErrorCode = "OVERSIZE_FILE"
	ErrorCodeUpstream       ErrorCode = "UPSTREAM_UNREACHABLE"
	ErrorCodeBadUpstream    ErrorCode = "INVALID_UPSTREAM_RESPONSE"
	ErrorCodeInternal       ErrorCode = "INTERNAL"
)

// ErrorDetail representa un detalle específico del error
type ErrorDetail struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ErrorInfo representa la información del error
type ErrorInfo struct {
	Code    string        `json:"code"`
	Message string        `json:"message"`
	Details []ErrorDetail `json:"details,omitempty"`
}

// ErrorResponse representa la respuesta de error estandarizada. Todas las
// respuestas de la API llevan el sobre {success, data|error}.
type ErrorResponse struct {
	Success bool      `json:"success"`
	Error   ErrorInfo `json:"error"`
}

// Meta acompaña las respuestas de lectura con información de la consulta.
type Meta struct {
	QueryTimeMS int64  `json:"queryTime"`
	Source      string `json:"source"`
	LastUpdated string `json:"lastUpdated,omitempty"`
}

// SuccessResponse representa la respuesta exitosa estandarizada.
type SuccessResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Message string      `json:"message,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// NewSuccessResponse crea una respuesta exitosa con datos
func NewSuccessResponse(data interface{}) SuccessResponse {
	return SuccessResponse{Success: true, Data: data}
}

// NewErrorResponse crea una nueva respuesta de error
func NewErrorResponse(code ErrorCode, message string) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error: ErrorInfo{
			Code:    string(code),
			Message: message,
		},
	}
}

// NewValidationError crea un error de validación con detalles
func NewValidationError(message string, details []ErrorDetail) ErrorResponse {
	return ErrorResponse{
		Success: false,
		Error: ErrorInfo{
			Code:    string(ErrorCodeInvalidRequest),
			Message: message,
			Details: details,
		},
	}
}

// NewNotFoundError crea un error de recurso no encontrado
func NewNotFoundError(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeNotFound, message)
}

// NewOversizeFileError crea un error de archivo demasiado grande
func NewOversizeFileError(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeOversizeFile, message)
}

// NewUpstreamError crea un error de servicio externo inalcanzable
func NewUpstreamError(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeUpstream, message)
}

// NewInternalError crea un error interno del servidor
func NewInternalError(message string) ErrorResponse {
	return NewErrorResponse(ErrorCodeInternal, message)
}
