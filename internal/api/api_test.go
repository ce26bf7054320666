package api

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/habicapital/docs-service/internal/models"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

// newTestRouter arma un router mínimo para probar la validación de los
// handlers; los requests inválidos nunca llegan a los servicios.
func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	apiHandler := NewAPI(nil, nil, nil, testLogger())

	router := gin.New()
	router.POST("/v1/clients/search", apiHandler.SearchClient)
	router.POST("/v1/clients/auto-sync", apiHandler.AutoSyncClient)
	router.POST("/v1/sync", apiHandler.Sync)
	router.POST("/v1/documents/upload", apiHandler.UploadDocument)
	return router
}

func decodeError(t *testing.T, body *bytes.Buffer) models.ErrorResponse {
	t.Helper()
	var response models.ErrorResponse
	require.NoError(t, json.Unmarshal(body.Bytes(), &response))
	return response
}

func TestSearchClientRequiresNameOrID(t *testing.T) {
	router := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/clients/search", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeError(t, w.Body)
	assert.False(t, response.Success)
	assert.Equal(t, string(models.ErrorCodeInvalidRequest), response.Error.Code)
}

func TestSearchClientRejectsMalformedBody(t *testing.T) {
	router := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/clients/search", strings.NewReader(`{not json`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAutoSyncRequiresNameOrID(t *testing.T) {
	router := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/clients/auto-sync", strings.NewReader(`{"clientName": "", "clientId": ""}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSyncRejectsUnknownAction(t *testing.T) {
	router := newTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/sync", strings.NewReader(`{"action": "reboot"}`))
	req.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeError(t, w.Body)
	require.Len(t, response.Error.Details, 1)
	assert.Equal(t, "action", response.Error.Details[0].Field)
}

func multipartBody(t *testing.T, fields map[string]string, withFile bool) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	for key, value := range fields {
		require.NoError(t, writer.WriteField(key, value))
	}
	if withFile {
		part, err := writer.CreateFormFile("file", "pagare.pdf")
		require.NoError(t, err)
		_, err = part.Write([]byte("contenido"))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &body, writer.FormDataContentType()
}

func TestUploadDocumentRequiresClient(t *testing.T) {
	router := newTestRouter()

	body, contentType := multipartBody(t, map[string]string{
		"documentType": "02_pagare",
	}, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestUploadDocumentRejectsUnknownType(t *testing.T) {
	router := newTestRouter()

	body, contentType := multipartBody(t, map[string]string{
		"clientName":   "Pedro Lopez",
		"clientId":     "1030567890",
		"documentType": "09_desconocido",
	}, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeError(t, w.Body)
	require.Len(t, response.Error.Details, 1)
	assert.Equal(t, "documentType", response.Error.Details[0].Field)
}

func TestUploadDocumentRequiresFile(t *testing.T) {
	router := newTestRouter()

	body, contentType := multipartBody(t, map[string]string{
		"clientName":   "Pedro Lopez",
		"clientId":     "1030567890",
		"documentType": "02_pagare",
	}, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/v1/documents/upload", body)
	req.Header.Set("Content-Type", contentType)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	response := decodeError(t, w.Body)
	require.Len(t, response.Error.Details, 1)
	assert.Equal(t, "file", response.Error.Details[0].Field)
}
