package drive

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/habicapital/docs-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScriptServer(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *ScriptClient) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server, NewScriptClient(server.URL, 5*time.Second, testLogger())
}

func TestScriptAllClients(t *testing.T) {
	_, client := newScriptServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "getAllClients", req["action"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"ok": true,
			"clients": [
				{
					"fecha": "2024-03-01",
					"nombre": "Maria Rodriguez",
					"cedula": "1111111111",
					"folderUrl": "http://drive/f1",
					"hasFolder": true,
					"documentDetails": [
						{"type": "02_pagare", "exists": true, "hasFiles": true, "fileCount": 1,
						 "files": [{"name": "pagare.pdf", "id": "a1", "url": "http://drive/a1", "size": 2048}]}
					]
				}
			]
		}`))
	})

	listings, err := client.AllClients(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 1)

	listing := listings[0]
	assert.Equal(t, "Maria Rodriguez", listing.Nombre)
	assert.Equal(t, "1111111111", listing.Cedula)
	assert.True(t, listing.HasFolder)

	// El script solo reportó un tipo pero el contrato interno siempre
	// entrega los 8.
	require.Len(t, listing.Documents, models.TotalDocumentTypes)
	assert.Equal(t, models.DocumentTypePagare, listing.Documents[1].Type)
	assert.True(t, listing.Documents[1].HasFiles)
	require.Len(t, listing.Documents[1].Files, 1)
	assert.Equal(t, "pagare.pdf", listing.Documents[1].Files[0].Name)
	assert.False(t, listing.Documents[0].HasFiles)
	assert.Empty(t, listing.Documents[0].Files)
}

func TestScriptClientByNameOrIDNotFound(t *testing.T) {
	_, client := newScriptServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": false, "error": "No se encontró carpeta para el cliente Carolina"}`))
	})

	listing, err := client.ClientByNameOrID(context.Background(), "Carolina", "")
	require.NoError(t, err)
	assert.Nil(t, listing)
}

func TestScriptClientByNameOrIDNormalizesCedula(t *testing.T) {
	_, client := newScriptServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"ok": true,
			"data": {"clientName": "20240101_pedro_lopez_1030567890", "clientFolderUrl": "http://drive/f1", "documents": []}
		}`))
	})

	listing, err := client.ClientByNameOrID(context.Background(), "", "1.030.567.890")
	require.NoError(t, err)
	require.NotNil(t, listing)
	assert.Equal(t, "1030567890", listing.Cedula)
	assert.Len(t, listing.Documents, models.TotalDocumentTypes)
}

func TestScriptUpstreamErrorStatus(t *testing.T) {
	_, client := newScriptServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := client.AllClients(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUpstreamUnreachable)
}

func TestScriptMalformedResponse(t *testing.T) {
	_, client := newScriptServer(t, func(w http.ResponseWriter, r *http.Request) {
		// El script a veces responde con la página HTML de error de Google.
		w.Write([]byte(`<html><body>Error</body></html>`))
	})

	_, err := client.AllClients(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidResponse)
}

func TestScriptResolveUploadTarget(t *testing.T) {
	_, client := newScriptServer(t, func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "findFolder", req["action"])
		assert.Equal(t, "02_pagare", req["documentType"])

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"ok": true,
			"folderId": "s2",
			"folderName": "02_pagare",
			"folderUrl": "http://drive/s2",
			"clientFolder": "20240101_pedro_lopez_1030567890"
		}`))
	})

	target, err := client.ResolveUploadTarget(context.Background(), "Pedro", "1030567890", models.DocumentTypePagare)
	require.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, "s2", target.FolderID)
	assert.Equal(t, "02_pagare", target.FolderName)
	assert.Equal(t, "20240101_pedro_lopez_1030567890", target.ClientFolder)
}

func TestScriptResolveUploadTargetSubfolderMissing(t *testing.T) {
	_, client := newScriptServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": false, "error": "Subcarpeta 02_pagare no encontrada"}`))
	})

	target, err := client.ResolveUploadTarget(context.Background(), "Pedro", "1030567890", models.DocumentTypePagare)
	require.NoError(t, err)
	assert.Nil(t, target)
}
