package relay

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

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

func testTarget() FileTarget {
	return FileTarget{
		FolderID:     "s2",
		FolderName:   "02_pagare",
		DocumentType: models.DocumentTypePagare,
		ClientName:   "Pedro Lopez",
		ClientID:     "1030567890",
		FileName:     "pagare_firmado.pdf",
	}
}

func TestUploadSendsMultipartFields(t *testing.T) {
	var received map[string]string
	var fileContent string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(1<<20))

		received = map[string]string{}
		for key := range r.MultipartForm.Value {
			received[key] = r.FormValue(key)
		}

		file, _, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		raw, err := io.ReadAll(file)
		require.NoError(t, err)
		fileContent = string(raw)

		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, testLogger())
	err := client.Upload(context.Background(), testTarget(), strings.NewReader("contenido del pagare"))
	require.NoError(t, err)

	assert.Equal(t, "s2", received["folderId"])
	assert.Equal(t, "02_pagare", received["folderName"])
	assert.Equal(t, "02_pagare", received["documentType"])
	assert.Equal(t, "Pedro Lopez", received["clientName"])
	assert.Equal(t, "1030567890", received["clientId"])
	assert.Equal(t, "pagare_firmado.pdf", received["fileName"])
	assert.Equal(t, "contenido del pagare", fileContent)
}

func TestUploadFileTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusRequestEntityTooLarge)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, testLogger())
	err := client.Upload(context.Background(), testTarget(), strings.NewReader("x"))
	assert.ErrorIs(t, err, ErrFileTooLarge)
}

func TestUploadWebhookError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second, testLogger())
	err := client.Upload(context.Background(), testTarget(), strings.NewReader("x"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrFileTooLarge)
}
