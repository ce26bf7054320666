package drive

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider sirve carpetas y archivos desde mapas en memoria.
type fakeProvider struct {
	subfolders     map[string][]Folder
	files          map[string][]FileInfo
	subfolderCalls int
	filesErr       error
}

func (p *fakeProvider) Subfolders(ctx context.Context, parentID string) ([]Folder, error) {
	p.subfolderCalls++
	return p.subfolders[parentID], nil
}

func (p *fakeProvider) Files(ctx context.Context, folderID string) ([]FileInfo, error) {
	if p.filesErr != nil {
		return nil, p.filesErr
	}
	return p.files[folderID], nil
}

func (p *fakeProvider) CreateFolder(ctx context.Context, parentID, name string) (*Folder, error) {
	return nil, errors.New("not implemented")
}

func testLogger() *logrus.Logger {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logger
}

func TestFindClientFolderCedulaBeatsName(t *testing.T) {
	provider := &fakeProvider{
		subfolders: map[string][]Folder{
			"root": {
				{ID: "f1", Name: "20240101_maria_rodriguez_1111111111"},
				{ID: "f2", Name: "20240301_maria_gomez_2222222222"},
			},
		},
	}
	matcher := NewMatcher(provider, "root", testLogger())

	// "maria" coincide por nombre con la primera carpeta, pero la cédula
	// apunta a la segunda; la cédula gana.
	folder, err := matcher.FindClientFolder(context.Background(), "Maria", "2222222222")
	require.NoError(t, err)
	require.NotNil(t, folder)
	assert.Equal(t, "f2", folder.ID)
}

func TestFindClientFolderFirstNameMatchWins(t *testing.T) {
	provider := &fakeProvider{
		subfolders: map[string][]Folder{
			"root": {
				{ID: "f1", Name: "20240101_maria_rodriguez_1111111111"},
				{ID: "f2", Name: "20240301_maria_gomez_2222222222"},
			},
		},
	}
	matcher := NewMatcher(provider, "root", testLogger())

	folder, err := matcher.FindClientFolder(context.Background(), "Maria", "")
	require.NoError(t, err)
	require.NotNil(t, folder)
	assert.Equal(t, "f1", folder.ID)
}

func TestFindClientFolderMatchesNormalizedCedula(t *testing.T) {
	provider := &fakeProvider{
		subfolders: map[string][]Folder{
			"root": {
				{ID: "f1", Name: "20240101_pedro_lopez_1030567890"},
			},
		},
	}
	matcher := NewMatcher(provider, "root", testLogger())

	// La cédula llega con puntos pero la carpeta la tiene en dígitos planos.
	folder, err := matcher.FindClientFolder(context.Background(), "", "1.030.567.890")
	require.NoError(t, err)
	require.NotNil(t, folder)
	assert.Equal(t, "f1", folder.ID)
}

func TestFindClientFolderNotFound(t *testing.T) {
	provider := &fakeProvider{
		subfolders: map[string][]Folder{
			"root": {
				{ID: "f1", Name: "20240101_pedro_lopez_1030567890"},
			},
		},
	}
	matcher := NewMatcher(provider, "root", testLogger())

	folder, err := matcher.FindClientFolder(context.Background(), "Carolina", "9999999999")
	require.NoError(t, err)
	assert.Nil(t, folder)
}

func TestFindClientFolderEmptySearch(t *testing.T) {
	provider := &fakeProvider{}
	matcher := NewMatcher(provider, "root", testLogger())

	folder, err := matcher.FindClientFolder(context.Background(), "", "")
	require.NoError(t, err)
	assert.Nil(t, folder)
	assert.Zero(t, provider.subfolderCalls)
}

func TestFindSubfolderExactMatchOnly(t *testing.T) {
	provider := &fakeProvider{
		subfolders: map[string][]Folder{
			"client": {
				{ID: "s1", Name: "01_escritura"},
				{ID: "s2", Name: "02_pagare"},
			},
		},
	}
	matcher := NewMatcher(provider, "root", testLogger())
	clientFolder := &Folder{ID: "client", Name: "20240101_pedro_lopez_1030567890"}

	sub, err := matcher.FindSubfolder(context.Background(), clientFolder, "02_pagare")
	require.NoError(t, err)
	require.NotNil(t, sub)
	assert.Equal(t, "s2", sub.ID)

	// Sin coincidencia exacta no hay fallback a la carpeta del cliente.
	sub, err = matcher.FindSubfolder(context.Background(), clientFolder, "03_contrato_credito")
	require.NoError(t, err)
	assert.Nil(t, sub)

	sub, err = matcher.FindSubfolder(context.Background(), clientFolder, "02_PAGARE")
	require.NoError(t, err)
	assert.Nil(t, sub)
}
