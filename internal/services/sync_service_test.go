package services

import (
	"context"
	"database/sql"
	"errors"
	"io"
	"testing"

	"github.com/habicapital/docs-service/internal/drive"
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

// fakeTxRunner ejecuta la función con una transacción nil; los espejos falsos
// no la usan.
type fakeTxRunner struct {
	calls  int
	failed bool
}

func (r *fakeTxRunner) WithTransaction(fn func(*sql.Tx) error) error {
	r.calls++
	if err := fn(nil); err != nil {
		r.failed = true
		return err
	}
	return nil
}

type fakeClientMirror struct {
	deleted  bool
	upserted []models.ClientListing
	existing *models.Client
	nextID   int64
	failOn   string
}

func (m *fakeClientMirror) UpsertTx(tx *sql.Tx, listing *models.ClientListing) (int64, error) {
	if m.failOn == listing.Cedula {
		return 0, errors.New("unique constraint violation")
	}
	m.upserted = append(m.upserted, *listing)
	m.nextID++
	return m.nextID, nil
}

func (m *fakeClientMirror) DeleteAllTx(tx *sql.Tx) error {
	m.deleted = true
	return nil
}

func (m *fakeClientMirror) FindByNameOrID(clientName, clientID string) (*models.Client, error) {
	return m.existing, nil
}

type upsertedDoc struct {
	clientID  int64
	docType   models.DocumentType
	hasFiles  bool
	fileCount int
}

type fakeDocumentMirror struct {
	upserted       []upsertedDoc
	deletedClients []int64
	nextID         int64
}

func (m *fakeDocumentMirror) UpsertTx(tx *sql.Tx, clientID int64, doc *models.DocumentListing, hasFiles bool, fileCount int) (int64, error) {
	m.upserted = append(m.upserted, upsertedDoc{clientID: clientID, docType: doc.Type, hasFiles: hasFiles, fileCount: fileCount})
	m.nextID++
	return m.nextID, nil
}

func (m *fakeDocumentMirror) DeleteByClientTx(tx *sql.Tx, clientID int64) error {
	m.deletedClients = append(m.deletedClients, clientID)
	return nil
}

type fakeFileMirror struct {
	inserted []models.FileListing
}

func (m *fakeFileMirror) InsertTx(tx *sql.Tx, documentID int64, file *models.FileListing) error {
	m.inserted = append(m.inserted, *file)
	return nil
}

type fakeRecorder struct {
	outcomes []models.SyncOutcome
	clients  []int
}

func (r *fakeRecorder) Record(outcome models.SyncOutcome, totalClients, totalDocuments int) error {
	r.outcomes = append(r.outcomes, outcome)
	r.clients = append(r.clients, totalClients)
	return nil
}

// fakeDirectory sirve listados y destinos fijos como lado Drive.
type fakeDirectory struct {
	listings     []models.ClientListing
	single       *models.ClientListing
	target       *drive.UploadTarget
	createResult *models.CreateFolderResult
	err          error
}

func (d *fakeDirectory) AllClients(ctx context.Context) ([]models.ClientListing, error) {
	return d.listings, d.err
}

func (d *fakeDirectory) ClientByNameOrID(ctx context.Context, clientName, clientID string) (*models.ClientListing, error) {
	return d.single, d.err
}

func (d *fakeDirectory) ResolveUploadTarget(ctx context.Context, clientName, clientID string, documentType models.DocumentType) (*drive.UploadTarget, error) {
	return d.target, d.err
}

func (d *fakeDirectory) CreateClientFolder(ctx context.Context) (*models.CreateFolderResult, error) {
	return d.createResult, d.err
}

type syncFixture struct {
	service   *SyncService
	runner    *fakeTxRunner
	clients   *fakeClientMirror
	documents *fakeDocumentMirror
	files     *fakeFileMirror
	recorder  *fakeRecorder
}

func newSyncFixture(directory *fakeDirectory) *syncFixture {
	f := &syncFixture{
		runner:    &fakeTxRunner{},
		clients:   &fakeClientMirror{},
		documents: &fakeDocumentMirror{},
		files:     &fakeFileMirror{},
		recorder:  &fakeRecorder{},
	}
	f.service = newSyncServiceWithMirror(f.runner, f.clients, f.documents, f.files, f.recorder, directory, testLogger())
	return f
}

func sampleListing() models.ClientListing {
	return models.ClientListing{
		Nombre:    "Maria Rodriguez",
		Cedula:    "1111111111",
		Fecha:     "2024-03-01",
		FolderURL: "http://drive/f1",
		HasFolder: true,
		Documents: []models.DocumentListing{
			{
				Type:   models.DocumentTypePagare,
				Exists: true,
				// El booleano upstream miente: dice un archivo pero la
				// lista trae además un temporal de Office.
				HasFiles:  true,
				FileCount: 2,
				Files: []models.FileListing{
					{Name: "pagare.pdf", ID: "a1", Size: 2048},
					{Name: "~$pagare.docx", ID: "a2", Size: 100},
				},
			},
			{Type: models.DocumentTypeAvaluo, Exists: true, Files: []models.FileListing{}},
		},
	}
}

func TestSyncAllRefreshesMirror(t *testing.T) {
	listing := sampleListing()
	f := newSyncFixture(&fakeDirectory{listings: []models.ClientListing{listing}})

	result := f.service.SyncAll(context.Background())
	require.True(t, result.Success)
	require.NotNil(t, result.Stats)

	assert.True(t, f.clients.deleted)
	assert.Equal(t, 1, result.Stats.ClientsUpdated)
	assert.Equal(t, 2, result.Stats.DocumentsUpdated)
	assert.Equal(t, 1, result.Stats.FilesUpdated)
	assert.Zero(t, result.Stats.Failures)

	// has_files y file_count se recalculan sobre los archivos válidos.
	require.Len(t, f.documents.upserted, 2)
	pagare := f.documents.upserted[0]
	assert.Equal(t, models.DocumentTypePagare, pagare.docType)
	assert.True(t, pagare.hasFiles)
	assert.Equal(t, 1, pagare.fileCount)

	avaluo := f.documents.upserted[1]
	assert.False(t, avaluo.hasFiles)
	assert.Zero(t, avaluo.fileCount)

	require.Len(t, f.files.inserted, 1)
	assert.Equal(t, "pagare.pdf", f.files.inserted[0].Name)

	require.Len(t, f.recorder.outcomes, 1)
	assert.Equal(t, models.SyncOutcomeSuccess, f.recorder.outcomes[0])
	assert.Equal(t, 1, f.recorder.clients[0])
}

func TestSyncAllIsIdempotent(t *testing.T) {
	listing := sampleListing()
	f := newSyncFixture(&fakeDirectory{listings: []models.ClientListing{listing}})

	first := f.service.SyncAll(context.Background())
	second := f.service.SyncAll(context.Background())
	require.True(t, first.Success)
	require.True(t, second.Success)

	// Con el mismo estado upstream, dos corridas producen los mismos conteos.
	assert.Equal(t, first.Stats.ClientsUpdated, second.Stats.ClientsUpdated)
	assert.Equal(t, first.Stats.DocumentsUpdated, second.Stats.DocumentsUpdated)
	assert.Equal(t, first.Stats.FilesUpdated, second.Stats.FilesUpdated)
}

func TestSyncAllEmptyListingDoesNotTouchMirror(t *testing.T) {
	f := newSyncFixture(&fakeDirectory{listings: []models.ClientListing{}})

	result := f.service.SyncAll(context.Background())
	assert.False(t, result.Success)
	assert.Zero(t, f.runner.calls)
	assert.False(t, f.clients.deleted)
	assert.Empty(t, f.recorder.outcomes)
}

func TestSyncAllUpstreamErrorRecordsFailure(t *testing.T) {
	f := newSyncFixture(&fakeDirectory{err: errors.New("script timeout")})

	result := f.service.SyncAll(context.Background())
	assert.False(t, result.Success)
	assert.Zero(t, f.runner.calls)

	require.Len(t, f.recorder.outcomes, 1)
	assert.Equal(t, models.SyncOutcomeError, f.recorder.outcomes[0])
}

func TestSyncAllSkipsIncompleteClients(t *testing.T) {
	complete := sampleListing()
	incomplete := models.ClientListing{Nombre: "Sin Cedula", Fecha: "2024-01-01"}
	f := newSyncFixture(&fakeDirectory{listings: []models.ClientListing{incomplete, complete}})

	result := f.service.SyncAll(context.Background())
	require.True(t, result.Success)

	assert.Equal(t, 1, result.Stats.ClientsUpdated)
	assert.Equal(t, 1, result.Stats.Failures)
	require.Len(t, f.clients.upserted, 1)
	assert.Equal(t, "1111111111", f.clients.upserted[0].Cedula)
}

func TestSyncAllSQLErrorAbortsRun(t *testing.T) {
	listing := sampleListing()
	f := newSyncFixture(&fakeDirectory{listings: []models.ClientListing{listing}})
	f.clients.failOn = listing.Cedula

	result := f.service.SyncAll(context.Background())
	assert.False(t, result.Success)
	assert.True(t, f.runner.failed)

	require.Len(t, f.recorder.outcomes, 1)
	assert.Equal(t, models.SyncOutcomeError, f.recorder.outcomes[0])
}

func TestSyncAllSkipsUnknownDocumentTypes(t *testing.T) {
	listing := sampleListing()
	listing.Documents = append(listing.Documents, models.DocumentListing{
		Type:   "09_desconocido",
		Exists: true,
	})
	f := newSyncFixture(&fakeDirectory{listings: []models.ClientListing{listing}})

	result := f.service.SyncAll(context.Background())
	require.True(t, result.Success)
	assert.Equal(t, 2, result.Stats.DocumentsUpdated)
}

func TestSyncClientRefreshesSingleClient(t *testing.T) {
	listing := sampleListing()
	f := newSyncFixture(&fakeDirectory{single: &listing})

	result := f.service.SyncClient(context.Background(), "Maria", "1111111111")
	require.True(t, result.Success)

	// Solo se borran los documentos del cliente, nunca la tabla completa.
	assert.False(t, f.clients.deleted)
	require.Len(t, f.documents.deletedClients, 1)
	assert.Equal(t, 1, result.Stats.ClientsUpdated)
	assert.Equal(t, 2, result.Stats.DocumentsUpdated)

	// El refresh de un cliente no registra corrida en sync_status.
	assert.Empty(t, f.recorder.outcomes)
}

func TestSyncClientNotFound(t *testing.T) {
	f := newSyncFixture(&fakeDirectory{single: nil})

	result := f.service.SyncClient(context.Background(), "Carolina", "9999999999")
	assert.False(t, result.Success)
	assert.Zero(t, f.runner.calls)
}

func TestSyncClientFillsCedulaFromMirror(t *testing.T) {
	listing := sampleListing()
	listing.Cedula = ""
	directory := &fakeDirectory{single: &listing}
	f := newSyncFixture(directory)
	f.clients.existing = &models.Client{Cedula: "1111111111", Fecha: "2024-03-01"}

	result := f.service.SyncClient(context.Background(), "Maria Rodriguez", "")
	require.True(t, result.Success)
	require.Len(t, f.clients.upserted, 1)
	assert.Equal(t, "1111111111", f.clients.upserted[0].Cedula)
}

func TestSyncClientUnknownCedulaFails(t *testing.T) {
	listing := sampleListing()
	listing.Cedula = ""
	f := newSyncFixture(&fakeDirectory{single: &listing})

	result := f.service.SyncClient(context.Background(), "Maria Rodriguez", "")
	assert.False(t, result.Success)
	assert.Zero(t, f.runner.calls)
}
