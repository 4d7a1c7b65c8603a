package service

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MIDevJourney/invoice-analyzer/constants"
	"github.com/MIDevJourney/invoice-analyzer/internal/common"
	"github.com/MIDevJourney/invoice-analyzer/internal/entity"
	"github.com/MIDevJourney/invoice-analyzer/internal/filestore"
	"github.com/MIDevJourney/invoice-analyzer/internal/pipeline"
	"github.com/MIDevJourney/invoice-analyzer/internal/repository"
)

// memStore is an in-memory filestore.Store.
type memStore struct {
	objects map[string][]byte
}

func newMemStore() *memStore { return &memStore{objects: map[string][]byte{}} }

func (m *memStore) Save(_ context.Context, key string, r io.Reader) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.objects[key] = data
	return nil
}

func (m *memStore) Open(_ context.Context, key string) (io.ReadCloser, error) {
	data, ok := m.objects[key]
	if !ok {
		return nil, filestore.ErrNotExist
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *memStore) Delete(_ context.Context, key string) error {
	if _, ok := m.objects[key]; !ok {
		return filestore.ErrNotExist
	}
	delete(m.objects, key)
	return nil
}

// fakeProcessor returns a canned FieldSet or error.
type fakeProcessor struct {
	fields pipeline.FieldSet
	err    error
	calls  int
}

func (f *fakeProcessor) Process(context.Context, pipeline.DocumentRef) (pipeline.FieldSet, error) {
	f.calls++
	return f.fields, f.err
}

func strPtr(s string) *string   { return &s }
func f64Ptr(f float64) *float64 { return &f }

func setupDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	require.NoError(t, repository.Migrate(context.Background(), db, slog.Default()))
	return db
}

func createOwner(t *testing.T, db *sqlx.DB) uuid.UUID {
	t.Helper()
	users := repository.NewUserRepository(db, nil)
	u := &entity.User{ID: uuid.New(), Email: uuid.NewString() + "@example.com", PasswordHash: "x"}
	require.NoError(t, users.Create(context.Background(), u))
	return u.ID
}

func newTestService(t *testing.T, proc *fakeProcessor) (*InvoiceService, *memStore, uuid.UUID) {
	t.Helper()
	db := setupDB(t)
	store := newMemStore()
	svc := NewInvoiceService(nil, repository.NewInvoiceRepository(db, nil), store, proc)
	return svc, store, createOwner(t, db)
}

func TestUploadEagerSuccess(t *testing.T) {
	proc := &fakeProcessor{fields: pipeline.FieldSet{
		Vendor:      strPtr("Acme Corp"),
		Amount:      f64Ptr(123.45),
		InvoiceDate: strPtr("2024-03-01"),
		Category:    strPtr("Services"),
	}}
	svc, store, owner := newTestService(t, proc)

	inv, err := svc.Upload(context.Background(), owner, "march.pdf", strings.NewReader("%PDF-"))
	require.NoError(t, err)
	assert.Equal(t, constants.ExtractionOK, inv.ExtractionStatus)
	require.NotNil(t, inv.Vendor)
	assert.Equal(t, "Acme Corp", *inv.Vendor)
	require.NotNil(t, inv.Amount)
	assert.InDelta(t, 123.45, *inv.Amount, 1e-9)
	assert.Contains(t, store.objects, inv.FilePath)

	// The merged fields are persisted.
	got, err := svc.Get(context.Background(), owner, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, got.Vendor)
	assert.Equal(t, "Acme Corp", *got.Vendor)
}

func TestUploadEagerFailureIsSilent(t *testing.T) {
	proc := &fakeProcessor{err: errors.New("pipeline exploded")}
	svc, _, owner := newTestService(t, proc)

	inv, err := svc.Upload(context.Background(), owner, "march.pdf", strings.NewReader("%PDF-"))
	require.NoError(t, err, "upload must succeed even when extraction fails")
	assert.Equal(t, constants.ExtractionFailed, inv.ExtractionStatus)

	got, err := svc.Get(context.Background(), owner, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.ExtractionFailed, got.ExtractionStatus)
	assert.Nil(t, got.Vendor)
}

func TestUploadRejectsUnsupportedType(t *testing.T) {
	svc, _, owner := newTestService(t, &fakeProcessor{})

	_, err := svc.Upload(context.Background(), owner, "notes.txt", strings.NewReader("hello"))
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidInput)
}

func TestExtractOnDemandSurfacesFailures(t *testing.T) {
	proc := &fakeProcessor{fields: pipeline.FieldSet{Vendor: strPtr("Acme")}}
	svc, _, owner := newTestService(t, proc)

	inv, err := svc.Upload(context.Background(), owner, "march.pdf", strings.NewReader("%PDF-"))
	require.NoError(t, err)

	// Missing source surfaces as not found.
	proc.err = pipeline.ErrSourceNotFound
	_, err = svc.Extract(context.Background(), owner, inv.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)

	// Any other failure surfaces as internal.
	proc.err = errors.New("llm down")
	_, err = svc.Extract(context.Background(), owner, inv.ID)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInternal)
}

func TestExtractMergeKeepsExistingFields(t *testing.T) {
	proc := &fakeProcessor{fields: pipeline.FieldSet{
		Vendor:   strPtr("First Vendor"),
		Category: strPtr("Travel"),
	}}
	svc, _, owner := newTestService(t, proc)

	inv, err := svc.Upload(context.Background(), owner, "march.pdf", strings.NewReader("%PDF-"))
	require.NoError(t, err)

	// Re-extraction learns a new vendor but nothing about the category.
	proc.fields = pipeline.FieldSet{Vendor: strPtr("Updated Vendor")}
	got, err := svc.Extract(context.Background(), owner, inv.ID)
	require.NoError(t, err)

	require.NotNil(t, got.Vendor)
	assert.Equal(t, "Updated Vendor", *got.Vendor)
	require.NotNil(t, got.Category)
	assert.Equal(t, "Travel", *got.Category, "absent extraction field must not clear the stored value")
}

func TestUpdatePartial(t *testing.T) {
	proc := &fakeProcessor{fields: pipeline.FieldSet{Vendor: strPtr("Acme")}}
	svc, _, owner := newTestService(t, proc)

	inv, err := svc.Upload(context.Background(), owner, "march.pdf", strings.NewReader("%PDF-"))
	require.NoError(t, err)

	got, err := svc.Update(context.Background(), owner, inv.ID, InvoiceUpdate{Amount: f64Ptr(55)})
	require.NoError(t, err)
	require.NotNil(t, got.Amount)
	assert.InDelta(t, 55, *got.Amount, 1e-9)
	require.NotNil(t, got.Vendor)
	assert.Equal(t, "Acme", *got.Vendor, "fields absent from the update must survive")
}

func TestDeleteRemovesRecordAndFile(t *testing.T) {
	proc := &fakeProcessor{}
	svc, store, owner := newTestService(t, proc)

	inv, err := svc.Upload(context.Background(), owner, "march.pdf", strings.NewReader("%PDF-"))
	require.NoError(t, err)

	require.NoError(t, svc.Delete(context.Background(), owner, inv.ID))
	assert.NotContains(t, store.objects, inv.FilePath)

	_, err = svc.Get(context.Background(), owner, inv.ID)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestOwnershipIsolation(t *testing.T) {
	proc := &fakeProcessor{}
	db := setupDB(t)
	store := newMemStore()
	svc := NewInvoiceService(nil, repository.NewInvoiceRepository(db, nil), store, proc)
	alice := createOwner(t, db)
	bob := createOwner(t, db)

	inv, err := svc.Upload(context.Background(), alice, "march.pdf", strings.NewReader("%PDF-"))
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), bob, inv.ID)
	assert.ErrorIs(t, err, common.ErrNotFound, "other owners must not see the invoice")
}
