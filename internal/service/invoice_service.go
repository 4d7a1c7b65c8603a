package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/MIDevJourney/invoice-analyzer/constants"
	"github.com/MIDevJourney/invoice-analyzer/internal/common"
	"github.com/MIDevJourney/invoice-analyzer/internal/entity"
	"github.com/MIDevJourney/invoice-analyzer/internal/filestore"
	"github.com/MIDevJourney/invoice-analyzer/internal/pipeline"
	"github.com/MIDevJourney/invoice-analyzer/internal/repository"
)

// Processor is the slice of pipeline.Orchestrator this service needs.
type Processor interface {
	Process(ctx context.Context, ref pipeline.DocumentRef) (pipeline.FieldSet, error)
}

// InvoiceUpdate carries a caller-provided partial update. Nil fields are
// left untouched, matching the extraction merge policy.
type InvoiceUpdate struct {
	Vendor      *string  `json:"vendor"`
	Amount      *float64 `json:"amount"`
	InvoiceDate *string  `json:"invoice_date"`
	Category    *string  `json:"category"`
}

type InvoiceService struct {
	logger   *slog.Logger
	invoices repository.InvoiceRepository
	files    filestore.Store
	pipe     Processor
}

func NewInvoiceService(logger *slog.Logger, invoices repository.InvoiceRepository, files filestore.Store, pipe Processor) *InvoiceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvoiceService{logger: logger, invoices: invoices, files: files, pipe: pipe}
}

// Upload is the eager path: store the file, create the record, then attempt
// extraction. The record is persisted before extraction starts, and any
// pipeline failure downgrades to a needs-re-extraction marker instead of
// failing the upload.
func (s *InvoiceService) Upload(ctx context.Context, ownerID uuid.UUID, fileName string, r io.Reader) (*entity.Invoice, error) {
	ext := filepath.Ext(fileName)
	if !constants.IsSupportedExt(ext) {
		return nil, common.InvalidArgumentError(fmt.Sprintf("unsupported file type %q", ext))
	}

	inv := &entity.Invoice{
		ID:               uuid.New(),
		OwnerID:          ownerID,
		FileName:         fileName,
		UploadDate:       time.Now().UTC(),
		ExtractionStatus: constants.ExtractionPending,
	}
	inv.FilePath = path.Join(ownerID.String(), inv.ID.String()+"."+constants.NormalizeExt(ext))

	if err := s.files.Save(ctx, inv.FilePath, r); err != nil {
		s.logger.Error("invoice.upload.store_failed", "owner_id", ownerID, "error", err)
		return nil, common.InternalError("failed to store file")
	}
	if err := s.invoices.Create(ctx, inv); err != nil {
		return nil, err
	}
	s.logger.Info("invoice.upload.ok", "invoice_id", inv.ID, "file_name", fileName)

	// Eager extraction. The uploader never sees a failure here.
	fields, err := s.pipe.Process(ctx, pipeline.DocumentRef{ID: inv.ID.String(), Path: inv.FilePath})
	if err != nil {
		s.logger.Warn("invoice.upload.extraction_failed", "invoice_id", inv.ID, "error", err)
		_ = s.invoices.SetExtractionStatus(ctx, inv.ID, constants.ExtractionFailed)
		inv.ExtractionStatus = constants.ExtractionFailed
		return inv, nil
	}
	mergeFields(inv, fields)
	inv.ExtractionStatus = constants.ExtractionOK
	if err := s.invoices.Update(ctx, inv); err != nil {
		s.logger.Warn("invoice.upload.merge_failed", "invoice_id", inv.ID, "error", err)
		_ = s.invoices.SetExtractionStatus(ctx, inv.ID, constants.ExtractionFailed)
		inv.ExtractionStatus = constants.ExtractionFailed
	}
	return inv, nil
}

// Extract is the on-demand path: the caller asked for it explicitly, so
// failures surface. A missing document maps to not-found; anything else is
// an internal failure.
func (s *InvoiceService) Extract(ctx context.Context, ownerID, invoiceID uuid.UUID) (*entity.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, ownerID, invoiceID)
	if err != nil {
		return nil, err
	}
	fields, err := s.pipe.Process(ctx, pipeline.DocumentRef{ID: inv.ID.String(), Path: inv.FilePath})
	if err != nil {
		if errors.Is(err, pipeline.ErrSourceNotFound) {
			return nil, common.NotFoundError("invoice document not found")
		}
		s.logger.Error("invoice.extract.failed", "invoice_id", inv.ID, "error", err)
		return nil, common.InternalError("extraction failed")
	}
	mergeFields(inv, fields)
	inv.ExtractionStatus = constants.ExtractionOK
	if err := s.invoices.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

func (s *InvoiceService) Get(ctx context.Context, ownerID, invoiceID uuid.UUID) (*entity.Invoice, error) {
	return s.invoices.GetByID(ctx, ownerID, invoiceID)
}

func (s *InvoiceService) List(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*entity.Invoice, error) {
	return s.invoices.List(ctx, ownerID, offset, limit)
}

// Update applies a caller-provided partial update: only non-nil fields
// overwrite.
func (s *InvoiceService) Update(ctx context.Context, ownerID, invoiceID uuid.UUID, upd InvoiceUpdate) (*entity.Invoice, error) {
	inv, err := s.invoices.GetByID(ctx, ownerID, invoiceID)
	if err != nil {
		return nil, err
	}
	if upd.Vendor != nil {
		inv.Vendor = upd.Vendor
	}
	if upd.Amount != nil {
		inv.Amount = upd.Amount
	}
	if upd.InvoiceDate != nil {
		inv.InvoiceDate = upd.InvoiceDate
	}
	if upd.Category != nil {
		inv.Category = upd.Category
	}
	if err := s.invoices.Update(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// Delete removes the record and, best-effort, its stored file.
func (s *InvoiceService) Delete(ctx context.Context, ownerID, invoiceID uuid.UUID) error {
	inv, err := s.invoices.GetByID(ctx, ownerID, invoiceID)
	if err != nil {
		return err
	}
	if err := s.files.Delete(ctx, inv.FilePath); err != nil && !errors.Is(err, filestore.ErrNotExist) {
		s.logger.Warn("invoice.delete.file_failed", "invoice_id", inv.ID, "error", err)
	}
	return s.invoices.Delete(ctx, ownerID, invoiceID)
}

// mergeFields fills in what extraction learned and keeps what the record
// already knows: only non-absent fields overwrite.
func mergeFields(inv *entity.Invoice, fields pipeline.FieldSet) {
	if fields.Vendor != nil {
		inv.Vendor = fields.Vendor
	}
	if fields.Amount != nil {
		inv.Amount = fields.Amount
	}
	if fields.InvoiceDate != nil {
		inv.InvoiceDate = fields.InvoiceDate
	}
	if fields.Category != nil {
		inv.Category = fields.Category
	}
}
