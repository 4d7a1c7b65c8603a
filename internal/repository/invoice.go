package repository

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/MIDevJourney/invoice-analyzer/constants"
	"github.com/MIDevJourney/invoice-analyzer/internal/common"
	"github.com/MIDevJourney/invoice-analyzer/internal/entity"
)

const invoiceColumns = `id, owner_id, file_name, file_path, upload_date, vendor, amount, invoice_date, category, extraction_status`

type InvoiceRepository interface {
	Create(ctx context.Context, inv *entity.Invoice) error
	GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entity.Invoice, error)
	List(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*entity.Invoice, error)
	ListBetween(ctx context.Context, ownerID uuid.UUID, from, to *time.Time) ([]*entity.Invoice, error)
	Update(ctx context.Context, inv *entity.Invoice) error
	SetExtractionStatus(ctx context.Context, id uuid.UUID, status constants.ExtractionStatus) error
	Delete(ctx context.Context, ownerID, id uuid.UUID) error
}

type invoiceRepository struct {
	db     *sqlx.DB
	logger *slog.Logger
}

func NewInvoiceRepository(db *sqlx.DB, logger *slog.Logger) InvoiceRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &invoiceRepository{db: db, logger: logger}
}

func (r *invoiceRepository) Create(ctx context.Context, inv *entity.Invoice) error {
	query := r.db.Rebind(`INSERT INTO invoices (` + invoiceColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, query,
		inv.ID, inv.OwnerID, inv.FileName, inv.FilePath, inv.UploadDate,
		inv.Vendor, inv.Amount, inv.InvoiceDate, inv.Category, inv.ExtractionStatus)
	if err != nil {
		r.logger.Error("failed to create invoice", "invoice_id", inv.ID, "error", err)
		return err
	}
	return nil
}

func (r *invoiceRepository) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*entity.Invoice, error) {
	var inv entity.Invoice
	query := r.db.Rebind(`SELECT ` + invoiceColumns + ` FROM invoices WHERE id = ? AND owner_id = ?`)
	if err := r.db.GetContext(ctx, &inv, query, id, ownerID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		r.logger.Error("failed to get invoice", "invoice_id", id, "error", err)
		return nil, err
	}
	return &inv, nil
}

func (r *invoiceRepository) List(ctx context.Context, ownerID uuid.UUID, offset, limit int) ([]*entity.Invoice, error) {
	if limit <= 0 {
		limit = 100
	}
	var invs []*entity.Invoice
	query := r.db.Rebind(`SELECT ` + invoiceColumns + ` FROM invoices WHERE owner_id = ? ORDER BY upload_date DESC LIMIT ? OFFSET ?`)
	if err := r.db.SelectContext(ctx, &invs, query, ownerID, limit, offset); err != nil {
		r.logger.Error("failed to list invoices", "owner_id", ownerID, "error", err)
		return nil, err
	}
	return invs, nil
}

func (r *invoiceRepository) ListBetween(ctx context.Context, ownerID uuid.UUID, from, to *time.Time) ([]*entity.Invoice, error) {
	query := `SELECT ` + invoiceColumns + ` FROM invoices WHERE owner_id = ?`
	args := []interface{}{ownerID}
	if from != nil {
		query += ` AND upload_date >= ?`
		args = append(args, *from)
	}
	if to != nil {
		query += ` AND upload_date <= ?`
		args = append(args, *to)
	}
	query += ` ORDER BY upload_date`

	var invs []*entity.Invoice
	if err := r.db.SelectContext(ctx, &invs, r.db.Rebind(query), args...); err != nil {
		r.logger.Error("failed to list invoices for export", "owner_id", ownerID, "error", err)
		return nil, err
	}
	return invs, nil
}

// Update persists the mutable fields of an invoice: the four extracted
// fields and the extraction status. Identity and file columns never change.
func (r *invoiceRepository) Update(ctx context.Context, inv *entity.Invoice) error {
	query := r.db.Rebind(`UPDATE invoices
		SET vendor = ?, amount = ?, invoice_date = ?, category = ?, extraction_status = ?
		WHERE id = ? AND owner_id = ?`)
	res, err := r.db.ExecContext(ctx, query,
		inv.Vendor, inv.Amount, inv.InvoiceDate, inv.Category, inv.ExtractionStatus,
		inv.ID, inv.OwnerID)
	if err != nil {
		r.logger.Error("failed to update invoice", "invoice_id", inv.ID, "error", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}

func (r *invoiceRepository) SetExtractionStatus(ctx context.Context, id uuid.UUID, status constants.ExtractionStatus) error {
	query := r.db.Rebind(`UPDATE invoices SET extraction_status = ? WHERE id = ?`)
	if _, err := r.db.ExecContext(ctx, query, status, id); err != nil {
		r.logger.Error("failed to set extraction status", "invoice_id", id, "error", err)
		return err
	}
	return nil
}

func (r *invoiceRepository) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	query := r.db.Rebind(`DELETE FROM invoices WHERE id = ? AND owner_id = ?`)
	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		r.logger.Error("failed to delete invoice", "invoice_id", id, "error", err)
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return common.ErrNotFound
	}
	return nil
}
