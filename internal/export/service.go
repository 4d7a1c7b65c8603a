package export

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/xuri/excelize/v2"

	"github.com/MIDevJourney/invoice-analyzer/internal/entity"
	"github.com/MIDevJourney/invoice-analyzer/internal/repository"
)

// Service is a tiny façade over the invoice repository that produces
// XLSX/CSV bytes for exports.
type Service struct {
	invoices repository.InvoiceRepository
	logger   *slog.Logger
}

func NewService(invoices repository.InvoiceRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{invoices: invoices, logger: logger}
}

var exportHeaders = []string{
	"Upload Date",
	"File Name",
	"Vendor",
	"Amount",
	"Invoice Date",
	"Category",
	"Extraction Status",
}

// ExportXLSX returns an XLSX workbook (as bytes) for the owner's invoices in
// the given upload-date window.
// If only from is provided -> from..today (inclusive).
// If neither is provided   -> all invoices for the owner.
func (s *Service) ExportXLSX(ctx context.Context, ownerID uuid.UUID, from, to *time.Time) ([]byte, error) {
	start := time.Now()

	invs, err := s.list(ctx, ownerID, from, to)
	if err != nil {
		return nil, err
	}

	f := excelize.NewFile()
	const sheet = "Invoices"
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		if _, err := f.NewSheet(sheet); err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)

	for i, h := range exportHeaders {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	row := 2
	for _, inv := range invs {
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		write(1, inv.UploadDate.Format("2006-01-02"))
		write(2, inv.FileName)
		write(3, deref(inv.Vendor))
		if inv.Amount != nil {
			write(4, *inv.Amount)
		} else {
			write(4, "")
		}
		write(5, deref(inv.InvoiceDate))
		write(6, deref(inv.Category))
		write(7, string(inv.ExtractionStatus))
		row++
	}

	_ = f.SetColWidth(sheet, "A", "A", 14) // upload date
	_ = f.SetColWidth(sheet, "B", "B", 36) // file name
	_ = f.SetColWidth(sheet, "C", "C", 28) // vendor
	_ = f.SetColWidth(sheet, "D", "E", 14) // amount, invoice date
	_ = f.SetColWidth(sheet, "F", "G", 18) // category, status

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"owner_id", ownerID,
		"rows", len(invs),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

// ExportCSV returns the same table as CSV bytes.
func (s *Service) ExportCSV(ctx context.Context, ownerID uuid.UUID, from, to *time.Time) ([]byte, error) {
	invs, err := s.list(ctx, ownerID, from, to)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(exportHeaders); err != nil {
		return nil, err
	}
	for _, inv := range invs {
		amount := ""
		if inv.Amount != nil {
			amount = strconv.FormatFloat(*inv.Amount, 'f', -1, 64)
		}
		if err := w.Write([]string{
			inv.UploadDate.Format("2006-01-02"),
			inv.FileName,
			deref(inv.Vendor),
			amount,
			deref(inv.InvoiceDate),
			deref(inv.Category),
			string(inv.ExtractionStatus),
		}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	s.logger.Info("export.csv.ok", "owner_id", ownerID, "rows", len(invs))
	return buf.Bytes(), nil
}

func (s *Service) list(ctx context.Context, ownerID uuid.UUID, from, to *time.Time) ([]*entity.Invoice, error) {
	// Normalize dates (date-only, UTC); an open-ended from implies today.
	var fromDate, toDate *time.Time
	if from != nil {
		f := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
		fromDate = &f
	}
	if to != nil {
		t := time.Date(to.Year(), to.Month(), to.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}
	if fromDate != nil && toDate == nil {
		today := time.Now().UTC()
		t := time.Date(today.Year(), today.Month(), today.Day(), 23, 59, 59, 0, time.UTC)
		toDate = &t
	}
	invs, err := s.invoices.ListBetween(ctx, ownerID, fromDate, toDate)
	if err != nil {
		return nil, fmt.Errorf("query invoices: %w", err)
	}
	return invs, nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
