package entity

import (
	"time"

	"github.com/google/uuid"

	"github.com/MIDevJourney/invoice-analyzer/constants"
)

// Invoice represents an invoice record for data transfer between layers.
// The four extracted fields are independently optional: a nil pointer means
// the value is unknown and must not overwrite an existing one on merge.
type Invoice struct {
	ID               uuid.UUID                  `db:"id" json:"id"`
	OwnerID          uuid.UUID                  `db:"owner_id" json:"-"`
	FileName         string                     `db:"file_name" json:"file_name"`
	FilePath         string                     `db:"file_path" json:"-"`
	UploadDate       time.Time                  `db:"upload_date" json:"upload_date"`
	Vendor           *string                    `db:"vendor" json:"vendor"`
	Amount           *float64                   `db:"amount" json:"amount"`
	InvoiceDate      *string                    `db:"invoice_date" json:"invoice_date"`
	Category         *string                    `db:"category" json:"category"`
	ExtractionStatus constants.ExtractionStatus `db:"extraction_status" json:"extraction_status"`
}
