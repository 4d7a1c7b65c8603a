package constants

// ExtractionStatus tracks where an invoice sits in the extraction lifecycle.
type ExtractionStatus string

const (
	// ExtractionPending means the document is stored but no extraction
	// attempt has completed yet.
	ExtractionPending ExtractionStatus = "pending"
	// ExtractionOK means the latest attempt completed and its fields were
	// merged onto the record.
	ExtractionOK ExtractionStatus = "ok"
	// ExtractionFailed marks a record as needing re-extraction. Set by the
	// eager path when the pipeline fails after upload.
	ExtractionFailed ExtractionStatus = "failed"
)
