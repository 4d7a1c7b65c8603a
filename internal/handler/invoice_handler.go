package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/MIDevJourney/invoice-analyzer/internal/export"
	"github.com/MIDevJourney/invoice-analyzer/internal/middleware"
	"github.com/MIDevJourney/invoice-analyzer/internal/service"
)

type InvoiceHandler struct {
	invoices *service.InvoiceService
	exports  *export.Service
	logger   *slog.Logger
}

func NewInvoiceHandler(invoices *service.InvoiceService, exports *export.Service, logger *slog.Logger) *InvoiceHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &InvoiceHandler{invoices: invoices, exports: exports, logger: logger}
}

func (h *InvoiceHandler) Upload(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "multipart field 'file' is required"})
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable upload"})
		return
	}
	defer f.Close()

	inv, err := h.invoices.Upload(c.Request.Context(), ownerID, fileHeader.Filename, f)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, inv)
}

func (h *InvoiceHandler) List(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))
	invs, err := h.invoices.List(c.Request.Context(), ownerID, offset, limit)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, invs)
}

func (h *InvoiceHandler) Get(c *gin.Context) {
	ownerID, invoiceID, ok := h.ids(c)
	if !ok {
		return
	}
	inv, err := h.invoices.Get(c.Request.Context(), ownerID, invoiceID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *InvoiceHandler) Update(c *gin.Context) {
	ownerID, invoiceID, ok := h.ids(c)
	if !ok {
		return
	}
	var upd service.InvoiceUpdate
	if err := c.ShouldBindJSON(&upd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request body"})
		return
	}
	inv, err := h.invoices.Update(c.Request.Context(), ownerID, invoiceID, upd)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *InvoiceHandler) Delete(c *gin.Context) {
	ownerID, invoiceID, ok := h.ids(c)
	if !ok {
		return
	}
	if err := h.invoices.Delete(c.Request.Context(), ownerID, invoiceID); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *InvoiceHandler) Extract(c *gin.Context) {
	ownerID, invoiceID, ok := h.ids(c)
	if !ok {
		return
	}
	inv, err := h.invoices.Extract(c.Request.Context(), ownerID, invoiceID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, inv)
}

func (h *InvoiceHandler) Export(c *gin.Context) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return
	}
	from, ok := h.dateQuery(c, "from")
	if !ok {
		return
	}
	to, ok := h.dateQuery(c, "to")
	if !ok {
		return
	}

	format := c.DefaultQuery("format", "xlsx")
	switch format {
	case "xlsx":
		data, err := h.exports.ExportXLSX(c.Request.Context(), ownerID, from, to)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="invoices.xlsx"`)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
	case "csv":
		data, err := h.exports.ExportCSV(c.Request.Context(), ownerID, from, to)
		if err != nil {
			writeError(c, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="invoices.csv"`)
		c.Data(http.StatusOK, "text/csv", data)
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "format must be xlsx or csv"})
	}
}

func (h *InvoiceHandler) ids(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	ownerID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authenticated"})
		return uuid.Nil, uuid.Nil, false
	}
	invoiceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid invoice id"})
		return uuid.Nil, uuid.Nil, false
	}
	return ownerID, invoiceID, true
}

func (h *InvoiceHandler) dateQuery(c *gin.Context, name string) (*time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return nil, true
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be YYYY-MM-DD"})
		return nil, false
	}
	return &t, true
}
