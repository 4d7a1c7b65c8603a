package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MIDevJourney/invoice-analyzer/internal/common"
)

// writeError maps service-layer errors onto HTTP status codes and a uniform
// JSON error body.
func writeError(c *gin.Context, err error) {
	status := common.StatusOf(err)
	msg := err.Error()
	var appErr *common.AppError
	if errors.As(err, &appErr) {
		msg = appErr.Message
	}
	if status == http.StatusInternalServerError {
		// Do not leak internals to the caller.
		msg = "internal server error"
	}
	c.JSON(status, gin.H{"error": msg})
}
