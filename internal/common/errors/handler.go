package errors

import (
	stderrors "errors"
	"time"

	"response-guard/internal/common/logger"
)

// Handler normalizes errors escaping request handlers and logs them.
type Handler struct {
	logger logger.Logger
}

func NewHandler(log logger.Logger) *Handler {
	return &Handler{logger: log}
}

// Resolve converts err to a StandardError and logs it with its category.
func (h *Handler) Resolve(err error, fields map[string]interface{}) *StandardError {
	stdErr := h.normalizeError(err)
	h.logError(stdErr, fields)
	return stdErr
}

// normalizeError ensures we always have a StandardError
func (h *Handler) normalizeError(err error) *StandardError {
	var stdErr *StandardError
	if stderrors.As(err, &stdErr) {
		return stdErr
	}
	return &StandardError{
		Code:      ErrCodeInternal,
		Message:   "Unexpected error",
		Details:   err.Error(),
		Timestamp: time.Now().UTC(),
		cause:     err,
	}
}

func (h *Handler) logError(stdErr *StandardError, fields map[string]interface{}) {
	entry := map[string]interface{}{
		"errorCode":     string(stdErr.Code),
		"message":       stdErr.Message,
		"details":       stdErr.Details,
		"retryable":     stdErr.Retryable,
		"errorCategory": GetErrorCategory(stdErr.Code),
		"envelopeCode":  EnvelopeCode(stdErr),
	}
	for k, v := range fields {
		entry[k] = v
	}

	if stdErr.Code == ErrCodeInternal {
		h.logger.Error("request failed", entry)
		return
	}
	h.logger.Warn("request rejected", entry)
}
