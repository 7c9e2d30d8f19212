package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/Balaji0706816/nurseproject/internal/flow"
	"github.com/Balaji0706816/nurseproject/internal/messaging"
	"github.com/Balaji0706816/nurseproject/internal/models"
	"github.com/Balaji0706816/nurseproject/internal/store"
)

// badRequestErrors are client mistakes reported with 400.
var badRequestErrors = []error{
	models.ErrUnknownRequestKind,
	models.ErrMissingParticipant,
	models.ErrMissingDomain,
	models.ErrInvalidDay,
	models.ErrMissingText,
	models.ErrTextTooLong,
	models.ErrInvalidRole,
	models.ErrInvalidDate,
	models.ErrScoreOutOfRange,
	models.ErrTooManyTags,
	models.ErrNoteTooLong,
	models.ErrMissingRecipient,
	messaging.ErrInvalidRecipient,
}

// statusForError maps domain errors to HTTP status codes.
func statusForError(err error) int {
	for _, target := range badRequestErrors {
		if errors.Is(err, target) {
			return http.StatusBadRequest
		}
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, flow.ErrMessagingUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// writeJSONResponse writes the response envelope with the given status code.
func writeJSONResponse(c *gin.Context, statusCode int, response models.APIResponse) {
	c.JSON(statusCode, response)
}

// writeError logs err and writes an error envelope. Internal errors get a generic message.
func writeError(c *gin.Context, handler string, err error) {
	status := statusForError(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		slog.Error("Server."+handler+": request failed", "error", err, "path", c.FullPath())
		message = "Internal server error"
	} else {
		slog.Warn("Server."+handler+": request rejected", "error", err, "status", status, "path", c.FullPath())
	}
	writeJSONResponse(c, status, models.Error(message))
}
