package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/raine/listing-wizard/internal/listing"
	"github.com/rs/zerolog/log"
)

// Messages shown to end users. Provider output never reaches the response.
const (
	msgNoImage        = "Please upload an image first."
	msgInvalidRequest = "Invalid request body"
	msgImageTooLarge  = "Image is too large"
	msgGenerateFailed = "Failed to generate listing"
	msgParseFailed    = "Failed to parse AI response"
)

type generateRequest struct {
	Image string `json:"image"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type handler struct {
	generator Generator
}

func (h *handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *handler) generate(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: msgImageTooLarge})
			return
		}
		log.Ctx(c.Request.Context()).Debug().Err(err).Msg("invalid generate request")
		c.JSON(http.StatusBadRequest, errorResponse{Error: msgInvalidRequest})
		return
	}

	draft, err := h.generator.Generate(c.Request.Context(), listing.NewImagePayload(req.Image))
	if err != nil {
		status, msg := failureResponse(err)
		c.JSON(status, errorResponse{Error: msg})
		return
	}

	c.JSON(http.StatusOK, draft)
}

func failureResponse(err error) (int, string) {
	kind, ok := listing.KindOf(err)
	if !ok {
		return http.StatusInternalServerError, msgGenerateFailed
	}
	switch kind {
	case listing.FailureInput:
		return http.StatusBadRequest, msgNoImage
	case listing.FailureDecode:
		return http.StatusInternalServerError, msgParseFailed
	default:
		return http.StatusInternalServerError, msgGenerateFailed
	}
}
