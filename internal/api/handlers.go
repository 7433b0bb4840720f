// Package api exposes the HTTP surface: health checks, job submission and
// the websocket upgrade endpoint.
package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/danilodaat/automat/internal/core/domain"
	"github.com/danilodaat/automat/internal/service"
)

// Submitter accepts jobs for background processing.
type Submitter interface {
	Submit(req domain.StartRequest, session string) (string, error)
}

// Handler serves the REST endpoints.
type Handler struct {
	jobs   Submitter
	logger logrus.FieldLogger
}

func NewHandler(jobs Submitter, logger logrus.FieldLogger) *Handler {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Handler{jobs: jobs, logger: logger}
}

// Health is the liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Media processing server is running"})
}

// Start accepts a job descriptor and replies before the job runs. Progress
// and results are broadcast to every websocket session.
func (h *Handler) Start(c *gin.Context) {
	var req domain.StartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid JSON body"})
		return
	}

	id, err := h.jobs.Submit(req, "")
	if err != nil {
		if errors.Is(err, service.ErrShuttingDown) {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
			return
		}
		h.logger.WithError(err).Error("failed to submit job")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not start processing"})
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"status": "processing_started", "job_id": id})
}
