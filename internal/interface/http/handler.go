package http

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/skinscan/internal/domain/auth"
	"github.com/yanqian/skinscan/internal/domain/chatbot"
	"github.com/yanqian/skinscan/internal/domain/detection"
	"github.com/yanqian/skinscan/internal/domain/patient"
)

// Handler wires the HTTP transport to domain services.
type Handler struct {
	chatSvc      chatbot.Service
	authSvc      auth.Service
	patientSvc   patient.Service
	detectionSvc detection.Service
	logger       *slog.Logger
}

// NewHandler constructs the root HTTP handler.
func NewHandler(chatSvc chatbot.Service, authSvc auth.Service, patientSvc patient.Service, detectionSvc detection.Service, logger *slog.Logger) *Handler {
	return &Handler{
		chatSvc:      chatSvc,
		authSvc:      authSvc,
		patientSvc:   patientSvc,
		detectionSvc: detectionSvc,
		logger:       logger.With("component", "http.handler"),
	}
}

// Health reports liveness.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", name+" must be a positive integer", err))
		return 0, false
	}
	return id, true
}

func errMessage(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
