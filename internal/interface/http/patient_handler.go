package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/skinscan/internal/domain/detection"
	"github.com/yanqian/skinscan/internal/domain/patient"
)

// CreatePatient registers a patient.
func (h *Handler) CreatePatient(c *gin.Context) {
	var req patient.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	created, err := h.patientSvc.Register(c.Request.Context(), req)
	if err != nil {
		abortWithError(c, fromDomainError(err, "patient_failed"))
		return
	}
	c.JSON(http.StatusCreated, created)
}

// ListPatients lists patients, optionally filtered by ?q= name search.
func (h *Handler) ListPatients(c *gin.Context) {
	items, err := h.patientSvc.Search(c.Request.Context(), c.Query("q"))
	if err != nil {
		abortWithError(c, fromDomainError(err, "patient_failed"))
		return
	}
	if items == nil {
		items = []patient.Patient{}
	}
	c.JSON(http.StatusOK, gin.H{"patients": items})
}

// GetPatient returns one patient.
func (h *Handler) GetPatient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	p, err := h.patientSvc.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, fromDomainError(err, "patient_failed"))
		return
	}
	c.JSON(http.StatusOK, p)
}

// UpdatePatient applies a partial update.
func (h *Handler) UpdatePatient(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var update patient.Update
	if err := c.ShouldBindJSON(&update); err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", errMessage(err), err))
		return
	}
	updated, err := h.patientSvc.Update(c.Request.Context(), id, update)
	if err != nil {
		abortWithError(c, fromDomainError(err, "patient_failed"))
		return
	}
	c.JSON(http.StatusOK, updated)
}

// PatientDetections returns a patient's detection history.
func (h *Handler) PatientDetections(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if _, err := h.patientSvc.Get(c.Request.Context(), id); err != nil {
		abortWithError(c, fromDomainError(err, "patient_failed"))
		return
	}
	results, err := h.detectionSvc.History(c.Request.Context(), detection.HistoryFilter{PatientID: id})
	if err != nil {
		abortWithError(c, fromDomainError(err, "detection_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"detections": results})
}
