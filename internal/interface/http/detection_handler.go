package http

import (
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/skinscan/internal/domain/detection"
)

// ListClasses returns the lesion classes the classifier can predict.
func (h *Handler) ListClasses(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"classes":   h.detectionSvc.Classes(),
		"locations": detection.Locations,
	})
}

// CreateDetection accepts a multipart lesion image and runs analysis.
func (h *Handler) CreateDetection(c *gin.Context) {
	if _, err := c.MultipartForm(); err != nil && isBodyTooLarge(err) {
		abortWithError(c, NewHTTPError(http.StatusRequestEntityTooLarge, "image_too_large", "upload exceeds the allowed size", err))
		return
	}
	patientID, err := strconv.ParseInt(strings.TrimSpace(c.PostForm("patientId")), 10, 64)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "patientId must be an integer", err))
		return
	}
	fileHeader, err := c.FormFile("image")
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "image is required", err))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "failed to read upload", err))
		return
	}
	defer file.Close()
	data, err := io.ReadAll(file)
	if err != nil {
		abortWithError(c, NewHTTPError(http.StatusInternalServerError, "upload_failed", "failed to read image", err))
		return
	}
	mimeType := fileHeader.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = http.DetectContentType(data)
	}
	result, err := h.detectionSvc.Analyze(c.Request.Context(), detection.AnalyzeRequest{
		PatientID:      patientID,
		Filename:       fileHeader.Filename,
		MimeType:       mimeType,
		Image:          data,
		LesionLocation: c.PostForm("lesionLocation"),
		Notes:          c.PostForm("notes"),
	})
	if err != nil {
		abortWithError(c, fromDomainError(err, "detection_failed"))
		return
	}
	c.JSON(http.StatusCreated, result)
}

// ListDetections returns history filtered by patientId, risk and diagnosis.
func (h *Handler) ListDetections(c *gin.Context) {
	var filter detection.HistoryFilter
	if raw := strings.TrimSpace(c.Query("patientId")); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			abortWithError(c, NewHTTPError(http.StatusBadRequest, "invalid_request", "patientId must be an integer", err))
			return
		}
		filter.PatientID = id
	}
	filter.RiskLevels = queryList(c, "risk")
	filter.Diagnoses = queryList(c, "diagnosis")

	results, err := h.detectionSvc.History(c.Request.Context(), filter)
	if err != nil {
		abortWithError(c, fromDomainError(err, "detection_failed"))
		return
	}
	c.JSON(http.StatusOK, gin.H{"detections": results})
}

// GetDetection returns one detection result.
func (h *Handler) GetDetection(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	result, err := h.detectionSvc.Get(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, fromDomainError(err, "detection_failed"))
		return
	}
	c.JSON(http.StatusOK, result)
}

// DetectionImage streams the stored lesion image.
func (h *Handler) DetectionImage(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	img, err := h.detectionSvc.Image(c.Request.Context(), id)
	if err != nil {
		abortWithError(c, fromDomainError(err, "detection_failed"))
		return
	}
	defer img.Body.Close()
	c.DataFromReader(http.StatusOK, img.Size, img.ContentType, img.Body, nil)
}

// uploadBodyLimit leaves 1 MiB of headroom over the image for form fields and
// multipart framing.
func uploadBodyLimit(maxImageBytes int64) int64 {
	return maxImageBytes + 1<<20
}

// limitBody stops reading a request body after limit bytes.
func limitBody(limit int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, limit)
		c.Next()
	}
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large")
}

// queryList accepts both repeated keys and comma separated values.
func queryList(c *gin.Context, key string) []string {
	var out []string
	for _, raw := range c.QueryArray(key) {
		for _, part := range strings.Split(raw, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
