package detection

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/google/uuid"

	apperrors "github.com/yanqian/skinscan/pkg/errors"
	"github.com/yanqian/skinscan/pkg/metrics"
)

// Service runs lesion analysis and serves detection history.
type Service interface {
	Analyze(ctx context.Context, req AnalyzeRequest) (Result, error)
	Get(ctx context.Context, id int64) (Result, error)
	History(ctx context.Context, filter HistoryFilter) ([]Result, error)
	Image(ctx context.Context, id int64) (Image, error)
	Classes() []ClassInfo
}

type service struct {
	cfg        Config
	classifier Classifier
	storage    ImageStorage
	repo       Repository
	patients   PatientLookup
	logger     *slog.Logger
}

// NewService wires up the detection domain.
func NewService(cfg Config, classifier Classifier, storage ImageStorage, repo Repository, patients PatientLookup, logger *slog.Logger) Service {
	return &service{
		cfg:        cfg,
		classifier: classifier,
		storage:    storage,
		repo:       repo,
		patients:   patients,
		logger:     logger.With("component", "detection.service"),
	}
}

func (s *service) Analyze(ctx context.Context, req AnalyzeRequest) (Result, error) {
	if err := s.validate(req); err != nil {
		return Result{}, err
	}
	name, found, err := s.patients.PatientName(ctx, req.PatientID)
	if err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeDetection, "failed to load patient", err)
	}
	if !found {
		return Result{}, apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("patient %d not found", req.PatientID), nil)
	}

	key := imageKey(req.PatientID, req.Filename)
	if err := s.storage.Put(ctx, key, req.Image, req.MimeType); err != nil {
		return Result{}, apperrors.Wrap(apperrors.CodeStorage, "failed to store image", err)
	}

	prediction, err := s.classifier.Classify(ctx, req.Image)
	if err != nil {
		s.discardImage(key)
		return Result{}, apperrors.Wrap(apperrors.CodeClassifier, "failed to classify image", err)
	}

	record, err := s.repo.Create(ctx, Record{
		PatientID:      req.PatientID,
		ImageKey:       key,
		ContentType:    req.MimeType,
		Prediction:     prediction.Class,
		Confidence:     prediction.Confidence,
		Distribution:   prediction.Distribution,
		Features:       prediction.Features,
		LesionLocation: strings.TrimSpace(req.LesionLocation),
		Notes:          strings.TrimSpace(req.Notes),
	})
	if err != nil {
		s.discardImage(key)
		return Result{}, apperrors.Wrap(apperrors.CodeDetection, "failed to save detection", err)
	}
	record.PatientName = name

	metrics.Detections.WithLabelValues(prediction.Class).Inc()
	s.logger.Info("detection recorded",
		"detection_id", record.ID,
		"patient_id", record.PatientID,
		"class", record.Prediction,
		"confidence", record.Confidence,
	)
	return withClass(record), nil
}

func (s *service) Get(ctx context.Context, id int64) (Result, error) {
	record, err := s.load(ctx, id)
	if err != nil {
		return Result{}, err
	}
	return withClass(record), nil
}

func (s *service) History(ctx context.Context, filter HistoryFilter) ([]Result, error) {
	filter.RiskLevels = trimAll(filter.RiskLevels)
	filter.Diagnoses = trimAll(filter.Diagnoses)
	records, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeDetection, "failed to load history", err)
	}
	risks := toSet(filter.RiskLevels)
	results := make([]Result, 0, len(records))
	for _, record := range records {
		result := withClass(record)
		if len(risks) > 0 {
			if _, ok := risks[result.Class.RiskLevel]; !ok {
				continue
			}
		}
		results = append(results, result)
	}
	return results, nil
}

func (s *service) Image(ctx context.Context, id int64) (Image, error) {
	record, err := s.load(ctx, id)
	if err != nil {
		return Image{}, err
	}
	body, size, err := s.storage.Get(ctx, record.ImageKey)
	if err != nil {
		return Image{}, apperrors.Wrap(apperrors.CodeStorage, "failed to open image", err)
	}
	return Image{Body: body, ContentType: record.ContentType, Size: size}, nil
}

func (s *service) Classes() []ClassInfo {
	return Classes()
}

func (s *service) load(ctx context.Context, id int64) (Record, error) {
	if id <= 0 {
		return Record{}, apperrors.Wrap(apperrors.CodeInvalidInput, "detection id must be positive", nil)
	}
	record, found, err := s.repo.Get(ctx, id)
	if err != nil {
		return Record{}, apperrors.Wrap(apperrors.CodeDetection, "failed to load detection", err)
	}
	if !found {
		return Record{}, apperrors.Wrap(apperrors.CodeNotFound, fmt.Sprintf("detection %d not found", id), nil)
	}
	return record, nil
}

func (s *service) validate(req AnalyzeRequest) error {
	if req.PatientID <= 0 {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "patient id must be positive", nil)
	}
	if len(req.Image) == 0 {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "image cannot be empty", nil)
	}
	if s.cfg.MaxImageBytes > 0 && int64(len(req.Image)) > s.cfg.MaxImageBytes {
		return apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("image exceeds %d bytes", s.cfg.MaxImageBytes), nil)
	}
	if !s.allowedMime(req.MimeType) {
		return apperrors.Wrap(apperrors.CodeInvalidInput, fmt.Sprintf("unsupported image type %q", req.MimeType), nil)
	}
	if loc := strings.TrimSpace(req.LesionLocation); loc != "" && !knownLocation(loc) {
		return apperrors.Wrap(apperrors.CodeInvalidInput, "lesion location must be one of "+strings.Join(Locations, ", "), nil)
	}
	return nil
}

func (s *service) allowedMime(mime string) bool {
	if len(s.cfg.AllowedMimeTypes) == 0 {
		return true
	}
	mime = strings.ToLower(strings.TrimSpace(mime))
	for _, allowed := range s.cfg.AllowedMimeTypes {
		if strings.EqualFold(allowed, mime) {
			return true
		}
	}
	return false
}

// discardImage runs on a fresh context so a cancelled request still cleans up.
func (s *service) discardImage(key string) {
	if err := s.storage.Delete(context.Background(), key); err != nil {
		s.logger.Warn("failed to remove orphaned image", "key", key, "error", err)
	}
}

func imageKey(patientID int64, filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	return fmt.Sprintf("detections/%d/%s%s", patientID, uuid.NewString(), ext)
}

func withClass(record Record) Result {
	info, ok := LookupClass(record.Prediction)
	if !ok {
		info = ClassInfo{Code: record.Prediction, Name: "Unknown", RiskLevel: "Unknown"}
	}
	return Result{Record: record, Class: info}
}

func knownLocation(loc string) bool {
	for _, l := range Locations {
		if l == loc {
			return true
		}
	}
	return false
}

func trimAll(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
