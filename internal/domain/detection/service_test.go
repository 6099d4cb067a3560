package detection

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	apperrors "github.com/yanqian/skinscan/pkg/errors"
	"github.com/yanqian/skinscan/pkg/metrics"
)

func TestService_AnalyzeStoresAndRecords(t *testing.T) {
	env := newServiceEnv()
	before := testutil.ToFloat64(metrics.Detections.WithLabelValues("mel"))

	result, err := env.svc.Analyze(context.Background(), AnalyzeRequest{
		PatientID:      1,
		Filename:       "Mole.JPG",
		MimeType:       "image/jpeg",
		Image:          []byte("jpeg-bytes"),
		LesionLocation: "Back",
		Notes:          " itchy ",
	})
	require.NoError(t, err)
	require.NotZero(t, result.ID)
	require.Equal(t, "mel", result.Prediction)
	require.Equal(t, RiskHigh, result.Class.RiskLevel)
	require.Equal(t, "Jane Doe", result.PatientName)
	require.Equal(t, "itchy", result.Notes)
	require.True(t, strings.HasPrefix(result.ImageKey, "detections/1/"))
	require.True(t, strings.HasSuffix(result.ImageKey, ".jpg"))
	require.Contains(t, env.storage.objects, result.ImageKey)
	require.Equal(t, before+1, testutil.ToFloat64(metrics.Detections.WithLabelValues("mel")))

	img, err := env.svc.Image(context.Background(), result.ID)
	require.NoError(t, err)
	defer img.Body.Close()
	data, err := io.ReadAll(img.Body)
	require.NoError(t, err)
	require.Equal(t, "jpeg-bytes", string(data))
	require.Equal(t, "image/jpeg", img.ContentType)
}

func TestService_AnalyzeValidation(t *testing.T) {
	env := newServiceEnv()
	valid := AnalyzeRequest{PatientID: 1, Filename: "a.png", MimeType: "image/png", Image: []byte("x")}
	cases := []struct {
		name   string
		mutate func(*AnalyzeRequest)
		code   string
	}{
		{name: "missing patient id", mutate: func(r *AnalyzeRequest) { r.PatientID = 0 }, code: "invalid_input"},
		{name: "empty image", mutate: func(r *AnalyzeRequest) { r.Image = nil }, code: "invalid_input"},
		{name: "oversized image", mutate: func(r *AnalyzeRequest) { r.Image = bytes.Repeat([]byte("x"), 65) }, code: "invalid_input"},
		{name: "unsupported mime", mutate: func(r *AnalyzeRequest) { r.MimeType = "application/pdf" }, code: "invalid_input"},
		{name: "unknown location", mutate: func(r *AnalyzeRequest) { r.LesionLocation = "Elbow" }, code: "invalid_input"},
		{name: "unknown patient", mutate: func(r *AnalyzeRequest) { r.PatientID = 9 }, code: "not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := valid
			tc.mutate(&req)
			_, err := env.svc.Analyze(context.Background(), req)
			require.Error(t, err)
			require.True(t, apperrors.IsCode(err, tc.code), err.Error())
		})
	}
	require.Empty(t, env.storage.objects)
}

func TestService_AnalyzeRemovesImageOnFailure(t *testing.T) {
	t.Run("classifier", func(t *testing.T) {
		env := newServiceEnv()
		env.classifier.err = errors.New("model offline")
		_, err := env.svc.Analyze(context.Background(), AnalyzeRequest{PatientID: 1, Filename: "a.png", MimeType: "image/png", Image: []byte("x")})
		require.True(t, apperrors.IsCode(err, "classifier_error"))
		require.Empty(t, env.storage.objects)
	})
	t.Run("repository", func(t *testing.T) {
		env := newServiceEnv()
		env.repo.err = errors.New("db down")
		_, err := env.svc.Analyze(context.Background(), AnalyzeRequest{PatientID: 1, Filename: "a.png", MimeType: "image/png", Image: []byte("x")})
		require.True(t, apperrors.IsCode(err, "detection_error"))
		require.Empty(t, env.storage.objects)
	})
}

func TestService_HistoryFiltersByRisk(t *testing.T) {
	env := newServiceEnv()
	for _, class := range []string{"mel", "nv", "bcc"} {
		env.classifier.class = class
		_, err := env.svc.Analyze(context.Background(), AnalyzeRequest{PatientID: 1, Filename: "a.png", MimeType: "image/png", Image: []byte("x")})
		require.NoError(t, err)
	}

	all, err := env.svc.History(context.Background(), HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)

	high, err := env.svc.History(context.Background(), HistoryFilter{RiskLevels: []string{" High ", RiskMedium}})
	require.NoError(t, err)
	require.Len(t, high, 2)
	for _, r := range high {
		require.Contains(t, []string{"mel", "bcc"}, r.Prediction)
	}
}

func TestService_GetMissing(t *testing.T) {
	env := newServiceEnv()
	_, err := env.svc.Get(context.Background(), 5)
	require.True(t, apperrors.IsCode(err, "not_found"))
	_, err = env.svc.Image(context.Background(), -1)
	require.True(t, apperrors.IsCode(err, "invalid_input"))
}

func TestService_Classes(t *testing.T) {
	env := newServiceEnv()
	got := env.svc.Classes()
	require.Len(t, got, 7)
	require.Equal(t, "akiec", got[0].Code)
	got[0].Code = "mutated"
	require.Equal(t, "akiec", env.svc.Classes()[0].Code)
}

type serviceEnv struct {
	svc        Service
	classifier *stubClassifier
	storage    *stubStorage
	repo       *stubRepo
}

func newServiceEnv() serviceEnv {
	classifier := &stubClassifier{class: "mel"}
	storage := &stubStorage{objects: make(map[string][]byte)}
	repo := &stubRepo{}
	patients := stubPatients{1: "Jane Doe"}
	svc := NewService(Config{
		MaxImageBytes:    64,
		AllowedMimeTypes: []string{"image/jpeg", "image/png"},
	}, classifier, storage, repo, patients, newTestLogger())
	return serviceEnv{svc: svc, classifier: classifier, storage: storage, repo: repo}
}

type stubClassifier struct {
	class string
	err   error
}

func (s *stubClassifier) Classify(context.Context, []byte) (Prediction, error) {
	if s.err != nil {
		return Prediction{}, s.err
	}
	return Prediction{Class: s.class, Confidence: 0.9}, nil
}

type stubStorage struct {
	objects map[string][]byte
}

func (s *stubStorage) Put(_ context.Context, key string, data []byte, _ string) error {
	s.objects[key] = data
	return nil
}

func (s *stubStorage) Get(_ context.Context, key string) (io.ReadCloser, int64, error) {
	data, ok := s.objects[key]
	if !ok {
		return nil, 0, errors.New("missing")
	}
	return io.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func (s *stubStorage) Delete(_ context.Context, key string) error {
	delete(s.objects, key)
	return nil
}

type stubRepo struct {
	records []Record
	err     error
}

func (s *stubRepo) Create(_ context.Context, record Record) (Record, error) {
	if s.err != nil {
		return Record{}, s.err
	}
	record.ID = int64(len(s.records) + 1)
	record.CreatedAt = time.Now()
	s.records = append(s.records, record)
	return record, nil
}

func (s *stubRepo) Get(_ context.Context, id int64) (Record, bool, error) {
	for _, r := range s.records {
		if r.ID == id {
			return r, true, nil
		}
	}
	return Record{}, false, s.err
}

func (s *stubRepo) List(context.Context, HistoryFilter) ([]Record, error) {
	return s.records, s.err
}

type stubPatients map[int64]string

func (s stubPatients) PatientName(_ context.Context, id int64) (string, bool, error) {
	name, ok := s[id]
	return name, ok, nil
}

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
