package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/skinscan/internal/domain/auth"
	"github.com/yanqian/skinscan/internal/domain/chatbot"
	"github.com/yanqian/skinscan/internal/domain/detection"
	"github.com/yanqian/skinscan/internal/domain/patient"
	"github.com/yanqian/skinscan/internal/infra/chatstore"
	"github.com/yanqian/skinscan/internal/infra/clinicianrepo"
	"github.com/yanqian/skinscan/internal/infra/config"
	"github.com/yanqian/skinscan/internal/infra/detectionrepo"
	"github.com/yanqian/skinscan/internal/infra/imagestore"
	"github.com/yanqian/skinscan/internal/infra/patientrepo"
	apperrors "github.com/yanqian/skinscan/pkg/errors"
	"github.com/yanqian/skinscan/pkg/util"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n-lesion-pixels")

func TestRouter_ChatGreeting(t *testing.T) {
	server := newRouterUnderTest(t)

	recorder := performRequest(server, http.MethodPost, "/api/v1/chat", `{"message":"Hello!"}`, "")
	require.Equal(t, http.StatusOK, recorder.Code)

	var got chatbot.Response
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
	require.Equal(t, chatbot.SourceGreeting, got.Source)
	require.True(t, strings.HasPrefix(got.Reply, "Hello! How can I help"))
}

func TestRouter_ChatFAQAndTrending(t *testing.T) {
	server := newRouterUnderTest(t)

	for i := 0; i < 2; i++ {
		recorder := performRequest(server, http.MethodPost, "/api/v1/chat", `{"message":"What SPF sunscreen should I use?"}`, "")
		require.Equal(t, http.StatusOK, recorder.Code)
		var got chatbot.Response
		require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &got))
		require.Equal(t, chatbot.SourceFAQ, got.Source)
		require.Equal(t, "What SPF sunscreen should I use?", got.MatchedQuestion)
	}

	recorder := performRequest(server, http.MethodGet, "/api/v1/chat/trending", "", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	var body struct {
		Questions []chatbot.TrendingQuery `json:"questions"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Equal(t, []chatbot.TrendingQuery{{Query: "What SPF sunscreen should I use?", Count: 2}}, body.Questions)
}

func TestRouter_ChatInvalidJSON(t *testing.T) {
	server := newRouterUnderTest(t)

	recorder := performRequest(server, http.MethodPost, "/api/v1/chat", `{"message":123}`, "")
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	errBody := decodeErrorBody(t, recorder.Body.Bytes())
	require.Equal(t, "invalid_request", errBody["error"]["code"])
	require.NotEmpty(t, errBody["error"]["message"])
}

func TestRouter_SecuredRoutesRequireToken(t *testing.T) {
	server := newRouterUnderTest(t)

	recorder := performRequest(server, http.MethodGet, "/api/v1/patients", "", "")
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	require.Equal(t, "unauthorized", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])

	recorder = performRequest(server, http.MethodGet, "/api/v1/patients", "", "not-a-jwt")
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	require.Equal(t, "invalid_token", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_AuthFlow(t *testing.T) {
	server := newRouterUnderTest(t)
	token := registerAndLogin(t, server)

	recorder := performRequest(server, http.MethodGet, "/api/v1/auth/me", "", token)
	require.Equal(t, http.StatusOK, recorder.Code)
	var me auth.ClinicianView
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &me))
	require.Equal(t, "doc@clinic.org", me.Email)

	recorder = performRequest(server, http.MethodPost, "/api/v1/auth/register",
		`{"email":"doc@clinic.org","password":"pass1234","displayName":"Again"}`, "")
	require.Equal(t, http.StatusConflict, recorder.Code)

	recorder = performRequest(server, http.MethodPost, "/api/v1/auth/login",
		`{"email":"doc@clinic.org","password":"wrong-pass"}`, "")
	require.Equal(t, http.StatusUnauthorized, recorder.Code)
	require.Equal(t, "invalid_credentials", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_PatientLifecycle(t *testing.T) {
	server := newRouterUnderTest(t)
	token := registerAndLogin(t, server)

	created := createPatient(t, server, token, `{"name":"Ada Lovelace","age":36,"gender":"female"}`)
	require.Equal(t, "Female", created.Gender)

	recorder := performRequest(server, http.MethodPatch, fmt.Sprintf("/api/v1/patients/%d", created.ID), `{"contact":"555-0101"}`, token)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = performRequest(server, http.MethodGet, "/api/v1/patients?q=ada", "", token)
	require.Equal(t, http.StatusOK, recorder.Code)
	var list struct {
		Patients []patient.Patient `json:"patients"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &list))
	require.Len(t, list.Patients, 1)
	require.Equal(t, "555-0101", list.Patients[0].Contact)

	recorder = performRequest(server, http.MethodGet, "/api/v1/patients/999", "", token)
	require.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = performRequest(server, http.MethodGet, "/api/v1/patients/abc", "", token)
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = performRequest(server, http.MethodPost, "/api/v1/patients", `{"name":"Old","age":130,"gender":"Male"}`, token)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
	require.Equal(t, "invalid_request", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])
}

func TestRouter_AssistantCannotSubmitImages(t *testing.T) {
	server := newRouterUnderTest(t)
	token := registerAndLoginAs(t, server, "desk@clinic.org", auth.RoleAssistant)

	p := createPatient(t, server, token, `{"name":"Grace Hopper","age":70,"gender":"Female"}`)

	recorder := uploadImage(t, server, token, map[string]string{"patientId": fmt.Sprint(p.ID)}, "mole.png", pngBytes)
	require.Equal(t, http.StatusForbidden, recorder.Code)
	require.Equal(t, "forbidden", decodeErrorBody(t, recorder.Body.Bytes())["error"]["code"])

	recorder = performRequest(server, http.MethodGet, "/api/v1/detections", "", token)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = performRequest(server, http.MethodGet, "/api/v1/auth/me", "", token)
	require.Equal(t, http.StatusOK, recorder.Code)
	var me auth.ClinicianView
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &me))
	require.Equal(t, auth.RoleAssistant, me.Role)
}

func TestRouter_DetectionFlow(t *testing.T) {
	server := newRouterUnderTest(t)
	token := registerAndLogin(t, server)
	p := createPatient(t, server, token, `{"name":"Grace Hopper","age":70,"gender":"Female"}`)

	recorder := uploadImage(t, server, token, map[string]string{
		"patientId":      fmt.Sprint(p.ID),
		"lesionLocation": "Back",
		"notes":          "new mole",
	}, "mole.png", pngBytes)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	var result detection.Result
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &result))
	require.NotZero(t, result.ID)
	require.Equal(t, p.ID, result.PatientID)
	require.Equal(t, "Grace Hopper", result.PatientName)
	require.Equal(t, "image/png", result.ContentType)
	require.Len(t, result.Distribution, 7)
	require.NotEmpty(t, result.Class.RiskLevel)

	recorder = performRequest(server, http.MethodGet, fmt.Sprintf("/api/v1/detections/%d/image", result.ID), "", token)
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Equal(t, "image/png", recorder.Header().Get("Content-Type"))
	require.Equal(t, pngBytes, recorder.Body.Bytes())

	recorder = performRequest(server, http.MethodGet, fmt.Sprintf("/api/v1/detections?patientId=%d&diagnosis=%s", p.ID, result.Prediction), "", token)
	require.Equal(t, http.StatusOK, recorder.Code)
	var history struct {
		Detections []detection.Result `json:"detections"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &history))
	require.Len(t, history.Detections, 1)

	recorder = performRequest(server, http.MethodGet, fmt.Sprintf("/api/v1/patients/%d/detections", p.ID), "", token)
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = performRequest(server, http.MethodGet, "/api/v1/detections/404", "", token)
	require.Equal(t, http.StatusNotFound, recorder.Code)
}

func TestRouter_DetectionRejectsBadUpload(t *testing.T) {
	server := newRouterUnderTest(t)
	token := registerAndLogin(t, server)
	p := createPatient(t, server, token, `{"name":"Alan Turing","age":41,"gender":"Male"}`)

	recorder := uploadImage(t, server, token, map[string]string{"patientId": fmt.Sprint(p.ID)}, "notes.txt", []byte("plain text"))
	require.Equal(t, http.StatusBadRequest, recorder.Code)

	recorder = uploadImage(t, server, token, map[string]string{"patientId": "999"}, "mole.png", pngBytes)
	require.Equal(t, http.StatusNotFound, recorder.Code)

	recorder = uploadImage(t, server, token, map[string]string{"patientId": "x"}, "mole.png", pngBytes)
	require.Equal(t, http.StatusBadRequest, recorder.Code)
}

func TestRouter_DetectionRejectsOversizedUploadEarly(t *testing.T) {
	server := newRouterUnderTest(t)
	token := registerAndLogin(t, server)
	p := createPatient(t, server, token, `{"name":"Grace Hopper","age":79,"gender":"Female"}`)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("patientId", fmt.Sprint(p.ID)))
	part, err := writer.CreateFormFile("image", "huge.png")
	require.NoError(t, err)
	_, err = part.Write(append(pngBytes, make([]byte, 8<<20)...))
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	total := buf.Len()

	body := &countingReader{r: &buf}
	req := httptest.NewRequest(http.MethodPost, "/api/v1/detections", body)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusRequestEntityTooLarge, rec.Code, rec.Body.String())
	require.Equal(t, "image_too_large", decodeErrorBody(t, rec.Body.Bytes())["error"]["code"])
	require.Less(t, body.n, total/2)
}

type countingReader struct {
	r io.Reader
	n int
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += n
	return n, err
}

func TestRouter_ClassesHealthAndMetrics(t *testing.T) {
	server := newRouterUnderTest(t)

	recorder := performRequest(server, http.MethodGet, "/api/v1/classes", "", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	var body struct {
		Classes   []detection.ClassInfo `json:"classes"`
		Locations []string              `json:"locations"`
	}
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &body))
	require.Len(t, body.Classes, 7)
	require.Contains(t, body.Locations, "Face")

	recorder = performRequest(server, http.MethodGet, "/healthz", "", "")
	require.Equal(t, http.StatusOK, recorder.Code)

	recorder = performRequest(server, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, recorder.Code)
	require.Contains(t, recorder.Body.String(), "skinscan_http_requests_total")
}

func TestFromDomainError(t *testing.T) {
	cases := []struct {
		code   string
		status int
	}{
		{code: "invalid_input", status: http.StatusBadRequest},
		{code: "not_found", status: http.StatusNotFound},
		{code: "email_exists", status: http.StatusConflict},
		{code: "invalid_credentials", status: http.StatusUnauthorized},
		{code: "storage_error", status: http.StatusBadGateway},
		{code: "patient_error", status: http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.code, func(t *testing.T) {
			httpErr := fromDomainError(apperrors.Wrap(tc.code, "boom", nil), "fallback")
			require.Equal(t, tc.status, httpErr.Status)
		})
	}
}

func registerAndLogin(t *testing.T, server *http.Server) string {
	t.Helper()
	return registerAndLoginAs(t, server, "doc@clinic.org", "")
}

func registerAndLoginAs(t *testing.T, server *http.Server, email string, role auth.Role) string {
	t.Helper()
	body, err := json.Marshal(auth.RegisterRequest{Email: email, Password: "pass1234", DisplayName: "Doctor Who", Role: role})
	require.NoError(t, err)
	recorder := performRequest(server, http.MethodPost, "/api/v1/auth/register", string(body), "")
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())

	recorder = performRequest(server, http.MethodPost, "/api/v1/auth/login",
		fmt.Sprintf(`{"email":%q,"password":"pass1234"}`, email), "")
	require.Equal(t, http.StatusOK, recorder.Code, recorder.Body.String())
	var resp auth.LoginResponse
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &resp))
	return resp.Token
}

func createPatient(t *testing.T, server *http.Server, token, body string) patient.Patient {
	t.Helper()
	recorder := performRequest(server, http.MethodPost, "/api/v1/patients", body, token)
	require.Equal(t, http.StatusCreated, recorder.Code, recorder.Body.String())
	var created patient.Patient
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &created))
	return created
}

func uploadImage(t *testing.T, server *http.Server, token string, fields map[string]string, filename string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, writer.WriteField(k, v))
	}
	part, err := writer.CreateFormFile("image", filename)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/detections", &buf)
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func performRequest(server *http.Server, method, path, body, token string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, req)
	return rec
}

func newRouterUnderTest(t *testing.T) *http.Server {
	t.Helper()
	logger := newTestLogger()

	chatSvc := chatbot.NewService(chatbot.Config{TopTrending: 5},
		chatbot.NewResponder(nil, util.NewLockedRand(1)), chatstore.NewMemoryStore(0), logger)
	authSvc := auth.NewService(auth.Config{
		Secret:          "test-secret",
		TokenTTL:        time.Hour,
		RefreshTokenTTL: 24 * time.Hour,
	}, clinicianrepo.NewMemoryRepository(), logger)

	patients := patientrepo.NewMemoryRepository()
	patientSvc := patient.NewService(patients, logger)
	lookup := patientrepo.NewNameLookup(patients)
	detectionSvc := detection.NewService(detection.Config{
		MaxImageBytes:    1 << 20,
		AllowedMimeTypes: []string{"image/png", "image/jpeg"},
	}, detection.NewRandomClassifier(util.NewLockedRand(3), 0), imagestore.NewMemoryStore(),
		detectionrepo.NewMemoryRepository(lookup), lookup, logger)

	handler := NewHandler(chatSvc, authSvc, patientSvc, detectionSvc, logger)
	cfg := &config.Config{
		HTTP: config.HTTPConfig{
			Address:      ":0",
			ReadTimeout:  time.Second,
			WriteTimeout: time.Second,
		},
		Detection: config.DetectionConfig{MaxImageBytes: 1 << 20},
	}
	return NewRouter(cfg, handler)
}

func newTestLogger() *slog.Logger {
	handler := slog.NewTextHandler(io.Discard, nil)
	return slog.New(handler)
}

func decodeErrorBody(t *testing.T, raw []byte) map[string]map[string]string {
	t.Helper()
	var body map[string]map[string]string
	require.NoError(t, json.Unmarshal(raw, &body))
	return body
}
