package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danilodaat/automat/internal/core/domain"
	"github.com/danilodaat/automat/internal/service"
)

type fakeSubmitter struct {
	got      []domain.StartRequest
	sessions []string
	err      error
}

func (f *fakeSubmitter) Submit(req domain.StartRequest, session string) (string, error) {
	f.got = append(f.got, req)
	f.sessions = append(f.sessions, session)
	if f.err != nil {
		return "", f.err
	}
	return "job-1", nil
}

func newTestRouter(t *testing.T, sub Submitter, origins ...string) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger, _ := logtest.NewNullLogger()
	ws := func(c *gin.Context) { c.String(http.StatusTeapot, "ws") }
	return NewRouter(NewHandler(sub, logger), ws, origins, logger)
}

func do(r http.Handler, method, path, body string, header map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	for k, v := range header {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthEndpoints(t *testing.T) {
	r := newTestRouter(t, &fakeSubmitter{})

	for _, path := range []string{"/", "/health"} {
		w := do(r, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusOK, w.Code, path)
		assert.Contains(t, w.Body.String(), `"status":"ok"`)
	}
}

func TestStartAcceptsJob(t *testing.T) {
	sub := &fakeSubmitter{}
	r := newTestRouter(t, sub)

	w := do(r, http.MethodPost, "/start", `{"tipo_pauta":"radio","id_pauta":42}`, map[string]string{"Content-Type": "application/json"})

	require.Equal(t, http.StatusAccepted, w.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, map[string]string{"status": "processing_started", "job_id": "job-1"}, body)

	require.Len(t, sub.got, 1)
	assert.Equal(t, "radio", sub.got[0].Kind)
	assert.Equal(t, "42", sub.got[0].Identifier())
	assert.Equal(t, []string{""}, sub.sessions)
}

func TestStartRejectsBadJSON(t *testing.T) {
	sub := &fakeSubmitter{}
	r := newTestRouter(t, sub)

	w := do(r, http.MethodPost, "/start", `{"tipo_pauta":`, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, sub.got)
}

func TestStartErrors(t *testing.T) {
	w := do(newTestRouter(t, &fakeSubmitter{err: service.ErrShuttingDown}), http.MethodPost, "/start", `{"tipo_pauta":"tv","id_pauta":"1"}`, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	w = do(newTestRouter(t, &fakeSubmitter{err: errors.New("boom")}), http.MethodPost, "/start", `{"tipo_pauta":"tv","id_pauta":"1"}`, nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestWebsocketRoute(t *testing.T) {
	w := do(newTestRouter(t, &fakeSubmitter{}), http.MethodGet, "/ws", "", nil)
	assert.Equal(t, http.StatusTeapot, w.Code)
}

func TestCORS(t *testing.T) {
	r := newTestRouter(t, &fakeSubmitter{}, "http://localhost:5173")

	w := do(r, http.MethodGet, "/health", "", map[string]string{"Origin": "http://localhost:5173"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "http://localhost:5173", w.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", w.Header().Get("Access-Control-Allow-Credentials"))

	w = do(r, http.MethodOptions, "/start", "", map[string]string{"Origin": "http://localhost:5173"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Contains(t, w.Header().Get("Access-Control-Allow-Methods"), "POST")

	w = do(r, http.MethodGet, "/health", "", map[string]string{"Origin": "http://evil.test"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = do(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSWildcard(t *testing.T) {
	r := newTestRouter(t, &fakeSubmitter{}, "*")

	w := do(r, http.MethodGet, "/health", "", map[string]string{"Origin": "http://anything.test"})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}
