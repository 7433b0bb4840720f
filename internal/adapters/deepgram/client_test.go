package deepgram

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danilodaat/automat/internal/core/domain"
)

func writeAudio(t *testing.T) domain.AudioArtifact {
	t.Helper()
	p := filepath.Join(t.TempDir(), "42.mp3")
	require.NoError(t, os.WriteFile(p, []byte("ID3-audio"), 0644))
	return domain.AudioArtifact{LocalPath: p}
}

func TestTranscribeSendsAudioAndParsesTranscript(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "Token secret", r.Header.Get("Authorization"))
		assert.Equal(t, "audio/mpeg", r.Header.Get("Content-Type"))
		assert.Equal(t, "nova-2", r.URL.Query().Get("model"))
		assert.Equal(t, "es", r.URL.Query().Get("language"))
		assert.Equal(t, "true", r.URL.Query().Get("smart_format"))
		body, _ := io.ReadAll(r.Body)
		assert.Equal(t, "ID3-audio", string(body))

		w.Write([]byte(`{"results":{"channels":[{"alternatives":[{"transcript":"Hola Lima.","confidence":0.98}]}]}}`))
	}))
	defer server.Close()

	tr, err := NewTranscriber(Options{APIKey: "secret", URL: server.URL})
	require.NoError(t, err)

	got, err := tr.Transcribe(context.Background(), writeAudio(t))
	require.NoError(t, err)
	assert.Equal(t, "Hola Lima.", got.Text)
}

func TestTranscribeEmptyResultFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":{"channels":[{"alternatives":[{"transcript":"  "}]}]}}`))
	}))
	defer server.Close()

	tr, err := NewTranscriber(Options{APIKey: "k", URL: server.URL})
	require.NoError(t, err)

	_, err = tr.Transcribe(context.Background(), writeAudio(t))
	assert.Equal(t, domain.KindTranscriptionFailed, domain.KindOf(err))
}

func TestTranscribeNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"err_msg":"Invalid credentials."}`))
	}))
	defer server.Close()

	tr, err := NewTranscriber(Options{APIKey: "k", URL: server.URL})
	require.NoError(t, err)

	_, err = tr.Transcribe(context.Background(), writeAudio(t))
	require.Error(t, err)
	assert.Equal(t, domain.KindTranscriptionFailed, domain.KindOf(err))
	assert.Contains(t, err.Error(), "401")
}

func TestTranscribeTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer server.Close()

	tr, err := NewTranscriber(Options{APIKey: "k", URL: server.URL, Timeout: 20 * time.Millisecond})
	require.NoError(t, err)

	_, err = tr.Transcribe(context.Background(), writeAudio(t))
	assert.Equal(t, domain.KindTranscriptionFailed, domain.KindOf(err))
}

func TestTranscribeMissingFile(t *testing.T) {
	tr, err := NewTranscriber(Options{APIKey: "k"})
	require.NoError(t, err)

	_, err = tr.Transcribe(context.Background(), domain.AudioArtifact{LocalPath: filepath.Join(t.TempDir(), "none.mp3")})
	assert.Equal(t, domain.KindTranscriptionFailed, domain.KindOf(err))
}

func TestNewTranscriberRequiresKey(t *testing.T) {
	_, err := NewTranscriber(Options{})
	assert.Error(t, err)
}
