package renderer

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRemoteRendererRender(t *testing.T) {
	var captured struct {
		HTML    string         `json:"html"`
		Options map[string]any `json:"options"`
	}
	var authHeader string
	srv := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				authHeader = r.Header.Get("Authorization")
				body, _ := io.ReadAll(r.Body)
				require.NoError(t, json.Unmarshal(body, &captured))
				w.Header().Set("Content-Type", "application/pdf")
				_, _ = w.Write([]byte("%PDF-1.4 converted"))
			},
		),
	)
	defer srv.Close()

	r := NewRemoteRenderer(srv.URL, "secret-key", 5*time.Second, NewQREncoder())
	r.Now = func() time.Time {
		return time.Date(2026, 8, 29, 12, 0, 0, 0, time.UTC)
	}

	document, err := r.Render(
		context.Background(), Data{
			CertID:     "OF-8001",
			QRPayload:  "https://verify.example/certificate/OF-8001",
			Confidence: 91.2,
		},
	)
	require.NoError(t, err)
	assert.Equal(t, []byte("%PDF-1.4 converted"), document)
	assert.Equal(t, "Bearer secret-key", authHeader)

	assert.Contains(t, captured.HTML, "OF-8001")
	assert.Contains(t, captured.HTML, "91.2%")
	assert.Contains(t, captured.HTML, "#2e7d32")
	assert.Contains(t, captured.HTML, "PASS")
	assert.Contains(t, captured.HTML, "Issued August 29, 2026")
	assert.Contains(t, captured.HTML, "data:image/png;base64,")
	assert.Equal(t, "A4", captured.Options["format"])
	assert.Equal(t, true, captured.Options["landscape"])
}

func TestRemoteRendererConversionError(t *testing.T) {
	srv := httptest.NewServer(
		http.HandlerFunc(
			func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte("converter overloaded"))
			},
		),
	)
	defer srv.Close()

	r := NewRemoteRenderer(srv.URL, "", 5*time.Second, NewQREncoder())
	_, err := r.Render(
		context.Background(), Data{
			CertID:     "OF-8002",
			QRPayload:  "https://verify.example/certificate/OF-8002",
			Confidence: 12.3,
		},
	)
	require.Error(t, err)
	var remoteErr *RemoteRenderError
	require.ErrorAs(t, err, &remoteErr)
	assert.Equal(t, http.StatusBadGateway, remoteErr.StatusCode)
	assert.Equal(t, "converter overloaded", remoteErr.Body)
	assert.Contains(t, err.Error(), "502")
	assert.Contains(t, err.Error(), "converter overloaded")
}

func TestRemoteRendererFilename(t *testing.T) {
	r := NewRemoteRenderer("https://converter.example", "", time.Second, NewQREncoder())
	assert.Equal(t, "OpalForge_Cert_OF-8003.pdf", r.Filename("OF-8003"))
}
