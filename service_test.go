package opalforge

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"

	"github.com/opalforge/opalforge/renderer"
	"github.com/opalforge/opalforge/storage/model"
)

// memKV is an in-memory model.KeyValueStore for handler tests.
type memKV struct {
	mu    sync.Mutex
	items map[string]datatypes.JSON
}

func newMemKV() *memKV {
	return &memKV{items: make(map[string]datatypes.JSON)}
}

func (s *memKV) Get(scope, key string) (datatypes.JSON, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.items[scope+"\x00"+key], nil
}

func (s *memKV) Set(scope, key string, value datatypes.JSON) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items[scope+"\x00"+key] = value
	return nil
}

func (s *memKV) Delete(scope, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, scope+"\x00"+key)
	return nil
}

func (s *memKV) GetAs(scope, key string, out any) (bool, error) {
	raw, _ := s.Get(scope, key)
	if raw == nil {
		return false, nil
	}
	return true, json.Unmarshal(raw, out)
}

func (s *memKV) SetAny(scope, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return s.Set(scope, key, b)
}

func newTestService(t *testing.T) (*Service, *countingStore, *memKV) {
	t.Helper()
	store := newCountingStore()
	kv := newMemKV()
	qr := renderer.NewQREncoder()
	svc, err := NewService(
		ServerConf{Port: 8080},
		Conf{
			Name:    "opalforge-test",
			BaseURL: "https://verify.opalforge.example",
		},
		model.Backends{Certificates: store, KV: kv},
		renderer.NewLocalRenderer(qr),
		qr,
	)
	require.NoError(t, err)
	return svc, store, kv
}

func postJSON(t *testing.T, svc *Service, target, body string) *jsonResponse {
	t.Helper()
	req := httptest.NewRequest("POST", target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := svc.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return &jsonResponse{status: resp.StatusCode, body: raw}
}

type jsonResponse struct {
	status int
	body   []byte
}

func (r *jsonResponse) decode(t *testing.T, out any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(r.body, out))
}

func TestCertificateLifecycle(t *testing.T) {
	svc, _, _ := newTestService(t)

	resp := postJSON(t, svc, "/certificate", `{"certId":"OF-1001","confidence":91.2}`)
	require.Equal(t, 201, resp.status)
	var created struct {
		Success bool   `json:"success"`
		CertID  string `json:"certId"`
	}
	resp.decode(t, &created)
	assert.True(t, created.Success)
	assert.Equal(t, "OF-1001", created.CertID)

	// Duplicate create must conflict.
	resp = postJSON(t, svc, "/certificate", `{"certId":"OF-1001","confidence":12.3}`)
	require.Equal(t, 409, resp.status)
	var conflict apiError
	resp.decode(t, &conflict)
	assert.Equal(t, "conflict", conflict.Error)

	req := httptest.NewRequest("GET", "/certificate/OF-1001", nil)
	httpResp, err := svc.Test(req)
	require.NoError(t, err)
	defer httpResp.Body.Close()
	require.Equal(t, 200, httpResp.StatusCode)
	assert.Contains(t, httpResp.Header.Get("Content-Type"), "application/json")
	var cert struct {
		CertID     string  `json:"certId"`
		Confidence float64 `json:"confidence"`
		Status     string  `json:"status"`
		QRPayload  string  `json:"qrPayload"`
	}
	require.NoError(t, json.NewDecoder(httpResp.Body).Decode(&cert))
	assert.Equal(t, "OF-1001", cert.CertID)
	assert.Equal(t, 91.2, cert.Confidence)
	assert.Equal(t, "active", cert.Status)
	// qrPayload was omitted in the create, so the canonical verification URL
	// must have been derived.
	assert.Equal(t, "https://verify.opalforge.example/certificate/OF-1001", cert.QRPayload)

	headResp, err := svc.Test(httptest.NewRequest("HEAD", "/certificate/OF-1001", nil))
	require.NoError(t, err)
	assert.Equal(t, 200, headResp.StatusCode)

	headResp, err = svc.Test(httptest.NewRequest("HEAD", "/certificate/OF-never", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, headResp.StatusCode)

	getResp, err := svc.Test(httptest.NewRequest("GET", "/certificate/OF-never", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, getResp.StatusCode)
}

func TestCreateCertificateValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	for name, body := range map[string]string{
		"missing certId":     `{"confidence":50}`,
		"missing confidence": `{"certId":"OF-2001"}`,
		"invalid JSON":       `{"certId":`,
	} {
		resp := postJSON(t, svc, "/certificate", body)
		assert.Equalf(t, 400, resp.status, "case %q", name)
		var apiErr apiError
		resp.decode(t, &apiErr)
		assert.Equalf(t, "invalid_request", apiErr.Error, "case %q", name)
	}
}

func TestCertificatePDF(t *testing.T) {
	svc, _, _ := newTestService(t)

	resp := postJSON(t, svc, "/certificate", `{"certId":"OF-3001","confidence":91.2}`)
	require.Equal(t, 201, resp.status)

	httpResp, err := svc.Test(httptest.NewRequest("GET", "/certificate/OF-3001/pdf", nil), 10000)
	require.NoError(t, err)
	defer httpResp.Body.Close()
	require.Equal(t, 200, httpResp.StatusCode)
	assert.Equal(t, "application/pdf", httpResp.Header.Get("Content-Type"))
	assert.Contains(t, httpResp.Header.Get("Content-Disposition"), "attachment")
	assert.Contains(t, httpResp.Header.Get("Content-Disposition"), "OpalForge_OF-3001.pdf")
	document, err := io.ReadAll(httpResp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(document, []byte("%PDF")))

	// Query overrides are accepted.
	httpResp, err = svc.Test(
		httptest.NewRequest("GET", "/certificate/OF-3001/pdf?confidence=42.0&qrData=token-xyz", nil), 10000,
	)
	require.NoError(t, err)
	assert.Equal(t, 200, httpResp.StatusCode)

	// Malformed confidence override is a validation error.
	httpResp, err = svc.Test(httptest.NewRequest("GET", "/certificate/OF-3001/pdf?confidence=high", nil))
	require.NoError(t, err)
	assert.Equal(t, 400, httpResp.StatusCode)

	// Unknown certificates cannot be rendered.
	httpResp, err = svc.Test(httptest.NewRequest("GET", "/certificate/OF-never/pdf", nil))
	require.NoError(t, err)
	assert.Equal(t, 404, httpResp.StatusCode)
}

func TestQRImageEndpoint(t *testing.T) {
	svc, _, _ := newTestService(t)

	httpResp, err := svc.Test(httptest.NewRequest("GET", "/qr/OF-4001", nil))
	require.NoError(t, err)
	defer httpResp.Body.Close()
	require.Equal(t, 200, httpResp.StatusCode)
	assert.Equal(t, "image/png", httpResp.Header.Get("Content-Type"))
	assert.Equal(t, "public, max-age=86400", httpResp.Header.Get("Cache-Control"))
	img, err := io.ReadAll(httpResp.Body)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, []byte("\x89PNG")))
}

func TestHealthEndpoint(t *testing.T) {
	svc, _, _ := newTestService(t)

	for _, target := range []string{"/health", "/"} {
		httpResp, err := svc.Test(httptest.NewRequest("GET", target, nil))
		require.NoError(t, err)
		require.Equal(t, 200, httpResp.StatusCode)
		var health struct {
			Status    string `json:"status"`
			Service   string `json:"service"`
			Timestamp string `json:"timestamp"`
		}
		require.NoError(t, json.NewDecoder(httpResp.Body).Decode(&health))
		httpResp.Body.Close()
		assert.Equal(t, "ok", health.Status)
		assert.Equal(t, "opalforge-test", health.Service)
		_, err = time.Parse(time.RFC3339, health.Timestamp)
		assert.NoError(t, err)
	}
}

func TestEchoEndpoint(t *testing.T) {
	svc, _, kv := newTestService(t)

	resp := postJSON(t, svc, "/", `{"hello":"world"}`)
	require.Equal(t, 200, resp.status)
	var echoed map[string]string
	resp.decode(t, &echoed)
	assert.Equal(t, "world", echoed["hello"])

	// The requester must have been persisted to the key-value store.
	var rec lastRequester
	set, err := kv.GetAs(model.KeyValueScopeService, model.KeyValueKeyLastRequester, &rec)
	require.NoError(t, err)
	require.True(t, set)
	assert.JSONEq(t, `{"hello":"world"}`, string(rec.Payload))
	assert.NotEmpty(t, rec.ReceivedAt)

	resp = postJSON(t, svc, "/", `not json`)
	assert.Equal(t, 400, resp.status)
}

func TestCORSHeaders(t *testing.T) {
	svc, _, _ := newTestService(t)

	httpResp, err := svc.Test(httptest.NewRequest("GET", "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, "*", httpResp.Header.Get("Access-Control-Allow-Origin"))
}
