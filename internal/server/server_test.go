package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verte-zerg/readability/internal/lang"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	s := New(lang.Default(), Config{AllowedOrigins: []string{"https://example.org"}}, zerolog.Nop())
	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return ts
}

func postMeasure(t *testing.T, ts *httptest.Server, body string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Post(ts.URL+"/api/measure", "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, data
}

func TestMeasureLinesEndpoint(t *testing.T) {
	var logs bytes.Buffer
	s := New(lang.Default(), Config{}, zerolog.New(&logs))
	req := httptest.NewRequest(http.MethodPost, "/api/measure",
		strings.NewReader(`{"text":"A tokenized sentence .\nAnother sentence .","lang":"en","lines":true}`))
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	data := rec.Body.Bytes()

	var decoded map[string]map[string]float64
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 5.0, decoded["sentence info"]["words"])
	assert.Equal(t, 2.0, decoded["sentence info"]["sentences"])
	assert.True(t, strings.HasPrefix(string(data), `{"readability grades":{"Kincaid":`))

	assert.Contains(t, logs.String(), `"path":"/api/measure"`)
	assert.Contains(t, logs.String(), `"status":200`)
}

func TestMeasureMergedDefaultsLanguage(t *testing.T) {
	ts := newTestServer(t)
	resp, data := postMeasure(t, ts, `{"text":"One paragraph .\n\nTwo paragraphs .","merge":true}`)
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data))

	var flat map[string]float64
	require.NoError(t, json.Unmarshal(data, &flat))
	assert.Equal(t, 2.0, flat["paragraphs"])
	assert.Contains(t, flat, "LIX")
}

func TestMeasureErrors(t *testing.T) {
	ts := newTestServer(t)
	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"malformed json", `{"text":`, http.StatusBadRequest},
		{"empty text", `{"text":"","lang":"en"}`, http.StatusBadRequest},
		{"blank lines", `{"text":"\n\n","lang":"en","lines":true}`, http.StatusBadRequest},
		{"unknown language", `{"text":"Hello .","lang":"xx"}`, http.StatusNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, data := postMeasure(t, ts, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)
			var body errorResponse
			require.NoError(t, json.Unmarshal(data, &body))
			assert.NotEmpty(t, body.Error)
		})
	}

	resp, err := http.Get(ts.URL + "/api/measure")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestMeasureMergeCollisionIsUnprocessable(t *testing.T) {
	custom, err := lang.NewProfile("clash", lang.EnglishSyllables, []lang.Classifier{
		lang.MustPattern("words", `(?i)\bword\b`),
	}, nil)
	require.NoError(t, err)
	reg, err := lang.Default().With(custom)
	require.NoError(t, err)
	s := New(reg, Config{}, zerolog.Nop())

	for _, tc := range []struct {
		merge  bool
		status int
	}{
		{false, http.StatusOK},
		{true, http.StatusUnprocessableEntity},
	} {
		body, err := json.Marshal(map[string]any{"text": "One word here .", "lang": "clash", "merge": tc.merge})
		require.NoError(t, err)
		rec := httptest.NewRecorder()
		s.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/measure", bytes.NewReader(body)))
		assert.Equal(t, tc.status, rec.Code, rec.Body.String())
	}
}

func TestMeasureLinesAcceptsVeryLongLine(t *testing.T) {
	ts := newTestServer(t)
	body, err := json.Marshal(map[string]any{"text": strings.Repeat("word ", 300000) + ".", "lang": "en", "lines": true})
	require.NoError(t, err)
	resp, data := postMeasure(t, ts, string(body))
	require.Equal(t, http.StatusOK, resp.StatusCode, string(data[:min(len(data), 200)]))

	var decoded map[string]map[string]float64
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, 300000.0, decoded["sentence info"]["words"])
}

func TestLanguagesAndHealth(t *testing.T) {
	ts := newTestServer(t)
	resp, err := http.Get(ts.URL + "/api/languages")
	require.NoError(t, err)
	defer resp.Body.Close()
	var body languagesResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, []string{"de", "en", "nl"}, body.Languages)

	health, err := http.Get(ts.URL + "/healthz")
	require.NoError(t, err)
	health.Body.Close()
	assert.Equal(t, http.StatusOK, health.StatusCode)
}

func TestCORSPreflight(t *testing.T) {
	ts := newTestServer(t)
	req, err := http.NewRequest(http.MethodOptions, ts.URL+"/api/measure", nil)
	require.NoError(t, err)
	req.Header.Set("Origin", "https://example.org")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "https://example.org", resp.Header.Get("Access-Control-Allow-Origin"))

	req.Header.Set("Origin", "https://evil.example")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Empty(t, resp.Header.Get("Access-Control-Allow-Origin"))
}

func TestListenAndServeStopsOnCancel(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := l.Addr().String()
	require.NoError(t, l.Close())

	s := New(lang.Default(), Config{Addr: addr}, zerolog.Nop())
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatalf("server did not stop")
	}
}
