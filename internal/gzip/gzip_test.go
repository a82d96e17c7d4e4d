package gzip

import (
	"bytes"
	"compress/gzip"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func echo(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	w.WriteHeader(http.StatusOK)
	w.Write(body)
}

func TestGzipMiddleware(t *testing.T) {
	h := GzipMiddleware(echo)
	payload := []byte(`{"amount":130,"mode":"Cash"}`)

	var compressed bytes.Buffer
	zw := gzip.NewWriter(&compressed)
	_, err := zw.Write(payload)
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	t.Run("compressed both ways", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(compressed.Bytes()))
		r.Header.Set("Content-Encoding", "gzip")
		r.Header.Set("Accept-Encoding", "gzip")
		w := httptest.NewRecorder()
		h(w, r)

		require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
		zr, err := gzip.NewReader(w.Body)
		require.NoError(t, err)
		body, err := io.ReadAll(zr)
		require.NoError(t, err)
		require.Equal(t, payload, body)
	})

	t.Run("plain", func(t *testing.T) {
		w := httptest.NewRecorder()
		h(w, httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(payload)))
		require.Empty(t, w.Header().Get("Content-Encoding"))
		require.Equal(t, payload, w.Body.Bytes())
	})

	t.Run("broken gzip body", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodPost, "/", bytes.NewReader(payload))
		r.Header.Set("Content-Encoding", "gzip")
		w := httptest.NewRecorder()
		h(w, r)
		require.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("error response compressed", func(t *testing.T) {
		notFound := GzipMiddleware(func(w http.ResponseWriter, r *http.Request) {
			http.Error(w, "invoice not found", http.StatusNotFound)
		})
		r := httptest.NewRequest(http.MethodGet, "/api/invoices/missing", nil)
		r.Header.Set("Accept-Encoding", "gzip")
		w := httptest.NewRecorder()
		notFound(w, r)

		require.Equal(t, http.StatusNotFound, w.Code)
		require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
		zr, err := gzip.NewReader(w.Body)
		require.NoError(t, err)
		body, err := io.ReadAll(zr)
		require.NoError(t, err)
		require.Equal(t, "invoice not found\n", string(body))
	})

	t.Run("implicit ok", func(t *testing.T) {
		implicit := GzipMiddleware(func(w http.ResponseWriter, r *http.Request) {
			w.Write(payload)
		})
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Accept-Encoding", "gzip")
		w := httptest.NewRecorder()
		implicit(w, r)

		require.Equal(t, http.StatusOK, w.Code)
		require.Equal(t, "gzip", w.Header().Get("Content-Encoding"))
		zr, err := gzip.NewReader(w.Body)
		require.NoError(t, err)
		body, err := io.ReadAll(zr)
		require.NoError(t, err)
		require.Equal(t, payload, body)
	})
}
