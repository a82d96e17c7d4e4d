package logger

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/iurnickita/bizledger/internal/logger/config"
)

func TestNewZapLog(t *testing.T) {
	zl, err := NewZapLog(config.Config{LogLevel: "debug"})
	require.NoError(t, err)
	require.True(t, zl.Core().Enabled(zapcore.DebugLevel))

	zl, err = NewZapLog(config.Config{})
	require.NoError(t, err)
	require.False(t, zl.Core().Enabled(zapcore.DebugLevel))

	_, err = NewZapLog(config.Config{LogLevel: "loud"})
	require.Error(t, err)
}

func TestRequestLogMdlw(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	h := RequestLogMdlw(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
	}, zap.New(core))

	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, "/api/invoices/1/payments", strings.NewReader(`{"amount":1}`)))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	entries := logs.All()
	require.Len(t, entries, 2)
	require.Equal(t, "got incoming HTTP request", entries[0].Message)
	require.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	require.EqualValues(t, http.StatusServiceUnavailable, entries[1].ContextMap()["code"])
}

func TestRequestLogMdlwBodyLimit(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	called := false
	h := RequestLogMdlw(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}, zap.New(core))

	body := strings.Repeat("x", maxRequestBody+1)
	w := httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, "/api/invoices", strings.NewReader(body)))

	require.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
	require.False(t, called)
	require.Equal(t, 1, logs.FilterMessage("request body too large").Len())

	// exactly at the limit is still served
	w = httptest.NewRecorder()
	h(w, httptest.NewRequest(http.MethodPost, "/api/invoices", strings.NewReader(body[1:])))
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, called)
}
