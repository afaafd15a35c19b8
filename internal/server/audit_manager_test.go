package server

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestAuditManager(t *testing.T) {
	t.Run("flushes partial batch on shutdown", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		m := NewAuditManager(2, 10, time.Hour, zap.New(core))
		m.Start()

		for _, id := range []string{"p1", "p2", "p3"} {
			m.LogEntry(context.Background(), AuditLogEntry{Method: "PUT", ParcelID: id, StatusCode: 200})
		}
		m.Shutdown(context.Background())

		entries := logs.FilterMessage("Audit entry").All()
		require.Len(t, entries, 3)
		assert.Zero(t, m.Pending())
	})

	t.Run("full batch is written without waiting for the timeout", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		m := NewAuditManager(1, 2, time.Hour, zap.New(core))
		m.Start()
		defer m.Shutdown(context.Background())

		m.LogEntry(context.Background(), AuditLogEntry{ParcelID: "p1"})
		m.LogEntry(context.Background(), AuditLogEntry{ParcelID: "p2"})

		assert.Eventually(t, func() bool {
			return logs.FilterMessage("Audit entry").Len() == 2
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("entries after shutdown are written directly", func(t *testing.T) {
		core, logs := observer.New(zapcore.InfoLevel)
		m := NewAuditManager(1, 10, time.Hour, zap.New(core))
		m.Start()
		m.Shutdown(context.Background())

		m.LogEntry(context.Background(), AuditLogEntry{ParcelID: "late", OldStatus: "Created", NewStatus: "Picked Up"})

		entries := logs.FilterMessage("Audit entry").All()
		require.Len(t, entries, 1)
		assert.Equal(t, "direct", entries[0].ContextMap()["source"])
		audit, ok := entries[0].ContextMap()["audit"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "late", audit["parcel_id"])
		assert.Equal(t, "Picked Up", audit["new_status"])
	})
}

func TestResponseRecorder(t *testing.T) {
	rr := httptest.NewRecorder()
	rec := newResponseRecorder(rr)

	rec.WriteHeader(http.StatusCreated)
	rec.WriteHeader(http.StatusInternalServerError)
	_, err := rec.Write(bytes.Repeat([]byte("a"), maxAuditBody+10))
	require.NoError(t, err)

	assert.Equal(t, http.StatusCreated, rec.StatusCode())
	assert.Equal(t, http.StatusCreated, rr.Code)
	assert.Len(t, rr.Body.Bytes(), maxAuditBody+10)
	assert.True(t, strings.HasSuffix(rec.Body(), "...(truncated)"))
	assert.Len(t, rec.Body(), maxAuditBody+len("...(truncated)"))
}
