package server

import (
	"bytes"
	"net/http"
)

// maxAuditBody caps how much of a response body is kept for the audit entry.
const maxAuditBody = 4 << 10

type responseRecorder struct {
	http.ResponseWriter
	statusCode  int
	wroteHeader bool
	body        bytes.Buffer
	truncated   bool
}

func newResponseRecorder(w http.ResponseWriter) *responseRecorder {
	return &responseRecorder{
		ResponseWriter: w,
		statusCode:     http.StatusOK,
	}
}

func (w *responseRecorder) WriteHeader(statusCode int) {
	if w.wroteHeader {
		return
	}
	w.wroteHeader = true
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (w *responseRecorder) Write(b []byte) (int, error) {
	w.wroteHeader = true
	if room := maxAuditBody - w.body.Len(); room > 0 {
		if len(b) > room {
			w.body.Write(b[:room])
			w.truncated = true
		} else {
			w.body.Write(b)
		}
	} else if len(b) > 0 {
		w.truncated = true
	}
	return w.ResponseWriter.Write(b)
}

func (w *responseRecorder) StatusCode() int {
	return w.statusCode
}

func (w *responseRecorder) Body() string {
	if w.truncated {
		return w.body.String() + "...(truncated)"
	}
	return w.body.String()
}
