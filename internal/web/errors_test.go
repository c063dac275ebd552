package web

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/JonMunkholm/csvlens/internal/core"
	"github.com/JonMunkholm/csvlens/internal/logging"
	"github.com/go-chi/chi/v5/middleware"
)

func TestLogError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		status    int
		wantLevel string
		wantCode  string
	}{
		{"known client error", fmt.Errorf("lookup: %w", core.ErrDatasetNotFound), http.StatusNotFound, "WARN", "DS001"},
		{"known server error", core.ErrStoreFull, http.StatusServiceUnavailable, "ERROR", "DS002"},
		{"unrecognized error", errors.New("disk on fire"), http.StatusBadRequest, "ERROR", "ERR000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			prev := slog.Default()
			logging.SetupWriter(&buf, "info", "json")
			t.Cleanup(func() { slog.SetDefault(prev) })

			r := httptest.NewRequest(http.MethodGet, "/datasets/abc", nil)
			r = r.WithContext(context.WithValue(r.Context(), middleware.RequestIDKey, "req-7"))

			msg := logError(r, tt.err, tt.status)
			if msg.Code != tt.wantCode {
				t.Errorf("Code = %q, want %q", msg.Code, tt.wantCode)
			}

			var entry map[string]any
			if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
				t.Fatalf("log output %q: %v", buf.String(), err)
			}
			want := map[string]any{
				"level":      tt.wantLevel,
				"msg":        "request error",
				"request_id": "req-7",
				"path":       "/datasets/abc",
				"method":     http.MethodGet,
				"status":     float64(tt.status),
				"code":       tt.wantCode,
				"error":      tt.err.Error(),
			}
			for k, v := range want {
				if entry[k] != v {
					t.Errorf("%s = %v, want %v", k, entry[k], v)
				}
			}
		})
	}
}
