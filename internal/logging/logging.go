// Package logging configures the process-wide zerolog logger and provides
// the HTTP access log middleware.
package logging

import (
	"context"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// logger fields
const (
	PKG      = "pkg"
	EVENT    = "event"
	USER_ID  = "user_id"
	REQ_ID   = "req_id"
	FORM_ID  = "form_id"
	OBJECT   = "object"
	STATUS   = "status"
	DURATION = "duration"
)

func init() {
	zerolog.TimeFieldFormat = time.RFC3339Nano
}

// Setup replaces the global logger. format is "json" or "console".
func Setup(level, format string) {
	Configure(os.Stderr, level, format)
}

// Configure is Setup with an explicit writer.
func Configure(w io.Writer, level, format string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(level))
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if format == "console" {
		w = zerolog.ConsoleWriter{Out: w, TimeFormat: time.RFC3339}
	}
	log.Logger = zerolog.New(w).With().Timestamp().Logger()
}

// NewPackageLogger returns the global logger tagged with pkg=name.
func NewPackageLogger(name string) zerolog.Logger {
	return log.With().Str(PKG, name).Logger()
}

type slotKey struct{}

// SetUserID records the authenticated user for the access log line. It is a
// no-op outside RequestLogger.
func SetUserID(ctx context.Context, userID string) {
	if slot, ok := ctx.Value(slotKey{}).(*string); ok {
		*slot = userID
	}
}

// RequestLogger logs one line per request. It must run after
// chimw.RequestID so the request id is available.
func RequestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

		var userID string
		next.ServeHTTP(ww, r.WithContext(context.WithValue(r.Context(), slotKey{}, &userID)))

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		ev := log.Info()
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		}
		ev = ev.Str(REQ_ID, chimw.GetReqID(r.Context())).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int(STATUS, status).
			Int("bytes", ww.BytesWritten()).
			Dur(DURATION, time.Since(start))
		if userID != "" {
			ev = ev.Str(USER_ID, userID)
		}
		ev.Msg("request")
	})
}
