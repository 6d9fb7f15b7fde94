package middlewares

import (
	"net/http"
	"time"

	"github.com/Rakhulsr/go-blog/app/helpers"
	"github.com/sirupsen/logrus"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

func RequestLogger(log *logrus.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)

			entry := log.WithFields(logrus.Fields{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   rec.status,
				"duration": time.Since(start).String(),
			})
			if userID := helpers.CurrentUserID(r); userID != "" {
				entry = entry.WithField("user_id", userID)
			}
			switch {
			case rec.status >= 500:
				entry.Error("request")
			case rec.status >= 400:
				entry.Warn("request")
			default:
				entry.Info("request")
			}
		})
	}
}
