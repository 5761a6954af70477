package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rishmeh/bhookh/pkg/logger"
	"github.com/sirupsen/logrus"
)

// LoggingMiddleware tags every request with a generated ID and logs the
// method, path and duration once the handler returns.
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		start := time.Now()

		next.ServeHTTP(w, r)

		logger.Log.WithFields(logrus.Fields{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"duration":   time.Since(start).String(),
		}).Info("Request handled")
	})
}
