package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/prop-evaluator/internal/access"
)

// Request headers carrying the caller identity, and the response header
// reporting the caller's remaining quota.
const (
	HeaderSubjectID      = "X-Subject-ID"
	HeaderSubjectTier    = "X-Subject-Tier"
	HeaderQuotaRemaining = "X-Quota-Remaining"
)

func subjectContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := access.WithSubject(r.Context(), access.Subject{
			ID:   r.Header.Get(HeaderSubjectID),
			Tier: r.Header.Get(HeaderSubjectTier),
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) quota(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		subject, _ := access.SubjectFrom(r.Context())
		d := s.deps.Quota.Check(r.Context(), subject)
		if d.Remaining >= 0 {
			w.Header().Set(HeaderQuotaRemaining, strconv.Itoa(d.Remaining))
		}
		if !d.Allowed {
			none := 0
			w.Header().Set(HeaderQuotaRemaining, "0")
			writeJSON(w, http.StatusTooManyRequests, errorResponse{
				Error:     "quota exceeded",
				Remaining: &none,
			})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		s.logger.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      ww.Status(),
			"bytes":       ww.BytesWritten(),
			"duration_ms": float64(time.Since(start).Microseconds()) / 1000,
			"request_id":  middleware.GetReqID(r.Context()),
		}).Debug("HTTP request")
	})
}
