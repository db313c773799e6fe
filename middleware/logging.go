package middleware

import (
	"net/http"
	"time"

	"football-app-go/logging"
	"football-app-go/metrics"

	"github.com/gorilla/mux"
)

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

// RequestLogger logs every request and records it in the collector, labelled
// by the matched route template. collector may be nil.
func RequestLogger(collector *metrics.Collector) func(http.Handler) http.Handler {
	logger := logging.WithPrefix("HTTP")
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(rec, r)
			elapsed := time.Since(start)

			route := "unmatched"
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}
			if collector != nil {
				collector.ObserveRequest(route, r.Method, rec.status, elapsed)
			}

			line := logger.With("request_id", GetRequestID(r.Context()))
			switch {
			case rec.status >= 500:
				line.Errorf("%s %s %d %s", r.Method, r.URL.Path, rec.status, elapsed)
			case rec.status >= 400:
				line.Warnf("%s %s %d %s", r.Method, r.URL.Path, rec.status, elapsed)
			default:
				line.Debugf("%s %s %d %s", r.Method, r.URL.Path, rec.status, elapsed)
			}
		})
	}
}
