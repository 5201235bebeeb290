package middleware

import (
	"net/http"
	"time"

	"github.com/uber-go/tally"
)

// ElapsedTimer records request latency per HTTP method under the given
// scope.
func ElapsedTimer(stats tally.Scope) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		middlewarefn := func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			stats.SubScope(r.Method).Timer("request_time").Record(time.Since(start))
		}
		return http.HandlerFunc(middlewarefn)
	}
}
