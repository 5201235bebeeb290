package middleware

import (
	"net/http"

	"github.com/uber-go/tally"
)

// Counter counts hits per HTTP method under the given scope.
func Counter(stats tally.Scope) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		middlewarefn := func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r)
			stats.SubScope(r.Method).Counter("requests").Inc(1)
		}
		return http.HandlerFunc(middlewarefn)
	}
}
