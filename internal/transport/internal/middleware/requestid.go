package middleware

import (
	"net/http"
	"regexp"

	"github.com/google/uuid"

	"github.com/jamesprial/frontproxy/internal/transport/transportcore"
	"github.com/jamesprial/frontproxy/pkg/api"
)

// validRequestID bounds what an inbound X-Request-ID may contain before it is
// echoed and logged.
var validRequestID = regexp.MustCompile(`^[A-Za-z0-9._:-]{1,128}$`)

// NewRequestIDMiddleware creates middleware that tags every request with a
// correlation id. A well-formed inbound X-Request-ID is kept; otherwise a
// random UUID is generated. The id is stored in the request context and
// echoed on the response.
func NewRequestIDMiddleware() transportcore.Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(api.HeaderRequestID)
			if !validRequestID.MatchString(id) {
				id = uuid.NewString()
			}

			w.Header().Set(api.HeaderRequestID, id)
			next.ServeHTTP(w, r.WithContext(transportcore.ContextWithRequestID(r.Context(), id)))
		})
	}
}
