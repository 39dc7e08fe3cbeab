package middleware

import (
	"fmt"
	"net/http"

	"github.com/klauspost/compress/gzhttp"
	"github.com/klauspost/compress/gzip"

	"github.com/jamesprial/frontproxy/internal/transport/transportcore"
)

// compressionMinSize is the smallest response body worth compressing.
const compressionMinSize = 1024

// NewCompressionMiddleware creates middleware that gzips responses for
// clients that accept it. Bodies under compressionMinSize are sent as is.
func NewCompressionMiddleware() (transportcore.Middleware, error) {
	wrap, err := gzhttp.NewWrapper(
		gzhttp.MinSize(compressionMinSize),
		gzhttp.CompressionLevel(gzip.DefaultCompression),
	)
	if err != nil {
		return nil, fmt.Errorf("creating gzip wrapper: %w", err)
	}

	return func(next http.Handler) http.Handler {
		return wrap(next)
	}, nil
}
