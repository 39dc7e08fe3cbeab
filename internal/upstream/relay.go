package upstream

import (
	"net/http"
	"strings"

	"github.com/jamesprial/frontproxy/pkg/api"
)

// forwardHeaders is the fixed allow-list of inbound headers sent upstream.
var forwardHeaders = []string{
	api.HeaderAuthorization,
	api.HeaderCookie,
	api.HeaderContentType,
	api.HeaderAccept,
}

// RelayIn copies the allow-listed headers from an inbound request into a new
// header set for the outbound request. Every other header is dropped.
func RelayIn(inbound http.Header) http.Header {
	out := make(http.Header, len(forwardHeaders))
	for _, name := range forwardHeaders {
		if values := inbound.Values(name); len(values) > 0 {
			out[http.CanonicalHeaderKey(name)] = append([]string(nil), values...)
		}
	}
	return out
}

// RelayOut copies Set-Cookie and Content-Type from an upstream response onto
// dst exactly as received. Every Set-Cookie value is kept, in order, so
// attributes such as Secure and SameSite survive the hop.
func RelayOut(upstream, dst http.Header) {
	if cookies := upstream.Values(api.HeaderSetCookie); len(cookies) > 0 {
		dst[http.CanonicalHeaderKey(api.HeaderSetCookie)] = append([]string(nil), cookies...)
	}
	if ct := upstream.Get(api.HeaderContentType); ct != "" {
		dst.Set(api.HeaderContentType, ct)
	}
}

// Credentials are the caller's relayed authentication state. Cookies travel
// only through RelayIn; routes that forward credentials alone send the
// Authorization header.
type Credentials struct {
	// Authorization is the raw inbound Authorization header value.
	Authorization string
}

// CredentialsFrom extracts relayed credentials from inbound headers.
func CredentialsFrom(h http.Header) Credentials {
	return Credentials{
		Authorization: strings.TrimSpace(h.Get(api.HeaderAuthorization)),
	}
}

// Present reports whether any credential was supplied.
func (c Credentials) Present() bool {
	return c.Authorization != ""
}

// Header returns a fresh outbound header carrying only the Authorization
// value, or an empty header when none was supplied.
func (c Credentials) Header() http.Header {
	h := make(http.Header)
	if c.Present() {
		h.Set(api.HeaderAuthorization, c.Authorization)
	}
	return h
}

// BearerToken returns the token from an Authorization header of the form
// "Bearer <token>" (scheme is case-insensitive). A header without the scheme
// is returned as-is.
func (c Credentials) BearerToken() string {
	return bearerToken(c.Authorization)
}

func bearerToken(header string) string {
	header = strings.TrimSpace(header)
	scheme, rest, ok := strings.Cut(header, " ")
	if ok && strings.EqualFold(scheme, api.BearerToken) {
		return strings.TrimSpace(rest)
	}
	return header
}
