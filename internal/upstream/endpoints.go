package upstream

import (
	"net/url"
	"strings"
)

// Candidate identity-lookup paths, in probe order.
var IdentityPaths = []string{"/user", "/auth/me", "/auth/user", "/me", "/profile"}

// Candidate username-lookup path prefixes, in probe order. The URL-encoded
// username is appended to each.
var UsernameLookupPaths = []string{
	"/users?username=",
	"/user?username=",
	"/auth/check?username=",
	"/auth/users?username=",
	"/auth/find?username=",
}

// Fixed, non-probed backend paths.
const (
	PathLogin     = "/auth/login"
	PathRegister  = "/auth/register"
	PathUsers     = "/users"
	PathPositions = "/positions"
)

// Endpoints are the candidate path sets in effect for probed operations.
type Endpoints struct {
	Identity       []string
	UsernameLookup []string
}

// ResolveEndpoints picks the path sets for probed operations.
//
// A pinned path always wins and yields a single candidate. Without one, the
// full heuristic list is used when probing is enabled; with probing disabled
// only the first, canonical candidate is tried.
func ResolveEndpoints(probing bool, identityPath, usernameLookupPath string) Endpoints {
	return Endpoints{
		Identity:       resolve(probing, identityPath, IdentityPaths),
		UsernameLookup: resolve(probing, usernameLookupPath, UsernameLookupPaths),
	}
}

func resolve(probing bool, pinned string, candidates []string) []string {
	if pinned != "" {
		return []string{pinned}
	}
	if !probing {
		return []string{candidates[0]}
	}
	return append([]string(nil), candidates...)
}

// UsernameQuery appends the encoded username to each lookup prefix.
func UsernameQuery(prefixes []string, username string) []string {
	escaped := EncodeURIComponent(username)
	paths := make([]string, len(prefixes))
	for i, prefix := range prefixes {
		paths[i] = prefix + escaped
	}
	return paths
}

// EncodeURIComponent escapes s for use as a query value, encoding spaces as
// %20 rather than '+'.
func EncodeURIComponent(s string) string {
	return strings.ReplaceAll(url.QueryEscape(s), "+", "%20")
}

// PositionPath returns the backend path for a single position.
func PositionPath(id string) string {
	return PathPositions + "/" + url.PathEscape(id)
}
