package upstream

import (
	"net/http"

	"github.com/tidwall/gjson"
)

// Verdict is the tri-state classification of one probed path.
type Verdict int

const (
	// VerdictNotFound means this path does not have the resource; probing continues.
	VerdictNotFound Verdict = iota + 1

	// VerdictConfirmed means this path answered positively; probing stops.
	VerdictConfirmed

	// VerdictInconclusive means this path answered with an unexpected status;
	// probing stops and the answer is surfaced to the caller.
	VerdictInconclusive
)

// String returns a log-friendly name for the verdict.
func (v Verdict) String() string {
	switch v {
	case VerdictNotFound:
		return "not_found"
	case VerdictConfirmed:
		return "confirmed"
	case VerdictInconclusive:
		return "inconclusive"
	default:
		return "unknown"
	}
}

// Classifier maps an upstream status and normalized payload onto a Verdict.
type Classifier func(status int, body Body) Verdict

// Confirmer decides whether a 2xx payload is a positive answer.
type Confirmer func(body Body) bool

// ClassifyWith builds the standard probe classifier:
// 404 is NotFound, 2xx is Confirmed when confirm accepts the payload and
// NotFound otherwise, and every other status is Inconclusive.
func ClassifyWith(confirm Confirmer) Classifier {
	return func(status int, body Body) Verdict {
		switch {
		case status == http.StatusNotFound:
			return VerdictNotFound
		case status >= 200 && status < 300:
			if confirm == nil || confirm(body) {
				return VerdictConfirmed
			}
			return VerdictNotFound
		default:
			return VerdictInconclusive
		}
	}
}

// AnyPayload confirms every 2xx answer. Used for identity lookup.
func AnyPayload(Body) bool {
	return true
}

// UsernameExists confirms a username lookup when the payload is boolean true,
// {"exists": true}, a non-empty array, or an object whose username equals
// the query or that carries a non-empty id or email.
func UsernameExists(username string) Confirmer {
	return func(body Body) bool {
		if !body.Structured {
			return false
		}

		result := gjson.ParseBytes(body.Raw)
		switch {
		case result.Type == gjson.True:
			return true
		case result.IsArray():
			return len(result.Array()) > 0
		case result.IsObject():
			if result.Get("exists").Type == gjson.True {
				return true
			}
			if u := result.Get("username"); u.Type == gjson.String && u.Str == username {
				return true
			}
			return truthy(result.Get("id")) || truthy(result.Get("email"))
		default:
			return false
		}
	}
}

// truthy mirrors loose truthiness for a JSON value: absent, null, false, 0
// and "" are false.
func truthy(r gjson.Result) bool {
	if !r.Exists() {
		return false
	}
	switch r.Type {
	case gjson.Null, gjson.False:
		return false
	case gjson.Number:
		return r.Num != 0
	case gjson.String:
		return r.Str != ""
	default:
		return true
	}
}
