package upstream

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// UntrustedIdentity is a username recovered from an unverified token payload.
//
// The signature is never checked. The value is display data for a degraded
// session and must never drive an authorization decision. It deliberately
// shares no type with any verified identity.
type UntrustedIdentity struct {
	// Username is the recovered display name.
	Username string

	// Claim names the payload field it came from: "username", "sub" or "email".
	Claim string
}

// identityClaims are read in priority order.
var identityClaims = []string{"username", "sub", "email"}

// DecodeFallbackIdentity recovers a display identity from a bearer token.
// A numeric claim such as {"sub": 42} yields its digits.
//
// authorization may be a full "Bearer <token>" header or a bare token. The
// token must have exactly three dot-separated segments; the middle one is
// base64-decoded and parsed as JSON. Any structural failure yields false.
func DecodeFallbackIdentity(authorization string) (UntrustedIdentity, bool) {
	token := bearerToken(authorization)
	if token == "" {
		return UntrustedIdentity{}, false
	}

	parts := strings.Split(token, ".")
	if len(parts) != 3 {
		return UntrustedIdentity{}, false
	}

	payload, err := decodeSegment(parts[1])
	if err != nil {
		return UntrustedIdentity{}, false
	}

	var claims jwt.MapClaims
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	if err := dec.Decode(&claims); err != nil {
		return UntrustedIdentity{}, false
	}

	for _, name := range identityClaims {
		if value, ok := claimText(claims[name]); ok {
			return UntrustedIdentity{Username: value, Claim: name}, true
		}
	}
	return UntrustedIdentity{}, false
}

// claimText renders a non-empty string or non-zero number claim. Numbers
// keep their original digits.
func claimText(v any) (string, bool) {
	switch c := v.(type) {
	case string:
		return c, c != ""
	case json.Number:
		if f, err := c.Float64(); err != nil || f == 0 {
			return "", false
		}
		return c.String(), true
	default:
		return "", false
	}
}

// decodeSegment accepts base64url (the JWT encoding, padded or not) and falls
// back to the standard alphabet, which some issuers emit.
func decodeSegment(seg string) ([]byte, error) {
	parser := jwt.NewParser(jwt.WithPaddingAllowed())
	if b, err := parser.DecodeSegment(seg); err == nil {
		return b, nil
	}
	if b, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(seg, "=")); err == nil {
		return b, nil
	}
	return base64.StdEncoding.DecodeString(seg)
}
