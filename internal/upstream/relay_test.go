package upstream

import (
	"net/http"
	"slices"
	"testing"
)

func TestRelayIn(t *testing.T) {
	t.Parallel()

	inbound := http.Header{}
	inbound.Set("Authorization", "Bearer abc")
	inbound.Set("Cookie", "sid=1; theme=dark")
	inbound.Set("Content-Type", "application/json")
	inbound.Set("Accept", "application/json")
	inbound.Set("Host", "proxy.example.com")
	inbound.Set("X-Forwarded-For", "10.0.0.1")
	inbound.Set("Origin", "https://app.example.com")

	out := RelayIn(inbound)

	for _, name := range []string{"Authorization", "Cookie", "Content-Type", "Accept"} {
		if out.Get(name) != inbound.Get(name) {
			t.Errorf("RelayIn() %s = %q, want %q", name, out.Get(name), inbound.Get(name))
		}
	}
	for _, name := range []string{"Host", "X-Forwarded-For", "Origin"} {
		if out.Get(name) != "" {
			t.Errorf("RelayIn() forwarded %s, want it dropped", name)
		}
	}

	out.Set("Authorization", "changed")
	if inbound.Get("Authorization") != "Bearer abc" {
		t.Error("RelayIn() must not alias the inbound header")
	}
}

func TestRelayIn_Empty(t *testing.T) {
	t.Parallel()

	if out := RelayIn(http.Header{}); len(out) != 0 {
		t.Errorf("RelayIn(empty) = %v, want no headers", out)
	}
}

func TestRelayOut_PreservesSetCookieBytes(t *testing.T) {
	t.Parallel()

	cookies := []string{
		"sid=abc123; Path=/; HttpOnly; Secure; SameSite=None; Max-Age=3600",
		"refresh=xyz; Path=/auth; HttpOnly; Secure; SameSite=None; Expires=Wed, 21 Oct 2026 07:28:00 GMT",
	}
	upstream := http.Header{}
	for _, c := range cookies {
		upstream.Add("Set-Cookie", c)
	}
	upstream.Set("Content-Type", "application/json; charset=utf-8")
	upstream.Set("X-Powered-By", "Express")

	dst := http.Header{}
	RelayOut(upstream, dst)

	if got := dst.Values("Set-Cookie"); !slices.Equal(got, cookies) {
		t.Errorf("Set-Cookie = %q, want %q", got, cookies)
	}
	if got := dst.Get("Content-Type"); got != "application/json; charset=utf-8" {
		t.Errorf("Content-Type = %q", got)
	}
	if dst.Get("X-Powered-By") != "" {
		t.Error("RelayOut() copied a header outside the relay set")
	}
}

func TestRelayOut_NoHeaders(t *testing.T) {
	t.Parallel()

	dst := http.Header{}
	RelayOut(http.Header{}, dst)
	if len(dst) != 0 {
		t.Errorf("RelayOut() added headers %v", dst)
	}
}

func TestCredentials(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		header      http.Header
		wantPresent bool
		wantToken   string
	}{
		{name: "none", header: http.Header{}, wantPresent: false, wantToken: ""},
		{name: "bearer", header: http.Header{"Authorization": {"Bearer abc.def.ghi"}}, wantPresent: true, wantToken: "abc.def.ghi"},
		{name: "lowercase scheme", header: http.Header{"Authorization": {"bearer tok"}}, wantPresent: true, wantToken: "tok"},
		{name: "bare token", header: http.Header{"Authorization": {"tok"}}, wantPresent: true, wantToken: "tok"},
		{name: "cookie is not a forwarded credential", header: http.Header{"Cookie": {"sid=1"}}, wantPresent: false, wantToken: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			creds := CredentialsFrom(tt.header)
			if creds.Present() != tt.wantPresent {
				t.Errorf("Present() = %v, want %v", creds.Present(), tt.wantPresent)
			}
			if creds.BearerToken() != tt.wantToken {
				t.Errorf("BearerToken() = %q, want %q", creds.BearerToken(), tt.wantToken)
			}

			out := creds.Header()
			if len(out) > 1 || out.Get("Cookie") != "" {
				t.Errorf("Header() = %v, want Authorization only", out)
			}
			if got := out.Get("Authorization"); got != tt.header.Get("Authorization") {
				t.Errorf("Header() Authorization = %q, want %q", got, tt.header.Get("Authorization"))
			}
		})
	}
}
