package upstream

import (
	"bytes"
	"encoding/json"
)

// Body is a normalized upstream payload: structured JSON when the bytes
// parse, otherwise an opaque string. Raw always holds the original bytes.
type Body struct {
	Raw        []byte
	Value      any
	Structured bool
}

// Normalize parses raw as JSON, keeping numbers as json.Number.
// A body that is not valid JSON, including an empty one, degrades to an
// opaque string value. Normalize never fails.
func Normalize(raw []byte) Body {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) > 0 && json.Valid(trimmed) {
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		var v any
		if err := dec.Decode(&v); err == nil {
			return Body{Raw: raw, Value: v, Structured: true}
		}
	}
	return Body{Raw: raw, Value: string(raw), Structured: false}
}

// Text returns the body as a string.
func (b Body) Text() string {
	return string(b.Raw)
}

// MarshalJSON writes structured bodies as their original JSON and opaque
// bodies as a JSON string. HTML characters in opaque text are kept literal.
func (b Body) MarshalJSON() ([]byte, error) {
	if b.Structured {
		return bytes.TrimSpace(b.Raw), nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(string(b.Raw)); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}
