package oauth2

import (
	"net/url"
	"strings"
)

// Params is a flat mapping of token request field names to values.
type Params map[string]string

// Encode serializes the parameters into a form-urlencoded request body.
// Keys are sorted, so the encoding is deterministic.
func (p Params) Encode() string {
	values := make(url.Values, len(p))
	for name, value := range p {
		values.Set(name, value)
	}
	return values.Encode()
}

// Reader returns the encoded body as a reader suitable for http.NewRequest.
func (p Params) Reader() *strings.Reader {
	return strings.NewReader(p.Encode())
}
