package capture

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseHTTPRequest(t *testing.T) {
	cases := []struct {
		name string
		data string
		ok   bool
		host string
		body string
	}{
		{"get", "GET /index.html HTTP/1.1\r\nHost: example.com\r\nAccept: */*\r\n\r\n", true, "example.com", ""},
		{"host case", "GET / HTTP/1.0\r\nhost:  example.net \r\n\r\n", true, "example.net", ""},
		{"body", "POST /api HTTP/1.1\r\nHost: api.example\r\n\r\n{\"a\":1}", true, "api.example", "{\"a\":1}"},
		{"truncated headers", "GET / HTTP/1.1\r\nHost: partial.example\r\nCookie: x", true, "partial.example", ""},
		{"no host", "GET / HTTP/1.1\r\nAccept: */*\r\n\r\n", true, "", ""},
		{"response", "HTTP/1.1 200 OK\r\nServer: x\r\n\r\n", false, "", ""},
		{"not http", "USER anonymous\r\n", false, "", ""},
		{"method without version", "GET something\r\n", false, "", ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			req, ok := ParseHTTPRequest([]byte(c.data))
			assert.Equal(t, c.ok, ok)
			assert.Equal(t, c.host, req.Host)
			assert.Equal(t, c.body, string(req.Body))
		})
	}
}
