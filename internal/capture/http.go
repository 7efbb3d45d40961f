package capture

import (
	"bytes"
	"strings"
)

var httpMethods = []string{
	"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS", "PATCH",
	"TRACE", "CONNECT", "PROPFIND", "PROPPATCH", "MKCOL",
	"COPY", "MOVE", "LOCK", "UNLOCK",
}

// HTTPRequest is what the analyzer needs from an HTTP/1.x request.
type HTTPRequest struct {
	Host string
	// Body is nil when the request carries no bytes after the headers.
	Body []byte
}

// ParseHTTPRequest recognizes an HTTP/1.x request at the start of a TCP
// payload. Headers may be truncated; everything after the blank line is body.
func ParseHTTPRequest(data []byte) (HTTPRequest, bool) {
	var req HTTPRequest

	head, body, complete := bytes.Cut(data, []byte("\r\n\r\n"))
	lines := bytes.Split(head, []byte("\r\n"))
	if !isRequestLine(string(lines[0])) {
		return req, false
	}

	for _, line := range lines[1:] {
		name, value, ok := bytes.Cut(line, []byte(":"))
		if !ok {
			continue
		}
		if strings.EqualFold(string(bytes.TrimSpace(name)), "Host") {
			req.Host = strings.ToValidUTF8(string(bytes.TrimSpace(value)), "")
			break
		}
	}

	if complete && len(body) > 0 {
		req.Body = body
	}
	return req, true
}

// isRequestLine checks for "METHOD PATH HTTP/x.y".
func isRequestLine(line string) bool {
	for _, method := range httpMethods {
		if strings.HasPrefix(line, method+" ") {
			parts := strings.Fields(line)
			return len(parts) >= 3 && strings.HasPrefix(parts[2], "HTTP/")
		}
	}
	return false
}
