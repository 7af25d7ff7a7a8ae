package http

import (
	"errors"
	"strings"
)

// Method constants for HTTP requests.
const (
	MethodGet    = "GET"
	MethodPost   = "POST"
	MethodPut    = "PUT"
	MethodDelete = "DELETE"
)

// Status codes the server can emit.
const (
	StatusOK                   = 200
	StatusCreated              = 201
	StatusNoContent            = 204
	StatusBadRequest           = 400
	StatusNotFound             = 404
	StatusUnsupportedMediaType = 415
	StatusInternalServerError  = 500
	StatusNotImplemented       = 501
)

// ProtocolHTTP11 is the version written on every status line.
const ProtocolHTTP11 = "HTTP/1.1"

// Header names the framer and dispatcher look at.
const (
	HeaderContentLength = "Content-Length"
	HeaderContentType   = "Content-Type"
	HeaderUserAgent     = "User-Agent"
)

// ContentHeaderPrefix is shared by all entity headers.
const ContentHeaderPrefix = "Content-"

const crlf = "\r\n"

// Header maps header names to values. Names are kept exactly as they appeared
// on the wire; a repeated name keeps the last value.
type Header map[string]string

// Get returns the value for key, or "" if absent.
func (h Header) Get(key string) string {
	if h == nil {
		return ""
	}
	return h[key]
}

// Lookup returns the value for key and whether it was present.
func (h Header) Lookup(key string) (string, bool) {
	if h == nil {
		return "", false
	}
	v, ok := h[key]
	return v, ok
}

// Set sets the header value, replacing any existing value.
func (h Header) Set(key, value string) {
	if h == nil {
		return
	}
	h[key] = value
}

// Del removes the key.
func (h Header) Del(key string) {
	delete(h, key)
}

// Clone returns a copy of the header.
func (h Header) Clone() Header {
	if h == nil {
		return nil
	}
	clone := make(Header, len(h))
	for k, v := range h {
		clone[k] = v
	}
	return clone
}

// ContentHeaders returns the names of all headers starting with "Content-".
func (h Header) ContentHeaders() []string {
	var names []string
	for k := range h {
		if strings.HasPrefix(k, ContentHeaderPrefix) {
			names = append(names, k)
		}
	}
	return names
}

// ProtocolError is returned for any request that cannot be framed.
type ProtocolError struct {
	Message string
	Err     error
}

func (e *ProtocolError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *ProtocolError) Unwrap() error {
	return e.Err
}

// Errors returned while constructing a response. Both indicate a bug in the
// caller rather than a bad request.
var (
	ErrUnknownStatus = errors.New("http: unknown status code")
	ErrNonASCII      = errors.New("http: non-ASCII text in status line or header")
)

// isASCII reports whether s is pure 7-bit ASCII.
func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

// isTokenChar returns true if the byte is a valid token character.
func isTokenChar(c byte) bool {
	return c < 0x80 && tokenChars[c]
}

// tokenChars is a lookup table for valid HTTP token characters.
var tokenChars = [256]bool{
	'!': true, '#': true, '$': true, '%': true, '&': true,
	'\'': true, '*': true, '+': true, '-': true, '.': true,
	'^': true, '_': true, '`': true, '|': true, '~': true,
	'0': true, '1': true, '2': true, '3': true, '4': true,
	'5': true, '6': true, '7': true, '8': true, '9': true,
	'A': true, 'B': true, 'C': true, 'D': true, 'E': true,
	'F': true, 'G': true, 'H': true, 'I': true, 'J': true,
	'K': true, 'L': true, 'M': true, 'N': true, 'O': true,
	'P': true, 'Q': true, 'R': true, 'S': true, 'T': true,
	'U': true, 'V': true, 'W': true, 'X': true, 'Y': true,
	'Z': true, 'a': true, 'b': true, 'c': true, 'd': true,
	'e': true, 'f': true, 'g': true, 'h': true, 'i': true,
	'j': true, 'k': true, 'l': true, 'm': true, 'n': true,
	'o': true, 'p': true, 'q': true, 'r': true, 's': true,
	't': true, 'u': true, 'v': true, 'w': true, 'x': true,
	'y': true, 'z': true,
}

// isToken checks that s is a non-empty HTTP token.
func isToken(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if !isTokenChar(s[i]) {
			return false
		}
	}
	return true
}
