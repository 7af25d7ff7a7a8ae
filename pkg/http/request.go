package http

import (
	"bufio"
	"bytes"
	"errors"
	"io"
	"strconv"
	"strings"
)

// Request is one parsed HTTP request. Target is the raw request-target from
// the request line; it is never decoded or normalized.
type Request struct {
	Method string
	Target string
	Proto  string
	Header Header

	// Body is nil when the request carried no Content-Length header, and
	// exactly Content-Length bytes long otherwise.
	Body []byte
}

// HasBody reports whether the request declared a body.
func (r *Request) HasBody() bool {
	return r.Body != nil
}

// ContentType returns the Content-Type header value.
func (r *Request) ContentType() string {
	return r.Header.Get(HeaderContentType)
}

// UserAgent returns the User-Agent header value.
func (r *Request) UserAgent() string {
	return r.Header.Get(HeaderUserAgent)
}

// ParseRequestLine splits a request line into method, target and protocol.
// The line must consist of exactly three non-empty tokens separated by single
// spaces.
func ParseRequestLine(line string) (string, string, string, error) {
	parts := strings.Split(line, " ")
	if len(parts) != 3 {
		return "", "", "", &ProtocolError{Message: "malformed request line: " + quote(line)}
	}
	method, target, proto := parts[0], parts[1], parts[2]
	if !isToken(method) {
		return "", "", "", &ProtocolError{Message: "invalid method: " + quote(method)}
	}
	if target == "" || proto == "" {
		return "", "", "", &ProtocolError{Message: "malformed request line: " + quote(line)}
	}
	return method, target, proto, nil
}

// ReadRequest reads one request from r: the request line, the header block
// and, if a Content-Length header is present, exactly that many body bytes.
// Every framing failure is reported as a *ProtocolError.
func ReadRequest(r *bufio.Reader) (*Request, error) {
	line, err := readLine(r)
	if err != nil {
		return nil, err
	}
	method, target, proto, err := ParseRequestLine(line)
	if err != nil {
		return nil, err
	}
	headers, err := ReadHeaders(r)
	if err != nil {
		return nil, err
	}
	req := &Request{
		Method: method,
		Target: target,
		Proto:  proto,
		Header: headers,
	}
	if cl, ok := headers.Lookup(HeaderContentLength); ok {
		n, err := ParseContentLength(cl)
		if err != nil {
			return nil, err
		}
		req.Body, err = readBody(r, n)
		if err != nil {
			return nil, err
		}
	}
	return req, nil
}

// ReadHeader reads a single header line. It returns an empty key at the
// blank line that ends the header block.
func ReadHeader(r *bufio.Reader) (string, string, error) {
	line, err := readLine(r)
	if err != nil {
		return "", "", err
	}
	if line == "" {
		return "", "", nil
	}
	idx := strings.IndexByte(line, ':')
	if idx == -1 {
		return "", "", &ProtocolError{Message: "malformed header: " + quote(line)}
	}
	key := line[:idx]
	if !isToken(key) {
		return "", "", &ProtocolError{Message: "invalid header name: " + quote(key)}
	}
	value := strings.TrimSpace(line[idx+1:])
	return key, value, nil
}

// ReadHeaders reads all headers up to and including the blank line.
func ReadHeaders(r *bufio.Reader) (Header, error) {
	headers := make(Header)
	for {
		key, value, err := ReadHeader(r)
		if err != nil {
			return nil, err
		}
		if key == "" {
			break // End of headers
		}
		headers[key] = value
	}
	return headers, nil
}

// ParseContentLength parses a Content-Length value as a non-negative decimal
// integer.
func ParseContentLength(s string) (int64, error) {
	if s == "" {
		return 0, &ProtocolError{Message: "empty Content-Length"}
	}
	var n int64
	for _, c := range []byte(s) {
		if c < '0' || c > '9' {
			return 0, &ProtocolError{Message: "invalid Content-Length: " + quote(s)}
		}
		if n > (1<<63-1-int64(c-'0'))/10 {
			return 0, &ProtocolError{Message: "Content-Length overflows: " + quote(s)}
		}
		n = n*10 + int64(c-'0')
	}
	return n, nil
}

// readBody reads exactly n bytes. The buffer grows with the data actually
// received, so a bogus length cannot force a large allocation up front.
func readBody(r io.Reader, n int64) ([]byte, error) {
	var buf bytes.Buffer
	got, err := io.CopyN(&buf, r, n)
	if got < n {
		if err == nil || errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return nil, &ProtocolError{Message: "short body", Err: err}
	}
	body := buf.Bytes()
	if body == nil {
		body = []byte{}
	}
	return body, nil
}

// readLine reads one CRLF-terminated ASCII line and strips the terminator.
func readLine(r *bufio.Reader) (string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			err = io.ErrUnexpectedEOF
		}
		return "", &ProtocolError{Message: "unterminated line", Err: err}
	}
	if !strings.HasSuffix(line, crlf) {
		return "", &ProtocolError{Message: "line not terminated by CRLF: " + quote(line)}
	}
	line = strings.TrimSuffix(line, crlf)
	if !isASCII(line) {
		return "", &ProtocolError{Message: "non-ASCII bytes in request head"}
	}
	return line, nil
}

// quote bounds the length of wire text echoed into error messages.
func quote(s string) string {
	const maxQuoted = 64
	if len(s) > maxQuoted {
		s = s[:maxQuoted] + "..."
	}
	return strconv.Quote(s)
}
