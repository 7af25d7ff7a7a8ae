package http

import (
	"io"
	"strconv"
)

// DefaultContentType is sent when a response has a body but no type.
const DefaultContentType = "application/octet-stream"

// Response describes one response to serialize. A response has a body iff
// len(Body) > 0; only then are Content-Type and Content-Length emitted.
type Response struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// HasBody reports whether the response carries a body.
func (r *Response) HasBody() bool {
	return len(r.Body) > 0
}

// Bytes serializes the response: status line, entity headers when a body is
// present, the blank line, then the body verbatim.
func (r *Response) Bytes() ([]byte, error) {
	reason := StatusText(r.StatusCode)
	if reason == "" {
		return nil, ErrUnknownStatus
	}
	size := len(ProtocolHTTP11) + len(reason) + 16
	contentType := ""
	if r.HasBody() {
		contentType = r.ContentType
		if contentType == "" {
			contentType = DefaultContentType
		}
		if !isASCII(contentType) {
			return nil, ErrNonASCII
		}
		size += len(contentType) + len(r.Body) + 48
	}

	buf := make([]byte, 0, size)
	buf = append(buf, ProtocolHTTP11...)
	buf = append(buf, ' ')
	buf = strconv.AppendInt(buf, int64(r.StatusCode), 10)
	buf = append(buf, ' ')
	buf = append(buf, reason...)
	buf = append(buf, crlf...)
	if r.HasBody() {
		buf = append(buf, HeaderContentType+": "...)
		buf = append(buf, contentType...)
		buf = append(buf, crlf...)
		buf = append(buf, HeaderContentLength+": "...)
		buf = strconv.AppendInt(buf, int64(len(r.Body)), 10)
		buf = append(buf, crlf...)
	}
	buf = append(buf, crlf...)
	buf = append(buf, r.Body...)
	return buf, nil
}

// WriteTo writes the serialized response to w in a single Write call.
func (r *Response) WriteTo(w io.Writer) (int64, error) {
	b, err := r.Bytes()
	if err != nil {
		return 0, err
	}
	n, err := w.Write(b)
	return int64(n), err
}

// StatusText returns the reason phrase for a status code the server emits,
// or "" if the code is not one of them.
func StatusText(code int) string {
	switch code {
	case StatusOK:
		return "OK"
	case StatusCreated:
		return "Created"
	case StatusNoContent:
		return "No Content"
	case StatusBadRequest:
		return "Bad Request"
	case StatusNotFound:
		return "Not Found"
	case StatusUnsupportedMediaType:
		return "Unsupported Media Type"
	case StatusInternalServerError:
		return "Internal Server Error"
	case StatusNotImplemented:
		return "Not Implemented"
	default:
		return ""
	}
}
