package dispatch

import (
	"fmt"

	"httpfs/pkg/http"
)

const contentTypeHTML = "text/html"

// ErrorPage renders the HTML body sent with error responses.
func ErrorPage(code int, reason string) []byte {
	return []byte(fmt.Sprintf(`<html>
  <body>
    <img src="https://http.cat/%d">
    <p>%s</p>
  </body>
</html>
`, code, reason))
}

// Response builds the response that reports e. With pages set the body is an
// HTML error page. Without it only a 501 carries a body: the plain-text reason
// naming what was not implemented.
func (e *StatusError) Response(pages bool) *http.Response {
	resp := &http.Response{StatusCode: e.Code}
	switch {
	case pages:
		resp.ContentType = contentTypeHTML
		resp.Body = ErrorPage(e.Code, e.Reason)
	case e.Code == http.StatusNotImplemented:
		resp.ContentType = contentTypeText
		resp.Body = []byte(e.Reason)
	}
	return resp
}
