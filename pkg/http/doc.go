/*
Package http implements the byte-level HTTP/1.1 framing used by the file server.

It reads exactly one request off a connection and serializes exactly one
response back onto it. Only the subset of RFC 7230 the server needs is
supported:

  - request line and header block, CRLF terminated
  - message bodies sized by Content-Length
  - a fixed table of status codes and reason phrases

Chunked transfer encoding, keep-alive and pipelining are not supported; the
caller closes the connection after the response is written.

# Usage

	req, err := http.ReadRequest(bufio.NewReader(conn))
	if err != nil {
		resp := &http.Response{StatusCode: http.StatusBadRequest}
		resp.WriteTo(conn)
		return
	}
	resp := &http.Response{
		StatusCode:  http.StatusOK,
		ContentType: "text/plain",
		Body:        []byte("hello"),
	}
	resp.WriteTo(conn)
*/
package http
