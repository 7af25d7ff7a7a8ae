package dispatch

import (
	"bytes"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"httpfs/pkg/http"
	"httpfs/pkg/vfs"
	"httpfs/pkg/vfs/memfs"
)

func newTestDispatcher(t *testing.T) (*Dispatcher, *memfs.FS) {
	t.Helper()
	fsys := memfs.New()
	return New(Config{FS: fsys}), fsys
}

func request(method, target string, header http.Header, body []byte) *http.Request {
	if header == nil {
		header = make(http.Header)
	}
	return &http.Request{Method: method, Target: target, Proto: http.ProtocolHTTP11, Header: header, Body: body}
}

func textHeader() http.Header {
	return http.Header{http.HeaderContentType: "text/plain"}
}

func mustRead(t *testing.T, fsys vfs.FileSystem, path string) string {
	t.Helper()
	data, err := fsys.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile(%q) failed: %v", path, err)
	}
	return string(data)
}

func wantStatus(t *testing.T, resp *http.Response, err error, code int) {
	t.Helper()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.StatusCode != code {
		t.Fatalf("status = %d, want %d", resp.StatusCode, code)
	}
}

func wantError(t *testing.T, err error, target *StatusError) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %d", err, target.Code)
	}
}

func TestGet(t *testing.T) {
	d, fsys := newTestDispatcher(t)
	fsys.WriteFile("/foo.txt", []byte("hello"), vfs.DefaultPerm)

	resp, err := d.Dispatch(request(http.MethodGet, "/foo.txt", nil, nil))
	wantStatus(t, resp, err, http.StatusOK)
	if resp.ContentType != "text/plain" {
		t.Errorf("ContentType = %q, want text/plain", resp.ContentType)
	}
	if string(resp.Body) != "hello" {
		t.Errorf("Body = %q, want %q", resp.Body, "hello")
	}
}

func TestGetMissing(t *testing.T) {
	d, fsys := newTestDispatcher(t)
	fsys.MkdirAll("/dir", 0755)

	for _, target := range []string{"/nope.txt", "/dir"} {
		_, err := d.Dispatch(request(http.MethodGet, target, nil, nil))
		wantError(t, err, ErrNotFound)
	}
}

func TestContentType(t *testing.T) {
	tests := []struct {
		target string
		want   string
	}{
		{"/a.txt", "text/plain"},
		{"/a.png", "image/png"},
		{"/a.gif", "image/gif"},
		{"/a.jpeg", "image/jpeg"},
		{"/a.jpg", "application/octet-stream"},
		{"/a.TXT", "application/octet-stream"},
		{"/a.html", "application/octet-stream"},
		{"/noext", "application/octet-stream"},
		{"/dir.d/noext", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := ContentType(tt.target); got != tt.want {
			t.Errorf("ContentType(%q) = %q, want %q", tt.target, got, tt.want)
		}
	}
}

func TestPutCreateThenOverwrite(t *testing.T) {
	d, fsys := newTestDispatcher(t)

	resp, err := d.Dispatch(request(http.MethodPut, "/new.bin", nil, []byte("BBBB")))
	wantStatus(t, resp, err, http.StatusCreated)

	resp, err = d.Dispatch(request(http.MethodGet, "/new.bin", nil, nil))
	wantStatus(t, resp, err, http.StatusOK)
	if resp.ContentType != "application/octet-stream" || string(resp.Body) != "BBBB" {
		t.Errorf("GET = (%q, %q), want (application/octet-stream, BBBB)", resp.ContentType, resp.Body)
	}

	resp, err = d.Dispatch(request(http.MethodPut, "/new.bin", nil, []byte("C")))
	wantStatus(t, resp, err, http.StatusNoContent)
	if got := mustRead(t, fsys, "/new.bin"); got != "C" {
		t.Errorf("after overwrite file = %q, want %q", got, "C")
	}
}

func TestPutUnsupportedContentHeader(t *testing.T) {
	d, fsys := newTestDispatcher(t)
	fsys.WriteFile("/keep.txt", []byte("orig"), vfs.DefaultPerm)

	h := http.Header{"Content-Language": "en", "Content-Length": "3"}
	_, err := d.Dispatch(request(http.MethodPut, "/keep.txt", h, []byte("new")))
	wantError(t, err, ErrNotImplemented)
	if !strings.Contains(err.Error(), "Content-Language") {
		t.Errorf("error %q does not name the header", err)
	}
	if got := mustRead(t, fsys, "/keep.txt"); got != "orig" {
		t.Errorf("file mutated to %q", got)
	}

	_, err = d.Dispatch(request(http.MethodPut, "/fresh.txt", h, []byte("new")))
	wantError(t, err, ErrNotImplemented)
	if _, err := fsys.Stat("/fresh.txt"); !errors.Is(err, vfs.ErrNotExist) {
		t.Errorf("fresh.txt should not exist, Stat error = %v", err)
	}
}

func TestPutAcceptsKnownContentHeaders(t *testing.T) {
	d, _ := newTestDispatcher(t)
	h := http.Header{"Content-Type": "image/png", "Content-Length": "2", "Host": "x"}
	resp, err := d.Dispatch(request(http.MethodPut, "/img.png", h, []byte{1, 2}))
	wantStatus(t, resp, err, http.StatusCreated)
}

func TestPutWithoutBody(t *testing.T) {
	d, fsys := newTestDispatcher(t)
	_, err := d.Dispatch(request(http.MethodPut, "/x", nil, nil))
	wantError(t, err, ErrBadRequest)
	if _, err := fsys.Stat("/x"); err == nil {
		t.Error("PUT without body created a file")
	}

	resp, err := d.Dispatch(request(http.MethodPut, "/empty", nil, []byte{}))
	wantStatus(t, resp, err, http.StatusCreated)
	if got := mustRead(t, fsys, "/empty"); got != "" {
		t.Errorf("empty PUT wrote %q", got)
	}
}

func TestPostAppends(t *testing.T) {
	d, fsys := newTestDispatcher(t)
	fsys.WriteFile("/notes.txt", []byte("orig"), vfs.DefaultPerm)

	resp, err := d.Dispatch(request(http.MethodPost, "/notes.txt", textHeader(), []byte("+D1")))
	wantStatus(t, resp, err, http.StatusNoContent)
	resp, err = d.Dispatch(request(http.MethodPost, "/notes.txt", textHeader(), []byte("+D2")))
	wantStatus(t, resp, err, http.StatusNoContent)

	if got := mustRead(t, fsys, "/notes.txt"); got != "orig+D1+D2" {
		t.Errorf("file = %q, want %q", got, "orig+D1+D2")
	}
}

func TestPostCreates(t *testing.T) {
	d, fsys := newTestDispatcher(t)

	resp, err := d.Dispatch(request(http.MethodPost, "/new.txt", textHeader(), []byte("first")))
	wantStatus(t, resp, err, http.StatusCreated)
	if resp.HasBody() {
		t.Errorf("201 carries a body: %q", resp.Body)
	}
	if got := mustRead(t, fsys, "/new.txt"); got != "first" {
		t.Errorf("file = %q, want %q", got, "first")
	}
}

func TestPostUnsupportedMediaType(t *testing.T) {
	d, fsys := newTestDispatcher(t)
	fsys.WriteFile("/data.txt", []byte("orig"), vfs.DefaultPerm)

	headers := []http.Header{
		{http.HeaderContentType: "application/json"},
		{http.HeaderContentType: "text/plain; charset=utf-8"},
		{},
	}
	for _, h := range headers {
		for _, target := range []string{"/data.txt", "/other.txt"} {
			_, err := d.Dispatch(request(http.MethodPost, target, h, []byte(`{"a":1}`)))
			wantError(t, err, ErrUnsupportedMediaType)
		}
	}
	if got := mustRead(t, fsys, "/data.txt"); got != "orig" {
		t.Errorf("file mutated to %q", got)
	}
	if _, err := fsys.Stat("/other.txt"); err == nil {
		t.Error("415 POST created a file")
	}
}

func TestDelete(t *testing.T) {
	d, fsys := newTestDispatcher(t)
	fsys.WriteFile("/gone.txt", []byte("x"), vfs.DefaultPerm)

	resp, err := d.Dispatch(request(http.MethodDelete, "/gone.txt", nil, nil))
	wantStatus(t, resp, err, http.StatusNoContent)
	if resp.HasBody() {
		t.Errorf("204 carries a body")
	}

	_, err = d.Dispatch(request(http.MethodDelete, "/gone.txt", nil, nil))
	wantError(t, err, ErrNotFound)
}

func TestUnknownMethod(t *testing.T) {
	d, _ := newTestDispatcher(t)
	for _, m := range []string{"HEAD", "PATCH", "BREW", "get"} {
		_, err := d.Dispatch(request(m, "/x", nil, nil))
		wantError(t, err, ErrNotImplemented)
		if !strings.Contains(err.Error(), m) {
			t.Errorf("error %q does not name method %s", err, m)
		}
	}
}

// faultyFS fails every write with a permission error.
type faultyFS struct {
	*memfs.FS
}

func (faultyFS) WriteFile(string, []byte, os.FileMode) error  { return os.ErrPermission }
func (faultyFS) AppendFile(string, []byte, os.FileMode) error { return os.ErrPermission }

func TestFilesystemFaultIsNotStatusError(t *testing.T) {
	d := New(Config{FS: faultyFS{memfs.New()}})
	_, err := d.Dispatch(request(http.MethodPut, "/x", nil, []byte("x")))
	if err == nil {
		t.Fatal("expected error")
	}
	var se *StatusError
	if errors.As(err, &se) {
		t.Errorf("fault reported as StatusError %v", se)
	}
	if !errors.Is(err, os.ErrPermission) {
		t.Errorf("error %v does not wrap os.ErrPermission", err)
	}
}

func TestDebugLogging(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf).Level(zerolog.DebugLevel)
	d := New(Config{FS: memfs.New(), Logger: &logger})

	resp, err := d.Dispatch(request(http.MethodPut, "/log.txt", nil, []byte("abc")))
	wantStatus(t, resp, err, http.StatusCreated)
	out := buf.String()
	if !strings.Contains(out, `"path":"/log.txt"`) || !strings.Contains(out, `"message":"written"`) {
		t.Errorf("debug log = %q", out)
	}
}

func TestStatusErrorResponse(t *testing.T) {
	resp := ErrNotFound.Response(true)
	if resp.StatusCode != http.StatusNotFound || resp.ContentType != "text/html" {
		t.Errorf("page response = %d %q", resp.StatusCode, resp.ContentType)
	}
	if !bytes.Contains(resp.Body, []byte(`<img src="https://http.cat/404">`)) {
		t.Errorf("page body = %q", resp.Body)
	}

	if resp := ErrNotFound.Response(false); resp.HasBody() {
		t.Errorf("minimal 404 carries a body: %q", resp.Body)
	}
	resp = unsupportedHeader("Content-MD5").Response(false)
	if resp.ContentType != "text/plain" || !bytes.Contains(resp.Body, []byte("Content-MD5")) {
		t.Errorf("minimal 501 = %q %q", resp.ContentType, resp.Body)
	}
}

func TestErrorPageIsASCII(t *testing.T) {
	for _, e := range []*StatusError{ErrBadRequest, ErrNotFound, ErrUnsupportedMediaType, ErrNotImplemented, ErrInternal} {
		b, err := e.Response(true).Bytes()
		if err != nil {
			t.Errorf("%d: Bytes() error: %v", e.Code, err)
			continue
		}
		for _, c := range b {
			if c >= 0x80 {
				t.Errorf("%d: non-ASCII byte in error page", e.Code)
				break
			}
		}
	}
}
