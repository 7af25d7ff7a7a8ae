package dispatch

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"github.com/rs/zerolog"

	"httpfs/pkg/http"
	"httpfs/pkg/vfs"
)

// Content-* headers a PUT may carry.
var supportedContentHeaders = map[string]bool{
	http.HeaderContentType:   true,
	http.HeaderContentLength: true,
}

// Config holds dispatcher configuration.
type Config struct {
	// FS is the filesystem targets are resolved against. Required.
	FS vfs.FileSystem

	// Perm is the mode for files created by PUT and POST. Defaults to
	// vfs.DefaultPerm.
	Perm os.FileMode

	// Logger receives per-operation debug events. Defaults to a no-op logger.
	Logger *zerolog.Logger
}

// Dispatcher executes requests against a filesystem. It keeps no per-request
// state and is safe for concurrent use.
type Dispatcher struct {
	fs     vfs.FileSystem
	perm   os.FileMode
	logger zerolog.Logger
}

// New creates a dispatcher with the given configuration.
func New(cfg Config) *Dispatcher {
	d := &Dispatcher{
		fs:     cfg.FS,
		perm:   cfg.Perm,
		logger: zerolog.Nop(),
	}
	if d.perm == 0 {
		d.perm = vfs.DefaultPerm
	}
	if cfg.Logger != nil {
		d.logger = *cfg.Logger
	}
	return d
}

// FileTarget is a request target resolved against the filesystem.
type FileTarget struct {
	Path   string
	Exists bool
}

// resolve maps target onto the filesystem and checks whether it names a
// regular file. With requireExists set, an absent file is ErrNotFound.
func (d *Dispatcher) resolve(target string, requireExists bool) (FileTarget, error) {
	exists, err := vfs.Exists(d.fs, target)
	if err != nil {
		return FileTarget{}, fmt.Errorf("stat %s: %w", target, err)
	}
	ft := FileTarget{Path: target, Exists: exists}
	if requireExists && !exists {
		return ft, ErrNotFound
	}
	return ft, nil
}

// Dispatch runs the operation for req.Method. Methods other than GET, POST,
// PUT and DELETE yield a 501 StatusError.
func (d *Dispatcher) Dispatch(req *http.Request) (*http.Response, error) {
	switch req.Method {
	case http.MethodGet:
		return d.Get(req)
	case http.MethodPost:
		return d.Post(req)
	case http.MethodPut:
		return d.Put(req)
	case http.MethodDelete:
		return d.Delete(req)
	default:
		return nil, unsupportedMethod(req.Method)
	}
}

// Get returns the file's contents with a type chosen by extension.
func (d *Dispatcher) Get(req *http.Request) (*http.Response, error) {
	ft, err := d.resolve(req.Target, true)
	if err != nil {
		return nil, err
	}
	data, err := d.fs.ReadFile(ft.Path)
	if errors.Is(err, vfs.ErrNotExist) {
		// Removed between the existence check and the read.
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ft.Path, err)
	}
	return &http.Response{
		StatusCode:  http.StatusOK,
		ContentType: ContentType(ft.Path),
		Body:        data,
	}, nil
}

// Post appends a text/plain body to the file, creating it if needed. It
// answers 204 when the file existed and 201 when it was created.
func (d *Dispatcher) Post(req *http.Request) (*http.Response, error) {
	if req.ContentType() != contentTypeText {
		return nil, ErrUnsupportedMediaType
	}
	body, err := requireBody(req)
	if err != nil {
		return nil, err
	}
	ft, err := d.resolve(req.Target, false)
	if err != nil {
		return nil, err
	}
	if ft.Exists {
		if err := d.fs.AppendFile(ft.Path, body, d.perm); err != nil {
			return nil, fmt.Errorf("append %s: %w", ft.Path, err)
		}
		d.logger.Debug().Str("path", ft.Path).Int("bytes", len(body)).Msg("appended")
		return &http.Response{StatusCode: http.StatusNoContent}, nil
	}
	if err := d.fs.WriteFile(ft.Path, body, d.perm); err != nil {
		return nil, fmt.Errorf("create %s: %w", ft.Path, err)
	}
	d.logger.Debug().Str("path", ft.Path).Int("bytes", len(body)).Msg("created")
	return &http.Response{StatusCode: http.StatusCreated}, nil
}

// Put replaces the file's contents with the body. Any Content-* header other
// than Content-Type and Content-Length aborts with 501 before the filesystem
// is touched.
func (d *Dispatcher) Put(req *http.Request) (*http.Response, error) {
	names := req.Header.ContentHeaders()
	sort.Strings(names)
	for _, name := range names {
		if !supportedContentHeaders[name] {
			return nil, unsupportedHeader(name)
		}
	}
	body, err := requireBody(req)
	if err != nil {
		return nil, err
	}
	ft, err := d.resolve(req.Target, false)
	if err != nil {
		return nil, err
	}
	if err := d.fs.WriteFile(ft.Path, body, d.perm); err != nil {
		return nil, fmt.Errorf("write %s: %w", ft.Path, err)
	}
	d.logger.Debug().Str("path", ft.Path).Int("bytes", len(body)).Bool("replaced", ft.Exists).Msg("written")
	if ft.Exists {
		return &http.Response{StatusCode: http.StatusNoContent}, nil
	}
	return &http.Response{StatusCode: http.StatusCreated}, nil
}

// Delete removes the file.
func (d *Dispatcher) Delete(req *http.Request) (*http.Response, error) {
	ft, err := d.resolve(req.Target, true)
	if err != nil {
		return nil, err
	}
	err = d.fs.Remove(ft.Path)
	if errors.Is(err, vfs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("remove %s: %w", ft.Path, err)
	}
	d.logger.Debug().Str("path", ft.Path).Msg("removed")
	return &http.Response{StatusCode: http.StatusNoContent}, nil
}

// requireBody returns the request body, or a 400 if the request declared
// none.
func requireBody(req *http.Request) ([]byte, error) {
	if !req.HasBody() {
		return nil, &StatusError{
			Code:   http.StatusBadRequest,
			Reason: req.Method + " requires a Content-Length header.",
		}
	}
	return req.Body, nil
}
