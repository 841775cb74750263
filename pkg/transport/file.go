package transport

import (
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
)

// FileTransporter is a Transporter over a local directory tree,
// addressed by "file://" URLs. It is the basic repository connector
// spec.md §1 names as in-scope ("the basic repository connector with
// parallel get/put ..."); remote HTTP/WebDAV wire details stay out of
// scope beyond the Transporter contract itself.
type FileTransporter struct {
	root string
}

// NewFileTransporter builds a FileTransporter rooted at root.
func NewFileTransporter(root string) *FileTransporter {
	return &FileTransporter{root: root}
}

var _ Transporter = (*FileTransporter)(nil)

func (f *FileTransporter) resolve(path string) string {
	return filepath.Join(f.root, filepath.FromSlash(path))
}

// Peek implements Transporter.
func (f *FileTransporter) Peek(ctx context.Context, path string) error {
	_, err := os.Stat(f.resolve(path))
	if err != nil {
		if os.IsNotExist(err) {
			return Error.New("not found: %s", path)
		}
		return Error.Wrap(err)
	}
	return nil
}

// Get implements Transporter.
func (f *FileTransporter) Get(ctx context.Context, req GetRequest) (GetResult, error) {
	full := f.resolve(req.Path)
	file, err := os.Open(full)
	if err != nil {
		if os.IsNotExist(err) {
			return GetResult{}, Error.New("not found: %s", req.Path)
		}
		return GetResult{}, Error.Wrap(err)
	}
	info, err := file.Stat()
	if err != nil {
		file.Close()
		return GetResult{}, Error.Wrap(err)
	}
	resumed := false
	if req.ResumeFrom > 0 && req.ResumeFrom < info.Size() {
		if _, err := file.Seek(req.ResumeFrom, io.SeekStart); err != nil {
			file.Close()
			return GetResult{}, Error.Wrap(err)
		}
		resumed = true
	}
	if req.Listener != nil {
		req.Listener.Started(info.Size())
	}
	return GetResult{
		Body:    file,
		Headers: map[string][]string{},
		Resumed: resumed,
		Length:  info.Size(),
	}, nil
}

// Put implements Transporter: it creates the target directory chain
// (the local analogue of WebDAV MKCOL, spec.md §4.H step "PUT") then
// writes via a temp file and atomic rename.
func (f *FileTransporter) Put(ctx context.Context, req PutRequest) error {
	full := f.resolve(req.Path)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return Error.Wrap(err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(full), ".upload-*")
	if err != nil {
		return Error.Wrap(err)
	}
	defer os.Remove(tmp.Name())

	var written int64
	buf := make([]byte, 32*1024)
	for {
		n, rerr := req.Body.Read(buf)
		if n > 0 {
			if _, werr := tmp.Write(buf[:n]); werr != nil {
				tmp.Close()
				return Error.Wrap(werr)
			}
			written += int64(n)
			if req.Listener != nil {
				if req.Listener.Progressed(written) {
					tmp.Close()
					return Error.New("transfer cancelled")
				}
			}
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			tmp.Close()
			return Error.Wrap(rerr)
		}
	}
	if err := tmp.Close(); err != nil {
		return Error.Wrap(err)
	}
	return os.Rename(tmp.Name(), full)
}

// Close implements Transporter.
func (f *FileTransporter) Close() error { return nil }

// fileFactory builds FileTransporters for "file://" URLs.
type fileFactory struct{}

// NewFileFactory returns a Factory for "file://" repository URLs.
func NewFileFactory() Factory { return fileFactory{} }

func (fileFactory) Priority() float64 { return 0 }

func (fileFactory) New(ctx context.Context, repoURL string, cfg Config) (Transporter, error) {
	root := strings.TrimPrefix(repoURL, "file://")
	return NewFileTransporter(root), nil
}

// httpStatusToError maps a non-2xx HTTP status to a typed error; used
// by the HTTP transporter (http.go) and kept here so both transporters
// share the same NotFound convention.
func httpStatusToError(path string, status int) error {
	switch {
	case status == http.StatusNotFound:
		return Error.New("not found: %s", path)
	case status >= 200 && status < 300:
		return nil
	default:
		return Error.New("unexpected status %d for %s", status, path)
	}
}
