package blob

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"
)

// Local stores blobs on disk under Root and serves them under BaseURL.
type Local struct {
	Root    string
	BaseURL string // public prefix, e.g. "http://host:8080/blobs"
}

func NewLocal(root, baseURL string) (*Local, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, err
	}
	return &Local{Root: root, BaseURL: strings.TrimRight(baseURL, "/")}, nil
}

var _ Store = (*Local)(nil)

// Upload writes the stream to <root>/<bucket>/<millis>_<name> and
// returns the bucket-relative handle. The timestamp prefix keeps
// repeated uploads of the same filename from colliding.
func (l *Local) Upload(_ context.Context, bucket, filename string, r io.Reader) (string, error) {
	name := filepath.Base(strings.TrimSpace(filename))
	if name == "" || name == "." || name == string(filepath.Separator) {
		name = "upload"
	}
	handle := path.Join(bucket, fmt.Sprintf("%d_%s", time.Now().UnixMilli(), name))

	dst := filepath.Join(l.Root, filepath.FromSlash(handle))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", err
	}
	return handle, nil
}

func (l *Local) PublicURL(handle string) string {
	return l.BaseURL + "/" + strings.TrimLeft(handle, "/")
}

// Handler serves the blob directory; mount it at the BaseURL path.
func (l *Local) Handler() http.Handler {
	return http.FileServer(http.Dir(l.Root))
}
