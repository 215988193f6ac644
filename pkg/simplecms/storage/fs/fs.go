package fs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/tendant/simple-cms/pkg/simplecms"
)

// Config contains filesystem backend settings. URLPrefix is the public
// address of BaseDir, e.g. a CDN or a static file server; without it the
// backend cannot hand out download URLs.
type Config struct {
	BaseDir   string
	URLPrefix string
}

// Backend stores each upload as a file under a base directory. Object keys
// map to slash-separated relative paths.
type Backend struct {
	root      string
	urlPrefix string
}

// New creates the base directory if needed.
func New(config Config) (*Backend, error) {
	if config.BaseDir == "" {
		return nil, errors.New("base directory is required")
	}
	root := filepath.Clean(config.BaseDir)
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload directory %s: %w", root, err)
	}
	return &Backend{root: root, urlPrefix: strings.TrimSuffix(config.URLPrefix, "/")}, nil
}

func (b *Backend) path(objectKey string) (string, error) {
	p := filepath.Join(b.root, filepath.FromSlash(objectKey))
	if p != b.root && !strings.HasPrefix(p, b.root+string(filepath.Separator)) {
		return "", fmt.Errorf("object key %q escapes upload directory", objectKey)
	}
	return p, nil
}

func notFound(err error) bool {
	return errors.Is(err, fs.ErrNotExist)
}

func (b *Backend) GetObjectMeta(ctx context.Context, objectKey string) (*simplecms.ObjectMeta, error) {
	p, err := b.path(objectKey)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(p)
	if notFound(err) {
		return nil, simplecms.ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", objectKey, err)
	}
	if info.IsDir() {
		return nil, simplecms.ErrObjectNotFound
	}

	contentType := contentTypeOf(p)
	return &simplecms.ObjectMeta{
		Key:         objectKey,
		Size:        info.Size(),
		ContentType: contentType,
		UpdatedAt:   info.ModTime(),
		Metadata:    map[string]string{"content_type": contentType},
	}, nil
}

// contentTypeOf goes by extension and falls back to sniffing the first 512 bytes.
func contentTypeOf(p string) string {
	if ct := mime.TypeByExtension(filepath.Ext(p)); ct != "" {
		return ct
	}
	f, err := os.Open(p)
	if err != nil {
		return "application/octet-stream"
	}
	defer f.Close()
	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	if n == 0 {
		return "application/octet-stream"
	}
	return http.DetectContentType(head[:n])
}

// Upload writes to a temporary file in the target directory and renames it
// into place, so a reader sees either the old file or the complete new one.
func (b *Backend) Upload(ctx context.Context, reader io.Reader, params simplecms.UploadParams) error {
	p, err := b.path(params.ObjectKey)
	if err != nil {
		return err
	}
	dir := filepath.Dir(p)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create directory for %s: %w", params.ObjectKey, err)
	}

	tmp, err := os.CreateTemp(dir, ".upload-*")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", params.ObjectKey, err)
	}
	defer os.Remove(tmp.Name())

	_, copyErr := io.Copy(tmp, reader)
	closeErr := tmp.Close()
	if err := errors.Join(copyErr, closeErr); err != nil {
		return fmt.Errorf("write %s: %w", params.ObjectKey, err)
	}
	if err := os.Rename(tmp.Name(), p); err != nil {
		return fmt.Errorf("move %s into place: %w", params.ObjectKey, err)
	}
	return nil
}

func (b *Backend) GetDownloadURL(ctx context.Context, objectKey string, downloadFilename string) (string, error) {
	if b.urlPrefix == "" {
		return "", simplecms.ErrUnsupportedOperation
	}
	u := b.urlPrefix + "/" + objectKey
	if downloadFilename != "" {
		u += "?filename=" + url.QueryEscape(downloadFilename)
	}
	return u, nil
}

func (b *Backend) Download(ctx context.Context, objectKey string) (io.ReadCloser, error) {
	p, err := b.path(objectKey)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if notFound(err) {
		return nil, simplecms.ErrObjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", objectKey, err)
	}
	return f, nil
}

// Delete removes the file and prunes directories it leaves empty, stopping
// at the base directory.
func (b *Backend) Delete(ctx context.Context, objectKey string) error {
	p, err := b.path(objectKey)
	if err != nil {
		return err
	}
	if err := os.Remove(p); err != nil {
		if notFound(err) {
			return simplecms.ErrObjectNotFound
		}
		return fmt.Errorf("remove %s: %w", objectKey, err)
	}

	for dir := filepath.Dir(p); dir != b.root && strings.HasPrefix(dir, b.root); dir = filepath.Dir(dir) {
		if os.Remove(dir) != nil {
			break
		}
	}
	return nil
}

var _ simplecms.BlobStore = (*Backend)(nil)
