// Package resource manages the local store of remote reference files.
//
// Files are kept under a single application directory:
//
//	~/.vibe-ideogram/Homo_sapiens.gene_info.gz
//	~/.vibe-ideogram/gene2refseq.gz
//	~/.vibe-ideogram/refseq_human.tsv
package resource

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"

	"github.com/cheggaaa/pb/v3"
	"github.com/dustin/go-humanize"
	"go.uber.org/zap"
)

// DirName is the name of the cache directory created under the user's home.
const DirName = ".vibe-ideogram"

// DefaultDir returns ~/.vibe-ideogram.
func DefaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	return filepath.Join(home, DirName), nil
}

// Cache downloads remote files on first use and serves the local copy afterwards.
type Cache struct {
	dir      string
	client   *http.Client
	logger   *zap.Logger
	progress io.Writer // nil disables progress bars
}

// New creates a cache rooted at dir. The directory is created lazily.
func New(dir string) *Cache {
	return &Cache{
		dir:    dir,
		client: &http.Client{}, // no overall timeout; downloads end when ctx does
		logger: zap.NewNop(),
	}
}

// SetLogger sets the logger for download messages.
func (c *Cache) SetLogger(l *zap.Logger) {
	c.logger = l
}

// SetProgress enables download progress bars written to w.
func (c *Cache) SetProgress(w io.Writer) {
	c.progress = w
}

// Dir returns the cache directory.
func (c *Cache) Dir() string {
	return c.dir
}

// Join returns the path of name inside the cache directory.
func (c *Cache) Join(name string) string {
	return filepath.Join(c.dir, name)
}

// PathFor returns the local path a URL is stored under.
func (c *Cache) PathFor(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("parse url %q: %w", rawURL, err)
	}
	name := path.Base(u.Path)
	if name == "" || name == "." || name == "/" {
		return "", fmt.Errorf("url %q has no file name", rawURL)
	}
	return c.Join(name), nil
}

// Ensure returns the local path for rawURL, downloading it first when it is
// not cached or force is set.
func (c *Cache) Ensure(ctx context.Context, rawURL string, force bool) (string, error) {
	dest, err := c.PathFor(rawURL)
	if err != nil {
		return "", err
	}

	if !force {
		if info, err := os.Stat(dest); err == nil {
			c.logger.Debug("using cached file",
				zap.String("path", dest),
				zap.String("size", humanize.Bytes(uint64(info.Size()))))
			return dest, nil
		}
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return "", fmt.Errorf("create cache directory: %w", err)
	}

	c.logger.Info("downloading", zap.String("url", rawURL), zap.String("path", dest))
	n, err := c.download(ctx, rawURL, dest)
	if err != nil {
		return "", err
	}
	c.logger.Info("download complete",
		zap.String("path", dest),
		zap.String("size", humanize.Bytes(uint64(n))))

	return dest, nil
}

// Remove deletes a cached file. Missing files are not an error.
func (c *Cache) Remove(p string) error {
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove %s: %w", p, err)
	}
	c.logger.Debug("removed cached file", zap.String("path", p))
	return nil
}

// download streams rawURL into destPath via a temporary file so that an
// interrupted transfer never appears at destPath.
func (c *Cache) download(ctx context.Context, rawURL, destPath string) (int64, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return 0, fmt.Errorf("parse url %q: %w", rawURL, err)
	}

	var body io.ReadCloser
	var size int64
	switch u.Scheme {
	case "http", "https":
		body, size, err = c.openHTTP(ctx, rawURL)
	case "ftp":
		body, size, err = openFTP(ctx, u)
	default:
		return 0, fmt.Errorf("unsupported url scheme %q", u.Scheme)
	}
	if err != nil {
		return 0, err
	}
	defer body.Close()

	tmpPath := destPath + ".tmp"
	f, err := os.Create(tmpPath)
	if err != nil {
		return 0, fmt.Errorf("create file: %w", err)
	}

	var src io.Reader = contextReader{ctx: ctx, r: body}
	var bar *pb.ProgressBar
	if c.progress != nil {
		total := size
		if total < 0 {
			total = 0
		}
		bar = pb.New64(total).
			SetTemplate(pb.Full).
			SetWriter(c.progress).
			Set(pb.Bytes, true).
			Set("prefix", filepath.Base(destPath)+" ")
		bar.Start()
		src = bar.NewProxyReader(src)
	}

	n, err := io.Copy(f, src)
	if bar != nil {
		bar.Finish()
	}
	closeErr := f.Close()

	if err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("download failed: %w", err)
	}
	if closeErr != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("close file: %w", closeErr)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		os.Remove(tmpPath)
		return 0, fmt.Errorf("rename file: %w", err)
	}

	return n, nil
}

// contextReader fails reads once ctx is done, reporting ctx.Err() in place
// of whatever error the interrupted transfer produced.
type contextReader struct {
	ctx context.Context
	r   io.Reader
}

func (r contextReader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := r.r.Read(p)
	if err != nil {
		if ctxErr := r.ctx.Err(); ctxErr != nil {
			return n, ctxErr
		}
	}
	return n, err
}

func (c *Cache) openHTTP(ctx context.Context, rawURL string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, fmt.Errorf("HTTP error: %s", resp.Status)
	}

	return resp.Body, resp.ContentLength, nil
}
