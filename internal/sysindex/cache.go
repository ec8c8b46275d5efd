package sysindex

import (
	"context"
	"encoding/gob"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/zstd"
	"github.com/sirupsen/logrus"
)

// IndexVersion names the cache layout. Bump it when the encoding changes.
const IndexVersion = "0.0.1"

const indexFileName = "index-file"

// DefaultContentsURLs are the Debian 10.6 amd64 Contents files indexed
// when no local file is given.
var DefaultContentsURLs = []string{
	"http://ftp.de.debian.org/debian/dists/Debian10.6/contrib/Contents-amd64.gz",
	"http://ftp.de.debian.org/debian/dists/Debian10.6/main/Contents-amd64.gz",
	"http://ftp.de.debian.org/debian/dists/Debian10.6/non-free/Contents-amd64.gz",
}

// CacheDir returns the versioned directory holding the index under root.
func CacheDir(root string) string {
	return filepath.Join(root, "system-file-index", IndexVersion)
}

// DefaultCacheRoot returns the user cache directory (~/.cache on Linux).
func DefaultCacheRoot() (string, error) {
	return os.UserCacheDir()
}

// Save writes idx to path as zstd-compressed gob, creating parent
// directories.
func Save(idx Index, path string) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating index directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	zw, err := zstd.NewWriter(f)
	if err != nil {
		return err
	}
	if err := gob.NewEncoder(zw).Encode(idx); err != nil {
		_ = zw.Close()
		return fmt.Errorf("encoding index: %w", err)
	}
	return zw.Close()
}

// Load reads an index written by Save.
func Load(path string) (Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = f.Close() }()

	zr, err := zstd.NewReader(f)
	if err != nil {
		return nil, err
	}
	defer zr.Close()

	var idx Index
	if err := gob.NewDecoder(zr).Decode(&idx); err != nil {
		return nil, fmt.Errorf("decoding index %s: %w", path, err)
	}
	return idx, nil
}

// Options controls how Open obtains an index.
type Options struct {
	// Reindex rebuilds the index even when a cached one exists.
	Reindex bool
	// ContentsFiles are local Contents files to index. When set, the
	// index is always rebuilt from them.
	ContentsFiles []string
	// ContentsURLs are downloaded when ContentsFiles is empty.
	// DefaultContentsURLs is used when both are empty.
	ContentsURLs []string
	// HasHeader expects a FILE/LOCATION header in every Contents file.
	HasHeader bool
	// IndexFile overrides the cache location.
	IndexFile string
	// CacheRoot is the directory passed to CacheDir. Defaults to
	// DefaultCacheRoot.
	CacheRoot string
	// Timeout bounds each download. Zero means no timeout.
	Timeout time.Duration
	Client  *http.Client
	Log     logrus.FieldLogger
}

func (o Options) logger() logrus.FieldLogger {
	if o.Log == nil {
		return logrus.StandardLogger()
	}
	return o.Log
}

// IndexPath returns the file Open reads and writes.
func (o Options) IndexPath() (string, error) {
	if o.IndexFile != "" {
		return o.IndexFile, nil
	}
	root := o.CacheRoot
	if root == "" {
		var err error
		if root, err = DefaultCacheRoot(); err != nil {
			return "", fmt.Errorf("locating cache directory: %w", err)
		}
	}
	return filepath.Join(CacheDir(root), indexFileName), nil
}

// Open returns the cached index, or builds and caches a new one when
// Reindex or ContentsFiles is set or no cache exists yet.
func Open(ctx context.Context, opts Options) (Index, error) {
	path, err := opts.IndexPath()
	if err != nil {
		return nil, err
	}
	log := opts.logger().WithField("index", path)

	if !opts.Reindex && len(opts.ContentsFiles) == 0 {
		if _, err := os.Stat(path); err == nil {
			log.Debug("loading cached index")
			return Load(path)
		}
	}

	idx, err := Build(ctx, opts)
	if err != nil {
		return nil, err
	}
	if err := Save(idx, path); err != nil {
		return nil, fmt.Errorf("saving index: %w", err)
	}
	log.WithField("paths", len(idx)).Info("index saved")
	return idx, nil
}

// Build combines the packages-by-path maps of the configured Contents
// files into one index.
func Build(ctx context.Context, opts Options) (Index, error) {
	combined := make(Index)
	log := opts.logger()

	if len(opts.ContentsFiles) > 0 {
		for _, file := range opts.ContentsFiles {
			log.WithField("file", file).Info("indexing contents file")
			idx, err := ParseContentsFile(file, opts.HasHeader)
			if err != nil {
				return nil, err
			}
			combined.Merge(idx)
		}
		return combined, nil
	}

	urls := opts.ContentsURLs
	if len(urls) == 0 {
		urls = DefaultContentsURLs
	}
	for _, url := range urls {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		log.WithField("url", url).Info("downloading contents file")
		idx, err := Download(ctx, opts.Client, url, opts.HasHeader, opts.Timeout)
		if err != nil {
			return nil, err
		}
		combined.Merge(idx)
	}
	return combined, nil
}
