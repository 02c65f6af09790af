package dataset

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/versebench/versebench/internal/utils"
)

const (
	// Default cache directory for downloaded corpora
	DefaultCacheDir = "~/.cache/versebench/corpus"
)

// DownloadConfig configures corpus downloading
type DownloadConfig struct {
	CacheDir      string
	ForceDownload bool
	Token         string // bearer token, e.g. for HuggingFace datasets
	Client        *http.Client
}

// Downloader fetches remote corpus files into a local cache
type Downloader struct {
	config DownloadConfig
}

// NewDownloader creates a new corpus downloader
func NewDownloader(config DownloadConfig) *Downloader {
	if config.CacheDir == "" {
		config.CacheDir = DefaultCacheDir
	}

	// Expand ~ to home directory
	if strings.HasPrefix(config.CacheDir, "~") {
		homeDir, err := os.UserHomeDir()
		if err == nil {
			config.CacheDir = filepath.Join(homeDir, config.CacheDir[1:])
		}
	}

	if config.Client == nil {
		config.Client = http.DefaultClient
	}

	return &Downloader{
		config: config,
	}
}

// IsRemote reports whether location is an http(s) URL
func IsRemote(location string) bool {
	return strings.HasPrefix(location, "http://") || strings.HasPrefix(location, "https://")
}

// Download fetches rawURL unless it is already cached and returns the local path.
func (d *Downloader) Download(ctx context.Context, rawURL string) (string, error) {
	if err := os.MkdirAll(d.config.CacheDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}

	cachedPath, err := d.GetCachePath(rawURL)
	if err != nil {
		return "", err
	}

	if !d.config.ForceDownload {
		if _, err := os.Stat(cachedPath); err == nil {
			slog.Info("Using cached corpus", "path", cachedPath)
			return cachedPath, nil
		}
	}

	slog.Info("Downloading corpus", "url", rawURL)
	if err := d.downloadFile(ctx, rawURL, cachedPath); err != nil {
		return "", fmt.Errorf("failed to download corpus: %w", err)
	}

	slog.Info("Corpus downloaded successfully", "path", cachedPath)
	return cachedPath, nil
}

// GetCachePath returns where rawURL is cached. The name keeps the URL's file
// extension so the loader can detect the format.
func (d *Downloader) GetCachePath(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("invalid corpus url: %w", err)
	}
	base := path.Base(u.Path)
	if base == "." || base == "/" {
		base = "corpus.jsonl"
	}
	return filepath.Join(d.config.CacheDir, utils.SHA256Hex(rawURL)[:12]+"-"+base), nil
}

// downloadFile downloads a file from a URL to a local path
func (d *Downloader) downloadFile(ctx context.Context, rawURL, destPath string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if d.config.Token != "" {
		req.Header.Set("Authorization", "Bearer "+d.config.Token)
	}

	resp, err := d.config.Client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %d", resp.StatusCode)
	}

	// Write to a temp file and rename so a failed download never looks cached
	tempPath := destPath + ".tmp"
	out, err := os.Create(tempPath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	written, err := io.Copy(out, resp.Body)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("download failed: %w", err)
	}
	slog.Debug("Download complete", "bytes", written, "content_length", resp.ContentLength)

	if err := os.Rename(tempPath, destPath); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to move file: %w", err)
	}

	return nil
}

// ClearCache removes all cached corpus files
func (d *Downloader) ClearCache() error {
	slog.Info("Clearing cache", "path", d.config.CacheDir)
	return os.RemoveAll(d.config.CacheDir)
}

// Open returns a loader for a local path, downloading it first when location is a URL.
func Open(ctx context.Context, location string, config DownloadConfig) (*Loader, error) {
	if !IsRemote(location) {
		return NewLoader(location), nil
	}

	datasetPath, err := NewDownloader(config).Download(ctx, location)
	if err != nil {
		return nil, err
	}
	return NewLoader(datasetPath), nil
}
