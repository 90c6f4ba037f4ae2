package okavango

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"
)

// httpClient is a shared HTTP client with a fixed per-request timeout.
// There is no retry policy: a failed request aborts the whole run.
var httpClient = &http.Client{
	Timeout: 30 * time.Second,
}

// DownloadDatasets fetches every catalog dataset plus the boundary archive
// into dir, creating it if absent. Files are always re-downloaded; nothing
// on disk is reused. It returns a mapping of dataset key to local file path,
// with the boundary archive under GeodataKey.
func DownloadDatasets(dir string) (map[string]string, error) {
	return downloadAll(dir, Datasets, GeodataURL)
}

func downloadAll(dir string, sets []Dataset, geodataURL string) (map[string]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("creating download directory: %w", err)
	}

	paths := make(map[string]string, len(sets)+1)
	for _, ds := range sets {
		path := filepath.Join(dir, ds.Key+".csv")
		log.Printf("downloading %s...", ds.Key)
		if err := downloadFile(ds.URL, path); err != nil {
			return nil, fmt.Errorf("downloading %s: %w", ds.Key, err)
		}
		paths[ds.Key] = path
	}

	geoPath := filepath.Join(dir, geodataArchive)
	log.Printf("downloading country boundaries...")
	if err := downloadFile(geodataURL, geoPath); err != nil {
		return nil, fmt.Errorf("downloading %s: %w", GeodataKey, err)
	}
	paths[GeodataKey] = geoPath

	return paths, nil
}

// downloadFile writes the response body for url verbatim to path.
// Partial files are removed on error.
func downloadFile(url, path string) error {
	resp, err := httpClient.Get(url)
	if err != nil {
		return fmt.Errorf("HTTP GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("HTTP GET %s: status %d", url, resp.StatusCode)
	}

	out, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", path, err)
	}

	success := false
	defer func() {
		out.Close()
		if !success {
			os.Remove(path) // best-effort cleanup of partial file
		}
	}()

	if _, err := io.Copy(out, resp.Body); err != nil {
		return fmt.Errorf("writing file %s: %w", path, err)
	}

	// Explicitly close to catch flush errors (e.g., on NFS)
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing file %s: %w", path, err)
	}
	success = true
	return nil
}
