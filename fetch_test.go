package okavango

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
)

func TestDownloadAllCreatesFiles(t *testing.T) {
	dir := t.TempDir()
	srv, sets, geoURL, err := newFixtureServer(dir)
	if err != nil {
		t.Fatal(err)
	}
	defer srv.Close()

	out := filepath.Join(dir, "downloads")
	paths, err := downloadAll(out, sets, geoURL)
	if err != nil {
		t.Fatalf("downloadAll: %v", err)
	}

	// Five datasets plus the boundary archive.
	if len(paths) != len(sets)+1 {
		t.Errorf("got %d paths, want %d", len(paths), len(sets)+1)
	}
	for _, ds := range sets {
		if _, ok := paths[ds.Key]; !ok {
			t.Errorf("missing dataset key %q", ds.Key)
		}
	}
	if _, ok := paths[GeodataKey]; !ok {
		t.Errorf("missing %q key", GeodataKey)
	}

	for key, path := range paths {
		fi, err := os.Stat(path)
		if err != nil {
			t.Errorf("%s: %v", key, err)
			continue
		}
		if fi.Size() == 0 {
			t.Errorf("%s: file is empty", key)
		}
	}
}

func TestDownloadFileVerbatim(t *testing.T) {
	body := "Entity,Year,v\nAlphaland,2020,1\n"
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := downloadFile(srv.URL, path); err != nil {
		t.Fatalf("downloadFile: %v", err)
	}
	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != body {
		t.Errorf("body not written verbatim: %q", got)
	}
}

func TestDownloadFileBadStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusInternalServerError)
	}))
	defer srv.Close()

	path := filepath.Join(t.TempDir(), "out.csv")
	if err := downloadFile(srv.URL, path); err == nil {
		t.Fatal("expected error for 500 status")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("partial file left behind after failed download")
	}
}

func TestDownloadAllAbortsOnFailure(t *testing.T) {
	dir := t.TempDir()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer srv.Close()

	sets := []Dataset{{Key: "broken", URL: srv.URL + "/broken.csv"}}
	if _, err := downloadAll(dir, sets, srv.URL+"/geodata.zip"); err == nil {
		t.Fatal("expected error when a dataset request fails")
	}
}
