package fileutil

import (
	"bytes"
	"context"
	"image"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/disintegration/imaging"
)

func coverServer(t *testing.T, width, height int) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		img := imaging.New(width, height, image.White.C)
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
			t.Fatalf("failed to encode test image: %v", err)
		}
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write(buf.Bytes())
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDownloadCoverResizesWideImages(t *testing.T) {
	server := coverServer(t, 600, 900)
	dir := t.TempDir()

	path, err := DownloadCover(context.Background(), server.URL, dir, "Dune")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	img, err := imaging.Open(path)
	if err != nil {
		t.Fatalf("failed to open saved cover: %v", err)
	}
	if got := img.Bounds().Dx(); got != coverMaxWidth {
		t.Errorf("width = %d, want %d", got, coverMaxWidth)
	}
}

func TestDownloadCoverSkipsExistingFile(t *testing.T) {
	server := coverServer(t, 100, 150)
	dir := t.TempDir()

	first, err := DownloadCover(context.Background(), server.URL, dir, "Dune")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	info, err := os.Stat(first)
	if err != nil {
		t.Fatal(err)
	}

	server.Close() // second call must not hit the network
	second, err := DownloadCover(context.Background(), server.URL, dir, "Dune")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second != first {
		t.Errorf("paths differ: %q vs %q", first, second)
	}
	again, _ := os.Stat(second)
	if again.ModTime() != info.ModTime() {
		t.Error("existing cover was rewritten")
	}
}

func TestDownloadCoverEmptyURL(t *testing.T) {
	path, err := DownloadCover(context.Background(), "", t.TempDir(), "Dune")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" {
		t.Errorf("expected empty path, got %q", path)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Dune", "Dune"},
		{"Mistborn: The Final Empire", "Mistborn - The Final Empire"},
		{`What/If?`, "What-If"},
	}
	for _, tt := range tests {
		if got := SanitizeFilename(tt.in); got != tt.want {
			t.Errorf("SanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
