package feed

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardld/polinews/internal/entity"
)

func writeSources(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sources.yaml")
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadSources(t *testing.T) {
	path := writeSources(t, `
sources:
  - entity: guvern
    feeds:
      - https://news.google.com/rss/search?q=guvern
  - entity: parlament
    feeds:
      - https://news.google.com/rss/search?q=parlament
      - https://news.google.com/rss/search?q=senat
`)

	sources, err := LoadSources(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(sources) != 2 {
		t.Fatalf("got %d sources", len(sources))
	}
	if sources[0].Entity != entity.Government || len(sources[1].Feeds) != 2 {
		t.Errorf("parsed sources look wrong: %+v", sources)
	}
}

func TestLoadSources_RejectsUnknownEntity(t *testing.T) {
	path := writeSources(t, `
sources:
  - entity: cabinetul
    feeds:
      - https://example.ro/rss
`)

	if _, err := LoadSources(path); err == nil {
		t.Error("unknown entity accepted")
	}
}

func TestLoadSources_MissingFile(t *testing.T) {
	if _, err := LoadSources(filepath.Join(t.TempDir(), "nu-exista.yaml")); err == nil {
		t.Error("missing file accepted")
	}
}

func TestStripHTML(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text", "doar text simplu", "doar text simplu"},
		{"tags removed", "<p>Guvernul <b>a adoptat</b> bugetul</p>", "Guvernul a adoptat bugetul"},
		{"entities decoded", "ştiri &amp; analize", "ştiri & analize"},
		{"whitespace collapsed", "  un   text\n\ncu  spații  ", "un text cu spații"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := StripHTML(tt.in); got != tt.want {
				t.Errorf("StripHTML(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
