package report

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ardld/polinews/internal/article"
	"github.com/ardld/polinews/internal/entity"
	"github.com/ardld/polinews/internal/topic"
)

func sampleBuckets() []topic.Bucket {
	return []topic.Bucket{
		{
			Entity: entity.Government,
			Subjects: []topic.Topic{
				{
					Label:     "bugetul",
					TitluRO:   "Guvernul adoptă bugetul",
					SumarRO:   "Executivul a aprobat bugetul pe 2027.",
					Thumbnail: "https://hotnews.ro/img.jpg",
					Items: []article.Article{
						{Title: "Buget adoptat", Link: "https://hotnews.ro/1", Source: "HotNews", Date: "3 ore în urmă"},
					},
				},
			},
		},
		{Entity: entity.Parliament}, // no subjects this run
	}
}

func TestBuild(t *testing.T) {
	r := Build(sampleBuckets(), "Europe/Bucharest", 24)

	if r.Timezone != "Europe/Bucharest" || r.WindowHours != 24 {
		t.Errorf("header fields: %q / %d", r.Timezone, r.WindowHours)
	}
	if len(r.Entities) != 2 {
		t.Fatalf("got %d entity sections, want 2 (empty buckets still listed)", len(r.Entities))
	}
	if r.Entities[1].Entity != "parlament" || len(r.Entities[1].Subjects) != 0 {
		t.Errorf("empty bucket section = %+v", r.Entities[1])
	}

	want := EntitySection{
		Entity: "guvern",
		Name:   "Guvern",
		Subjects: []Subject{
			{
				Label:     "bugetul",
				TitluRO:   "Guvernul adoptă bugetul",
				SumarRO:   "Executivul a aprobat bugetul pe 2027.",
				Thumbnail: "https://hotnews.ro/img.jpg",
				Items: []Item{
					{Title: "Buget adoptat", Link: "https://hotnews.ro/1", Source: "HotNews", Date: "3 ore în urmă"},
				},
			},
		},
	}
	if diff := cmp.Diff(want, r.Entities[0]); diff != "" {
		t.Errorf("section mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteFile_RoundTrip(t *testing.T) {
	r := Build(sampleBuckets(), "Europe/Bucharest", 24)
	path := filepath.Join(t.TempDir(), "report.json")

	if err := WriteFile(r, path); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	var back Report
	if err := json.Unmarshal(data, &back); err != nil {
		t.Fatalf("report file is not valid JSON: %v", err)
	}
	if diff := cmp.Diff(r.Entities, back.Entities); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestWriteFile_BadPath(t *testing.T) {
	r := Build(nil, "UTC", 24)
	if err := WriteFile(r, filepath.Join(t.TempDir(), "nu", "exista", "report.json")); err == nil {
		t.Error("expected error for unwritable path")
	}
}
