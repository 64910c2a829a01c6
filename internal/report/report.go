// Package report assembles the final per-entity digest and persists it.
package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/ardld/polinews/internal/entity"
	"github.com/ardld/polinews/internal/topic"
)

// Item is one article inside a subject.
type Item struct {
	Title     string `json:"title"`
	Link      string `json:"link"`
	Source    string `json:"source"`
	Date      string `json:"date,omitempty"`
	Snippet   string `json:"snippet,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
}

// Subject is one collapsed topic with its generated Romanian headline.
type Subject struct {
	Label     string `json:"label,omitempty"`
	TitluRO   string `json:"titlu_ro,omitempty"`
	SumarRO   string `json:"sumar_ro,omitempty"`
	Thumbnail string `json:"thumbnail,omitempty"`
	Items     []Item `json:"items"`
}

// EntitySection groups subjects under one political entity.
type EntitySection struct {
	Entity   string    `json:"entity"`
	Name     string    `json:"name"`
	Subjects []Subject `json:"subjects"`
}

// Report is the full digest for one pipeline run.
type Report struct {
	GeneratedAt time.Time       `json:"generated_at"`
	Timezone    string          `json:"timezone"`
	WindowHours int             `json:"window_hours"`
	Entities    []EntitySection `json:"entities"`
}

// Build converts collapsed buckets into a report, preserving bucket order.
func Build(buckets []topic.Bucket, tz string, windowHours int) Report {
	r := Report{
		GeneratedAt: time.Now(),
		Timezone:    tz,
		WindowHours: windowHours,
	}

	// Empty buckets still produce a section, so every configured entity
	// appears in the report.
	for _, b := range buckets {
		section := EntitySection{
			Entity: string(b.Entity),
			Name:   entity.DisplayName(b.Entity),
		}
		for _, t := range b.Subjects {
			subj := Subject{
				Label:     t.Label,
				TitluRO:   t.TitluRO,
				SumarRO:   t.SumarRO,
				Thumbnail: t.Thumbnail,
				Items:     make([]Item, 0, len(t.Items)),
			}
			for _, a := range t.Items {
				subj.Items = append(subj.Items, Item{
					Title:     a.Title,
					Link:      a.Link,
					Source:    a.Source,
					Date:      a.Date,
					Snippet:   a.Snippet,
					Thumbnail: a.Thumbnail,
				})
			}
			section.Subjects = append(section.Subjects, subj)
		}
		r.Entities = append(r.Entities, section)
	}

	return r
}

// WriteFile saves the report as indented JSON.
func WriteFile(r Report, path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %v", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report file: %v", err)
	}

	return nil
}
