package gemini

import (
	"context"
	"fmt"
	"strings"
)

// MergeInput is one indexed topic submitted to the cross-entity merge pass.
type MergeInput struct {
	Index      int
	Entity     string
	Title      string
	Summary    string
	ItemTitles []string
	Domains    []string
}

const mergePromptHeader = `Ești editor de știri politice românești. Primești o listă de subiecte deja grupate, fiecare cu un index numeric. Subiectele provin din secțiuni diferite (președinție, guvern, parlament etc.) și pot descrie, independent, ACELAȘI eveniment real, chiar dacă articolele lor nu au niciun link comun.

Identifică DOAR grupurile evidente: subiecte care relatează în mod clar același eveniment concret. Dacă ai dubii, nu grupa. Un subiect apare în cel mult un grup.

Răspunde DOAR cu JSON, fără alt text:
{"groups": [{"indices": [1, 4]}]}
Dacă nu există grupuri evidente: {"groups": []}

SUBIECTE:
`

// MergeTopics asks the collaborator which of the submitted topics describe the
// same event despite disjoint article sets. This stage is a pure enhancement:
// on any failure it returns nil and the caller keeps the exact-signature
// result.
func (c *Client) MergeTopics(ctx context.Context, items []MergeInput) [][]int {
	if len(items) < 2 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(mergePromptHeader)
	for _, it := range items {
		sb.WriteString(fmt.Sprintf("[%d] (%s) %s\n", it.Index, it.Entity, it.Title))
		if it.Summary != "" {
			sb.WriteString(fmt.Sprintf("    sumar: %s\n", it.Summary))
		}
		if len(it.ItemTitles) > 0 {
			sb.WriteString(fmt.Sprintf("    titluri: %s\n", strings.Join(it.ItemTitles, " || ")))
		}
		if len(it.Domains) > 0 {
			sb.WriteString(fmt.Sprintf("    surse: %s\n", strings.Join(it.Domains, ", ")))
		}
	}

	raw, err := c.generate(ctx, sb.String())
	if err != nil {
		logCollaboratorError("merge", err)
		return nil
	}

	groups, err := parseMergeGroups(raw, len(items))
	if err != nil {
		logCollaboratorError("merge", err)
		return nil
	}
	return groups
}
