package gemini

import (
	"context"
	"fmt"
	"strings"
)

// ClusterInput is one indexed article submitted for semantic grouping.
type ClusterInput struct {
	Index  int
	Title  string
	Source string
	Link   string
	Date   string
}

// ClusterGroup is one topic group proposed by the collaborator.
type ClusterGroup struct {
	Label   string
	Indices []int
}

const clusterPromptHeader = `Ești editor de știri politice românești. Primești o listă de articole despre "%s", fiecare cu un index numeric.

Grupează articolele care vorbesc despre ACELAȘI eveniment concret. Nu grupa după asemănarea titlurilor: publicații diferite scriu titluri complet diferite despre același eveniment. Ignoră articolele care nu se potrivesc cu niciun grup.

Reguli:
- cel mult %d grupuri, fiecare cu cel mult %d indici;
- folosește doar indecșii din listă;
- eticheta fiecărui grup este o descriere scurtă, în română, a evenimentului.

Răspunde DOAR cu JSON, fără alt text:
{"groups": [{"label": "...", "indices": [0, 3]}]}

ARTICOLE:
`

// ClusterArticles asks the collaborator to group the submitted articles into
// at most maxGroups groups of at most maxItems indices. Malformed output or an
// unavailable collaborator yields an empty result, never an error the caller
// must handle differently.
func (c *Client) ClusterArticles(ctx context.Context, entityName string, items []ClusterInput, maxGroups, maxItems int) []ClusterGroup {
	if len(items) == 0 {
		return nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf(clusterPromptHeader, entityName, maxGroups, maxItems))
	for _, it := range items {
		sb.WriteString(fmt.Sprintf("[%d] %s\n", it.Index, it.Title))
		sb.WriteString(fmt.Sprintf("    sursa: %s | data: %s | link: %s\n", it.Source, it.Date, it.Link))
	}

	raw, err := c.generate(ctx, sb.String())
	if err != nil {
		logCollaboratorError("clustering", err)
		return nil
	}

	groups, err := parseClusterGroups(raw, len(items), maxGroups, maxItems)
	if err != nil {
		logCollaboratorError("clustering", err)
		return nil
	}
	return groups
}
