package gemini

import (
	"encoding/json"
	"fmt"
	"strings"
)

// rawGroups matches the JSON contract of both the clustering and the merge
// collaborator. Indices are decoded as json.Number so that non-integer values
// can be dropped instead of failing the whole response.
type rawGroups struct {
	Groups []struct {
		Label   string        `json:"label"`
		Indices []json.Number `json:"indices"`
	} `json:"groups"`
}

// extractJSON cuts the first JSON object out of a model response, tolerating
// markdown code fences and prose around it.
func extractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return "", fmt.Errorf("no JSON object in response")
	}
	return s[start : end+1], nil
}

// decodeIndices keeps in-range integer indices, dropping everything else and
// any index already used within the same group.
func decodeIndices(nums []json.Number, size, maxItems int) []int {
	seen := make(map[int]struct{}, len(nums))
	out := make([]int, 0, len(nums))
	for _, n := range nums {
		v, err := n.Int64()
		if err != nil {
			continue // non-integer index from the model
		}
		i := int(v)
		if i < 0 || i >= size {
			continue
		}
		if _, dup := seen[i]; dup {
			continue
		}
		seen[i] = struct{}{}
		out = append(out, i)
		if maxItems > 0 && len(out) >= maxItems {
			break
		}
	}
	return out
}

func parseClusterGroups(raw string, size, maxGroups, maxItems int) ([]ClusterGroup, error) {
	body, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var parsed rawGroups
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal cluster groups: %w", err)
	}

	groups := make([]ClusterGroup, 0, maxGroups)
	for _, g := range parsed.Groups {
		if len(groups) >= maxGroups {
			break
		}
		indices := decodeIndices(g.Indices, size, maxItems)
		if len(indices) == 0 {
			continue
		}
		groups = append(groups, ClusterGroup{
			Label:   strings.TrimSpace(g.Label),
			Indices: indices,
		})
	}
	return groups, nil
}

func parseMergeGroups(raw string, size int) ([][]int, error) {
	body, err := extractJSON(raw)
	if err != nil {
		return nil, err
	}

	var parsed rawGroups
	if err := json.Unmarshal([]byte(body), &parsed); err != nil {
		return nil, fmt.Errorf("unmarshal merge groups: %w", err)
	}

	used := make(map[int]struct{})
	var groups [][]int
	for _, g := range parsed.Groups {
		indices := decodeIndices(g.Indices, size, 0)
		// a topic may appear in at most one merge group
		kept := indices[:0]
		for _, i := range indices {
			if _, dup := used[i]; dup {
				continue
			}
			used[i] = struct{}{}
			kept = append(kept, i)
		}
		if len(kept) >= 2 {
			groups = append(groups, kept)
		}
	}
	return groups, nil
}
