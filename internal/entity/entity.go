// Package entity defines the fixed set of political entities that articles
// and topics are bucketed under, plus the keyword scoring used to decide
// which entity owns a merged topic.
package entity

import (
	"regexp"
)

// Entity is one of the fixed political buckets.
type Entity string

const (
	Presidency Entity = "presedintie"
	Government Entity = "guvern"
	Parliament Entity = "parlament"
	Coalition  Entity = "coalitie"
	Opposition Entity = "opozitie"
	Local      Entity = "local"
)

// PriorityOrder is the fixed tie-break sequence. It also defines the order of
// entity buckets in the final report.
var PriorityOrder = []Entity{
	Presidency,
	Government,
	Parliament,
	Coalition,
	Opposition,
	Local,
}

// priorityRank maps each entity to its position in PriorityOrder.
var priorityRank = func() map[Entity]int {
	m := make(map[Entity]int, len(PriorityOrder))
	for i, e := range PriorityOrder {
		m[e] = i
	}
	return m
}()

// Rank returns the priority rank of e (lower is higher priority). Unknown
// entities sort last.
func Rank(e Entity) int {
	if r, ok := priorityRank[e]; ok {
		return r
	}
	return len(PriorityOrder)
}

// Valid reports whether e is one of the fixed entities.
func Valid(e Entity) bool {
	_, ok := priorityRank[e]
	return ok
}

// Keyword signatures per entity. Patterns are matched against diacritics-folded
// lower-case text, so they are written without diacritics.
var keywordPatterns = map[Entity]*regexp.Regexp{
	Presidency: regexp.MustCompile(`presedint\w*|cotroceni|administratia prezidentiala|seful statului|consilier prezidential`),
	Government: regexp.MustCompile(`guvern\w*|premier\w*|prim[- ]ministr\w*|palatul victoria|ministr\w*|minister\w*|ordonanta|hotarare de guvern`),
	Parliament: regexp.MustCompile(`parlament\w*|senat\w*|camera deputatilor|deputat\w*|motiune|plenul|comisia parlamentara|vot in plen`),
	Coalition:  regexp.MustCompile(`coalitia? de guvernare|coalitie|partidele de guvernamant|majoritatea parlamentara|protocolul coalitiei|sedinta coalitiei`),
	Opposition: regexp.MustCompile(`opozitie\w*|opozitia|partid\w* de opozitie|liderul opozitiei|boicot\w*`),
	Local:      regexp.MustCompile(`primar\w*|primaria|consiliul local|consiliul judetean|prefect\w*|administratia locala|bugetul local`),
}

// Score counts keyword hits for each entity in the given text. The text must
// already be diacritics-folded and lower-cased (see article.FoldText).
func Score(folded string) map[Entity]int {
	scores := make(map[Entity]int, len(keywordPatterns))
	for e, re := range keywordPatterns {
		scores[e] = len(re.FindAllStringIndex(folded, -1))
	}
	return scores
}

// PickOwner chooses the entity with the highest keyword score in the folded
// text, breaking ties by PriorityOrder. The choice is deterministic: given the
// same text it always returns the same entity.
func PickOwner(folded string) Entity {
	scores := Score(folded)
	best := PriorityOrder[0]
	bestScore := -1
	for _, e := range PriorityOrder {
		if scores[e] > bestScore {
			best = e
			bestScore = scores[e]
		}
	}
	return best
}

// PickOwnerAmong works like PickOwner but requires the result to be one of the
// given members. If the scored-best entity is not a member, the first member
// in PriorityOrder wins.
func PickOwnerAmong(folded string, members []Entity) Entity {
	if len(members) == 0 {
		return PickOwner(folded)
	}
	present := make(map[Entity]bool, len(members))
	for _, m := range members {
		present[m] = true
	}
	if owner := PickOwner(folded); present[owner] {
		return owner
	}
	for _, e := range PriorityOrder {
		if present[e] {
			return e
		}
	}
	return members[0]
}

// DisplayName returns the Romanian display label for an entity bucket.
func DisplayName(e Entity) string {
	switch e {
	case Presidency:
		return "Președinție"
	case Government:
		return "Guvern"
	case Parliament:
		return "Parlament"
	case Coalition:
		return "Coaliția de guvernare"
	case Opposition:
		return "Opoziție"
	case Local:
		return "Administrație locală"
	}
	return string(e)
}
