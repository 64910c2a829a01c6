package gemini

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

// Headline is one title+snippet pair fed to the title/summary collaborator.
type Headline struct {
	Title   string
	Snippet string
}

// TopicSummary is the generated Romanian title and summary for a topic.
type TopicSummary struct {
	Titlu string
	Sumar string
}

const summaryPromptHeader = `Primești până la 5 articole de presă despre același eveniment politic din România. Scrie un titlu scurt și un sumar de 2-3 propoziții, ambele în română, neutre, fără limbaj de senzație.

Nu traduce numele proprii. Evită formulări de tip "Știrea despre...".

Formatul răspunsului, strict:

TITLU: <titlul>

SUMAR: <sumarul>

ARTICOLE:
`

const maxSnippetRunes = 600

// TitleSummary generates titlu_ro and sumar_ro for a topic from up to five
// title+snippet pairs. A missing label in the response yields an empty string
// for that field, never an error; a failed call yields an empty TopicSummary.
func (c *Client) TitleSummary(ctx context.Context, items []Headline) TopicSummary {
	if len(items) == 0 {
		return TopicSummary{}
	}
	if len(items) > 5 {
		items = items[:5]
	}

	var sb strings.Builder
	sb.WriteString(summaryPromptHeader)
	for i, it := range items {
		sb.WriteString(fmt.Sprintf("%d. %s\n", i+1, it.Title))
		if s := truncateRunes(collapseWhitespace(it.Snippet), maxSnippetRunes); s != "" {
			sb.WriteString("   " + s + "\n")
		}
	}

	raw, err := c.generate(ctx, sb.String())
	if err != nil {
		logCollaboratorError("title/summary", err)
		return TopicSummary{}
	}
	return parseTitleSummary(raw)
}

// Label patterns are forgiving: case-insensitive, optional colon spacing,
// diacritic variants the model sometimes produces.
var summaryLabelPatterns = []struct {
	name  string
	regex *regexp.Regexp
}{
	{"titlu", regexp.MustCompile(`(?i)^\**\s*(TITLU|TITLE)\s*\**\s*: ?`)},
	{"sumar", regexp.MustCompile(`(?i)^\**\s*(SUMAR|SUMMARY|REZUMAT)\s*\**\s*: ?`)},
}

// parseTitleSummary applies the fixed label-prefix contract. Continuation
// lines attach to the most recent label; text before any label is ignored.
func parseTitleSummary(response string) TopicSummary {
	var titluBuilder, sumarBuilder strings.Builder

	appendText := func(section, text string) {
		if text == "" {
			return
		}
		switch section {
		case "titlu":
			if titluBuilder.Len() > 0 {
				titluBuilder.WriteString(" ")
			}
			titluBuilder.WriteString(text)
		case "sumar":
			if sumarBuilder.Len() > 0 {
				sumarBuilder.WriteString(" ")
			}
			sumarBuilder.WriteString(text)
		}
	}

	current := ""
	for _, raw := range strings.Split(response, "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		matched := false
		for _, lp := range summaryLabelPatterns {
			if lp.regex.MatchString(line) {
				current = lp.name
				appendText(current, strings.TrimSpace(lp.regex.ReplaceAllString(line, "")))
				matched = true
				break
			}
		}
		if matched {
			continue
		}

		if current != "" {
			appendText(current, line)
		}
	}

	return TopicSummary{
		Titlu: strings.TrimSpace(titluBuilder.String()),
		Sumar: strings.TrimSpace(sumarBuilder.String()),
	}
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

func truncateRunes(s string, max int) string {
	if utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	return string(runes[:max]) + "…"
}
