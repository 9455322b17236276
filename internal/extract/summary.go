package extract

import (
	"fmt"
	"sort"
	"strings"
)

// Summary renders a markdown overview of the models mapping for human
// review. It is a pure function of its input: backends in sorted name
// order, pages in index order, words in backend reading order. Calling
// it twice on the same mapping yields an identical string.
func Summary(models map[string]*BackendResult) string {
	names := make([]string, 0, len(models))
	for name := range models {
		names = append(names, name)
	}
	sort.Strings(names)

	var sb strings.Builder
	for _, name := range names {
		result := models[name]
		if result == nil {
			continue
		}
		for _, page := range result.Pages {
			fmt.Fprintf(&sb, "## %s - page %d\n\n", name, page.Index)

			text := pageText(page)
			if text == "" {
				sb.WriteString("_no text_\n\n")
			} else {
				sb.WriteString(text)
				sb.WriteString("\n\n")
			}

			for _, table := range page.Tables {
				writeMarkdownTable(&sb, table)
			}
		}
	}
	return sb.String()
}

// pageText concatenates word text in the order the backend returned it.
// The page's own Text field is preferred when the backend populated it.
func pageText(page Page) string {
	if page.Text != "" {
		return page.Text
	}
	parts := make([]string, 0, len(page.Words))
	for _, w := range page.Words {
		parts = append(parts, w.Text)
	}
	return strings.Join(parts, " ")
}

// writeMarkdownTable renders a table in GitHub markdown syntax, treating
// the first row as the header.
func writeMarkdownTable(sb *strings.Builder, table Table) {
	if len(table.Rows) == 0 {
		return
	}
	for i, row := range table.Rows {
		sb.WriteString("|")
		for _, cell := range row {
			sb.WriteString(" ")
			sb.WriteString(escapeCell(cell))
			sb.WriteString(" |")
		}
		sb.WriteString("\n")
		if i == 0 {
			sb.WriteString("|")
			for range row {
				sb.WriteString(" --- |")
			}
			sb.WriteString("\n")
		}
	}
	sb.WriteString("\n")
}

func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "|", `\|`)
	s = strings.ReplaceAll(s, "\n", " ")
	return s
}
