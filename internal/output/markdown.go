package output

import (
	"fmt"
	"strings"

	"github.com/rezmoss/sctk/internal/analysis"
	"github.com/rezmoss/sctk/internal/policy"
	"github.com/rezmoss/sctk/internal/table"
)

// GenerateMarkdown renders table statistics and policy violations as a
// markdown report with collapsible sections.
func GenerateMarkdown(stats analysis.TableStats, violations []policy.Violation) string {
	var sb strings.Builder

	sb.WriteString("## 📋 BOM Report\n\n")
	sb.WriteString("| Metric | Count |\n")
	sb.WriteString("|--------|-------|\n")
	fmt.Fprintf(&sb, "| Rows | %d |\n", stats.Rows)
	fmt.Fprintf(&sb, "| Columns | %d |\n", len(stats.Columns))

	errors, warnings := splitViolations(violations)
	if len(violations) > 0 {
		fmt.Fprintf(&sb, "| Errors | %d |\n", len(errors))
		fmt.Fprintf(&sb, "| Warnings | %d |\n", len(warnings))
	}
	sb.WriteString("\n")

	writeViolations(&sb, "❌ Policy Errors", errors)
	writeViolations(&sb, "⚠️ Policy Warnings", warnings)

	if len(stats.Columns) > 0 {
		sb.WriteString("<details>\n<summary>Columns</summary>\n\n")
		sb.WriteString("| Column | Filled | Empty | Distinct |\n")
		sb.WriteString("|--------|--------|-------|----------|\n")
		for _, c := range stats.Columns {
			fmt.Fprintf(&sb, "| %s | %d | %d | %d |\n", escapeCell(c.Name), c.Filled, c.Empty, c.Distinct)
		}
		sb.WriteString("\n</details>\n")
	}
	return sb.String()
}

func writeViolations(sb *strings.Builder, title string, violations []policy.Violation) {
	if len(violations) == 0 {
		return
	}
	fmt.Fprintf(sb, "<details>\n<summary>%s (%d)</summary>\n\n", title, len(violations))
	sb.WriteString("| Row | Rule | Message |\n")
	sb.WriteString("|-----|------|---------|\n")
	for _, v := range violations {
		fmt.Fprintf(sb, "| %d | %s | %s |\n", v.Row+2, v.Rule, escapeCell(v.Message))
	}
	sb.WriteString("\n</details>\n\n")
}

// MarkdownTable renders a table as a markdown table.
func MarkdownTable(tbl *table.Table) string {
	var sb strings.Builder
	if len(tbl.Headers) == 0 {
		return ""
	}

	cells := make([]string, len(tbl.Headers))
	for i, h := range tbl.Headers {
		cells[i] = escapeCell(h)
	}
	sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	sb.WriteString("|" + strings.Repeat("---|", len(tbl.Headers)) + "\n")
	for _, r := range tbl.Rows {
		for i, v := range r.Project(tbl.Headers) {
			cells[i] = escapeCell(v)
		}
		sb.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}
	return sb.String()
}

var cellEscaper = strings.NewReplacer("|", `\|`, "\r\n", "<br>", "\n", "<br>")

func escapeCell(s string) string {
	return cellEscaper.Replace(s)
}
