package tui

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	statusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#6124DF")).
			Padding(0, 1)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4"))

	detailKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#7D56F4")).
			Bold(true)

	detailValueStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#FAFAFA"))

	warningStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF6B6B")).
			Bold(true)

	dimStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))

	// JSON syntax highlighting styles
	jsonKeyStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#82AAFF")).
			Bold(true)

	jsonStringStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#C3E88D"))

	jsonNumberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#F78C6C"))

	jsonBoolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5370"))

	jsonNullStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5370")).
			Italic(true)

	jsonBracketStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#89DDFF"))

	jsonColonStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#89DDFF"))
)

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	if !m.ready {
		return "Loading..."
	}

	var content string

	switch m.mode {
	case listView:
		content = m.renderListView()
	case detailView:
		content = m.renderDetailView()
	case jsonView:
		content = m.renderJSONView()
	case searchView, filterView:
		content = m.renderSearchView()
	case helpView:
		content = m.renderHelpView()
	}

	return content
}

func (m Model) renderListView() string {
	var status strings.Builder

	// Status bar
	status.WriteString(statusBarStyle.Render(
		fmt.Sprintf(" 📋 %d of %d rows", len(m.filtered), len(m.rows)),
	))

	if m.searchQuery != "" {
		status.WriteString(" ")
		status.WriteString(statusBarStyle.Render(
			fmt.Sprintf(" 🔍 \"%s\"", m.searchQuery),
		))
	}

	if m.filterExpr != "" {
		status.WriteString(" ")
		status.WriteString(statusBarStyle.Render(
			fmt.Sprintf(" 📁 %s", m.filterExpr),
		))
	}

	help := helpStyle.Render(" / search • f filter column • enter details • c clear • ? help • q quit")

	if m.filterErr != nil {
		return fmt.Sprintf("%s\n%s\n%s\n%s",
			status.String(),
			m.list.View(),
			warningStyle.Render("⚠ "+m.filterErr.Error()),
			help,
		)
	}

	return fmt.Sprintf("%s\n%s\n%s",
		status.String(),
		m.list.View(),
		help,
	)
}

func (m Model) renderDetailView() string {
	title := titleStyle.Render(" 📄 Row Details ")
	help := helpStyle.Render(" ↑/↓ scroll • PgUp/PgDn/Ctrl+u/d half-page • J view JSON • esc back • q quit")

	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

func (m Model) renderJSONView() string {
	title := titleStyle.Render(" 🔧 Row JSON ")
	rowTitle := detailValueStyle.Render(m.selected.title)
	help := helpStyle.Render(" ↑/↓ scroll • PgUp/PgDn/Ctrl+u/d half-page • g/G top/bottom • d details • esc back")

	return fmt.Sprintf("%s %s\n\n%s\n\n%s", title, rowTitle, m.viewport.View(), help)
}

func (m Model) renderSearchView() string {
	var title string
	if m.mode == searchView {
		title = titleStyle.Render(" 🔍 Search ")
	} else {
		title = titleStyle.Render(" 📁 Filter by Column ")
	}

	return fmt.Sprintf("%s\n\n%s\n\n%s",
		title,
		m.textInput.View(),
		helpStyle.Render(" enter confirm • esc cancel"),
	)
}

func (m Model) renderHelpView() string {
	title := titleStyle.Render(" ❓ Help ")
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), helpStyle.Render(" esc or ? to close"))
}

// renderRowDetail lists every column of the row in table order. Empty
// cells are shown dimmed.
func (m Model) renderRowDetail(item RowItem) string {
	var sb strings.Builder

	sb.WriteString(detailKeyStyle.Render("Row: "))
	sb.WriteString(dimStyle.Render(fmt.Sprintf("%d", item.index+2)))
	sb.WriteString("\n\n")

	for _, h := range item.headers {
		v := item.row.Value(h)
		sb.WriteString(detailKeyStyle.Render(h + ": "))
		switch {
		case v == "":
			sb.WriteString(dimStyle.Render("(empty)"))
		case strings.Contains(v, "\n"):
			for _, line := range strings.Split(v, "\n") {
				sb.WriteString("\n  • ")
				sb.WriteString(detailValueStyle.Render(line))
			}
		default:
			sb.WriteString(detailValueStyle.Render(v))
		}
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(dimStyle.Render("Press 'J' to view the row as JSON"))

	return sb.String()
}

// renderRowJSON renders the row as syntax-highlighted JSON
func (m Model) renderRowJSON(item RowItem) string {
	raw, err := json.Marshal(item.row)
	if err == nil {
		var pretty strings.Builder
		enc := json.NewEncoder(&pretty)
		enc.SetIndent("", "  ")
		var v json.RawMessage = raw
		if err = enc.Encode(v); err == nil {
			return syntaxHighlightJSON(strings.TrimRight(pretty.String(), "\n"))
		}
	}
	return warningStyle.Render("Error rendering JSON: " + err.Error())
}

// syntaxHighlightJSON applies color syntax highlighting to JSON
func syntaxHighlightJSON(jsonStr string) string {
	var result strings.Builder
	inString := false
	inKey := false
	stringStart := 0
	i := 0

	runes := []rune(jsonStr)
	length := len(runes)

	for i < length {
		ch := runes[i]

		switch {
		case ch == '"' && (i == 0 || runes[i-1] != '\\'):
			if !inString {
				// Starting a string
				inString = true
				stringStart = i

				// Check if this is a key (look ahead for colon)
				inKey = false
				for j := i + 1; j < length; j++ {
					if runes[j] == '"' && runes[j-1] != '\\' {
						// End of string, check what comes next
						for k := j + 1; k < length; k++ {
							if runes[k] == ':' {
								inKey = true
								break
							} else if runes[k] != ' ' && runes[k] != '\t' && runes[k] != '\n' {
								break
							}
						}
						break
					}
				}
			} else {
				// Ending a string
				inString = false
				strContent := string(runes[stringStart : i+1])

				if inKey {
					result.WriteString(jsonKeyStyle.Render(strContent))
				} else {
					result.WriteString(jsonStringStyle.Render(strContent))
				}
				i++
				continue
			}

		case !inString && (ch == '{' || ch == '}' || ch == '[' || ch == ']'):
			result.WriteString(jsonBracketStyle.Render(string(ch)))
			i++
			continue

		case !inString && ch == ':':
			result.WriteString(jsonColonStyle.Render(": "))
			i++
			// Skip the space after colon if present
			if i < length && runes[i] == ' ' {
				i++
			}
			continue

		case !inString && ch == ',':
			result.WriteString(jsonColonStyle.Render(","))
			i++
			continue

		case !inString && (ch == 't' || ch == 'f'):
			// Check for true/false
			if i+4 <= length && string(runes[i:i+4]) == "true" {
				result.WriteString(jsonBoolStyle.Render("true"))
				i += 4
				continue
			}
			if i+5 <= length && string(runes[i:i+5]) == "false" {
				result.WriteString(jsonBoolStyle.Render("false"))
				i += 5
				continue
			}

		case !inString && ch == 'n':
			// Check for null
			if i+4 <= length && string(runes[i:i+4]) == "null" {
				result.WriteString(jsonNullStyle.Render("null"))
				i += 4
				continue
			}

		case !inString && (ch >= '0' && ch <= '9' || ch == '-'):
			// Parse number
			numStart := i
			for i < length && (runes[i] >= '0' && runes[i] <= '9' || runes[i] == '.' || runes[i] == '-' || runes[i] == 'e' || runes[i] == 'E' || runes[i] == '+') {
				i++
			}
			result.WriteString(jsonNumberStyle.Render(string(runes[numStart:i])))
			continue
		}

		if !inString {
			result.WriteRune(ch)
		}
		i++
	}

	return result.String()
}

func (m Model) renderHelp() string {
	var sb strings.Builder

	sb.WriteString(detailKeyStyle.Render("Navigation"))
	sb.WriteString("\n")
	sb.WriteString("  ↑/k           Move up\n")
	sb.WriteString("  ↓/j           Move down\n")
	sb.WriteString("  PgUp/Ctrl+u   Half page up\n")
	sb.WriteString("  PgDn/Ctrl+d   Half page down\n")
	sb.WriteString("  g/G           Go to top/bottom (in detail views)\n")
	sb.WriteString("  enter         View row details\n")
	sb.WriteString("  esc           Go back\n")
	sb.WriteString("  q             Quit\n")
	sb.WriteString("\n")

	sb.WriteString(detailKeyStyle.Render("Views"))
	sb.WriteString("\n")
	sb.WriteString("  J           View the row as JSON\n")
	sb.WriteString("  d           Switch back to detail view (in JSON view)\n")
	sb.WriteString("\n")

	sb.WriteString(detailKeyStyle.Render("Search & Filter"))
	sb.WriteString("\n")
	sb.WriteString("  /           Search all columns\n")
	sb.WriteString("  f           Filter by column: col=value or col=value\n")
	sb.WriteString("  c           Clear all filters\n")
	sb.WriteString("\n")

	sb.WriteString(detailKeyStyle.Render("Columns"))
	sb.WriteString("\n")
	for _, c := range m.stats.Columns {
		sb.WriteString(fmt.Sprintf("  %-30s %d filled, %d distinct\n", c.Name, c.Filled, c.Distinct))
	}

	return sb.String()
}
