package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/rezmoss/sctk/internal/analysis"
	"github.com/rezmoss/sctk/internal/table"
)

// View modes
type viewMode int

const (
	listView viewMode = iota
	detailView
	jsonView
	searchView
	filterView
	helpView
)

// RowItem represents a list item
type RowItem struct {
	row     *table.Row
	headers []string
	title   string
	index   int // position in the input table
}

func (i RowItem) Title() string {
	if i.title == "" {
		return dimStyle.Render(fmt.Sprintf("(row %d)", i.index+2))
	}
	return i.title
}

func (i RowItem) Description() string {
	var parts []string
	for _, h := range i.headers {
		v := i.row.Value(h)
		if v == "" || v == i.title {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s: %s", h, oneLine(v)))
		if len(parts) == 2 {
			break
		}
	}
	return strings.Join(parts, " | ")
}

func (i RowItem) FilterValue() string {
	return strings.Join(i.row.Project(i.headers), " ")
}

func oneLine(s string) string {
	return strings.ReplaceAll(s, "\n", " ")
}

// Model is the main TUI model
type Model struct {
	tbl         *table.Table
	titleColumn string
	rows        []RowItem
	filtered    []RowItem
	list        list.Model
	viewport    viewport.Model
	textInput   textinput.Model
	mode        viewMode
	selected    RowItem
	width       int
	height      int
	searchQuery string
	filterExpr  string
	filterErr   error
	stats       analysis.TableStats
	ready       bool
	quitting    bool
}

// Key bindings
type keyMap struct {
	Up       key.Binding
	Down     key.Binding
	Enter    key.Binding
	Back     key.Binding
	Quit     key.Binding
	Search   key.Binding
	Filter   key.Binding
	Help     key.Binding
	ClearAll key.Binding
	JSON     key.Binding
}

var keys = keyMap{
	Up: key.NewBinding(
		key.WithKeys("up", "k"),
		key.WithHelp("↑/k", "up"),
	),
	Down: key.NewBinding(
		key.WithKeys("down", "j"),
		key.WithHelp("↓/j", "down"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "select"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc", "backspace"),
		key.WithHelp("esc", "back"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Filter: key.NewBinding(
		key.WithKeys("f"),
		key.WithHelp("f", "filter column"),
	),
	Help: key.NewBinding(
		key.WithKeys("?"),
		key.WithHelp("?", "help"),
	),
	ClearAll: key.NewBinding(
		key.WithKeys("c"),
		key.WithHelp("c", "clear filters"),
	),
	JSON: key.NewBinding(
		key.WithKeys("J"),
		key.WithHelp("J", "view JSON"),
	),
}

// NewModel creates a browser over the rows of tbl, titled by
// titleColumn. An empty or unknown titleColumn uses the first column.
func NewModel(tbl *table.Table, titleColumn string) Model {
	if !tbl.HasColumn(titleColumn) && len(tbl.Headers) > 0 {
		titleColumn = tbl.Headers[0]
	}

	rows := make([]RowItem, len(tbl.Rows))
	for i, r := range tbl.Rows {
		rows[i] = RowItem{row: r, headers: tbl.Headers, title: oneLine(r.Value(titleColumn)), index: i}
	}
	// Sort rows by title
	sort.SliceStable(rows, func(i, j int) bool {
		return rows[i].title < rows[j].title
	})

	// Create list
	delegate := list.NewDefaultDelegate()
	delegate.Styles.SelectedTitle = selectedStyle
	delegate.Styles.SelectedDesc = selectedStyle

	l := list.New(toItems(rows), delegate, 0, 0)
	l.Title = "📋 sctk Browser"
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = titleStyle

	// Create text input for search
	ti := textinput.New()
	ti.Placeholder = "Search rows..."
	ti.CharLimit = 200

	// Create viewport for details
	vp := viewport.New(0, 0)

	return Model{
		tbl:         tbl,
		titleColumn: titleColumn,
		rows:        rows,
		filtered:    rows,
		list:        l,
		viewport:    vp,
		textInput:   ti,
		mode:        listView,
		stats:       analysis.ComputeStats(tbl, 3),
	}
}

func toItems(rows []RowItem) []list.Item {
	items := make([]list.Item, len(rows))
	for i, r := range rows {
		items[i] = r
	}
	return items
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.list.SetSize(msg.Width, msg.Height-4)
		m.viewport.Width = msg.Width
		m.viewport.Height = msg.Height - 6
		m.ready = true
		return m, nil

	case tea.KeyMsg:
		// Global keys
		if key.Matches(msg, keys.Quit) && m.mode != searchView && m.mode != filterView {
			m.quitting = true
			return m, tea.Quit
		}

		switch m.mode {
		case listView:
			if m.list.FilterState() == list.Filtering {
				break
			}
			switch {
			case key.Matches(msg, keys.Enter):
				if i, ok := m.list.SelectedItem().(RowItem); ok {
					m.selected = i
					m.mode = detailView
					m.viewport.SetContent(m.renderRowDetail(i))
					m.viewport.GotoTop()
				}
				return m, nil
			case key.Matches(msg, keys.Search):
				m.mode = searchView
				m.textInput.SetValue("")
				m.textInput.Placeholder = "Search all columns..."
				m.textInput.Focus()
				return m, textinput.Blink
			case key.Matches(msg, keys.Filter):
				m.mode = filterView
				m.textInput.SetValue("")
				m.textInput.Placeholder = "column=value or column=value"
				m.textInput.Focus()
				return m, textinput.Blink
			case key.Matches(msg, keys.Help):
				m.mode = helpView
				m.viewport.SetContent(m.renderHelp())
				m.viewport.GotoTop()
				return m, nil
			case key.Matches(msg, keys.ClearAll):
				m.searchQuery = ""
				m.filterExpr = ""
				m.applyFilters()
				return m, nil
			}

		case detailView:
			switch {
			case key.Matches(msg, keys.Back):
				m.mode = listView
			case key.Matches(msg, keys.JSON):
				m.mode = jsonView
				m.viewport.SetContent(m.renderRowJSON(m.selected))
				m.viewport.GotoTop()
			default:
				scroll(&m.viewport, msg)
			}
			return m, nil

		case jsonView:
			switch {
			case key.Matches(msg, keys.Back), msg.String() == "d":
				m.mode = detailView
				m.viewport.SetContent(m.renderRowDetail(m.selected))
				m.viewport.GotoTop()
			default:
				scroll(&m.viewport, msg)
			}
			return m, nil

		case searchView, filterView:
			switch msg.String() {
			case "enter":
				if m.mode == searchView {
					m.searchQuery = m.textInput.Value()
				} else {
					m.filterExpr = m.textInput.Value()
				}
				m.applyFilters()
				m.mode = listView
				m.textInput.Blur()
			case "esc":
				m.mode = listView
				m.textInput.Blur()
			default:
				m.textInput, cmd = m.textInput.Update(msg)
				cmds = append(cmds, cmd)
			}
			return m, tea.Batch(cmds...)

		case helpView:
			if key.Matches(msg, keys.Back) || msg.String() == "?" {
				m.mode = listView
			}
			return m, nil
		}
	}

	// Update list in list view
	if m.mode == listView {
		m.list, cmd = m.list.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

func scroll(vp *viewport.Model, msg tea.KeyMsg) {
	switch msg.String() {
	case "up", "k":
		vp.ScrollUp(1)
	case "down", "j":
		vp.ScrollDown(1)
	case "pgup", "pageup", "ctrl+u":
		vp.HalfPageUp()
	case "pgdown", "pagedown", "ctrl+d":
		vp.HalfPageDown()
	case "home", "g":
		vp.GotoTop()
	case "end", "G":
		vp.GotoBottom()
	}
}

// applyFilters narrows the list by the search query (case-insensitive,
// any column) and the column filter ("col=value or col=value").
func (m *Model) applyFilters() {
	m.filterErr = nil

	keep := make(map[*table.Row]bool)
	if m.filterExpr != "" {
		cond, err := table.ParseCondition(m.filterExpr)
		if err == nil {
			var out *table.Table
			out, err = m.tbl.Apply(table.Filter{Kind: table.Contains, Conditions: []table.Condition{cond}})
			if err == nil {
				for _, r := range out.Rows {
					keep[r] = true
				}
			}
		}
		if err != nil {
			m.filterErr = err
			m.filterExpr = ""
		}
	}

	query := strings.ToLower(m.searchQuery)
	var filtered []RowItem
	for _, r := range m.rows {
		// Apply column filter
		if m.filterExpr != "" && !keep[r.row] {
			continue
		}
		// Apply search filter
		if query != "" && !strings.Contains(strings.ToLower(r.FilterValue()), query) {
			continue
		}
		filtered = append(filtered, r)
	}

	m.filtered = filtered
	m.list.SetItems(toItems(filtered))
}

// Run starts the interactive TUI
func Run(tbl *table.Table, titleColumn string) error {
	p := tea.NewProgram(
		NewModel(tbl, titleColumn),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}
