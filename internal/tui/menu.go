package tui

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type menuItem struct {
	label string
	kind  TaskKind
	exit  bool
}

type MenuModel struct {
	items  []menuItem
	cursor int
	width  int
	height int
}

func NewMenuModel() *MenuModel {
	return &MenuModel{
		items: []menuItem{
			{label: "🔍 Analyze courses", kind: AnalyzeTask},
			{label: "🏷️  Flag cloud slice courses", kind: FlagTask},
			{label: "🧹 Clean lab instructions", kind: CleanTask},
			{label: "✅ Verify cleanup", kind: VerifyTask},
			{label: "🔄 Restore instructions backup", kind: RestoreTask},
			{label: "🚪 Exit", exit: true},
		},
	}
}

func (m *MenuModel) Init() tea.Cmd {
	return nil
}

func (m *MenuModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *MenuModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.items)-1 {
				m.cursor++
			}
		case "enter", " ":
			item := m.items[m.cursor]
			if item.exit {
				return m, tea.Quit
			}
			return m, OpenTask(item.kind)
		}
	}
	return m, nil
}

func (m *MenuModel) View() string {
	st := newAdaptiveStyles(m.width)

	title := st.title.Render("🧪 labscrub - VM-only lab cleanup")

	var menu string
	for i, item := range m.items {
		cursor := " "
		choice := menuItemStyle.Render(item.label)
		if m.cursor == i {
			cursor = ">"
			choice = selectedMenuItemStyle.Render(item.label)
		}
		menu += fmt.Sprintf("%s %s\n", cursor, choice)
	}

	help := st.help.Render("Use ↑/↓ (or j/k) to navigate • Enter to select • q to quit")

	return place(m.width, m.height, lipgloss.Center,
		lipgloss.JoinVertical(lipgloss.Center, title, menu, help))
}
