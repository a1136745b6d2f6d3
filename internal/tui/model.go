package tui

import (
	"fmt"

	"labscrub/internal/config"
	"labscrub/internal/sanitizer"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type Screen int

const (
	MenuScreen Screen = iota
	TaskScreen
)

type Model struct {
	currentScreen Screen
	cfg           config.Config
	profiles      sanitizer.Profiles
	menuModel     *MenuModel
	taskModel     *TaskModel
	err           error
	quitting      bool
	width         int
	height        int
}

// NewModel builds the root model. Paths typed into a task form are carried
// over to the tasks opened after it.
func NewModel(cfg config.Config) (Model, error) {
	profiles, err := sanitizer.LoadProfiles(cfg.RulesPath)
	if err != nil {
		return Model{}, err
	}
	return Model{
		currentScreen: MenuScreen,
		cfg:           cfg,
		profiles:      profiles,
		menuModel:     NewMenuModel(),
	}, nil
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.menuModel.SetSize(msg.Width, msg.Height)
		if m.taskModel != nil {
			m.taskModel.SetSize(msg.Width, msg.Height)
		}
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			m.quitting = true
			return m, tea.Quit
		case "q":
			// q is ordinary text inside a task form
			if m.currentScreen == MenuScreen {
				m.quitting = true
				return m, tea.Quit
			}
		case "esc":
			if m.currentScreen == TaskScreen && m.taskModel.CanLeave() {
				m.currentScreen = MenuScreen
				m.err = nil
				return m, nil
			}
		}

	case OpenTaskMsg:
		m.taskModel = NewTaskModel(msg.Kind, m.cfg, m.profiles)
		m.taskModel.SetSize(m.width, m.height)
		m.currentScreen = TaskScreen
		m.err = nil
		return m, m.taskModel.Init()

	case TaskCompleteMsg:
		m.cfg = msg.Config

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	switch m.currentScreen {
	case MenuScreen:
		newMenuModel, cmd := m.menuModel.Update(msg)
		m.menuModel = newMenuModel.(*MenuModel)
		return m, cmd
	case TaskScreen:
		newTaskModel, cmd := m.taskModel.Update(msg)
		m.taskModel = newTaskModel.(*TaskModel)
		return m, cmd
	}

	return m, nil
}

func (m Model) View() string {
	if m.quitting {
		return "Bye! 👋\n"
	}

	var content string
	switch m.currentScreen {
	case MenuScreen:
		content = m.menuModel.View()
	case TaskScreen:
		content = m.taskModel.View()
	}

	if m.err != nil {
		content += lipgloss.NewStyle().Margin(1, 0).Render(errorStyle.Render(fmt.Sprintf("Error: %v", m.err)))
	}

	return content
}

type OpenTaskMsg struct {
	Kind TaskKind
}

type ErrorMsg struct {
	Err error
}

func OpenTask(kind TaskKind) tea.Cmd {
	return func() tea.Msg {
		return OpenTaskMsg{Kind: kind}
	}
}

func ShowError(err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Err: err}
	}
}
