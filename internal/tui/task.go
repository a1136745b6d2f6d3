package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"labscrub/internal/config"
	"labscrub/internal/sanitizer"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

type TaskKind int

const (
	AnalyzeTask TaskKind = iota
	FlagTask
	CleanTask
	VerifyTask
	RestoreTask
)

type TaskState int

const (
	TaskInputState TaskState = iota
	TaskFileSelectState
	TaskProfileSelectState
	TaskConfirmState
	TaskProgressState
	TaskResultState
)

// field is a form input bound to one config path.
type field struct {
	label string
	get   func(config.Config) string
	set   func(*config.Config, string)
}

var (
	registryField = field{"Course registry:",
		func(c config.Config) string { return c.RegistryPath },
		func(c *config.Config, v string) { c.RegistryPath = v }}
	instructionsField = field{"Lab instructions:",
		func(c config.Config) string { return c.InstructionsPath },
		func(c *config.Config, v string) { c.InstructionsPath = v }}
	reportField = field{"Analysis report:",
		func(c config.Config) string { return c.ReportPath },
		func(c *config.Config, v string) { c.ReportPath = v }}
)

type taskDef struct {
	title   string
	fields  []field
	profile bool
	confirm bool
	dryRun  bool
}

func (k TaskKind) def() taskDef {
	switch k {
	case AnalyzeTask:
		return taskDef{title: "🔍 Analyze courses", fields: []field{registryField, instructionsField, reportField}}
	case FlagTask:
		return taskDef{title: "🏷️  Flag cloud slice courses", fields: []field{registryField}, confirm: true, dryRun: true}
	case CleanTask:
		return taskDef{title: "🧹 Clean lab instructions", fields: []field{instructionsField, reportField}, profile: true, confirm: true, dryRun: true}
	case VerifyTask:
		return taskDef{title: "✅ Verify cleanup", fields: []field{instructionsField, reportField}, profile: true}
	case RestoreTask:
		return taskDef{title: "🔄 Restore instructions backup", fields: []field{instructionsField}, confirm: true}
	}
	return taskDef{}
}

type TaskModel struct {
	kind            TaskKind
	def             taskDef
	cfg             config.Config
	profiles        sanitizer.Profiles
	profileNames    []string
	selectedProfile int
	state           TaskState
	inputs          []textinput.Model
	focusedInput    int
	dryRun          bool
	progress        progress.Model
	progressVal     float64
	result          TaskResult
	files           []string
	selectedFile    int
	width           int
	height          int
}

type TaskCompleteMsg struct {
	Config config.Config
	Result TaskResult
}

func NewTaskModel(kind TaskKind, cfg config.Config, profiles sanitizer.Profiles) *TaskModel {
	def := kind.def()

	inputs := make([]textinput.Model, len(def.fields))
	for i, f := range def.fields {
		input := textinput.New()
		input.Placeholder = f.get(config.Default())
		input.SetValue(f.get(cfg))
		inputs[i] = input
	}
	if len(inputs) > 0 {
		inputs[0].Focus()
	}

	m := &TaskModel{
		kind:         kind,
		def:          def,
		cfg:          cfg,
		profiles:     profiles,
		profileNames: profiles.Names(),
		state:        TaskInputState,
		inputs:       inputs,
		progress: progress.New(
			progress.WithSolidFill("#00aadd"),
			progress.WithoutPercentage(),
		),
	}
	if kind == VerifyTask {
		m.selectProfile("final")
	}
	return m
}

func (m *TaskModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *TaskModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

// CanLeave reports whether esc may return to the menu.
func (m *TaskModel) CanLeave() bool {
	return m.state == TaskInputState || m.state == TaskResultState
}

func (m *TaskModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch m.state {
		case TaskInputState:
			return m.updateInputState(msg)
		case TaskFileSelectState:
			return m.updateFileSelectState(msg)
		case TaskProfileSelectState:
			return m.updateProfileSelectState(msg)
		case TaskConfirmState:
			return m.updateConfirmState(msg)
		case TaskProgressState:
			return m, nil
		case TaskResultState:
			if msg.String() == "enter" || msg.String() == " " {
				m.reset()
			}
			return m, nil
		}

	case TaskCompleteMsg:
		m.cfg = msg.Config
		m.result = msg.Result
		m.progressVal = 1
		m.state = TaskResultState
		return m, nil
	}

	return m, nil
}

func (m *TaskModel) updateInputState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	n := len(m.inputs)
	switch msg.String() {
	case "tab", "down":
		m.focusedInput = (m.focusedInput + 1) % n
		m.updateInputFocus()
		return m, nil
	case "shift+tab", "up":
		m.focusedInput = (m.focusedInput - 1 + n) % n
		m.updateInputFocus()
		return m, nil
	case "ctrl+f":
		return m.browseFiles()
	case "ctrl+d":
		if m.def.dryRun {
			m.dryRun = !m.dryRun
		}
		return m, nil
	case "enter":
		if !m.isFormValid() {
			return m, nil
		}
		m.applyInputs()
		if m.def.profile {
			m.state = TaskProfileSelectState
			return m, nil
		}
		return m.confirmOrStart()
	}

	var cmd tea.Cmd
	m.inputs[m.focusedInput], cmd = m.inputs[m.focusedInput].Update(msg)
	return m, cmd
}

func (m *TaskModel) updateFileSelectState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedFile > 0 {
			m.selectedFile--
		}
	case "down", "j":
		if m.selectedFile < len(m.files)-1 {
			m.selectedFile++
		}
	case "enter":
		if len(m.files) > 0 {
			m.inputs[m.focusedInput].SetValue(m.files[m.selectedFile])
			m.state = TaskInputState
		}
	case "esc":
		m.state = TaskInputState
	}
	return m, nil
}

func (m *TaskModel) updateProfileSelectState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if m.selectedProfile > 0 {
			m.selectedProfile--
		}
	case "down", "j":
		if m.selectedProfile < len(m.profileNames)-1 {
			m.selectedProfile++
		}
	case "enter":
		if len(m.profileNames) > 0 {
			return m.confirmOrStart()
		}
	case "esc":
		m.state = TaskInputState
	}
	return m, nil
}

func (m *TaskModel) updateConfirmState(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "d":
		if m.def.dryRun {
			m.dryRun = !m.dryRun
		}
	case "y", "enter":
		return m.start()
	case "n", "esc":
		m.state = TaskInputState
	}
	return m, nil
}

func (m *TaskModel) confirmOrStart() (tea.Model, tea.Cmd) {
	if m.def.confirm {
		m.state = TaskConfirmState
		return m, nil
	}
	return m.start()
}

func (m *TaskModel) browseFiles() (tea.Model, tea.Cmd) {
	pattern := "*.ts"
	if m.def.fields[m.focusedInput].label == reportField.label {
		pattern = "*.json"
	}

	cwd, _ := os.Getwd()
	files, err := filepath.Glob(filepath.Join(cwd, "*", "*", pattern))
	if err != nil {
		return m, ShowError(err)
	}
	local, _ := filepath.Glob(filepath.Join(cwd, pattern))
	files = append(local, files...)

	for i, file := range files {
		rel, _ := filepath.Rel(cwd, file)
		files[i] = rel
	}

	m.files = files
	m.selectedFile = 0
	m.state = TaskFileSelectState
	return m, nil
}

func (m *TaskModel) updateInputFocus() {
	for i := range m.inputs {
		if i == m.focusedInput {
			m.inputs[i].Focus()
		} else {
			m.inputs[i].Blur()
		}
	}
}

func (m *TaskModel) isFormValid() bool {
	for _, input := range m.inputs {
		if strings.TrimSpace(input.Value()) == "" {
			return false
		}
	}
	return true
}

func (m *TaskModel) applyInputs() {
	for i, f := range m.def.fields {
		f.set(&m.cfg, strings.TrimSpace(m.inputs[i].Value()))
	}
}

func (m *TaskModel) selectProfile(name string) {
	for i, n := range m.profileNames {
		if n == name {
			m.selectedProfile = i
		}
	}
}

func (m *TaskModel) profile() *sanitizer.Profile {
	if !m.def.profile || len(m.profileNames) == 0 {
		return nil
	}
	return m.profiles[m.profileNames[m.selectedProfile]]
}

func (m *TaskModel) start() (tea.Model, tea.Cmd) {
	m.state = TaskProgressState
	m.progressVal = 0
	return m, m.run()
}

func (m *TaskModel) run() tea.Cmd {
	kind, cfg, profile, dryRun := m.kind, m.cfg, m.profile(), m.dryRun
	return func() tea.Msg {
		return TaskCompleteMsg{Config: cfg, Result: runTask(kind, cfg, profile, dryRun)}
	}
}

func (m *TaskModel) reset() {
	m.state = TaskInputState
	m.progressVal = 0
	m.result = TaskResult{}
	m.dryRun = false
	m.focusedInput = 0
	m.updateInputFocus()
}

func (m *TaskModel) View() string {
	switch m.state {
	case TaskInputState:
		return m.renderInputForm()
	case TaskFileSelectState:
		return m.renderFileSelector()
	case TaskProfileSelectState:
		return m.renderProfileSelector()
	case TaskConfirmState:
		return m.renderConfirm()
	case TaskProgressState:
		return m.renderProgress()
	case TaskResultState:
		return m.renderResult()
	}
	return ""
}

func (m *TaskModel) renderInputForm() string {
	st := newAdaptiveStyles(m.width)

	var form []string
	for i, f := range m.def.fields {
		form = append(form, labelStyle.Render(f.label)+"\n"+m.inputs[i].View())
	}
	if m.def.dryRun {
		form = append(form, labelStyle.Render("Dry run:")+" "+checkbox(m.dryRun))
	}

	help := "Tab/Shift+Tab: Navigate • Ctrl+F: Browse files • Enter: Continue • Esc: Back to menu"
	if m.def.dryRun {
		help = "Tab/Shift+Tab: Navigate • Ctrl+F: Browse files • Ctrl+D: Toggle dry run • Enter: Continue • Esc: Back to menu"
	}

	return place(m.width, m.height, lipgloss.Top, lipgloss.JoinVertical(lipgloss.Left,
		st.title.Render(m.def.title),
		st.form.Render(strings.Join(form, "\n\n")),
		st.help.Render(help),
	))
}

func (m *TaskModel) renderFileSelector() string {
	title := titleStyle.Render("📁 Select File")

	if len(m.files) == 0 {
		content := warningStyle.Render("No matching files found below the current directory")
		help := helpStyle.Render("Esc: Back to form")
		return lipgloss.JoinVertical(lipgloss.Left, title, content, help)
	}

	help := helpStyle.Render("↑/↓: Navigate • Enter: Select • Esc: Cancel")
	return lipgloss.JoinVertical(lipgloss.Left, title, renderList(m.files, m.selectedFile), help)
}

func (m *TaskModel) renderProfileSelector() string {
	title := titleStyle.Render("📋 Select Profile")

	labels := make([]string, len(m.profileNames))
	for i, name := range m.profileNames {
		labels[i] = name
		if p := m.profiles[name]; p.Description != "" {
			labels[i] = fmt.Sprintf("%-12s %s", name, p.Description)
		}
	}

	help := helpStyle.Render("↑/↓: Navigate • Enter: Select • Esc: Back to form")
	return lipgloss.JoinVertical(lipgloss.Left, title, renderList(labels, m.selectedProfile), help)
}

func (m *TaskModel) renderConfirm() string {
	title := titleStyle.Render("⚠️  Confirm")

	var details []string
	for i, f := range m.def.fields {
		details = append(details, fmt.Sprintf("  %s %s", f.label, m.inputs[i].Value()))
	}
	if p := m.profile(); p != nil {
		details = append(details, fmt.Sprintf("  Profile: %s (source: %s)", p.Name, p.Source))
	}

	var warning string
	switch {
	case m.dryRun:
		warning = successStyle.Render("Dry run: no file will be written")
	case m.kind == RestoreTask:
		warning = warningStyle.Render("All cleanup passes applied since the backup will be lost!")
	default:
		warning = warningStyle.Render("The file will be rewritten in place")
	}

	help := "y/Enter: Run • n/Esc: Back to form"
	if m.def.dryRun {
		help = "y/Enter: Run • d: Toggle dry run • n/Esc: Back to form"
	}

	return lipgloss.JoinVertical(lipgloss.Left, title, strings.Join(details, "\n"), "", warning, helpStyle.Render(help))
}

func (m *TaskModel) renderProgress() string {
	st := newAdaptiveStyles(m.width)

	progressWidth := m.width - 10
	if progressWidth < 20 {
		progressWidth = 20
	}
	if progressWidth > 80 {
		progressWidth = 80
	}
	m.progress.Width = progressWidth

	content := progressStyle.Render(m.progress.ViewAs(m.progressVal))
	return place(m.width, m.height, lipgloss.Center, lipgloss.JoinVertical(lipgloss.Left,
		st.title.Render(m.def.title),
		content,
		st.help.Render("Please wait..."),
	))
}

func (m *TaskModel) renderResult() string {
	title := titleStyle.Render(m.def.title)

	var status string
	if m.result.Err != nil {
		status = errorStyle.Render(fmt.Sprintf("❌ Failed: %v", m.result.Err))
	} else {
		status = successStyle.Render("✅ Done")
	}

	parts := []string{title, status, strings.Join(m.result.Lines, "\n")}
	for _, w := range m.result.Warnings {
		parts = append(parts, warningStyle.Render("⚠️  "+w))
	}
	parts = append(parts, helpStyle.Render("Enter: Run again • Esc: Back to menu"))

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func renderList(items []string, selected int) string {
	var list string
	for i, item := range items {
		cursor := " "
		style := menuItemStyle
		if i == selected {
			cursor = ">"
			style = selectedMenuItemStyle
		}
		list += fmt.Sprintf("%s %s\n", cursor, style.Render(item))
	}
	return list
}

func checkbox(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}
