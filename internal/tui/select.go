// Package tui provides interactive terminal UI components.
package tui

import (
	"fmt"
	"io"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	defaultListWidth  = 60
	defaultListHeight = 14
)

var runProgram = func(m tea.Model) (tea.Model, error) {
	return tea.NewProgram(m).Run()
}

// Choice is one selectable option in a picker.
type Choice struct {
	// Label is shown to the user.
	Label string
	// Value is returned when the choice is selected.
	Value string
}

type choiceItem struct {
	Choice
}

func (i choiceItem) FilterValue() string { return i.Label }

type choiceDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
}

func newChoiceDelegate() choiceDelegate {
	return choiceDelegate{
		normal: lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("252")),
		selected: lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(lipgloss.Color("230")).
			Background(lipgloss.Color("237")).
			Bold(true),
	}
}

func (d choiceDelegate) Height() int                         { return 1 }
func (d choiceDelegate) Spacing() int                        { return 0 }
func (d choiceDelegate) Update(tea.Msg, *list.Model) tea.Cmd { return nil }

func (d choiceDelegate) Render(w io.Writer, m list.Model, idx int, item list.Item) {
	choice, ok := item.(choiceItem)
	if !ok {
		return
	}

	style := d.normal
	if idx == m.Index() {
		style = d.selected
	}
	_, _ = fmt.Fprint(w, style.Render(choice.Label))
}

type selectModel struct {
	list     list.Model
	prompt   string
	value    string
	aborted  bool
	selected bool
}

func newSelectModel(prompt string, choices []Choice) *selectModel {
	items := make([]list.Item, len(choices))
	for i, c := range choices {
		items[i] = choiceItem{c}
	}

	l := list.New(items, newChoiceDelegate(), defaultListWidth, defaultListHeight)
	l.SetShowStatusBar(false)
	l.SetFilteringEnabled(false)
	l.SetShowHelp(false)
	l.SetShowTitle(false)
	l.SetShowPagination(false)
	l.DisableQuitKeybindings()

	return &selectModel{list: l, prompt: prompt}
}

func (m *selectModel) Init() tea.Cmd { return nil }

func (m *selectModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "enter":
			if item, ok := m.list.SelectedItem().(choiceItem); ok {
				m.value = item.Value
				m.selected = true
				return m, tea.Quit
			}
		case "ctrl+c", "q", "esc":
			m.aborted = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		if msg.Height > 6 {
			m.list.SetSize(defaultListWidth, min(defaultListHeight, msg.Height-4))
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m *selectModel) View() string {
	header := headerStyle.Render(m.prompt)
	help := helpStyle.Render("Up/Down navigate | Enter select | q cancel")
	return lipgloss.JoinVertical(lipgloss.Left, header, m.list.View(), help)
}

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("214")).
			MarginBottom(1)

	helpStyle = lipgloss.NewStyle().
			MarginTop(1).
			Foreground(lipgloss.Color("244"))
)

// SelectChoice shows an interactive picker and returns the selected
// value. Returns an error when the user cancels.
func SelectChoice(prompt string, choices []Choice) (string, error) {
	if len(choices) == 0 {
		return "", fmt.Errorf("no choices to select from")
	}

	final, err := runProgram(newSelectModel(prompt, choices))
	if err != nil {
		return "", fmt.Errorf("selection UI failed: %w", err)
	}

	m, ok := final.(*selectModel)
	if !ok || m.aborted || !m.selected {
		return "", fmt.Errorf("selection cancelled")
	}
	return m.value, nil
}
