package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/suderio/roundkeeper/internal/engine"
	"github.com/suderio/roundkeeper/internal/session"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1).
			MarginBottom(1)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#999999"))

	stateBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#874BFD")).
			Padding(1, 2)

	logBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#04B575")).
			Padding(0, 1)

	autocompleteStyle = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(lipgloss.Color("#F25D94"))
)

type suggestion string

func (s suggestion) Title() string       { return string(s) }
func (s suggestion) Description() string { return "" }
func (s suggestion) FilterValue() string { return string(s) }

type replModel struct {
	app         *session.Manager
	textInput   textinput.Model
	viewport    viewport.Model
	suggestions list.Model
	history     []string
	historyIdx  int
	logContent  string
	width       int
	height      int
	showList    bool
}

func newREPLModel(app *session.Manager) replModel {
	ti := textinput.New()
	ti.Placeholder = "Enter command (e.g., next)..."
	ti.Focus()
	ti.CharLimit = 256
	ti.Width = 60

	vp := viewport.New(0, 0)
	welcome := "Welcome to roundkeeper!\nType 'hint' for the command list, 'exit' to quit."
	vp.SetContent(welcome)

	// Configure a minimalist list for autocomplete
	delegate := list.NewDefaultDelegate()
	delegate.ShowDescription = false
	delegate.SetHeight(1)
	delegate.SetSpacing(0)
	sugList := list.New([]list.Item{}, delegate, 50, 7)
	sugList.SetShowTitle(false)
	sugList.SetShowStatusBar(false)
	sugList.SetFilteringEnabled(false) // We filter manually
	sugList.SetShowHelp(false)

	return replModel{
		app:         app,
		textInput:   ti,
		viewport:    vp,
		suggestions: sugList,
		history:     []string{},
		historyIdx:  -1,
		logContent:  welcome,
	}
}

func (m *replModel) Init() tea.Cmd {
	return textinput.Blink
}

func (m *replModel) updateSuggestions() {
	val := m.textInput.Value()
	var items []list.Item

	defer func() {
		m.suggestions.SetItems(items)
		m.showList = len(items) > 0
		if m.showList {
			h := len(items)
			if h > 10 {
				h = 10
			}
			listHeight := h
			if listHeight > 0 && listHeight < 4 {
				listHeight = 4
			}
			m.suggestions.SetHeight(listHeight)
			m.suggestions.ResetSelected()
		}
	}()

	if val == "" {
		return
	}

	baseCmds := []string{
		"start with: ", "next", "prev",
		"effect on: ", "clear on: ", "trigger name: ",
		"remove ", "resolve", "end",
		"log", "search ", "summary", "hint",
		"exit", "quit",
	}

	for _, c := range baseCmds {
		if strings.HasPrefix(strings.ToLower(c), strings.ToLower(val)) && len(val) < len(c) {
			items = append(items, suggestion(c))
		}
	}

	// Participant completion when typing "on: " or after "remove "
	if strings.Contains(strings.ToLower(val), " on: ") {
		parts := strings.SplitN(strings.ToLower(val), " on: ", 2)
		if len(parts) == 2 && !strings.Contains(parts[1], " ") {
			targetPrefix := parts[1]
			baseStr := val[:len(val)-len(targetPrefix)]
			for _, p := range m.app.Combat().Participants() {
				if strings.HasPrefix(strings.ToLower(p.ID), targetPrefix) {
					items = append(items, suggestion(baseStr+p.ID+" "))
				}
			}
		}
	} else if strings.HasPrefix(strings.ToLower(val), "remove ") {
		targetPrefix := strings.ToLower(strings.TrimPrefix(val, "remove "))
		for _, p := range m.app.Combat().Participants() {
			if strings.HasPrefix(strings.ToLower(p.ID), targetPrefix) {
				items = append(items, suggestion("remove "+p.ID))
			}
		}
	}
}

func (m *replModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var (
		tiCmd tea.Cmd
		vpCmd tea.Cmd
		lsCmd tea.Cmd
	)

	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit

		case tea.KeyUp:
			if m.showList {
				m.suggestions, lsCmd = m.suggestions.Update(msg)
			} else {
				if len(m.history) > 0 {
					if m.historyIdx == -1 {
						m.historyIdx = len(m.history) - 1
					} else if m.historyIdx > 0 {
						m.historyIdx--
					}
					m.textInput.SetValue(m.history[m.historyIdx])
					m.updateSuggestions()
				}
			}

		case tea.KeyDown:
			if m.showList {
				m.suggestions, lsCmd = m.suggestions.Update(msg)
			} else {
				if len(m.history) > 0 && m.historyIdx != -1 {
					if m.historyIdx < len(m.history)-1 {
						m.historyIdx++
						m.textInput.SetValue(m.history[m.historyIdx])
					} else {
						m.historyIdx = -1
						m.textInput.SetValue("")
					}
					m.updateSuggestions()
				}
			}

		case tea.KeyTab:
			if m.showList {
				if i, ok := m.suggestions.SelectedItem().(suggestion); ok {
					m.textInput.SetValue(string(i))
					m.textInput.SetCursor(len(string(i)))
					m.updateSuggestions()
				}
			}

		case tea.KeyEnter:
			val := strings.TrimSpace(m.textInput.Value())
			if val == "exit" || val == "quit" {
				return m, tea.Quit
			}

			if val != "" {
				// Prevent duplicate history entries
				if len(m.history) == 0 || m.history[len(m.history)-1] != val {
					m.history = append(m.history, val)
				}
				m.historyIdx = -1
				m.textInput.SetValue("")
				m.updateSuggestions()

				m.logContent += fmt.Sprintf("\n\n> %s\n", val)
				out, err := m.app.Execute(context.Background(), val)
				if err != nil {
					m.logContent += fmt.Sprintf("Error: %v", err)
				} else if out != "" {
					m.logContent += out
				}

				m.viewport.SetContent(m.logContent)
				m.viewport.GotoBottom()
			}
		default:
			// Normal typing
			m.textInput, tiCmd = m.textInput.Update(msg)
			m.updateSuggestions()
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.viewport.Width = msg.Width - 4
		m.viewport.Height = msg.Height - 30 // Initial conservative estimate
		if m.viewport.Height < 5 {
			m.viewport.Height = 5
		}
		m.suggestions.SetWidth(msg.Width - 6)
	}

	m.viewport, vpCmd = m.viewport.Update(msg)

	// Calculate accurate heights for dynamic components
	titleH := lipgloss.Height(titleStyle.Render("Dummy"))
	stateH := lipgloss.Height(m.renderState())
	inputH := 1

	listAreaHeight := 0
	if m.showList {
		listAreaHeight = m.suggestions.Height() + 2 // +2 for autocompleteStyle borders
	}

	infoH := lipgloss.Height(infoStyle.Render("Dummy"))
	paddingH := 7

	// Total fixed overhead: title + state + input + listArea + info + padding + spacing
	overhead := titleH + stateH + inputH + listAreaHeight + infoH + paddingH + 4

	m.viewport.Height = m.height - overhead
	if m.viewport.Height < 4 {
		m.viewport.Height = 4
	}

	return m, tea.Batch(tiCmd, vpCmd, lsCmd)
}

func (m *replModel) renderState() string {
	combat := m.app.Combat()
	stateView := "=== Encounter State ==="
	stateView += "\n\n"

	switch combat.State() {
	case engine.StateNotStarted:
		stateView += "Combat has not started.\n"
	case engine.StateEnded:
		stateView += fmt.Sprintf("Combat ended after %d rounds.\n", combat.CurrentRound())
	default:
		stateView += fmt.Sprintf("Round %d", combat.CurrentRound())
		if combat.Halted() {
			stateView += " (halted: no participants remain)"
		}
		stateView += "\n"
	}

	stateView += "\n"

	order := combat.InitiativeOrder()
	if len(order) == 0 {
		stateView += "No participants in the order."
	} else {
		participants := make(map[string]engine.Participant)
		for _, p := range combat.Participants() {
			participants[p.ID] = p
		}
		for _, entry := range order {
			marker := "  "
			if entry.IsActive {
				marker = "> "
			}
			line := fmt.Sprintf("%s%s (%d)", marker, entry.ParticipantID, entry.Initiative)
			if p, ok := participants[entry.ParticipantID]; ok && p.MaxHP > 0 {
				line += fmt.Sprintf(": %d/%d HP", p.HP, p.MaxHP)
			}
			if effects := combat.ActiveEffects(entry.ParticipantID); len(effects) > 0 {
				names := make([]string, len(effects))
				for i, eff := range effects {
					names[i] = fmt.Sprintf("%s (%s)", eff.Name, eff.Remaining)
				}
				line += fmt.Sprintf(" [%s]", strings.Join(names, ", "))
			}
			stateView += line + "\n"
		}
	}

	return stateBoxStyle.Width(m.width - 4).Render(stateView)
}

func (m *replModel) View() string {
	if m.width == 0 {
		return "Initializing..."
	}

	title := titleStyle.Render(fmt.Sprintf(" roundkeeper | %s ", m.app.Name()))
	stateBox := m.renderState()
	logBox := logBoxStyle.Width(m.width - 4).Render(m.viewport.View())

	var inputArea string
	if m.showList {
		inputArea = fmt.Sprintf("%s\n%s", m.textInput.View(), autocompleteStyle.Render(m.suggestions.View()))
	} else {
		inputArea = m.textInput.View()
	}

	mainView := lipgloss.JoinVertical(lipgloss.Left,
		title,
		stateBox,
		logBox,
		"\n",
		inputArea,
		infoStyle.Render("(esc to quit, tab to complete, up/down history)"),
	)

	return mainView + strings.Repeat("\n", 7)
}

func RunTUI(app *session.Manager) error {
	m := newREPLModel(app)
	p := tea.NewProgram(&m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}
