package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/mamadbah2/pantry/internal/domain/models"
	"github.com/mamadbah2/pantry/internal/service/inventory"
)

const (
	intentTimeout = 10 * time.Second
	nameWidth     = 24
	helpLine      = "↑/↓ select • +/a add • -/r remove • n new item • / search • q quit"
)

type modalState int

const (
	modalClosed modalState = iota
	modalOpen
)

// snapshotMsg carries the outcome of one intent back into Update.
type snapshotMsg struct {
	op       string
	snapshot models.Snapshot
	err      error
}

// Model is the bubbletea model of the pantry screen.
type Model struct {
	intents inventory.Intents
	styles  Styles
	logger  *zap.Logger

	snapshot  models.Snapshot
	search    textinput.Model
	searching bool
	modal     modalState
	nameInput textinput.Model
	selected  int
	status    string
	failed    bool
	inFlight  int

	width  int
	height int
}

// New builds the model. Nothing is loaded until Init runs.
func New(intents inventory.Intents, styles Styles, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}

	search := textinput.New()
	search.Prompt = "Search: "
	search.Placeholder = "item name"
	search.CharLimit = 64

	name := textinput.New()
	name.Prompt = "Name: "
	name.Placeholder = "e.g. eggs"
	name.CharLimit = 64

	return Model{
		intents:   intents,
		styles:    styles,
		logger:    logger,
		search:    search,
		nameInput: name,
	}
}

// Init issues the startup refresh.
func (m Model) Init() tea.Cmd {
	return m.run("refresh", "", func(ctx context.Context, _ string) (models.Snapshot, error) {
		return m.intents.Refresh(ctx)
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case snapshotMsg:
		return m.applySnapshot(msg), nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch {
		case m.modal == modalOpen:
			return m.updateModal(msg)
		case m.searching:
			return m.updateSearch(msg)
		default:
			return m.updateList(msg)
		}
	}

	return m, nil
}

func (m Model) applySnapshot(msg snapshotMsg) Model {
	if m.inFlight > 0 {
		m.inFlight--
	}

	if msg.err != nil {
		m.logger.Warn("inventory intent failed", zap.String("op", msg.op), zap.Error(msg.err))
		m.status = msg.err.Error()
		m.failed = true
	} else {
		m.status = ""
		m.failed = false
	}

	if msg.snapshot != nil || msg.err == nil {
		m.snapshot = msg.snapshot
	}
	m.clampSelection()
	return m
}

func (m Model) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.closeModal()
		return m, nil
	case "enter":
		name := strings.TrimSpace(m.nameInput.Value())
		m.closeModal()
		cmd := m.run("add", name, m.intents.AddOne)
		return m, cmd
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.search.Reset()
		m.search.Blur()
		m.searching = false
		m.clampSelection()
		return m, nil
	case "enter":
		m.search.Blur()
		m.searching = false
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	m.clampSelection()
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(m.visible())-1 {
			m.selected++
		}
	case "+", "a":
		if item, ok := m.selectedItem(); ok {
			cmd := m.run("add", item.Name, m.intents.AddOne)
			return m, cmd
		}
	case "-", "r":
		if item, ok := m.selectedItem(); ok {
			cmd := m.run("remove", item.Name, m.intents.RemoveOne)
			return m, cmd
		}
	case "n":
		m.modal = modalOpen
		cmd := m.nameInput.Focus()
		return m, cmd
	case "/":
		m.searching = true
		cmd := m.search.Focus()
		return m, cmd
	case "esc":
		if m.search.Value() != "" {
			m.search.Reset()
			m.clampSelection()
		}
	}
	return m, nil
}

func (m *Model) closeModal() {
	m.nameInput.Reset()
	m.nameInput.Blur()
	m.modal = modalClosed
}

// run starts an intent in the background. Controls stay live meanwhile.
func (m *Model) run(op, name string, intent func(context.Context, string) (models.Snapshot, error)) tea.Cmd {
	m.inFlight++
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), intentTimeout)
		defer cancel()

		snapshot, err := intent(ctx, name)
		return snapshotMsg{op: op, snapshot: snapshot, err: err}
	}
}

func (m Model) visible() models.Snapshot {
	return m.snapshot.Filter(strings.TrimSpace(m.search.Value()))
}

func (m Model) selectedItem() (models.Item, bool) {
	items := m.visible()
	if m.selected < 0 || m.selected >= len(items) {
		return models.Item{}, false
	}
	return items[m.selected], true
}

func (m *Model) clampSelection() {
	n := len(m.visible())
	switch {
	case n == 0:
		m.selected = 0
	case m.selected >= n:
		m.selected = n - 1
	case m.selected < 0:
		m.selected = 0
	}
}

// View renders the screen.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Title.Render("Pantry"))
	sb.WriteString("\n")
	sb.WriteString(m.styles.Search.Render(m.search.View()))
	sb.WriteString("\n")

	items := m.visible()
	switch {
	case len(m.snapshot) == 0:
		sb.WriteString(m.styles.Help.Render("The pantry is empty. Press n to add an item."))
		sb.WriteString("\n")
	case len(items) == 0:
		sb.WriteString(m.styles.Help.Render(fmt.Sprintf("Nothing matches %q.", m.search.Value())))
		sb.WriteString("\n")
	}

	for i, item := range items {
		row := fmt.Sprintf("%-*s %s  %s %s",
			nameWidth, truncate(item.DisplayName(), nameWidth),
			m.styles.Quantity.Render(fmt.Sprint(item.Quantity)),
			m.styles.AddAction.Render("[+]"),
			m.styles.RemoveAction.Render("[-]"))
		if i == m.selected {
			sb.WriteString(m.styles.SelectedRow.Render(row))
		} else {
			sb.WriteString(m.styles.Row.Render(row))
		}
		sb.WriteString("\n")
	}

	if m.modal == modalOpen {
		sb.WriteString(m.styles.Modal.Render("Add new item\n\n" + m.nameInput.View() + "\n\nenter to add • esc to cancel"))
		sb.WriteString("\n")
	}

	switch {
	case m.failed:
		sb.WriteString(m.styles.Error.Render(m.status))
	case m.inFlight > 0:
		sb.WriteString(m.styles.Status.Render("Saving…"))
	default:
		sb.WriteString(m.styles.Status.Render(fmt.Sprintf("%d items, %d units", len(m.snapshot), m.snapshot.TotalUnits())))
	}
	sb.WriteString("\n")
	sb.WriteString(m.styles.Help.Render(helpLine))

	return m.styles.App.Render(sb.String())
}

func truncate(s string, l int) string {
	r := []rune(s)
	if len(r) > l {
		return string(r[:l-1]) + "…"
	}
	return s
}

// Run starts the terminal UI and blocks until the user quits or ctx ends.
func Run(ctx context.Context, intents inventory.Intents, theme Theme, logger *zap.Logger) error {
	program := tea.NewProgram(New(intents, NewStyles(theme), logger), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("run terminal ui: %w", err)
	}
	return nil
}
