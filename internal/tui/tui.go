// Package tui is the interactive todo dashboard.
package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/idilsaglam/mytodo/internal/api"
	"github.com/idilsaglam/mytodo/internal/apperr"
	"github.com/idilsaglam/mytodo/internal/form"
	"github.com/idilsaglam/mytodo/internal/listctl"
	"github.com/idilsaglam/mytodo/internal/model"
	"github.com/idilsaglam/mytodo/internal/session"
	"github.com/idilsaglam/mytodo/internal/ui"
)

type mode int

const (
	modeList mode = iota
	modeForm
	modeDetail
)

// form field focus
const (
	fieldTitle = iota
	fieldDescription
	fieldCount
)

// listItem adapts model.Todo to bubbles/list.Item
type listItem struct {
	todo model.Todo
}

func (i listItem) Title() string       { return i.todo.Title }
func (i listItem) Description() string { return i.todo.Description }
func (i listItem) FilterValue() string { return i.todo.Title }

// Custom delegate to control how items render (single line)
type itemDelegate struct{}

func (d itemDelegate) Height() int                               { return 1 }
func (d itemDelegate) Spacing() int                              { return 0 }
func (d itemDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }
func (d itemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, _ := item.(listItem)
	t := ui.Current()
	box := t.Muted.Render(t.BoxUnchecked)
	text := it.todo.Title
	if it.todo.Completed {
		box = t.Success.Render(t.BoxChecked)
		text = t.Done.Render(text)
	}
	prefix := "  "
	if index == m.Index() {
		prefix = t.Selected.Render(">") + " "
	}
	fmt.Fprintln(w, prefix+box+" "+text)
}

// messages from async commands
type (
	refreshedMsg struct{ err error }
	mutatedMsg   struct {
		done     string
		err      error
		fromForm bool // a form submit, not a list action
	}
)

type Model struct {
	ctx  context.Context
	list *listctl.Controller[model.Todo]
	form *form.Controller[model.Todo]

	view    list.Model
	inputs  [fieldCount]textinput.Model
	focus   int
	spinner spinner.Model

	mode     mode
	filter   listctl.Filter
	loading  bool
	status   string
	failed   bool
	expired  bool
	selected *model.Todo

	width, height int
}

// Result reports how the dashboard ended.
type Result struct {
	// Expired is set when the session was rejected while running.
	Expired bool
}

func New(ctx context.Context, lc *listctl.Controller[model.Todo], fc *form.Controller[model.Todo]) Model {
	l := list.New(nil, itemDelegate{}, 0, 0)
	l.SetShowHelp(true)
	l.SetShowPagination(true)
	l.SetShowStatusBar(true)
	l.SetFilteringEnabled(true)
	l.Styles.Title = ui.Current().Title
	l.Styles.HelpStyle = ui.Current().Help
	l.Styles.PaginationStyle = ui.Current().Help
	l.FilterInput.Prompt = "/ "
	l.SetStatusBarItemName("todo", "todos")

	binds := []key.Binding{
		key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "edit")),
		key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "done")),
		key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),
		key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "filter")),
		key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	}
	l.AdditionalShortHelpKeys = func() []key.Binding { return binds }
	l.AdditionalFullHelpKeys = func() []key.Binding { return binds }

	m := Model{
		ctx:     ctx,
		list:    lc,
		form:    fc,
		view:    l,
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot)),
		loading: true,
		width:   80,
		height:  24,
	}
	for i := range m.inputs {
		ti := textinput.New()
		ti.Prompt = "> "
		ti.CharLimit = 200
		m.inputs[i] = ti
	}
	m.inputs[fieldTitle].Placeholder = "Title"
	m.inputs[fieldDescription].Placeholder = "Description"
	m.resize()
	m.sync()
	return m
}

// resize fits the list inside the panel, leaving room for the header,
// status line and form.
func (m *Model) resize() {
	m.view.SetSize(max(m.width-4, 20), max(m.height-10, 3))
}

// Run starts the dashboard. Pending requests are cancelled when it quits.
func Run(ctx context.Context, lc *listctl.Controller[model.Todo], fc *form.Controller[model.Todo]) (Result, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(New(ctx, lc, fc), tea.WithAltScreen(), tea.WithContext(ctx))
	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrProgramKilled) {
		return Result{}, err
	}
	fm, ok := final.(Model)
	if !ok {
		return Result{}, nil
	}
	return Result{Expired: fm.expired}, nil
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.refresh())
}

func (m Model) refresh() tea.Cmd {
	ctx, lc := m.ctx, m.list
	return func() tea.Msg {
		_, err := lc.Refresh(ctx)
		return refreshedMsg{err: err}
	}
}

func (m Model) mutate(done string, fn func(ctx context.Context) error) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		return mutatedMsg{done: done, err: fn(ctx)}
	}
}

func (m Model) submit(done string) tea.Cmd {
	ctx, fc := m.ctx, m.form
	return func() tea.Msg {
		_, err := fc.Submit(ctx)
		return mutatedMsg{done: done, err: err, fromForm: true}
	}
}

func sessionGone(err error) bool {
	return errors.Is(err, api.ErrUnauthorized) || errors.Is(err, session.ErrNoSession)
}

// report records err as the status line. It returns tea.Quit when the
// session is gone.
func (m *Model) report(err error, okMsg string) tea.Cmd {
	switch {
	case err == nil:
		m.status, m.failed = okMsg, false
	case errors.Is(err, context.Canceled):
		return nil
	case sessionGone(err):
		m.expired = true
		return tea.Quit
	default:
		m.status, m.failed = apperr.Message(err), true
	}
	return nil
}

func (m *Model) sync() {
	todos := m.list.Filter(m.filter)
	items := make([]list.Item, 0, len(todos))
	for _, td := range todos {
		items = append(items, listItem{todo: td})
	}
	m.view.SetItems(items)

	s := m.list.Stats()
	t := ui.Current()
	m.view.Title = fmt.Sprintf("%s   %s %d  %s %d  %s %d  [%s]",
		"myToDo Dashboard",
		t.SymDone, s.Completed,
		t.SymPending, s.Pending,
		"Total", s.Total,
		m.filter,
	)
}

func (m Model) current() (model.Todo, bool) {
	it, ok := m.view.SelectedItem().(listItem)
	return it.todo, ok
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if !m.loading {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case refreshedMsg:
		m.loading = false
		cmd := m.report(msg.err, "")
		m.sync()
		return m, cmd

	case mutatedMsg:
		cmd := m.report(msg.err, msg.done)
		if msg.err == nil && msg.fromForm && m.mode == modeForm {
			m.closeForm()
		}
		m.sync()
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeDetail:
			return m.updateDetail(msg)
		}
		return m.updateList(msg)
	}

	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.view.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.view, cmd = m.view.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q", "esc", "ctrl+c":
		return m, tea.Quit
	case "r":
		m.loading = true
		return m, tea.Batch(m.spinner.Tick, m.refresh())
	case "tab":
		m.filter = m.filter.Next()
		m.sync()
		return m, nil
	case " ":
		td, ok := m.current()
		if !ok {
			return m, nil
		}
		lc := m.list
		return m, m.mutate("updated", func(ctx context.Context) error {
			_, err := lc.ToggleFlag(ctx, td.ID)
			return err
		})
	case "d":
		td, ok := m.current()
		if !ok {
			return m, nil
		}
		lc := m.list
		return m, m.mutate("removed", func(ctx context.Context) error {
			return lc.Delete(ctx, td.ID)
		})
	case "a":
		m.form.Cancel()
		m.openForm()
		return m, nil
	case "e":
		td, ok := m.current()
		if !ok {
			return m, nil
		}
		m.form.LoadForEdit(td.ID, td.Fields())
		m.openForm()
		return m, nil
	case "enter":
		td, ok := m.current()
		if !ok {
			return m, nil
		}
		m.selected = &td
		m.mode = modeDetail
		return m, nil
	}

	var cmd tea.Cmd
	m.view, cmd = m.view.Update(msg)
	return m, cmd
}

func (m *Model) openForm() {
	d := m.form.Draft()
	m.inputs[fieldTitle].SetValue(d["title"])
	m.inputs[fieldDescription].SetValue(d["description"])
	for i := range m.inputs {
		m.inputs[i].CursorEnd()
		m.inputs[i].Blur()
	}
	m.focus = fieldTitle
	m.inputs[m.focus].Focus()
	m.mode = modeForm
}

func (m *Model) closeForm() {
	for i := range m.inputs {
		m.inputs[i].SetValue("")
		m.inputs[i].Blur()
	}
	m.mode = modeList
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.form.Cancel()
		m.closeForm()
		return m, nil
	case "tab", "shift+tab", "up", "down":
		m.inputs[m.focus].Blur()
		m.focus = (m.focus + 1) % fieldCount
		m.inputs[m.focus].Focus()
		return m, nil
	case "enter":
		m.form.MustSet("title", m.inputs[fieldTitle].Value())
		m.form.MustSet("description", m.inputs[fieldDescription].Value())
		if errs := m.form.Validate(); len(errs) > 0 {
			m.status, m.failed = errs[0].Message, true
			return m, nil
		}
		done := "added"
		if _, editing := m.form.Bound(); editing {
			done = "saved"
		}
		return m, m.submit(done)
	}
	var cmd tea.Cmd
	m.inputs[m.focus], cmd = m.inputs[m.focus].Update(msg)
	return m, cmd
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "enter", "q":
		m.selected = nil
		m.mode = modeList
	}
	return m, nil
}

func (m Model) View() string {
	t := ui.Current()
	s := m.list.Stats()
	header := ui.ProgressBar(s.Completed, s.Total, 28)
	if m.loading {
		header = m.spinner.View() + " loading..."
	}

	var b strings.Builder
	b.WriteString(t.Muted.Render(header))
	b.WriteString("\n")

	switch m.mode {
	case modeDetail:
		b.WriteString(detailView(m.selected))
	default:
		b.WriteString(m.view.View())
	}

	if m.mode == modeForm {
		title := "Add new todo"
		if _, editing := m.form.Bound(); editing {
			title = "ToDo Details"
		}
		bar := lipgloss.NewStyle().Border(t.Border).BorderForeground(t.BorderColor).Padding(0, 1)
		inner := t.Accent.Render(title) + "\n" + m.inputs[fieldTitle].View() + "\n" + m.inputs[fieldDescription].View()
		b.WriteString("\n" + bar.Render(inner))
	}

	if m.status != "" {
		style := t.Success
		if m.failed {
			style = t.Error
		}
		b.WriteString("\n" + style.Render(m.status))
	}
	return ui.PanelString(b.String())
}

func detailView(td *model.Todo) string {
	if td == nil {
		return ""
	}
	t := ui.Current()
	desc := td.Description
	if strings.TrimSpace(desc) == "" {
		desc = "No description provided"
	}
	status := t.Pending.Render(td.Status())
	if td.Completed {
		status = t.Success.Render(td.Status())
	}
	return strings.Join([]string{
		t.Title.Render("Info ToDo"),
		"",
		t.Muted.Render("Title"), td.Title,
		t.Muted.Render("Description"), desc,
		t.Muted.Render("Status"), status,
		"",
		t.Help.Render("esc back"),
	}, "\n")
}
