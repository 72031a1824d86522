package ui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/desertthunder/pubdex/internal/collection"
	"github.com/desertthunder/pubdex/internal/models"
	"github.com/desertthunder/pubdex/internal/services"
	"github.com/desertthunder/pubdex/internal/session"
	"github.com/desertthunder/pubdex/internal/tasks"
)

// ViewState represents the current view in the TUI.
type ViewState int

const (
	ListView ViewState = iota
	SearchView
	LoginView
	UploadView
	ConfirmDeleteView
)

// Scope selects which publication list is shown.
type Scope int

const (
	ScopeAll Scope = iota
	ScopeMine
)

type listLoadedMsg struct {
	scope Scope
	state collection.LoadState
}

type loginDoneMsg struct {
	err error
}

type uploadDoneMsg struct {
	pub *models.Publication
	err error
}

type deleteDoneMsg struct {
	id  int
	err error
}

// Model represents the TUI application state.
type Model struct {
	ctx         context.Context
	view        ViewState
	scope       Scope
	session     *session.Store
	auth        *services.AuthAPI
	coordinator *tasks.Coordinator
	all         *collection.ViewModel
	mine        *collection.ViewModel

	width  int
	height int
	pubs   list.Model
	search textinput.Model
	help   help.Model
	keys   keyMap

	form         *huh.Form
	login        loginFields
	uploadDraft  uploadFields
	deleteTarget *models.Publication

	status string
	err    error
}

// NewModel creates a new TUI model with the provided dependencies.
func NewModel(ctx context.Context, sess *session.Store, auth *services.AuthAPI, coordinator *tasks.Coordinator, all, mine *collection.ViewModel) *Model {
	search := textinput.New()
	search.Placeholder = "title, author or keyword"

	pubs := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	pubs.Title = "Publications"
	pubs.SetShowHelp(false)

	return &Model{
		ctx:         ctx,
		view:        ListView,
		scope:       ScopeAll,
		session:     sess,
		auth:        auth,
		coordinator: coordinator,
		all:         all,
		mine:        mine,
		pubs:        pubs,
		search:      search,
		help:        help.New(),
		keys:        newKeyMap(),
	}
}

// Init fetches the initial publication list.
func (m *Model) Init() tea.Cmd {
	scope := m.scope
	vm := m.activeVM()
	_, load := vm.Observe(vm.Query())
	return m.loadCmd(scope, vm, load)
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.pubs.SetSize(msg.Width-4, msg.Height-8)
		return m, nil

	case tea.KeyMsg:
		switch m.view {
		case ListView:
			return m.handleListKeys(msg)
		case SearchView:
			return m.handleSearchKeys(msg)
		case ConfirmDeleteView:
			return m.handleConfirmKeys(msg)
		case LoginView, UploadView:
			return m.updateForm(msg)
		}

	case listLoadedMsg:
		if msg.scope != m.scope {
			return m, nil
		}
		switch msg.state.Phase {
		case collection.Failure:
			m.err = msg.state.Err
		case collection.Success:
			m.err = nil
			m.pubs.SetItems(publicationItems(msg.state.Publications))
			m.pubs.Title = m.listTitle(msg.state.Query)
		}
		return m, nil

	case loginDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("signed in (%s)", m.session.Describe())
		m.view = ListView
		return m, m.refreshCmd()

	case uploadDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("uploaded %q", msg.pub.Title)
		m.view = ListView
		return m, m.syncCmd()

	case deleteDoneMsg:
		if msg.err != nil {
			m.err = msg.err
			m.view = ListView
			return m, nil
		}
		m.err = nil
		m.status = fmt.Sprintf("deleted publication %d", msg.id)
		m.view = ListView
		return m, m.syncCmd()
	}

	if m.view == LoginView || m.view == UploadView {
		return m.updateForm(msg)
	}

	var cmd tea.Cmd
	m.pubs, cmd = m.pubs.Update(msg)
	return m, cmd
}

// View renders the UI based on the current view state.
func (m *Model) View() string {
	switch m.view {
	case SearchView:
		return m.renderSearch()
	case LoginView, UploadView:
		return m.form.View()
	case ConfirmDeleteView:
		return m.renderConfirm()
	default:
		return m.renderList()
	}
}

func (m *Model) handleListKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "q" || msg.String() == "ctrl+c":
		return m, tea.Quit

	case msg.String() == "/":
		m.search.SetValue(m.activeVM().Query().Search)
		m.search.Focus()
		m.view = SearchView
		return m, textinput.Blink

	case msg.String() == "d":
		return m.sortCmd("date")

	case msg.String() == "t":
		return m.sortCmd("title")

	case msg.String() == "m":
		return m.toggleScope()

	case msg.String() == "r":
		return m, m.refreshCmd()

	case msg.String() == "l":
		if m.session.Authenticated() {
			m.status = m.session.Describe()
			return m, nil
		}
		m.login = loginFields{}
		m.form = newLoginForm(&m.login)
		m.view = LoginView
		return m, m.form.Init()

	case msg.String() == "o":
		m.session.SignOut()
		m.status = "logged out"
		if m.scope == ScopeMine {
			return m.toggleScope()
		}
		return m, nil

	case msg.String() == "u":
		if !m.session.Authenticated() {
			m.err = fmt.Errorf("sign in to upload publications")
			return m, nil
		}
		m.uploadDraft = uploadFields{}
		m.form = newUploadForm(&m.uploadDraft)
		m.view = UploadView
		return m, m.form.Init()

	case msg.String() == "x":
		if !m.session.Authenticated() {
			m.err = fmt.Errorf("sign in to delete publications")
			return m, nil
		}
		if item, ok := m.pubs.SelectedItem().(publicationItem); ok {
			pub := item.pub
			m.deleteTarget = &pub
			m.view = ConfirmDeleteView
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.pubs, cmd = m.pubs.Update(msg)
	return m, cmd
}

func (m *Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.view = ListView
		return m, nil
	case "enter":
		m.view = ListView
		scope := m.scope
		vm := m.activeVM()
		_, load := vm.SetSearch(m.search.Value())
		return m, m.loadCmd(scope, vm, load)
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m *Model) handleConfirmKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "n", "esc":
		m.deleteTarget = nil
		m.view = ListView
		return m, nil
	case "y":
		if m.deleteTarget == nil {
			m.view = ListView
			return m, nil
		}
		id := m.deleteTarget.ID
		m.deleteTarget = nil
		return m, func() tea.Msg {
			err := m.coordinator.Delete(m.ctx, id)
			return deleteDoneMsg{id: id, err: err}
		}
	}
	return m, nil
}

func (m *Model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := m.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		m.form = f
	}

	switch m.form.State {
	case huh.StateAborted:
		m.view = ListView
		return m, nil

	case huh.StateCompleted:
		if m.view == LoginView {
			email, password := m.login.email, m.login.password
			m.view = ListView
			return m, func() tea.Msg {
				if _, err := m.session.SignIn(m.ctx, m.auth, email, password); err != nil {
					return loginDoneMsg{err: err}
				}
				// Profile load failures leave the token usable.
				_ = m.session.LoadProfile(m.ctx, m.auth)
				return loginDoneMsg{}
			}
		}

		draft := m.uploadDraft
		m.view = ListView
		return m, func() tea.Msg {
			form, err := draft.buildForm()
			if err != nil {
				return uploadDoneMsg{err: err}
			}
			pub, err := m.coordinator.Upload(m.ctx, form)
			return uploadDoneMsg{pub: pub, err: err}
		}
	}

	return m, cmd
}

func (m *Model) sortCmd(dimension string) (tea.Model, tea.Cmd) {
	scope := m.scope
	vm := m.activeVM()
	_, load := vm.HandleSort(dimension)
	return m, m.loadCmd(scope, vm, load)
}

func (m *Model) toggleScope() (tea.Model, tea.Cmd) {
	if m.scope == ScopeAll {
		if !m.session.Authenticated() {
			m.err = fmt.Errorf("sign in to see your publications")
			return m, nil
		}
		m.scope = ScopeMine
	} else {
		m.scope = ScopeAll
	}

	scope := m.scope
	vm := m.activeVM()
	state, load := vm.Observe(vm.Query())
	if load == nil {
		m.pubs.SetItems(publicationItems(state.Publications))
		m.pubs.Title = m.listTitle(state.Query)
		return m, nil
	}
	return m, m.loadCmd(scope, vm, load)
}

// refreshCmd forces a reload of the active view model.
func (m *Model) refreshCmd() tea.Cmd {
	scope := m.scope
	vm := m.activeVM()
	return m.loadCmd(scope, vm, vm.Invalidate())
}

// syncCmd re-reads the active view model's state without forcing a fetch;
// used after mutations, which already refetched through the coordinator.
func (m *Model) syncCmd() tea.Cmd {
	scope := m.scope
	vm := m.activeVM()
	return func() tea.Msg {
		return listLoadedMsg{scope: scope, state: vm.State()}
	}
}

// loadCmd runs a view-model load closure off the UI loop and reports the
// resulting state. A nil closure (deduplicated or cached load) still reports
// the current state so the list stays in sync.
func (m *Model) loadCmd(scope Scope, vm *collection.ViewModel, load func(ctx context.Context)) tea.Cmd {
	return func() tea.Msg {
		if load != nil {
			load(m.ctx)
		}
		return listLoadedMsg{scope: scope, state: vm.State()}
	}
}

func (m *Model) activeVM() *collection.ViewModel {
	if m.scope == ScopeMine {
		return m.mine
	}
	return m.all
}

func (m *Model) listTitle(q models.Query) string {
	title := "Publications"
	if m.scope == ScopeMine {
		title = "My Publications"
	}
	if q.Search != "" {
		title = fmt.Sprintf("%s / %q", title, q.Search)
	}
	return fmt.Sprintf("%s (%s)", title, q.OrderBy)
}

func (m *Model) renderList() string {
	header := ""
	if m.err != nil {
		header = styles.err.Render(fmt.Sprintf("Error: %v", m.err)) + "\n"
	} else if m.status != "" {
		header = styles.ok.Render(m.status) + "\n"
	}

	helpView := m.help.ShortHelpView(m.keys.ShortHelp())
	return fmt.Sprintf("%s%s\n\n%s", header, m.pubs.View(), helpView)
}

func (m *Model) renderSearch() string {
	title := styles.title.Render("Search publications")
	hint := styles.help.Render("enter to search, esc to cancel")
	return fmt.Sprintf("%s\n%s\n\n%s", title, m.search.View(), hint)
}

func (m *Model) renderConfirm() string {
	if m.deleteTarget == nil {
		return ""
	}

	title := styles.title.Render(fmt.Sprintf("Delete %q?", m.deleteTarget.Title))
	warn := styles.warn.Render("This cannot be undone.")
	helpView := m.help.ShortHelpView(m.confirmHelp())
	return fmt.Sprintf("%s\n%s\n\n%s", title, warn, helpView)
}

func (m *Model) confirmHelp() []key.Binding {
	return []key.Binding{m.keys.yes, m.keys.no}
}
