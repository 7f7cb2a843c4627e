package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/go-logr/logr"
	ctrl "sigs.k8s.io/controller-runtime"

	"github.com/sttts/kmanage/internal/lifecycle"
	"github.com/sttts/kmanage/internal/overlay"
	"github.com/sttts/kmanage/internal/store"
	"github.com/sttts/kmanage/pkg/appconfig"
	"github.com/sttts/kmanage/pkg/manifest"
	"github.com/sttts/kmanage/pkg/workload"
)

// NamespaceLister returns the selectable namespaces.
type NamespaceLister interface {
	Namespaces(ctx context.Context) ([]string, error)
}

// NamespaceSwitcher moves the periodic refresh to another namespace and
// refreshes on demand. *reconcile.Loop implements it.
type NamespaceSwitcher interface {
	SetNamespace(ctx context.Context, namespace string)
	Sync(ctx context.Context, namespace string) error
}

// ClusterNamer names the cluster shown in the header. It is optional.
type ClusterNamer interface {
	ClusterName(ctx context.Context) (string, error)
}

// Options wires the App to its collaborators.
type Options struct {
	Controller *lifecycle.Controller
	Store      *store.Store
	Namespaces NamespaceLister
	Switcher   NamespaceSwitcher
	Cluster    ClusterNamer
	Config     *appconfig.Config
	// SaveConfig persists the config after theme or namespace changes.
	SaveConfig func(*appconfig.Config) error
	// Namespace is selected on start. Empty opens the namespace selector.
	Namespace string
	// Editor defaults to ExternalEditor.
	Editor EditFunc
	// Assistant enables drafting manifests from a query.
	Assistant bool
	Log       logr.Logger
}

type mode int

const (
	modeList mode = iota
	modeNamespace
	modePrompt
	modeConfirmDelete
	modeViewer
	modeTheme
	modeEditor
)

const (
	promptName  = "name"
	promptDraft = "draft"
)

type storeChangedMsg struct{ key store.Key }

type namespacesLoadedMsg struct {
	namespaces []string
	err        error
}

type namespaceSwitchedMsg struct{ namespace string }

type refreshedMsg struct{ err error }

type clusterNameMsg struct {
	name string
	err  error
}

type manifestFetchedMsg struct {
	session *lifecycle.Session
	edit    bool
	err     error
}

type logsFetchedMsg struct {
	name string
	logs string
	err  error
}

type submittedMsg struct {
	session *lifecycle.Session
	err     error
}

type deletedMsg struct{ err error }

type draftedMsg struct {
	session *lifecycle.Session
	err     error
}

// App is the terminal front end: a list of pods or deployments in one
// namespace plus the dialogs driving the lifecycle controller.
type App struct {
	ctx  context.Context
	opts Options
	log  logr.Logger

	width, height int
	mode          mode

	cluster   string
	namespace string
	kind      workload.Kind
	items     []workload.Summary
	selected  int
	scrollTop int

	prompt  *PromptModel
	nsSel   *NamespaceSelector
	confirm *DeleteConfirmModel
	viewer  *TextViewer
	themes  *ThemeSelector

	// theme to restore when the theme selector is cancelled
	prevTheme string

	busy int

	toastText  string
	toastErr   bool
	toastSeq   int
	lastClick  time.Time
	lastRowIdx int

	tick func(time.Duration, func(time.Time) tea.Msg) tea.Cmd
}

// NewApp returns the application model. opts.Controller, opts.Store,
// opts.Namespaces and opts.Switcher must be set.
func NewApp(ctx context.Context, opts Options) *App {
	if opts.Config == nil {
		opts.Config = appconfig.Default()
	}
	if opts.Editor == nil {
		opts.Editor = ExternalEditor
	}
	if opts.Log.GetSink() == nil {
		opts.Log = ctrl.Log.WithName("ui")
	}
	return &App{
		ctx:        ctx,
		opts:       opts,
		log:        opts.Log,
		namespace:  opts.Namespace,
		kind:       workload.Pod,
		prompt:     NewPromptModel(),
		nsSel:      NewNamespaceSelector(),
		confirm:    NewDeleteConfirmModel(),
		lastRowIdx: -1,
		tick:       tea.Tick,
	}
}

func (a *App) Init() tea.Cmd {
	start := a.switchNamespace
	if a.namespace == "" {
		start = func(string) tea.Cmd { return a.loadNamespaces() }
	}
	return tea.Batch(start(a.namespace), a.loadClusterName())
}

func (a *App) key() store.Key { return store.Key{Namespace: a.namespace, Kind: a.kind} }

func (a *App) theme() string {
	if t := a.opts.Config.Viewer.Theme; t != "" {
		return t
	}
	return DefaultTheme
}

func (a *App) saveConfig() {
	if a.opts.SaveConfig == nil {
		return
	}
	if err := a.opts.SaveConfig(a.opts.Config); err != nil {
		a.log.Error(err, "failed to save config")
	}
}

// reload copies the current collection out of the store.
func (a *App) reload() {
	a.items = a.opts.Store.List(a.key())
	a.selected = min(a.selected, max(0, len(a.items)-1))
	a.ensureVisible()
}

func (a *App) current() (workload.Summary, bool) {
	if a.selected < 0 || a.selected >= len(a.items) {
		return workload.Summary{}, false
	}
	return a.items[a.selected], true
}

// work runs fn as a command and counts it as busy until its message arrives.
func (a *App) work(fn func() tea.Msg) tea.Cmd {
	a.busy++
	return fn
}

func (a *App) done() { a.busy = max(0, a.busy-1) }

func (a *App) loadNamespaces() tea.Cmd {
	lister, ctx := a.opts.Namespaces, a.ctx
	return a.work(func() tea.Msg {
		ns, err := lister.Namespaces(ctx)
		return namespacesLoadedMsg{namespaces: ns, err: err}
	})
}

func (a *App) loadClusterName() tea.Cmd {
	if a.opts.Cluster == nil {
		return nil
	}
	namer, ctx := a.opts.Cluster, a.ctx
	return func() tea.Msg {
		name, err := namer.ClusterName(ctx)
		return clusterNameMsg{name: name, err: err}
	}
}

// switchNamespace moves the refresh timer. SetNamespace waits for the
// previous timer, which may be delivering a store event to the program, so
// it must not run inside Update.
func (a *App) switchNamespace(ns string) tea.Cmd {
	sw, ctx := a.opts.Switcher, a.ctx
	return a.work(func() tea.Msg {
		sw.SetNamespace(ctx, ns)
		return namespaceSwitchedMsg{namespace: ns}
	})
}

func (a *App) refresh() tea.Cmd {
	if a.namespace == "" {
		return nil
	}
	sw, ctx, ns := a.opts.Switcher, a.ctx, a.namespace
	return a.work(func() tea.Msg { return refreshedMsg{err: sw.Sync(ctx, ns)} })
}

func (a *App) fetchManifest(item workload.Summary, edit bool) tea.Cmd {
	c, ctx, kind, ns := a.opts.Controller, a.ctx, a.kind, a.namespace
	return a.work(func() tea.Msg {
		s, err := c.FetchManifest(ctx, kind, ns, item.Name)
		return manifestFetchedMsg{session: s, edit: edit, err: err}
	})
}

func (a *App) fetchLogs(item workload.Summary) tea.Cmd {
	c, ctx, ns := a.opts.Controller, a.ctx, a.namespace
	return a.work(func() tea.Msg {
		logs, err := c.FetchLogs(ctx, ns, item.Name)
		return logsFetchedMsg{name: item.Name, logs: logs, err: err}
	})
}

func (a *App) submit(s *lifecycle.Session) tea.Cmd {
	c, ctx := a.opts.Controller, a.ctx
	return a.work(func() tea.Msg { return submittedMsg{session: s, err: c.Submit(ctx)} })
}

func (a *App) remove(kind workload.Kind, ns, name string) tea.Cmd {
	c, ctx := a.opts.Controller, a.ctx
	return a.work(func() tea.Msg { return deletedMsg{err: c.Delete(ctx, kind, ns, name)} })
}

func (a *App) draft(s *lifecycle.Session, query string) tea.Cmd {
	c, ctx := a.opts.Controller, a.ctx
	return a.work(func() tea.Msg { return draftedMsg{session: s, err: c.Draft(ctx, query)} })
}

func (a *App) edit(s *lifecycle.Session, doc string) tea.Cmd {
	a.mode = modeEditor
	return a.opts.Editor(s.Name(), doc)
}

func (a *App) toast(text string, isErr bool) tea.Cmd {
	return ShowToast(text, isErr)
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = max(40, msg.Width)
		a.height = max(8, msg.Height)
		a.resize()
		return a, nil

	case storeChangedMsg:
		if msg.key == a.key() {
			a.reload()
		}
		return a, nil

	case showToastMsg:
		a.toastSeq++
		a.toastText, a.toastErr = msg.text, msg.isErr
		seq := a.toastSeq
		return a, a.tick(msg.ttl, func(time.Time) tea.Msg { return toastExpiredMsg{seq: seq} })

	case toastExpiredMsg:
		if msg.seq == a.toastSeq {
			a.toastText, a.toastErr = "", false
		}
		return a, nil

	case clusterNameMsg:
		if msg.err != nil {
			a.log.V(1).Info("cluster name unavailable", "error", msg.err)
			return a, nil
		}
		a.cluster = msg.name
		return a, nil

	case namespacesLoadedMsg:
		a.done()
		if msg.err != nil {
			return a, a.toast(fmt.Sprintf("Listing namespaces failed: %v", msg.err), true)
		}
		a.nsSel.SetNamespaces(msg.namespaces, a.namespace)
		a.mode = modeNamespace
		a.resize()
		return a, nil

	case NamespaceSelectedMsg:
		a.mode = modeList
		if !msg.Confirm || msg.Namespace == a.namespace {
			return a, nil
		}
		return a, a.switchNamespace(msg.Namespace)

	case namespaceSwitchedMsg:
		a.done()
		a.namespace = msg.namespace
		a.selected, a.scrollTop = 0, 0
		a.reload()
		if a.opts.Config.Namespace != msg.namespace {
			a.opts.Config.Namespace = msg.namespace
			a.saveConfig()
		}
		return a, nil

	case refreshedMsg:
		a.done()
		if msg.err != nil {
			return a, a.toast(msg.err.Error(), true)
		}
		return a, nil

	case PromptResultMsg:
		return a, a.handlePrompt(msg)

	case DeleteConfirmMsg:
		a.mode = modeList
		if !msg.Confirm {
			return a, nil
		}
		return a, a.remove(msg.Kind, msg.Namespace, msg.Name)

	case deletedMsg:
		a.done()
		return a, nil

	case manifestFetchedMsg:
		a.done()
		if msg.err != nil {
			return a, nil
		}
		if msg.edit {
			return a, a.edit(msg.session, msg.session.Document())
		}
		a.openManifestViewer(msg.session)
		return a, nil

	case logsFetchedMsg:
		a.done()
		if msg.err != nil {
			return a, nil
		}
		a.openViewer(NewTextViewer(fmt.Sprintf("logs %s/%s", a.namespace, msg.name), msg.logs, "", a.theme()))
		return a, nil

	case draftedMsg:
		a.done()
		if msg.err != nil {
			return a, a.toast(msg.err.Error(), true)
		}
		return a, a.edit(msg.session, msg.session.Document())

	case editorFinishedMsg:
		return a, a.handleEditorFinished(msg)

	case submittedMsg:
		a.done()
		return a, a.handleSubmitted(msg)
	}

	switch a.mode {
	case modeNamespace:
		_, cmd := a.nsSel.Update(msg)
		return a, cmd
	case modePrompt:
		_, cmd := a.prompt.Update(msg)
		return a, cmd
	case modeConfirmDelete:
		_, cmd := a.confirm.Update(a.translateMouse(a.confirm.View(), msg))
		return a, cmd
	case modeViewer:
		if a.viewer != nil {
			_, cmd := a.viewer.Update(msg)
			return a, cmd
		}
	case modeTheme:
		if a.themes != nil {
			_, cmd := a.themes.Update(msg)
			return a, cmd
		}
	case modeEditor:
		// the external editor owns the terminal
		return a, nil
	}

	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		return a, a.handleListKey(msg)
	case tea.MouseClickMsg:
		return a, a.handleListClick(msg.Mouse())
	case tea.MouseWheelMsg:
		switch msg.Mouse().Button {
		case tea.MouseWheelUp:
			a.move(-1)
		case tea.MouseWheelDown:
			a.move(1)
		}
	}
	return a, nil
}

// translateMouse makes mouse coordinates relative to a centered dialog.
func (a *App) translateMouse(dialog string, msg tea.Msg) tea.Msg {
	var m tea.Mouse
	switch msg := msg.(type) {
	case tea.MouseClickMsg:
		m = msg.Mouse()
	case tea.MouseReleaseMsg:
		m = msg.Mouse()
	default:
		return msg
	}
	x, y := overlay.Origin(dialog, a.renderMain(), overlay.Center, overlay.Center, 0, 0)
	m.X, m.Y = m.X-x, m.Y-y
	if _, ok := msg.(tea.MouseReleaseMsg); ok {
		return tea.MouseReleaseMsg(m)
	}
	return tea.MouseClickMsg(m)
}

func (a *App) handleListKey(msg tea.KeyPressMsg) tea.Cmd {
	switch msg.String() {
	case "q", "ctrl+c", "f10":
		return tea.Quit
	case "up", "k":
		a.move(-1)
	case "down", "j":
		a.move(1)
	case "pgup":
		a.move(-a.listHeight())
	case "pgdown":
		a.move(a.listHeight())
	case "home":
		a.move(-len(a.items))
	case "end":
		a.move(len(a.items))
	case "tab":
		a.toggleKind()
	case "N", "f7":
		return a.loadNamespaces()
	case "r":
		return a.refresh()
	case "n", "f2":
		return a.startCreate(false)
	case "a":
		if !a.opts.Assistant {
			return a.toast("No assistant configured", true)
		}
		return a.startCreate(true)
	case "e", "enter", "f4":
		if item, ok := a.current(); ok {
			return a.fetchManifest(item, true)
		}
	case "v", "f3":
		if item, ok := a.current(); ok {
			return a.fetchManifest(item, false)
		}
	case "l":
		if item, ok := a.current(); ok && a.kind == workload.Pod {
			return a.fetchLogs(item)
		}
	case "d", "f8":
		if item, ok := a.current(); ok {
			a.confirm.Configure(a.kind, a.namespace, item.Name)
			a.mode = modeConfirmDelete
			a.resize()
		}
	}
	return nil
}

func (a *App) handleListClick(m tea.Mouse) tea.Cmd {
	if m.Button != tea.MouseLeft {
		return nil
	}
	// rows start below the header and the column header
	idx := a.scrollTop + m.Y - 2
	if m.Y < 2 || idx < 0 || idx >= len(a.items) || m.Y-2 >= a.listHeight() {
		return nil
	}
	now := time.Now()
	double := idx == a.lastRowIdx && now.Sub(a.lastClick) < 400*time.Millisecond
	a.selected, a.lastRowIdx, a.lastClick = idx, idx, now
	if double {
		a.lastRowIdx = -1
		return a.fetchManifest(a.items[idx], false)
	}
	return nil
}

func (a *App) toggleKind() {
	if a.kind == workload.Pod {
		a.kind = workload.Deployment
	} else {
		a.kind = workload.Pod
	}
	a.selected, a.scrollTop = 0, 0
	a.reload()
}

func (a *App) move(delta int) {
	if len(a.items) == 0 {
		return
	}
	a.selected = min(max(a.selected+delta, 0), len(a.items)-1)
	a.ensureVisible()
}

func (a *App) listHeight() int {
	// header, column header, toast line and key bar
	return max(1, a.height-4)
}

func (a *App) ensureVisible() {
	h := a.listHeight()
	if a.selected < a.scrollTop {
		a.scrollTop = a.selected
	}
	if a.selected >= a.scrollTop+h {
		a.scrollTop = a.selected - h + 1
	}
	a.scrollTop = max(0, min(a.scrollTop, max(0, len(a.items)-h)))
}

// startCreate opens a create session and asks for the name. With assist the
// manifest is drafted by the assistant before the editor opens.
func (a *App) startCreate(assist bool) tea.Cmd {
	if a.namespace == "" {
		return a.toast("Select a namespace first", true)
	}
	if _, err := a.opts.Controller.OpenCreate(a.kind, a.namespace); err != nil {
		return a.toast(err.Error(), true)
	}
	help := "Enter: Continue in $EDITOR • Esc: Cancel"
	if assist {
		help = "Enter: Continue • Esc: Cancel"
	}
	id := promptName
	if assist {
		id = promptName + "+" + promptDraft
	}
	a.prompt.Reset(id, fmt.Sprintf("Name of the new %s in %s", a.kind, a.namespace), help, CheckName)
	a.mode = modePrompt
	a.resize()
	return nil
}

func (a *App) handlePrompt(msg PromptResultMsg) tea.Cmd {
	a.mode = modeList
	s := a.opts.Controller.Active()
	if !msg.Confirm || s == nil || s.Mode() != lifecycle.ModeCreate {
		a.opts.Controller.Close()
		return nil
	}
	switch msg.ID {
	case promptName:
		s.SetName(msg.Value)
		return a.edit(s, s.Document())
	case promptName + "+" + promptDraft:
		s.SetName(msg.Value)
		a.prompt.Reset(promptDraft, fmt.Sprintf("Describe the %s %q", a.kind, msg.Value), "Enter: Ask the assistant • Esc: Cancel", CheckNonEmpty)
		a.mode = modePrompt
		a.resize()
		return nil
	case promptDraft:
		return a.draft(s, msg.Value)
	}
	return nil
}

func (a *App) handleEditorFinished(msg editorFinishedMsg) tea.Cmd {
	a.mode = modeList
	s := a.opts.Controller.Active()
	if s == nil {
		return nil
	}
	// closing resets the mode
	mode := s.Mode()
	if mode != lifecycle.ModeCreate && mode != lifecycle.ModeEdit {
		return nil
	}
	if msg.err != nil {
		a.opts.Controller.Close()
		return a.toast(msg.err.Error(), true)
	}
	doc := stripAnnotation(msg.doc)
	if strings.TrimSpace(doc) == "" {
		a.opts.Controller.Close()
		if mode == lifecycle.ModeCreate {
			return a.toast("Create cancelled", false)
		}
		return a.toast("Edit cancelled", false)
	}
	if mode == lifecycle.ModeEdit && strings.TrimSpace(doc) == strings.TrimSpace(stripAnnotation(s.Document())) {
		a.opts.Controller.Close()
		return a.toast("Edit cancelled, no changes made", false)
	}
	s.SetDocument(doc)
	return a.submit(s)
}

// handleSubmitted reopens the editor with the error on top when the session
// survived the failure, so the document can be fixed.
func (a *App) handleSubmitted(msg submittedMsg) tea.Cmd {
	if msg.err == nil {
		return nil
	}
	if a.opts.Controller.Active() != msg.session {
		return nil
	}
	if manifest.IsParseError(msg.err) || lifecycle.IsRequestError(msg.err) {
		return a.edit(msg.session, annotate(msg.session.Document(), msg.err.Error()))
	}
	a.opts.Controller.Close()
	if errors.Is(msg.err, lifecycle.ErrNoSession) {
		return nil
	}
	return a.toast(msg.err.Error(), true)
}

func (a *App) openManifestViewer(s *lifecycle.Session) {
	v := NewTextViewer(fmt.Sprintf("%s %s/%s", s.Kind(), s.Namespace(), s.Name()), s.Document(), "yaml", a.theme())
	v.SetOnEdit(func() tea.Cmd {
		a.viewer = nil
		return a.edit(s, s.Document())
	})
	v.SetOnTheme(func() tea.Cmd {
		a.showThemeSelector(v)
		return nil
	})
	a.openViewer(v)
}

func (a *App) openViewer(v *TextViewer) {
	v.SetOnClose(func() tea.Cmd {
		a.viewer = nil
		a.mode = modeList
		a.opts.Controller.Close()
		return nil
	})
	a.viewer = v
	a.mode = modeViewer
	a.resize()
}

// showThemeSelector previews themes on the open viewer. Enter keeps and
// saves the theme, Esc restores the previous one.
func (a *App) showThemeSelector(v *TextViewer) {
	a.prevTheme = v.Theme()
	sel := NewThemeSelector(func(name string) tea.Cmd {
		v.SetTheme(name)
		a.opts.Config.Viewer.Theme = name
		a.saveConfig()
		a.themes = nil
		a.mode = modeViewer
		return nil
	})
	sel.SetSelectedByName(a.prevTheme)
	sel.SetOnChange(func(name string) tea.Cmd {
		v.SetTheme(name)
		return nil
	})
	sel.SetOnCancel(func() tea.Cmd {
		v.SetTheme(a.prevTheme)
		a.themes = nil
		a.mode = modeViewer
		return nil
	})
	a.themes = sel
	a.mode = modeTheme
	a.resize()
}

func (a *App) resize() {
	a.ensureVisible()
	a.prompt.SetDimensions(min(a.width-4, 70), 7)
	a.confirm.SetDimensions(min(a.width-4, 60), 7)
	a.nsSel.SetDimensions(min(a.width-4, 50), max(5, a.height*2/3))
	if a.viewer != nil {
		a.viewer.SetDimensions(a.width, a.height)
	}
	if a.themes != nil {
		a.themes.SetDimensions(30, min(12, max(3, a.height-6)))
	}
}

func (a *App) View() string {
	if a.width == 0 || a.height == 0 {
		return ""
	}
	switch a.mode {
	case modeViewer:
		if a.viewer != nil {
			return a.viewer.View()
		}
	case modeTheme:
		if a.viewer != nil && a.themes != nil {
			return overlay.Composite(a.themes.View(), a.viewer.View(), overlay.Right, overlay.Top, -1, 1)
		}
	}

	main := a.renderMain()
	switch a.mode {
	case modeNamespace:
		return overlay.Composite(a.nsSel.View(), main, overlay.Center, overlay.Center, 0, 0)
	case modePrompt:
		return overlay.Composite(a.prompt.View(), main, overlay.Center, overlay.Center, 0, 0)
	case modeConfirmDelete:
		return overlay.Composite(a.confirm.View(), main, overlay.Center, overlay.Center, 0, 0)
	}
	return main
}

func (a *App) renderMain() string {
	lines := []string{a.renderHeader(), a.renderColumns()}
	lines = append(lines, a.renderRows()...)
	lines = append(lines, a.renderStatus(), a.renderFunctionKeys())
	return strings.Join(lines, "\n")
}

func (a *App) renderHeader() string {
	tabs := []string{HeaderStyle.Render(" kmanage ")}
	for _, k := range []workload.Kind{workload.Pod, workload.Deployment} {
		style := HeaderTabStyle
		if k == a.kind {
			style = HeaderTabActiveStyle
		}
		tabs = append(tabs, style.Render(k.Title()+"s"))
	}
	left := lipgloss.JoinHorizontal(lipgloss.Top, tabs...)
	ns := a.namespace
	if ns == "" {
		ns = "<none>"
	}
	info := fmt.Sprintf(" namespace: %s ", ns)
	if a.cluster != "" {
		info = fmt.Sprintf(" cluster: %s  namespace: %s ", a.cluster, ns)
	}
	right := HeaderStyle.Render(info)
	gap := max(0, a.width-lipgloss.Width(left)-lipgloss.Width(right))
	return ansi.Truncate(left+HeaderStyle.Render(strings.Repeat(" ", gap))+right, a.width, "")
}

func (a *App) columnWidths() (int, int) {
	status := 12
	return max(10, a.width-status-2), status
}

func (a *App) renderColumns() string {
	nameW, statusW := a.columnWidths()
	return ListHeaderStyle.Width(a.width).Render(fmt.Sprintf(" %-*s %-*s", nameW, "NAME", statusW, "STATUS"))
}

func (a *App) renderRows() []string {
	h := a.listHeight()
	nameW, statusW := a.columnWidths()
	rows := make([]string, 0, h)
	end := min(len(a.items), a.scrollTop+h)
	for i := a.scrollTop; i < end; i++ {
		it := a.items[i]
		sel := i == a.selected
		style := ListItemStyle
		if sel {
			style = ListItemSelectedStyle
		}
		name := style.Render(" " + fmt.Sprintf("%-*s", nameW, ansi.Truncate(it.Name, nameW, "…")) + " ")
		status := statusStyle(it.Status, sel).Width(statusW).Render(string(it.Status))
		pad := style.Render(strings.Repeat(" ", max(0, a.width-lipgloss.Width(name)-lipgloss.Width(status))))
		rows = append(rows, name+status+pad)
	}
	if len(a.items) == 0 && h > 0 {
		text := fmt.Sprintf(" No %s in %s", a.kind.Plural(), a.namespace)
		if a.namespace == "" {
			text = " Select a namespace with N"
		}
		rows = append(rows, ListItemStyle.Width(a.width).Render(text))
	}
	for len(rows) < h {
		rows = append(rows, ListItemStyle.Width(a.width).Render(""))
	}
	return rows
}

func (a *App) renderStatus() string {
	switch {
	case a.toastText != "" && a.toastErr:
		return ToastErrorStyle.Width(a.width).Render(ansi.Truncate(a.toastText, a.width-2, "…"))
	case a.toastText != "":
		return ToastStyle.Width(a.width).Render(ansi.Truncate(a.toastText, a.width-2, "…"))
	case a.busy > 0:
		return BusyStyle.Width(a.width).Render("Working…")
	}
	return FunctionKeyBarStyle.Width(a.width).Render("")
}

func (a *App) renderFunctionKeys() string {
	key := func(k, label string) string {
		return FunctionKeyStyle.Render(k) + FunctionKeyDescriptionStyle.Render(label)
	}
	keys := []string{key("n", "New")}
	if a.opts.Assistant {
		keys = append(keys, key("a", "Assist"))
	}
	keys = append(keys, key("e", "Edit"), key("v", "View"))
	if a.kind == workload.Pod {
		keys = append(keys, key("l", "Logs"))
	}
	keys = append(keys, key("d", "Delete"), key("N", "Namespace"), key("Tab", "Kind"), key("r", "Refresh"), key("q", "Quit"))
	joined := lipgloss.JoinHorizontal(lipgloss.Left, keys...)
	return FunctionKeyBarStyle.Width(a.width).Render(ansi.Truncate(joined, a.width, ""))
}
