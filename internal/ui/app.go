package ui

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/panels/internal/config"
	"github.com/five82/panels/internal/instance"
	"github.com/five82/panels/internal/logtail"
	"github.com/five82/panels/internal/prefs"
	"github.com/five82/panels/internal/state"
)

// Engine is the part of the instance registry the viewer drives.
type Engine interface {
	IDs() []string
	Dispatch(ctx context.Context, id string, cmd instance.Command) error
	Broadcast(ctx context.Context, cmd instance.Command) error
	StartAll(ctx context.Context) error
	Status(id string) (instance.Status, bool)
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Engine    Engine
	Store     *state.Store
	Display   config.DisplayConfig
	LogFile   string
	PollTick  time.Duration
	ThemeName string
	Instance  string // instance focused at start; empty means the first
	PrefsPath string
	Logger    *slog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	engine    Engine
	store     *state.Store
	display   config.DisplayConfig
	logFile   string
	prefsPath string
	pollTick  time.Duration
	logger    *slog.Logger

	// UI state
	theme   Theme
	keys    keyMap
	help    help.Model
	width   int
	height  int
	ready   bool
	ids     []string
	focused int

	// Data state
	snapshot state.Snapshot
	status   map[string]instance.Status

	// Overlays
	showHelp  bool
	showLogs  bool
	logView   viewport.Model
	prompting bool
	prompt    textinput.Model

	// Footer message
	flash      string
	flashErr   bool
	flashUntil time.Time
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = DefaultUIInterval
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	store := opts.Store
	if store == nil {
		store = &state.Store{}
	}

	var ids []string
	if opts.Engine != nil {
		ids = opts.Engine.IDs()
	}
	focused := 0
	for i, id := range ids {
		if id == opts.Instance {
			focused = i
		}
	}

	prompt := textinput.New()
	prompt.Prompt = ": "
	prompt.Placeholder = "number, first, latest, next, previous, random"
	prompt.CharLimit = 16

	return Model{
		ctx:       ctx,
		engine:    opts.Engine,
		store:     store,
		display:   opts.Display,
		logFile:   opts.LogFile,
		prefsPath: prefsPath,
		pollTick:  pollTick,
		logger:    logger,
		theme:     GetTheme(opts.ThemeName),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		ids:       ids,
		focused:   focused,
		status:    make(map[string]instance.Status),
		logView:   viewport.New(0, LogPaneHeight),
		prompt:    prompt,
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.pollTick),
		fetchSnapshotCmd(m.store, m.engine, m.ids),
	}
	if m.engine != nil {
		cmds = append(cmds, startAllCmd(m.ctx, m.engine))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.logView.Width = max(msg.Width-4, 0)
		m.ready = true
		return m, nil

	case tea.FocusMsg:
		return m, m.broadcast(instance.Command{Kind: instance.Resume})

	case tea.BlurMsg:
		return m, m.broadcast(instance.Command{Kind: instance.Suspend})

	case tickMsg:
		return m.handleTick(time.Time(msg))

	case snapshotMsg:
		m.snapshot = msg.snapshot
		m.status = msg.status
		return m, nil

	case commandMsg:
		return m.handleCommandResult(msg)

	case startedMsg:
		if msg.err != nil {
			m.setFlash("start-up: "+msg.err.Error(), true)
		}
		return m, fetchSnapshotCmd(m.store, m.engine, m.ids)

	case logLinesMsg:
		if msg.err != nil {
			m.logView.SetContent(m.theme.Styles().DangerText.Render(msg.err.Error()))
			return m, nil
		}
		m.logView.SetContent(m.formatLogLines(msg.lines))
		m.logView.GotoBottom()
		return m, nil
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}
	if m.prompting {
		return m.handlePromptKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.NextInstance):
		m.cycleInstance(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevInstance):
		m.cycleInstance(-1)
		return m, nil

	case key.Matches(msg, m.keys.ToggleLogs):
		m.showLogs = !m.showLogs
		if m.showLogs {
			return m, readLogsCmd(m.logFile)
		}
		return m, nil

	case key.Matches(msg, m.keys.First):
		return m, m.dispatch(instance.Command{Kind: instance.GotoFirst})
	case key.Matches(msg, m.keys.Latest):
		return m, m.dispatch(instance.Command{Kind: instance.GotoLatest})
	case key.Matches(msg, m.keys.Previous):
		return m, m.dispatch(instance.Command{Kind: instance.GotoPrevious})
	case key.Matches(msg, m.keys.Next):
		return m, m.dispatch(instance.Command{Kind: instance.GotoNext})
	case key.Matches(msg, m.keys.Random):
		return m, m.dispatch(instance.Command{Kind: instance.GotoRandom})

	case key.Matches(msg, m.keys.Goto):
		m.prompting = true
		m.prompt.Reset()
		focus := m.prompt.Focus()
		return m, tea.Batch(focus, textinput.Blink)

	case key.Matches(msg, m.keys.ToggleSuspend):
		kind := instance.Suspend
		if st, ok := m.status[m.focusedID()]; ok && st.Visibility == instance.Hidden {
			kind = instance.Resume
		}
		return m, m.dispatch(instance.Command{Kind: kind})
	}

	if m.showLogs {
		var cmd tea.Cmd
		m.logView, cmd = m.logView.Update(msg)
		return m, cmd
	}
	return m, nil
}

// handlePromptKey processes input while the goto prompt is open.
func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Cancel):
		m.closePrompt()
		return m, nil

	case key.Matches(msg, m.keys.Confirm):
		value := strings.TrimSpace(m.prompt.Value())
		m.closePrompt()
		if value == "" {
			return m, nil
		}
		cmd, err := instance.ParseCommand(value)
		if err != nil {
			m.setFlash(err.Error(), true)
			return m, nil
		}
		return m, m.dispatch(cmd)
	}

	var cmd tea.Cmd
	m.prompt, cmd = m.prompt.Update(msg)
	return m, cmd
}

func (m *Model) closePrompt() {
	m.prompting = false
	m.prompt.Blur()
}

// handleTick processes the polling tick.
func (m Model) handleTick(now time.Time) (tea.Model, tea.Cmd) {
	if m.flash != "" && now.After(m.flashUntil) {
		m.flash = ""
		m.flashErr = false
	}

	cmds := []tea.Cmd{
		fetchSnapshotCmd(m.store, m.engine, m.ids),
		tickCmd(m.pollTick),
	}
	if m.showLogs {
		cmds = append(cmds, readLogsCmd(m.logFile))
	}
	return m, tea.Batch(cmds...)
}

func (m Model) handleCommandResult(msg commandMsg) (tea.Model, tea.Cmd) {
	switch {
	case errors.Is(msg.err, instance.ErrBusy):
		m.setFlash(msg.cmd.String()+" ignored: still loading", false)
	case msg.err != nil:
		m.setFlash(msg.err.Error(), true)
	case msg.cmd.Kind == instance.Suspend:
		m.setFlash("updates suspended", false)
	case msg.cmd.Kind == instance.Resume:
		m.setFlash("updates resumed", false)
	}
	return m, fetchSnapshotCmd(m.store, m.engine, m.ids)
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
	m.flashUntil = time.Now().Add(FlashDuration)
}

func (m *Model) cycleInstance(delta int) {
	if len(m.ids) < 2 {
		return
	}
	m.focused = (m.focused + delta + len(m.ids)) % len(m.ids)
	m.savePrefs()
}

func (m Model) focusedID() string {
	if m.focused < 0 || m.focused >= len(m.ids) {
		return ""
	}
	return m.ids[m.focused]
}

func (m Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	p := prefs.Prefs{Theme: m.theme.Name, Instance: m.focusedID()}
	if err := prefs.Save(m.prefsPath, p); err != nil {
		m.logger.Warn("save preferences failed", "path", m.prefsPath, "error", err)
	}
}

func (m Model) dispatch(cmd instance.Command) tea.Cmd {
	id := m.focusedID()
	if m.engine == nil || id == "" {
		return nil
	}
	return dispatchCmd(m.ctx, m.engine, id, cmd)
}

func (m Model) broadcast(cmd instance.Command) tea.Cmd {
	if m.engine == nil {
		return nil
	}
	ctx, engine := m.ctx, m.engine
	return func() tea.Msg {
		return commandMsg{cmd: cmd, err: engine.Broadcast(ctx, cmd)}
	}
}

func (m Model) formatLogLines(lines []string) string {
	styles := m.theme.Styles()
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		entry, ok := logtail.Parse(line)
		if !ok {
			out = append(out, styles.FaintText.Render(line))
			continue
		}
		text := entry.Format()
		switch strings.ToUpper(entry.Level) {
		case "ERROR":
			out = append(out, styles.DangerText.Render(text))
		case "WARN":
			out = append(out, styles.WarningText.Render(text))
		case "DEBUG":
			out = append(out, styles.FaintText.Render(text))
		default:
			out = append(out, styles.Text.Render(text))
		}
	}
	return strings.Join(out, "\n")
}

// Messages

type tickMsg time.Time

type snapshotMsg struct {
	snapshot state.Snapshot
	status   map[string]instance.Status
}

type commandMsg struct {
	id  string // empty for broadcasts
	cmd instance.Command
	err error
}

type startedMsg struct {
	err error
}

type logLinesMsg struct {
	lines []string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store, engine Engine, ids []string) tea.Cmd {
	return func() tea.Msg {
		status := make(map[string]instance.Status, len(ids))
		if engine != nil {
			for _, id := range ids {
				if st, ok := engine.Status(id); ok {
					status[id] = st
				}
			}
		}
		return snapshotMsg{snapshot: store.Snapshot(), status: status}
	}
}

func startAllCmd(ctx context.Context, engine Engine) tea.Cmd {
	return func() tea.Msg {
		return startedMsg{err: engine.StartAll(ctx)}
	}
}

func dispatchCmd(ctx context.Context, engine Engine, id string, cmd instance.Command) tea.Cmd {
	return func() tea.Msg {
		return commandMsg{id: id, cmd: cmd, err: engine.Dispatch(ctx, id, cmd)}
	}
}

func readLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if strings.TrimSpace(path) == "" {
			return logLinesMsg{err: errors.New("no log file configured")}
		}
		lines, err := logtail.Read(path, LogPaneLines)
		return logLinesMsg{lines: lines, err: err}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or ctx
// is cancelled.
func Run(opts Options) error {
	m := New(opts)
	teaOpts := []tea.ProgramOption{tea.WithAltScreen(), tea.WithReportFocus()}
	if opts.Context != nil {
		teaOpts = append(teaOpts, tea.WithContext(opts.Context))
	}
	p := tea.NewProgram(m, teaOpts...)
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}
