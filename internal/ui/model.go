// Package ui is the interactive session: a bubbletea model that owns the
// consumer-side dataset copy, drains the index and search streams, and
// renders the result list. It implements both stream view contracts so
// envelope actions apply directly to it.
package ui

import (
	"log/slog"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/Alb-O/frz/internal/data"
	"github.com/Alb-O/frz/internal/extension"
	"github.com/Alb-O/frz/internal/index"
	"github.com/Alb-O/frz/internal/search"
	"github.com/Alb-O/frz/internal/stream"
	"github.com/Alb-O/frz/internal/worker"
)

// SearchOutcome is what the session ends with.
type SearchOutcome struct {
	Accepted  bool
	Selection extension.Selection
	Query     string
}

// Options configures a session.
type Options struct {
	InitialQuery string
	InitialMode  string
	NoColor      bool
}

// resultSet is the rendered state for one mode.
type resultSet struct {
	batch    search.MatchBatch
	complete bool
}

// Model is the bubbletea model for one search session.
type Model struct {
	data          *data.SearchData
	worker        *worker.Worker
	indexStream   *stream.Receiver[index.View]
	watchStream   *stream.Receiver[index.View]
	catalog       *extension.Catalog
	contributions *extension.Contributions

	input   textinput.Model
	styles  Styles
	modes   []extension.Mode
	active  int
	results map[string]resultSet
	// appliedID is the highest envelope id applied per mode; older
	// envelopes are discarded without being applied.
	appliedID map[string]uint64

	// fileByID and attrByID map stable row ids to current positions;
	// rebuilt after every merge that changed the dataset.
	fileByID map[uint64]int
	attrByID map[uint64]int

	cursor     int
	selectedID uint64

	width    int
	height   int
	quitting bool
	outcome  SearchOutcome
}

// New builds a session model. The watch receiver may be nil.
func New(d *data.SearchData, w *worker.Worker, indexStream, watchStream *stream.Receiver[index.View], catalog *extension.Catalog, contributions *extension.Contributions, opts Options) *Model {
	input := textinput.New()
	input.Placeholder = "type to search"
	input.Prompt = "> "
	input.SetValue(opts.InitialQuery)
	input.Focus()

	styles := DefaultStyles()
	if opts.NoColor {
		styles = NoColorStyles()
	}

	modes := catalog.Modes()
	active := 0
	for i, mode := range modes {
		if mode.ID() == opts.InitialMode {
			active = i
		}
	}

	d.InitialQuery = opts.InitialQuery

	return &Model{
		data:          d,
		worker:        w,
		indexStream:   indexStream,
		watchStream:   watchStream,
		catalog:       catalog,
		contributions: contributions,
		input:         input,
		styles:        styles,
		modes:         modes,
		active:        active,
		results:       make(map[string]resultSet),
		appliedID:     make(map[string]uint64),
		fileByID:      make(map[uint64]int),
		attrByID:      make(map[uint64]int),
		width:         80,
		height:        24,
	}
}

// Outcome returns the session result once the program has finished.
func (m *Model) Outcome() SearchOutcome { return m.outcome }

// Message types.
type indexEnvelopeMsg struct {
	env index.Envelope
	ok  bool
}

type watchEnvelopeMsg struct {
	env index.Envelope
	ok  bool
}

type searchEnvelopeMsg struct {
	env search.Envelope
	ok  bool
}

func waitIndex(r *stream.Receiver[index.View]) tea.Cmd {
	return func() tea.Msg {
		env, ok := r.Recv()
		return indexEnvelopeMsg{env: env, ok: ok}
	}
}

func waitWatch(r *stream.Receiver[index.View]) tea.Cmd {
	return func() tea.Msg {
		env, ok := r.Recv()
		return watchEnvelopeMsg{env: env, ok: ok}
	}
}

func waitSearch(r *stream.Receiver[search.View]) tea.Cmd {
	return func() tea.Msg {
		env, ok := r.Recv()
		return searchEnvelopeMsg{env: env, ok: ok}
	}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		textinput.Blink,
		waitIndex(m.indexStream),
		waitSearch(m.worker.Results()),
	}
	if m.watchStream != nil {
		cmds = append(cmds, waitWatch(m.watchStream))
	}
	m.submitQuery()
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = msg.Width - 4
		return m, nil

	case indexEnvelopeMsg:
		if !msg.ok {
			return m, nil
		}
		msg.env.Dispatch(m)
		return m, waitIndex(m.indexStream)

	case watchEnvelopeMsg:
		if !msg.ok {
			return m, nil
		}
		msg.env.Dispatch(m)
		return m, waitWatch(m.watchStream)

	case searchEnvelopeMsg:
		if !msg.ok {
			return m, nil
		}
		m.applySearchEnvelope(msg.env)
		return m, waitSearch(m.worker.Results())
	}

	return m.updateInput(msg)
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+c", "esc":
		m.quitting = true
		m.outcome = SearchOutcome{Accepted: false, Query: m.input.Value()}
		return m, tea.Quit

	case "enter":
		if selection, ok := m.resolveSelection(); ok {
			m.quitting = true
			m.outcome = SearchOutcome{Accepted: true, Selection: selection, Query: m.input.Value()}
			return m, tea.Quit
		}
		return m, nil

	case "tab":
		if n := len(m.modes); n > 0 {
			m.switchMode((m.active + 1) % n)
		}
		return m, nil

	case "shift+tab":
		if n := len(m.modes); n > 0 {
			m.switchMode((m.active + n - 1) % n)
		}
		return m, nil

	case "up", "ctrl+p":
		m.moveCursor(-1)
		return m, nil

	case "down", "ctrl+n":
		m.moveCursor(1)
		return m, nil
	}

	return m.updateInput(msg)
}

func (m *Model) updateInput(msg tea.Msg) (tea.Model, tea.Cmd) {
	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() != before {
		m.submitQuery()
	}
	return m, cmd
}

func (m *Model) switchMode(next int) {
	if next == m.active || len(m.modes) == 0 {
		return
	}
	m.active = next
	m.cursor = 0
	m.selectedID = 0
	m.submitQuery()
}

func (m *Model) moveCursor(delta int) {
	batch := m.activeResults().batch
	if len(batch.IDs) == 0 {
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(batch.IDs) {
		m.cursor = len(batch.IDs) - 1
	}
	m.selectedID = batch.IDs[m.cursor]
}

func (m *Model) submitQuery() {
	if len(m.modes) == 0 {
		return
	}
	m.worker.SubmitQuery(m.input.Value(), m.activeMode())
}

func (m *Model) activeMode() extension.Mode {
	if len(m.modes) == 0 {
		return extension.Mode{}
	}
	return m.modes[m.active]
}

func (m *Model) activeResults() resultSet {
	return m.results[m.activeMode().ID()]
}

// applySearchEnvelope guards against out-of-order delivery: an envelope
// older than the highest applied one for its mode is discarded, never
// applied.
func (m *Model) applySearchEnvelope(env search.Envelope) {
	if env.ID < m.appliedID[env.Mode] {
		slog.Debug("discarding stale envelope",
			slog.Uint64("id", env.ID),
			slog.Uint64("applied", m.appliedID[env.Mode]),
			slog.String("mode", env.Mode))
		return
	}
	m.appliedID[env.Mode] = env.ID
	env.Dispatch(m)
}

// resolveSelection resolves the cursor row, preferring a registered
// selection resolver over the module's default.
func (m *Model) resolveSelection() (extension.Selection, bool) {
	batch := m.activeResults().batch
	if m.cursor < 0 || m.cursor >= len(batch.IDs) {
		return extension.Selection{}, false
	}

	mode := m.activeMode()
	index, ok := m.currentIndex(mode, batch.IDs[m.cursor])
	if !ok {
		return extension.Selection{}, false
	}

	ctx := extension.SelectionContext{Data: m.data, Query: m.input.Value()}
	if resolver, ok := m.contributions.Selections.Resolve(mode.ID()); ok {
		return resolver.Resolve(ctx, index)
	}
	module, ok := m.catalog.ModuleFor(mode)
	if !ok {
		return extension.Selection{}, false
	}
	return module.Selection(ctx, index)
}

// currentIndex maps a stable row id to the row's position in the
// current dataset. Batches address the snapshot they were matched
// against; merges since then may have shifted positions.
func (m *Model) currentIndex(mode extension.Mode, id uint64) (int, bool) {
	module, ok := m.catalog.ModuleFor(mode)
	if !ok {
		return 0, false
	}
	if module.Descriptor().Kind == extension.KindAttribute {
		i, ok := m.attrByID[id]
		return i, ok
	}
	i, ok := m.fileByID[id]
	return i, ok
}

// rebuildRowIndex refreshes the id-to-position maps after a merge.
func (m *Model) rebuildRowIndex() {
	m.fileByID = make(map[uint64]int, len(m.data.Files))
	for i, row := range m.data.Files {
		m.fileByID[row.ID] = i
	}
	m.attrByID = make(map[uint64]int, len(m.data.Attributes))
	for i, row := range m.data.Attributes {
		m.attrByID[row.ID] = i
	}
}

// revalidateCursor keeps the selection on the same row id after the
// result set or dataset changed; when the row is gone the cursor
// clamps.
func (m *Model) revalidateCursor() {
	batch := m.activeResults().batch
	if len(batch.IDs) == 0 {
		m.cursor = 0
		return
	}
	if m.selectedID != 0 {
		for i, id := range batch.IDs {
			if id == m.selectedID {
				m.cursor = i
				return
			}
		}
	}
	if m.cursor >= len(batch.IDs) {
		m.cursor = len(batch.IDs) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
	m.selectedID = batch.IDs[m.cursor]
}

// ForwardUpdate implements index.View.
func (m *Model) ForwardUpdate(update data.IndexUpdate) {
	m.worker.ForwardUpdate(update)
}

// ApplyUpdate implements index.View.
func (m *Model) ApplyUpdate(update data.IndexUpdate) bool {
	return m.data.ApplyUpdate(update)
}

// RecordProgress implements index.View.
func (m *Model) RecordProgress(progress data.Progress) {
	m.data.Progress = progress
}

// ScheduleRefresh implements index.View.
func (m *Model) ScheduleRefresh(changed bool) {
	if !changed {
		return
	}
	m.rebuildRowIndex()
	m.revalidateCursor()
}

// ReplaceMatches implements search.View.
func (m *Model) ReplaceMatches(mode string, batch search.MatchBatch) {
	rs := m.results[mode]
	rs.batch = batch
	m.results[mode] = rs
	if mode == m.activeMode().ID() {
		m.revalidateCursor()
	}
}

// ClearMatches implements search.View.
func (m *Model) ClearMatches(mode string) {
	rs := m.results[mode]
	rs.batch = search.MatchBatch{}
	m.results[mode] = rs
	if mode == m.activeMode().ID() {
		m.cursor = 0
		m.selectedID = 0
	}
}

// RecordCompletion implements search.View.
func (m *Model) RecordCompletion(mode string, complete bool) {
	rs := m.results[mode]
	rs.complete = complete
	m.results[mode] = rs
}
