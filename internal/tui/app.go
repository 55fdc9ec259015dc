// internal/tui/app.go
//
// This is the terminal UI for riskaudit.
// It uses bubbletea, which follows The Elm Architecture:
//
// 1. Model: Your application state
// 2. Update: A function that updates state based on messages
// 3. View: A function that renders state to a string
//
// Every key press becomes a message; Update turns the ones that matter into
// explicit audit.Session transitions.

package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/kingrea/riskaudit/internal/audit"
	"github.com/kingrea/riskaudit/internal/logbook"
	"github.com/kingrea/riskaudit/internal/records"
	"github.com/kingrea/riskaudit/internal/workflow"
)

// screen represents which view is on display
type screen int

const (
	screenScale   screen = iota // Choosing the audit scale
	screenStage                 // Choosing the stage to work on
	screenNotes                 // Editing notes for the chosen stage
	screenRecords               // Reviewing stored records
)

// RecordStore is what the UI needs from the record store.
type RecordStore interface {
	audit.Recorder
	FetchAll(ctx context.Context) ([]records.Record, error)
	Count(ctx context.Context) (int, error)
}

// AppOption customizes App construction for tests and alternate runtimes.
type AppOption func(*App)

// WithLogbook attaches the activity journal shown in the log panel.
func WithLogbook(lb *logbook.Logbook) AppOption {
	return func(a *App) {
		a.logbook = lb
	}
}

// WithLogger attaches a structured logger.
func WithLogger(logger *zap.Logger) AppOption {
	return func(a *App) {
		if logger != nil {
			a.logger = logger
		}
	}
}

// WithContext sets the context used for store calls.
func WithContext(ctx context.Context) AppOption {
	return func(a *App) {
		if ctx != nil {
			a.ctx = ctx
		}
	}
}

// App is the main application model. In bubbletea, this holds ALL your state.
type App struct {
	screen     screen
	prevScreen screen

	ctx     context.Context
	catalog *workflow.Catalog
	store   RecordStore
	session *audit.Session
	logbook *logbook.Logbook
	logger  *zap.Logger

	// UI components
	scaleMenu list.Model
	stageMenu list.Model
	form      noteForm
	records   table.Model

	recordCount int
	statusMsg   string

	// Window size (we get this from bubbletea)
	width  int
	height int
}

// scaleItem implements list.Item for the scale picker
type scaleItem struct {
	scale workflow.Scale
}

func (i scaleItem) Title() string { return i.scale.Title }
func (i scaleItem) Description() string {
	return fmt.Sprintf("%d stage(s) · %s", len(i.scale.Stages), i.scale.ID)
}
func (i scaleItem) FilterValue() string { return string(i.scale.ID) }

// stageItem implements list.Item for the stage picker
type stageItem struct {
	stage   workflow.Stage
	pos     int
	total   int
	drafted bool
}

func (i stageItem) Title() string { return i.stage.Title }
func (i stageItem) Description() string {
	desc := fmt.Sprintf("Stage %d of %d · %s", i.pos+1, i.total, i.stage.ID)
	if i.drafted {
		desc += " · draft"
	}
	return desc
}
func (i stageItem) FilterValue() string { return string(i.stage.ID) }

// NewApp creates a new App instance
func NewApp(catalog *workflow.Catalog, store RecordStore, opts ...AppOption) *App {
	scaleMenu := list.New(buildScaleMenu(catalog), list.NewDefaultDelegate(), 0, 0)
	scaleMenu.Title = "Select audit scale"
	scaleMenu.SetShowStatusBar(false)
	scaleMenu.SetFilteringEnabled(false)

	stageMenu := list.New(nil, list.NewDefaultDelegate(), 0, 0)
	stageMenu.Title = "Select current stage"
	stageMenu.SetShowStatusBar(false)
	stageMenu.SetFilteringEnabled(false)
	// q is typed into the form later, so only the app decides when to quit.
	scaleMenu.KeyMap.Quit.SetEnabled(false)
	stageMenu.KeyMap.Quit.SetEnabled(false)

	app := &App{
		screen:    screenScale,
		ctx:       context.Background(),
		catalog:   catalog,
		store:     store,
		session:   audit.NewSession(catalog, store),
		logger:    zap.NewNop(),
		scaleMenu: scaleMenu,
		stageMenu: stageMenu,
		form:      newNoteForm(),
		records:   newRecordsTable(),
		statusMsg: "Choose an audit scale to begin",
	}
	for _, opt := range opts {
		if opt != nil {
			opt(app)
		}
	}
	app.refreshCount()
	app.logInfo("Session opened · pass %s", shortID(app.session.PassID()))
	return app
}

func buildScaleMenu(catalog *workflow.Catalog) []list.Item {
	var items []list.Item
	for _, id := range catalog.ListScales() {
		scale, err := catalog.Scale(id)
		if err != nil {
			continue
		}
		items = append(items, scaleItem{scale: scale})
	}
	return items
}

func buildStageMenu(catalog *workflow.Catalog, session *audit.Session) []list.Item {
	ids := session.Stages()
	items := make([]list.Item, 0, len(ids))
	for idx, id := range ids {
		stage, ok := catalog.Stage(id)
		if !ok {
			stage = workflow.Stage{ID: id, Title: string(id)}
		}
		notes := session.NotesFor(id)
		items = append(items, stageItem{
			stage:   stage,
			pos:     idx,
			total:   len(ids),
			drafted: notes.PerformedWork != "" || notes.Problems != "",
		})
	}
	return items
}

func (a *App) logInfo(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Info(format, args...)
}

func (a *App) logError(format string, args ...any) {
	if a.logbook == nil {
		return
	}
	a.logbook.Error(format, args...)
}

// Init is called once when the program starts.
func (a *App) Init() tea.Cmd {
	return nil
}

// Update is called when a message is received.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		a.resize()
		return a, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return a, tea.Quit
		case "q":
			if a.screen == screenScale {
				return a, tea.Quit
			}
		case "ctrl+r":
			return a.openRecords()
		case "r":
			if a.screen == screenScale || a.screen == screenStage {
				return a.openRecords()
			}
		case "ctrl+n":
			return a.startNewPass()
		case "esc":
			return a.back()
		case "enter":
			switch a.screen {
			case screenScale:
				return a.confirmScale()
			case screenStage:
				return a.confirmStage()
			}
		case "ctrl+s":
			if a.screen == screenNotes {
				return a.commit()
			}
		}
	}

	var cmd tea.Cmd
	switch a.screen {
	case screenScale:
		a.scaleMenu, cmd = a.scaleMenu.Update(msg)
	case screenStage:
		a.stageMenu, cmd = a.stageMenu.Update(msg)
	case screenNotes:
		cmd = a.updateForm(msg)
	case screenRecords:
		a.records, cmd = a.records.Update(msg)
	}
	return a, cmd
}

func (a *App) confirmScale() (tea.Model, tea.Cmd) {
	item, ok := a.scaleMenu.SelectedItem().(scaleItem)
	if !ok {
		return a, nil
	}
	if _, err := a.session.ChooseScale(item.scale.ID); err != nil {
		// Only catalog scales are offered, so this is a bug.
		a.statusMsg = fmt.Sprintf("Scale selection failed: %v", err)
		a.logError("Scale selection failed: %v", err)
		return a, nil
	}
	a.stageMenu.SetItems(buildStageMenu(a.catalog, a.session))
	a.stageMenu.Select(0)
	a.stageMenu.Title = fmt.Sprintf("%s · select current stage", item.scale.Title)
	a.screen = screenStage
	a.statusMsg = fmt.Sprintf("Selected %s", item.scale.Title)
	a.logInfo("Scale · %s selected (%d stages)", item.scale.ID, len(a.session.Stages()))
	a.logger.Info("scale selected",
		zap.String("pass_id", a.session.PassID()),
		zap.String("scale", string(item.scale.ID)),
	)
	return a, nil
}

func (a *App) confirmStage() (tea.Model, tea.Cmd) {
	item, ok := a.stageMenu.SelectedItem().(stageItem)
	if !ok {
		return a, nil
	}
	if _, err := a.session.ChooseStage(item.stage.ID); err != nil {
		a.statusMsg = fmt.Sprintf("Stage selection failed: %v", err)
		a.logError("Stage selection failed: %v", err)
		return a, nil
	}
	a.form.load(a.session.Notes())
	a.screen = screenNotes
	a.statusMsg = fmt.Sprintf("Editing notes for %s · Ctrl+S to save", item.stage.Title)
	a.logInfo("Stage · %s selected", item.stage.ID)
	return a, a.form.focusFirstEmpty()
}

func (a *App) updateForm(msg tea.Msg) tea.Cmd {
	cmd := a.form.update(msg)
	notes := a.form.notes()
	if err := a.session.SetPerformedWork(notes.PerformedWork); err != nil {
		a.statusMsg = err.Error()
		return cmd
	}
	if err := a.session.SetProblems(notes.Problems); err != nil {
		a.statusMsg = err.Error()
	}
	return cmd
}

func (a *App) commit() (tea.Model, tea.Cmd) {
	name, position := a.form.identity()
	rec, err := a.session.Commit(a.ctx, name, position)
	if err != nil {
		a.statusMsg = fmt.Sprintf("Save failed, nothing was stored: %v", err)
		a.logError("Commit failed for %s: %v", a.session.Stage(), err)
		a.logger.Error("commit failed",
			zap.String("pass_id", a.session.PassID()),
			zap.String("stage", string(a.session.Stage())),
			zap.Error(err),
		)
		return a, nil
	}
	a.statusMsg = fmt.Sprintf("Saved record #%d for %s", rec.ID, a.catalog.Title(a.session.Stage()))
	a.logInfo("Saved · record #%d · %s · %s", rec.ID, rec.Stage, rec.AuditorName)
	a.logger.Info("record committed",
		zap.String("pass_id", a.session.PassID()),
		zap.Int64("record_id", rec.ID),
		zap.String("stage", rec.Stage),
	)
	a.refreshCount()
	return a, nil
}

func (a *App) openRecords() (tea.Model, tea.Cmd) {
	if a.screen != screenRecords {
		a.prevScreen = a.screen
	}
	a.form.blur()
	a.reloadRecords()
	a.refreshCount()
	a.screen = screenRecords
	return a, nil
}

func (a *App) reloadRecords() {
	if a.store == nil {
		return
	}
	recs, err := a.store.FetchAll(a.ctx)
	if err != nil {
		a.statusMsg = fmt.Sprintf("Could not load records: %v", err)
		a.logError("Load records failed: %v", err)
		return
	}
	a.records.SetRows(recordRows(recs))
	if len(recs) > 0 {
		a.records.GotoBottom()
	}
}

// refreshCount updates the record total shown in the audit panel.
func (a *App) refreshCount() {
	if a.store == nil {
		return
	}
	n, err := a.store.Count(a.ctx)
	if err != nil {
		a.statusMsg = fmt.Sprintf("Could not count records: %v", err)
		a.logError("Count records failed: %v", err)
		return
	}
	a.recordCount = n
}

func (a *App) startNewPass() (tea.Model, tea.Cmd) {
	a.session.Reset()
	a.form.reset()
	a.stageMenu.SetItems(nil)
	a.screen = screenScale
	a.statusMsg = "New pass started · choose an audit scale"
	a.logInfo("Session reset · pass %s", shortID(a.session.PassID()))
	return a, nil
}

// back moves one screen towards the scale picker. The session keeps its
// state, so returning to a stage restores its notes.
func (a *App) back() (tea.Model, tea.Cmd) {
	switch a.screen {
	case screenRecords:
		a.screen = a.prevScreen
		if a.screen == screenNotes {
			return a, a.form.focusCurrent()
		}
	case screenNotes:
		a.form.blur()
		cursor := a.stageMenu.Index()
		a.stageMenu.SetItems(buildStageMenu(a.catalog, a.session))
		a.stageMenu.Select(cursor)
		a.screen = screenStage
		a.statusMsg = "Pick another stage or Esc to change scale"
	case screenStage:
		a.screen = screenScale
		a.statusMsg = "Choose an audit scale"
	}
	return a, nil
}

func (a *App) resize() {
	mainWidth, _ := a.columnWidths()
	listHeight := max(6, a.height-14)
	a.scaleMenu.SetSize(max(20, mainWidth-4), listHeight)
	a.stageMenu.SetSize(max(20, mainWidth-4), listHeight)
	a.form.setWidth(max(20, mainWidth-4))
	a.records.SetWidth(max(40, a.width-6))
	a.records.SetHeight(max(5, a.height-12))
}

func (a *App) columnWidths() (int, int) {
	width := a.width
	if width <= 0 {
		width = 100
	}
	rightWidth := max(32, width/3)
	leftWidth := width - rightWidth - 4
	if leftWidth < 40 {
		return width - 4, 0
	}
	return leftWidth, rightWidth
}

// View renders the current state to a string.
func (a *App) View() string {
	leftWidth, rightWidth := a.columnWidths()
	var content string
	switch a.screen {
	case screenScale:
		content = a.scaleMenu.View()
	case screenStage:
		content = a.stageMenu.View()
	case screenNotes:
		content = a.form.view(a.catalog.Title(a.session.Stage()))
	case screenRecords:
		content = a.renderRecords()
		leftWidth, rightWidth = max(40, a.width-4), 0
	}
	return a.renderBoard(content, leftWidth, rightWidth)
}

func (a *App) renderBoard(mainContent string, leftWidth, rightWidth int) string {
	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(lipgloss.Color("#FF6B6B")).
		MarginBottom(1).
		Render("⬡ RISKAUDIT")
	leftBox := panelStyle.Width(max(20, leftWidth)).Render(mainContent)
	body := leftBox
	if rightWidth > 0 {
		rightBox := panelStyle.Width(max(20, rightWidth)).Render(a.renderAuditPanel(rightWidth - 4))
		body = lipgloss.JoinHorizontal(lipgloss.Top, leftBox, rightBox)
	}
	sections := []string{header, body}
	if logPanel := a.renderLogPanel(); logPanel != "" {
		sections = append(sections, logPanel)
	}
	footer := hintStyle.MarginTop(1).Render(a.statusMsg + "\n" + a.keyHints())
	sections = append(sections, footer)
	return strings.Join(sections, "\n")
}

func (a *App) renderAuditPanel(width int) string {
	lines := []string{titleStyle.Render("Audit")}
	scale := "not chosen"
	if id := a.session.Scale(); id != "" {
		if def, err := a.catalog.Scale(id); err == nil {
			scale = def.Title
		}
	}
	lines = append(lines, fmt.Sprintf("Scale: %s", scale))

	stage, desc := a.highlightedStage()
	if stage != "" {
		lines = append(lines, fmt.Sprintf("Stage: %s", a.catalog.Title(stage)))
		if desc != "" {
			lines = append(lines, "", detailTextStyle.Render(desc))
		}
	}
	lines = append(lines, "", fmt.Sprintf("Stored records: %d", a.recordCount))
	lines = append(lines, mutedStyle.Render(fmt.Sprintf("Pass %s", shortID(a.session.PassID()))))
	return lipgloss.NewStyle().Width(max(20, width)).Render(strings.Join(lines, "\n"))
}

// highlightedStage is the stage under the cursor on the stage screen, or the
// chosen stage elsewhere, together with its description.
func (a *App) highlightedStage() (workflow.StageID, string) {
	if a.screen == screenStage {
		if item, ok := a.stageMenu.SelectedItem().(stageItem); ok {
			return item.stage.ID, item.stage.Description
		}
	}
	return a.session.Stage(), a.session.Description()
}

func (a *App) renderLogPanel() string {
	if a.logbook == nil {
		return ""
	}
	lines, total := a.logbook.Tail(6)
	if len(lines) == 0 {
		return ""
	}
	fileName := filepath.Base(a.logbook.Path())
	if fileName == "." || fileName == "" {
		fileName = "log"
	}
	head := titleStyle.Render(fmt.Sprintf("LOG · %s · %d entries", fileName, total))
	body := lipgloss.NewStyle().
		Foreground(lipgloss.Color("#AAAAAA")).
		Render(strings.Join(lines, "\n"))
	return panelStyle.Render(fmt.Sprintf("%s\n%s", head, body))
}

func (a *App) keyHints() string {
	switch a.screen {
	case screenScale:
		return "Enter → choose scale    r → records    q → quit"
	case screenStage:
		return "Enter → choose stage    r → records    Esc → change scale"
	case screenNotes:
		return "Tab → next field    Ctrl+S → save    Ctrl+R → records    Ctrl+N → new pass    Esc → stages"
	case screenRecords:
		return "↑/↓ → scroll    Esc → back"
	}
	return ""
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
