package tui

import (
	"fmt"
	"image/color"
	"strings"

	"charm.land/bubbles/v2/help"
	"charm.land/bubbles/v2/key"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
	"github.com/atotto/clipboard"
	"github.com/hylla/mergegrid/internal/app"
	"github.com/hylla/mergegrid/internal/domain"
	"github.com/hylla/mergegrid/internal/rangeref"
	"github.com/hylla/mergegrid/internal/textgrid"
)

// Screen offsets of the grid canvas: a title line and one blank line above, one pad column left.
const (
	gridTop  = 2
	gridLeft = 1
)

const (
	mergeButtonLabel    = "[ merge ]"
	separateButtonLabel = "[ separate ]"
	buttonGap           = 2
)

// helpMarkdown is rendered through glamour in the help overlay.
const helpMarkdown = `
Drag with the **left mouse button** to select a rectangle of cells. A selection
that touches part of a merged cell grows until it holds the whole merged cell.

| key | action |
| --- | --- |
| %s | merge the selection into one cell |
| %s | separate merged cells in the selection |
| %s | copy the selection as an A1 range |
| %s | clear the selection |
| %s | close this help |
| %s | quit |

The merge and separate buttons under the grid can be clicked too.
`

// Model is the bubbletea model for one interactive grid.
type Model struct {
	ctrl *app.Controller

	ready  bool
	width  int
	height int

	status   string
	showHelp bool

	help     help.Model
	keys     keyMap
	gridOpts textgrid.Options
	markdown *markdownRenderer

	copyText func(string) error
	logger   app.Logger
}

// NewModel constructs a model over ctrl.
func NewModel(ctrl *app.Controller, opts ...Option) Model {
	h := help.New()
	h.ShowAll = false
	m := Model{
		ctrl:     ctrl,
		status:   "drag to select cells",
		help:     h,
		keys:     newKeyMap(),
		gridOpts: textgrid.DefaultOptions(),
		markdown: &markdownRenderer{},
		copyText: clipboard.WriteAll,
		logger:   discardLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&m)
		}
	}
	return m
}

// Init starts the program without commands.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update applies one message.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)

	case tea.MouseClickMsg:
		return m.handleMouseClick(msg)

	case tea.MouseMotionMsg:
		return m.handleMouseMotion(msg)

	case tea.MouseReleaseMsg:
		return m.handleMouseRelease(msg)

	default:
		return m, nil
	}
}

// handleKey dispatches action keys.
func (m Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.toggleHelp), key.Matches(msg, m.keys.clear):
			m.showHelp = false
		}
		return m, nil
	}
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.toggleHelp):
		m.showHelp = true
	case key.Matches(msg, m.keys.merge):
		m.runAction(domain.ChangeOperationMerge)
	case key.Matches(msg, m.keys.separate):
		m.runAction(domain.ChangeOperationSeparate)
	case key.Matches(msg, m.keys.copyRange):
		m.copySelection()
	case key.Matches(msg, m.keys.clear):
		m.ctrl.ClearSelection()
		m.status = "selection cleared"
	}
	return m, nil
}

// handleMouseClick starts a drag on the grid or presses an action button.
func (m Model) handleMouseClick(msg tea.MouseClickMsg) (tea.Model, tea.Cmd) {
	if m.showHelp || msg.Button != tea.MouseLeft {
		return m, nil
	}
	canvas := m.canvas()
	if cell, ok := m.cellAt(canvas, msg.X, msg.Y); ok {
		m.ctrl.PointerDown(cell)
		m.status = "selecting"
		return m, nil
	}
	switch m.buttonAt(canvas, msg.X, msg.Y) {
	case domain.ChangeOperationMerge:
		m.runAction(domain.ChangeOperationMerge)
	case domain.ChangeOperationSeparate:
		m.runAction(domain.ChangeOperationSeparate)
	}
	return m, nil
}

// handleMouseMotion extends an active drag; motion off the grid is ignored.
func (m Model) handleMouseMotion(msg tea.MouseMotionMsg) (tea.Model, tea.Cmd) {
	if m.ctrl.State() != app.PointerSelecting {
		return m, nil
	}
	cell, ok := m.cellAt(m.canvas(), msg.X, msg.Y)
	if !ok {
		return m, nil
	}
	m.ctrl.PointerMove(cell)
	return m, nil
}

// handleMouseRelease ends an active drag and keeps the selection.
func (m Model) handleMouseRelease(tea.MouseReleaseMsg) (tea.Model, tea.Cmd) {
	if !m.ctrl.PointerUp() {
		return m, nil
	}
	if sel, ok := m.ctrl.Selection(); ok {
		m.status = "selected"
		m.logger.Debug("selection changed", "range", rangeref.MustFormat(sel))
	}
	return m, nil
}

// runAction applies merge or separate to the current selection.
func (m *Model) runAction(op domain.ChangeOperation) {
	var (
		sel domain.Selection
		err error
	)
	switch op {
	case domain.ChangeOperationMerge:
		sel, err = m.ctrl.MergeCells()
	case domain.ChangeOperationSeparate:
		sel, err = m.ctrl.SeparateCells()
	default:
		return
	}
	if err != nil {
		m.status = fmt.Sprintf("%s: %v", op, err)
		m.logger.Warn("grid action rejected", "operation", op, "err", err)
		return
	}
	ref := rangeref.MustFormat(sel)
	if op == domain.ChangeOperationMerge {
		m.status = "merged " + ref
	} else {
		m.status = "separated " + ref
	}
	m.logger.Info("grid action applied", "operation", op, "range", ref)
}

// copySelection writes the A1 range of the selection to the clipboard.
func (m *Model) copySelection() {
	sel, ok := m.ctrl.Selection()
	if !ok {
		m.status = "copy range: " + domain.ErrNoSelection.Error()
		return
	}
	ref := rangeref.MustFormat(sel)
	if err := m.copyText(ref); err != nil {
		m.status = "copy failed: " + err.Error()
		m.logger.Warn("clipboard write failed", "range", ref, "err", err)
		return
	}
	m.status = "copied " + ref
}

// canvas renders the current grid frame.
func (m Model) canvas() textgrid.Canvas {
	return textgrid.Render(m.ctrl.Layout(), m.gridOpts)
}

// cellAt maps a screen position to a logical cell.
func (m Model) cellAt(canvas textgrid.Canvas, x, y int) (domain.Coord, bool) {
	return canvas.CellAt(x-gridLeft, y-gridTop)
}

// buttonsRow returns the screen row of the action buttons.
func buttonsRow(canvas textgrid.Canvas) int {
	_, h := canvas.Size()
	if h == 0 {
		// the "empty grid" placeholder takes one line
		h = 1
	}
	return gridTop + h + 1
}

// buttonAt reports which action button, if any, sits at a screen position.
func (m Model) buttonAt(canvas textgrid.Canvas, x, y int) domain.ChangeOperation {
	if y != buttonsRow(canvas) {
		return ""
	}
	mergeStart := gridLeft
	mergeEnd := mergeStart + lipgloss.Width(mergeButtonLabel)
	separateStart := mergeEnd + buttonGap
	separateEnd := separateStart + lipgloss.Width(separateButtonLabel)
	switch {
	case x >= mergeStart && x < mergeEnd:
		return domain.ChangeOperationMerge
	case x >= separateStart && x < separateEnd:
		return domain.ChangeOperationSeparate
	default:
		return ""
	}
}

// rangeLabel formats the selection as "A1:B2 (2x2)".
func (m Model) rangeLabel() string {
	sel, ok := m.ctrl.Selection()
	if !ok {
		return "none"
	}
	return fmt.Sprintf("%s (%dx%d)", rangeref.MustFormat(sel), sel.Rows(), sel.Cols())
}

// View renders the grid, the action buttons, and the footer.
func (m Model) View() tea.View {
	v := tea.NewView(m.renderContent())
	v.MouseMode = tea.MouseModeCellMotion
	v.AltScreen = true
	return v
}

// renderContent renders the full screen as text.
func (m Model) renderContent() string {
	if !m.ready {
		return "loading..."
	}

	accent := lipgloss.Color("62")
	muted := lipgloss.Color("241")
	dim := lipgloss.Color("239")
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252"))
	statusStyle := lipgloss.NewStyle().Foreground(dim)
	enabledButton := lipgloss.NewStyle().Bold(true).Foreground(accent)
	disabledButton := lipgloss.NewStyle().Foreground(dim)

	grid := m.ctrl.Grid()
	pad := strings.Repeat(" ", gridLeft)
	sections := []string{
		titleStyle.Render("mergegrid") + statusStyle.Render(fmt.Sprintf("  %dx%d", grid.Width(), grid.Height())),
		"",
	}
	canvas := m.canvas()
	if w, _ := canvas.Size(); w == 0 {
		sections = append(sections, pad+"empty grid")
	} else {
		for _, line := range strings.Split(canvas.String(), "\n") {
			sections = append(sections, pad+line)
		}
	}

	mergeStyle, separateStyle := disabledButton, disabledButton
	if m.ctrl.CanMerge() {
		mergeStyle = enabledButton
	}
	if m.ctrl.CanSeparate() {
		separateStyle = enabledButton
		if !m.ctrl.TouchesGroup() {
			separateStyle = lipgloss.NewStyle().Foreground(muted)
		}
	}
	sections = append(sections,
		"",
		pad+mergeStyle.Render(mergeButtonLabel)+strings.Repeat(" ", buttonGap)+separateStyle.Render(separateButtonLabel),
		pad+statusStyle.Render("selection: "+m.rangeLabel()+" • "+m.status),
	)
	content := strings.Join(sections, "\n")

	helpBubble := m.help
	helpBubble.ShowAll = false
	helpBubble.SetWidth(max(0, m.width-2))
	helpLine := lipgloss.NewStyle().
		Foreground(muted).
		BorderTop(true).
		BorderForeground(dim).
		Padding(0, 1).
		Width(max(0, m.width)).
		Render(helpBubble.View(m.keys))
	if m.height > 0 {
		contentHeight := max(0, m.height-lipgloss.Height(helpLine))
		content = fitLines(content, contentHeight)
	}
	fullContent := content + "\n" + helpLine
	if m.showHelp {
		overlayHeight := lipgloss.Height(fullContent)
		if m.height > 0 {
			overlayHeight = m.height
		}
		fullContent = overlayOnContent(fullContent, m.renderHelpOverlay(accent, m.width-8), max(1, m.width), max(1, overlayHeight))
	}
	return fullContent
}

// renderHelpOverlay renders the boxed help text.
func (m Model) renderHelpOverlay(accent color.Color, maxWidth int) string {
	width := clamp(maxWidth, 24, 72)
	body := m.markdown.render(fmt.Sprintf(helpMarkdown,
		bindingHelp(m.keys.merge),
		bindingHelp(m.keys.separate),
		bindingHelp(m.keys.copyRange),
		bindingHelp(m.keys.clear),
		bindingHelp(m.keys.toggleHelp),
		bindingHelp(m.keys.quit),
	), width-4)
	title := lipgloss.NewStyle().Bold(true).Foreground(accent).Render("Controls")
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(accent).
		Padding(0, 1).
		Width(width).
		Render(title + "\n" + body)
}

// bindingHelp returns the help key text of a binding.
func bindingHelp(b key.Binding) string {
	return b.Help().Key
}

// discardLogger drops model events when no logger is configured.
type discardLogger struct{}

func (discardLogger) Debug(string, ...any) {}
func (discardLogger) Info(string, ...any)  {}
func (discardLogger) Warn(string, ...any)  {}
func (discardLogger) Error(string, ...any) {}

// clamp clamps v into [minV, maxV].
func clamp(v, minV, maxV int) int {
	if maxV < minV {
		return minV
	}
	if v < minV {
		return minV
	}
	if v > maxV {
		return maxV
	}
	return v
}

// fitLines pads or truncates content to exactly maxLines lines.
func fitLines(content string, maxLines int) string {
	if maxLines <= 0 {
		return ""
	}
	lines := strings.Split(content, "\n")
	switch {
	case len(lines) > maxLines:
		if maxLines == 1 {
			lines = []string{"…"}
		} else {
			lines = append(lines[:maxLines-1], "…")
		}
	case len(lines) < maxLines:
		padding := make([]string, maxLines-len(lines))
		lines = append(lines, padding...)
	}
	return strings.Join(lines, "\n")
}

// overlayOnContent centers overlay above base on a layered canvas.
func overlayOnContent(base, overlay string, width, height int) string {
	if width <= 0 || height <= 0 {
		if strings.TrimSpace(overlay) == "" {
			return base
		}
		return overlay + "\n\n" + base
	}

	base = fitLines(base, height)
	canvas := lipgloss.NewCanvas(width, height)
	baseLayer := lipgloss.NewLayer(base).X(0).Y(0).Z(0)
	centeredOverlay := lipgloss.Place(
		width,
		height,
		lipgloss.Center,
		lipgloss.Center,
		overlay,
	)
	overlayLayer := lipgloss.NewLayer(centeredOverlay).X(0).Y(0).Z(10)

	canvas.Compose(baseLayer)
	canvas.Compose(overlayLayer)
	return canvas.Render()
}
