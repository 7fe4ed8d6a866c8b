// Package ui provides the terminal user interface using Bubble Tea.
package ui

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/litescript/ls-skyselect/internal/astro"
	"github.com/litescript/ls-skyselect/internal/footprint"
	"github.com/litescript/ls-skyselect/internal/logging"
	"github.com/litescript/ls-skyselect/internal/payload"
	"github.com/litescript/ls-skyselect/internal/selection"
	"github.com/litescript/ls-skyselect/internal/state"
	"github.com/litescript/ls-skyselect/internal/version"
)

const (
	headerLines = 2
	footerLines = 3

	yawStepDeg   = 5.0
	pitchStepDeg = 5.0
	maxPitchDeg  = 89.0
	fovStepDeg   = 5.0
	minFOVDeg    = 10.0
	maxFOVDeg    = 120.0

	// Animation
	animDuration  = 400 * time.Millisecond
	animFrameRate = 30 * time.Millisecond
)

// Poster sends a payload to the log collaborator.
type Poster interface {
	Post(ctx context.Context, p payload.Payload) error
}

// Config holds viewer settings.
type Config struct {
	Limit        *selection.Limit
	Telescopes   map[string][]string // label -> filter keys sent with each payload
	Overlays     []string            // footprints drawn on the sky
	FOVDeg       float64
	CellAspect   float64 // terminal cell width / height
	StarMagLimit float64
	PostTimeout  time.Duration
	CacheSize    int
}

// DefaultConfig returns the viewer defaults.
func DefaultConfig() Config {
	return Config{
		Limit:        selection.NewLimit(2, 1),
		Telescopes:   map[string][]string{"Euclid": {"NIR_H", "NIR_J", "NIR_Y"}},
		Overlays:     []string{"euclid"},
		FOVDeg:       60,
		CellAspect:   0.5,
		StarMagLimit: 3.5,
		PostTimeout:  10 * time.Second,
		CacheSize:    512,
	}
}

// Msg types for Bubble Tea
type (
	// TickMsg triggers periodic UI updates.
	TickMsg time.Time

	// animTickMsg is sent during camera animation.
	animTickMsg time.Time

	// postResultMsg carries the outcome of sending a payload.
	postResultMsg struct {
		payload payload.Payload
		err     error
	}
)

// Model is the root Bubble Tea model.
type Model struct {
	// Dependencies
	cfg    Config
	state  *state.Manager
	poster Poster
	logger *logging.Logger

	// UI state
	mode      ViewMode
	width     int
	height    int
	ready     bool
	statusMsg string
	posting   bool

	// Sky camera
	yaw, pitch, fov float64

	// Animation state
	animating bool
	animFrom  [3]float64
	animTo    [3]float64
	animStart time.Time

	// Selection
	gesture   selection.Gesture
	region    selection.Region
	hasRegion bool
	overlaps  map[string]footprint.Overlap

	// Cursor
	cursorX, cursorY int
	hasCursor        bool

	stars    []astro.Star
	readouts *readoutCache
	stats    state.Stats
}

// New creates a new root UI model. poster may be nil to disable posting.
func New(cfg Config, stateMgr *state.Manager, poster Poster, logger *logging.Logger) Model {
	def := DefaultConfig()
	if cfg.FOVDeg <= 0 {
		cfg.FOVDeg = def.FOVDeg
	}
	if !(cfg.CellAspect > 0) {
		cfg.CellAspect = def.CellAspect
	}
	if cfg.PostTimeout <= 0 {
		cfg.PostTimeout = def.PostTimeout
	}
	if cfg.CacheSize <= 0 {
		cfg.CacheSize = def.CacheSize
	}
	if logger == nil {
		logger = logging.Discard()
	}

	catalog := astro.DefaultStarCatalog()
	return Model{
		cfg:      cfg,
		state:    stateMgr,
		poster:   poster,
		logger:   logger.With("component", "ui"),
		mode:     ModeDisk,
		fov:      cfg.FOVDeg,
		stars:    catalog.Brighter(cfg.StarMagLimit),
		readouts: newReadoutCache(cfg.CacheSize, catalog),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tickCmd()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		cmds = append(cmds, cmd)

	case tea.MouseMsg:
		m = m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		// pixel coordinates change with the canvas, so a drag cannot continue
		m = m.cancelDrag()

	case TickMsg:
		cmds = append(cmds, tickCmd())
		m.stats = m.state.Stats()

	case animTickMsg:
		if m.animating {
			var cmd tea.Cmd
			m, cmd = m.updateAnimation()
			cmds = append(cmds, cmd)
		}

	case postResultMsg:
		m.posting = false
		m.state.RecordPost(msg.payload, msg.err)
		m.stats = m.state.Stats()
		if msg.err != nil {
			m.logger.Error("post failed: %v", msg.err)
			m.statusMsg = "Post failed: " + msg.err.Error()
		} else {
			m.logger.Info("posted selection for %s", strings.Join(msg.payload.Telescopes(), ", "))
			m.statusMsg = "Selection sent"
		}
	}

	return m, tea.Batch(cmds...)
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "tab":
		m = m.cancelDrag()
		m.mode = (m.mode + 1) % 2
		m.statusMsg = m.mode.String() + " mode"

	case "esc":
		if m.gesture.State() == selection.Dragging {
			m = m.cancelDrag()
			m.statusMsg = "Selection cancelled"
		}

	case "enter":
		return m.post()

	case "left":
		m = m.orbit(-yawStepDeg, 0)
	case "right":
		m = m.orbit(yawStepDeg, 0)
	case "up":
		m = m.orbit(0, pitchStepDeg)
	case "down":
		m = m.orbit(0, -pitchStepDeg)

	case "+", "=":
		m = m.zoom(-fovStepDeg)
	case "-", "_":
		m = m.zoom(fovStepDeg)

	case "r":
		return m.startAnimation(0, 0, m.cfg.FOVDeg)

	case "f":
		m = m.cycleOverlays()
	}
	return m, nil
}

// cancelDrag abandons a drag in progress. A committed region is kept.
func (m Model) cancelDrag() Model {
	if err := m.gesture.Cancel(); err == nil {
		m.region, m.hasRegion = selection.Region{}, false
		m.overlaps = nil
	}
	return m
}

// orbit turns the sky camera. The disk view has a fixed camera.
func (m Model) orbit(dYaw, dPitch float64) Model {
	if m.mode != ModeSky {
		m.statusMsg = "Camera is fixed in Disk mode (tab for Sky)"
		return m
	}
	m.animating = false
	m.yaw = normalizeAngle(m.yaw + dYaw)
	m.pitch = math.Max(-maxPitchDeg, math.Min(maxPitchDeg, m.pitch+dPitch))
	return m
}

func (m Model) zoom(dFOV float64) Model {
	if m.mode != ModeSky {
		return m
	}
	m.animating = false
	m.fov = math.Max(minFOVDeg, math.Min(maxFOVDeg, m.fov+dFOV))
	return m
}

// cycleOverlays steps through: configured overlays, every survey, none.
func (m Model) cycleOverlays() Model {
	all := footprint.Names()
	switch {
	case len(m.cfg.Overlays) == 0:
		m.cfg.Overlays = DefaultConfig().Overlays
	case len(m.cfg.Overlays) < len(all):
		m.cfg.Overlays = all
	default:
		m.cfg.Overlays = nil
	}
	m.statusMsg = "Footprints: " + overlayList(m.cfg.Overlays)
	m.overlaps = m.overlapInfo()
	return m
}

func (m Model) handleMouse(msg tea.MouseMsg) Model {
	v := m.view()
	cx, cy := msg.X, msg.Y-headerLines
	inside := cx >= 0 && cx < v.w && cy >= 0 && cy < v.h
	p := v.cellPixel(cx, cy)

	m.hasCursor = inside
	m.cursorX, m.cursorY = cx, cy

	switch {
	case msg.Button == tea.MouseButtonWheelUp:
		return m.zoom(-fovStepDeg)
	case msg.Button == tea.MouseButtonWheelDown:
		return m.zoom(fovStepDeg)

	case msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft:
		if !inside {
			return m
		}
		if err := m.gesture.Begin(p); err != nil {
			m.logger.Debug("ignoring press: %v", err)
			return m
		}
		m.region, m.hasRegion = selection.Region{}, false
		m.overlaps = nil
		m.statusMsg = ""

	case msg.Action == tea.MouseActionMotion:
		if r, changed := m.gesture.Move(p, v.projector(), m.cfg.Limit); changed {
			m.region, m.hasRegion = r, true
		}

	case msg.Action == tea.MouseActionRelease:
		r, err := m.gesture.Commit(p, v.projector(), m.cfg.Limit)
		if err != nil {
			return m
		}
		m = m.commit(r)
	}
	return m
}

func (m Model) commit(r selection.Region) Model {
	m.region, m.hasRegion = r, true
	m.state.CommitSelection(r)
	m.stats = m.state.Stats()
	m.overlaps = m.overlapInfo()

	m.logger.Info("selection committed: clipped=%t corners=%v", r.Clipped, r.Corners)
	if r.Clipped {
		m.statusMsg = "Selection clipped to the angular limit; enter to send"
	} else {
		m.statusMsg = "Selection ready; enter to send"
	}
	return m
}

func (m Model) overlapInfo() map[string]footprint.Overlap {
	if !m.hasRegion || len(m.cfg.Overlays) == 0 {
		return nil
	}
	return footprint.OverlapInfo(m.region.Bounds(), m.cfg.Overlays)
}

// post sends the last committed region.
func (m Model) post() (Model, tea.Cmd) {
	switch {
	case m.poster == nil:
		m.statusMsg = "Posting is disabled"
		return m, nil
	case m.posting:
		return m, nil
	case m.gesture.State() != selection.Committed:
		m.statusMsg = "Nothing to send: drag a selection first"
		return m, nil
	}

	r, _ := m.gesture.Last()
	p, err := payload.Build(m.cfg.Telescopes, r.Corners[:])
	if err != nil {
		m.statusMsg = "Cannot build payload: " + err.Error()
		return m, nil
	}

	m.posting = true
	m.statusMsg = "Sending selection..."
	return m, postCmd(m.poster, p, m.cfg.PostTimeout)
}

func (m Model) startAnimation(yaw, pitch, fov float64) (Model, tea.Cmd) {
	m.animating = true
	m.animFrom = [3]float64{m.yaw, m.pitch, m.fov}
	m.animTo = [3]float64{yaw, pitch, fov}
	m.animStart = time.Now()
	return m, animTick()
}

func (m Model) updateAnimation() (Model, tea.Cmd) {
	elapsed := time.Since(m.animStart)
	t := float64(elapsed) / float64(animDuration)

	if t >= 1.0 {
		// Animation complete
		m.animating = false
		m.yaw, m.pitch, m.fov = m.animTo[0], m.animTo[1], m.animTo[2]
		return m, nil
	}

	// Ease-out cubic
	t = 1 - math.Pow(1-t, 3)

	m.yaw = normalizeAngle(lerpAngle(m.animFrom[0], m.animTo[0], t))
	m.pitch = lerp(m.animFrom[1], m.animTo[1], t)
	m.fov = lerp(m.animFrom[2], m.animTo[2], t)

	return m, animTick()
}

// view returns the projection geometry for the current size and camera.
func (m Model) view() skyView {
	h := m.height - headerLines - footerLines
	if h < 0 {
		h = 0
	}
	return newSkyView(m.mode, m.width, h, m.cfg.CellAspect, m.yaw, m.pitch, m.fov)
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Initializing..."
	}

	v := m.view()
	if v.w < 20 || v.h < 5 {
		return "Sky view requires larger terminal"
	}

	c := v.render(m.stars, m.cfg.Overlays)
	if m.gesture.State() == selection.Dragging && m.hasCursor {
		v.drawDrag(c, m.gesture.Start(), v.cellPixel(m.cursorX, m.cursorY))
	}
	if m.hasRegion && m.gesture.State() != selection.Idle {
		v.drawRegion(c, m.region)
	}
	if m.hasCursor && c.at(m.cursorX, m.cursorY) == ' ' {
		c.set(m.cursorX, m.cursorY, '⊹', colorCursor)
	}

	return m.renderHeader() + "\n" + c.String() + "\n" + m.renderFooter(v)
}

func (m Model) renderHeader() string {
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("135"))
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	title := titleStyle.Render("ls-skyselect") + dimStyle.Render(" v"+version.Version)

	var camera string
	if m.mode == ModeSky {
		camera = fmt.Sprintf("yaw %+.0f° pitch %+.0f° fov %.0f°", m.yaw, m.pitch, m.fov)
	} else {
		camera = "orthographic disk"
	}
	limit := "limit: none"
	if l := m.cfg.Limit; l != nil {
		limit = "limit: RA ±" + axisLimit(l.RA) + " Dec ±" + axisLimit(l.Dec)
	}

	line1 := fmt.Sprintf("  %s | %s | %s | %s",
		title, dimStyle.Render(camera), dimStyle.Render(limit),
		dimStyle.Render("footprints: "+overlayList(m.cfg.Overlays)))

	return line1 + "\n" + m.renderTabs()
}

func axisLimit(f *float64) string {
	if f == nil {
		return "∞"
	}
	return fmt.Sprintf("%g°", *f)
}

func overlayList(names []string) string {
	if len(names) == 0 {
		return "none"
	}
	return strings.Join(names, ",")
}

func (m Model) renderTabs() string {
	tabs := []string{"Disk", "Sky"}
	activeStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#9D4EDD")).Bold(true)
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))

	var parts []string
	for i, tab := range tabs {
		if ViewMode(i) == m.mode {
			parts = append(parts, activeStyle.Render("▶ "+tab))
		} else {
			parts = append(parts, dimStyle.Render("  "+tab))
		}
	}
	return "  " + strings.Join(parts, "  ")
}

func (m Model) renderFooter(v skyView) string {
	dimStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("60"))
	accentStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	errorStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("#E84A27"))

	// Line 1: cursor readout
	cursor := dimStyle.Render("move the mouse over the sky")
	if m.hasCursor {
		r := m.readouts.lookup(v, m.cursorX, m.cursorY, m.yaw, m.pitch, m.fov)
		cursor = accentStyle.Render(r.line)
		if len(r.covered) > 0 {
			cursor += dimStyle.Render("  in " + strings.Join(r.covered, ","))
		}
	}

	// Line 2: selection or status
	var sel string
	switch {
	case m.hasRegion && m.gesture.State() != selection.Idle:
		sel = m.renderRegion()
	case m.statusMsg != "":
		sel = dimStyle.Render(m.statusMsg)
	default:
		sel = dimStyle.Render("drag to select a region")
	}
	if m.hasRegion && m.statusMsg != "" && m.gesture.State() == selection.Committed {
		style := dimStyle
		if strings.HasPrefix(m.statusMsg, "Post failed") {
			style = errorStyle
		}
		sel += "  " + style.Render(m.statusMsg)
	}

	// Line 3: counters and help
	counts := fmt.Sprintf("committed %d · clipped %d · sent %d · failed %d · received %d",
		m.stats.Committed, m.stats.Clipped, m.stats.Posted, m.stats.PostFailures, m.stats.Received)
	help := "drag: select | esc: cancel | enter: send | tab: mode | f: footprints | q: quit"
	if m.mode == ModeSky {
		help = "drag: select | arrows: orbit | +/-: zoom | r: reset | enter: send | tab: mode | q: quit"
	}

	return "  " + cursor + "\n  " + sel + "\n  " + dimStyle.Render(counts+"  |  "+help)
}

func (m Model) renderRegion() string {
	style := lipgloss.NewStyle().Foreground(colorRegion)
	if m.region.Clipped {
		style = lipgloss.NewStyle().Foreground(colorClipped)
	}

	parts := make([]string, len(m.region.Corners))
	for i, c := range m.region.Corners {
		parts[i] = fmt.Sprintf("(%.3f, %+.3f)", c.RA, c.Dec)
	}
	out := style.Render(strings.Join(parts, " "))
	if m.region.Clipped {
		out += style.Render(" clipped")
	}

	if len(m.overlaps) > 0 {
		names := make([]string, 0, len(m.overlaps))
		for name := range m.overlaps {
			names = append(names, name)
		}
		sort.Strings(names)
		var cov []string
		for _, name := range names {
			cov = append(cov, fmt.Sprintf("%s %.0f%%", name, m.overlaps[name].Coverage))
		}
		out += "  " + strings.Join(cov, " ")
	}
	return out
}

// Region returns the region shown, if any.
func (m Model) Region() (selection.Region, bool) {
	return m.region, m.hasRegion
}

// Mode returns the current view mode.
func (m Model) Mode() ViewMode {
	return m.mode
}

func tickCmd() tea.Cmd {
	return tea.Tick(500*time.Millisecond, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

func animTick() tea.Cmd {
	return tea.Tick(animFrameRate, func(t time.Time) tea.Msg {
		return animTickMsg(t)
	})
}

func postCmd(poster Poster, p payload.Payload, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		err := poster.Post(ctx, p)
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("no response after %s: %w", timeout, err)
		}
		return postResultMsg{payload: p, err: err}
	}
}
