package main

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/scritchlab/scritch"
)

type tickMsg time.Time

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	stageStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("63"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	speechStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("229"))
	askStyle    = lipgloss.NewStyle().Border(lipgloss.NormalBorder()).Padding(0, 1).BorderForeground(lipgloss.Color("205"))
	helpStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
)

// model is the playground's bubbletea model. It owns the runtime and
// drives it at the configured frame cadence; every frame it feeds the
// input snapshot, ticks the core, and re-renders the stage as text.
type model struct {
	rt  *scritch.Runtime
	cfg *playConfig

	ask    textinput.Model
	asking bool

	lastTick     time.Time
	pressedUntil map[string]time.Time
}

func newModel(rt *scritch.Runtime, cfg *playConfig) model {
	input := textinput.New()
	input.Placeholder = "type your answer"
	input.CharLimit = 80
	return model{
		rt:           rt,
		cfg:          cfg,
		ask:          input,
		pressedUntil: make(map[string]time.Time),
	}
}

func (m model) tickCmd() tea.Cmd {
	return tea.Tick(time.Second/time.Duration(m.cfg.FPS), func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (m model) Init() tea.Cmd {
	return m.tickCmd()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tickMsg:
		now := time.Time(msg)
		dt := 0.0
		if !m.lastTick.IsZero() {
			dt = now.Sub(m.lastTick).Seconds()
		}
		m.lastTick = now

		m.rt.SetInputSnapshot(0, 0, false, m.heldKeys(now))
		m.rt.Tick(dt)

		if ask := m.rt.CurrentAsk(); ask != nil && !m.asking {
			m.asking = true
			m.ask.SetValue("")
			m.ask.Focus()
		}
		return m, m.tickCmd()

	case tea.KeyMsg:
		if m.asking {
			switch msg.String() {
			case "enter":
				_ = m.rt.SubmitAsk(m.ask.Value())
				m.asking = false
				m.ask.Blur()
				return m, nil
			case "ctrl+c":
				return m, tea.Quit
			}
			var cmd tea.Cmd
			m.ask, cmd = m.ask.Update(msg)
			return m, cmd
		}

		switch msg.String() {
		case "ctrl+c", "q":
			return m, tea.Quit
		case "g":
			m.rt.ClickGreenFlag()
		case "s":
			m.rt.Stop()
		case "p":
			m.rt.Pause()
		case "r":
			m.rt.Resume()
		case "n":
			m.rt.StepOnce()
		case "c":
			m.rt.ResetPen()
		case "0":
			m.rt.ResetAll()
		case "1", "2", "3", "4", "5", "6", "7", "8", "9":
			m.rt.ClickSprite(int(msg.String()[0] - '1'))
		case " ", "up", "down", "left", "right":
			name := msg.String()
			if name == " " {
				name = "space"
			}
			m.holdKey(name)
			m.rt.PressKey(name)
		default:
			name := msg.String()
			if len(name) == 1 && name >= "a" && name <= "z" {
				m.holdKey(name)
				m.rt.PressKey(name)
			}
		}
	}
	return m, nil
}

// holdKey marks a key as pressed for a short window; terminals only
// deliver key-down events, so held keys are emulated by decay
func (m model) holdKey(name string) {
	m.pressedUntil[name] = time.Now().Add(150 * time.Millisecond)
}

func (m model) heldKeys(now time.Time) []string {
	var held []string
	for name, until := range m.pressedUntil {
		if now.Before(until) {
			held = append(held, name)
		}
	}
	sort.Strings(held)
	return held
}

func (m model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("scritch playground"))
	b.WriteString("\n")
	b.WriteString(stageStyle.Render(m.renderStage()))
	b.WriteString("\n")
	b.WriteString(m.renderStatus())

	if m.asking {
		if ask := m.rt.CurrentAsk(); ask != nil {
			b.WriteString("\n")
			b.WriteString(askStyle.Render(ask.Prompt + "\n" + m.ask.View()))
		}
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("g flag · s stop · p pause · r resume · n step · c clear pen · 0 reset · 1-9 click sprite · q quit"))
	return b.String()
}

// renderStage rasterizes the stage into a character grid: pen strokes
// and stamps first, then visible sprites back-to-front. Speech is not
// drawn on the grid; renderStatus lists it.
func (m model) renderStage() string {
	cols, rows := m.cfg.Columns, m.cfg.Rows
	grid := make([][]rune, rows)
	for y := range grid {
		grid[y] = make([]rune, cols)
		for x := range grid[y] {
			grid[y][x] = ' '
		}
	}

	stage := m.rt.Stage()
	toCell := func(x, y float64) (int, int) {
		cx := int((x + stage.HalfWidth()) / stage.Width * float64(cols-1))
		cy := int((stage.HalfHeight() - y) / stage.Height * float64(rows-1))
		return cx, cy
	}
	plot := func(cx, cy int, r rune) {
		if cx >= 0 && cx < cols && cy >= 0 && cy < rows {
			grid[cy][cx] = r
		}
	}

	for _, stroke := range m.rt.PenStrokes() {
		if stroke.IsStamp() {
			cx, cy := toCell(stroke.Points[0].X, stroke.Points[0].Y)
			plot(cx, cy, '▪')
			continue
		}
		for i := 1; i < len(stroke.Points); i++ {
			drawSegment(stroke.Points[i-1], stroke.Points[i], toCell, plot)
		}
	}

	sprites := append([]*scritch.Sprite(nil), m.rt.Sprites()...)
	sort.SliceStable(sprites, func(i, j int) bool { return sprites[i].Layer < sprites[j].Layer })
	for _, sp := range sprites {
		if !sp.Visible {
			continue
		}
		cx, cy := toCell(sp.X, sp.Y)
		glyph := '●'
		if len(sp.Name) > 0 {
			glyph = rune(sp.Name[0])
		}
		plot(cx, cy, glyph)
	}

	lines := make([]string, rows)
	for y := range grid {
		lines[y] = string(grid[y])
	}
	return strings.Join(lines, "\n")
}

// drawSegment steps along a stroke segment plotting cells
func drawSegment(a, b scritch.Point, toCell func(float64, float64) (int, int), plot func(int, int, rune)) {
	steps := int(math.Hypot(b.X-a.X, b.Y-a.Y)) + 1
	for i := 0; i <= steps; i++ {
		t := float64(i) / float64(steps)
		cx, cy := toCell(a.X+(b.X-a.X)*t, a.Y+(b.Y-a.Y)*t)
		plot(cx, cy, '·')
	}
}

func (m model) renderStatus() string {
	state := "stopped"
	if m.rt.Running() {
		state = "running"
		if m.rt.Paused() {
			state = "paused"
		}
	}
	status := fmt.Sprintf("%s · timer %.1fs", state, m.rt.Timer())

	var speech []string
	for _, sp := range m.rt.Sprites() {
		if sp.Speech.Active() {
			verb := "says"
			if sp.Speech.Think {
				verb = "thinks"
			}
			speech = append(speech, fmt.Sprintf("%s %s %q", sp.Name, verb, sp.Speech.Text))
		}
	}

	var vars []string
	for name, v := range m.rt.Variables() {
		vars = append(vars, fmt.Sprintf("%s=%s", name, v.Text()))
	}
	sort.Strings(vars)

	line := statusStyle.Render(status)
	if len(vars) > 0 {
		line += statusStyle.Render(" · " + strings.Join(vars, " "))
	}
	if len(speech) > 0 {
		line += "\n" + speechStyle.Render(strings.Join(speech, " · "))
	}
	return line
}
