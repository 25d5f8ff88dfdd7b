package scritch

import (
	"fmt"
	"math/rand"
	"time"
)

// Mixer is the external sound collaborator. The core tracks volume
// state and delegates playback; with a nil mixer the playback
// instructions are no-ops and the volume instructions only update the
// tracked volume. PlayUntilDone returns the clip duration in
// seconds so the scheduler can park the script for that long (zero
// means the clip length is unknown and the script continues).
type Mixer interface {
	Play(name string)
	PlayUntilDone(name string) float64
	StopAll()
	SetVolume(percent float64)
}

// Runtime is the execution core's single-owner state handle. The
// editor, renderer and ask-dialog UI interact with it through the
// mutator methods below; the read accessors never change execution
// state. All methods are meant for one goroutine — scheduling is
// single-threaded and cooperative.
type Runtime struct {
	cfg    *Config
	logger *Logger
	mixer  Mixer
	rng    *rand.Rand

	stage   *Stage
	sprites []*Sprite
	// contexts is an arena parallel to sprites: contexts[i][j] is the
	// execution context armed for sprites[i].Scripts[j], nil when the
	// script is not armed
	contexts [][]*execContext

	selected int
	pen      *PenLayer
	input    InputSnapshot
	exec     execState
}

// New creates a runtime. A nil config uses the defaults (480x360
// stage, frame budget 200, watchdog limit 10000).
func New(cfg *Config) *Runtime {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	seed := cfg.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	logger := NewLogger(cfg.Debug)
	return &Runtime{
		cfg:    cfg,
		logger: logger,
		rng:    rand.New(rand.NewSource(seed)),
		stage:  NewStage(cfg.StageWidth, cfg.StageHeight),
		pen:    NewPenLayer(),
		input:  InputSnapshot{keys: make(map[string]bool)},
	}
}

// NewSized creates a runtime with a custom stage rectangle
func NewSized(width, height float64) *Runtime {
	cfg := DefaultConfig()
	cfg.StageWidth = width
	cfg.StageHeight = height
	return New(cfg)
}

// Logger returns the runtime's logger
func (rt *Runtime) Logger() *Logger { return rt.logger }

// SetMixer attaches the external sound collaborator
func (rt *Runtime) SetMixer(m Mixer) { rt.mixer = m }

// SeedRandom reseeds the runtime's random source; tests use this for
// reproducible go_to_random and random() results
func (rt *Runtime) SeedRandom(seed int64) {
	rt.rng = rand.New(rand.NewSource(seed))
}

// AddSprite attaches a sprite to the stage and returns its index
func (rt *Runtime) AddSprite(sp *Sprite) int {
	rt.sprites = append(rt.sprites, sp)
	rt.contexts = append(rt.contexts, make([]*execContext, len(sp.Scripts)))
	return len(rt.sprites) - 1
}

// SelectSprite sets the editor's focused sprite, the one whose pen
// movements are captured into the pen layer
func (rt *Runtime) SelectSprite(index int) {
	if index >= 0 && index < len(rt.sprites) {
		rt.selected = index
	}
}

// Sprites returns the sprite list in stage order
func (rt *Runtime) Sprites() []*Sprite { return rt.sprites }

// SpriteByName returns the named sprite, or nil
func (rt *Runtime) SpriteByName(name string) *Sprite {
	for _, sp := range rt.sprites {
		if sp.Name == name {
			return sp
		}
	}
	return nil
}

// SelectedSprite returns the editor's focused sprite, or nil when the
// stage is empty
func (rt *Runtime) SelectedSprite() *Sprite {
	if rt.selected >= 0 && rt.selected < len(rt.sprites) {
		return rt.sprites[rt.selected]
	}
	return nil
}

// Stage returns the stage state
func (rt *Runtime) Stage() *Stage { return rt.stage }

// PenStrokes returns the pen layer's records, including the open stroke
func (rt *Runtime) PenStrokes() []Stroke { return rt.pen.Strokes() }

// Variables returns a snapshot copy of the variable map
func (rt *Runtime) Variables() map[string]Value {
	out := make(map[string]Value, len(rt.stage.Variables))
	for k, v := range rt.stage.Variables {
		out[k] = v
	}
	return out
}

// CurrentAsk returns the pending ask request, or nil
func (rt *Runtime) CurrentAsk() *AskRequest { return rt.exec.ask }

// Running reports whether scripts are executing
func (rt *Runtime) Running() bool { return rt.exec.running }

// Paused reports whether execution is paused
func (rt *Runtime) Paused() bool { return rt.exec.paused }

// Timer returns the global timer in seconds
func (rt *Runtime) Timer() float64 { return rt.stage.Timer }

// SetInputSnapshot replaces the input state the sensors read. Mouse
// coordinates are in stage space. Unknown key names are dropped with a
// warning.
func (rt *Runtime) SetInputSnapshot(mouseX, mouseY float64, mouseDown bool, pressed []string) {
	keys := make(map[string]bool, len(pressed))
	for _, name := range pressed {
		if !IsKeyName(name) {
			rt.logger.WarnCat(CatSensing, "unknown key name %q in input snapshot", name)
			continue
		}
		keys[name] = true
	}
	rt.input = InputSnapshot{MouseX: mouseX, MouseY: mouseY, MouseDown: mouseDown, keys: keys}
}

// ClickGreenFlag records a green-flag click; the next tick starts the
// project
func (rt *Runtime) ClickGreenFlag() {
	rt.exec.greenFlagClicked = true
}

// PressKey arms every script waiting on the named key. No-op while
// stopped or for names outside the closed key set.
func (rt *Runtime) PressKey(name string) {
	if !IsKeyName(name) {
		rt.logger.WarnCat(CatEvent, "unknown key name %q", name)
		return
	}
	if !rt.exec.running {
		return
	}
	rt.armKeyPressed(name)
}

// ClickSprite arms the indexed sprite's click-hat scripts. No-op while
// stopped.
func (rt *Runtime) ClickSprite(index int) {
	if !rt.exec.running || index < 0 || index >= len(rt.sprites) {
		return
	}
	rt.armSpriteClicked(index)
}

// Start begins execution: every green-flag script (and every hatless
// script) gets a fresh context, the timer resets, and speech bubbles
// clear. Sprite poses, pen records and variables persist across runs.
func (rt *Runtime) Start() {
	rt.exec.running = true
	rt.exec.paused = false
	rt.exec.watchdog = 0
	rt.exec.pendingBroadcast = ""
	rt.exec.ask = nil
	rt.exec.askResolved = false
	rt.exec.submittedAnswer = ""
	rt.stage.Timer = 0

	for i, sp := range rt.sprites {
		sp.Speech = Speech{}
		rt.contexts[i] = make([]*execContext, len(sp.Scripts))
	}
	rt.armGreenFlag()
	rt.logger.InfoCat(CatSched, "execution started, %d sprite(s)", len(rt.sprites))
}

// Stop ends execution; every context stops at its current position and
// is discarded
func (rt *Runtime) Stop() {
	rt.exec.running = false
	rt.exec.paused = false
	rt.exec.ask = nil
	rt.exec.askResolved = false
	rt.clearContexts()
	rt.logger.InfoCat(CatSched, "execution stopped")
}

// Pause suspends the tick's execution phase; timers keep running
func (rt *Runtime) Pause() {
	rt.exec.paused = true
}

// Resume clears a pause
func (rt *Runtime) Resume() {
	rt.exec.paused = false
	rt.exec.stepMode = false
	rt.exec.stepPending = false
}

// StepOnce executes exactly one instruction on the next tick while
// paused
func (rt *Runtime) StepOnce() {
	rt.exec.stepMode = true
	rt.exec.stepPending = true
}

// SubmitAsk resolves the pending ask request. The scheduler copies the
// text into the asking sprite's answer and resumes its script on the
// next tick.
func (rt *Runtime) SubmitAsk(text string) error {
	if rt.exec.ask == nil {
		return fmt.Errorf("no ask request pending")
	}
	rt.exec.ask = nil
	rt.exec.askResolved = true
	rt.exec.submittedAnswer = text
	rt.logger.InfoCat(CatSensing, "ask answered: %q", text)
	return nil
}

// ResetPen erases the pen layer
func (rt *Runtime) ResetPen() {
	rt.pen.Clear()
}

// ResetAll stops execution and restores the project to its initial
// state: home poses, empty pen layer, no variables, timer at zero
func (rt *Runtime) ResetAll() {
	rt.Stop()
	for _, sp := range rt.sprites {
		sp.restoreHome()
	}
	rt.pen.Clear()
	rt.stage.Timer = 0
	rt.stage.Variables = make(map[string]Value)
	rt.stage.CurrentBackdrop = 0
}

// Tick advances the runtime by one frame. dt is the frame delta in
// seconds. The order is fixed: speech timers, global timer, green-flag
// gate, broadcast arming, pause/step gate, context execution, pen
// capture, termination detection.
func (rt *Runtime) Tick(dt float64) {
	// 1. Speech timers count down before any instruction runs
	for _, sp := range rt.sprites {
		if sp.Speech.Timer > 0 {
			sp.Speech.Timer -= dt
			if sp.Speech.Timer <= 0 {
				sp.Speech = Speech{}
			}
		}
	}

	// 2. Global timer
	if rt.exec.running {
		rt.stage.Timer += dt
	}

	// 3. Green-flag gate
	if rt.exec.greenFlagClicked {
		rt.exec.greenFlagClicked = false
		rt.Start()
	}

	// 4. Broadcast arming happens at the tick boundary, so a
	// broadcast emitted mid-frame cannot retro-arm a context inside
	// its own execution
	if rt.exec.running && rt.exec.pendingBroadcast != "" {
		name := rt.exec.pendingBroadcast
		rt.exec.pendingBroadcast = ""
		rt.armBroadcast(name)
	}

	// 5. Pause / step gate
	if !rt.exec.running {
		return
	}
	if rt.exec.paused {
		if rt.exec.stepMode && rt.exec.stepPending {
			rt.exec.stepPending = false
			rt.stepOne()
		}
		return
	}

	// 6. Advance contexts, sprite-list order
	for i := range rt.sprites {
		for _, ctx := range rt.contexts[i] {
			if ctx != nil {
				rt.advanceContext(ctx, dt)
			}
			if !rt.exec.running {
				break
			}
		}
		if !rt.exec.running {
			break
		}
	}

	// 7. Pen capture for the selected sprite
	rt.capturePen()

	// 8. Termination detection; a pending broadcast keeps the run
	// alive so next tick can arm its receivers
	if rt.exec.running && rt.exec.pendingBroadcast == "" && rt.allFinished() {
		rt.exec.running = false
		rt.logger.InfoCat(CatSched, "all scripts finished")
	}
}

// advanceContext resolves a context's suspension state, then executes
// instructions until suspension, completion, stop, or the frame budget
func (rt *Runtime) advanceContext(ctx *execContext, dt float64) {
	if ctx.finished {
		return
	}

	if ctx.askWaiting {
		if !rt.exec.askResolved {
			return
		}
		ctx.sprite.Answer = rt.exec.submittedAnswer
		rt.exec.askResolved = false
		rt.exec.submittedAnswer = ""
		ctx.askWaiting = false
		rt.advance(ctx)
	}

	if ctx.waitTimer > 0 {
		ctx.waitTimer -= dt
		if ctx.waitTimer > 0 {
			return
		}
		ctx.waitTimer = 0
		rt.advance(ctx)
	}

	if ctx.waitingUntil {
		block := ctx.current()
		if block == nil || !rt.eval(block.Operand(0), ctx.sprite).Bool() {
			return
		}
		ctx.waitingUntil = false
		rt.advance(ctx)
	}

	for dispatched := 0; rt.exec.running && !ctx.finished; dispatched++ {
		if dispatched >= rt.cfg.FrameBudget && ctx.everSuspended {
			// Yielding for the frame is a suspension point
			rt.exec.watchdog = 0
			return
		}
		if rt.executeOne(ctx) {
			return
		}
	}
}

// stepOne executes a single instruction for the first runnable context
func (rt *Runtime) stepOne() {
	for i := range rt.sprites {
		for _, ctx := range rt.contexts[i] {
			if ctx == nil || ctx.finished || ctx.suspended() {
				continue
			}
			rt.executeOne(ctx)
			return
		}
	}
}

// placeSprite moves a sprite with the stage clamp applied. When the
// moved sprite is the selected one and its pen is down, the movement
// extends the open stroke point by point, so shapes drawn inside one
// tick are fully captured.
func (rt *Runtime) placeSprite(sp *Sprite, x, y float64) {
	prev := Point{sp.X, sp.Y}
	sp.setPosition(x, y, rt.stage)
	if rt.isSelected(sp) && sp.PenDown {
		if !rt.pen.Drawing() {
			rt.pen.Extend(prev, sp.PenColor, sp.PenSize)
		}
		rt.pen.Extend(Point{sp.X, sp.Y}, sp.PenColor, sp.PenSize)
	}
}

// capturePen appends the selected sprite's position to the open stroke
// while its pen is down, and closes the stroke when the pen lifts
func (rt *Runtime) capturePen() {
	sp := rt.SelectedSprite()
	if sp == nil {
		return
	}
	if sp.PenDown && rt.exec.running {
		rt.pen.Extend(Point{sp.X, sp.Y}, sp.PenColor, sp.PenSize)
	} else if rt.pen.Drawing() && !sp.PenDown {
		rt.pen.Close()
	}
}

func (rt *Runtime) isSelected(sp *Sprite) bool {
	return rt.SelectedSprite() == sp
}

func (rt *Runtime) clearContexts() {
	for i := range rt.contexts {
		for j := range rt.contexts[i] {
			rt.contexts[i][j] = nil
		}
	}
}

// forEachContext visits every armed context
func (rt *Runtime) forEachContext(fn func(*execContext)) {
	for i := range rt.contexts {
		for _, ctx := range rt.contexts[i] {
			if ctx != nil {
				fn(ctx)
			}
		}
	}
}

// allFinished reports whether every armed context has finished; a
// stage with no armed contexts counts as finished
func (rt *Runtime) allFinished() bool {
	done := true
	rt.forEachContext(func(ctx *execContext) {
		if !ctx.finished {
			done = false
		}
	})
	return done
}
