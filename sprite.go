package scritch

import "math"

// spriteBaseExtent is half the edge of the default costume square; the
// bounding-circle sensing radius scales it by the sprite's size percent
const spriteBaseExtent = 32.0

// Color is an RGBA pen/backdrop color
type Color struct {
	R, G, B, A uint8
}

// penPresetColors is the palette set_pen_color cycles through when it
// has no operand
var penPresetColors = []Color{
	{255, 0, 0, 255}, {0, 255, 0, 255}, {0, 0, 255, 255},
	{255, 255, 0, 255}, {255, 0, 255, 255}, {0, 255, 255, 255},
	{255, 128, 0, 255}, {128, 0, 255, 255},
}

// Speech is a sprite's transient speech or thought bubble.
// Timer -1 means permanent, > 0 counts down, 0 means cleared.
type Speech struct {
	Text  string
	Think bool
	Timer float64
}

// Active reports whether the bubble should be rendered
func (s Speech) Active() bool {
	return s.Text != "" && (s.Timer > 0 || s.Timer == -1)
}

// pose is the subset of sprite state captured as the home snapshot so
// reset_all can restore it
type pose struct {
	x, y, direction, size float64
	visible               bool
	layer                 int
	costume               int
}

// Sprite is a named actor on the stage. All mutators that touch the
// pose go through the set* helpers below, which enforce the stage
// clamp, direction normalization, and size floor.
type Sprite struct {
	Name           string
	X, Y           float64
	Direction      float64 // degrees, [0,360); a move at 90 goes +x, at 180 +y, at 0 -y
	Size           float64 // percent, >= 1
	Visible        bool
	Layer          int
	Costumes       []string
	CurrentCostume int

	Speech Speech

	PenDown  bool
	PenColor Color
	PenSize  float64 // clamped to [1,50]
	penCycle int     // next preset index for set_pen_color with no operand

	ColorEffect      float64 // hue shift, modular 360
	GhostEffect      float64 // [0,100]
	BrightnessEffect float64 // [0,100]
	SaturationEffect float64 // [0,100]

	Answer string // last submitted ask response

	Scripts []*Script

	home pose
}

// NewSprite creates a sprite with the stage defaults: center of the
// stage, facing right, full size, pen up with a blue 2-unit pen.
func NewSprite(name string) *Sprite {
	sp := &Sprite{
		Name:      name,
		Direction: 90,
		Size:      100,
		Visible:   true,
		PenColor:  Color{0, 0, 200, 255},
		PenSize:   2,
	}
	sp.CaptureHome()
	return sp
}

// AddScript attaches a script to the sprite
func (sp *Sprite) AddScript(script *Script) {
	sp.Scripts = append(sp.Scripts, script)
}

// CaptureHome records the current pose as the sprite's home, the state
// reset_all restores
func (sp *Sprite) CaptureHome() {
	sp.home = pose{
		x: sp.X, y: sp.Y, direction: sp.Direction, size: sp.Size,
		visible: sp.Visible, layer: sp.Layer, costume: sp.CurrentCostume,
	}
}

// restoreHome puts the sprite back at its home pose and clears the
// transient runtime state (speech, effects, answer)
func (sp *Sprite) restoreHome() {
	sp.X, sp.Y = sp.home.x, sp.home.y
	sp.Direction = sp.home.direction
	sp.Size = sp.home.size
	sp.Visible = sp.home.visible
	sp.Layer = sp.home.layer
	sp.CurrentCostume = sp.home.costume
	sp.Speech = Speech{}
	sp.ColorEffect, sp.GhostEffect = 0, 0
	sp.BrightnessEffect, sp.SaturationEffect = 0, 0
	sp.Answer = ""
}

// Radius returns the bounding-circle radius used by the touching and
// distance sensors, derived from the size percent
func (sp *Sprite) Radius() float64 {
	return spriteBaseExtent * sp.Size / 100
}

// setPosition moves the sprite and clamps it into the stage rectangle
func (sp *Sprite) setPosition(x, y float64, st *Stage) {
	sp.X = clamp(x, -st.HalfWidth(), st.HalfWidth())
	sp.Y = clamp(y, -st.HalfHeight(), st.HalfHeight())
}

// setDirection points the sprite, normalized to [0,360)
func (sp *Sprite) setDirection(deg float64) {
	sp.Direction = normalizeDirection(deg)
}

// setSize resizes the sprite, floored at 1 percent
func (sp *Sprite) setSize(percent float64) {
	sp.Size = math.Max(1, percent)
}

// setPenSize sets the pen width, clamped to [1,50]
func (sp *Sprite) setPenSize(size float64) {
	sp.PenSize = clamp(size, 1, 50)
}

// nextPresetPenColor advances the preset cycle and returns the color
func (sp *Sprite) nextPresetPenColor() Color {
	c := penPresetColors[sp.penCycle%len(penPresetColors)]
	sp.penCycle++
	return c
}

// atHorizontalBound reports whether the clamped x sits on a stage edge
func (sp *Sprite) atHorizontalBound(st *Stage) bool {
	return sp.X <= -st.HalfWidth() || sp.X >= st.HalfWidth()
}

// atVerticalBound reports whether the clamped y sits on a stage edge
func (sp *Sprite) atVerticalBound(st *Stage) bool {
	return sp.Y <= -st.HalfHeight() || sp.Y >= st.HalfHeight()
}

// touchingEdge reports whether the sprite touches any stage bound
func (sp *Sprite) touchingEdge(st *Stage) bool {
	return sp.atHorizontalBound(st) || sp.atVerticalBound(st)
}

// Backdrop is a named stage background
type Backdrop struct {
	Name  string
	Color Color
}

// defaultBackdrops mirrors the stock backdrop palette
var defaultBackdrops = []Backdrop{
	{"White", Color{255, 255, 255, 255}},
	{"Sky", Color{135, 206, 235, 255}},
	{"Grass", Color{144, 238, 144, 255}},
	{"Night", Color{25, 25, 112, 255}},
	{"Sunset", Color{255, 140, 70, 255}},
}

// Stage is the fixed rectangle the sprites live on, with its origin at
// the center. It owns the backdrop list, the global timer, the volume,
// and the variable map.
type Stage struct {
	Width, Height   float64
	Backdrops       []Backdrop
	CurrentBackdrop int
	Timer           float64 // seconds since last reset
	Volume          float64 // [0,100]
	Variables       map[string]Value
}

// NewStage creates a stage of the given size with the default backdrop
// palette, volume 80, and no variables
func NewStage(width, height float64) *Stage {
	backdrops := make([]Backdrop, len(defaultBackdrops))
	copy(backdrops, defaultBackdrops)
	return &Stage{
		Width:     width,
		Height:    height,
		Backdrops: backdrops,
		Volume:    80,
		Variables: make(map[string]Value),
	}
}

// HalfWidth returns half the stage width
func (st *Stage) HalfWidth() float64 { return st.Width / 2 }

// HalfHeight returns half the stage height
func (st *Stage) HalfHeight() float64 { return st.Height / 2 }

// Variable reads a variable; a missing name reads as Number(0)
func (st *Stage) Variable(name string) Value {
	if v, ok := st.Variables[name]; ok {
		return v
	}
	return NumberOf(0)
}

// SetVariable writes a variable, creating it on first write
func (st *Stage) SetVariable(name string, v Value) {
	st.Variables[name] = v
}

// setVolume clamps and stores the global volume
func (st *Stage) setVolume(v float64) {
	st.Volume = clamp(v, 0, 100)
}

// BackdropIndex returns the index of a named backdrop, or -1
func (st *Stage) BackdropIndex(name string) int {
	for i, bd := range st.Backdrops {
		if bd.Name == name {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// normalizeDirection wraps a heading into [0,360)
func normalizeDirection(deg float64) float64 {
	d := math.Mod(deg, 360)
	if d < 0 {
		d += 360
	}
	return d
}
