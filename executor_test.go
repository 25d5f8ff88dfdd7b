package scritch

import (
	"math"
	"testing"
)

// runScript arms a single hatless script on a fresh sprite and runs
// the project until it stops on its own (bounded at 1000 ticks)
func runScript(t *testing.T, rt *Runtime, blocks ...*Block) *Sprite {
	t.Helper()
	sp := NewSprite("Sprite1")
	sp.AddScript(NewScript(blocks...))
	rt.AddSprite(sp)
	rt.Start()
	for i := 0; rt.Running() && i < 1000; i++ {
		rt.Tick(1.0 / 60)
	}
	if rt.Running() {
		t.Fatal("script did not finish")
	}
	return sp
}

func TestMoveAndTurn(t *testing.T) {
	rt := newTestRuntime()
	sp := runScript(t, rt,
		NewBlock(OpMove, Num(10)),
		NewBlock(OpTurnRight, Num(90)),
		NewBlock(OpMove, Num(10)),
	)
	// dir 90 moves +x; after turning to 180 the move goes +y
	if math.Abs(sp.X-10) > 1e-9 || math.Abs(sp.Y-10) > 1e-9 {
		t.Errorf("sprite at (%v, %v), want (10, 10)", sp.X, sp.Y)
	}
	if sp.Direction != 180 {
		t.Errorf("direction = %v, want 180", sp.Direction)
	}
}

func TestTurnRoundTrip(t *testing.T) {
	rt := newTestRuntime()
	sp := runScript(t, rt,
		NewBlock(OpTurnLeft, Num(37)),
		NewBlock(OpTurnRight, Num(37)),
	)
	if math.Abs(sp.Direction-90) > 1e-9 {
		t.Errorf("direction = %v, want 90 after left+right of same angle", sp.Direction)
	}
}

func TestPositionClamped(t *testing.T) {
	rt := newTestRuntime()
	sp := runScript(t, rt, NewBlock(OpGoToXY, Num(9999), Num(-9999)))
	if sp.X != 240 || sp.Y != -180 {
		t.Errorf("sprite at (%v, %v), want clamped (240, -180)", sp.X, sp.Y)
	}
}

func TestSetXIdempotent(t *testing.T) {
	rt := newTestRuntime()
	sp := runScript(t, rt,
		NewBlock(OpSetX, Num(17)),
		NewBlock(OpSetX, Num(17)),
	)
	if sp.X != 17 || sp.Y != 0 {
		t.Errorf("sprite at (%v, %v), want (17, 0)", sp.X, sp.Y)
	}
}

func TestBounceOffEdge(t *testing.T) {
	rt := newTestRuntime()
	sp := runScript(t, rt,
		NewBlock(OpGoToXY, Num(240), Num(0)),
		NewBlock(OpBounceOffEdge),
	)
	// Heading 90 (+x) into the right edge reflects to 270 (-x)
	if math.Abs(sp.Direction-270) > 1e-6 {
		t.Errorf("direction = %v, want 270 after bounce", sp.Direction)
	}
}

func TestIfElseBranches(t *testing.T) {
	rt := newTestRuntime()
	runScript(t, rt,
		NewNamedBlock(OpSetVariable, "x", Num(5)),
		NewBlock(OpIfElse, NewBlock(OpGreaterThan, NewNamedBlock(OpSetVariable, "x"), Num(3))).
			WithBody(NewNamedBlock(OpSetVariable, "branch", Text("high"))).
			WithElse(NewNamedBlock(OpSetVariable, "branch", Text("low"))),
	)
	if got := rt.Variables()["branch"].Text(); got != "high" {
		t.Errorf("branch = %q, want \"high\"", got)
	}

	rt2 := newTestRuntime()
	runScript(t, rt2,
		NewBlock(OpIfElse, NewLiteral(BoolOf(false))).
			WithBody(NewNamedBlock(OpSetVariable, "branch", Text("then"))).
			WithElse(NewNamedBlock(OpSetVariable, "branch", Text("else"))),
	)
	if got := rt2.Variables()["branch"].Text(); got != "else" {
		t.Errorf("branch = %q, want \"else\"", got)
	}
}

func TestIfFalseSkipsBody(t *testing.T) {
	rt := newTestRuntime()
	sp := runScript(t, rt,
		NewBlock(OpIf, NewLiteral(BoolOf(false))).WithBody(NewBlock(OpMove, Num(100))),
		NewBlock(OpMove, Num(5)),
	)
	if sp.X != 5 {
		t.Errorf("x = %v, want 5: false if-body must not run", sp.X)
	}
}

func TestRepeatCounts(t *testing.T) {
	rt := newTestRuntime()
	runScript(t, rt,
		NewBlock(OpRepeat, Num(3)).WithBody(NewNamedBlock(OpChangeVariable, "n", Num(1))),
	)
	if got := rt.Variables()["n"].Num(); got != 3 {
		t.Errorf("n = %v, want 3", got)
	}
}

func TestRepeatZeroAndNegative(t *testing.T) {
	rt := newTestRuntime()
	runScript(t, rt,
		NewBlock(OpRepeat, Num(0)).WithBody(NewNamedBlock(OpChangeVariable, "n", Num(1))),
		NewBlock(OpRepeat, Num(-5)).WithBody(NewNamedBlock(OpChangeVariable, "n", Num(1))),
	)
	if _, exists := rt.Variables()["n"]; exists {
		t.Error("zero/negative repeat must not execute its body")
	}
}

func TestNestedRepeat(t *testing.T) {
	rt := newTestRuntime()
	runScript(t, rt,
		NewBlock(OpRepeat, Num(3)).WithBody(
			NewBlock(OpRepeat, Num(4)).WithBody(
				NewNamedBlock(OpChangeVariable, "n", Num(1)),
			),
		),
	)
	if got := rt.Variables()["n"].Num(); got != 12 {
		t.Errorf("n = %v, want 12", got)
	}
}

func TestRepeatUntil(t *testing.T) {
	rt := newTestRuntime()
	runScript(t, rt,
		NewBlock(OpRepeatUntil,
			NewBlock(OpEqual, NewNamedBlock(OpSetVariable, "n"), Num(5))).
			WithBody(NewNamedBlock(OpChangeVariable, "n", Num(1))),
	)
	if got := rt.Variables()["n"].Num(); got != 5 {
		t.Errorf("n = %v, want 5", got)
	}
}

func TestGraphicEffectClamping(t *testing.T) {
	rt := newTestRuntime()
	sp := runScript(t, rt,
		NewBlock(OpSetGhostEffect, Num(150)),
		NewBlock(OpSetBrightnessEffect, Num(-20)),
		NewBlock(OpSetSaturationEffect, Num(60)),
		NewBlock(OpChangeSaturationEffect, Num(70)),
		NewBlock(OpSetColorEffect, Num(400)),
	)
	if sp.GhostEffect != 100 {
		t.Errorf("ghost = %v, want 100", sp.GhostEffect)
	}
	if sp.BrightnessEffect != 0 {
		t.Errorf("brightness = %v, want 0", sp.BrightnessEffect)
	}
	if sp.SaturationEffect != 100 {
		t.Errorf("saturation = %v, want 100", sp.SaturationEffect)
	}
	if sp.ColorEffect != 40 {
		t.Errorf("color = %v, want modular 40", sp.ColorEffect)
	}
}

func TestClearGraphicEffects(t *testing.T) {
	rt := newTestRuntime()
	sp := runScript(t, rt,
		NewBlock(OpSetGhostEffect, Num(50)),
		NewBlock(OpSetColorEffect, Num(120)),
		NewBlock(OpClearGraphicEffects),
	)
	if sp.GhostEffect != 0 || sp.ColorEffect != 0 || sp.BrightnessEffect != 0 || sp.SaturationEffect != 0 {
		t.Error("clear_graphic_effects should zero all four effects")
	}
}

func TestSizeFloor(t *testing.T) {
	rt := newTestRuntime()
	sp := runScript(t, rt,
		NewBlock(OpSetSize, Num(-40)),
	)
	if sp.Size != 1 {
		t.Errorf("size = %v, want floor of 1", sp.Size)
	}
}

func TestCostumeSwitching(t *testing.T) {
	rt := newTestRuntime()
	sp := NewSprite("Sprite1")
	sp.Costumes = []string{"a", "b", "c"}
	sp.AddScript(NewScript(
		NewBlock(OpNextCostume),
		NewBlock(OpNextCostume),
		NewBlock(OpNextCostume),
		NewNamedBlock(OpSwitchCostume, "b"),
		NewNamedBlock(OpSwitchCostume, "nope"),
	))
	rt.AddSprite(sp)
	rt.Start()
	rt.Tick(0)
	// three next_costume wrap back to 0, then switch to "b"; the
	// unknown name is a warned no-op
	if sp.CurrentCostume != 1 {
		t.Errorf("costume index = %d, want 1", sp.CurrentCostume)
	}
}

func TestBackdropSwitching(t *testing.T) {
	rt := newTestRuntime()
	runScript(t, rt,
		NewNamedBlock(OpSwitchBackdrop, "Night"),
	)
	if got := rt.Stage().CurrentBackdrop; got != 3 {
		t.Errorf("backdrop = %d, want 3 (Night)", got)
	}

	rt2 := newTestRuntime()
	runScript(t, rt2,
		NewNamedBlock(OpSwitchBackdrop, "next"),
		NewNamedBlock(OpSwitchBackdrop, "no such backdrop"),
	)
	if got := rt2.Stage().CurrentBackdrop; got != 1 {
		t.Errorf("backdrop = %d, want 1 after \"next\" and a warned no-op", got)
	}
}

func TestLayerMoves(t *testing.T) {
	rt := newTestRuntime()
	sp := runScript(t, rt,
		NewBlock(OpGoToFrontLayer),
		NewBlock(OpGoBackwardLayers, Num(3)),
	)
	if sp.Layer != 996 {
		t.Errorf("layer = %d, want 996", sp.Layer)
	}
}

func TestVolumeTracking(t *testing.T) {
	rt := newTestRuntime()
	runScript(t, rt,
		NewBlock(OpSetVolume, Num(150)),
		NewBlock(OpChangeVolume, Num(-200)),
		NewBlock(OpChangeVolume, Num(30)),
	)
	if got := rt.Stage().Volume; got != 30 {
		t.Errorf("volume = %v, want 30", got)
	}
}

func TestSetAndChangeVariable(t *testing.T) {
	rt := newTestRuntime()
	runScript(t, rt,
		NewNamedBlock(OpSetVariable, "greeting", Text("hello")),
		NewNamedBlock(OpChangeVariable, "greeting", Num(2)),
		NewNamedBlock(OpChangeVariable, "fresh", Num(4)),
	)
	vars := rt.Variables()
	// change on non-numeric text reads it as zero and writes a number
	if got := vars["greeting"].Num(); got != 2 {
		t.Errorf("greeting = %v, want 2", got)
	}
	if got := vars["fresh"].Num(); got != 4 {
		t.Errorf("fresh = %v, want 4 (created on first write)", got)
	}
}

func TestMalformedBlockIsNoOp(t *testing.T) {
	rt := newTestRuntime()
	sp := runScript(t, rt,
		NewBlock(OpWait), // missing operand
		NewNamedBlock(OpSetVariable, "", Num(1)), // missing name
		NewBlock(OpMove, Num(5)),
	)
	if sp.X != 5 {
		t.Errorf("x = %v, want 5: malformed blocks must be no-ops", sp.X)
	}
	if !rt.logger.HasEntry(LevelError, "malformed block") {
		t.Error("malformed blocks should record an error entry")
	}
}

func TestStopAllEndsRun(t *testing.T) {
	rt := newTestRuntime()
	sp := runScript(t, rt,
		NewBlock(OpMove, Num(5)),
		NewBlock(OpStopAll),
		NewBlock(OpMove, Num(100)),
	)
	if sp.X != 5 {
		t.Errorf("x = %v, want 5: stop_all must halt the script", sp.X)
	}
}

func TestSpeechInstructions(t *testing.T) {
	rt := newTestRuntime()
	sp := runScript(t, rt, NewBlock(OpThink, Text("hmm")))
	if sp.Speech.Text != "hmm" || !sp.Speech.Think || sp.Speech.Timer != -1 {
		t.Errorf("think speech = %+v", sp.Speech)
	}
}

func TestPenSizeClamp(t *testing.T) {
	rt := newTestRuntime()
	sp := runScript(t, rt,
		NewBlock(OpSetPenSize, Num(99)),
		NewBlock(OpChangePenSize, Num(-200)),
	)
	if sp.PenSize != 1 {
		t.Errorf("pen size = %v, want clamped 1", sp.PenSize)
	}
}

func TestSetPenColorPresetsCycle(t *testing.T) {
	rt := newTestRuntime()
	sp := runScript(t, rt,
		NewBlock(OpSetPenColor),
		NewBlock(OpSetPenColor),
	)
	if sp.PenColor != (Color{0, 255, 0, 255}) {
		t.Errorf("pen color = %+v, want second preset (green)", sp.PenColor)
	}
}

func TestSetPenColorRGB(t *testing.T) {
	rt := newTestRuntime()
	sp := runScript(t, rt,
		NewBlock(OpSetPenColor, Num(10), Num(20), Num(300)),
	)
	if sp.PenColor != (Color{10, 20, 255, 255}) {
		t.Errorf("pen color = %+v, want (10,20,255)", sp.PenColor)
	}
}
