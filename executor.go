package scritch

import "math"

// executeOne processes the instruction at the context's current
// position. Leaf side-effect instructions perform their effect and
// advance by one. Wait, WaitUntil and AskAndWait park the context on a
// suspension point without advancing; the scheduler advances them when
// the suspension resolves. Structured control blocks push a loop frame
// and descend into their body. Returns true when the context suspended
// (or stopped) and the caller should move on to the next context.
func (rt *Runtime) executeOne(ctx *execContext) bool {
	block := ctx.current()
	if block == nil {
		rt.finishContext(ctx)
		return true
	}
	sp := ctx.sprite

	rt.exec.watchdog++
	if rt.exec.watchdog > rt.cfg.WatchdogLimit {
		rt.tripWatchdog()
		return true
	}

	rt.logger.TraceCat(CatSched, "[pc:%d] [sprite:%s] %s", ctx.pc, sp.Name, block.Op)

	switch block.Op {

	// Motion
	case OpMove:
		steps := rt.num(block, 0, sp)
		rad := (sp.Direction - 90) * math.Pi / 180
		rt.placeSprite(sp, sp.X+steps*math.Cos(rad), sp.Y+steps*math.Sin(rad))
	case OpTurnRight:
		sp.setDirection(sp.Direction + rt.num(block, 0, sp))
	case OpTurnLeft:
		sp.setDirection(sp.Direction - rt.num(block, 0, sp))
	case OpGoToXY:
		rt.placeSprite(sp, rt.num(block, 0, sp), rt.num(block, 1, sp))
	case OpSetX:
		rt.placeSprite(sp, rt.num(block, 0, sp), sp.Y)
	case OpSetY:
		rt.placeSprite(sp, sp.X, rt.num(block, 0, sp))
	case OpChangeX:
		rt.placeSprite(sp, sp.X+rt.num(block, 0, sp), sp.Y)
	case OpChangeY:
		rt.placeSprite(sp, sp.X, sp.Y+rt.num(block, 0, sp))
	case OpPointDirection:
		sp.setDirection(rt.num(block, 0, sp))
	case OpBounceOffEdge:
		rt.bounceOffEdge(sp)
	case OpGoToMouse:
		rt.placeSprite(sp, rt.input.MouseX, rt.input.MouseY)
	case OpGoToRandom:
		hw, hh := rt.stage.HalfWidth(), rt.stage.HalfHeight()
		rt.placeSprite(sp, -hw+rt.rng.Float64()*2*hw, -hh+rt.rng.Float64()*2*hh)

	// Looks
	case OpSay:
		sp.Speech = Speech{Text: rt.text(block, 0, sp), Timer: -1}
	case OpSayFor:
		sp.Speech = Speech{Text: rt.text(block, 0, sp), Timer: rt.num(block, 1, sp)}
	case OpThink:
		sp.Speech = Speech{Text: rt.text(block, 0, sp), Think: true, Timer: -1}
	case OpThinkFor:
		sp.Speech = Speech{Text: rt.text(block, 0, sp), Think: true, Timer: rt.num(block, 1, sp)}
	case OpShow:
		sp.Visible = true
	case OpHide:
		sp.Visible = false
	case OpSwitchCostume:
		rt.switchCostume(sp, rt.labelOf(block, sp))
	case OpNextCostume:
		if len(sp.Costumes) > 0 {
			sp.CurrentCostume = (sp.CurrentCostume + 1) % len(sp.Costumes)
		}
	case OpSwitchBackdrop:
		rt.switchBackdrop(rt.labelOf(block, sp))
	case OpNextBackdrop:
		rt.switchBackdrop("next")
	case OpSetSize:
		sp.setSize(rt.num(block, 0, sp))
	case OpChangeSize:
		sp.setSize(sp.Size + rt.num(block, 0, sp))
	case OpSetColorEffect:
		sp.ColorEffect = normalizeDirection(rt.num(block, 0, sp))
	case OpChangeColorEffect:
		sp.ColorEffect = normalizeDirection(sp.ColorEffect + rt.num(block, 0, sp))
	case OpSetGhostEffect:
		sp.GhostEffect = clamp(rt.num(block, 0, sp), 0, 100)
	case OpChangeGhostEffect:
		sp.GhostEffect = clamp(sp.GhostEffect+rt.num(block, 0, sp), 0, 100)
	case OpSetBrightnessEffect:
		sp.BrightnessEffect = clamp(rt.num(block, 0, sp), 0, 100)
	case OpChangeBrightnessEffect:
		sp.BrightnessEffect = clamp(sp.BrightnessEffect+rt.num(block, 0, sp), 0, 100)
	case OpSetSaturationEffect:
		sp.SaturationEffect = clamp(rt.num(block, 0, sp), 0, 100)
	case OpChangeSaturationEffect:
		sp.SaturationEffect = clamp(sp.SaturationEffect+rt.num(block, 0, sp), 0, 100)
	case OpClearGraphicEffects:
		sp.ColorEffect, sp.GhostEffect = 0, 0
		sp.BrightnessEffect, sp.SaturationEffect = 0, 0
	case OpGoToFrontLayer:
		sp.Layer = 999
	case OpGoToBackLayer:
		sp.Layer = -999
	case OpGoForwardLayers:
		sp.Layer += int(rt.num(block, 0, sp))
	case OpGoBackwardLayers:
		sp.Layer -= int(rt.num(block, 0, sp))

	// Sound: playback is the mixer collaborator's concern; the core
	// tracks volume state
	case OpPlaySound:
		if rt.mixer != nil {
			rt.mixer.Play(rt.labelOf(block, sp))
		}
	case OpPlaySoundUntilDone:
		if rt.mixer != nil {
			if secs := rt.mixer.PlayUntilDone(rt.labelOf(block, sp)); secs > 0 {
				return rt.suspendWait(ctx, secs)
			}
		}
	case OpStopAllSounds:
		if rt.mixer != nil {
			rt.mixer.StopAll()
		}
	case OpSetVolume:
		rt.stage.setVolume(rt.num(block, 0, sp))
		rt.applyVolume()
	case OpChangeVolume:
		rt.stage.setVolume(rt.stage.Volume + rt.num(block, 0, sp))
		rt.applyVolume()

	// Events: hats are arming markers, no-ops as instructions
	case OpWhenGreenFlagClicked, OpWhenKeyPressed, OpWhenSpriteClicked, OpWhenBroadcast:
	case OpBroadcast:
		name := rt.labelOf(block, sp)
		rt.exec.pendingBroadcast = name
		rt.logger.InfoCat(CatEvent, "broadcast %q", name)

	// Control
	case OpWait:
		if !rt.requireOperands(block, 1) {
			break
		}
		if secs := rt.num(block, 0, sp); secs > 0 {
			return rt.suspendWait(ctx, secs)
		}
	case OpWaitUntil:
		if !rt.requireOperands(block, 1) {
			break
		}
		ctx.waitingUntil = true
		rt.markSuspended(ctx)
		return true
	case OpAskAndWait:
		return rt.beginAsk(ctx, block)
	case OpIf:
		if !rt.requireOperands(block, 1) {
			break
		}
		if rt.eval(block.Operand(0), sp).Bool() && len(block.Body) > 0 {
			ctx.push(loopFrame{kind: loopIf, body: block.Body})
			return false
		}
	case OpIfElse:
		if !rt.requireOperands(block, 1) {
			break
		}
		branch := block.Else
		if rt.eval(block.Operand(0), sp).Bool() {
			branch = block.Body
		}
		if len(branch) > 0 {
			ctx.push(loopFrame{kind: loopIf, body: branch})
			return false
		}
	case OpRepeat:
		if !rt.requireOperands(block, 1) {
			break
		}
		count := int(math.Floor(rt.num(block, 0, sp)))
		if count > 0 && len(block.Body) > 0 {
			ctx.push(loopFrame{kind: loopRepeat, remaining: count, body: block.Body})
			return false
		}
	case OpRepeatUntil:
		if !rt.requireOperands(block, 1) {
			break
		}
		if rt.eval(block.Operand(0), sp).Bool() {
			break
		}
		if len(block.Body) == 0 {
			// Empty body: redispatch the predicate until it turns
			// true or the watchdog intervenes
			return false
		}
		ctx.push(loopFrame{kind: loopRepeatUntil, body: block.Body, cond: block.Operand(0)})
		return false
	case OpForever:
		if len(block.Body) == 0 {
			return false
		}
		ctx.push(loopFrame{kind: loopForever, body: block.Body})
		return false
	case OpStopAll:
		rt.logger.InfoCat(CatControl, "stop all")
		rt.exec.running = false
		rt.finishContext(ctx)
		return true

	// Sensing side effects
	case OpResetTimer:
		rt.stage.Timer = 0

	// Variables
	case OpSetVariable:
		if !rt.requireName(block) {
			break
		}
		val := rt.eval(block.Operand(0), sp)
		rt.stage.SetVariable(block.Name, val)
		rt.logger.DebugCat(CatVariable, "set %q = %s", block.Name, val.Text())
	case OpChangeVariable:
		if !rt.requireName(block) {
			break
		}
		cur := rt.stage.Variable(block.Name).Num()
		rt.stage.SetVariable(block.Name, NumberOf(cur+rt.num(block, 0, sp)))

	// Pen
	case OpPenDown:
		sp.PenDown = true
	case OpPenUp:
		sp.PenDown = false
		if rt.isSelected(sp) {
			rt.pen.Close()
		}
	case OpPenClear:
		rt.pen.Clear()
	case OpStamp:
		rt.pen.Stamp(Point{sp.X, sp.Y}, sp.PenColor)
	case OpSetPenColor:
		if len(block.Operands) >= 3 {
			sp.PenColor = Color{
				R: uint8(clamp(rt.num(block, 0, sp), 0, 255)),
				G: uint8(clamp(rt.num(block, 1, sp), 0, 255)),
				B: uint8(clamp(rt.num(block, 2, sp), 0, 255)),
				A: 255,
			}
		} else {
			sp.PenColor = sp.nextPresetPenColor()
		}
	case OpSetPenSize:
		sp.setPenSize(rt.num(block, 0, sp))
	case OpChangePenSize:
		sp.setPenSize(sp.PenSize + rt.num(block, 0, sp))

	case OpLiteral, OpNone:
		rt.logger.ErrorKind(CatSched, "malformed block", "%s cannot execute as an instruction", block.Op)

	default:
		// Reporters in instruction position: no-op with an error log
		rt.logger.ErrorKind(CatSched, "malformed block", "reporter %s in instruction position", block.Op)
	}

	rt.advance(ctx)
	return ctx.finished
}

// advance steps the context past the current instruction and settles
// frame boundaries: repeat frames rewind and decrement, forever frames
// rewind unconditionally, repeat-until frames re-evaluate their
// predicate on each wrap, if-frames pop.
func (rt *Runtime) advance(ctx *execContext) {
	ctx.bump()
	rt.settle(ctx)
}

func (rt *Runtime) settle(ctx *execContext) {
	for {
		if len(ctx.loops) == 0 {
			if ctx.pc >= len(ctx.script.Blocks) {
				rt.finishContext(ctx)
			}
			return
		}
		top := &ctx.loops[len(ctx.loops)-1]
		if top.ip < len(top.body) {
			return
		}
		switch top.kind {
		case loopForever:
			top.ip = 0
			return
		case loopRepeat:
			top.remaining--
			if top.remaining > 0 {
				top.ip = 0
				return
			}
			ctx.pop()
		case loopRepeatUntil:
			if rt.eval(top.cond, ctx.sprite).Bool() {
				ctx.pop()
			} else {
				top.ip = 0
				return
			}
		case loopIf:
			ctx.pop()
		}
	}
}

// suspendWait parks the context on a wait timer
func (rt *Runtime) suspendWait(ctx *execContext, secs float64) bool {
	ctx.waitTimer = secs
	rt.markSuspended(ctx)
	rt.logger.DebugCat(CatControl, "sprite %q waiting %.3fs", ctx.sprite.Name, secs)
	return true
}

// beginAsk installs a pending ask request and parks the context. When
// another sprite's ask is already showing, the context stays put and
// retries next tick; asks are served one at a time.
func (rt *Runtime) beginAsk(ctx *execContext, block *Block) bool {
	if rt.exec.ask != nil {
		rt.markSuspended(ctx)
		return true
	}
	prompt := rt.text(block, 0, ctx.sprite)
	if prompt == "" {
		prompt = block.Name
	}
	rt.exec.ask = &AskRequest{Prompt: prompt, Sprite: ctx.sprite}
	rt.exec.askResolved = false
	ctx.askWaiting = true
	rt.markSuspended(ctx)
	rt.logger.InfoCat(CatSensing, "ask %q", prompt)
	return true
}

// markSuspended records a real suspension point: the watchdog resets
// and the context becomes eligible for frame-budget yielding
func (rt *Runtime) markSuspended(ctx *execContext) {
	ctx.everSuspended = true
	rt.exec.watchdog = 0
}

// finishContext retires a context; its loop frames are discarded
func (rt *Runtime) finishContext(ctx *execContext) {
	ctx.finished = true
	ctx.loops = nil
	rt.exec.watchdog = 0
}

// tripWatchdog declares an infinite loop: execution stops, every
// context is cleared, and an error entry is recorded
func (rt *Runtime) tripWatchdog() {
	rt.logger.ErrorKind(CatSched, "infinite loop",
		"infinite loop detected after %d dispatches without a suspension; stopping execution", rt.cfg.WatchdogLimit)
	rt.exec.running = false
	rt.exec.watchdog = 0
	rt.forEachContext(func(ctx *execContext) {
		ctx.finished = true
		ctx.loops = nil
	})
}

// bounceOffEdge reflects the x component of the heading when the sprite
// sits on a left/right bound and the y component when it sits on a
// top/bottom bound, whichever way that component points, then
// renormalizes the direction
func (rt *Runtime) bounceOffEdge(sp *Sprite) {
	hitH := sp.atHorizontalBound(rt.stage)
	hitV := sp.atVerticalBound(rt.stage)
	if !hitH && !hitV {
		return
	}
	rad := (sp.Direction - 90) * math.Pi / 180
	dx, dy := math.Cos(rad), math.Sin(rad)
	if hitH {
		dx = -dx
	}
	if hitV {
		dy = -dy
	}
	sp.setDirection(math.Atan2(dy, dx)*180/math.Pi + 90)
}

// switchCostume selects a costume by name; unknown names warn and
// leave the costume unchanged
func (rt *Runtime) switchCostume(sp *Sprite, name string) {
	for i, costume := range sp.Costumes {
		if costume == name {
			sp.CurrentCostume = i
			return
		}
	}
	rt.logger.WarnCat(CatLooks, "unknown costume %q for sprite %q", name, sp.Name)
}

// switchBackdrop selects a backdrop by name; the literal name "next"
// advances modulo the backdrop count
func (rt *Runtime) switchBackdrop(name string) {
	st := rt.stage
	if len(st.Backdrops) == 0 {
		return
	}
	if name == "next" {
		st.CurrentBackdrop = (st.CurrentBackdrop + 1) % len(st.Backdrops)
		return
	}
	if idx := st.BackdropIndex(name); idx >= 0 {
		st.CurrentBackdrop = idx
		return
	}
	rt.logger.WarnCat(CatLooks, "unknown backdrop %q", name)
}

// applyVolume forwards the tracked volume to the mixer collaborator
func (rt *Runtime) applyVolume() {
	if rt.mixer != nil {
		rt.mixer.SetVolume(rt.stage.Volume)
	}
}

// requireOperands checks a block's operand arity; on failure the
// instruction becomes a logged no-op
func (rt *Runtime) requireOperands(b *Block, n int) bool {
	if len(b.Operands) >= n {
		return true
	}
	rt.logger.ErrorKind(b.Op.Family().logCategory(), "malformed block",
		"%s requires %d operand(s), has %d", b.Op, n, len(b.Operands))
	return false
}

// requireName checks a block's name label; on failure the instruction
// becomes a logged no-op
func (rt *Runtime) requireName(b *Block) bool {
	if b.Name != "" {
		return true
	}
	rt.logger.ErrorKind(b.Op.Family().logCategory(), "malformed block",
		"%s requires a name label", b.Op)
	return false
}

// logCategory maps a block family to its logger category
func (f Family) logCategory() LogCategory {
	switch f {
	case FamilyMotion:
		return CatMotion
	case FamilyLooks:
		return CatLooks
	case FamilySound:
		return CatSound
	case FamilyEvents:
		return CatEvent
	case FamilyControl:
		return CatControl
	case FamilySensing:
		return CatSensing
	case FamilyOperators:
		return CatValue
	case FamilyVariables:
		return CatVariable
	case FamilyPen:
		return CatPen
	default:
		return CatSched
	}
}
