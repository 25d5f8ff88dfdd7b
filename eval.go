package scritch

import "math"

// eval evaluates a reporter block to a Value for the given sprite. It
// is the single place Values are produced and never mutates sprite,
// stage or execution state; random() draws from the runtime's random
// source, advancing it. Every path is total: user-program faults (divide by zero,
// sqrt of a negative, unknown names) log a warning and yield a safe
// default.
func (rt *Runtime) eval(b *Block, sp *Sprite) Value {
	if b == nil {
		return NumberOf(0)
	}

	switch b.Op {
	case OpLiteral:
		return b.Literal

	// Arithmetic
	case OpAdd:
		return NumberOf(rt.num(b, 0, sp) + rt.num(b, 1, sp))
	case OpSubtract:
		return NumberOf(rt.num(b, 0, sp) - rt.num(b, 1, sp))
	case OpMultiply:
		return NumberOf(rt.num(b, 0, sp) * rt.num(b, 1, sp))
	case OpDivide:
		return NumberOf(rt.safeDivide(rt.num(b, 0, sp), rt.num(b, 1, sp)))
	case OpMod:
		return NumberOf(rt.safeMod(rt.num(b, 0, sp), rt.num(b, 1, sp)))
	case OpRandom:
		a, c := rt.num(b, 0, sp), rt.num(b, 1, sp)
		lo, hi := math.Min(a, c), math.Max(a, c)
		return NumberOf(lo + rt.rng.Float64()*(hi-lo))

	// Unary math
	case OpAbs:
		return NumberOf(math.Abs(rt.num(b, 0, sp)))
	case OpSqrt:
		return NumberOf(rt.safeSqrt(rt.num(b, 0, sp)))
	case OpFloor:
		return NumberOf(math.Floor(rt.num(b, 0, sp)))
	case OpCeiling:
		return NumberOf(math.Ceil(rt.num(b, 0, sp)))
	case OpRound:
		return NumberOf(math.Round(rt.num(b, 0, sp)))
	case OpSin:
		return NumberOf(math.Sin(rt.num(b, 0, sp) * math.Pi / 180))
	case OpCos:
		return NumberOf(math.Cos(rt.num(b, 0, sp) * math.Pi / 180))

	// Comparisons
	case OpLessThan:
		return BoolOf(rt.eval(b.Operand(0), sp).Less(rt.eval(b.Operand(1), sp)))
	case OpEqual:
		return BoolOf(rt.eval(b.Operand(0), sp).Equal(rt.eval(b.Operand(1), sp)))
	case OpGreaterThan:
		return BoolOf(rt.eval(b.Operand(0), sp).Greater(rt.eval(b.Operand(1), sp)))

	// Boolean
	case OpAnd:
		return BoolOf(rt.eval(b.Operand(0), sp).Bool() && rt.eval(b.Operand(1), sp).Bool())
	case OpOr:
		return BoolOf(rt.eval(b.Operand(0), sp).Bool() || rt.eval(b.Operand(1), sp).Bool())
	case OpNot:
		return BoolOf(!rt.eval(b.Operand(0), sp).Bool())

	// Strings
	case OpJoin:
		return TextOf(rt.text(b, 0, sp) + rt.text(b, 1, sp))
	case OpLengthOf:
		return NumberOf(float64(len([]rune(rt.text(b, 0, sp)))))
	case OpLetterOf:
		idx := int(rt.num(b, 0, sp))
		runes := []rune(rt.text(b, 1, sp))
		if idx < 1 || idx > len(runes) {
			return TextOf("")
		}
		return TextOf(string(runes[idx-1]))

	// Sensors
	case OpMouseX:
		return NumberOf(rt.input.MouseX)
	case OpMouseY:
		return NumberOf(rt.input.MouseY)
	case OpMouseDown:
		return BoolOf(rt.input.MouseDown)
	case OpTimer:
		return NumberOf(rt.stage.Timer)
	case OpKeyPressed:
		name := rt.labelOf(b, sp)
		if !IsKeyName(name) {
			rt.logger.WarnCat(CatSensing, "unknown key name %q, treated as not pressed", name)
			return BoolOf(false)
		}
		return BoolOf(rt.input.KeyPressed(name))
	case OpTouching:
		return BoolOf(rt.touching(sp, rt.labelOf(b, sp)))
	case OpDistanceTo:
		return NumberOf(rt.distanceTo(sp, rt.labelOf(b, sp)))
	case OpAnswer:
		return TextOf(sp.Answer)

	// Variable reads: a variable block used in reporter position
	// reads the variable's current value
	case OpSetVariable, OpChangeVariable:
		return rt.stage.Variable(b.Name)

	default:
		rt.logger.ErrorKind(CatValue, "malformed block", "block %s is not a reporter", b.Op)
		return NumberOf(0)
	}
}

// num evaluates operand i coerced to a number; a missing operand is 0
func (rt *Runtime) num(b *Block, i int, sp *Sprite) float64 {
	return rt.eval(b.Operand(i), sp).Num()
}

// text evaluates operand i coerced to text; a missing operand is empty
func (rt *Runtime) text(b *Block, i int, sp *Sprite) string {
	if b.Operand(i) == nil {
		return ""
	}
	return rt.eval(b.Operand(i), sp).Text()
}

// labelOf resolves a block's name label, falling back to its first
// operand so labels can be computed
func (rt *Runtime) labelOf(b *Block, sp *Sprite) string {
	if b.Name != "" {
		return b.Name
	}
	return rt.text(b, 0, sp)
}

func (rt *Runtime) safeDivide(a, b float64) float64 {
	if b == 0 {
		rt.logger.WarnCat(CatValue, "division by zero prevented")
		return 0
	}
	return a / b
}

// safeMod is the mathematical remainder, carrying the sign of the divisor
func (rt *Runtime) safeMod(a, b float64) float64 {
	if b == 0 {
		rt.logger.WarnCat(CatValue, "modulo by zero prevented")
		return 0
	}
	return a - b*math.Floor(a/b)
}

func (rt *Runtime) safeSqrt(x float64) float64 {
	if x < 0 {
		rt.logger.WarnCat(CatValue, "sqrt of negative number prevented")
		return 0
	}
	return math.Sqrt(x)
}

// touching implements the touching sensor for the closed target set:
// "edge", "mouse pointer", or another sprite's name. Sprite targets
// use a bounding-circle test with the radius derived from size.
func (rt *Runtime) touching(sp *Sprite, target string) bool {
	switch target {
	case "edge":
		return sp.touchingEdge(rt.stage)
	case "mouse pointer":
		return dist(sp.X, sp.Y, rt.input.MouseX, rt.input.MouseY) <= sp.Radius()
	default:
		other := rt.SpriteByName(target)
		if other == nil {
			rt.logger.WarnCat(CatSensing, "touching: unknown target %q", target)
			return false
		}
		if other == sp {
			return false
		}
		return dist(sp.X, sp.Y, other.X, other.Y) <= sp.Radius()+other.Radius()
	}
}

// distanceTo implements the distance sensor for "mouse pointer" or a
// sprite name, in stage coordinates
func (rt *Runtime) distanceTo(sp *Sprite, target string) float64 {
	if target == "mouse pointer" {
		return dist(sp.X, sp.Y, rt.input.MouseX, rt.input.MouseY)
	}
	other := rt.SpriteByName(target)
	if other == nil {
		rt.logger.WarnCat(CatSensing, "distance_to: unknown target %q", target)
		return 0
	}
	return dist(sp.X, sp.Y, other.X, other.Y)
}

func dist(x1, y1, x2, y2 float64) float64 {
	return math.Hypot(x2-x1, y2-y1)
}
