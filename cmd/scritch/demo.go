package main

import (
	"github.com/scritchlab/scritch"
)

// buildDemoProject assembles the built-in demo: a bouncing cat, a pen
// turtle drawing a spiral, and a greeter that asks for your name when
// clicked. The playground has no project loader; scripts are built
// from palette blocks in code.
func buildDemoProject(rt *scritch.Runtime) {
	cat := scritch.NewSprite("Cat")
	cat.AddScript(scritch.NewScript(
		scritch.NewBlock(scritch.OpWhenGreenFlagClicked),
		scritch.NewBlock(scritch.OpGoToXY, scritch.Num(0), scritch.Num(0)),
		scritch.NewBlock(scritch.OpPointDirection, scritch.Num(75)),
		scritch.NewBlock(scritch.OpForever).WithBody(
			scritch.NewBlock(scritch.OpMove, scritch.Num(12)),
			scritch.NewBlock(scritch.OpBounceOffEdge),
			scritch.NewBlock(scritch.OpWait, scritch.Num(0.03)),
		),
	))
	cat.AddScript(scritch.NewScript(
		scritch.NewNamedBlock(scritch.OpWhenKeyPressed, "space"),
		scritch.NewNamedBlock(scritch.OpBroadcast, "meow"),
	))
	cat.AddScript(scritch.NewScript(
		scritch.NewNamedBlock(scritch.OpWhenBroadcast, "meow"),
		scritch.NewBlock(scritch.OpSayFor, scritch.Text("Meow!"), scritch.Num(1)),
	))
	rt.AddSprite(cat)

	turtle := scritch.NewSprite("Turtle")
	turtle.AddScript(scritch.NewScript(
		scritch.NewBlock(scritch.OpWhenGreenFlagClicked),
		scritch.NewBlock(scritch.OpGoToXY, scritch.Num(-60), scritch.Num(-40)),
		scritch.NewBlock(scritch.OpPenDown),
		scritch.NewNamedBlock(scritch.OpSetVariable, "step", scritch.Num(8)),
		scritch.NewBlock(scritch.OpRepeat, scritch.Num(40)).WithBody(
			scritch.NewBlock(scritch.OpMove, scritch.NewNamedBlock(scritch.OpSetVariable, "step")),
			scritch.NewBlock(scritch.OpTurnRight, scritch.Num(35)),
			scritch.NewNamedBlock(scritch.OpChangeVariable, "step", scritch.Num(2)),
			scritch.NewBlock(scritch.OpWait, scritch.Num(0.05)),
		),
		scritch.NewBlock(scritch.OpPenUp),
	))
	rt.AddSprite(turtle)

	greeter := scritch.NewSprite("Greeter")
	greeter.AddScript(scritch.NewScript(
		scritch.NewBlock(scritch.OpWhenSpriteClicked),
		scritch.NewNamedBlock(scritch.OpAskAndWait, "", scritch.Text("What's your name?")),
		scritch.NewBlock(scritch.OpSayFor,
			scritch.NewBlock(scritch.OpJoin, scritch.Text("Hi "), scritch.NewBlock(scritch.OpAnswer)),
			scritch.Num(2)),
	))
	greeter.AddScript(scritch.NewScript(
		scritch.NewBlock(scritch.OpWhenGreenFlagClicked),
		scritch.NewBlock(scritch.OpGoToXY, scritch.Num(150), scritch.Num(100)),
		scritch.NewBlock(scritch.OpSayFor, scritch.Text("Click me!"), scritch.Num(2)),
	))
	rt.AddSprite(greeter)

	// The turtle owns the pen layer capture
	rt.SelectSprite(1)
}
