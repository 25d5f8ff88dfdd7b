package scritch

// The closed key name set: "space", the four arrows, "enter", and the
// lowercase letters a-z. Anything else is an unknown key, treated as
// not pressed with a warning.
var keyNames = buildKeyNames()

func buildKeyNames() map[string]bool {
	names := map[string]bool{
		"space": true, "up": true, "down": true,
		"left": true, "right": true, "enter": true,
	}
	for c := 'a'; c <= 'z'; c++ {
		names[string(c)] = true
	}
	return names
}

// IsKeyName reports whether name belongs to the closed key set
func IsKeyName(name string) bool {
	return keyNames[name]
}

// armScript creates a fresh execution context at pc 0 for the script,
// replacing any context the script already had. Hat blocks are no-ops
// when executed, so the context simply steps over the head.
func (rt *Runtime) armScript(spriteIdx, scriptIdx int) {
	sp := rt.sprites[spriteIdx]
	rt.contexts[spriteIdx][scriptIdx] = newExecContext(sp, sp.Scripts[scriptIdx])
	rt.logger.DebugCat(CatEvent, "armed script %d of sprite %q", scriptIdx, sp.Name)
}

// armGreenFlag arms every script headed by a green-flag hat. Scripts
// with no hat at all also run on the green flag, matching the original
// engine's start behavior.
func (rt *Runtime) armGreenFlag() {
	for si, sp := range rt.sprites {
		for ci, script := range sp.Scripts {
			head := script.Head()
			if head == nil {
				continue
			}
			if head.Op == OpWhenGreenFlagClicked || !head.Op.IsHat() {
				rt.armScript(si, ci)
			}
		}
	}
}

// armKeyPressed arms every script headed by a matching key hat
func (rt *Runtime) armKeyPressed(name string) {
	for si, sp := range rt.sprites {
		for ci, script := range sp.Scripts {
			head := script.Head()
			if head != nil && head.Op == OpWhenKeyPressed && head.Name == name {
				rt.armScript(si, ci)
			}
		}
	}
}

// armSpriteClicked arms the clicked sprite's click-hat scripts
func (rt *Runtime) armSpriteClicked(spriteIdx int) {
	sp := rt.sprites[spriteIdx]
	for ci, script := range sp.Scripts {
		if head := script.Head(); head != nil && head.Op == OpWhenSpriteClicked {
			rt.armScript(spriteIdx, ci)
		}
	}
}

// armBroadcast arms every script headed by a matching broadcast hat.
// Called at the tick boundary, so a broadcast emitted mid-frame never
// retro-arms a context inside its own execution.
func (rt *Runtime) armBroadcast(name string) {
	for si, sp := range rt.sprites {
		for ci, script := range sp.Scripts {
			head := script.Head()
			if head != nil && head.Op == OpWhenBroadcast && head.Name == name {
				rt.armScript(si, ci)
			}
		}
	}
}
