package main

import (
	"flag"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/scritchlab/scritch"
)

func main() {
	var (
		configPath string
		debug      bool
		seed       int64
	)
	flag.StringVar(&configPath, "config", "scritch.toml", "Path to playground config file")
	flag.BoolVar(&debug, "debug", false, "Enable debug logging")
	flag.Int64Var(&seed, "seed", 0, "Random seed (0 = from the clock)")
	flag.Parse()

	playCfg, err := loadPlayConfig(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "scritch: %v\n", err)
		os.Exit(1)
	}
	if debug {
		playCfg.Debug = true
	}

	cfg := scritch.DefaultConfig()
	cfg.Debug = playCfg.Debug
	cfg.RandomSeed = seed
	rt := scritch.New(cfg)

	if playCfg.Debug {
		for _, cat := range playCfg.DebugCategories {
			rt.Logger().EnableCategory(scritch.LogCategory(cat))
		}
		if len(playCfg.DebugCategories) == 0 {
			rt.Logger().EnableAllCategories()
		}
	}

	buildDemoProject(rt)

	program := tea.NewProgram(newModel(rt, playCfg), tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "scritch: %v\n", err)
		os.Exit(1)
	}
}
