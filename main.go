package main

import (
	"flag"
	"log"
	"os"
	"path/filepath"

	"github.com/leonelquinteros/gotext"

	"darkconsole/pkg/engine/console"
	"darkconsole/pkg/game/commands"
	"darkconsole/pkg/game/histfile"
	ebitenui "darkconsole/pkg/game/renderer/ebiten"
	"darkconsole/pkg/game/renderer/tui"
)

func initGotext() {
	gotext.Configure("mo", "en_GB", "default")
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".darkconsole_history"
	}
	return filepath.Join(home, ".darkconsole_history")
}

func main() {
	useTUI := flag.Bool("tui", false, "run in the terminal instead of a window")
	histPath := flag.String("history", defaultHistoryPath(), "history file path")
	histSize := flag.Int("history-size", 200, "maximum stored history entries")
	scrollSize := flag.Int("scrollback-size", 2000, "maximum scrollback lines")
	flag.Parse()

	initGotext()

	load, save := histfile.Hooks(*histPath)
	opts := console.Options{
		HistorySize:    *histSize,
		ScrollbackSize: *scrollSize,
		LoadHistory:    load,
		SaveHistory:    save,
	}
	if s, ok := commands.GetCvar("colors.echo"); ok {
		if c, ok := commands.ParseColorRGBA(s); ok {
			opts.EchoColor = c
		}
	}

	con, err := console.New(opts)
	if err != nil {
		log.Printf("history load: %v", err)
	}
	registry := commands.NewRegistry()
	con.Complete.SetCandidates(registry.Candidates())

	if *useTUI {
		if err := tui.New(con, registry).Run(); err != nil {
			log.Fatalf("console: %v", err)
		}
		return
	}
	if err := ebitenui.Run(con, registry); err != nil {
		log.Fatalf("console: %v", err)
	}
}
