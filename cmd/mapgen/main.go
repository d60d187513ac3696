package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/lawnchairsociety/dungeonadventure/internal/character"
	"github.com/lawnchairsociety/dungeonadventure/internal/dungeon"
	"github.com/lawnchairsociety/dungeonadventure/internal/game"
	"github.com/lawnchairsociety/dungeonadventure/internal/grid"
	"github.com/lawnchairsociety/dungeonadventure/internal/items"
	"github.com/lawnchairsociety/dungeonadventure/internal/snapshot"
	"github.com/lawnchairsociety/dungeonadventure/internal/tui"
)

func main() {
	seed := flag.Int64("seed", 1, "Dungeon seed")
	width := flag.Int("width", 0, "Dungeon width (default from config)")
	height := flag.Int("height", 0, "Dungeon height (default from config)")
	difficulty := flag.String("difficulty", "hard", "Layout difficulty: easy or hard")
	count := flag.Int("count", 1, "Number of consecutive seeds to render")
	inputFile := flag.String("input", "", "Render a save file instead of generating")
	defsFile := flag.String("definitions", "", "Hero and monster definitions YAML")
	outputFile := flag.String("output", "", "Output file (empty for stdout)")
	showLegend := flag.Bool("legend", true, "Show legend")
	color := flag.Bool("color", true, "Color the map (stdout only)")
	flag.Parse()

	defs, err := character.LoadDefinitions(*defsFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading definitions: %v\n", err)
		os.Exit(1)
	}

	useColor := *color && *outputFile == ""
	var output strings.Builder

	if *inputFile != "" {
		snap, err := snapshot.LoadFile(*inputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error reading save: %v\n", err)
			os.Exit(1)
		}
		session, err := game.Restore(snap, defs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error restoring save: %v\n", err)
			os.Exit(1)
		}
		pos := session.Hero().Position()
		fmt.Fprintf(&output, "Save %s (Seed: %d, Hero: %s)\n", snap.ID, snap.Seed, session.Hero())
		output.WriteString(strings.Repeat("=", 60) + "\n\n")
		renderDungeon(&output, session.Dungeon(), &pos, useColor)
	} else {
		cfg := dungeon.DefaultConfig()
		if *width > 0 {
			cfg.Width = *width
		}
		if *height > 0 {
			cfg.Height = *height
		}
		cfg.Difficulty, err = dungeon.ParseDifficulty(*difficulty)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		for i := 0; i < *count; i++ {
			s := *seed + int64(i)
			d, err := dungeon.Generate(s, cfg, defs)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error generating seed %d: %v\n", s, err)
				os.Exit(1)
			}
			fmt.Fprintf(&output, "Dungeon %dx%d %s (Seed: %d)\n", cfg.Width, cfg.Height, cfg.Difficulty, s)
			output.WriteString(strings.Repeat("=", 60) + "\n\n")
			renderDungeon(&output, d, nil, useColor)
			output.WriteString("\n")
		}
	}

	if *showLegend {
		output.WriteString(getLegend())
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, []byte(output.String()), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Error writing output file: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Map written to %s\n", *outputFile)
	} else {
		fmt.Print(output.String())
	}
}

func renderDungeon(output *strings.Builder, d *dungeon.Dungeon, hero *grid.Coord, color bool) {
	m := dungeon.Render(d, dungeon.RenderOptions{Hero: hero})
	if color {
		m = tui.ColorizeMap(m)
	}
	output.WriteString(m)

	stats := dungeon.Summarize(d)
	fmt.Fprintf(output, "\nRooms: %d  Doors: %d  Dead ends: %d  Entrance->exit: %d\n",
		stats.Rooms, stats.Doors, stats.DeadEnds, stats.ExitDistance)

	fmt.Fprintf(output, "Items: %d healing, %d vision, %d pits, %d pillars\n",
		stats.Items[items.KindHealingPotion], stats.Items[items.KindVisionPotion],
		stats.Items[items.KindPit], stats.Items[items.KindPillar])

	if len(stats.Monsters) > 0 {
		names := make([]string, 0, len(stats.Monsters))
		for name := range stats.Monsters {
			names = append(names, name)
		}
		sort.Strings(names)
		parts := make([]string, 0, len(names))
		for _, name := range names {
			parts = append(parts, fmt.Sprintf("%d %s", stats.Monsters[name], name))
		}
		fmt.Fprintf(output, "Monsters: %s\n", strings.Join(parts, ", "))
	}
}

func getLegend() string {
	return `
Legend:
  *  corner          -  |  wall (a gap is a door)
  i  entrance        o  exit
  @  hero            M  monster or several items
  H  healing potion  V  vision potion
  X  pit             A E I P  pillars of OO
`
}
