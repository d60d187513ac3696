// balance is a Monte Carlo simulator for testing dungeon combat balance.
//
// Usage:
//
//	balance [command] [options]
//
// Commands:
//
//	combat  - Simulate one hero class against one monster kind
//	matrix  - Simulate every class against every monster kind
//	scale   - Test how a class fares as a monster gets tougher
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lawnchairsociety/dungeonadventure/internal/character"
	"github.com/lawnchairsociety/dungeonadventure/internal/combat"
	"github.com/lawnchairsociety/dungeonadventure/internal/logger"
	"github.com/lawnchairsociety/dungeonadventure/utilities/balance"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)
	hardStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	fairStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	edgeStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	cellStyle   = lipgloss.NewStyle().Width(14).Align(lipgloss.Right)
	rowStyle    = lipgloss.NewStyle().Width(11)
)

func main() {
	// Every fight logs; the report is the output here.
	logger.SetLogger(nil)

	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "combat":
		err = runCombatSim(os.Args[2:])
	case "matrix":
		err = runMatrix(os.Args[2:])
	case "scale":
		err = runScaleSim(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Dungeon Balance Simulator

A Monte Carlo simulator for testing combat balance.

Usage: balance <command> [options]

Commands:
  combat  Simulate one hero class against one monster kind
  matrix  Simulate every class against every monster kind
  scale   Test how a class fares as a monster gets tougher

Examples:
  balance combat -class=thief -monster=ogre -policy=special
  balance matrix -iterations=20000 -workers=8
  balance scale -class=priestess -monster=skeleton -factors=0.5,1,1.5,2

Use "balance <command> -h" for more information about a command.`)
}

type commonFlags struct {
	definitions *string
	policy      *string
	iterations  *int
	seed        *int64
}

func addCommonFlags(fs *flag.FlagSet, iterations int) commonFlags {
	return commonFlags{
		definitions: fs.String("definitions", "", "Hero and monster definitions YAML"),
		policy:      fs.String("policy", balance.PolicyAttack, "Hero policy: attack, special or alternate"),
		iterations:  fs.Int("iterations", iterations, "Number of simulations per pairing"),
		seed:        fs.Int64("seed", 1, "Base RNG seed"),
	}
}

func (c commonFlags) load() (*character.Definitions, combat.Policy, error) {
	defs, err := character.LoadDefinitions(*c.definitions)
	if err != nil {
		return nil, nil, err
	}
	policy, err := balance.ParsePolicy(*c.policy)
	if err != nil {
		return nil, nil, err
	}
	return defs, policy, nil
}

func runCombatSim(args []string) error {
	fs := flag.NewFlagSet("combat", flag.ExitOnError)
	common := addCommonFlags(fs, 10000)
	className := fs.String("class", "warrior", "Hero class")
	monster := fs.String("monster", "ogre", "Monster kind")
	fs.Parse(args)

	defs, policy, err := common.load()
	if err != nil {
		return err
	}
	class, err := character.ParseHeroClass(*className)
	if err != nil {
		return err
	}
	kind := character.NormalizeMonsterKind(*monster)

	fmt.Println(headerStyle.Render("Combat Simulation"))
	fmt.Println()
	fmt.Printf("Hero:       %s %+v\n", class, defs.Heroes[class].Stats)
	fmt.Printf("Monster:    %s %+v\n", kind, defs.Monsters[kind].Stats)
	fmt.Printf("Policy:     %s\n", *common.policy)
	fmt.Printf("Iterations: %d\n", *common.iterations)
	fmt.Println()

	result, err := balance.RunSimulation(defs, class, kind, policy, *common.iterations, *common.seed)
	if err != nil {
		return err
	}
	printSimulationResult(result)
	return nil
}

func runMatrix(args []string) error {
	fs := flag.NewFlagSet("matrix", flag.ExitOnError)
	common := addCommonFlags(fs, 5000)
	workers := fs.Int("workers", 0, "Parallel workers (0 for one per CPU)")
	fs.Parse(args)

	defs, policy, err := common.load()
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	m, err := balance.RunMatrix(ctx, balance.MatrixOptions{
		Definitions: defs,
		Policy:      policy,
		Iterations:  *common.iterations,
		Seed:        *common.seed,
		Workers:     *workers,
	})
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("Win rate by class and monster (%d fights each, policy %s)",
		*common.iterations, *common.policy)))
	fmt.Println()

	header := []string{rowStyle.Render("")}
	for _, kind := range m.Monsters {
		header = append(header, cellStyle.Render(kind.String()))
	}
	fmt.Println(lipgloss.JoinHorizontal(lipgloss.Top, header...))

	for _, class := range m.Classes {
		row := []string{rowStyle.Render(class.String())}
		for _, kind := range m.Monsters {
			cell, _ := m.Cell(class, kind)
			text := fmt.Sprintf("%5.1f%% %4.1fr", cell.WinRate, cell.AvgRounds)
			row = append(row, cellStyle.Render(assessmentStyle(cell.WinRate).Render(text)))
		}
		fmt.Println(lipgloss.JoinHorizontal(lipgloss.Top, row...))
	}

	fmt.Println()
	fmt.Println("Target win rates: 60-80% against common monsters, 30-50% against the toughest.")
	return nil
}

func runScaleSim(args []string) error {
	fs := flag.NewFlagSet("scale", flag.ExitOnError)
	common := addCommonFlags(fs, 5000)
	className := fs.String("class", "warrior", "Hero class")
	monster := fs.String("monster", "ogre", "Monster kind")
	factorList := fs.String("factors", "0.5,0.75,1,1.25,1.5,2", "Comma-separated monster scale factors")
	fs.Parse(args)

	defs, policy, err := common.load()
	if err != nil {
		return err
	}
	class, err := character.ParseHeroClass(*className)
	if err != nil {
		return err
	}
	factors, err := parseFactors(*factorList)
	if err != nil {
		return err
	}
	kind := character.NormalizeMonsterKind(*monster)

	results, err := balance.RunScalingSim(defs, class, kind, policy, factors, *common.iterations, *common.seed)
	if err != nil {
		return err
	}

	fmt.Println(headerStyle.Render(fmt.Sprintf("%s vs scaled %s", class, kind)))
	fmt.Println()
	fmt.Println("Factor | Win Rate | Avg Rounds | Avg HP Left | Avg Damage Taken")
	fmt.Println("-------+----------+------------+-------------+-----------------")
	for _, r := range results {
		fmt.Printf("%6.2f | %s | %10.1f | %11.1f | %16.1f\n",
			r.Factor, assessmentStyle(r.WinRate).Render(fmt.Sprintf("%7.1f%%", r.WinRate)),
			r.AvgRounds, r.AvgHPLeft, r.AvgDamageTaken)
	}
	return nil
}

func parseFactors(s string) ([]float64, error) {
	var factors []float64
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		f, err := strconv.ParseFloat(part, 64)
		if err != nil {
			return nil, fmt.Errorf("bad scale factor %q: %w", part, err)
		}
		factors = append(factors, f)
	}
	if len(factors) == 0 {
		return nil, fmt.Errorf("no scale factors given")
	}
	return factors, nil
}

func printSimulationResult(r balance.SimulationResult) {
	fmt.Printf("Results (%d simulations):\n", r.Simulations)
	fmt.Printf("  Win Rate:      %.1f%% (%d wins, %d losses)\n", r.WinRate, r.HeroWins, r.MonsterWins)
	fmt.Printf("  Avg Rounds:    %.1f (min: %d, max: %d)\n", r.AvgRounds, r.MinRounds, r.MaxRounds)
	fmt.Printf("  Avg HP Left:   %.1f (when winning)\n", r.AvgHPLeft)
	fmt.Printf("  Avg Damage In: %.1f\n", r.AvgDamageTaken)
	fmt.Printf("Assessment: %s\n", assessmentStyle(r.WinRate).Render(assessBalance(r.WinRate)))
}

func assessBalance(winRate float64) string {
	switch {
	case winRate < 30:
		return "TOO HARD"
	case winRate < 50:
		return "CHALLENGING"
	case winRate < 70:
		return "BALANCED"
	case winRate < 85:
		return "EASY"
	default:
		return "TOO EASY"
	}
}

func assessmentStyle(winRate float64) lipgloss.Style {
	switch assessBalance(winRate) {
	case "BALANCED":
		return fairStyle
	case "CHALLENGING", "EASY":
		return edgeStyle
	default:
		return hardStyle
	}
}
