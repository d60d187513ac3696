package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/lawnchairsociety/dungeonadventure/internal/dungeon"
	"github.com/lawnchairsociety/dungeonadventure/test"
)

func main() {
	serverAddr := flag.String("addr", "localhost:8080", "Dungeon server address (host:port or URL)")
	verbose := flag.Bool("v", false, "Verbose output - show detailed actions for each scenario")
	seed := flag.Int64("seed", 0, "Offset added to every scenario seed (0 keeps the built-in seeds)")
	difficulty := flag.String("difficulty", "", "Layout requested for every new game: easy or hard (empty uses the server's)")
	flag.Parse()

	if *difficulty != "" {
		d, err := dungeon.ParseDifficulty(*difficulty)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(2)
		}
		test.Difficulty = string(d)
	}
	test.Verbose = *verbose
	test.Seed = *seed

	fmt.Printf("Running scenarios against %s\n", *serverAddr)
	fmt.Println("Make sure dungeond is running!")
	if test.Seed != 0 {
		fmt.Printf("Scenario seeds shifted by %d\n", test.Seed)
	}
	if test.Difficulty != "" {
		fmt.Printf("Requesting %s dungeons\n", test.Difficulty)
	}
	fmt.Println()

	results := test.RunAllTests(*serverAddr)
	test.PrintResults(results)

	for _, result := range results {
		if !result.Passed {
			if test.Seed != 0 {
				fmt.Printf("Rerun with -seed=%d to reproduce\n", test.Seed)
			}
			os.Exit(1)
		}
	}
}
