// Package test holds end-to-end scenarios that drive a running dungeon server
// through its websocket protocol.
package test

import (
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/lawnchairsociety/dungeonadventure/internal/game"
	"github.com/lawnchairsociety/dungeonadventure/internal/grid"
	"github.com/lawnchairsociety/dungeonadventure/internal/testclient"
)

// uniqueCounter provides unique names for scenario heroes within a single run
var uniqueCounter uint64

// uniqueName appends a letter suffix; hero names may only contain letters.
func uniqueName(base string) string {
	counter := atomic.AddUint64(&uniqueCounter, 1)
	return base + counterToLetters(counter)
}

// counterToLetters converts a number to a letter sequence (1=a, 2=b, ..., 26=z, 27=aa, 28=ab, ...)
func counterToLetters(n uint64) string {
	if n == 0 {
		return "a"
	}
	result := ""
	for n > 0 {
		n-- // Make it 0-indexed
		result = string(rune('a'+(n%26))) + result
		n /= 26
	}
	return result
}

// Verbose controls whether detailed logging is shown during scenarios
var Verbose = false

// Seed shifts every scenario seed, so repeated runs can cover other dungeons.
// Zero keeps the built-in seeds and lets seedless games pick a fresh one.
var Seed int64

// Difficulty is requested for every new game. Empty uses the server default.
var Difficulty string

// scenarioSeed returns the seed a scenario asks for in place of base.
func scenarioSeed(base int64) int64 {
	return base + Seed
}

// TestResult represents the result of a scenario
type TestResult struct {
	Name    string
	Passed  bool
	Message string
}

func pass(name, msg string) TestResult { return TestResult{Name: name, Passed: true, Message: msg} }

func fail(name, format string, args ...any) TestResult {
	return TestResult{Name: name, Passed: false, Message: fmt.Sprintf(format, args...)}
}

// logAction logs a scenario action when verbose mode is enabled
func logAction(testName, action string) {
	if Verbose {
		fmt.Printf("  [%s] %s\n", testName, action)
	}
}

// connect opens a client, closing it is the caller's job.
func connect(name, serverAddr string) (*testclient.TestClient, error) {
	logAction(name, "connecting to "+serverAddr)
	client, err := testclient.NewTestClient(name, serverAddr)
	if err != nil {
		return nil, err
	}
	client.Difficulty = Difficulty
	return client, nil
}

// heroRoom returns the hero's room from a view.
func heroRoom(v *game.View) (game.RoomView, bool) {
	for _, r := range v.Rooms {
		if r.Coord == v.Hero.Position {
			return r, true
		}
	}
	return game.RoomView{}, false
}

// wallDirection returns a direction the hero's room has no door in.
func wallDirection(room game.RoomView) (string, bool) {
	for _, d := range grid.AllDirections() {
		open := false
		for _, door := range room.Doors {
			if door == d.String() {
				open = true
			}
		}
		if !open {
			return d.String(), true
		}
	}
	return "", false
}

// =============================================================================
// Test Runner
// =============================================================================

// RunAllTests runs every scenario against the server at serverAddr.
func RunAllTests(serverAddr string) []TestResult {
	scenarios := []func(string) TestResult{
		// Connection and protocol
		TestBasicConnection,
		TestHealthEndpoint,
		TestMalformedMessages,
		TestHeroNameRules,

		// Gameplay
		TestNewGame,
		TestDeterministicSeed,
		TestMovement,
		TestPotionsWithoutStock,
		TestAttackOutsideCombat,

		// Persistence and sharing
		TestSaveAndLoad,
		TestJoinRunningGame,
		TestLoadUnknownSave,
	}

	results := make([]TestResult, 0, len(scenarios))
	for _, run := range scenarios {
		results = append(results, run(serverAddr))
	}
	return results
}

// PrintResults prints a summary of scenario results
func PrintResults(results []TestResult) {
	passed := 0
	for _, r := range results {
		status := "PASS"
		if r.Passed {
			passed++
		} else {
			status = "FAIL"
		}
		fmt.Printf("[%s] %s", status, r.Name)
		if r.Message != "" {
			fmt.Printf(": %s", r.Message)
		}
		fmt.Println()
	}
	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("%d/%d scenarios passed\n", passed, len(results))
}
