// Package tui is the terminal front end for a single-player session.
package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/lawnchairsociety/dungeonadventure/internal/character"
	"github.com/lawnchairsociety/dungeonadventure/internal/dungeon"
	"github.com/lawnchairsociety/dungeonadventure/internal/game"
	"github.com/lawnchairsociety/dungeonadventure/internal/grid"
	"github.com/lawnchairsociety/dungeonadventure/internal/namefilter"
	"github.com/lawnchairsociety/dungeonadventure/internal/savegame"
	"github.com/lawnchairsociety/dungeonadventure/internal/snapshot"
)

type screen int

const (
	screenSetup screen = iota
	screenPlaying
	screenSaves
)

// Options configures the model.
type Options struct {
	Repository  savegame.Repository
	Definitions *character.Definitions
	Dungeon     dungeon.Config
	Seed        int64
	Class       character.HeroClass
	HeroName    string
	Names       *namefilter.NameFilter
}

// Model is the bubbletea model for one player.
type Model struct {
	ctx  context.Context
	opts Options

	screen  screen
	session *game.Session

	nameInput  textinput.Model
	classIdx   int
	difficulty dungeon.Difficulty
	log       viewport.Model
	spinner   spinner.Model
	busy      bool
	status    string
	failed    bool

	saves     []snapshot.Summary
	cursor    int
	savesFrom screen
	width     int
	height    int
	Quitting  bool
}

type savedMsg struct {
	id  string
	err error
}

type savesListedMsg struct {
	saves []snapshot.Summary
	err   error
}

type loadedMsg struct {
	session *game.Session
	err     error
}

// NewModel builds the setup screen.
func NewModel(ctx context.Context, opts Options) Model {
	if opts.Names == nil {
		opts.Names = namefilter.New(nil)
	}

	ti := textinput.New()
	ti.Placeholder = "Hero name"
	ti.CharLimit = opts.Names.MaxLength()
	ti.Width = 24
	ti.SetValue(opts.HeroName)
	ti.Focus()

	s := spinner.New()
	s.Spinner = spinner.Dot

	classIdx := 0
	for i, c := range character.AllHeroClasses() {
		if c == opts.Class {
			classIdx = i
		}
	}

	difficulty, err := dungeon.ParseDifficulty(string(opts.Dungeon.Difficulty))
	if err != nil {
		difficulty = dungeon.DifficultyHard
	}

	return Model{
		ctx:        ctx,
		opts:       opts,
		nameInput:  ti,
		classIdx:   classIdx,
		difficulty: difficulty,
		log:        viewport.New(60, 8),
		spinner:    s,
	}
}

// Session returns the running session, if any.
func (m Model) Session() *game.Session { return m.session }

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.log.Width = max(30, msg.Width-4)
		m.log.Height = max(4, msg.Height-24)
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			m.Quitting = true
			return m, tea.Quit
		}
		if m.busy {
			return m, nil
		}
		switch m.screen {
		case screenSetup:
			return m.updateSetup(msg)
		case screenPlaying:
			return m.updatePlaying(msg)
		case screenSaves:
			return m.updateSaves(msg)
		}

	case savedMsg:
		m.busy = false
		if msg.err != nil {
			m.setStatus("", fmt.Errorf("save failed: %w", msg.err))
		} else {
			m.setStatus("Saved as "+msg.id, nil)
		}
		return m, nil

	case savesListedMsg:
		m.busy = false
		if msg.err != nil {
			m.setStatus("", msg.err)
			return m, nil
		}
		if len(msg.saves) == 0 {
			m.setStatus("No saved games.", nil)
			return m, nil
		}
		m.saves = msg.saves
		m.cursor = 0
		m.savesFrom = m.screen
		m.screen = screenSaves
		return m, nil

	case loadedMsg:
		m.busy = false
		if msg.err != nil {
			m.setStatus("", msg.err)
			return m, nil
		}
		m.startPlaying(msg.session)
		m.setStatus("Loaded "+msg.session.ID(), nil)
		return m, nil

	case spinner.TickMsg:
		if m.busy {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	if m.screen == screenSetup {
		var cmd tea.Cmd
		m.nameInput, cmd = m.nameInput.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m Model) updateSetup(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	classes := character.AllHeroClasses()
	switch msg.Type {
	case tea.KeyEsc:
		m.Quitting = true
		return m, tea.Quit
	case tea.KeyTab:
		m.classIdx = (m.classIdx + 1) % len(classes)
		return m, nil
	case tea.KeyShiftTab:
		m.classIdx = (m.classIdx + len(classes) - 1) % len(classes)
		return m, nil
	case tea.KeyUp, tea.KeyDown:
		if m.difficulty == dungeon.DifficultyEasy {
			m.difficulty = dungeon.DifficultyHard
		} else {
			m.difficulty = dungeon.DifficultyEasy
		}
		return m, nil
	case tea.KeyCtrlO:
		return m.listSaves()
	case tea.KeyEnter:
		name, err := m.opts.Names.Check(m.nameInput.Value())
		if err != nil {
			m.setStatus("", err)
			return m, nil
		}
		cfg := m.opts.Dungeon
		cfg.Difficulty = m.difficulty
		session, err := game.New(game.Options{
			Seed:        m.opts.Seed,
			HeroName:    name,
			Class:       classes[m.classIdx],
			Dungeon:     cfg,
			Definitions: m.opts.Definitions,
		})
		if err != nil {
			m.setStatus("", err)
			return m, nil
		}
		m.startPlaying(session)
		return m, nil
	}

	var cmd tea.Cmd
	m.nameInput, cmd = m.nameInput.Update(msg)
	return m, cmd
}

func (m Model) updatePlaying(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if m.session.IsOver() {
		switch key {
		case "n", "enter":
			m.screen = screenSetup
			m.session = nil
			m.status = ""
			m.nameInput.Focus()
		case "q", "esc":
			m.Quitting = true
			return m, tea.Quit
		}
		return m, nil
	}

	switch key {
	case "q", "esc":
		m.Quitting = true
		return m, tea.Quit
	case "up", "w":
		m.move(grid.North)
	case "down", "s":
		m.move(grid.South)
	case "right", "d":
		m.move(grid.East)
	case "left", "a":
		m.move(grid.West)
	case "f":
		r, err := m.session.Attack()
		m.setStatus(r.Summary, err)
	case "x":
		r, err := m.session.UseSpecialAbility()
		m.setStatus(r.Summary, err)
	case "h":
		r, err := m.session.UseHealingPotion()
		m.setStatus(r.Message, err)
	case "v":
		r, err := m.session.UseVisionPotion()
		m.setStatus(r.Message, err)
	case "S":
		return m.save()
	case "L":
		return m.listSaves()
	default:
		return m, nil
	}
	m.refreshLog()
	return m, nil
}

func (m Model) updateSaves(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "w":
		if m.cursor > 0 {
			m.cursor--
		}
	case "down", "s":
		if m.cursor < len(m.saves)-1 {
			m.cursor++
		}
	case "esc", "q":
		m.screen = m.savesFrom
	case "enter":
		id := m.saves[m.cursor].ID
		m.busy = true
		return m, tea.Batch(m.spinner.Tick, loadCmd(m.ctx, m.opts.Repository, m.opts.Definitions, id))
	}
	return m, nil
}

func (m *Model) move(dir grid.Direction) {
	r, err := m.session.MovePlayer(dir)
	m.setStatus(describeMove(dir, r), err)
}

func describeMove(dir grid.Direction, r game.MoveResult) string {
	if r.Blocked {
		return fmt.Sprintf("There is no door to the %s.", dir)
	}
	parts := []string{fmt.Sprintf("You walk %s to %s.", dir, r.Position)}
	if r.TriggeredHazard {
		parts = append(parts, fmt.Sprintf("A pit costs you %d HP.", r.HazardDamage))
	}
	for _, item := range r.Collected {
		parts = append(parts, "Found "+item.Name+".")
	}
	if r.TriggeredCombat {
		parts = append(parts, fmt.Sprintf("A %s attacks! [f] attack  [x] special", r.Monster))
	}
	return strings.Join(parts, " ")
}

func (m *Model) startPlaying(s *game.Session) {
	m.session = s
	m.screen = screenPlaying
	m.status = ""
	m.failed = false
	m.nameInput.Blur()
	m.refreshLog()
}

func (m *Model) setStatus(text string, err error) {
	m.failed = err != nil
	if err != nil {
		m.status = err.Error()
		return
	}
	m.status = text
}

func (m *Model) refreshLog() {
	if m.session == nil {
		return
	}
	m.log.SetContent(strings.Join(m.session.Events(), "\n"))
	m.log.GotoBottom()
}

func (m Model) save() (tea.Model, tea.Cmd) {
	if m.opts.Repository == nil {
		m.setStatus("", fmt.Errorf("saving is disabled"))
		return m, nil
	}
	snap := m.session.Snapshot()
	m.busy = true
	return m, tea.Batch(m.spinner.Tick, saveCmd(m.ctx, m.opts.Repository, snap))
}

func (m Model) listSaves() (tea.Model, tea.Cmd) {
	if m.opts.Repository == nil {
		m.setStatus("", fmt.Errorf("saving is disabled"))
		return m, nil
	}
	m.busy = true
	return m, tea.Batch(m.spinner.Tick, listCmd(m.ctx, m.opts.Repository))
}

func saveCmd(ctx context.Context, repo savegame.Repository, snap *snapshot.Snapshot) tea.Cmd {
	return func() tea.Msg {
		return savedMsg{id: snap.ID, err: repo.Save(ctx, snap)}
	}
}

func listCmd(ctx context.Context, repo savegame.Repository) tea.Cmd {
	return func() tea.Msg {
		saves, err := repo.List(ctx)
		return savesListedMsg{saves: saves, err: err}
	}
}

func loadCmd(ctx context.Context, repo savegame.Repository, defs *character.Definitions, id string) tea.Cmd {
	return func() tea.Msg {
		snap, err := repo.Load(ctx, id)
		if err != nil {
			return loadedMsg{err: err}
		}
		s, err := game.Restore(snap, defs)
		return loadedMsg{session: s, err: err}
	}
}

func (m Model) View() string {
	if m.Quitting {
		return "Farewell, adventurer.\n"
	}

	var s string
	switch m.screen {
	case screenSetup:
		s = m.viewSetup()
	case screenPlaying:
		s = m.viewPlaying()
	case screenSaves:
		s = m.viewSaves()
	}

	if m.busy {
		s += "\n" + m.spinner.View() + " Working..."
	}
	return "\n" + s + "\n"
}

func (m Model) viewSetup() string {
	var classes []string
	for i, c := range character.AllHeroClasses() {
		if i == m.classIdx {
			classes = append(classes, selectedStyle.Render("["+c.String()+"]"))
		} else {
			classes = append(classes, " "+c.String()+" ")
		}
	}

	var difficulties []string
	for _, d := range []dungeon.Difficulty{dungeon.DifficultyEasy, dungeon.DifficultyHard} {
		if d == m.difficulty {
			difficulties = append(difficulties, selectedStyle.Render("["+string(d)+"]"))
		} else {
			difficulties = append(difficulties, " "+string(d)+" ")
		}
	}

	lines := []string{
		titleStyle.Render("DUNGEON ADVENTURE"),
		"",
		"Recover the four pillars of OO and escape through the exit.",
		"",
		"Name:  " + m.nameInput.View(),
		"Class: " + strings.Join(classes, " "),
		"Level: " + strings.Join(difficulties, " "),
		"",
		helpStyle.Render("tab: change class · up/down: difficulty · enter: start · ctrl+o: load a save · esc: quit"),
	}
	if m.status != "" {
		lines = append(lines, "", m.renderStatus())
	}
	return strings.Join(lines, "\n")
}

func (m Model) viewPlaying() string {
	v := m.session.View()

	mapPanel := panelStyle.Render(titleStyle.Render("MAP") + "\n" + ColorizeMap(v.Map))
	side := []string{m.viewHero(v.Hero)}
	if v.Combat != nil {
		side = append(side, m.viewCombat(v.Combat))
	}
	top := lipgloss.JoinHorizontal(lipgloss.Top, mapPanel, lipgloss.JoinVertical(lipgloss.Left, side...))

	parts := []string{top, panelStyle.Render(m.log.View())}
	switch v.State {
	case game.Victory:
		parts = append(parts, victoryStyle.Render("VICTORY! You escaped with all four pillars."))
	case game.Defeat:
		parts = append(parts, defeatStyle.Render("You have fallen in the dungeon."))
	}
	if m.status != "" {
		parts = append(parts, m.renderStatus())
	}

	help := "arrows/wasd: move · f: attack · x: special · h: heal · v: vision · S: save · L: load · q: quit"
	if m.session.IsOver() {
		help = "n: new game · q: quit"
	}
	parts = append(parts, helpStyle.Render(help))
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func (m Model) viewHero(h game.HeroView) string {
	pillars := "none"
	if len(h.Pillars) > 0 {
		pillars = strings.Join(h.Pillars, " ")
	}
	vision := ""
	if h.VisionActive {
		vision = "\nVision active"
	}
	body := fmt.Sprintf("%s the %s\nHP %s\nHealing potions: %d\nVision potions:  %d\nPillars: %s%s",
		h.Name, h.Class, hpBar(h.HP, h.MaxHP), h.HealingPotions, h.VisionPotions, pillars, vision)
	return panelStyle.Render(titleStyle.Render("HERO") + "\n" + body)
}

func (m Model) viewCombat(c *game.CombatView) string {
	body := fmt.Sprintf("%s\nHP %s\nRound %d", c.Monster, hpBar(c.MonsterHP, c.MonsterMaxHP), c.Round)
	return panelStyle.Render(titleStyle.Render("COMBAT") + "\n" + body)
}

func (m Model) viewSaves() string {
	lines := []string{titleStyle.Render("SAVED GAMES"), ""}
	for i, sum := range m.saves {
		line := fmt.Sprintf("%s  %-12s %-9s %-8s pillars %d  %s",
			sum.ID, sum.HeroName, sum.Class, sum.State, sum.Pillars, sum.SavedAt.Local().Format("2006-01-02 15:04"))
		if i == m.cursor {
			line = selectedStyle.Render("> " + line)
		} else {
			line = "  " + line
		}
		lines = append(lines, line)
	}
	lines = append(lines, "", helpStyle.Render("up/down: choose · enter: load · esc: back"))
	return strings.Join(lines, "\n")
}

func (m Model) renderStatus() string {
	if m.failed {
		return errorStyle.Render(m.status)
	}
	return statusStyle.Render(m.status)
}
