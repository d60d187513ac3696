package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true).
			Underline(true)

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Italic(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FF5F5F")).
			Bold(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EEEEEE")).
			Background(lipgloss.Color("#5F5F87")).
			PaddingLeft(1).
			PaddingRight(1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("#3C3C3C")).
			Padding(0, 1)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)

	wallStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#5C5C5C"))
	heroStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFD700")).Bold(true)
	monsterStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Bold(true)
	pitStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("#AF5FFF"))
	potionStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F"))
	pillarStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFAF00")).Bold(true)
	doorwayStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FAFFF")).Bold(true)
	unknownStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3A3A3A"))
	victoryStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F")).Bold(true)
	defeatStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F")).Bold(true)
	hpFullStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5FD75F"))
	hpEmptyStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#3A3A3A"))
	hpDangerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF5F5F"))
)

// ColorizeMap colors a rendered dungeon map glyph by glyph.
func ColorizeMap(m string) string {
	var b strings.Builder
	for _, r := range m {
		if r == '\n' || r == ' ' {
			b.WriteRune(r)
			continue
		}
		b.WriteString(glyphStyle(r).Render(string(r)))
	}
	return b.String()
}

func glyphStyle(r rune) lipgloss.Style {
	switch r {
	case '*', '-', '|':
		return wallStyle
	case '@':
		return heroStyle
	case 'M':
		return monsterStyle
	case 'X':
		return pitStyle
	case 'H', 'V':
		return potionStyle
	case 'A', 'E', 'I', 'P':
		return pillarStyle
	case 'i', 'o':
		return doorwayStyle
	case '?':
		return unknownStyle
	}
	return lipgloss.NewStyle()
}

// hpBar draws a ten-cell health bar.
func hpBar(hp, maxHP int) string {
	const cells = 10
	if maxHP <= 0 {
		maxHP = 1
	}
	filled := hp * cells / maxHP
	if hp > 0 && filled == 0 {
		filled = 1
	}
	full := hpFullStyle
	if hp*4 <= maxHP {
		full = hpDangerStyle
	}
	return full.Render(strings.Repeat("█", filled)) +
		hpEmptyStyle.Render(strings.Repeat("░", cells-filled)) +
		fmt.Sprintf(" %d/%d", hp, maxHP)
}
