package combat

import "fmt"

// Side identifies one of the two combatants.
type Side int

const (
	SideNone Side = iota
	SideHero
	SideMonster
)

func (s Side) String() string {
	switch s {
	case SideHero:
		return "hero"
	case SideMonster:
		return "monster"
	default:
		return "none"
	}
}

// MarshalText encodes the side by name.
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a side name.
func (s *Side) UnmarshalText(text []byte) error {
	switch string(text) {
	case "hero":
		*s = SideHero
	case "monster":
		*s = SideMonster
	case "none", "":
		*s = SideNone
	default:
		return fmt.Errorf("unknown combat side %q", text)
	}
	return nil
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	switch s {
	case SideHero:
		return SideMonster
	case SideMonster:
		return SideHero
	default:
		return SideNone
	}
}

// ActionsThisRound returns how many actions a combatant with speed self gets in
// the given round (1-based) against an opponent with speed opp.
//
// A combatant at least as fast as its opponent acts floor(self/opp) times every
// round. A slower one acts once every ceil(opp/self) rounds, starting with the
// first round.
func ActionsThisRound(self, opp, round int) int {
	if self < 1 || opp < 1 || round < 1 {
		return 0
	}
	if n := self / opp; n >= 1 {
		return n
	}
	every := (opp + self - 1) / self
	if (round-1)%every == 0 {
		return 1
	}
	return 0
}

// Schedule returns the ordered actors for a round. The faster side takes all of
// its actions before the slower side; on equal speed the hero goes first.
func Schedule(heroSpeed, monsterSpeed, round int) []Side {
	heroActions := ActionsThisRound(heroSpeed, monsterSpeed, round)
	monsterActions := ActionsThisRound(monsterSpeed, heroSpeed, round)

	order := make([]Side, 0, heroActions+monsterActions)
	first, firstN, second, secondN := SideHero, heroActions, SideMonster, monsterActions
	if monsterSpeed > heroSpeed {
		first, firstN, second, secondN = SideMonster, monsterActions, SideHero, heroActions
	}
	for i := 0; i < firstN; i++ {
		order = append(order, first)
	}
	for i := 0; i < secondN; i++ {
		order = append(order, second)
	}
	return order
}
