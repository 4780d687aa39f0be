package holdem

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/superxuu/depu/pkg/deck"
)

// showdownGame builds a hand frozen at showdown with hand-picked cards and
// contribution totals so pot settlement can be exercised directly
func showdownGame(t *testing.T, chips ...int) *Game {
	t.Helper()

	g, err := NewGame(logrus.StandardLogger(), testSeats(chips...), 0, DefaultOptions())
	assert.NoError(t, err)
	return g
}

func TestGame_settlePots_sidePots(t *testing.T) {
	a := assert.New(t)
	g := showdownGame(t, 1000, 50, 1000, 1000)
	g.community = deck.CardsFromString("2c,3d,7s,10h,13d")

	p0, p1, p2, p3 := g.players[0], g.players[1], g.players[2], g.players[3]

	// short stack all-in for 50 holding trip kings
	p0.cards, p0.totalBet, p0.stack = deck.CardsFromString("10s,9h"), 100, 900
	p1.cards, p1.totalBet, p1.stack = deck.CardsFromString("13s,13h"), 50, 0
	p2.cards, p2.totalBet, p2.stack = deck.CardsFromString("7c,2d"), 100, 900
	p3.cards, p3.totalBet, p3.stack = deck.CardsFromString("4c,5h"), 30, 970
	p3.folded = true
	g.pot = 280

	// the folded 30 belongs to the main pot
	sidePots := g.SidePots()
	a.Equal([]SidePot{
		{Amount: 180, Eligible: []string{"player-0", "player-1", "player-2"}},
		{Amount: 100, Eligible: []string{"player-0", "player-2"}},
	}, sidePots)

	g.settlePots()

	// trip kings take the main pot, two pair takes the side pot, and every
	// chip leaves the pot
	a.Equal(180, p1.Stack())
	a.Equal(1000, p2.Stack())
	a.Equal(900, p0.Stack())
	a.Equal(970, p3.Stack())
	a.Equal(0, g.Pot())

	a.Equal([]*Player{p1}, g.Winners())
	a.True(p1.Won())
	a.True(p2.Won())
	a.False(p0.Won())
}

func TestGame_settlePots_oddChip(t *testing.T) {
	a := assert.New(t)
	g := showdownGame(t, 100, 100, 100)

	// the board plays for everyone
	g.community = deck.CardsFromString("14c,13d,12h,11s,10d")

	holes := []string{"2c,3h", "2d,4h", "3s,5d"}
	for i, p := range g.players {
		p.cards = deck.CardsFromString(holes[i])
		p.totalBet = 33
		p.stack = 0
	}

	// an extra chip from a folded contributor makes the pot indivisible
	g.pot = 100

	a.Nil(g.SidePots())
	g.settlePots()

	// the odd chip lands on the first seat after the dealer
	a.Equal(34, g.players[1].Stack())
	a.Equal(33, g.players[2].Stack())
	a.Equal(33, g.players[0].Stack())
	a.Equal(0, g.Pot())
	a.Len(g.Winners(), 3)
}

func TestGame_settlePots_singleWinner(t *testing.T) {
	a := assert.New(t)
	g := showdownGame(t, 100, 100)
	g.community = deck.CardsFromString("2c,5d,9h,11s,13d")

	p0, p1 := g.players[0], g.players[1]
	p0.cards, p0.totalBet, p0.stack = deck.CardsFromString("14c,14d"), 40, 60
	p1.cards, p1.totalBet, p1.stack = deck.CardsFromString("6c,7d"), 40, 60
	g.pot = 80

	g.settlePots()

	a.Equal(140, p0.Stack())
	a.Equal(60, p1.Stack())
	a.Equal(0, g.Pot())
	a.Equal([]*Player{p0}, g.Winners())
}
