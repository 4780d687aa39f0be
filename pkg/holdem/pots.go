package holdem

import "sort"

// SidePot is the public view of one pot layer
type SidePot struct {
	Amount   int      `json:"amount"`
	Eligible []string `json:"eligible_user_ids"`
}

type potLayer struct {
	amount   int
	eligible []*Player
}

// buildPots splits the pot into layers keyed by the distinct contribution
// totals of the unfolded players. Folded players' chips are clipped into the
// layers they reached, so every chip in the pot lands in exactly one layer.
func (g *Game) buildPots() []potLayer {
	levels := make([]int, 0, len(g.players))
	seen := make(map[int]bool)
	for _, p := range g.players {
		if p.folded || p.totalBet == 0 {
			continue
		}

		if !seen[p.totalBet] {
			seen[p.totalBet] = true
			levels = append(levels, p.totalBet)
		}
	}

	sort.Ints(levels)

	pots := make([]potLayer, 0, len(levels))
	distributed := 0
	prev := 0
	for _, level := range levels {
		amount := 0
		for _, p := range g.players {
			contrib := p.totalBet
			if contrib > level {
				contrib = level
			}

			if contrib > prev {
				amount += contrib - prev
			}
		}

		eligible := make([]*Player, 0, len(g.players))
		for _, p := range g.players {
			if !p.folded && p.totalBet >= level {
				eligible = append(eligible, p)
			}
		}

		if amount > 0 {
			pots = append(pots, potLayer{amount: amount, eligible: eligible})
			distributed += amount
		}

		prev = level
	}

	// any chips beyond the top contribution level stay with the top layer
	if rem := g.pot - distributed; rem > 0 && len(pots) > 0 {
		pots[len(pots)-1].amount += rem
	}

	return pots
}

// settlePots awards each pot layer to its best eligible hand(s), splitting
// ties with odd chips going to the earliest seat after the dealer. Every
// distributed chip moves out of the pot, leaving it empty.
func (g *Game) settlePots() {
	pots := g.buildPots()

	for i, pot := range pots {
		winners := g.potWinners(pot.eligible)
		share := pot.amount / len(winners)
		remainder := pot.amount % len(winners)

		for _, p := range winners {
			winnings := share
			if remainder > 0 {
				winnings++
				remainder--
			}

			p.stack += winnings
			p.won = true
		}

		g.pot -= pot.amount

		// the first layer is the main pot
		if i == 0 {
			g.winners = winners
		}
	}
}

// potWinners returns the eligible players holding the strongest hand, ordered
// clockwise from the dealer's left
func (g *Game) potWinners(eligible []*Player) []*Player {
	if len(eligible) == 1 {
		return eligible
	}

	best := 0
	winners := make([]*Player, 0, 1)
	for _, p := range g.playersFromSeat(g.dealerSeat) {
		if p.folded || !contains(eligible, p) {
			continue
		}

		strength := p.hand(g.community).GetStrength()
		if strength > best {
			best = strength
			winners = winners[:0]
		}

		if strength == best {
			winners = append(winners, p)
		}
	}

	return winners
}

func contains(players []*Player, p *Player) bool {
	for _, candidate := range players {
		if candidate == p {
			return true
		}
	}

	return false
}

// SidePots returns the current pot layering for client display
func (g *Game) SidePots() []SidePot {
	pots := g.buildPots()
	if len(pots) <= 1 {
		return nil
	}

	sidePots := make([]SidePot, len(pots))
	for i, pot := range pots {
		ids := make([]string, len(pot.eligible))
		for j, p := range pot.eligible {
			ids[j] = p.UserID
		}

		sidePots[i] = SidePot{Amount: pot.amount, Eligible: ids}
	}

	return sidePots
}
