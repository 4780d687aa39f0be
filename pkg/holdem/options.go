package holdem

import "errors"

// Options configures a hand of No Limit Texas Hold'em
type Options struct {
	SmallBlind int
	BigBlind   int

	// Seed shuffles the deck deterministically when non-zero
	Seed int64
}

// DefaultOptions returns the default options for a hand
func DefaultOptions() Options {
	return Options{
		SmallBlind: 5,
		BigBlind:   10,
	}
}

func validateOptions(opts Options) error {
	if opts.SmallBlind < 1 {
		return errors.New("small blind must be at least 1")
	}

	if opts.BigBlind <= opts.SmallBlind {
		return errors.New("big blind must be greater than the small blind")
	}

	return nil
}
