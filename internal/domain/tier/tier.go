package tier

import (
	"fmt"

	"github.com/wtfpad/backend/config"
)

type Tier struct {
	ID         int
	Name       string
	MinBalance uint64
	BonusVotes int
}

type Progress struct {
	Current    uint64
	Required   uint64
	Percentage float64
}

var defaultTiers = []Tier{
	{ID: 1, Name: "Supporter", MinBalance: 1_000_000, BonusVotes: 1},
	{ID: 2, Name: "Contributor", MinBalance: 10_000_000, BonusVotes: 3},
	{ID: 3, Name: "Advocate", MinBalance: 25_000_000, BonusVotes: 6},
	{ID: 4, Name: "Builder", MinBalance: 50_000_000, BonusVotes: 10},
	{ID: 5, Name: "Leader", MinBalance: 100_000_000, BonusVotes: 15},
	{ID: 6, Name: "Whale", MinBalance: 250_000_000, BonusVotes: 25},
	{ID: 7, Name: "Guardian", MinBalance: 500_000_000, BonusVotes: 40},
	{ID: 8, Name: "Titan", MinBalance: 750_000_000, BonusVotes: 60},
	{ID: 9, Name: "OG", MinBalance: 1_000_000_000, BonusVotes: 100},
	{ID: 10, Name: "Legendary", MinBalance: 2_000_000_000, BonusVotes: 151},
}

// Table is ordered by ascending MinBalance. It is immutable after loading.
type Table struct {
	tiers []Tier
}

func DefaultTable() *Table {
	return &Table{tiers: append([]Tier(nil), defaultTiers...)}
}

// LoadTable builds a table from configured tiers, or the default table when
// none is configured. Thresholds and bonuses must be strictly increasing.
func LoadTable(cfgs []config.TierConfig) (*Table, error) {
	if len(cfgs) == 0 {
		return DefaultTable(), nil
	}

	tiers := make([]Tier, 0, len(cfgs))
	for i, c := range cfgs {
		t := Tier{ID: c.ID, Name: c.Name, MinBalance: c.MinBalance, BonusVotes: c.BonusVotes}
		if t.Name == "" {
			return nil, fmt.Errorf("tier %d has no name", t.ID)
		}

		if t.BonusVotes < 0 {
			return nil, fmt.Errorf("tier %s has negative bonus votes", t.Name)
		}

		if i > 0 {
			prev := tiers[i-1]
			if t.MinBalance <= prev.MinBalance {
				return nil, fmt.Errorf("tier %s min balance must be greater than tier %s", t.Name, prev.Name)
			}

			if t.ID <= prev.ID {
				return nil, fmt.Errorf("tier ids must be increasing, got %d after %d", t.ID, prev.ID)
			}
		}

		tiers = append(tiers, t)
	}

	return &Table{tiers: tiers}, nil
}

func (t *Table) Tiers() []Tier {
	return append([]Tier(nil), t.tiers...)
}

// TierFor returns the highest tier whose threshold is at most balance, or nil
// below the first tier.
func (t *Table) TierFor(balance uint64) *Tier {
	var result *Tier
	for i := range t.tiers {
		if t.tiers[i].MinBalance > balance {
			break
		}

		tier := t.tiers[i]
		result = &tier
	}

	return result
}

func (t *Table) NextTier(balance uint64) *Tier {
	for i := range t.tiers {
		if t.tiers[i].MinBalance > balance {
			tier := t.tiers[i]
			return &tier
		}
	}

	return nil
}

func (t *Table) BonusVotes(balance uint64) int {
	if tier := t.TierFor(balance); tier != nil {
		return tier.BonusVotes
	}

	return 0
}

// Progress measures the way from the current tier threshold to the next one.
// At the top tier it is complete.
func (t *Table) Progress(balance uint64) Progress {
	next := t.NextTier(balance)
	if next == nil {
		return Progress{Current: balance, Required: balance, Percentage: 100}
	}

	currentMin := uint64(0)
	if current := t.TierFor(balance); current != nil {
		currentMin = current.MinBalance
	}

	p := Progress{
		Current:  balance - currentMin,
		Required: next.MinBalance - currentMin,
	}
	p.Percentage = min(100, float64(p.Current)/float64(p.Required)*100)

	return p
}
