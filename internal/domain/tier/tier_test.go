package tier

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wtfpad/backend/config"
)

func TestTable_TierFor(t *testing.T) {
	table := DefaultTable()

	testCases := []struct {
		name    string
		balance uint64
		wantID  int
		bonus   int
	}{
		{name: "below first tier", balance: 999_999, wantID: 0, bonus: 0},
		{name: "exactly supporter", balance: 1_000_000, wantID: 1, bonus: 1},
		{name: "between tiers", balance: 30_000_000, wantID: 3, bonus: 6},
		{name: "exactly legendary", balance: 2_000_000_000, wantID: 10, bonus: 151},
		{name: "above legendary", balance: 9_000_000_000, wantID: 10, bonus: 151},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			got := table.TierFor(tt.balance)
			if tt.wantID == 0 {
				require.Nil(t, got)
			} else {
				require.NotNil(t, got)
				require.Equal(t, tt.wantID, got.ID)
			}
			require.Equal(t, tt.bonus, table.BonusVotes(tt.balance))
		})
	}
}

func TestTable_NextTierAndProgress(t *testing.T) {
	table := DefaultTable()

	next := table.NextTier(0)
	require.Equal(t, "Supporter", next.Name)

	p := table.Progress(500_000)
	require.Equal(t, uint64(500_000), p.Current)
	require.Equal(t, uint64(1_000_000), p.Required)
	require.InDelta(t, 50.0, p.Percentage, 0.001)

	p = table.Progress(17_500_000)
	require.Equal(t, uint64(7_500_000), p.Current)
	require.Equal(t, uint64(15_000_000), p.Required)
	require.InDelta(t, 50.0, p.Percentage, 0.001)

	require.Nil(t, table.NextTier(2_000_000_000))
	require.Equal(t, 100.0, table.Progress(3_000_000_000).Percentage)
}

func TestLoadTable(t *testing.T) {
	table, err := LoadTable(nil)
	require.NoError(t, err)
	require.Len(t, table.Tiers(), 10)

	table, err = LoadTable([]config.TierConfig{
		{ID: 1, Name: "Bronze", MinBalance: 10, BonusVotes: 1},
		{ID: 2, Name: "Silver", MinBalance: 20, BonusVotes: 2},
	})
	require.NoError(t, err)
	require.Equal(t, "Silver", table.TierFor(25).Name)

	_, err = LoadTable([]config.TierConfig{
		{ID: 1, Name: "Bronze", MinBalance: 10, BonusVotes: 1},
		{ID: 2, Name: "Silver", MinBalance: 10, BonusVotes: 2},
	})
	require.Error(t, err)

	// Only thresholds are ordered. Bonus votes may repeat or drop.
	table, err = LoadTable([]config.TierConfig{
		{ID: 1, Name: "Bronze", MinBalance: 10, BonusVotes: 3},
		{ID: 2, Name: "Silver", MinBalance: 20, BonusVotes: 2},
	})
	require.NoError(t, err)
	require.Equal(t, 3, table.BonusVotes(15))
	require.Equal(t, 2, table.BonusVotes(25))
}
