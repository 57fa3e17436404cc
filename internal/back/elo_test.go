package back // nolint:testpackage

import (
	"testing"
)

func TestEloOutcome(t *testing.T) {
	type entry struct {
		winnerElo, loserElo       int
		newWinnerElo, newLoserElo int
	}

	cases := []entry{
		// Equal ratings split the K-factor evenly.
		{1000, 1000, 1016, 984},
		// Upset: the lower-rated winner takes ~24 points off the favorite.
		{1000, 1200, 1024, 1176},
		// Expected result: the favorite gains ~8.
		{1200, 1000, 1208, 992},
		// Huge gap, the favorite gains almost nothing.
		{2000, 1000, 2000, 1000},
		{1000, 2000, 1032, 1968},
	}

	for k, v := range cases {
		newWinnerElo, newLoserElo := eloOutcome(v.winnerElo, v.loserElo)
		if newWinnerElo != v.newWinnerElo || newLoserElo != v.newLoserElo {
			t.Errorf(
				"case #%d: expected %d/%d got %d/%d",
				k, v.newWinnerElo, v.newLoserElo, newWinnerElo, newLoserElo,
			)
		}
	}
}

func TestEloOutcomeMonotonicity(t *testing.T) {
	for winnerElo := 600; winnerElo <= 1400; winnerElo += 37 {
		for loserElo := 600; loserElo <= 1400; loserElo += 41 {
			newWinnerElo, newLoserElo := eloOutcome(winnerElo, loserElo)

			if newWinnerElo < winnerElo {
				t.Errorf("winner rating decreased: %d -> %d (vs %d)", winnerElo, newWinnerElo, loserElo)
			}

			if newLoserElo > loserElo {
				t.Errorf("loser rating increased: %d -> %d (vs %d)", loserElo, newLoserElo, winnerElo)
			}
		}
	}
}

func TestEloOutcomeSymmetry(t *testing.T) {
	// For equal starting ratings both deltas must be the same 16 points,
	// the half-away-from-zero rounding must not skew either side.
	newWinnerElo, newLoserElo := eloOutcome(EloBase, EloBase)
	if newWinnerElo-EloBase != EloBase-newLoserElo {
		t.Errorf("asymmetric K split: +%d/-%d", newWinnerElo-EloBase, EloBase-newLoserElo)
	}
}

func TestEloExpectedScore(t *testing.T) {
	type entry struct {
		rating, opponent int
		expected         float64
	}

	cases := []entry{
		{1000, 1000, 0.5},
		{1000, 1200, 0.240253},
		{1200, 1000, 0.759747},
	}

	for k, v := range cases {
		actual := eloExpectedScore(v.rating, v.opponent)
		if diff := actual - v.expected; diff > 1e-6 || diff < -1e-6 {
			t.Errorf("case #%d: expected %f got %f", k, v.expected, actual)
		}
	}
}
