package back

import "math"

// eloExpectedScore is the classic Elo win probability of a player rated
// `rating` against an opponent rated `opponent`.
func eloExpectedScore(rating, opponent int) float64 {
	return 1 / (1 + math.Pow(10, float64(opponent-rating)/400))
}

// eloOutcome returns the post-game ratings of the winner and loser with a
// fixed K-factor of 32. Deltas are rounded half-away-from-zero to the nearest
// integer, which matches what the rest of the system has always stored.
func eloOutcome(winnerElo, loserElo int) (newWinnerElo, newLoserElo int) {
	expectedWinner := eloExpectedScore(winnerElo, loserElo)
	expectedLoser := eloExpectedScore(loserElo, winnerElo)

	newWinnerElo = int(math.Round(float64(winnerElo) + EloKFactor*(1-expectedWinner)))
	newLoserElo = int(math.Round(float64(loserElo) + EloKFactor*(0-expectedLoser)))

	return newWinnerElo, newLoserElo
}
