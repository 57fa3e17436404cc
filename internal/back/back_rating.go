package back

import (
	"crosspointx/internal/util"
	"fmt"
	"log"

	"github.com/jmoiron/sqlx"
)

// RecordResult applies a single rated result to both players: the winner
// gains a win and Elo, the loser gains a loss and sheds the same Elo. All
// four writes (two players × two copies) share one transaction so a partial
// failure can never leave the leaderboard and profile copies disagreeing.
func (b *Back) RecordResult(winnerID, loserID util.UUIDAsBlob) error {
	if winnerID.IsZero() || loserID.IsZero() {
		return util.ErrPublic("both players must be specified")
	}

	if winnerID == loserID {
		return util.ErrPublic("a player can't win a game against themselves")
	}

	if err := b.retryingTransaction(func(tx *sqlx.Tx) error {
		return recordResult(tx, winnerID, loserID)
	}); err != nil {
		return err
	}

	b.notify(Notification{
		Type:      NotificationTypeLeaderboardUpdated,
		PlayerIDs: []util.UUIDAsBlob{winnerID, loserID},
	})

	return nil
}

func recordResult(tx *sqlx.Tx, winnerID, loserID util.UUIDAsBlob) error {
	// Resolving the players up front turns a typo'd ID into a useful error
	// instead of a rating record attached to nothing.
	winner, err := getPlayerByID(tx, winnerID)
	if err != nil {
		return fmt.Errorf("unable to fetch winner: %w", err)
	}

	loser, err := getPlayerByID(tx, loserID)
	if err != nil {
		return fmt.Errorf("unable to fetch loser: %w", err)
	}

	winnerRating, err := getPlayerRating(tx, winner.ID)
	if err != nil {
		return fmt.Errorf("unable to fetch winner rating: %w", err)
	}

	loserRating, err := getPlayerRating(tx, loser.ID)
	if err != nil {
		return fmt.Errorf("unable to fetch loser rating: %w", err)
	}

	winnerRating.Elo, loserRating.Elo = eloOutcome(winnerRating.Elo, loserRating.Elo)
	winnerRating.Wins++
	loserRating.Losses++

	if err := winnerRating.upsert(tx); err != nil {
		return fmt.Errorf("unable to update winner rating: %w", err)
	}

	if err := loserRating.upsert(tx); err != nil {
		return fmt.Errorf("unable to update loser rating: %w", err)
	}

	log.Printf(
		"info: rated result %s > %s, new Elo %d / %d",
		winner.DisplayID, loser.DisplayID,
		winnerRating.Elo, loserRating.Elo,
	)

	return nil
}

// gameResultPairs returns the (winner, loser) pairs a team game is rated as.
// Every winning-team member is paired against the first loser and every
// remaining losing-team member against the first winner. This is the pairing
// the venue has always ranked with, kept as-is rather than a full
// round-robin; the one change is that the head pair is no longer counted
// twice.
func gameResultPairs(winners, losers []util.UUIDAsBlob) [][2]util.UUIDAsBlob {
	pairs := make([][2]util.UUIDAsBlob, 0, len(winners)+len(losers)-1)
	for _, w := range winners {
		pairs = append(pairs, [2]util.UUIDAsBlob{w, losers[0]})
	}

	for _, l := range losers[1:] {
		pairs = append(pairs, [2]util.UUIDAsBlob{winners[0], l})
	}

	return pairs
}

// RecordGameOutcome rates a concluded team game at a venue and stores it as
// the venue's last game. The whole game is one transaction: either every
// pairing is rated or none is.
func (b *Back) RecordGameOutcome(
	venueID util.UUIDAsBlob,
	winners, losers []util.UUIDAsBlob,
) error {
	if len(winners) == 0 || len(losers) == 0 {
		return util.ErrPublic("both teams need at least one player")
	}

	seen := make(map[util.UUIDAsBlob]struct{}, len(winners)+len(losers))
	for _, id := range append(append([]util.UUIDAsBlob{}, winners...), losers...) {
		if _, ok := seen[id]; ok {
			return util.ErrPublic("a player can't be on both teams or appear twice")
		}
		seen[id] = struct{}{}
	}

	if err := b.retryingTransaction(func(tx *sqlx.Tx) error {
		venue, err := getVenueByID(tx, venueID)
		if err != nil {
			return fmt.Errorf("unable to fetch venue: %w", err)
		}

		for _, pair := range gameResultPairs(winners, losers) {
			if err := recordResult(tx, pair[0], pair[1]); err != nil {
				return err
			}
		}

		game := NewGame(venue.ID, winners, losers)
		if err := game.upsert(tx); err != nil {
			return fmt.Errorf("unable to store game: %w", err)
		}

		return venue.incrementGamesRecorded(tx)
	}); err != nil {
		return err
	}

	b.notify(Notification{
		Type:      NotificationTypeLeaderboardUpdated,
		VenueID:   venueID,
		PlayerIDs: append(append([]util.UUIDAsBlob{}, winners...), losers...),
	})

	return nil
}
