package back

import (
	"crosspointx/internal/util"
	"fmt"
	"log"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// LeaderboardEntry is one row of the leaderboard read model. It carries the
// same numbers as the player's PlayerRating row; the reconciliation task
// repairs any divergence from the profile copy, which is the source of truth.
type LeaderboardEntry struct {
	PlayerID  util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp
	UpdatedAt util.TimeAsTimestamp

	Wins   int
	Losses int
	Elo    int

	PlayerName      string `db:"-"`
	PlayerDisplayID string `db:"-"`
}

// GetLeaderboard returns the top players sorted the way the venue screens
// have always displayed them: most wins first, Elo as tie-breaker.
func (b *Back) GetLeaderboard(limit int) (entries []LeaderboardEntry, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) error {
		if err := tx.Select(&entries, `
            SELECT LeaderboardEntry.* FROM LeaderboardEntry
            ORDER BY LeaderboardEntry.Wins DESC, LeaderboardEntry.Elo DESC
            LIMIT ?`,
			limit,
		); err != nil {
			return err
		}

		ids := make([]util.UUIDAsBlob, 0, len(entries))
		for k := range entries {
			ids = append(ids, entries[k].PlayerID)
		}

		players, err := getPlayersByIDs(tx, ids)
		if err != nil {
			return err
		}

		for k := range entries {
			player, ok := players[entries[k].PlayerID]
			if !ok {
				// Orphaned leaderboard row, skip silently and let the
				// operator figure out where the Player went.
				log.Printf("warning: no Player for LeaderboardEntry %s", entries[k].PlayerID)
				continue
			}

			entries[k].PlayerName = player.Name
			entries[k].PlayerDisplayID = player.DisplayID
		}

		return nil
	}); err != nil {
		return nil, err
	}

	return entries, nil
}

// GetPlayerRating returns the profile copy of a player's record, defaulted if
// the player never played a rated game.
func (b *Back) GetPlayerRating(playerID util.UUIDAsBlob) (rating PlayerRating, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		rating, err = getPlayerRating(tx, playerID)
		return err
	}); err != nil {
		return PlayerRating{}, err
	}

	return rating, nil
}

// reconcileLeaderboard copies the profile copy of every diverged rating over
// its leaderboard counterpart. Under normal operation both copies are written
// in the same transaction and this finds nothing; it exists so a bug or a
// manual DB edit can't leave the leaderboard lying forever.
func (b *Back) reconcileLeaderboard() error {
	return b.transaction(func(tx *sqlx.Tx) error {
		var diverged []PlayerRating
		if err := tx.Select(&diverged, `
            SELECT PlayerRating.* FROM PlayerRating
            LEFT JOIN LeaderboardEntry ON (LeaderboardEntry.PlayerID = PlayerRating.PlayerID)
            WHERE LeaderboardEntry.PlayerID IS NULL
               OR LeaderboardEntry.Wins != PlayerRating.Wins
               OR LeaderboardEntry.Losses != PlayerRating.Losses
               OR LeaderboardEntry.Elo != PlayerRating.Elo`,
		); err != nil {
			return err
		}

		if len(diverged) == 0 {
			return nil
		}

		log.Printf("warning: repairing %d diverged leaderboard entries", len(diverged))

		for k := range diverged {
			query, args, err := squirrel.Insert("LeaderboardEntry").SetMap(squirrel.Eq{
				"PlayerID":  diverged[k].PlayerID,
				"CreatedAt": diverged[k].CreatedAt,
				"UpdatedAt": util.TimeAsTimestamp(time.Now()),
				"Wins":      diverged[k].Wins,
				"Losses":    diverged[k].Losses,
				"Elo":       diverged[k].Elo,
			}).Suffix(`ON CONFLICT(PlayerID) DO UPDATE SET
                UpdatedAt = excluded.UpdatedAt,
                Wins = excluded.Wins,
                Losses = excluded.Losses,
                Elo = excluded.Elo`).ToSql()
			if err != nil {
				return err
			}

			if _, err := tx.Exec(query, args...); err != nil {
				return fmt.Errorf("unable to repair leaderboard entry: %w", err)
			}
		}

		return nil
	})
}
