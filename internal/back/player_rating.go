package back

import (
	"crosspointx/internal/util"
	"database/sql"
	"errors"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

const (
	// EloBase is the rating assigned to a player the first time they play a
	// rated game.
	EloBase = 1000

	// EloKFactor scales how much a single result moves both ratings.
	EloKFactor = 32
)

// A PlayerRating is the win/loss record and Elo rating of a single player.
// It is persisted twice: in the PlayerRating table (the profile copy, our
// source of truth) and in the LeaderboardEntry table (the read model the
// leaderboard is served from). Both copies are written in the same
// transaction and must hold identical numbers.
type PlayerRating struct {
	PlayerID  util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp
	UpdatedAt util.TimeAsTimestamp

	Wins   int
	Losses int
	Elo    int
}

func NewPlayerRating(playerID util.UUIDAsBlob) PlayerRating {
	now := util.TimeAsTimestamp(time.Now())

	return PlayerRating{
		PlayerID:  playerID,
		CreatedAt: now,
		UpdatedAt: now,
		Wins:      0,
		Losses:    0,
		Elo:       EloBase,
	}
}

// getPlayerRating gets the current rating record for a player or creates and
// returns a default one on the fly. The caller computes against the returned
// values, not against another read, so a freshly defaulted record behaves
// exactly like a stored one.
func getPlayerRating(tx *sqlx.Tx, playerID util.UUIDAsBlob) (PlayerRating, error) {
	var ret PlayerRating
	query := `SELECT * FROM PlayerRating WHERE PlayerID = ? LIMIT 1`
	err := tx.Get(&ret, query, playerID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return NewPlayerRating(playerID), nil
		}
		return PlayerRating{}, err
	}

	return ret, nil
}

// upsert writes the rating to both the profile copy and the leaderboard
// copy. Four calls per recorded result (two players × nothing extra), all in
// one transaction.
func (r *PlayerRating) upsert(tx *sqlx.Tx) error {
	r.UpdatedAt = util.TimeAsTimestamp(time.Now())

	for _, table := range []string{"PlayerRating", "LeaderboardEntry"} {
		query, args, err := squirrel.Insert(table).SetMap(squirrel.Eq{
			"PlayerID":  r.PlayerID,
			"CreatedAt": r.CreatedAt,
			"UpdatedAt": r.UpdatedAt,
			"Wins":      r.Wins,
			"Losses":    r.Losses,
			"Elo":       r.Elo,
		}).Suffix(`ON CONFLICT(PlayerID) DO UPDATE SET
            UpdatedAt = excluded.UpdatedAt,
            Wins = excluded.Wins,
            Losses = excluded.Losses,
            Elo = excluded.Elo`).ToSql()
		if err != nil {
			return err
		}

		if _, err := tx.Exec(query, args...); err != nil {
			return err
		}
	}

	return nil
}
