package back

import (
	"crosspointx/internal/util"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// A Game is the last concluded game at a venue: the two rosters and which
// side won. One row per venue, overwritten on every recorded outcome; the
// durable trace of a game is the rating updates it produced, not this row.
type Game struct {
	VenueID   util.UUIDAsBlob
	UpdatedAt util.TimeAsTimestamp

	WinningTeam util.UUIDArrayAsJSON
	LosingTeam  util.UUIDArrayAsJSON
}

func NewGame(venueID util.UUIDAsBlob, winners, losers []util.UUIDAsBlob) Game {
	return Game{
		VenueID:     venueID,
		UpdatedAt:   util.TimeAsTimestamp(time.Now()),
		WinningTeam: asUUIDArray(winners),
		LosingTeam:  asUUIDArray(losers),
	}
}

func asUUIDArray(ids []util.UUIDAsBlob) util.UUIDArrayAsJSON {
	ret := make(util.UUIDArrayAsJSON, 0, len(ids))
	for _, id := range ids {
		ret = append(ret, uuid.UUID(id))
	}

	return ret
}

func (g *Game) upsert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Game").SetMap(squirrel.Eq{
		"VenueID":     g.VenueID,
		"UpdatedAt":   g.UpdatedAt,
		"WinningTeam": g.WinningTeam,
		"LosingTeam":  g.LosingTeam,
	}).Suffix(`ON CONFLICT(VenueID) DO UPDATE SET
        UpdatedAt = excluded.UpdatedAt,
        WinningTeam = excluded.WinningTeam,
        LosingTeam = excluded.LosingTeam`).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func getGameByVenueID(tx *sqlx.Tx, venueID util.UUIDAsBlob) (Game, error) {
	var ret Game
	query := `SELECT * FROM Game WHERE Game.VenueID = ? LIMIT 1`
	if err := tx.Get(&ret, query, venueID); err != nil {
		return Game{}, err
	}

	return ret, nil
}

// GetLastGame returns the last recorded game at a venue, if any.
func (b *Back) GetLastGame(venueID util.UUIDAsBlob) (game Game, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		game, err = getGameByVenueID(tx, venueID)
		return err
	}); err != nil {
		return Game{}, err
	}

	return game, nil
}
