package back

import (
	"log"
	"time"

	"github.com/jmoiron/sqlx"
)

// VenueStats holds the live counters shown on the venue screens.
type VenueStats struct {
	ActivePlayers     int
	RegisteredPlayers int
	RatedPlayers      int
	GamesRecorded     int
}

func (b *Back) GetVenueStats(slug string) (stats VenueStats, _ error) {
	start := time.Now()
	defer func() { log.Printf("debug: computed venue stats in %s", time.Since(start)) }()

	if err := b.transaction(func(tx *sqlx.Tx) error {
		venue, err := getVenueBySlug(tx, slug)
		if err != nil {
			return err
		}

		stats.GamesRecorded = venue.GamesRecorded

		queries := []struct {
			Dst   interface{}
			Query string
			Args  []interface{}
		}{
			{&stats.ActivePlayers, `SELECT COUNT(*) FROM CheckIn WHERE VenueID = ?`, []interface{}{venue.ID}},
			{&stats.RegisteredPlayers, `SELECT COUNT(*) FROM Player`, nil},
			{&stats.RatedPlayers, `SELECT COUNT(*) FROM PlayerRating`, nil},
		}

		for _, v := range queries {
			if err := tx.Get(v.Dst, v.Query, v.Args...); err != nil {
				return err
			}
		}

		return nil
	}); err != nil {
		return VenueStats{}, err
	}

	return stats, nil
}
