package back

import (
	"crosspointx/internal/util"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// A Venue is a physical location players check into and referees run games
// at. Each venue has its own roster of active players and its own last game.
type Venue struct {
	ID        util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp
	Name      string
	Slug      string

	GamesRecorded int
}

func NewVenue(name, slug string) Venue {
	return Venue{
		ID:        util.NewUUIDAsBlob(),
		CreatedAt: util.TimeAsTimestamp(time.Now()),
		Name:      name,
		Slug:      slug,

		GamesRecorded: 0,
	}
}

func (v *Venue) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Venue").SetMap(squirrel.Eq{
		"ID":            v.ID,
		"CreatedAt":     v.CreatedAt,
		"Name":          v.Name,
		"Slug":          v.Slug,
		"GamesRecorded": v.GamesRecorded,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func (v *Venue) incrementGamesRecorded(tx *sqlx.Tx) error {
	v.GamesRecorded++
	_, err := tx.Exec(
		`UPDATE Venue SET GamesRecorded = GamesRecorded + 1 WHERE ID = ?`,
		v.ID,
	)
	return err
}

func getVenues(tx *sqlx.Tx) ([]Venue, error) {
	var ret []Venue
	if err := tx.Select(&ret, "SELECT * FROM Venue ORDER BY Venue.Name ASC"); err != nil {
		return nil, err
	}

	return ret, nil
}

func getVenueByID(tx *sqlx.Tx, id util.UUIDAsBlob) (Venue, error) {
	var ret Venue
	query := `SELECT * FROM Venue WHERE Venue.ID = ? LIMIT 1`
	if err := tx.Get(&ret, query, id); err != nil {
		return Venue{}, err
	}

	return ret, nil
}

func getVenueBySlug(tx *sqlx.Tx, slug string) (Venue, error) {
	if slug == "" {
		return Venue{}, util.ErrPublic("you need to give a venue slug")
	}

	var ret Venue
	query := `SELECT * FROM Venue WHERE Venue.Slug = ? LIMIT 1`
	if err := tx.Get(&ret, query, slug); err != nil {
		return Venue{}, err
	}

	return ret, nil
}

func (b *Back) GetVenues() (venues []Venue, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		venues, err = getVenues(tx)
		return err
	}); err != nil {
		return nil, err
	}

	return venues, nil
}

func (b *Back) GetVenueBySlug(slug string) (venue Venue, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		venue, err = getVenueBySlug(tx, slug)
		return err
	}); err != nil {
		return Venue{}, err
	}

	return venue, nil
}
