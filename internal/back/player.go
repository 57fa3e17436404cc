package back

import (
	"crosspointx/internal/util"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
	"gopkg.in/guregu/null.v4"
)

// A Player is a registered account that can check into a Venue and have its
// rated results tracked on the leaderboard.
type Player struct {
	ID        util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp
	Name      string
	Email     null.String

	// DisplayID is the short human-speakable identifier printed on the
	// player's QR code (eg. "A042").
	DisplayID string
}

func NewPlayer(name string) Player {
	return Player{
		ID:        util.NewUUIDAsBlob(),
		CreatedAt: util.TimeAsTimestamp(time.Now()),
		Name:      name,
	}
}

func (p *Player) insert(tx *sqlx.Tx) error {
	query, args, err := squirrel.Insert("Player").SetMap(squirrel.Eq{
		"ID":        p.ID,
		"CreatedAt": p.CreatedAt,
		"Name":      p.Name,
		"Email":     p.Email,
		"DisplayID": p.DisplayID,
	}).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func (p *Player) Update(tx *sqlx.Tx) error {
	query, args, err := squirrel.Update("Player").SetMap(squirrel.Eq{
		"Name":  p.Name,
		"Email": p.Email,
	}).Where("Player.ID = ?", p.ID).ToSql()
	if err != nil {
		return err
	}

	if _, err := tx.Exec(query, args...); err != nil {
		return err
	}

	return nil
}

func (b *Back) UpdatePlayer(p Player) error {
	return b.transaction(p.Update)
}

// RegisterPlayer creates the account and allocates its display ID as a single
// transaction: either the player exists with a display ID and a counter
// update, or nothing was written at all.
func (b *Back) RegisterPlayer(name, email string) (player Player, _ error) {
	if len(name) < 3 || len(name) > 32 {
		return Player{}, util.ErrPublic("your name must be between 3 and 32 characters")
	}

	if err := b.retryingTransaction(func(tx *sqlx.Tx) error {
		if _, err := getPlayerByName(tx, name); err == nil {
			return util.ErrPublic(fmt.Sprintf("the name `%s` is taken already, please pick another name", name))
		} else if !errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("unable to check name availability: %w", err)
		}

		displayID, err := allocateDisplayID(tx)
		if err != nil {
			return err
		}

		player = NewPlayer(name)
		player.Email = null.NewString(email, email != "")
		player.DisplayID = displayID
		if err := player.insert(tx); err != nil {
			return err
		}

		return nil
	}); err != nil {
		return Player{}, err
	}

	b.notify(Notification{Type: NotificationTypePlayerRegistered, PlayerIDs: []util.UUIDAsBlob{player.ID}})

	return player, nil
}

func getPlayerByName(tx *sqlx.Tx, name string) (Player, error) {
	var ret Player
	query := `SELECT * FROM Player WHERE Player.Name = ? LIMIT 1`
	if err := tx.Get(&ret, query, name); err != nil {
		return Player{}, err
	}

	return ret, nil
}

func getPlayerByID(tx *sqlx.Tx, id util.UUIDAsBlob) (Player, error) {
	var ret Player
	query := `SELECT * FROM Player WHERE Player.ID = ? LIMIT 1`
	if err := tx.Get(&ret, query, id); err != nil {
		return Player{}, err
	}

	return ret, nil
}

// getPlayerByDisplayID resolves the opaque identifier delivered by a QR scan.
func getPlayerByDisplayID(tx *sqlx.Tx, displayID string) (Player, error) {
	var ret Player
	query := `SELECT * FROM Player WHERE Player.DisplayID = ? LIMIT 1`
	if err := tx.Get(&ret, query, displayID); err != nil {
		return Player{}, err
	}

	return ret, nil
}

func (b *Back) GetPlayerByID(id util.UUIDAsBlob) (player Player, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		player, err = getPlayerByID(tx, id)
		return err
	}); err != nil {
		return Player{}, err
	}

	return player, nil
}

func (b *Back) GetPlayerByDisplayID(displayID string) (player Player, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) (err error) {
		player, err = getPlayerByDisplayID(tx, displayID)
		return err
	}); err != nil {
		return Player{}, err
	}

	return player, nil
}

func getPlayersByIDs(tx *sqlx.Tx, ids []util.UUIDAsBlob) (map[util.UUIDAsBlob]Player, error) {
	if len(ids) == 0 {
		return map[util.UUIDAsBlob]Player{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM Player WHERE ID IN(?)`, ids)
	if err != nil {
		return nil, err
	}
	query = tx.Rebind(query)

	players := make([]Player, 0, len(ids))
	if err := tx.Select(&players, query, args...); err != nil {
		return nil, err
	}

	ret := make(map[util.UUIDAsBlob]Player, len(players))
	for k := range players {
		ret[players[k].ID] = players[k]
	}

	return ret, nil
}
