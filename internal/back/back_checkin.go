package back

import (
	"crosspointx/internal/util"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// Teams are fixed at two sides of at most five players, the field size the
// venues run.
const (
	TeamNone = ""
	TeamA    = "A"
	TeamB    = "B"

	MaxPlayersPerTeam = 5
)

// StaleCheckInAge is how long a check-in survives without a game before the
// periodic loop sweeps it; players rarely check out on their way home.
const StaleCheckInAge = 12 * time.Hour

// A CheckIn marks a player as active at a venue, optionally assigned to a
// team for the next game.
type CheckIn struct {
	VenueID   util.UUIDAsBlob
	PlayerID  util.UUIDAsBlob
	CreatedAt util.TimeAsTimestamp
	Team      string
}

// Roster is every active player at a venue, split by assignment.
type Roster struct {
	Unassigned []Player
	TeamA      []Player
	TeamB      []Player
}

// CheckInPlayer marks the player carrying the scanned display ID as active at
// the venue. Checking in twice is a no-op, the player keeps their team.
func (b *Back) CheckInPlayer(venueID util.UUIDAsBlob, displayID string) (player Player, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) error {
		venue, err := getVenueByID(tx, venueID)
		if err != nil {
			return fmt.Errorf("unable to fetch venue: %w", err)
		}

		player, err = getPlayerByDisplayID(tx, displayID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return util.ErrPublic(fmt.Sprintf("no player has the ID %s", displayID))
			}
			return err
		}

		if _, err := getCheckIn(tx, venue.ID, player.ID); err == nil {
			return nil // already checked in
		} else if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		query, args, err := squirrel.Insert("CheckIn").SetMap(squirrel.Eq{
			"VenueID":   venue.ID,
			"PlayerID":  player.ID,
			"CreatedAt": util.TimeAsTimestamp(time.Now()),
			"Team":      TeamNone,
		}).ToSql()
		if err != nil {
			return err
		}

		_, err = tx.Exec(query, args...)
		return err
	}); err != nil {
		return Player{}, err
	}

	b.notify(Notification{
		Type:      NotificationTypePlayerCheckedIn,
		VenueID:   venueID,
		PlayerIDs: []util.UUIDAsBlob{player.ID},
	})

	return player, nil
}

// CheckOutPlayer removes the player from the venue's active roster.
func (b *Back) CheckOutPlayer(venueID util.UUIDAsBlob, displayID string) error {
	return b.transaction(func(tx *sqlx.Tx) error {
		player, err := getPlayerByDisplayID(tx, displayID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return util.ErrPublic(fmt.Sprintf("no player has the ID %s", displayID))
			}
			return err
		}

		res, err := tx.Exec(
			`DELETE FROM CheckIn WHERE VenueID = ? AND PlayerID = ?`,
			venueID, player.ID,
		)
		if err != nil {
			return err
		}

		if cnt, err := res.RowsAffected(); err == nil && cnt == 0 {
			return util.ErrPublic(fmt.Sprintf("%s is not checked in here", displayID))
		}

		return nil
	})
}

// AssignTeam puts an active player on team A or B, or back in the unassigned
// pool with TeamNone. Teams are capped at MaxPlayersPerTeam.
func (b *Back) AssignTeam(venueID util.UUIDAsBlob, displayID, team string) error {
	if team != TeamNone && team != TeamA && team != TeamB {
		return util.ErrPublic("team must be A, B, or empty to unassign")
	}

	return b.transaction(func(tx *sqlx.Tx) error {
		player, err := getPlayerByDisplayID(tx, displayID)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return util.ErrPublic(fmt.Sprintf("no player has the ID %s", displayID))
			}
			return err
		}

		if _, err := getCheckIn(tx, venueID, player.ID); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return util.ErrPublic(fmt.Sprintf("%s is not checked in here", displayID))
			}
			return err
		}

		if team != TeamNone {
			var cnt int
			if err := tx.Get(&cnt,
				`SELECT COUNT(*) FROM CheckIn WHERE VenueID = ? AND Team = ?`,
				venueID, team,
			); err != nil {
				return err
			}

			if cnt >= MaxPlayersPerTeam {
				return util.ErrPublic(fmt.Sprintf("team %s is full", team))
			}
		}

		_, err = tx.Exec(
			`UPDATE CheckIn SET Team = ? WHERE VenueID = ? AND PlayerID = ?`,
			team, venueID, player.ID,
		)
		return err
	})
}

func getCheckIn(tx *sqlx.Tx, venueID, playerID util.UUIDAsBlob) (CheckIn, error) {
	var ret CheckIn
	query := `SELECT * FROM CheckIn WHERE VenueID = ? AND PlayerID = ? LIMIT 1`
	if err := tx.Get(&ret, query, venueID, playerID); err != nil {
		return CheckIn{}, err
	}

	return ret, nil
}

// GetRoster returns the active players at a venue split into the unassigned
// pool and the two teams.
func (b *Back) GetRoster(venueID util.UUIDAsBlob) (roster Roster, _ error) {
	if err := b.transaction(func(tx *sqlx.Tx) error {
		var checkIns []CheckIn
		if err := tx.Select(&checkIns,
			`SELECT * FROM CheckIn WHERE VenueID = ? ORDER BY CreatedAt ASC`,
			venueID,
		); err != nil {
			return err
		}

		ids := make([]util.UUIDAsBlob, 0, len(checkIns))
		for k := range checkIns {
			ids = append(ids, checkIns[k].PlayerID)
		}

		players, err := getPlayersByIDs(tx, ids)
		if err != nil {
			return err
		}

		for k := range checkIns {
			player, ok := players[checkIns[k].PlayerID]
			if !ok {
				continue
			}

			switch checkIns[k].Team {
			case TeamA:
				roster.TeamA = append(roster.TeamA, player)
			case TeamB:
				roster.TeamB = append(roster.TeamB, player)
			default:
				roster.Unassigned = append(roster.Unassigned, player)
			}
		}

		return nil
	}); err != nil {
		return Roster{}, err
	}

	return roster, nil
}

// RecordRosterOutcome rates the venue's currently assigned teams with the
// given winning side, then clears the team assignments so the next game
// starts from a clean slate. Players stay checked in.
func (b *Back) RecordRosterOutcome(venueID util.UUIDAsBlob, winningTeam string) error {
	if winningTeam != TeamA && winningTeam != TeamB {
		return util.ErrPublic("winning team must be A or B")
	}

	var winners, losers []util.UUIDAsBlob
	if err := b.transaction(func(tx *sqlx.Tx) error {
		var checkIns []CheckIn
		if err := tx.Select(&checkIns,
			`SELECT * FROM CheckIn WHERE VenueID = ? AND Team != ''`,
			venueID,
		); err != nil {
			return err
		}

		for k := range checkIns {
			if checkIns[k].Team == winningTeam {
				winners = append(winners, checkIns[k].PlayerID)
			} else {
				losers = append(losers, checkIns[k].PlayerID)
			}
		}

		return nil
	}); err != nil {
		return err
	}

	if err := b.RecordGameOutcome(venueID, winners, losers); err != nil {
		return err
	}

	return b.transaction(func(tx *sqlx.Tx) error {
		_, err := tx.Exec(
			`UPDATE CheckIn SET Team = '' WHERE VenueID = ?`,
			venueID,
		)
		return err
	})
}

func (b *Back) pruneStaleCheckIns() error {
	return b.transaction(func(tx *sqlx.Tx) error {
		res, err := tx.Exec(
			`DELETE FROM CheckIn WHERE CreatedAt < ?`,
			time.Now().Add(-StaleCheckInAge).Unix(),
		)
		if err != nil {
			return err
		}

		if cnt, err := res.RowsAffected(); cnt > 0 && err == nil {
			log.Printf("info: pruned %d stale check-ins", cnt)
		}

		return nil
	})
}
