package back

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/jmoiron/sqlx"
)

// Display IDs are one letter and three digits ("A000"…"Z999"), assigned
// sequentially at registration so they stay short enough to be read out loud
// at the venue desk. The space holds 26×1000 identifiers and deleted accounts
// free none of them.
const firstDisplayID = "A000"

// ErrDisplayIDSpaceExhausted is returned when the allocator has issued "Z999"
// and the next allocation would wrap back to "A000", colliding with an ID
// that is still in use. We refuse to hand out duplicates; recovering from
// this requires a bigger ID scheme.
var ErrDisplayIDSpaceExhausted = errors.New("display ID space exhausted")

// nextDisplayID returns the successor of a display ID. "Z999" wraps to
// "A000", the caller is responsible for treating the wrap as an error.
func nextDisplayID(current string) (string, error) {
	if len(current) != 4 {
		return "", fmt.Errorf("malformed display ID: %q", current)
	}

	letter := current[0]
	if letter < 'A' || letter > 'Z' {
		return "", fmt.Errorf("malformed display ID: %q", current)
	}

	number, err := strconv.Atoi(current[1:])
	if err != nil || number < 0 {
		return "", fmt.Errorf("malformed display ID: %q", current)
	}

	number++
	if number == 1000 {
		number = 0
		if letter == 'Z' {
			letter = 'A'
		} else {
			letter++
		}
	}

	return fmt.Sprintf("%c%03d", letter, number), nil
}

// allocateDisplayID reads the shared counter, computes the successor, and
// persists it, all within the caller's transaction. Concurrent registrations
// are serialized by the database so two of them can never obtain the same ID;
// the UNIQUE constraint on Player.DisplayID is the backstop.
func allocateDisplayID(tx *sqlx.Tx) (string, error) {
	var last string
	err := tx.Get(&last, `SELECT LastDisplayID FROM IDCounter WHERE ID = 0 LIMIT 1`)
	if errors.Is(err, sql.ErrNoRows) {
		if _, err := tx.Exec(
			`INSERT INTO IDCounter (ID, LastDisplayID) VALUES (0, ?)`,
			firstDisplayID,
		); err != nil {
			return "", err
		}

		return firstDisplayID, nil
	}
	if err != nil {
		return "", err
	}

	next, err := nextDisplayID(last)
	if err != nil {
		return "", err
	}

	if next == firstDisplayID {
		log.Printf("error: display ID allocator wrapped after %s", last)
		return "", ErrDisplayIDSpaceExhausted
	}

	if _, err := tx.Exec(
		`UPDATE IDCounter SET LastDisplayID = ? WHERE ID = 0`,
		next,
	); err != nil {
		return "", err
	}

	return next, nil
}
