package back

import (
	"context"
	"crosspointx/internal/config"
	"crosspointx/internal/util"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	sqlite3 "github.com/mattn/go-sqlite3"
)

type Back struct {
	db     *sqlx.DB
	config *config.Config

	notificationsMu sync.Mutex
	notifications   map[int]chan Notification
	nextListenerID  int
}

func New(sqlDriver string, sqlDSN string, conf *config.Config) (*Back, error) {
	// Why even bother converting names? A single greppable string across all
	// your source code is better than any odd conversion scheme you could ever
	// come up with.
	// HACK: This is global but putting this in init() makes test ugly.
	// As only the Back relies on the DB, this seems like an okay-ish place.
	sqlx.NameMapper = func(v string) string { return v }

	db, err := sqlx.Connect(sqlDriver, sqlDSN)
	if err != nil {
		return nil, err
	}

	return &Back{
		db:            db,
		config:        conf,
		notifications: map[int]chan Notification{},
	}, nil
}

func (b *Back) Run(wg *sync.WaitGroup, done <-chan struct{}) {
	wg.Add(1)
	defer wg.Done()
	log.Print("info: starting Back dæmon")

	for {
		if err := b.runPeriodicTasks(); err != nil {
			log.Printf("error: runPeriodicTasks: %s", err)
		}

		select {
		case <-time.After(1 * time.Minute):
		case <-done:
			return
		}
	}
}

func (b *Back) transaction(cb util.TransactionCallback) error {
	return util.Transaction(context.Background(), b.db, cb)
}

const maxTransactionAttempts = 3

// retryingTransaction runs cb like transaction but re-reads and recomputes on
// concurrent-write conflicts, up to maxTransactionAttempts times. Two rated
// results hitting the same player's read-modify-write must not lose an
// update.
func (b *Back) retryingTransaction(cb util.TransactionCallback) error {
	var err error
	for i := 0; i < maxTransactionAttempts; i++ {
		if err = b.transaction(cb); err == nil || !isConflict(err) {
			return err
		}

		log.Printf("warning: retrying conflicting transaction (attempt %d): %s", i+1, err)
	}

	return fmt.Errorf("transaction still conflicting after %d attempts: %w", maxTransactionAttempts, err)
}

func isConflict(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	return sqliteErr.Code == sqlite3.ErrBusy || sqliteErr.Code == sqlite3.ErrLocked
}

func (b *Back) LoadFixtures() error {
	venues := []Venue{
		NewVenue("Orlando Paintball", "orlando-paintball"),
		NewVenue("Indoor Arena", "indoor-arena"),
	}

	return b.transaction(func(tx *sqlx.Tx) error {
		for _, v := range venues {
			if err := v.insert(tx); err != nil {
				return err
			}
		}

		return nil
	})
}
