package back // nolint:testpackage

import (
	"crosspointx/internal/util"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
)

func seedRating(t *testing.T, b *Back, playerID util.UUIDAsBlob, wins, losses, elo int) {
	t.Helper()

	rating := NewPlayerRating(playerID)
	rating.Wins, rating.Losses, rating.Elo = wins, losses, elo

	if err := b.transaction(func(tx *sqlx.Tx) error {
		return rating.upsert(tx)
	}); err != nil {
		t.Fatalf("unable to seed rating: %s", err)
	}
}

// assertRating checks both stored copies of a record against the expected
// numbers, they may never disagree.
func assertRating(t *testing.T, b *Back, playerID util.UUIDAsBlob, wins, losses, elo int) {
	t.Helper()

	for _, table := range []string{"PlayerRating", "LeaderboardEntry"} {
		var actual PlayerRating
		if err := b.db.Get(
			&actual,
			`SELECT PlayerID, CreatedAt, UpdatedAt, Wins, Losses, Elo FROM `+table+` WHERE PlayerID = ?`,
			playerID,
		); err != nil {
			t.Fatalf("unable to fetch %s row: %s", table, err)
		}

		if actual.Wins != wins || actual.Losses != losses || actual.Elo != elo {
			t.Errorf(
				"%s: expected %d-%d @%d got %d-%d @%d",
				table, wins, losses, elo, actual.Wins, actual.Losses, actual.Elo,
			)
		}
	}
}

func TestRecordResultFreshPlayers(t *testing.T) {
	b := testBack(t)
	winner := registerTestPlayer(t, b, "Sarah")
	loser := registerTestPlayer(t, b, "Miguel")

	if err := b.RecordResult(winner.ID, loser.ID); err != nil {
		t.Fatal(err)
	}

	assertRating(t, b, winner.ID, 1, 0, 1016)
	assertRating(t, b, loser.ID, 0, 1, 984)
}

func TestRecordResultUpset(t *testing.T) {
	b := testBack(t)
	// An unrated newcomer beats an established favorite. The newcomer's
	// record springs into existence with the result applied.
	winner := registerTestPlayer(t, b, "Newcomer")
	loser := registerTestPlayer(t, b, "Veteran")
	seedRating(t, b, loser.ID, 5, 3, 1200)

	if err := b.RecordResult(winner.ID, loser.ID); err != nil {
		t.Fatal(err)
	}

	assertRating(t, b, winner.ID, 1, 0, 1024)
	assertRating(t, b, loser.ID, 5, 4, 1176)
}

func TestRecordResultRejectsSelfPlay(t *testing.T) {
	b := testBack(t)
	player := registerTestPlayer(t, b, "Loner")

	var errPublic util.ErrPublic
	if err := b.RecordResult(player.ID, player.ID); !errors.As(err, &errPublic) {
		t.Fatalf("expected ErrPublic, got %v", err)
	}
}

func TestRecordResultRejectsUnknownPlayer(t *testing.T) {
	b := testBack(t)
	player := registerTestPlayer(t, b, "Known")

	if err := b.RecordResult(player.ID, util.NewUUIDAsBlob()); err == nil {
		t.Fatal("expected unknown loser to be rejected")
	}

	// The known player must not have picked up a phantom win.
	rating, err := b.GetPlayerRating(player.ID)
	if err != nil {
		t.Fatal(err)
	}
	if rating.Wins != 0 || rating.Elo != EloBase {
		t.Errorf("rating changed: %d wins @%d", rating.Wins, rating.Elo)
	}
}

func TestGameResultPairs(t *testing.T) {
	w := []util.UUIDAsBlob{util.NewUUIDAsBlob(), util.NewUUIDAsBlob(), util.NewUUIDAsBlob()}
	l := []util.UUIDAsBlob{util.NewUUIDAsBlob(), util.NewUUIDAsBlob()}

	expected := [][2]util.UUIDAsBlob{
		{w[0], l[0]},
		{w[1], l[0]},
		{w[2], l[0]},
		{w[0], l[1]},
	}

	actual := gameResultPairs(w, l)
	if len(actual) != len(expected) {
		t.Fatalf("expected %d pairs got %d", len(expected), len(actual))
	}

	for k := range expected {
		if actual[k] != expected[k] {
			t.Errorf("pair #%d: expected %v got %v", k, expected[k], actual[k])
		}
	}
}

func TestRecordGameOutcome(t *testing.T) {
	b := testBack(t)
	venue := createTestVenue(t, b, "Test Arena", "test-arena")

	winners := []util.UUIDAsBlob{
		registerTestPlayer(t, b, "Winner1").ID,
		registerTestPlayer(t, b, "Winner2").ID,
	}
	losers := []util.UUIDAsBlob{
		registerTestPlayer(t, b, "Loser1").ID,
		registerTestPlayer(t, b, "Loser2").ID,
	}

	if err := b.RecordGameOutcome(venue.ID, winners, losers); err != nil {
		t.Fatal(err)
	}

	// Three pairings: Winner1>Loser1, Winner2>Loser1, Winner1>Loser2.
	// Winner1 wins twice, Loser1 loses twice.
	for k, expected := range map[int]int{0: 2, 1: 1} {
		rating, err := b.GetPlayerRating(winners[k])
		if err != nil {
			t.Fatal(err)
		}
		if rating.Wins != expected {
			t.Errorf("winner #%d: expected %d wins got %d", k, expected, rating.Wins)
		}
	}
	for k, expected := range map[int]int{0: 2, 1: 1} {
		rating, err := b.GetPlayerRating(losers[k])
		if err != nil {
			t.Fatal(err)
		}
		if rating.Losses != expected {
			t.Errorf("loser #%d: expected %d losses got %d", k, expected, rating.Losses)
		}
	}

	game, err := b.GetLastGame(venue.ID)
	if err != nil {
		t.Fatal(err)
	}
	if len(game.WinningTeam) != 2 || len(game.LosingTeam) != 2 {
		t.Errorf("unexpected stored rosters: %d/%d", len(game.WinningTeam), len(game.LosingTeam))
	}

	updated, err := b.GetVenueBySlug("test-arena")
	if err != nil {
		t.Fatal(err)
	}
	if updated.GamesRecorded != 1 {
		t.Errorf("expected 1 recorded game got %d", updated.GamesRecorded)
	}
}

func TestRecordGameOutcomeRejectsOverlap(t *testing.T) {
	b := testBack(t)
	venue := createTestVenue(t, b, "Test Arena", "test-arena")

	both := registerTestPlayer(t, b, "Both").ID
	other := registerTestPlayer(t, b, "Other").ID

	var errPublic util.ErrPublic
	err := b.RecordGameOutcome(venue.ID, []util.UUIDAsBlob{both}, []util.UUIDAsBlob{both, other})
	if !errors.As(err, &errPublic) {
		t.Fatalf("expected ErrPublic, got %v", err)
	}
}

func TestGetLeaderboardOrdering(t *testing.T) {
	b := testBack(t)

	alice := registerTestPlayer(t, b, "Alice")
	bruno := registerTestPlayer(t, b, "Bruno")
	chloe := registerTestPlayer(t, b, "Chloe")

	seedRating(t, b, alice.ID, 3, 1, 1050)
	seedRating(t, b, bruno.ID, 3, 0, 1100)
	seedRating(t, b, chloe.ID, 5, 2, 990)

	entries, err := b.GetLeaderboard(10)
	if err != nil {
		t.Fatal(err)
	}

	expected := []string{"Chloe", "Bruno", "Alice"}
	if len(entries) != len(expected) {
		t.Fatalf("expected %d entries got %d", len(expected), len(entries))
	}

	for k := range expected {
		if entries[k].PlayerName != expected[k] {
			t.Errorf("rank #%d: expected %s got %s", k, expected[k], entries[k].PlayerName)
		}
	}

	if entries[0].PlayerDisplayID != chloe.DisplayID {
		t.Errorf("expected display ID %s got %s", chloe.DisplayID, entries[0].PlayerDisplayID)
	}
}

func TestReconcileLeaderboard(t *testing.T) {
	b := testBack(t)
	player := registerTestPlayer(t, b, "Drifter")
	seedRating(t, b, player.ID, 2, 2, 1010)

	// Corrupt the read model behind the writer's back.
	if _, err := b.db.Exec(
		`UPDATE LeaderboardEntry SET Wins = 99, Elo = 9000 WHERE PlayerID = ?`,
		player.ID,
	); err != nil {
		t.Fatal(err)
	}

	if err := b.reconcileLeaderboard(); err != nil {
		t.Fatal(err)
	}

	assertRating(t, b, player.ID, 2, 2, 1010)
}

func TestReconcileLeaderboardRestoresMissingRow(t *testing.T) {
	b := testBack(t)
	player := registerTestPlayer(t, b, "Ghost")
	seedRating(t, b, player.ID, 1, 0, 1016)

	if _, err := b.db.Exec(
		`DELETE FROM LeaderboardEntry WHERE PlayerID = ?`,
		player.ID,
	); err != nil {
		t.Fatal(err)
	}

	if err := b.reconcileLeaderboard(); err != nil {
		t.Fatal(err)
	}

	assertRating(t, b, player.ID, 1, 0, 1016)
}
