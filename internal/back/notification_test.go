package back // nolint:testpackage

import (
	"testing"
)

func TestSubscribeReceivesRegistration(t *testing.T) {
	b := testBack(t)

	ch, unsubscribe := b.Subscribe()
	defer unsubscribe()

	player := registerTestPlayer(t, b, "Watched")

	select {
	case n := <-ch:
		if n.Type != NotificationTypePlayerRegistered {
			t.Errorf("expected PlayerRegistered, got %s", NotificationTypeName(n.Type))
		}
		if len(n.PlayerIDs) != 1 || n.PlayerIDs[0] != player.ID {
			t.Errorf("unexpected player IDs: %v", n.PlayerIDs)
		}
	default:
		t.Fatal("expected a buffered notification")
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	b := testBack(t)

	ch, unsubscribe := b.Subscribe()
	unsubscribe()

	if _, ok := <-ch; ok {
		t.Fatal("expected closed channel")
	}

	// Releasing twice must not panic on the already-closed channel.
	unsubscribe()
}

func TestNotifyNeverBlocks(t *testing.T) {
	b := testBack(t)

	// Nobody drains this subscriber; once its buffer fills the extra
	// notifications are dropped instead of wedging the caller.
	_, unsubscribe := b.Subscribe()
	defer unsubscribe()

	for i := 0; i < 64; i++ {
		b.notify(Notification{Type: NotificationTypeLeaderboardUpdated})
	}
}
