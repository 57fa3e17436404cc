package back

import (
	"crosspointx/internal/util"
)

type NotificationType int

const (
	NotificationTypeLeaderboardUpdated NotificationType = iota
	NotificationTypePlayerRegistered
	NotificationTypePlayerCheckedIn
)

// A Notification tells subscribers that state they may be displaying has
// changed. It carries identifiers only; subscribers re-read whatever they
// care about.
type Notification struct {
	Type      NotificationType
	VenueID   util.UUIDAsBlob
	PlayerIDs []util.UUIDAsBlob
}

func NotificationTypeName(typ NotificationType) string {
	switch typ {
	case NotificationTypeLeaderboardUpdated:
		return "LeaderboardUpdated"
	case NotificationTypePlayerRegistered:
		return "PlayerRegistered"
	case NotificationTypePlayerCheckedIn:
		return "PlayerCheckedIn"
	default:
		return "invalid"
	}
}

// Subscribe returns a channel of notifications and a function releasing the
// subscription. The channel is buffered and sends never block: a subscriber
// that stops draining misses notifications rather than wedging the Back.
func (b *Back) Subscribe() (<-chan Notification, func()) {
	b.notificationsMu.Lock()
	defer b.notificationsMu.Unlock()

	id := b.nextListenerID
	b.nextListenerID++

	ch := make(chan Notification, 16)
	b.notifications[id] = ch

	return ch, func() {
		b.notificationsMu.Lock()
		defer b.notificationsMu.Unlock()

		if ch, ok := b.notifications[id]; ok {
			delete(b.notifications, id)
			close(ch)
		}
	}
}

func (b *Back) notify(n Notification) {
	b.notificationsMu.Lock()
	defer b.notificationsMu.Unlock()

	for _, ch := range b.notifications {
		select {
		case ch <- n:
		default: // slow subscriber, drop
		}
	}
}
