// Package notify keeps a bounded feed of events worth an operator's attention
// (new players, wins, losses). Every event is also written to the log.
package notify

import (
	"sync"
	"time"

	"github.com/rs/zerolog/log"
)

// Kind classifies an admin event.
type Kind string

const (
	KindNewPlayer Kind = "new_player"
	KindWon       Kind = "won"
	KindLost      Kind = "lost"
)

// Event is one entry in the admin feed.
type Event struct {
	Seq      uint64    `json:"seq"`
	Time     time.Time `json:"time"`
	Kind     Kind      `json:"kind"`
	PlayerID string    `json:"playerId"`
	Text     string    `json:"text"`
}

// Notifier receives admin events.
type Notifier interface {
	Notify(kind Kind, playerID, text string)
}

// Feed is a ring buffer of the most recent events.
type Feed struct {
	mu     sync.Mutex
	events []Event
	size   int
	next   int
	seq    uint64
	now    func() time.Time
}

// DefaultSize is the number of events a Feed keeps when NewFeed gets size <= 0.
const DefaultSize = 200

func NewFeed(size int) *Feed {
	if size <= 0 {
		size = DefaultSize
	}
	return &Feed{events: make([]Event, 0, size), size: size, now: time.Now}
}

// Notify appends an event, evicting the oldest once the feed is full.
func (f *Feed) Notify(kind Kind, playerID, text string) {
	f.mu.Lock()
	f.seq++
	e := Event{Seq: f.seq, Time: f.now().UTC(), Kind: kind, PlayerID: playerID, Text: text}
	if len(f.events) < f.size {
		f.events = append(f.events, e)
	} else {
		f.events[f.next] = e
	}
	f.next = (f.next + 1) % f.size
	f.mu.Unlock()

	log.Info().Str("kind", string(kind)).Str("player", playerID).Msg(text)
}

// Since returns events with Seq greater than after, oldest first.
func (f *Feed) Since(after uint64) []Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Event, 0, len(f.events))
	start := 0
	if len(f.events) == f.size {
		start = f.next
	}
	for i := 0; i < len(f.events); i++ {
		e := f.events[(start+i)%len(f.events)]
		if e.Seq > after {
			out = append(out, e)
		}
	}
	return out
}
