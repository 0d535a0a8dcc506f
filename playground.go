package main

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"gregoryjjb/ringlist/circularbuffer"
	"gregoryjjb/ringlist/pubsub"
	"gregoryjjb/ringlist/ring"
)

type RingOp string

const (
	OpPushFront   RingOp = "push_front"
	OpPopFront    RingOp = "pop_front"
	OpInsertAfter RingOp = "insert_after"
	OpEraseAfter  RingOp = "erase_after"
	OpClear       RingOp = "clear"
)

// subscriberBuffer is how many events a slow websocket client may lag behind
const subscriberBuffer = 16

type RingEvent struct {
	Op     RingOp    `json:"op"`
	Value  string    `json:"value,omitempty"`
	Offset int       `json:"offset,omitempty"`
	Size   int       `json:"size"`
	Time   time.Time `json:"time"`
}

// Playground owns a single ring of strings and serializes access to it.
// Every successful mutation is published to subscribers and kept in a
// bounded history.
type Playground struct {
	mu      sync.Mutex
	ring    *ring.Ring[string]
	pubsub  *pubsub.Pubsub[RingEvent]
	history *circularbuffer.CircularBuffer[RingEvent]
	now     func() time.Time
	log     zerolog.Logger
}

func NewPlayground(config *Config) *Playground {
	seed := config.Seed()
	plog := log.With().Str("component", "playground").Logger()
	plog.Info().Strs("seed", seed).Msg("Seeding ring")

	return &Playground{
		ring:    ring.New(seed...),
		pubsub:  pubsub.New[RingEvent](subscriberBuffer),
		history: circularbuffer.New[RingEvent](config.HistorySize()),
		now:     time.Now,
		log:     plog,
	}
}

func (pg *Playground) PushFront(v string) {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	pg.ring.PushFront(v)
	pg.record(RingEvent{Op: OpPushFront, Value: v})
}

// PopFront removes the front and returns the value it held.
func (pg *Playground) PopFront() (string, error) {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	front, err := pg.ring.Front()
	if err != nil {
		return "", err
	}
	if err := pg.ring.PopFront(); err != nil {
		return "", err
	}

	pg.record(RingEvent{Op: OpPopFront, Value: front})
	return front, nil
}

func (pg *Playground) Front() (string, error) {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	return pg.ring.Front()
}

// InsertAfter inserts v after the node reached by advancing offset steps
// from the front.
func (pg *Playground) InsertAfter(offset int, v string) error {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	pos, err := pg.iteratorAt(offset)
	if err != nil {
		return err
	}
	if _, err := pg.ring.InsertAfter(pos, v); err != nil {
		return err
	}

	pg.record(RingEvent{Op: OpInsertAfter, Value: v, Offset: offset})
	return nil
}

// EraseAfter removes the node following the one at offset and returns the
// value it held.
func (pg *Playground) EraseAfter(offset int) (string, error) {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	pos, err := pg.iteratorAt(offset)
	if err != nil {
		return "", err
	}

	var erased string
	victim := pos
	if victim.Next() == nil {
		erased, _ = victim.Value()
	}

	if _, err := pg.ring.EraseAfter(pos); err != nil {
		return "", err
	}

	pg.record(RingEvent{Op: OpEraseAfter, Value: erased, Offset: offset})
	return erased, nil
}

func (pg *Playground) Clear() {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	pg.ring.Clear()
	pg.record(RingEvent{Op: OpClear})
}

func (pg *Playground) Values() []string {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	return pg.ring.Values()
}

func (pg *Playground) Len() int {
	pg.mu.Lock()
	defer pg.mu.Unlock()

	return pg.ring.Len()
}

// Matches reports whether values, read as a cycle, equal the ring's
// contents under some rotation.
func (pg *Playground) Matches(values []string) bool {
	candidate := ring.New(values...)

	pg.mu.Lock()
	defer pg.mu.Unlock()

	return pg.ring.Equal(candidate)
}

// History returns the most recent events, oldest first.
func (pg *Playground) History() []RingEvent {
	return pg.history.Items()
}

func (pg *Playground) Subscribe() (func(), <-chan RingEvent) {
	handle, ch := pg.pubsub.Subscribe()
	return func() {
		pg.pubsub.Unsubscribe(handle)
	}, ch
}

func (pg *Playground) iteratorAt(offset int) (ring.Iterator[string], error) {
	if offset < 0 {
		return ring.Iterator[string]{}, fmt.Errorf("%w: offset must not be negative, got %d", ErrValidation, offset)
	}

	it := pg.ring.Begin()
	for i := 0; i < offset; i++ {
		if err := it.Next(); err != nil {
			return ring.Iterator[string]{}, fmt.Errorf("offset %d: %w", offset, err)
		}
	}
	return it, nil
}

// record must be called with pg.mu held.
func (pg *Playground) record(event RingEvent) {
	event.Size = pg.ring.Len()
	event.Time = pg.now()

	pg.log.Debug().
		Str("op", string(event.Op)).
		Str("value", event.Value).
		Int("size", event.Size).
		Stringer("ring", pg.ring).
		Msg("Ring mutated")

	pg.history.Push(event)
	pg.pubsub.Publish(event)
}
