package roomstate

import (
	"github.com/tilekeeper/server/internal/geom"
	"github.com/tilekeeper/server/internal/object"
	"github.com/tilekeeper/server/internal/protocol"
)

// TargetKind names who a buffered event is destined for.
type TargetKind uint8

const (
	// TargetPlayer addresses exactly one player.
	TargetPlayer TargetKind = iota
	// TargetAll addresses every player currently in the room.
	TargetAll
	// TargetAllExcept addresses every player currently in the room except one.
	TargetAllExcept
)

// WriterTarget names a destination for a buffered event. Player is only
// meaningful when Kind is TargetPlayer or TargetAllExcept.
type WriterTarget struct {
	Kind   TargetKind
	Player object.ID
}

// Batch is a maximal run of same-target events, ready to be resolved
// against the room's current player set and sent as one frame per
// recipient.
type Batch struct {
	Target WriterTarget
	Events []protocol.Event
}

// UpstreamMessage is something a room actor must forward to the root actor
// after this tick's writer flush completes (currently only a portal
// handoff).
type UpstreamMessage interface{ isUpstream() }

// PlayerLeftRoom asks the root actor to reassign Player to TargetRoom at
// TargetPosition, since it crossed a portal.
type PlayerLeftRoom struct {
	Player         object.ID
	TargetRoom     object.RoomID
	TargetPosition geom.Vec2
}

func (PlayerLeftRoom) isUpstream() {}

type bufferedEvent struct {
	target WriterTarget
	event  protocol.Event
}

// Writer accumulates outbound events and upstream messages for one message
// or tick's worth of handling, to be drained once at the end.
type Writer struct {
	events   []bufferedEvent
	upstream []UpstreamMessage
}

// Tell buffers an event addressed to a single player.
func (w *Writer) Tell(id object.ID, evt protocol.Event) {
	w.events = append(w.events, bufferedEvent{target: WriterTarget{Kind: TargetPlayer, Player: id}, event: evt})
}

// Broadcast buffers an event addressed to every player currently in the room.
func (w *Writer) Broadcast(evt protocol.Event) {
	w.events = append(w.events, bufferedEvent{target: WriterTarget{Kind: TargetAll}, event: evt})
}

// BroadcastExcept buffers an event addressed to every player except id.
func (w *Writer) BroadcastExcept(id object.ID, evt protocol.Event) {
	w.events = append(w.events, bufferedEvent{target: WriterTarget{Kind: TargetAllExcept, Player: id}, event: evt})
}

// Upstream queues a message for the room actor to forward to the root actor
// after this flush.
func (w *Writer) Upstream(msg UpstreamMessage) {
	w.upstream = append(w.upstream, msg)
}

// Drain returns the buffered events grouped into maximal same-target runs,
// in original left-to-right (causal) order, and clears the buffer.
//
// The grouping is found by scanning from the tail and peeling off the
// longest same-target suffix, same technique the original server used; but
// unlike sending each suffix the moment it's found (which would deliver a
// recipient's own two non-adjacent runs to the network in reverse order),
// the groups are collected and the final list is reversed once before
// returning. That keeps the maximal-run grouping (and its shared
// serialization for All/AllExcept batches) while still preserving, for any
// single recipient, the same order their events were staged in.
func (w *Writer) Drain() []Batch {
	events := w.events
	var reversed []Batch
	for len(events) > 0 {
		last := events[len(events)-1].target
		j := len(events)
		for j > 0 && events[j-1].target == last {
			j--
		}
		suffix := events[j:]
		evs := make([]protocol.Event, len(suffix))
		for i, be := range suffix {
			evs[i] = be.event
		}
		reversed = append(reversed, Batch{Target: last, Events: evs})
		events = events[:j]
	}
	for i, j := 0, len(reversed)-1; i < j; i, j = i+1, j-1 {
		reversed[i], reversed[j] = reversed[j], reversed[i]
	}
	w.events = nil
	return reversed
}

// DrainUpstream returns and clears the queued upstream messages.
func (w *Writer) DrainUpstream() []UpstreamMessage {
	msgs := w.upstream
	w.upstream = nil
	return msgs
}
