package session

import (
	"github.com/asynkron/protoactor-go/actor"
)

// Outbound is the message a room or root actor sends to hand a session an
// already-encoded event batch to write to its socket.
type Outbound struct {
	Data []byte
}

// Actor is the actor-addressable half of a Session: other actors reach a
// player's connection by sending Outbound to this PID, never by touching
// the socket directly.
type Actor struct {
	session *Session
}

// Receive implements actor.Actor.
func (a *Actor) Receive(ctx actor.Context) {
	switch msg := ctx.Message().(type) {
	case *actor.Started:
	case *actor.Stopping:
		a.session.close(ctx.ActorSystem())
	case *Outbound:
		select {
		case a.session.send <- msg.Data:
		default:
			// Capacity exceeded: this connection can't keep up. Per the
			// backpressure policy, a slow client is disconnected rather
			// than allowed to build an unbounded backlog.
			a.session.log.Warn("send buffer full, disconnecting slow client")
			a.session.close(ctx.ActorSystem())
		}
	}
}
