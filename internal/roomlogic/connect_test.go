package roomlogic

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/tilekeeper/server/internal/direction"
	"github.com/tilekeeper/server/internal/geom"
	"github.com/tilekeeper/server/internal/object"
	"github.com/tilekeeper/server/internal/protocol"
	"github.com/tilekeeper/server/internal/roomstate"
)

func TestConnectTellsNewcomerExistingOccupants(t *testing.T) {
	state := newTestState(openMap(4, 4), nil)
	existing := addPlayer(state, 1, geom.Vec2{X: 1, Y: 1})
	existing.Remote.HasDirection = true
	existing.Remote.Direction = direction.Right
	existing.Velocity = 1
	now := time.Now()
	existing.Remote.DeclaredAt = now.Add(-time.Second)

	var w roomstate.Writer
	Connect(state, &w, 2, nil, geom.Vec2{X: 2, Y: 2}, now)

	require.Contains(t, state.Players, object.ID(2))

	batches := w.Drain()

	var toldOne, toldTwo []protocol.Event
	for _, b := range batches {
		switch b.Target.Kind {
		case roomstate.TargetPlayer:
			if b.Target.Player == 1 {
				toldOne = append(toldOne, b.Events...)
			}
			if b.Target.Player == 2 {
				toldTwo = append(toldTwo, b.Events...)
			}
		case roomstate.TargetAllExcept:
			if b.Target.Player == 2 {
				toldOne = append(toldOne, b.Events...)
			}
		}
	}

	require.NotEmpty(t, toldOne)
	_, ok := toldOne[0].(protocol.ObjectAppearedEvent)
	require.True(t, ok, "existing player should be told the newcomer appeared")

	require.NotEmpty(t, toldTwo)
	_, ok = toldTwo[0].(protocol.RoomEnteredEvent)
	require.True(t, ok, "newcomer's first message must be the room snapshot")

	foundExisting := false
	for _, e := range toldTwo {
		if ev, ok := e.(protocol.ObjectAppearedEvent); ok && ev.ObjectID == 1 {
			foundExisting = true
			require.Equal(t, geom.Vec2{X: 2, Y: 1}, ev.Position, "newcomer must see the existing player's interpolated position, not the stale last-tick position")
		}
	}
	require.True(t, foundExisting, "newcomer must be told about the existing player")
}

func TestDisconnectRemovesPlayerAndBroadcasts(t *testing.T) {
	state := newTestState(openMap(4, 4), nil)
	addPlayer(state, 1, geom.Vec2{X: 1, Y: 1})

	var w roomstate.Writer
	Disconnect(state, &w, 1)

	require.NotContains(t, state.Players, object.ID(1))
	batches := w.Drain()
	require.Len(t, batches, 1)
	require.Equal(t, roomstate.TargetAll, batches[0].Target.Kind)
	evt, ok := batches[0].Events[0].(protocol.ObjectDisappearedEvent)
	require.True(t, ok)
	require.Equal(t, object.ID(1), evt.ObjectID)
}

func TestDisconnectUnknownPlayerIsNoop(t *testing.T) {
	state := newTestState(openMap(4, 4), nil)
	var w roomstate.Writer
	Disconnect(state, &w, 99)
	require.Empty(t, w.Drain())
}
