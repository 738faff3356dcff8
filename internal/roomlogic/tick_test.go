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
	"github.com/tilekeeper/server/internal/worldmap"
)

func TestOnTickAdvancesInterpolatedPosition(t *testing.T) {
	state := newTestState(openMap(10, 10), nil)
	p := addPlayer(state, 1, geom.Vec2{X: 1, Y: 1})
	p.Remote.HasDirection = true
	p.Remote.Direction = direction.Right
	p.Velocity = 1
	declaredAt := p.Remote.DeclaredAt

	var w roomstate.Writer
	OnTick(state, &w, 1, declaredAt.Add(time.Second), 1.0)

	require.Equal(t, geom.Vec2{X: 2, Y: 1}, p.Local.Position)
}

// TestOnTickKeepsAdvancingWithoutNewMoveCommand covers a player who declares
// a direction once and sends nothing further: position must keep projecting
// forward with wall-clock time on every later tick, not freeze after one.
func TestOnTickKeepsAdvancingWithoutNewMoveCommand(t *testing.T) {
	state := newTestState(openMap(10, 10), nil)
	p := addPlayer(state, 1, geom.Vec2{X: 1, Y: 1})
	p.Remote.HasDirection = true
	p.Remote.Direction = direction.Right
	p.Velocity = 1
	declaredAt := p.Remote.DeclaredAt

	var w roomstate.Writer
	OnTick(state, &w, 1, declaredAt.Add(time.Second), 1.0)
	require.Equal(t, geom.Vec2{X: 2, Y: 1}, p.Local.Position)

	OnTick(state, &w, 2, declaredAt.Add(2*time.Second), 1.0)
	require.Equal(t, geom.Vec2{X: 3, Y: 1}, p.Local.Position, "position keeps advancing with elapsed wall-clock time, not a fixed per-tick step from a stale anchor")
}

func TestOnTickCorrectsIntoBlockedTile(t *testing.T) {
	m := openMap(10, 10)
	m.Collisions[1*10+2] = true
	state := newTestState(m, nil)
	p := addPlayer(state, 1, geom.Vec2{X: 1, Y: 1})
	p.Remote.HasDirection = true
	p.Remote.Direction = direction.Right
	p.Velocity = 1

	var w roomstate.Writer
	OnTick(state, &w, 1, p.Remote.DeclaredAt.Add(time.Second), 1.0)

	require.Equal(t, geom.Vec2{X: 1, Y: 1}, p.Local.Position, "must not advance into a blocked tile")
}

func TestOnTickCrossingPortalQueuesUpstreamAndRemovesPlayer(t *testing.T) {
	m := openMap(10, 10)
	m.Portals = []worldmap.Portal{{
		Position:       geom.TileCoord{X: 2, Y: 1},
		TargetRoom:     object.RoomID(9),
		TargetPosition: geom.Vec2{X: 0.5, Y: 0.5},
	}}
	state := newTestState(m, nil)
	p := addPlayer(state, 1, geom.Vec2{X: 1, Y: 1})
	p.Remote.HasDirection = true
	p.Remote.Direction = direction.Right
	p.Velocity = 1

	var w roomstate.Writer
	OnTick(state, &w, 1, p.Remote.DeclaredAt.Add(time.Second), 1.0)

	require.NotContains(t, state.Players, object.ID(1), "player leaves the room's live set on portal crossing")
	upstream := w.DrainUpstream()
	require.Len(t, upstream, 1)
	transfer, ok := upstream[0].(roomstate.PlayerLeftRoom)
	require.True(t, ok)
	require.Equal(t, object.RoomID(9), transfer.TargetRoom)
}

func TestOnTickDoesNotEmitDisappearedOnPortalCrossing(t *testing.T) {
	m := openMap(10, 10)
	m.Portals = []worldmap.Portal{{
		Position:   geom.TileCoord{X: 2, Y: 1},
		TargetRoom: object.RoomID(9),
	}}
	state := newTestState(m, nil)
	addPlayer(state, 2, geom.Vec2{X: 5, Y: 5}) // bystander who must not see ObjectDisappeared
	p := addPlayer(state, 1, geom.Vec2{X: 1, Y: 1})
	p.Remote.HasDirection = true
	p.Remote.Direction = direction.Right
	p.Velocity = 1

	var w roomstate.Writer
	OnTick(state, &w, 1, p.Remote.DeclaredAt.Add(time.Second), 1.0)
	w.DrainUpstream()

	for _, b := range w.Drain() {
		for _, e := range b.Events {
			_, isDisappeared := e.(protocol.ObjectDisappearedEvent)
			require.False(t, isDisappeared, "portal departure is signaled by RoomEntered in the target room, not ObjectDisappeared")
		}
	}
}
