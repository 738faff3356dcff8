package worldmap

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tilekeeper/server/internal/geom"
	"github.com/tilekeeper/server/internal/object"
)

const testMap = `
room_id = 1
width = 4
height = 3
spawn = [1.5, 1.5]
blocked_rows = [
  "####",
  "#..#",
  "####",
]

[[layer]]
name = "ground"
tiles = [1,1,1,1, 1,2,2,1, 1,1,1,1]

[[portal]]
x = 2
y = 1
target_room = 2
target_position = [1.5, 1.5]

[[mob_spawn]]
x = 1
y = 1
template = "slime"
`

func TestParseRoomMap(t *testing.T) {
	m, err := Parse([]byte(testMap))
	require.NoError(t, err)

	require.Equal(t, uint32(4), m.Width)
	require.Equal(t, uint32(3), m.Height)
	require.Equal(t, geom.Vec2{X: 1.5, Y: 1.5}, m.SpawnPosition)
	require.Len(t, m.Layers, 1)
	require.Equal(t, "ground", m.Layers[0].Name)
	require.Len(t, m.Portals, 1)
	require.Len(t, m.MobSpawns, 1)
	require.Equal(t, "slime", m.MobSpawns[0].Template)
}

func TestCollisionAt(t *testing.T) {
	m, err := Parse([]byte(testMap))
	require.NoError(t, err)

	require.True(t, m.CollisionAt(geom.Vec2{X: 0.5, Y: 0.5}))  // top wall
	require.False(t, m.CollisionAt(geom.Vec2{X: 1.5, Y: 1.5})) // open floor
	require.True(t, m.CollisionAt(geom.Vec2{X: -1, Y: 1}))     // out of bounds
}

func TestPortalAt(t *testing.T) {
	m, err := Parse([]byte(testMap))
	require.NoError(t, err)

	p, ok := m.PortalAt(geom.TileCoord{X: 2, Y: 1})
	require.True(t, ok)
	require.Equal(t, object.RoomID(2), p.TargetRoom)

	_, ok = m.PortalAt(geom.TileCoord{X: 0, Y: 0})
	require.False(t, ok)
}

func TestParseRejectsMismatchedBlockedRows(t *testing.T) {
	bad := `
room_id = 1
width = 4
height = 2
blocked_rows = ["####"]
`
	_, err := Parse([]byte(bad))
	require.Error(t, err)
}
