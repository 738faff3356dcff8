package protocol

import (
	"github.com/tilekeeper/server/internal/object"
	"github.com/tilekeeper/server/internal/rle"
	"github.com/tilekeeper/server/internal/worldmap"
)

// RoomSync is the room snapshot handed to a player the moment they enter,
// RLE-encoded the same way the original server's make_room_sync built it.
type RoomSync struct {
	RoomID     object.RoomID
	Width      uint32
	Height     uint32
	Layers     []LayerSync
	Collisions []rle.Run[bool]
	Portals    []worldmap.Portal
}

// LayerSync is one background layer's RLE-encoded tiles.
type LayerSync struct {
	Name  string
	Tiles []rle.Run[worldmap.TileIndex]
}

// NewRoomSync builds a RoomSync snapshot from a room's static map.
func NewRoomSync(m *worldmap.RoomMap) RoomSync {
	sync := RoomSync{
		RoomID:     m.RoomID,
		Width:      m.Width,
		Height:     m.Height,
		Collisions: rle.Encode(m.Collisions),
		Portals:    m.Portals,
	}
	for _, l := range m.Layers {
		sync.Layers = append(sync.Layers, LayerSync{
			Name:  l.Name,
			Tiles: rle.Encode(l.Tiles),
		})
	}
	return sync
}
