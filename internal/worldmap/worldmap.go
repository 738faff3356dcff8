// Package worldmap holds a room's static tile data: background layers, the
// collision bitmap, portals, and mob spawn points.
//
// Map import from a third-party level editor format is out of scope for this
// server (see the component design notes); maps are instead described with a
// small TOML document loaded the same way the rest of the server's
// configuration is, via github.com/pelletier/go-toml.
package worldmap

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"

	"github.com/tilekeeper/server/internal/geom"
	"github.com/tilekeeper/server/internal/object"
)

// TileIndex identifies a tile within a tileset for a background layer.
type TileIndex uint16

// Layer is one background tile layer, row-major, Width*Height entries.
type Layer struct {
	Name  string
	Tiles []TileIndex
}

// Portal teleports a player crossing its tile into another room.
type Portal struct {
	Position       geom.TileCoord
	TargetRoom     object.RoomID
	TargetPosition geom.Vec2
}

// MobSpawn describes where a mob template should be instantiated.
type MobSpawn struct {
	Position geom.TileCoord
	Template string
}

// RoomMap is a room's static, shared-across-connections tile data.
type RoomMap struct {
	RoomID        object.RoomID
	Width         uint32
	Height        uint32
	Layers        []Layer
	Collisions    []bool // row-major, Width*Height, true = blocked
	Portals       []Portal
	MobSpawns     []MobSpawn
	SpawnPosition geom.Vec2 // where a newly-connected player first appears
}

// InBounds reports whether t lies within the map.
func (m *RoomMap) InBounds(t geom.TileCoord) bool {
	return t.X >= 0 && t.Y >= 0 && uint32(t.X) < m.Width && uint32(t.Y) < m.Height
}

// CollisionAt reports whether the tile under pos is blocked. Positions
// outside the map are treated as blocked.
func (m *RoomMap) CollisionAt(pos geom.Vec2) bool {
	t := pos.Floor()
	if !m.InBounds(t) {
		return true
	}
	return m.Collisions[uint32(t.Y)*m.Width+uint32(t.X)]
}

// PortalAt returns the portal occupying t, if any.
func (m *RoomMap) PortalAt(t geom.TileCoord) (Portal, bool) {
	for _, p := range m.Portals {
		if p.Position == t {
			return p, true
		}
	}
	return Portal{}, false
}

// document is the on-disk TOML shape for a room map.
type document struct {
	RoomID  uint64   `toml:"room_id"`
	Width   uint32   `toml:"width"`
	Height  uint32   `toml:"height"`
	Blocked []string   `toml:"blocked_rows"` // one string per row, '#' blocked, '.' open
	Spawn   [2]float32 `toml:"spawn"`
	Layers  []struct {
		Name  string `toml:"name"`
		Tiles []int  `toml:"tiles"`
	} `toml:"layer"`
	Portals []struct {
		X              int32   `toml:"x"`
		Y              int32   `toml:"y"`
		TargetRoom     uint64  `toml:"target_room"`
		TargetPosition [2]float32 `toml:"target_position"`
	} `toml:"portal"`
	MobSpawns []struct {
		X        int32  `toml:"x"`
		Y        int32  `toml:"y"`
		Template string `toml:"template"`
	} `toml:"mob_spawn"`
}

// Load reads a room map description from a TOML file.
func Load(path string) (*RoomMap, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("worldmap: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a room map description from TOML bytes.
func Parse(data []byte) (*RoomMap, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("worldmap: decode: %w", err)
	}

	m := &RoomMap{
		RoomID:        object.RoomID(doc.RoomID),
		Width:         doc.Width,
		Height:        doc.Height,
		SpawnPosition: geom.Vec2{X: doc.Spawn[0], Y: doc.Spawn[1]},
	}

	m.Collisions = make([]bool, doc.Width*doc.Height)
	if len(doc.Blocked) != int(doc.Height) {
		return nil, fmt.Errorf("worldmap: expected %d blocked_rows, got %d", doc.Height, len(doc.Blocked))
	}
	for y, row := range doc.Blocked {
		if uint32(len(row)) != doc.Width {
			return nil, fmt.Errorf("worldmap: blocked_rows[%d] has width %d, want %d", y, len(row), doc.Width)
		}
		for x, c := range row {
			m.Collisions[uint32(y)*doc.Width+uint32(x)] = c == '#'
		}
	}

	for _, l := range doc.Layers {
		tiles := make([]TileIndex, len(l.Tiles))
		for i, t := range l.Tiles {
			tiles[i] = TileIndex(t)
		}
		m.Layers = append(m.Layers, Layer{Name: l.Name, Tiles: tiles})
	}

	for _, p := range doc.Portals {
		m.Portals = append(m.Portals, Portal{
			Position:       geom.TileCoord{X: p.X, Y: p.Y},
			TargetRoom:     object.RoomID(p.TargetRoom),
			TargetPosition: geom.Vec2{X: p.TargetPosition[0], Y: p.TargetPosition[1]},
		})
	}

	for _, s := range doc.MobSpawns {
		m.MobSpawns = append(m.MobSpawns, MobSpawn{
			Position: geom.TileCoord{X: s.X, Y: s.Y},
			Template: s.Template,
		})
	}

	return m, nil
}
