// Package serverctx assembles the immutable state every room actor shares:
// configuration, room maps, and mob templates. Built once at startup and
// never mutated afterward, so it needs no synchronization.
package serverctx

import (
	"github.com/tilekeeper/server/config"
	"github.com/tilekeeper/server/internal/animation"
	"github.com/tilekeeper/server/internal/mobtemplate"
	"github.com/tilekeeper/server/internal/object"
	"github.com/tilekeeper/server/internal/worldmap"
)

// Context is the shared, read-only state handed to every room actor.
type Context struct {
	Config          *config.ServerConfig
	RoomMaps        map[object.RoomID]*worldmap.RoomMap
	MobTemplates    map[string]*mobtemplate.Template
	PlayerAnimation *animation.Set
}

// New assembles a Context from its already-loaded parts.
func New(cfg *config.ServerConfig, maps map[object.RoomID]*worldmap.RoomMap, mobs map[string]*mobtemplate.Template, playerAnimation *animation.Set) *Context {
	return &Context{Config: cfg, RoomMaps: maps, MobTemplates: mobs, PlayerAnimation: playerAnimation}
}

// RoomMap looks up a room's static map, reporting whether it exists.
func (c *Context) RoomMap(id object.RoomID) (*worldmap.RoomMap, bool) {
	m, ok := c.RoomMaps[id]
	return m, ok
}

// MobTemplate looks up a mob template by name.
func (c *Context) MobTemplate(name string) (*mobtemplate.Template, bool) {
	t, ok := c.MobTemplates[name]
	return t, ok
}
