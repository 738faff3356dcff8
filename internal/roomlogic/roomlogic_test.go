package roomlogic

import (
	"time"

	"github.com/tilekeeper/server/config"
	"github.com/tilekeeper/server/internal/direction"
	"github.com/tilekeeper/server/internal/geom"
	"github.com/tilekeeper/server/internal/mobtemplate"
	"github.com/tilekeeper/server/internal/object"
	"github.com/tilekeeper/server/internal/roomstate"
	"github.com/tilekeeper/server/internal/serverctx"
	"github.com/tilekeeper/server/internal/worldmap"
)

// openMap builds a w x h room with no blocked tiles and no portals, useful
// as a default test fixture.
func openMap(w, h uint32) *worldmap.RoomMap {
	return &worldmap.RoomMap{
		RoomID:     1,
		Width:      w,
		Height:     h,
		Collisions: make([]bool, w*h),
	}
}

func newTestState(m *worldmap.RoomMap, templates map[string]*mobtemplate.Template) *roomstate.RoomState {
	cfg := config.Default()
	ctx := serverctx.New(cfg, map[object.RoomID]*worldmap.RoomMap{m.RoomID: m}, templates, nil)
	return roomstate.New(ctx, m)
}

// mobtemplateStub is a generic stat block for tests that don't care about
// specific numbers, only that damage and range gating behave.
var mobtemplateStub = mobtemplate.Template{
	ID:                  "stub",
	AnimationID:         1,
	Velocity:            1,
	MovementRange:       3,
	AttackRange:         1,
	MaxHealth:           30,
	Damage:              10,
	AttackTelegraphTicks: 2,
	AttackTicks:          1,
	AttackCooldownTicks:  5,
	RespawnTicks:         20,
}

func addPlayer(state *roomstate.RoomState, id object.ID, pos geom.Vec2) *roomstate.Player {
	p := &roomstate.Player{
		ID:        id,
		Local:     roomstate.LocalMovement{Position: pos},
		Remote:    roomstate.RemoteMovement{Position: pos, LookDirection: direction.Down, DeclaredAt: time.Now()},
		Velocity:  state.Ctx.Config.PlayerVelocity,
		Health:    state.Ctx.Config.PlayerMaxHealth,
		MaxHealth: state.Ctx.Config.PlayerMaxHealth,
	}
	state.Players[id] = p
	return p
}
