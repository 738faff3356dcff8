package roomlogic

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tilekeeper/server/internal/direction"
	"github.com/tilekeeper/server/internal/geom"
	"github.com/tilekeeper/server/internal/mobtemplate"
	"github.com/tilekeeper/server/internal/object"
	"github.com/tilekeeper/server/internal/roomstate"
	"github.com/tilekeeper/server/internal/worldmap"
)

func TestPopulateMobsSkipsUnknownTemplates(t *testing.T) {
	m := openMap(4, 4)
	m.MobSpawns = []worldmap.MobSpawn{
		{Position: geom.TileCoord{X: 1, Y: 1}, Template: "slime"},
		{Position: geom.TileCoord{X: 2, Y: 2}, Template: "nonexistent"},
	}
	templates := map[string]*mobtemplate.Template{"slime": &mobtemplateStub}
	state := newTestState(m, templates)

	PopulateMobs(state)

	require.Len(t, state.Mobs, 1)
	require.Equal(t, geom.Vec2{X: 1.5, Y: 1.5}, state.Mobs[0].Movement.Position)
}

func TestChooseAttackTargetPrefersNearestInRange(t *testing.T) {
	state := newTestState(openMap(10, 10), nil)
	tmpl := mobtemplateStub
	tmpl.MovementRange = 5
	m := &roomstate.Mob{ID: object.NextID(), Template: &tmpl, Movement: roomstate.RemoteMovement{Position: geom.Vec2{X: 0, Y: 0}}}

	addPlayer(state, 1, geom.Vec2{X: 4, Y: 0})
	addPlayer(state, 2, geom.Vec2{X: 1, Y: 0})

	chooseAttackTarget(state, m)

	require.True(t, m.HasAttackTarget)
	require.Equal(t, object.ID(2), m.AttackTargetID)
}

func TestChooseAttackTargetDropsTargetOutOfTether(t *testing.T) {
	state := newTestState(openMap(10, 10), nil)
	tmpl := mobtemplateStub
	tmpl.MovementRange = 2
	m := &roomstate.Mob{ID: object.NextID(), Template: &tmpl, Movement: roomstate.RemoteMovement{Position: geom.Vec2{X: 0, Y: 0}}, HasAttackTarget: true, AttackTargetID: 1}

	addPlayer(state, 1, geom.Vec2{X: 9, Y: 9})

	chooseAttackTarget(state, m)

	require.False(t, m.HasAttackTarget)
}

func TestCanAttackRespectsCooldown(t *testing.T) {
	state := newTestState(openMap(4, 4), nil)
	tmpl := mobtemplateStub
	tmpl.AttackCooldownTicks = 10
	m := &roomstate.Mob{Template: &tmpl, LastAttackTick: 5}
	state.CurrentTick = 10

	require.False(t, canAttack(state, m), "cooldown hasn't elapsed")

	state.CurrentTick = 15
	require.True(t, canAttack(state, m))
}

func TestRunMobAIAttacksImmediatelyOnceCooldownClears(t *testing.T) {
	state := newTestState(openMap(10, 10), nil)
	tmpl := mobtemplateStub
	tmpl.MovementRange = 5
	tmpl.AttackRange = 5
	tmpl.AttackCooldownTicks = 10
	m := &roomstate.Mob{
		ID:       object.NextID(),
		Template: &tmpl,
		Health:   tmpl.MaxHealth,
		Movement: roomstate.RemoteMovement{Position: geom.Vec2{X: 0, Y: 0}, LookDirection: direction.Right},
		Spawn:    worldmap.MobSpawn{Position: geom.TileCoord{X: 0, Y: 0}},
	}
	state.Mobs = append(state.Mobs, m)
	p := addPlayer(state, 1, geom.Vec2{X: 1, Y: 0})
	state.CurrentTick = 20

	var w roomstate.Writer
	RunMobAI(state, &w, 1.0)

	require.Equal(t, object.Tick(20), m.LastAttackTick, "attack resolves the same tick the cooldown clears, no telegraph delay")
	require.Less(t, p.Health, p.MaxHealth)
}

func TestProcessRespawnsInstantiatesWhenDue(t *testing.T) {
	tmpl := mobtemplateStub
	templates := map[string]*mobtemplate.Template{"stub": &tmpl}
	state := newTestState(openMap(4, 4), templates)
	state.CurrentTick = 100
	state.Respawns = []roomstate.MobRespawn{
		{Spawn: worldmap.MobSpawn{Position: geom.TileCoord{X: 2, Y: 2}, Template: "stub"}, RespawnAt: 100},
		{Spawn: worldmap.MobSpawn{Position: geom.TileCoord{X: 3, Y: 3}, Template: "stub"}, RespawnAt: 200},
	}

	var w roomstate.Writer
	ProcessRespawns(state, &w)

	require.Len(t, state.Mobs, 1)
	require.Len(t, state.Respawns, 1, "not-yet-due respawn stays queued")
	require.Equal(t, object.Tick(200), state.Respawns[0].RespawnAt)
	require.NotEmpty(t, w.Drain())
}
