package roomlogic

import (
	"math/rand/v2"

	"github.com/tilekeeper/server/internal/direction"
	"github.com/tilekeeper/server/internal/geom"
	"github.com/tilekeeper/server/internal/object"
	"github.com/tilekeeper/server/internal/protocol"
	"github.com/tilekeeper/server/internal/roomstate"
	"github.com/tilekeeper/server/internal/worldmap"
)

// directionChoiceRate throttles how often an idle, untargeted mob
// re-rolls its wander direction, in ticks.
const directionChoiceRate = 20

// PopulateMobs instantiates every mob spawn point in the room's map from
// its named template. Unknown template names are skipped rather than
// failing the whole room.
func PopulateMobs(state *roomstate.RoomState) {
	for _, spawn := range state.Map.MobSpawns {
		tmpl, ok := state.Ctx.MobTemplate(spawn.Template)
		if !ok {
			continue
		}
		state.Mobs = append(state.Mobs, &roomstate.Mob{
			ID:       object.NextID(),
			Template: tmpl,
			Spawn:    spawn,
			Health:   tmpl.MaxHealth,
			Movement: roomstate.RemoteMovement{Position: spawnCenter(spawn)},
		})
	}
}

func spawnCenter(spawn worldmap.MobSpawn) geom.Vec2 {
	return geom.Vec2{X: float32(spawn.Position.X) + 0.5, Y: float32(spawn.Position.Y) + 0.5}
}

// RunMobAI advances every living mob one tick: target acquisition, attack
// resolution, wandering movement within its tether.
func RunMobAI(state *roomstate.RoomState, w *roomstate.Writer, elapsedSeconds float32) {
	for _, m := range state.Mobs {
		if m.Health <= 0 {
			continue
		}

		chooseAttackTarget(state, m)

		if m.HasAttackTarget {
			target, ok := state.Players[m.AttackTargetID]
			if !ok {
				m.HasAttackTarget = false
			} else {
				facing := direction.FromVector(target.Local.Position.Sub(m.Movement.Position))
				m.Movement.Direction = facing
				m.Movement.LookDirection = facing
				if canAttack(state, m) {
					m.LastAttackTick = state.CurrentTick
					w.Broadcast(protocol.ObjectAnimationActionEvent{ObjectID: m.ID, Action: protocol.ActionAttack})
					MobAttackArea(state, w, m)
				}
			}
		} else if uint32(state.CurrentTick)%directionChoiceRate == 0 {
			chooseDirection(state, m)
		}

		advanceMob(state, w, m, elapsedSeconds)
	}
}

func advanceMob(state *roomstate.RoomState, w *roomstate.Writer, m *roomstate.Mob, elapsedSeconds float32) {
	if !m.Movement.HasDirection {
		return
	}
	next := m.Movement.Position.Add(m.Movement.Direction.Vector().Scale(m.Template.Velocity * elapsedSeconds))
	if state.Map.CollisionAt(next) {
		return
	}
	center := geom.Vec2{X: float32(m.Spawn.Position.X) + 0.5, Y: float32(m.Spawn.Position.Y) + 0.5}
	if !geom.InDistance(center, next, m.Template.MovementRange) {
		return
	}

	crossedTile := next.Floor() != m.Movement.Position.Floor()
	m.Movement.Position = next
	if crossedTile {
		w.Broadcast(protocol.ObjectMovementChangedEvent{
			ObjectID:      m.ID,
			Position:      m.Movement.Position,
			HasDirection:  m.Movement.HasDirection,
			Direction:     m.Movement.Direction,
			LookDirection: m.Movement.LookDirection,
		})
	}
}

// chooseAttackTarget keeps a mob's current target while it stays within
// the mob's tether range, otherwise picks the nearest eligible player.
func chooseAttackTarget(state *roomstate.RoomState, m *roomstate.Mob) {
	if m.HasAttackTarget {
		if p, ok := state.Players[m.AttackTargetID]; ok && geom.InDistance(m.Movement.Position, p.Local.Position, m.Template.MovementRange) {
			return
		}
		m.HasAttackTarget = false
	}

	var best *roomstate.Player
	var bestDistSq float32
	for _, p := range state.Players {
		if !geom.InDistance(m.Movement.Position, p.Local.Position, m.Template.MovementRange) {
			continue
		}
		d := m.Movement.Position.DistanceSquared(p.Local.Position)
		if best == nil || d < bestDistSq {
			best, bestDistSq = p, d
		}
	}
	if best != nil {
		m.AttackTargetID = best.ID
		m.HasAttackTarget = true
	}
}

func canAttack(state *roomstate.RoomState, m *roomstate.Mob) bool {
	return uint32(state.CurrentTick-m.LastAttackTick) >= uint32(m.Template.AttackCooldownTicks)
}

// chooseDirection picks uniformly among the cardinals that keep the mob
// within its spawn tether and don't immediately collide. A mob with no
// legal direction stops and waits for the next roll.
func chooseDirection(state *roomstate.RoomState, m *roomstate.Mob) {
	center := geom.Vec2{X: float32(m.Spawn.Position.X) + 0.5, Y: float32(m.Spawn.Position.Y) + 0.5}

	var candidates []direction.Direction4
	for _, d := range direction.All {
		next := m.Movement.Position.Add(d.Vector())
		if state.Map.CollisionAt(next) {
			continue
		}
		if !geom.InDistance(center, next, m.Template.MovementRange) {
			continue
		}
		candidates = append(candidates, d)
	}

	if len(candidates) == 0 {
		m.Movement.HasDirection = false
		return
	}

	chosen := candidates[rand.IntN(len(candidates))]
	m.Movement.HasDirection = true
	m.Movement.Direction = chosen
	m.Movement.LookDirection = chosen
}

// ProcessRespawns instantiates any mob whose respawn timer has elapsed.
func ProcessRespawns(state *roomstate.RoomState, w *roomstate.Writer) {
	remaining := state.Respawns[:0]
	for _, r := range state.Respawns {
		if state.CurrentTick < r.RespawnAt {
			remaining = append(remaining, r)
			continue
		}
		tmpl, ok := state.Ctx.MobTemplate(r.Spawn.Template)
		if !ok {
			continue
		}
		mob := &roomstate.Mob{
			ID:       object.NextID(),
			Template: tmpl,
			Spawn:    r.Spawn,
			Health:   tmpl.MaxHealth,
			Movement: roomstate.RemoteMovement{Position: geom.Vec2{X: float32(r.Spawn.Position.X) + 0.5, Y: float32(r.Spawn.Position.Y) + 0.5}},
		}
		state.Mobs = append(state.Mobs, mob)
		w.Broadcast(protocol.ObjectAppearedEvent{
			ObjectID:    mob.ID,
			AnimationID: tmpl.AnimationID,
			Velocity:    tmpl.Velocity,
			Position:    mob.Movement.Position,
		})
	}
	state.Respawns = remaining
}
