package roomlogic

import (
	"github.com/tilekeeper/server/internal/direction"
	"github.com/tilekeeper/server/internal/geom"
	"github.com/tilekeeper/server/internal/object"
	"github.com/tilekeeper/server/internal/protocol"
	"github.com/tilekeeper/server/internal/roomstate"
)

// hitReaches is the symmetric gate both player and mob attacks resolve
// through: the target must be within range, and strictly inside the
// attacker's facing half-plane — an attacker facing right only hits targets
// strictly to their right, and so on for the other three cardinals. A target
// exactly aligned on the relevant axis is not hit.
func hitReaches(attackerPos geom.Vec2, facing direction.Direction4, targetPos geom.Vec2, attackRange float32) bool {
	if !geom.InDistance(attackerPos, targetPos, attackRange) {
		return false
	}
	d := targetPos.Sub(attackerPos)
	switch facing {
	case direction.Right:
		return d.X > 0
	case direction.Left:
		return d.X < 0
	case direction.Down:
		return d.Y > 0
	case direction.Up:
		return d.Y < 0
	default:
		return false
	}
}

// PlayerAttack resolves a player's melee swing against every mob it reaches.
func PlayerAttack(state *roomstate.RoomState, w *roomstate.Writer, p *roomstate.Player) {
	cfg := state.Ctx.Config
	for i := 0; i < len(state.Mobs); {
		m := state.Mobs[i]
		if hitReaches(p.Local.Position, p.Remote.LookDirection, m.Movement.Position, cfg.PlayerAttackRange) {
			if hurtMob(state, w, m, cfg.PlayerDamage) {
				continue // mob died and was swapped out of slot i; re-examine it
			}
		}
		i++
	}
}

// MobAttackArea resolves a mob's attack against every player it reaches.
func MobAttackArea(state *roomstate.RoomState, w *roomstate.Writer, m *roomstate.Mob) {
	for _, p := range state.Players {
		if hitReaches(m.Movement.Position, m.Movement.LookDirection, p.Local.Position, m.Template.AttackRange) {
			hurtPlayer(state, w, p, m.Template.Damage)
		}
	}
}

// hurtMob applies damage, reports the new health, and — if the mob died —
// removes it from the room and schedules its respawn. Returns true if the
// mob died (the caller's slice index now holds a different mob).
func hurtMob(state *roomstate.RoomState, w *roomstate.Writer, m *roomstate.Mob, damage int32) bool {
	m.Health -= damage
	if m.Health < 0 {
		m.Health = 0
	}
	w.Broadcast(protocol.ObjectHealthChangedEvent{ObjectID: m.ID, Health: m.Health, Change: -damage})

	if m.Health > 0 {
		return false
	}

	w.Broadcast(protocol.ObjectDisappearedEvent{ObjectID: m.ID})
	state.Respawns = append(state.Respawns, roomstate.MobRespawn{
		Spawn:     m.Spawn,
		RespawnAt: state.CurrentTick + m.Template.RespawnTicks,
	})
	removeMob(state, m.ID)
	return true
}

func removeMob(state *roomstate.RoomState, id object.ID) {
	for i, m := range state.Mobs {
		if m.ID == id {
			state.Mobs[i] = state.Mobs[len(state.Mobs)-1]
			state.Mobs = state.Mobs[:len(state.Mobs)-1]
			return
		}
	}
}

// hurtPlayer applies damage to a player and resets their healing clock.
func hurtPlayer(state *roomstate.RoomState, w *roomstate.Writer, p *roomstate.Player, damage int32) {
	p.Health -= damage
	if p.Health < 0 {
		p.Health = 0
	}
	p.LastDamagedAtTick = state.CurrentTick
	w.Broadcast(protocol.ObjectHealthChangedEvent{ObjectID: p.ID, Health: p.Health, Change: -damage})
}

// HealPlayers regenerates health for any player who hasn't been hit
// recently, at the configured rate.
func HealPlayers(state *roomstate.RoomState, w *roomstate.Writer) {
	cfg := state.Ctx.Config
	rate := cfg.HealRateTicks()
	after := cfg.HealAfterTicks()
	if rate == 0 {
		return
	}
	for _, p := range state.Players {
		if p.Health >= p.MaxHealth {
			continue
		}
		if uint32(state.CurrentTick-p.LastDamagedAtTick) < after {
			continue
		}
		if uint32(state.CurrentTick)%rate != 0 {
			continue
		}
		p.Health += cfg.HealAmount
		if p.Health > p.MaxHealth {
			p.Health = p.MaxHealth
		}
		w.Broadcast(protocol.ObjectHealthChangedEvent{ObjectID: p.ID, Health: p.Health, Change: cfg.HealAmount})
	}
}
