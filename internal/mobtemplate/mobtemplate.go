// Package mobtemplate loads the stat blocks mobs are instantiated from,
// mirroring how the original server loaded MobTemplate from TOML.
package mobtemplate

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"

	"github.com/tilekeeper/server/internal/object"
)

// Template is the immutable stat block a Mob is spawned from.
type Template struct {
	ID                    string
	AnimationID           uint32
	Velocity              float32
	MovementRange         float32
	AttackRange           float32
	MaxHealth             int32
	Damage                int32
	AttackTelegraphTicks  object.Tick
	AttackTicks           object.Tick
	AttackCooldownTicks   object.Tick
	RespawnTicks          object.Tick
}

// document is the on-disk TOML shape; duration fields are authored in
// seconds and converted to ticks at load time against the caller's tick rate.
type document struct {
	Mob []struct {
		ID                    string  `toml:"id"`
		AnimationID           uint32  `toml:"animation_id"`
		Velocity              float32 `toml:"velocity"`
		MovementRange         float32 `toml:"movement_range"`
		AttackRange           float32 `toml:"attack_range"`
		MaxHealth             int32   `toml:"max_health"`
		Damage                int32   `toml:"damage"`
		AttackTelegraphSeconds float64 `toml:"attack_telegraph_seconds"`
		AttackSeconds         float64 `toml:"attack_seconds"`
		AttackCooldownSeconds float64 `toml:"attack_cooldown_seconds"`
		RespawnSeconds        float64 `toml:"respawn_seconds"`
	} `toml:"mob"`
}

// Load reads every mob template from a TOML file, converting second-based
// durations to ticks using tickRate (ticks per second).
func Load(path string, tickRate float64) (map[string]*Template, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("mobtemplate: read %s: %w", path, err)
	}
	return Parse(data, tickRate)
}

// Parse decodes mob templates from TOML bytes.
func Parse(data []byte, tickRate float64) (map[string]*Template, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("mobtemplate: decode: %w", err)
	}

	out := make(map[string]*Template, len(doc.Mob))
	for _, m := range doc.Mob {
		out[m.ID] = &Template{
			ID:                   m.ID,
			AnimationID:          m.AnimationID,
			Velocity:             m.Velocity,
			MovementRange:        m.MovementRange,
			AttackRange:          m.AttackRange,
			MaxHealth:            m.MaxHealth,
			Damage:               m.Damage,
			AttackTelegraphTicks: secondsToTicks(m.AttackTelegraphSeconds, tickRate),
			AttackTicks:          secondsToTicks(m.AttackSeconds, tickRate),
			AttackCooldownTicks:  secondsToTicks(m.AttackCooldownSeconds, tickRate),
			RespawnTicks:         secondsToTicks(m.RespawnSeconds, tickRate),
		}
	}
	return out, nil
}

func secondsToTicks(seconds, tickRate float64) object.Tick {
	if seconds <= 0 {
		return 0
	}
	return object.Tick(seconds * tickRate)
}
