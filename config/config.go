// Package config holds the server's fixed timing constants and the
// TOML-loaded configuration that varies per deployment.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml"
)

// Simulation timing. The tick rate is fixed by the protocol, not
// configurable per deployment — movement interpolation on both ends of the
// wire assumes it.
const (
	TickRate     = 10 // Hz
	TickInterval = 100 * time.Millisecond

	// RoomBroadcastCapacity bounds the tick source's per-room fan-out
	// channel; a room actor that falls behind skips ticks instead of
	// queuing them.
	RoomBroadcastCapacity = 8

	// SessionSendCapacity bounds a player session's outbound mailbox.
	SessionSendCapacity = 4096
)

// ServerConfig is the deployment-tunable configuration: player stats and
// listen address. Mirrors the original server's ServerConfig, loaded from
// TOML the same way.
type ServerConfig struct {
	Host              string  `toml:"host"`
	Port              int     `toml:"port"`
	StartRoom         uint64  `toml:"start_room"`
	PlayerVelocity    float32 `toml:"player_velocity"`
	PlayerAnimationID uint32  `toml:"player_animation_id"`
	PlayerMaxHealth   int32   `toml:"player_max_health"`
	PlayerDamage      int32   `toml:"player_damage"`
	PlayerAttackRange float32 `toml:"player_attack_range"`
	HealAmount        int32   `toml:"heal_amount"`
	HealAfterSeconds  float64 `toml:"heal_after_seconds"`
	HealRateSeconds   float64 `toml:"heal_rate_seconds"`
}

// Default returns a usable configuration when no file is supplied.
func Default() *ServerConfig {
	return &ServerConfig{
		Host:              "0.0.0.0",
		Port:              8080,
		StartRoom:         0,
		PlayerVelocity:    3.0,
		PlayerAnimationID: 1,
		PlayerMaxHealth:   100,
		PlayerDamage:      10,
		PlayerAttackRange: 1.5,
		HealAmount:        5,
		HealAfterSeconds:  8,
		HealRateSeconds:   2,
	}
}

// Load reads a ServerConfig from a TOML file, falling back to Default for
// any field the file omits.
func Load(path string) (*ServerConfig, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: decode %s: %w", path, err)
	}
	return cfg, nil
}

// HealAfterTicks converts HealAfterSeconds to ticks.
func (c *ServerConfig) HealAfterTicks() uint32 {
	return uint32(c.HealAfterSeconds * TickRate)
}

// HealRateTicks converts HealRateSeconds to ticks.
func (c *ServerConfig) HealRateTicks() uint32 {
	return uint32(c.HealRateSeconds * TickRate)
}
