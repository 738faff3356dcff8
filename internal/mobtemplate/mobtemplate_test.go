package mobtemplate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tilekeeper/server/internal/object"
)

const testTemplates = `
[[mob]]
id = "slime"
animation_id = 2
velocity = 1.5
movement_range = 3.0
attack_range = 0.8
max_health = 20
damage = 5
attack_telegraph_seconds = 0.5
attack_seconds = 0.2
attack_cooldown_seconds = 1.0
respawn_seconds = 10.0
`

func TestParseMobTemplates(t *testing.T) {
	templates, err := Parse([]byte(testTemplates), 10)
	require.NoError(t, err)
	require.Len(t, templates, 1)

	slime := templates["slime"]
	require.NotNil(t, slime)
	require.Equal(t, int32(20), slime.MaxHealth)
	require.Equal(t, object.Tick(5), slime.AttackTelegraphTicks)
	require.Equal(t, object.Tick(10), slime.AttackCooldownTicks)
	require.Equal(t, object.Tick(100), slime.RespawnTicks)
}

func TestSecondsToTicksFloorsAndZeroesNonPositive(t *testing.T) {
	require.Equal(t, object.Tick(0), secondsToTicks(0, 10))
	require.Equal(t, object.Tick(0), secondsToTicks(-1, 10))
	require.Equal(t, object.Tick(15), secondsToTicks(1.59, 10))
}
