package animation

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tilekeeper/server/internal/direction"
)

const testSet = `
id = 7

[[animation]]
name = "walk"
frame_duration = 0.1
[animation.frames]
right = [0, 1, 2, 3]
down = [4, 5, 6, 7]
left = [8, 9, 10, 11]
up = [12, 13, 14, 15]
`

func TestParseAnimationSet(t *testing.T) {
	set, err := Parse([]byte(testSet))
	require.NoError(t, err)
	require.Equal(t, uint32(7), set.ID)

	walk := set.Animations["walk"]
	require.NotNil(t, walk)
	require.Equal(t, uint32(4), walk.FrameCount)
	require.Equal(t, []Frame{0, 1, 2, 3}, walk.Frames[direction.Right])
}

func TestDirectionalAnimationGetLoops(t *testing.T) {
	da := &DirectionalAnimation{
		FrameDuration: 0.1,
		Frames:        map[direction.Direction4][]Frame{direction.Right: {0, 1, 2}},
	}
	require.Equal(t, Frame(0), da.Get(direction.Right, 0))
	require.Equal(t, Frame(1), da.Get(direction.Right, 0.1))
	require.Equal(t, Frame(0), da.Get(direction.Right, 0.3)) // wraps
}

func TestParseRejectsUnknownDirection(t *testing.T) {
	bad := `
id = 1
[[animation]]
name = "walk"
frame_duration = 0.1
[animation.frames]
northwest = [0]
`
	_, err := Parse([]byte(bad))
	require.Error(t, err)
}
