package geom

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVec2Arithmetic(t *testing.T) {
	a := Vec2{X: 1, Y: 2}
	b := Vec2{X: 3, Y: 4}

	assert.Equal(t, Vec2{X: 4, Y: 6}, a.Add(b))
	assert.Equal(t, Vec2{X: -2, Y: -2}, a.Sub(b))
	assert.Equal(t, Vec2{X: 2, Y: 4}, a.Scale(2))
}

func TestDistanceSquared(t *testing.T) {
	a := Vec2{X: 0, Y: 0}
	b := Vec2{X: 3, Y: 4}
	assert.InDelta(t, 25, a.DistanceSquared(b), 0.0001)
}

func TestInDistance(t *testing.T) {
	a := Vec2{X: 0, Y: 0}
	assert.True(t, InDistance(a, Vec2{X: 1, Y: 0}, 1.5))
	assert.False(t, InDistance(a, Vec2{X: 2, Y: 0}, 1.5))
}

func TestFloor(t *testing.T) {
	assert.Equal(t, TileCoord{X: 3, Y: 4}, Vec2{X: 3.9, Y: 4.1}.Floor())
	assert.Equal(t, TileCoord{X: -1, Y: 0}, Vec2{X: -0.2, Y: 0}.Floor())
}
