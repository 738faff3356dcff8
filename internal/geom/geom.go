// Package geom holds the small amount of vector arithmetic the room
// simulation needs.
package geom

import "math"

// Vec2 is a position or displacement in room-local float coordinates.
type Vec2 struct {
	X float32
	Y float32
}

// Add returns v+o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{X: v.X + o.X, Y: v.Y + o.Y}
}

// Scale returns v scaled by s.
func (v Vec2) Scale(s float32) Vec2 {
	return Vec2{X: v.X * s, Y: v.Y * s}
}

// Sub returns v-o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{X: v.X - o.X, Y: v.Y - o.Y}
}

// DistanceSquared avoids a sqrt for range checks.
func (v Vec2) DistanceSquared(o Vec2) float32 {
	d := v.Sub(o)
	return d.X*d.X + d.Y*d.Y
}

// InDistance reports whether v is within distance d of o, inclusive.
func InDistance(v, o Vec2, d float32) bool {
	return v.DistanceSquared(o) <= d*d
}

// TileCoord is an integer tile-grid coordinate.
type TileCoord struct {
	X int32
	Y int32
}

// Floor truncates v to the tile it lies within.
func (v Vec2) Floor() TileCoord {
	return TileCoord{X: int32(math.Floor(float64(v.X))), Y: int32(math.Floor(float64(v.Y)))}
}
