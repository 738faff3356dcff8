// Package animation models the small amount of animation metadata echoed to
// clients so they can pick sprite frames locally; the server never simulates
// frame timing itself.
package animation

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"

	"github.com/tilekeeper/server/internal/direction"
)

// Frame is one sprite-sheet index.
type Frame uint32

// DirectionalAnimation holds one frame sequence per cardinal direction.
type DirectionalAnimation struct {
	FrameCount    uint32
	FrameDuration float32 // seconds per frame
	Frames        map[direction.Direction4][]Frame
}

// Get returns the frame for d at elapsed seconds into the animation,
// looping once the sequence is exhausted.
func (a *DirectionalAnimation) Get(d direction.Direction4, elapsed float32) Frame {
	frames := a.Frames[d]
	if len(frames) == 0 || a.FrameDuration <= 0 {
		return 0
	}
	idx := int(elapsed/a.FrameDuration) % len(frames)
	return frames[idx]
}

// Set is a named collection of animations (walk, attack, idle, ...).
type Set struct {
	ID         uint32
	Animations map[string]*DirectionalAnimation
}

// document is the on-disk TOML shape for a player's animation set.
type document struct {
	ID         uint32 `toml:"id"`
	Animations []struct {
		Name          string             `toml:"name"`
		FrameDuration float32            `toml:"frame_duration"`
		Frames        map[string][]uint32 `toml:"frames"`
	} `toml:"animation"`
}

var directionNames = map[string]direction.Direction4{
	"right": direction.Right,
	"down":  direction.Down,
	"left":  direction.Left,
	"up":    direction.Up,
}

// Load reads a player's animation set from a TOML file.
func Load(path string) (*Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("animation: read %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes a player's animation set from TOML bytes.
func Parse(data []byte) (*Set, error) {
	var doc document
	if err := toml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("animation: decode: %w", err)
	}

	set := &Set{ID: doc.ID, Animations: make(map[string]*DirectionalAnimation, len(doc.Animations))}
	for _, a := range doc.Animations {
		da := &DirectionalAnimation{
			FrameCount:    0,
			FrameDuration: a.FrameDuration,
			Frames:        make(map[direction.Direction4][]Frame, len(a.Frames)),
		}
		for name, raw := range a.Frames {
			d, ok := directionNames[name]
			if !ok {
				return nil, fmt.Errorf("animation: unknown direction %q in animation %q", name, a.Name)
			}
			frames := make([]Frame, len(raw))
			for i, f := range raw {
				frames[i] = Frame(f)
			}
			da.Frames[d] = frames
			if uint32(len(frames)) > da.FrameCount {
				da.FrameCount = uint32(len(frames))
			}
		}
		set.Animations[a.Name] = da
	}
	return set, nil
}
