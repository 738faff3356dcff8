package protocol

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"math"

	"github.com/tilekeeper/server/internal/animation"
	"github.com/tilekeeper/server/internal/direction"
	"github.com/tilekeeper/server/internal/geom"
	"github.com/tilekeeper/server/internal/object"
	"github.com/tilekeeper/server/internal/rle"
	"github.com/tilekeeper/server/internal/worldmap"
)

// ErrShortBuffer is returned when a frame ends before a field it promised
// could be read.
var ErrShortBuffer = errors.New("protocol: short buffer")

// ErrUnknownOpcode is returned when a frame's leading byte names no known
// command or event.
var ErrUnknownOpcode = errors.New("protocol: unknown opcode")

// --- writer ---

type writer struct {
	buf bytes.Buffer
}

func (w *writer) u8(v uint8)   { w.buf.WriteByte(v) }
func (w *writer) u16(v uint16) { binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *writer) u32(v uint32) { binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *writer) u64(v uint64) { binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *writer) i32(v int32)  { binary.Write(&w.buf, binary.LittleEndian, v) }
func (w *writer) f32(v float32) {
	binary.Write(&w.buf, binary.LittleEndian, math.Float32bits(v))
}
func (w *writer) bool(v bool) {
	if v {
		w.u8(1)
	} else {
		w.u8(0)
	}
}
func (w *writer) str(s string) {
	b := []byte(s)
	if len(b) > 255 {
		b = b[:255]
	}
	w.u8(uint8(len(b)))
	w.buf.Write(b)
}
func (w *writer) vec2(v geom.Vec2) {
	w.f32(v.X)
	w.f32(v.Y)
}
func (w *writer) roomID(r object.RoomID) { w.u64(uint64(r)) }
func (w *writer) objectID(o object.ID)   { w.u64(uint64(o)) }
func (w *writer) direction(d direction.Direction4) { w.u8(uint8(d)) }

// --- reader ---

type reader struct {
	data []byte
	pos  int
}

func (r *reader) remaining() int { return len(r.data) - r.pos }

func (r *reader) u8() (uint8, error) {
	if r.remaining() < 1 {
		return 0, ErrShortBuffer
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

func (r *reader) u16() (uint16, error) {
	if r.remaining() < 2 {
		return 0, ErrShortBuffer
	}
	v := binary.LittleEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if r.remaining() < 4 {
		return 0, ErrShortBuffer
	}
	v := binary.LittleEndian.Uint32(r.data[r.pos:])
	r.pos += 4
	return v, nil
}

func (r *reader) u64() (uint64, error) {
	if r.remaining() < 8 {
		return 0, ErrShortBuffer
	}
	v := binary.LittleEndian.Uint64(r.data[r.pos:])
	r.pos += 8
	return v, nil
}

func (r *reader) i32() (int32, error) {
	v, err := r.u32()
	return int32(v), err
}

func (r *reader) i64() (int64, error) {
	v, err := r.u64()
	return int64(v), err
}

func (r *reader) f32() (float32, error) {
	v, err := r.u32()
	if err != nil {
		return 0, err
	}
	return math.Float32frombits(v), nil
}

func (r *reader) boolean() (bool, error) {
	v, err := r.u8()
	return v != 0, err
}

func (r *reader) str() (string, error) {
	n, err := r.u8()
	if err != nil {
		return "", err
	}
	if r.remaining() < int(n) {
		return "", ErrShortBuffer
	}
	s := string(r.data[r.pos : r.pos+int(n)])
	r.pos += int(n)
	return s, nil
}

func (r *reader) vec2() (geom.Vec2, error) {
	x, err := r.f32()
	if err != nil {
		return geom.Vec2{}, err
	}
	y, err := r.f32()
	if err != nil {
		return geom.Vec2{}, err
	}
	return geom.Vec2{X: x, Y: y}, nil
}

func (r *reader) roomID() (object.RoomID, error) {
	v, err := r.u64()
	return object.RoomID(v), err
}

func (r *reader) objectID() (object.ID, error) {
	v, err := r.u64()
	return object.ID(v), err
}

func (r *reader) direction() (direction.Direction4, error) {
	v, err := r.u8()
	return direction.Direction4(v), err
}

// --- commands (client -> server), one command per frame ---

// EncodeCommand serializes a single command frame. Exposed mainly for tests
// exercising the round trip; the real client is the one that encodes these.
func EncodeCommand(cmd Command) []byte {
	w := &writer{}
	switch c := cmd.(type) {
	case PingCommand:
		w.u8(OpPing)
		w.u32(c.Sequence)
	case MoveCommand:
		w.u8(OpMove)
		w.roomID(c.RoomID)
		w.vec2(c.Position)
		w.bool(c.HasDirection)
		w.direction(c.Direction)
		w.direction(c.LookDirection)
	case AttackCommand:
		w.u8(OpAttack)
		w.roomID(c.RoomID)
	default:
		panic(fmt.Sprintf("protocol: unencodable command %T", cmd))
	}
	return w.buf.Bytes()
}

// DecodeCommand parses a single client -> server frame.
func DecodeCommand(data []byte) (Command, error) {
	r := &reader{data: data}
	op, err := r.u8()
	if err != nil {
		return nil, err
	}
	switch op {
	case OpPing:
		seq, err := r.u32()
		if err != nil {
			return nil, err
		}
		return PingCommand{Sequence: seq}, nil
	case OpMove:
		roomID, err := r.roomID()
		if err != nil {
			return nil, err
		}
		pos, err := r.vec2()
		if err != nil {
			return nil, err
		}
		has, err := r.boolean()
		if err != nil {
			return nil, err
		}
		dir, err := r.direction()
		if err != nil {
			return nil, err
		}
		look, err := r.direction()
		if err != nil {
			return nil, err
		}
		return MoveCommand{RoomID: roomID, Position: pos, HasDirection: has, Direction: dir, LookDirection: look}, nil
	case OpAttack:
		roomID, err := r.roomID()
		if err != nil {
			return nil, err
		}
		return AttackCommand{RoomID: roomID}, nil
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownOpcode, op)
	}
}

// --- events (server -> client), batched ---

// EncodeEventBatch serializes an ordered batch of events as one frame.
func EncodeEventBatch(events []Event) []byte {
	w := &writer{}
	w.u16(uint16(len(events)))
	for _, e := range events {
		encodeEvent(w, e)
	}
	return w.buf.Bytes()
}

func encodeEvent(w *writer, evt Event) {
	switch e := evt.(type) {
	case InitialEvent:
		w.u8(OpInitial)
		w.objectID(e.PlayerID)
		w.f32(e.Config.PlayerVelocity)
		encodeAnimationSet(w, e.Config.Animations)
	case PongEvent:
		w.u8(OpPong)
		w.u32(e.Sequence)
		binary.Write(&w.buf, binary.LittleEndian, e.SentAt)
	case RoomEnteredEvent:
		w.u8(OpRoomEntered)
		encodeRoomSync(w, e.Room)
	case ObjectAppearedEvent:
		w.u8(OpObjectAppeared)
		w.objectID(e.ObjectID)
		w.u32(e.AnimationID)
		w.f32(e.Velocity)
		w.vec2(e.Position)
	case ObjectDisappearedEvent:
		w.u8(OpObjectDisappeared)
		w.objectID(e.ObjectID)
	case ObjectMovementChangedEvent:
		w.u8(OpObjectMovementChanged)
		w.objectID(e.ObjectID)
		w.vec2(e.Position)
		w.bool(e.HasDirection)
		w.direction(e.Direction)
		w.direction(e.LookDirection)
	case ObjectAnimationActionEvent:
		w.u8(OpObjectAnimationAction)
		w.objectID(e.ObjectID)
		w.u8(uint8(e.Action))
	case ObjectHealthChangedEvent:
		w.u8(OpObjectHealthChanged)
		w.objectID(e.ObjectID)
		w.i32(e.Health)
		w.i32(e.Change)
	default:
		panic(fmt.Sprintf("protocol: unencodable event %T", evt))
	}
}

// encodeAnimationSet writes a player's full animation set: its id, then each
// named animation's frame duration and per-cardinal frame sequence (in
// direction.All order, an empty sequence for a direction the animation
// doesn't use).
func encodeAnimationSet(w *writer, set animation.Set) {
	w.u32(set.ID)
	w.u16(uint16(len(set.Animations)))
	for name, da := range set.Animations {
		w.str(name)
		w.f32(da.FrameDuration)
		for _, d := range direction.All {
			frames := da.Frames[d]
			w.u16(uint16(len(frames)))
			for _, f := range frames {
				w.u32(uint32(f))
			}
		}
	}
}

func decodeAnimationSet(r *reader) (animation.Set, error) {
	set := animation.Set{}
	id, err := r.u32()
	if err != nil {
		return set, err
	}
	set.ID = id

	count, err := r.u16()
	if err != nil {
		return set, err
	}
	set.Animations = make(map[string]*animation.DirectionalAnimation, count)
	for i := uint16(0); i < count; i++ {
		name, err := r.str()
		if err != nil {
			return set, err
		}
		duration, err := r.f32()
		if err != nil {
			return set, err
		}
		da := &animation.DirectionalAnimation{FrameDuration: duration, Frames: make(map[direction.Direction4][]animation.Frame, len(direction.All))}
		for _, d := range direction.All {
			n, err := r.u16()
			if err != nil {
				return set, err
			}
			frames := make([]animation.Frame, n)
			for j := uint16(0); j < n; j++ {
				v, err := r.u32()
				if err != nil {
					return set, err
				}
				frames[j] = animation.Frame(v)
			}
			if len(frames) > 0 {
				da.Frames[d] = frames
				if uint32(len(frames)) > da.FrameCount {
					da.FrameCount = uint32(len(frames))
				}
			}
		}
		set.Animations[name] = da
	}
	return set, nil
}

func encodeRoomSync(w *writer, rs RoomSync) {
	w.roomID(rs.RoomID)
	w.u32(rs.Width)
	w.u32(rs.Height)

	w.u16(uint16(len(rs.Layers)))
	for _, l := range rs.Layers {
		w.str(l.Name)
		w.u32(uint32(len(l.Tiles)))
		for _, run := range l.Tiles {
			w.u16(uint16(run.Value))
			w.u32(run.Count)
		}
	}

	w.u32(uint32(len(rs.Collisions)))
	for _, run := range rs.Collisions {
		w.bool(run.Value)
		w.u32(run.Count)
	}

	w.u16(uint16(len(rs.Portals)))
	for _, p := range rs.Portals {
		w.i32(p.Position.X)
		w.i32(p.Position.Y)
		w.roomID(p.TargetRoom)
		w.vec2(p.TargetPosition)
	}
}

// DecodeEventBatch parses a server -> client frame back into its events.
// Used by tests to verify the wire round trip; a real client would do the
// equivalent in its own language.
func DecodeEventBatch(data []byte) ([]Event, error) {
	r := &reader{data: data}
	count, err := r.u16()
	if err != nil {
		return nil, err
	}
	events := make([]Event, 0, count)
	for i := uint16(0); i < count; i++ {
		evt, err := decodeEvent(r)
		if err != nil {
			return nil, err
		}
		events = append(events, evt)
	}
	return events, nil
}

func decodeEvent(r *reader) (Event, error) {
	op, err := r.u8()
	if err != nil {
		return nil, err
	}
	switch op {
	case OpInitial:
		id, err := r.objectID()
		if err != nil {
			return nil, err
		}
		vel, err := r.f32()
		if err != nil {
			return nil, err
		}
		set, err := decodeAnimationSet(r)
		if err != nil {
			return nil, err
		}
		return InitialEvent{PlayerID: id, Config: ClientConfig{PlayerVelocity: vel, Animations: set}}, nil
	case OpPong:
		seq, err := r.u32()
		if err != nil {
			return nil, err
		}
		sentAt, err := r.i64()
		if err != nil {
			return nil, err
		}
		return PongEvent{Sequence: seq, SentAt: sentAt}, nil
	case OpRoomEntered:
		rs, err := decodeRoomSync(r)
		if err != nil {
			return nil, err
		}
		return RoomEnteredEvent{Room: rs}, nil
	case OpObjectAppeared:
		id, err := r.objectID()
		if err != nil {
			return nil, err
		}
		anim, err := r.u32()
		if err != nil {
			return nil, err
		}
		vel, err := r.f32()
		if err != nil {
			return nil, err
		}
		pos, err := r.vec2()
		if err != nil {
			return nil, err
		}
		return ObjectAppearedEvent{ObjectID: id, AnimationID: anim, Velocity: vel, Position: pos}, nil
	case OpObjectDisappeared:
		id, err := r.objectID()
		if err != nil {
			return nil, err
		}
		return ObjectDisappearedEvent{ObjectID: id}, nil
	case OpObjectMovementChanged:
		id, err := r.objectID()
		if err != nil {
			return nil, err
		}
		pos, err := r.vec2()
		if err != nil {
			return nil, err
		}
		has, err := r.boolean()
		if err != nil {
			return nil, err
		}
		dir, err := r.direction()
		if err != nil {
			return nil, err
		}
		look, err := r.direction()
		if err != nil {
			return nil, err
		}
		return ObjectMovementChangedEvent{ObjectID: id, Position: pos, HasDirection: has, Direction: dir, LookDirection: look}, nil
	case OpObjectAnimationAction:
		id, err := r.objectID()
		if err != nil {
			return nil, err
		}
		action, err := r.u8()
		if err != nil {
			return nil, err
		}
		return ObjectAnimationActionEvent{ObjectID: id, Action: AnimationAction(action)}, nil
	case OpObjectHealthChanged:
		id, err := r.objectID()
		if err != nil {
			return nil, err
		}
		health, err := r.i32()
		if err != nil {
			return nil, err
		}
		change, err := r.i32()
		if err != nil {
			return nil, err
		}
		return ObjectHealthChangedEvent{ObjectID: id, Health: health, Change: change}, nil
	default:
		return nil, fmt.Errorf("%w: 0x%02x", ErrUnknownOpcode, op)
	}
}

func decodeRoomSync(r *reader) (RoomSync, error) {
	var rs RoomSync
	var err error
	if rs.RoomID, err = r.roomID(); err != nil {
		return rs, err
	}
	if rs.Width, err = r.u32(); err != nil {
		return rs, err
	}
	if rs.Height, err = r.u32(); err != nil {
		return rs, err
	}

	layerCount, err := r.u16()
	if err != nil {
		return rs, err
	}
	for i := uint16(0); i < layerCount; i++ {
		name, err := r.str()
		if err != nil {
			return rs, err
		}
		runCount, err := r.u32()
		if err != nil {
			return rs, err
		}
		runs := make([]rle.Run[worldmap.TileIndex], 0, runCount)
		for j := uint32(0); j < runCount; j++ {
			v, err := r.u16()
			if err != nil {
				return rs, err
			}
			c, err := r.u32()
			if err != nil {
				return rs, err
			}
			runs = append(runs, rle.Run[worldmap.TileIndex]{Value: worldmap.TileIndex(v), Count: c})
		}
		rs.Layers = append(rs.Layers, LayerSync{Name: name, Tiles: runs})
	}

	collisionRunCount, err := r.u32()
	if err != nil {
		return rs, err
	}
	for i := uint32(0); i < collisionRunCount; i++ {
		v, err := r.boolean()
		if err != nil {
			return rs, err
		}
		c, err := r.u32()
		if err != nil {
			return rs, err
		}
		rs.Collisions = append(rs.Collisions, rle.Run[bool]{Value: v, Count: c})
	}

	portalCount, err := r.u16()
	if err != nil {
		return rs, err
	}
	for i := uint16(0); i < portalCount; i++ {
		x, err := r.i32()
		if err != nil {
			return rs, err
		}
		y, err := r.i32()
		if err != nil {
			return rs, err
		}
		target, err := r.roomID()
		if err != nil {
			return rs, err
		}
		pos, err := r.vec2()
		if err != nil {
			return rs, err
		}
		rs.Portals = append(rs.Portals, worldmap.Portal{
			Position:       geom.TileCoord{X: x, Y: y},
			TargetRoom:     target,
			TargetPosition: pos,
		})
	}

	return rs, nil
}
