package roomstate

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tilekeeper/server/internal/object"
	"github.com/tilekeeper/server/internal/protocol"
)

func seqEvent(n uint32) protocol.Event {
	return protocol.PongEvent{Sequence: n}
}

func TestWriterDrainGroupsMaximalRuns(t *testing.T) {
	var w Writer
	w.Tell(1, seqEvent(1))
	w.Tell(1, seqEvent(2))
	w.Broadcast(seqEvent(3))
	w.Tell(2, seqEvent(4))

	batches := w.Drain()
	require.Len(t, batches, 3)

	require.Equal(t, WriterTarget{Kind: TargetPlayer, Player: 1}, batches[0].Target)
	require.Equal(t, []protocol.Event{seqEvent(1), seqEvent(2)}, batches[0].Events)

	require.Equal(t, WriterTarget{Kind: TargetAll}, batches[1].Target)
	require.Equal(t, []protocol.Event{seqEvent(3)}, batches[1].Events)

	require.Equal(t, WriterTarget{Kind: TargetPlayer, Player: 2}, batches[2].Target)
	require.Equal(t, []protocol.Event{seqEvent(4)}, batches[2].Events)
}

func TestWriterDrainEmpty(t *testing.T) {
	var w Writer
	require.Empty(t, w.Drain())
}

// TestWriterDrainPreservesPerRecipientCausalOrder covers a recipient who
// appears in two non-adjacent runs (interleaved with traffic addressed
// elsewhere). Their own events, concatenated across whichever batches
// address them, must reconstruct original insertion order even though the
// batches themselves are grouped by maximal run.
func TestWriterDrainPreservesPerRecipientCausalOrder(t *testing.T) {
	var w Writer
	w.Tell(1, seqEvent(1))  // run A: player 1
	w.Tell(2, seqEvent(2))  // run B: player 2
	w.Tell(1, seqEvent(3))  // run C: player 1 again, non-adjacent to run A
	w.Tell(1, seqEvent(4))  // still run C
	w.Tell(2, seqEvent(5))  // run D: player 2 again

	batches := w.Drain()
	require.Len(t, batches, 4)

	var player1Events, player2Events []protocol.Event
	for _, b := range batches {
		if b.Target.Kind == TargetPlayer && b.Target.Player == object.ID(1) {
			player1Events = append(player1Events, b.Events...)
		}
		if b.Target.Kind == TargetPlayer && b.Target.Player == object.ID(2) {
			player2Events = append(player2Events, b.Events...)
		}
	}

	require.Equal(t, []protocol.Event{seqEvent(1), seqEvent(3), seqEvent(4)}, player1Events)
	require.Equal(t, []protocol.Event{seqEvent(2), seqEvent(5)}, player2Events)
}

func TestWriterUpstreamDrain(t *testing.T) {
	var w Writer
	w.Upstream(PlayerLeftRoom{Player: 1, TargetRoom: 2})
	msgs := w.DrainUpstream()
	require.Equal(t, []UpstreamMessage{PlayerLeftRoom{Player: 1, TargetRoom: 2}}, msgs)
	require.Empty(t, w.DrainUpstream())
}
