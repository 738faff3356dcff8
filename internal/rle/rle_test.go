package rle

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	data := []int{1, 1, 1, 2, 2, 3, 3, 3, 3, 1}
	runs := Encode(data)
	assert.Equal(t, []Run[int]{
		{Value: 1, Count: 3},
		{Value: 2, Count: 2},
		{Value: 3, Count: 4},
		{Value: 1, Count: 1},
	}, runs)

	assert.Equal(t, data, Decode(runs))
}

func TestEncodeEmpty(t *testing.T) {
	assert.Empty(t, Encode([]bool{}))
	assert.Empty(t, Decode[bool](nil))
}

func TestEncodeSingleRun(t *testing.T) {
	data := []bool{true, true, true, true}
	runs := Encode(data)
	assert.Equal(t, []Run[bool]{{Value: true, Count: 4}}, runs)
}
