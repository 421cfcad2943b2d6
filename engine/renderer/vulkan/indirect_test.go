package vulkan

import (
	"testing"

	"github.com/spaghettifunk/vkgears/engine/gears"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeIndirectRecords(t *testing.T) {
	records := []IndirectRecord{
		{ExecutionSetIndex: 0, VertexCount: 930, FirstVertex: 0},
		{ExecutionSetIndex: 2, VertexCount: 470, FirstVertex: 930},
	}

	words := encodeIndirectRecords(records)
	require.Len(t, words, 2*indirectWordsPerRecord)

	// First sequence.
	assert.Equal(t, uint32(0), words[0])
	assert.Equal(t, uint32(1), words[1], "second execution set index is always the shared fragment slot")
	assert.Equal(t, uint32(930), words[2])
	assert.Equal(t, uint32(1), words[3], "one instance per gear")
	assert.Equal(t, uint32(0), words[4])
	assert.Equal(t, uint32(0), words[5])

	// Second sequence starts at the stride boundary.
	assert.Equal(t, uint32(2), words[6])
	assert.Equal(t, uint32(930), words[10])
}

func TestIndirectStrideMatchesEncoding(t *testing.T) {
	words := encodeIndirectRecords([]IndirectRecord{{}})
	assert.Equal(t, indirectStride, len(words)*4)
	// The draw command begins right after the two execution set indices.
	assert.Equal(t, drawTokenOffset, 2*4)
}

func TestVariantSlots(t *testing.T) {
	assert.Equal(t, [GearCount]uint32{0, 1, 2}, pipelineVariantSlots())
	assert.Equal(t, [GearCount]uint32{0, 2, 3}, shaderVariantSlots())
}

func TestBuildIndirectRecordsFollowsGeometry(t *testing.T) {
	_, descriptors := gears.Build()
	records := buildIndirectRecords(descriptors, pipelineVariantSlots())
	require.Len(t, records, GearCount)

	for i, r := range records {
		assert.Equal(t, descriptors[i].FirstVertex, r.FirstVertex)
		assert.Equal(t, descriptors[i].VertexCount, r.VertexCount)
		assert.Equal(t, uint32(i), r.ExecutionSetIndex)
	}

	// The generated draws must cover the same vertex ranges a direct
	// vkCmdDraw per gear would use.
	var firstVertex uint32
	for _, r := range records {
		assert.Equal(t, firstVertex, r.FirstVertex)
		firstVertex += r.VertexCount
	}
}
