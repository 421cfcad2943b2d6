package vulkan

import (
	"testing"

	vk "github.com/goki/vulkan"
	"github.com/stretchr/testify/assert"
)

func TestSelectMemoryType(t *testing.T) {
	deviceLocal := uint32(vk.MemoryPropertyDeviceLocalBit)
	hostVisible := uint32(vk.MemoryPropertyHostVisibleBit | vk.MemoryPropertyHostCoherentBit)
	lazy := uint32(vk.MemoryPropertyDeviceLocalBit | vk.MemoryPropertyLazilyAllocatedBit)

	types := []uint32{deviceLocal, hostVisible, lazy}

	// all types allowed
	assert.Equal(t, int32(0), selectMemoryType(types, 0b111, deviceLocal))
	assert.Equal(t, int32(1), selectMemoryType(types, 0b111, hostVisible))
	assert.Equal(t, int32(2), selectMemoryType(types, 0b111, uint32(vk.MemoryPropertyLazilyAllocatedBit)))

	// the type filter excludes otherwise matching types
	assert.Equal(t, int32(2), selectMemoryType(types, 0b100, deviceLocal))
	assert.Equal(t, int32(-1), selectMemoryType(types, 0b001, hostVisible))

	// no match at all
	assert.Equal(t, int32(-1), selectMemoryType(types, 0b111, uint32(vk.MemoryPropertyProtectedBit)))
	assert.Equal(t, int32(-1), selectMemoryType(nil, 0b111, deviceLocal))
}
