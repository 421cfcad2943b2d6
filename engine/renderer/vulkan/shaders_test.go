package vulkan

import (
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSPIRV(t *testing.T, dir, name string, words []uint32) string {
	t.Helper()
	data := make([]byte, len(words)*4)
	for i, w := range words {
		binary.LittleEndian.PutUint32(data[i*4:], w)
	}
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadSPIRVAcceptsValidBinary(t *testing.T) {
	dir := t.TempDir()
	path := writeSPIRV(t, dir, "ok.spv", []uint32{spirvMagic, 0x00010000, 0, 0, 0})

	code, err := loadSPIRV(path)
	require.NoError(t, err)
	assert.Len(t, code, 20)

	words := spirvWords(code)
	assert.Equal(t, uint32(spirvMagic), words[0])
	assert.Len(t, words, 5)
}

func TestLoadSPIRVRejectsBadMagic(t *testing.T) {
	dir := t.TempDir()
	path := writeSPIRV(t, dir, "bad.spv", []uint32{0xdeadbeef, 0, 0})

	_, err := loadSPIRV(path)
	assert.Error(t, err)
}

func TestLoadSPIRVRejectsTruncatedFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "short.spv")
	require.NoError(t, os.WriteFile(path, []byte{0x03, 0x02, 0x23}, 0o644))

	_, err := loadSPIRV(path)
	assert.Error(t, err)
}

func TestLoadSPIRVMissingFile(t *testing.T) {
	_, err := loadSPIRV(filepath.Join(t.TempDir(), "nope.spv"))
	assert.Error(t, err)
}

func TestLoadShaderSetLoadsAllVariants(t *testing.T) {
	dir := t.TempDir()
	for _, name := range gearVertexShaderFiles {
		writeSPIRV(t, dir, name, []uint32{spirvMagic, 0, 0})
	}
	writeSPIRV(t, dir, gearFragmentShaderFile, []uint32{spirvMagic, 0, 0})

	set, err := LoadShaderSet(dir)
	require.NoError(t, err)
	for i := range set.Vertex {
		assert.NotEmpty(t, set.Vertex[i])
	}
	assert.NotEmpty(t, set.Fragment)
}

func TestLoadShaderSetMissingFragment(t *testing.T) {
	dir := t.TempDir()
	for _, name := range gearVertexShaderFiles {
		writeSPIRV(t, dir, name, []uint32{spirvMagic, 0, 0})
	}

	_, err := LoadShaderSet(dir)
	assert.Error(t, err)
}
