package vulkan

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"unsafe"

	"github.com/fsnotify/fsnotify"
	"github.com/spaghettifunk/vkgears/engine/core"
)

const spirvMagic = 0x07230203

// One compiled vertex shader per gear color plus the shared fragment
// shader.
var gearVertexShaderFiles = [GearCount]string{
	"red.vert.spv",
	"green.vert.spv",
	"blue.vert.spv",
}

const gearFragmentShaderFile = "gear.frag.spv"

// VulkanShaderSet holds the SPIR-V binaries of all gear variants.
type VulkanShaderSet struct {
	Vertex   [GearCount][]byte
	Fragment []byte
}

func LoadShaderSet(dir string) (*VulkanShaderSet, error) {
	set := &VulkanShaderSet{}
	for i, name := range gearVertexShaderFiles {
		code, err := loadSPIRV(filepath.Join(dir, name))
		if err != nil {
			return nil, err
		}
		set.Vertex[i] = code
	}
	code, err := loadSPIRV(filepath.Join(dir, gearFragmentShaderFile))
	if err != nil {
		return nil, err
	}
	set.Fragment = code
	return set, nil
}

func loadSPIRV(path string) ([]byte, error) {
	code, err := os.ReadFile(path)
	if err != nil {
		err := fmt.Errorf("failed to read shader %s: %w", path, err)
		core.LogError(err.Error())
		return nil, err
	}
	if len(code) < 4 || len(code)%4 != 0 {
		err := fmt.Errorf("shader %s is not a SPIR-V binary", path)
		core.LogError(err.Error())
		return nil, err
	}
	if binary.LittleEndian.Uint32(code) != spirvMagic {
		err := fmt.Errorf("shader %s has no SPIR-V magic word", path)
		core.LogError(err.Error())
		return nil, err
	}
	return code, nil
}

// spirvWords reinterprets a SPIR-V binary as the uint32 slice the
// shader module create info wants.
func spirvWords(code []byte) []uint32 {
	return unsafe.Slice((*uint32)(unsafe.Pointer(&code[0])), len(code)/4)
}

// VulkanShaderWatcher watches the shader directory and raises a flag
// when a compiled shader changes, so the frame loop can rebuild the
// variants between frames.
type VulkanShaderWatcher struct {
	watcher *fsnotify.Watcher
	dirty   atomic.Bool
	done    chan struct{}
}

func NewShaderWatcher(dir string) (*VulkanShaderWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return nil, err
	}

	sw := &VulkanShaderWatcher{
		watcher: watcher,
		done:    make(chan struct{}),
	}
	go sw.run()

	core.LogInfo("Watching %s for shader changes.", dir)
	return sw, nil
}

func (sw *VulkanShaderWatcher) run() {
	for {
		select {
		case event, ok := <-sw.watcher.Events:
			if !ok {
				return
			}
			if !strings.HasSuffix(event.Name, ".spv") {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) {
				core.LogInfo("Shader %s changed, scheduling reload.", filepath.Base(event.Name))
				sw.dirty.Store(true)
			}
		case err, ok := <-sw.watcher.Errors:
			if !ok {
				return
			}
			core.LogWarn("Shader watcher error: %s", err)
		case <-sw.done:
			return
		}
	}
}

// ConsumeDirty reports whether a reload is pending and clears the flag.
func (sw *VulkanShaderWatcher) ConsumeDirty() bool {
	return sw.dirty.Swap(false)
}

func (sw *VulkanShaderWatcher) Close() {
	close(sw.done)
	sw.watcher.Close()
}
