package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/spaghettifunk/vkgears/engine/core"
)

// Present mode names accepted in the config file and translated by the
// renderer into VkPresentModeKHR values.
const (
	PresentModeFIFO      = "fifo"
	PresentModeMailbox   = "mailbox"
	PresentModeImmediate = "immediate"
)

type WindowConfig struct {
	Title      string `toml:"title"`
	Width      uint32 `toml:"width"`
	Height     uint32 `toml:"height"`
	Fullscreen bool   `toml:"fullscreen"`
}

type RendererConfig struct {
	// SampleCount is the MSAA sample count, a power of two in [1, 64].
	SampleCount uint32 `toml:"sample_count"`
	PresentMode string `toml:"present_mode"`
	// ShaderObject selects the VK_EXT_shader_object execution path
	// instead of monolithic pipelines.
	ShaderObject bool `toml:"shader_object"`
	// Reference disables device-generated commands and issues the
	// equivalent direct draws instead.
	Reference  bool `toml:"reference"`
	Validation bool `toml:"validation"`
	// PrintInfo dumps physical device properties and extensions at startup.
	PrintInfo bool `toml:"print_info"`
}

type Config struct {
	Window   WindowConfig   `toml:"window"`
	Renderer RendererConfig `toml:"renderer"`
}

func Default() *Config {
	return &Config{
		Window: WindowConfig{
			Title:  "vkgears",
			Width:  300,
			Height: 300,
		},
		Renderer: RendererConfig{
			SampleCount: 1,
			PresentMode: PresentModeFIFO,
		},
	}
}

// Load reads the TOML config at path on top of the defaults. A missing
// file is not an error; the defaults are returned unchanged.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		core.LogError("failed to read config file %s: %s", path, err.Error())
		return nil, err
	}
	if err := toml.Unmarshal(data, cfg); err != nil {
		core.LogError("failed to parse config file %s: %s", path, err.Error())
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if !validSampleCount(c.Renderer.SampleCount) {
		return fmt.Errorf("invalid sample count %d", c.Renderer.SampleCount)
	}
	switch c.Renderer.PresentMode {
	case PresentModeFIFO, PresentModeMailbox, PresentModeImmediate:
	default:
		return fmt.Errorf("invalid present mode %q", c.Renderer.PresentMode)
	}
	if c.Window.Width == 0 || c.Window.Height == 0 {
		return fmt.Errorf("invalid window size %dx%d", c.Window.Width, c.Window.Height)
	}
	return nil
}

func validSampleCount(n uint32) bool {
	switch n {
	case 1, 2, 4, 8, 16, 32, 64:
		return true
	}
	return false
}

// ApplyArgs applies command line overrides on top of the loaded
// configuration. The flags mirror the classic vkgears options.
func (c *Config) ApplyArgs(args []string) error {
	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "-info":
			c.Renderer.PrintInfo = true
		case "-samples":
			if i+1 >= len(args) {
				return fmt.Errorf("-samples requires an argument")
			}
			i++
			n, err := strconv.ParseUint(args[i], 10, 32)
			if err != nil || !validSampleCount(uint32(n)) {
				return fmt.Errorf("invalid sample count %q", args[i])
			}
			c.Renderer.SampleCount = uint32(n)
		case "-present-mailbox":
			c.Renderer.PresentMode = PresentModeMailbox
		case "-present-immediate":
			c.Renderer.PresentMode = PresentModeImmediate
		case "-shader-object":
			c.Renderer.ShaderObject = true
		case "-reference":
			c.Renderer.Reference = true
		case "-validate":
			c.Renderer.Validation = true
		case "-size":
			if i+1 >= len(args) {
				return fmt.Errorf("-size requires an argument")
			}
			i++
			w, h, err := ParseSize(args[i])
			if err != nil {
				return err
			}
			c.Window.Width, c.Window.Height = w, h
		case "-fullscreen":
			c.Window.Fullscreen = true
		default:
			return fmt.Errorf("unknown option %q", args[i])
		}
	}
	return nil
}

// ParseSize parses a WxH window size. A missing or non-positive
// component leaves the corresponding default in place.
func ParseSize(s string) (uint32, uint32, error) {
	width, height := uint32(300), uint32(300)
	parts := strings.SplitN(s, "x", 2)
	if len(parts) == 0 || parts[0] == "" {
		return 0, 0, fmt.Errorf("invalid size %q", s)
	}
	if n, err := strconv.ParseInt(parts[0], 10, 32); err == nil && n > 0 {
		width = uint32(n)
	} else if err != nil {
		return 0, 0, fmt.Errorf("invalid size %q", s)
	}
	if len(parts) == 2 && parts[1] != "" {
		if n, err := strconv.ParseInt(parts[1], 10, 32); err == nil && n > 0 {
			height = uint32(n)
		} else if err != nil {
			return 0, 0, fmt.Errorf("invalid size %q", s)
		}
	}
	return width, height, nil
}

// Usage returns the command line help text.
func Usage() string {
	var sb strings.Builder
	sb.WriteString("Usage:\n")
	sb.WriteString("  -samples N              run in multisample mode with N samples\n")
	sb.WriteString("  -present-mailbox        run with present mode mailbox\n")
	sb.WriteString("  -present-immediate      run with present mode immediate\n")
	sb.WriteString("  -fullscreen             run in fullscreen mode\n")
	sb.WriteString("  -info                   display Vulkan device info\n")
	sb.WriteString("  -size WxH               window size\n")
	sb.WriteString("  -shader-object          use VK_EXT_shader_object\n")
	sb.WriteString("  -reference              draw without device-generated commands\n")
	sb.WriteString("  -validate               enable Vulkan validation layers\n")
	return sb.String()
}
