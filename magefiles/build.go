//go:build mage

package main

import (
	"fmt"

	"github.com/magefile/mage/mg"
)

type Build mg.Namespace

var shaderSources = []string{
	"assets/shaders/red.vert",
	"assets/shaders/green.vert",
	"assets/shaders/blue.vert",
	"assets/shaders/gear.frag",
}

// Compiles the GLSL shaders to SPIR-V with glslc.
func (Build) Shaders() error {
	return buildShaders()
}

func buildShaders() error {
	for _, src := range shaderSources {
		out := fmt.Sprintf("%s.spv", src)
		if _, err := executeCmd("glslc", withArgs(src, "-o", out), withStream()); err != nil {
			return err
		}
	}
	return nil
}
