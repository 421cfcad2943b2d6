package gears

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSceneUpdateAdvancesAngle(t *testing.T) {
	s := NewScene()
	s.Update(1.0)
	assert.InDelta(t, 70.0, s.Angle, 0.001)
	s.Update(0.5)
	assert.InDelta(t, 105.0, s.Angle, 0.001)
}

func TestSceneUpdateWrapsAngle(t *testing.T) {
	s := NewScene()
	s.Angle = 3599.0
	s.Update(1.0)
	assert.Less(t, s.Angle, float32(3600.0))
	assert.Greater(t, s.Angle, float32(0.0))
}

func TestSceneAnimateToggle(t *testing.T) {
	s := NewScene()
	s.ToggleAnimate()
	assert.False(t, s.Animate)

	before := s.Angle
	s.Update(1.0)
	assert.Equal(t, before, s.Angle)
}

func TestSceneViewRot(t *testing.T) {
	s := NewScene()
	assert.Equal(t, [2]float32{20.0, 30.0}, s.ViewRot)

	s.AdjustViewRot(5.0, 0)
	s.AdjustViewRot(0, -5.0)
	assert.Equal(t, [2]float32{25.0, 25.0}, s.ViewRot)
}

func TestScenePushConstants(t *testing.T) {
	s := NewScene()
	s.Angle = 42.0
	pc := s.PushConstants(1.5)
	assert.Equal(t, []float32{42.0, 20.0, 30.0, 1.5}, pc)
}
