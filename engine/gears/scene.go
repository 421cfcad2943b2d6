package gears

// Rotation speed of the driving gear in degrees per second.
const degreesPerSecond = 70.0

// Scene is the animation state: the drive angle of the gear train and
// the user-controlled view rotation.
type Scene struct {
	Angle   float32
	ViewRot [2]float32
	Animate bool
}

func NewScene() *Scene {
	return &Scene{
		ViewRot: [2]float32{20.0, 30.0},
		Animate: true,
	}
}

// Update advances the gear angle by the elapsed time in seconds. The
// angle wraps to keep float precision stable over long runs.
func (s *Scene) Update(deltaTime float64) {
	if !s.Animate {
		return
	}
	s.Angle += float32(degreesPerSecond * deltaTime)
	for s.Angle > 3600.0 {
		s.Angle -= 3600.0
	}
}

func (s *Scene) AdjustViewRot(dx, dy float32) {
	s.ViewRot[0] += dx
	s.ViewRot[1] += dy
}

func (s *Scene) ToggleAnimate() {
	s.Animate = !s.Animate
}

// PushConstants encodes the per-frame vertex shader inputs: gear
// angle, the two view rotation angles and the frustum half-height.
func (s *Scene) PushConstants(aspectHeight float32) []float32 {
	return []float32{s.Angle, s.ViewRot[0], s.ViewRot[1], aspectHeight}
}
