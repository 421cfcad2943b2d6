package math

import (
	m "math"
)

const (
	/** @brief An approximate representation of PI. */
	K_PI float32 = 3.14159265358979323846
	/** @brief A multiplier used to convert degrees to radians. */
	K_DEG2RAD_MULTIPLIER float32 = K_PI / 180.0
	/** @brief A multiplier used to convert radians to degrees. */
	K_RAD2DEG_MULTIPLIER float32 = 180.0 / K_PI
	/** @brief Smallest positive number where 1.0 + FLOAT_EPSILON != 0 */
	K_FLOAT_EPSILON float32 = 1.192092896e-07
)

/**
 * Note that these are here in order to prevent having to import the
 * entire <math.h> everywhere.
 */
func ksin(x float32) float32 {
	return float32(m.Sin(float64(x)))
}

func kcos(x float32) float32 {
	return float32(m.Cos(float64(x)))
}

func ksqrt(x float32) float32 {
	return float32(m.Sqrt(float64(x)))
}

func Sin(x float32) float32 {
	return ksin(x)
}

func Cos(x float32) float32 {
	return kcos(x)
}

func Sqrt(x float32) float32 {
	return ksqrt(x)
}

func DegToRad(degrees float32) float32 {
	return degrees * K_DEG2RAD_MULTIPLIER
}

func NewMat4Identity() Mat4 {
	out_matrix := Mat4{}
	out_matrix.Data[0] = 1.0
	out_matrix.Data[5] = 1.0
	out_matrix.Data[10] = 1.0
	out_matrix.Data[15] = 1.0
	return out_matrix
}

// NewMat4Frustum builds an OpenGL-style perspective frustum with z
// mapped to [-1, 1] and y pointing up.
func NewMat4Frustum(left, right, bottom, top, near_clip, far_clip float32) Mat4 {
	out_matrix := Mat4{}
	out_matrix.Data[0] = (2.0 * near_clip) / (right - left)
	out_matrix.Data[5] = (2.0 * near_clip) / (top - bottom)
	out_matrix.Data[8] = (right + left) / (right - left)
	out_matrix.Data[9] = (top + bottom) / (top - bottom)
	out_matrix.Data[10] = -(far_clip + near_clip) / (far_clip - near_clip)
	out_matrix.Data[11] = -1.0
	out_matrix.Data[14] = -(2.0 * far_clip * near_clip) / (far_clip - near_clip)
	return out_matrix
}

// NewMat4FrustumVulkan builds a perspective frustum for the Vulkan clip
// volume: y points down and z is mapped to [0, 1].
func NewMat4FrustumVulkan(left, right, bottom, top, near_clip, far_clip float32) Mat4 {
	out_matrix := NewMat4Frustum(left, right, bottom, top, near_clip, far_clip)
	out_matrix.Data[5] *= -1.0
	out_matrix.Data[10] = out_matrix.Data[10]/2.0 - out_matrix.Data[11]/2.0
	out_matrix.Data[14] = out_matrix.Data[14] / 2.0
	return out_matrix
}
