package core

import "sync"

// Seconds between FPS reports.
const REPORT_INTERVAL float64 = 5.0

type MetricsState struct {
	Frames           int32
	AccumulatedTime  float64
	FPS              float64
	lastFrameElapsed float64
}

var onceMetrics sync.Once
var metricsState *MetricsState = nil

func MetricsInitialize() error {
	onceMetrics.Do(func() {
		metricsState = &MetricsState{}
	})
	return nil
}

// MetricsUpdate accumulates one frame. It returns true every time a full
// report interval has elapsed, at which point MetricsFPS holds the rate
// over that interval.
func MetricsUpdate(frameElapsedTime float64) bool {
	metricsState.Frames++
	metricsState.AccumulatedTime += frameElapsedTime
	metricsState.lastFrameElapsed = frameElapsedTime

	if metricsState.AccumulatedTime >= REPORT_INTERVAL {
		metricsState.FPS = float64(metricsState.Frames) / metricsState.AccumulatedTime
		metricsState.Frames = 0
		metricsState.AccumulatedTime = 0
		return true
	}
	return false
}

func MetricsFPS() float64 {
	return metricsState.FPS
}

func MetricsFrameTime() float64 {
	return metricsState.lastFrameElapsed * 1000.0
}
