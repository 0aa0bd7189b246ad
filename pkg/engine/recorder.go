package engine

import "time"

// Recorder receives engine measurements. pkg/telemetry provides the
// Prometheus implementation.
type Recorder interface {
	CommandHandled(command, outcome string)
	PipelineFinished(family, outcome string, elapsed time.Duration)
	PipelineRejected(family string)
}

type nopRecorder struct{}

func (nopRecorder) CommandHandled(string, string)                   {}
func (nopRecorder) PipelineFinished(string, string, time.Duration) {}
func (nopRecorder) PipelineRejected(string)                         {}
