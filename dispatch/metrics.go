package dispatch

import "time"

// Metrics receives Dispatch's ambient observability signals. The
// production implementation is metrics.Metrics (Prometheus-backed); a nil
// Config.Metrics falls back to the package-private noopMetrics below.
type Metrics interface {
	SetQueueDepth(n int)
	ObservePaceInterval(d time.Duration)
	IncDrop(reason string)
	ObserveServiceTime(d time.Duration)
	IncTimerFired()
	IncTimerCanceled()
	IncLoopback()
	IncMessageSent(tag string)
	IncMessageReceived(tag string)
}

type noopMetrics struct{}

func (noopMetrics) SetQueueDepth(int)              {}
func (noopMetrics) ObservePaceInterval(time.Duration) {}
func (noopMetrics) IncDrop(string)                 {}
func (noopMetrics) ObserveServiceTime(time.Duration) {}
func (noopMetrics) IncTimerFired()                 {}
func (noopMetrics) IncTimerCanceled()              {}
func (noopMetrics) IncLoopback()                   {}
func (noopMetrics) IncMessageSent(string)          {}
func (noopMetrics) IncMessageReceived(string)       {}
