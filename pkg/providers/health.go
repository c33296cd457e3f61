package providers

import (
	"log/slog"
	"time"
)

// unhealthyThreshold is the number of consecutive failures after which the
// provider is reported unhealthy.
const unhealthyThreshold = 3

// Health is derived entirely from real request outcomes. There is no
// synthetic probe loop: a probe would spend upstream quota on traffic that
// serves no caller, and a provider that fails real completions while passing
// probes would be reported healthy anyway. A single success restores the
// provider to healthy.

// IsHealthy returns the current health status.
func (p *HTTPProvider) IsHealthy() bool {
	p.healthMu.RLock()
	defer p.healthMu.RUnlock()
	return p.health.IsHealthy
}

// Health returns detailed health information.
func (p *HTTPProvider) Health() ProviderHealth {
	p.healthMu.RLock()
	defer p.healthMu.RUnlock()
	return p.health
}

// recordOutcome updates request counters and health after an attempt.
func (p *HTTPProvider) recordOutcome(success bool, err error) {
	p.healthMu.Lock()
	defer p.healthMu.Unlock()

	p.health.TotalRequests++
	if success {
		p.health.IsHealthy = true
		p.health.ConsecutiveFailures = 0
		p.health.LastError = nil
		p.health.LastSuccess = time.Now()
		return
	}

	p.health.FailedRequests++
	p.health.ConsecutiveFailures++
	p.health.LastError = err

	if p.health.ConsecutiveFailures >= unhealthyThreshold {
		p.health.IsHealthy = false
		slog.Warn("provider marked unhealthy",
			"provider", p.config.Name,
			"consecutive_failures", p.health.ConsecutiveFailures,
			"error", err,
		)
	}
}
