package dataprocessing

import "perfmerge/pkg/contracts/domain"

// Thresholds are the latency bands, in seconds, used to grade raw timings.
type Thresholds struct {
	Warn   float64
	Severe float64
}

// DefaultThresholds grades 1.8s and above as WARN and 2s and above as SEVERE.
var DefaultThresholds = Thresholds{Warn: 1.8, Severe: 2.0}

// Classify grades a raw timing with DefaultThresholds.
func Classify(v domain.Value) domain.Severity {
	return DefaultThresholds.Classify(v)
}

// Classify grades a raw timing.
func (th Thresholds) Classify(v domain.Value) domain.Severity {
	f, ok := v.Get()
	switch {
	case !ok:
		return domain.SeverityEmpty
	case f >= th.Severe:
		return domain.SeveritySevere
	case f >= th.Warn:
		return domain.SeverityWarn
	default:
		return domain.SeverityOK
	}
}

// ClassifyTrend gives the direction of a derived variance.
func ClassifyTrend(d domain.Value) domain.Trend {
	f, ok := d.Get()
	switch {
	case !ok:
		return domain.TrendNone
	case f > 0:
		return domain.TrendUp
	case f < 0:
		return domain.TrendDown
	default:
		return domain.TrendFlat
	}
}
