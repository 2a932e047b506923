package domain

// Severity classifies a raw timing value.
type Severity string

const (
	SeverityEmpty  Severity = "EMPTY"
	SeverityOK     Severity = "OK"
	SeverityWarn   Severity = "WARN"
	SeveritySevere Severity = "SEVERE"
)

// Trend classifies a derived variance value.
type Trend string

const (
	TrendNone Trend = "NONE"
	TrendUp   Trend = "UP"
	TrendDown Trend = "DOWN"
	TrendFlat Trend = "FLAT"
)
