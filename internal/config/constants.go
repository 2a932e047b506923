package config

// Application constants
const (
	AppName = "perfmerge"

	// Output defaults, relative to the working directory
	DefaultOutputFile   = "merged_output.xlsx"
	DefaultFilterOutput = "filtered_output.csv"
	DefaultLogFile      = "logs/perfmerge.log"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	// Source reading
	DefaultReadConcurrency = 4

	// Latency bands in seconds
	DefaultWarnThreshold   = 1.8
	DefaultSevereThreshold = 2.0
)
