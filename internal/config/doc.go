// Package config loads and validates the perfmerge configuration.
//
// # Configuration Sources
//
// Configuration is layered, later sources overriding earlier ones:
//
//	1. Default values
//	2. A YAML file passed with --config
//	3. Environment variables
//	4. Command-line flags (applied by the CLI after Load)
//
// # Environment Variables
//
// All environment variables follow the pattern PERFMERGE_<SECTION>_<FIELD>:
//
//	PERFMERGE_LOGGING_LEVEL=debug
//	PERFMERGE_PATHS_INPUT_DIR=./reports
//	PERFMERGE_PIPELINE_VARIANCE_MODE=absolute
//	PERFMERGE_PIPELINE_CHART_OUTPUT=embedded-image
//
// Explicit variance pairs can only be given in the YAML file:
//
//	pipeline:
//	  pairs: none
//	  explicit_pairs:
//	    - {numerator: R3, denominator: R1, label: "R3 Vs R1"}
//
// # Validation
//
// Enumerated fields, thresholds and pair definitions are checked with
// go-playground/validator struct tags. Failures are reported as CONFIG
// errors.
package config
