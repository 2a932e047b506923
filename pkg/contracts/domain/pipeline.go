package domain

import "fmt"

// PairPreset names a built-in set of variance pairs.
type PairPreset string

const (
	PairPresetNone                 PairPreset = "none"
	PairPresetLatest               PairPreset = "latest"
	PairPresetConsecutive          PairPreset = "consecutive"
	PairPresetLatestAndConsecutive PairPreset = "latest+consecutive"
)

// ChartOutput selects how variance trend charts are rendered.
type ChartOutput string

const (
	ChartNone          ChartOutput = "none"
	ChartEmbeddedImage ChartOutput = "embedded-image"
	ChartNative        ChartOutput = "native-chart"
)

// SheetLayout selects whether charts share the table's sheet.
type SheetLayout string

const (
	LayoutSingle SheetLayout = "single"
	LayoutMulti  SheetLayout = "multi"
)

// PipelineOptions is the one switchboard for what used to be separate
// script variants.
type PipelineOptions struct {
	IncludeVariance bool           `json:"include_variance"`
	VarianceMode    VarianceMode   `json:"variance_mode"`
	PairPreset      PairPreset     `json:"pair_preset"`
	Pairs           []VariancePair `json:"pairs,omitempty"` // explicit pairs win over the preset
	ChartOutput     ChartOutput    `json:"chart_output"`
	SheetLayout     SheetLayout    `json:"sheet_layout"`
	Arrows          bool           `json:"arrows"`
}

// DefaultPipelineOptions matches the most complete script variant: relative
// variance of the latest run against every earlier one and of each run
// against its predecessor, arrows on, native charts on a second sheet.
func DefaultPipelineOptions() PipelineOptions {
	return PipelineOptions{
		IncludeVariance: true,
		VarianceMode:    VarianceRelativePercent,
		PairPreset:      PairPresetLatestAndConsecutive,
		ChartOutput:     ChartNative,
		SheetLayout:     LayoutMulti,
		Arrows:          true,
	}
}

// Validate checks the enumerated fields.
func (o PipelineOptions) Validate() error {
	if o.IncludeVariance && !o.VarianceMode.Valid() {
		return fmt.Errorf("unknown variance mode %q", o.VarianceMode)
	}
	switch o.PairPreset {
	case "", PairPresetNone, PairPresetLatest, PairPresetConsecutive, PairPresetLatestAndConsecutive:
	default:
		return fmt.Errorf("unknown pair preset %q", o.PairPreset)
	}
	switch o.ChartOutput {
	case "", ChartNone, ChartEmbeddedImage, ChartNative:
	default:
		return fmt.Errorf("unknown chart output %q", o.ChartOutput)
	}
	switch o.SheetLayout {
	case "", LayoutSingle, LayoutMulti:
	default:
		return fmt.Errorf("unknown sheet layout %q", o.SheetLayout)
	}
	return nil
}
