package dataprocessing

import (
	"fmt"

	"perfmerge/pkg/contracts/domain"
)

// LatestVsEach compares the last label against every earlier one.
func LatestVsEach(labels []string) []domain.VariancePair {
	if len(labels) < 2 {
		return nil
	}
	latest := labels[len(labels)-1]
	pairs := make([]domain.VariancePair, 0, len(labels)-1)
	for _, l := range labels[:len(labels)-1] {
		pairs = append(pairs, domain.VariancePair{
			Numerator:   latest,
			Denominator: l,
			Label:       domain.VsLabel(latest, l),
		})
	}
	return pairs
}

// Consecutive compares each run with its predecessor, newest first.
func Consecutive(labels []string) []domain.VariancePair {
	if len(labels) < 2 {
		return nil
	}
	pairs := make([]domain.VariancePair, 0, len(labels)-1)
	for i := len(labels) - 1; i >= 1; i-- {
		pairs = append(pairs, domain.VariancePair{
			Numerator:   labels[i],
			Denominator: labels[i-1],
			Label:       domain.VsLabel(labels[i], labels[i-1]),
		})
	}
	return pairs
}

// LatestAndConsecutive is LatestVsEach followed by the consecutive pairs it
// does not already cover.
func LatestAndConsecutive(labels []string) []domain.VariancePair {
	pairs := LatestVsEach(labels)
	have := make(map[string]struct{}, len(pairs))
	for _, p := range pairs {
		have[p.Label] = struct{}{}
	}
	for _, p := range Consecutive(labels) {
		if _, ok := have[p.Label]; ok {
			continue
		}
		pairs = append(pairs, p)
	}
	return pairs
}

// PairsForPreset expands a preset over the given report labels.
func PairsForPreset(preset domain.PairPreset, labels []string) ([]domain.VariancePair, error) {
	switch preset {
	case domain.PairPresetNone, "":
		return nil, nil
	case domain.PairPresetLatest:
		return LatestVsEach(labels), nil
	case domain.PairPresetConsecutive:
		return Consecutive(labels), nil
	case domain.PairPresetLatestAndConsecutive:
		return LatestAndConsecutive(labels), nil
	}
	return nil, fmt.Errorf("unknown pair preset %q", preset)
}
