package dataprocessing

import (
	"fmt"
	"math"

	apperrors "perfmerge/internal/errors"
	"perfmerge/pkg/contracts/domain"
)

// Variance computes one derived cell. Either operand empty gives empty; in
// relative mode a zero reference gives empty instead of Inf or NaN.
func Variance(a, b domain.Value, mode domain.VarianceMode) domain.Value {
	av, aok := a.Get()
	bv, bok := b.Get()
	if !aok || !bok {
		return domain.Empty()
	}

	var result float64
	switch mode {
	case domain.VarianceAbsolute:
		result = av - bv
	case domain.VarianceRelativePercent:
		if av == 0 {
			return domain.Empty()
		}
		result = (av - bv) / av * 100
	default:
		return domain.Empty()
	}

	if math.IsNaN(result) || math.IsInf(result, 0) {
		return domain.Empty()
	}
	return domain.Some(result)
}

// DeriveVariance appends one column per pair, in pair order, to t. Pairs may
// reference columns derived by earlier pairs. All pairs are checked before
// anything is appended, so a bad pair leaves t untouched.
func DeriveVariance(t *domain.MergedTable, pairs []domain.VariancePair, mode domain.VarianceMode) error {
	if t == nil {
		return apperrors.NewAppValidationError("nil merged table")
	}
	if !mode.Valid() {
		return apperrors.NewConfigError(fmt.Sprintf("unknown variance mode %q", mode), nil)
	}
	if err := checkPairs(t, pairs); err != nil {
		return err
	}

	for _, p := range pairs {
		num, _ := t.Column(p.Numerator)
		den, _ := t.Column(p.Denominator)

		values := make([]domain.Value, len(t.Order))
		for k := range t.Order {
			values[k] = Variance(num.Values[k], den.Values[k], mode)
		}

		pair := p
		t.Columns = append(t.Columns, domain.Column{
			Label:  p.Label,
			Kind:   domain.ColumnKindVariance,
			Values: values,
			Pair:   &pair,
			Mode:   mode,
		})
	}
	return nil
}

func checkPairs(t *domain.MergedTable, pairs []domain.VariancePair) error {
	known := make(map[string]struct{}, len(t.Columns)+len(pairs))
	for _, c := range t.Columns {
		known[c.Label] = struct{}{}
	}
	for i, p := range pairs {
		if p.Label == "" {
			return apperrors.NewConfigError(fmt.Sprintf("variance pair %d has no label", i+1), nil)
		}
		if _, ok := known[p.Numerator]; !ok {
			return apperrors.NewConfigError(
				fmt.Sprintf("variance pair %q references unknown column %q", p.Label, p.Numerator), nil)
		}
		if _, ok := known[p.Denominator]; !ok {
			return apperrors.NewConfigError(
				fmt.Sprintf("variance pair %q references unknown column %q", p.Label, p.Denominator), nil)
		}
		if _, dup := known[p.Label]; dup {
			return apperrors.NewConfigError(fmt.Sprintf("column label %q already in use", p.Label), nil)
		}
		known[p.Label] = struct{}{}
	}
	return nil
}
