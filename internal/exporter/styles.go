package exporter

import (
	"github.com/xuri/excelize/v2"

	"perfmerge/pkg/contracts/domain"
)

// cellClass identifies one visual treatment in the workbook.
type cellClass int

const (
	classHeader cellClass = iota
	classPlain            // key column and empty slots
	classReportOK
	classReportWarn
	classReportSevere
	classVarianceUp
	classVarianceDown
	classVarianceFlat
	classVarianceUpArrow
	classVarianceDownArrow
	classVarianceFlatArrow
)

const (
	colorRed    = "FF0000"
	colorOrange = "FFA500"
	colorGreen  = "00B300"
	colorBlack  = "000000"
	colorHeader = "ADD8E6"
)

// Arrow number formats keep variance cells numeric while rendering the
// direction next to the value.
const (
	numFmtVariance  = "0.00"
	numFmtArrowUp   = `0.00" % ↑"`
	numFmtArrowDown = `0.00" % ↓"`
	numFmtArrowFlat = `0.00" % →"`
)

var thinBorder = []excelize.Border{
	{Type: "left", Color: colorBlack, Style: 1},
	{Type: "right", Color: colorBlack, Style: 1},
	{Type: "top", Color: colorBlack, Style: 1},
	{Type: "bottom", Color: colorBlack, Style: 1},
}

// styleFor returns a fresh definition for class. The table is static; ids
// are only assigned when a workbook registers the style.
func styleFor(class cellClass) *excelize.Style {
	s := &excelize.Style{Border: append([]excelize.Border(nil), thinBorder...)}
	switch class {
	case classHeader:
		s.Font = &excelize.Font{Bold: true}
		s.Fill = excelize.Fill{Type: "pattern", Color: []string{colorHeader}, Pattern: 1}
	case classReportOK:
		s.Font = &excelize.Font{Bold: true, Color: colorGreen}
	case classReportWarn:
		s.Font = &excelize.Font{Bold: true, Color: colorOrange}
	case classReportSevere:
		s.Font = &excelize.Font{Bold: true, Color: colorRed}
	case classVarianceUp:
		s.Font = &excelize.Font{Bold: true, Color: colorRed}
		s.CustomNumFmt = strPtr(numFmtVariance)
	case classVarianceDown:
		s.Font = &excelize.Font{Bold: true, Color: colorGreen}
		s.CustomNumFmt = strPtr(numFmtVariance)
	case classVarianceFlat:
		s.Font = &excelize.Font{Bold: true, Color: colorBlack}
		s.CustomNumFmt = strPtr(numFmtVariance)
	case classVarianceUpArrow:
		s.Font = &excelize.Font{Bold: true, Color: colorRed}
		s.CustomNumFmt = strPtr(numFmtArrowUp)
	case classVarianceDownArrow:
		s.Font = &excelize.Font{Bold: true, Color: colorGreen}
		s.CustomNumFmt = strPtr(numFmtArrowDown)
	case classVarianceFlatArrow:
		s.Font = &excelize.Font{Bold: true, Color: colorBlack}
		s.CustomNumFmt = strPtr(numFmtArrowFlat)
	}
	return s
}

// reportClass maps a raw timing grade onto its cell class.
func reportClass(s domain.Severity) cellClass {
	switch s {
	case domain.SeveritySevere:
		return classReportSevere
	case domain.SeverityWarn:
		return classReportWarn
	case domain.SeverityOK:
		return classReportOK
	}
	return classPlain
}

// varianceClass maps a variance direction onto its cell class.
func varianceClass(tr domain.Trend, arrows bool) cellClass {
	switch tr {
	case domain.TrendUp:
		if arrows {
			return classVarianceUpArrow
		}
		return classVarianceUp
	case domain.TrendDown:
		if arrows {
			return classVarianceDownArrow
		}
		return classVarianceDown
	case domain.TrendFlat:
		if arrows {
			return classVarianceFlatArrow
		}
		return classVarianceFlat
	}
	return classPlain
}

// styleRegistry hands out excelize style ids for one workbook, registering
// each class the first time it is used.
type styleRegistry struct {
	f   *excelize.File
	ids map[cellClass]int
}

func newStyleRegistry(f *excelize.File) *styleRegistry {
	return &styleRegistry{f: f, ids: make(map[cellClass]int)}
}

func (r *styleRegistry) id(class cellClass) (int, error) {
	if id, ok := r.ids[class]; ok {
		return id, nil
	}
	id, err := r.f.NewStyle(styleFor(class))
	if err != nil {
		return 0, err
	}
	r.ids[class] = id
	return id, nil
}

func strPtr(s string) *string {
	return &s
}
