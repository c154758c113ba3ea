package dataprocessing

import (
	"math"
	"sort"
	"strconv"

	"github.com/IshtiaqMarwat/financial-data-analysis/internal/table"
	"github.com/IshtiaqMarwat/financial-data-analysis/pkg/contracts/domain"
)

// EducationLevel is the label category for an Education code.
type EducationLevel int

const (
	// EducationUnclassified is returned for codes outside 1..3. Its label is
	// undefined.
	EducationUnclassified EducationLevel = iota
	EducationUndergrad
	EducationGraduate
	EducationProfessional
)

// ClassifyEducation maps an Education code to its level. It never fails.
func ClassifyEducation(code int64) EducationLevel {
	switch code {
	case 1:
		return EducationUndergrad
	case 2:
		return EducationGraduate
	case 3:
		return EducationProfessional
	default:
		return EducationUnclassified
	}
}

// Label returns the level's label and false for EducationUnclassified.
func (e EducationLevel) Label() (string, bool) {
	switch e {
	case EducationUndergrad:
		return domain.EducationLabelUndergrad, true
	case EducationGraduate:
		return domain.EducationLabelGraduate, true
	case EducationProfessional:
		return domain.EducationLabelProfessional, true
	default:
		return "", false
	}
}

func (e EducationLevel) String() string {
	if l, ok := e.Label(); ok {
		return l
	}
	return "Unclassified"
}

// AccountHolderCategory partitions customers by whether they hold a
// securities account and a certificate of deposit account.
type AccountHolderCategory int

const (
	// AccountHolderUnclassified is returned when a flag is not 0 or 1.
	AccountHolderUnclassified AccountHolderCategory = iota
	AccountHolderBoth
	AccountHolderNeither
	AccountHolderSecuritiesOnly
	AccountHolderDepositOnly
)

// ClassifyAccountHolder maps the two 0/1 account flags to a category.
func ClassifyAccountHolder(securities, deposit int64) AccountHolderCategory {
	switch {
	case securities == 1 && deposit == 1:
		return AccountHolderBoth
	case securities == 0 && deposit == 0:
		return AccountHolderNeither
	case securities == 1 && deposit == 0:
		return AccountHolderSecuritiesOnly
	case securities == 0 && deposit == 1:
		return AccountHolderDepositOnly
	default:
		return AccountHolderUnclassified
	}
}

// Label returns the category's label and false for
// AccountHolderUnclassified.
func (c AccountHolderCategory) Label() (string, bool) {
	switch c {
	case AccountHolderBoth:
		return domain.AccountLabelBoth, true
	case AccountHolderNeither:
		return domain.AccountLabelNeither, true
	case AccountHolderSecuritiesOnly:
		return domain.AccountLabelSecuritiesOnly, true
	case AccountHolderDepositOnly:
		return domain.AccountLabelDepositOnly, true
	default:
		return "", false
	}
}

func (c AccountHolderCategory) String() string {
	if l, ok := c.Label(); ok {
		return l
	}
	return "Unclassified"
}

// DeriveEducation appends the Edu label column computed from Education.
func DeriveEducation(t *table.Table) (*table.Table, error) {
	src, err := numericColumn(t, domain.ColumnEducation)
	if err != nil {
		return nil, err
	}

	n := src.Len()
	labels := make([]string, n)
	defined := make([]bool, n)
	for i := 0; i < n; i++ {
		code, ok := wholeNumber(src.Float(i))
		if !ok {
			continue
		}
		labels[i], defined[i] = ClassifyEducation(code).Label()
	}
	return t.WithColumn(table.NewStringColumn(domain.ColumnEdu, labels, defined))
}

// DeriveAccountHolder appends the Account_Holder_Cat label column computed
// from Securities Account and CD Account.
func DeriveAccountHolder(t *table.Table) (*table.Table, error) {
	sec, err := numericColumn(t, domain.ColumnSecuritiesAccount)
	if err != nil {
		return nil, err
	}
	cd, err := numericColumn(t, domain.ColumnCDAccount)
	if err != nil {
		return nil, err
	}

	n := sec.Len()
	labels := make([]string, n)
	defined := make([]bool, n)
	for i := 0; i < n; i++ {
		s, okS := wholeNumber(sec.Float(i))
		d, okD := wholeNumber(cd.Float(i))
		if !okS || !okD {
			continue
		}
		labels[i], defined[i] = ClassifyAccountHolder(s, d).Label()
	}
	return t.WithColumn(table.NewStringColumn(domain.ColumnAccountHolderCat, labels, defined))
}

func wholeNumber(v float64) (int64, bool) {
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return 0, false
	}
	return int64(v), true
}

// LabelCount is the number of rows carrying one label.
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// LabelDistribution counts the values of one column.
type LabelDistribution struct {
	Column string       `json:"column"`
	Counts []LabelCount `json:"counts"`
	// Undefined counts unlabelled cells; they are not part of Counts.
	Undefined int `json:"undefined"`
	Total     int `json:"total"`
}

// Count returns the number of rows with label.
func (d LabelDistribution) Count(label string) int {
	for _, c := range d.Counts {
		if c.Label == label {
			return c.Count
		}
	}
	return 0
}

// Distribution counts the values of col, sorted by label ascending.
// Numeric cells are counted by their decimal form; NaN cells are undefined.
func Distribution(col *table.Column) LabelDistribution {
	dist := LabelDistribution{Column: col.Name(), Total: col.Len()}
	counts := make(map[string]int)

	for i := 0; i < col.Len(); i++ {
		var label string
		ok := true
		if col.Kind() == table.KindString {
			label, ok = col.Label(i)
		} else {
			v := col.Float(i)
			if math.IsNaN(v) {
				ok = false
			} else {
				label = strconv.FormatFloat(v, 'f', -1, 64)
			}
		}
		if !ok {
			dist.Undefined++
			continue
		}
		counts[label]++
	}

	dist.Counts = make([]LabelCount, 0, len(counts))
	for label, n := range counts {
		dist.Counts = append(dist.Counts, LabelCount{Label: label, Count: n})
	}
	sort.Slice(dist.Counts, func(i, j int) bool {
		return dist.Counts[i].Label < dist.Counts[j].Label
	})
	return dist
}
