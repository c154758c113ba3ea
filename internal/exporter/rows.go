package exporter

import (
	"fmt"
	"strconv"

	"github.com/IshtiaqMarwat/financial-data-analysis/internal/dataprocessing"
	"github.com/IshtiaqMarwat/financial-data-analysis/internal/table"
)

// undefinedLabel names the row that counts unlabelled cells.
const undefinedLabel = "(undefined)"

// artifactTable converts the table-shaped artifacts. The second return is
// false for reports.
func artifactTable(value any) (*table.Table, bool, error) {
	switch v := value.(type) {
	case *table.Table:
		return v, true, nil
	case *table.Column:
		t, err := table.New(v)
		return t, true, err
	default:
		return nil, false, nil
	}
}

// artifactRows flattens any artifact into a header and text rows so it can
// be written as CSV or a worksheet.
func artifactRows(value any) ([]string, [][]string, error) {
	t, ok, err := artifactTable(value)
	if err != nil {
		return nil, nil, err
	}
	if ok {
		headers, records := tableRecords(t)
		return headers, records, nil
	}

	switch v := value.(type) {
	case dataprocessing.RepairReport:
		return []string{"field", "value"}, [][]string{
			{"column", v.Column},
			{"mean", formatFloat(v.Mean)},
			{"total_rows", strconv.Itoa(v.TotalRows)},
			{"negative_count", strconv.Itoa(v.NegativeCount)},
			{"negative_percent", formatFloat(v.NegativePercent)},
			{"negative_mean", formatFloat(v.NegativeMean)},
		}, nil

	case dataprocessing.MissingValues:
		records := make([][]string, 0, len(v.Counts)+1)
		for _, c := range v.Counts {
			records = append(records, []string{c.Column, strconv.Itoa(c.Missing)})
		}
		records = append(records, []string{"total", strconv.Itoa(v.Total)})
		return []string{"column", "missing"}, records, nil

	case []dataprocessing.ColumnSkew:
		records := make([][]string, len(v))
		for i, s := range v {
			records[i] = []string{s.Column, formatFloat(s.Skewness)}
		}
		return []string{"column", "skewness"}, records, nil

	case dataprocessing.CorrelationMatrix:
		headers := append([]string{"column"}, v.Columns...)
		records := make([][]string, len(v.Values))
		for i, row := range v.Values {
			rec := make([]string, 0, len(row)+1)
			rec = append(rec, v.Columns[i])
			for _, r := range row {
				rec = append(rec, formatFloat(r))
			}
			records[i] = rec
		}
		return headers, records, nil

	case dataprocessing.LabelDistribution:
		records := make([][]string, 0, len(v.Counts)+1)
		for _, c := range v.Counts {
			records = append(records, []string{c.Label, strconv.Itoa(c.Count)})
		}
		if v.Undefined > 0 {
			records = append(records, []string{undefinedLabel, strconv.Itoa(v.Undefined)})
		}
		return []string{v.Column, "count"}, records, nil

	case dataprocessing.FlagSplit:
		records := make([][]string, 0, len(v.WithFlag)+len(v.WithoutFlag))
		for _, x := range v.WithFlag {
			records = append(records, []string{"1", formatFloat(x)})
		}
		for _, x := range v.WithoutFlag {
			records = append(records, []string{"0", formatFloat(x)})
		}
		return []string{v.Flag, v.Value}, records, nil

	case dataprocessing.DispersionSummary:
		records := make([][]string, len(v.Entries))
		for i, d := range v.Entries {
			lower, upper := d.Bounds(v.OutlierK)
			records[i] = []string{
				d.Column,
				formatFloat(d.Q1),
				formatFloat(d.Q3),
				formatFloat(d.IQR),
				formatFloat(lower),
				formatFloat(upper),
				strconv.Itoa(d.OutlierCount),
			}
		}
		return []string{"column", "q1", "q3", "iqr", "lower_fence", "upper_fence", "outlier_count"}, records, nil

	case []dataprocessing.PowerTransform:
		records := make([][]string, len(v))
		for i, p := range v {
			records[i] = []string{
				p.Column,
				formatFloat(p.Lambda),
				formatFloat(p.LogLikelihood),
				formatBool(p.Standardize),
				formatFloat(p.Mean),
				formatFloat(p.Std),
				strconv.Itoa(p.Rows),
			}
		}
		return []string{"column", "lambda", "log_likelihood", "standardize", "mean", "std", "rows"}, records, nil
	}

	return nil, nil, fmt.Errorf("unsupported artifact type %T", value)
}
