package transform

import (
	"strings"

	"github.com/ChrisMcGann/LipidX/pkg/core"
)

// DefaultRemoveColumns lists the export metrics dropped unless configured
// otherwise.
var DefaultRemoveColumns = []string{
	"ARatio", "HRatio", "ADiff", "HDiff", "GroupHeight", "HeightRSD",
	"Height", "NormArea", "NormHeight", "Hwhm(L)", "Hwhm(R)", "AreaScore", "DataId", "Scan",
	"It.", "z", "Delta(Da)", "mScore", "Occupy",
}

// RemoveColumns drops every column whose metric prefix, compared
// case-insensitively, appears in the comma-separated list. In whitelist mode
// only the matching columns are kept. The name and ret_time identity columns
// are always kept.
func RemoveColumns(t *core.Table, list string, whitelist bool) (*core.Table, error) {
	if t.Len() == 0 {
		return t, nil
	}

	metrics := make(map[string]bool)
	for _, m := range strings.Split(list, ",") {
		m = strings.ToLower(strings.TrimSpace(m))
		if m != "" {
			metrics[m] = true
		}
	}

	var keep []string
	for _, col := range t.Columns() {
		if col == core.ColName || col == core.ColRetTime {
			keep = append(keep, col)
			continue
		}
		matched := metrics[strings.ToLower(core.MetricOf(col))]
		if matched == whitelist {
			keep = append(keep, col)
		}
	}
	return t.Project(keep), nil
}
