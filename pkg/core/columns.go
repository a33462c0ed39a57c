package core

import "strings"

// Metric prefixes of the instrument export. Bracketed prefixes match only the
// metric itself, so Area[ never matches GroupArea[.
const (
	AreaPrefix        = "Area["
	GroupAreaPrefix   = "GroupArea["
	GroupPQPrefix     = "GroupPQ["
	GroupSNPrefix     = "GroupS/N["
	GroupHeightPrefix = "GroupHeight["
	GroupTopPosPrefix = "GroupTopPos"
	GroupAVGPrefix    = "GroupAVG["
	GroupRSDPrefix    = "GroupRSD["

	ColLipidIon = "LipidIon"
	ColClass    = "Class"
	ColReject   = "Rej."
)

// MetricOf returns the metric prefix of a column: the text before the first
// '[', or the whole name when there is no bracket.
func MetricOf(col string) string {
	if i := strings.IndexByte(col, '['); i >= 0 {
		return col[:i]
	}
	return col
}

// SampleOf returns the bracket content of a column, e.g. "s1-2" for
// "Area[s1-2]".
func SampleOf(col string) (string, error) {
	open := strings.IndexByte(col, '[')
	if open < 0 {
		return "", &ColumnError{Column: col, Err: ErrMalformedColumnName}
	}
	rest := col[open+1:]
	end := strings.IndexByte(rest, ']')
	if end < 0 {
		return "", &ColumnError{Column: col, Err: ErrMalformedColumnName}
	}
	return rest[:end], nil
}

// GroupAndIndex splits a metric[group-index] column into its group label and
// replicate index.
func GroupAndIndex(col string) (group, index string, err error) {
	sample, err := SampleOf(col)
	if err != nil {
		return "", "", err
	}
	group, index, ok := strings.Cut(sample, "-")
	if !ok || group == "" || index == "" {
		return "", "", &ColumnError{Column: col, Err: ErrMalformedColumnName}
	}
	return group, index, nil
}

// AreaColumn builds the replicate area column for a group.
func AreaColumn(group, index string) string {
	return AreaPrefix + group + "-" + index + "]"
}

// GroupAreaPrefixFor is the prefix shared by all replicate area columns of group.
func GroupAreaPrefixFor(group string) string {
	return AreaPrefix + group + "-"
}

// Groups is the registry of sample groups and their replicate indices, in
// first-seen column order.
type Groups struct {
	labels     []string
	replicates map[string][]string
}

// DiscoverGroups scans the Area[...] columns and builds the group registry.
func DiscoverGroups(columns []string) (*Groups, error) {
	g := &Groups{replicates: make(map[string][]string)}
	for _, col := range columns {
		if !strings.HasPrefix(col, AreaPrefix) {
			continue
		}
		group, index, err := GroupAndIndex(col)
		if err != nil {
			return nil, err
		}
		if _, ok := g.replicates[group]; !ok {
			g.labels = append(g.labels, group)
		}
		g.replicates[group] = append(g.replicates[group], index)
	}
	return g, nil
}

// Labels returns the group labels in order.
func (g *Groups) Labels() []string {
	out := make([]string, len(g.labels))
	copy(out, g.labels)
	return out
}

// Replicates returns the replicate indices of a group.
func (g *Groups) Replicates(group string) []string {
	return g.replicates[group]
}

// Has reports whether group exists.
func (g *Groups) Has(group string) bool {
	_, ok := g.replicates[group]
	return ok
}

// Len returns the number of groups.
func (g *Groups) Len() int {
	return len(g.labels)
}

// Position returns the 0-based position of a replicate index within its group.
func (g *Groups) Position(group, index string) int {
	for i, idx := range g.replicates[group] {
		if idx == index {
			return i
		}
	}
	return -1
}
