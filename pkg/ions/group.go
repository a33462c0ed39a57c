package ions

import (
	"math"

	"github.com/ChrisMcGann/LipidX/pkg/core"
)

// DefaultTolerance is the retention-time window, in minutes, within which
// ions of the same lipid charge are considered one species.
const DefaultTolerance = 0.9

// Cluster is one retention-time bucket of a lipid charge.
type Cluster struct {
	Key     string
	RetTime float64 // representative time: ret_time of the first member
	Members []string
	Keep    string
}

// Clusters assigns every row to a bucket. A row joins the bucket of its key
// whose representative time is closest, provided the difference is strictly
// below within; otherwise it opens a new bucket. Equal distances go to the
// earlier bucket. Buckets are returned in creation order with Keep set to the
// member of greatest mean area, first seen on ties.
func Clusters(t *core.Table, within float64) ([]*Cluster, error) {
	var clusters []*Cluster
	byKey := make(map[string][]*Cluster)

	for _, row := range t.Rows() {
		ion, err := ParseName(row.Name())
		if err != nil {
			return nil, err
		}
		key := ion.GroupKey()
		retTime, err := row.Float(core.ColRetTime)
		if err != nil {
			return nil, err
		}

		var best *Cluster
		bestDiff := math.Inf(1)
		for _, c := range byKey[key] {
			diff := math.Abs(retTime - c.RetTime)
			if diff < within && diff < bestDiff {
				best, bestDiff = c, diff
			}
		}
		if best == nil {
			best = &Cluster{Key: key, RetTime: retTime}
			byKey[key] = append(byKey[key], best)
			clusters = append(clusters, best)
		}
		best.Members = append(best.Members, row.Name())
	}

	for _, c := range clusters {
		keep, err := strongest(t, c.Members)
		if err != nil {
			return nil, err
		}
		c.Keep = keep
	}
	return clusters, nil
}

// strongest returns the member with the greatest mean area.
func strongest(t *core.Table, members []string) (string, error) {
	keep := members[0]
	if len(members) == 1 {
		return keep, nil
	}
	best := math.Inf(-1)
	for _, name := range members {
		row, _ := t.Row(name)
		mean, err := row.MeanArea()
		if err != nil {
			return "", err
		}
		if mean > best {
			best, keep = mean, name
		}
	}
	return keep, nil
}

// Group keeps one row per cluster, dropping the weaker adduct ions.
func Group(t *core.Table, within float64) (*core.Table, error) {
	if t.Len() == 0 {
		return t, nil
	}
	clusters, err := Clusters(t, within)
	if err != nil {
		return nil, err
	}

	drop := make(map[string]bool)
	for _, c := range clusters {
		for _, name := range c.Members {
			if name != c.Keep {
				drop[name] = true
			}
		}
	}
	return t.Filter(func(row *core.Row) (bool, error) {
		return !drop[row.Name()], nil
	})
}
