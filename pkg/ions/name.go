// Package ions collapses adduct ions of the same lipid species that elute
// within a retention-time tolerance.
package ions

import (
	"fmt"
	"strings"

	"github.com/ChrisMcGann/LipidX/pkg/core"
)

// NegativeIonsWithPlus lists adducts written with a '+' although they are
// detected in negative mode.
var NegativeIonsWithPlus = []string{"HCOO", "CH3COO", "CL"}

// IonName is a row name split as <lipid><charge sign><adduct>_<ret time>.
type IonName struct {
	LipidCharge string // lipid up to and including the charge sign
	Adduct      string
	RetTime     string
}

// ParseName splits a row name. The retention-time suffix starts after the
// last '_', and the charge sign is the last '+' or '-' before it.
func ParseName(name string) (IonName, error) {
	us := strings.LastIndexByte(name, '_')
	if us < 0 {
		return IonName{}, fmt.Errorf("%q: no retention time suffix: %w", name, core.ErrUngroupableRow)
	}
	ion := name[:us]

	sign := -1
	for i := len(ion) - 1; i >= 0; i-- {
		if ion[i] == '+' || ion[i] == '-' {
			sign = i
			break
		}
	}
	if sign <= 0 {
		return IonName{}, fmt.Errorf("%q: no charge sign: %w", name, core.ErrUngroupableRow)
	}

	return IonName{
		LipidCharge: ion[:sign+1],
		Adduct:      ion[sign+1:],
		RetTime:     name[us+1:],
	}, nil
}

// GroupKey returns the clustering key of the ion: its lipid charge, with
// negative-mode adducts written as ")+" rewritten to ")-".
func (n IonName) GroupKey() string {
	for _, neg := range NegativeIonsWithPlus {
		if strings.EqualFold(n.Adduct, neg) {
			return strings.ReplaceAll(n.LipidCharge, ")+", ")-")
		}
	}
	return n.LipidCharge
}
