package ions

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ChrisMcGann/LipidX/pkg/core"
)

func TestParseName(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    IonName
		wantKey string
		wantErr bool
	}{
		{
			name:    "protonated",
			in:      "PC(16:0/18:1)+H_12.5",
			want:    IonName{LipidCharge: "PC(16:0/18:1)+", Adduct: "H", RetTime: "12.5"},
			wantKey: "PC(16:0/18:1)+",
		},
		{
			name:    "deprotonated",
			in:      "PE(18:0/20:4)-H_10.2",
			want:    IonName{LipidCharge: "PE(18:0/20:4)-", Adduct: "H", RetTime: "10.2"},
			wantKey: "PE(18:0/20:4)-",
		},
		{
			name:    "formate written with plus",
			in:      "PC(16:0/18:1)+HCOO_12.6",
			want:    IonName{LipidCharge: "PC(16:0/18:1)+", Adduct: "HCOO", RetTime: "12.6"},
			wantKey: "PC(16:0/18:1)-",
		},
		{
			name:    "chloride in mixed case",
			in:      "Cer(d18:1/16:0)+Cl_9.0",
			want:    IonName{LipidCharge: "Cer(d18:1/16:0)+", Adduct: "Cl", RetTime: "9.0"},
			wantKey: "Cer(d18:1/16:0)-",
		},
		{
			name:    "ether lipid dash inside name",
			in:      "PE(O-16:0/18:1)+NH4_8.0",
			want:    IonName{LipidCharge: "PE(O-16:0/18:1)+", Adduct: "NH4", RetTime: "8.0"},
			wantKey: "PE(O-16:0/18:1)+",
		},
		{
			name:    "water loss uses last sign",
			in:      "MG(18:1)+H-H2O_4.0",
			want:    IonName{LipidCharge: "MG(18:1)+H-", Adduct: "H2O", RetTime: "4.0"},
			wantKey: "MG(18:1)+H-",
		},
		{name: "no suffix", in: "PC(34:1)+H", wantErr: true},
		{name: "no sign", in: "PC(34:1)H_1.0", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseName(tt.in)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrUngroupableRow)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.wantKey, got.GroupKey())
		})
	}
}

func ionTable(t *testing.T, rows [][]string) *core.Table {
	t.Helper()
	tbl := core.NewTable([]string{core.ColName, core.ColRetTime, "Area[s1-1]", "Area[s1-2]"})
	for _, r := range rows {
		_, err := tbl.Append(r[0], r)
		require.NoError(t, err)
	}
	return tbl
}

func TestGroupKeepsStrongestIon(t *testing.T) {
	tbl := ionTable(t, [][]string{
		{"PC(34:1)+H_10.0", "10.0", "100", "100"},
		{"PC(34:1)+Na_10.5", "10.5", "300", "300"},
		{"PC(34:1)+NH4_12.0", "12.0", "50", "50"},
		{"PC(34:1)-H_10.1", "10.1", "10", "10"},
		{"PC(34:1)+HCOO_10.2", "10.2", "20", "20"},
		{"PE(36:2)+H_5.0", "5.0", "1", "1"},
	})

	out, err := Group(tbl, DefaultTolerance)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"PC(34:1)+Na_10.5",
		"PC(34:1)+NH4_12.0",
		"PC(34:1)+HCOO_10.2",
		"PE(36:2)+H_5.0",
	}, out.Names())
	assert.Equal(t, 6, tbl.Len())
}

func TestClustersChooseClosestBucket(t *testing.T) {
	tbl := ionTable(t, [][]string{
		{"PC(34:1)+H_10.0", "10.0", "1", "1"},
		{"PC(34:1)+Na_11.0", "11.0", "1", "1"},
		{"PC(34:1)+K_10.6", "10.6", "5", "5"},
	})

	clusters, err := Clusters(tbl, DefaultTolerance)
	require.NoError(t, err)
	require.Len(t, clusters, 2)

	assert.Equal(t, []string{"PC(34:1)+H_10.0"}, clusters[0].Members)
	assert.Equal(t, []string{"PC(34:1)+Na_11.0", "PC(34:1)+K_10.6"}, clusters[1].Members)
	assert.Equal(t, "PC(34:1)+K_10.6", clusters[1].Keep)
}

func TestClustersToleranceIsStrict(t *testing.T) {
	tbl := ionTable(t, [][]string{
		{"PC(34:1)+H_10.0", "10.0", "1", "1"},
		{"PC(34:1)+Na_10.5", "10.5", "1", "1"},
	})

	clusters, err := Clusters(tbl, 0.5)
	require.NoError(t, err)
	assert.Len(t, clusters, 2)
}

func TestClustersTieKeepsFirstSeen(t *testing.T) {
	tbl := ionTable(t, [][]string{
		{"PC(34:1)+H_10.0", "10.0", "0", "0"},
		{"PC(34:1)+Na_10.1", "10.1", "0", "0"},
	})

	out, err := Group(tbl, DefaultTolerance)
	require.NoError(t, err)
	assert.Equal(t, []string{"PC(34:1)+H_10.0"}, out.Names())
}

func TestGroupUngroupableRow(t *testing.T) {
	tbl := ionTable(t, [][]string{{"Unknown_1.0", "1.0", "1", "1"}})

	_, err := Group(tbl, DefaultTolerance)
	assert.ErrorIs(t, err, core.ErrUngroupableRow)
}
