package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultTablePoints(t *testing.T) {
	table := DefaultTable()

	tests := []struct {
		place int
		want  int
	}{
		{1, 300},
		{2, 240},
		{3, 195},
		{4, 150},
		{5, 150},
		{6, 90},
		{7, 90},
		{10, 90},
		{11, 30},
		{15, 30},
	}
	for _, tt := range tests {
		got, err := table.Points(tt.place)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got, "place %d", tt.place)
	}
}

func TestPointsRejectsNonPositivePlace(t *testing.T) {
	table := DefaultTable()
	for _, place := range []int{0, -1} {
		_, err := table.Points(place)
		assert.ErrorIs(t, err, ErrInvalidPlace)
	}
}

func TestZeroTableUsesDefaultTier(t *testing.T) {
	var table Table
	got, err := table.Points(1)
	require.NoError(t, err)
	assert.Equal(t, DefaultPlacementPoints, got)
}

func TestParseTable(t *testing.T) {
	table, err := ParseTable("6-10:90, 1:300,2:240,3:195,4-5:150")
	require.NoError(t, err)
	assert.Equal(t, DefaultTable().Tiers, table.Tiers)
	assert.Equal(t, "1:300,2:240,3:195,4-5:150,6-10:90", table.String())
}

func TestParseTableErrors(t *testing.T) {
	for _, in := range []string{"", "1=300", "0:10", "3-2:10", "1:x", "1-3:10,2:5"} {
		_, err := ParseTable(in)
		assert.ErrorIs(t, err, ErrInvalidTable, "input %q", in)
	}
}

func TestUnmarshalTextKeepsDefault(t *testing.T) {
	table := Table{Default: 10}
	require.NoError(t, table.UnmarshalText([]byte("1:50")))

	got, err := table.Points(2)
	require.NoError(t, err)
	assert.Equal(t, 10, got)
}
