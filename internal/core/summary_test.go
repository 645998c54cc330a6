package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize_Scenario(t *testing.T) {
	sum, err := Summarize(scenarioTable(t), GenderTolerate)
	require.NoError(t, err)
	assert.Equal(t, Summary{Total: 2, Male: 1, Female: 1}, sum)
}

func TestSummarize_UnexpectedGender(t *testing.T) {
	table := mustTable(t,
		[]string{"1", "A", "1111111111111", "M", "Punjab"},
		[]string{"2", "B", "2222222222222", "F", "Sindh"},
		[]string{"3", "C", "3333333333333", "X", "Sindh"},
		[]string{"4", "D", "4444444444444", "", "KPK"},
		[]string{"5", "E", "5555555555555", "m", "KPK"},
	)

	t.Run("tolerate undercounts", func(t *testing.T) {
		sum, err := Summarize(table, GenderTolerate)
		require.NoError(t, err)
		assert.Equal(t, 5, sum.Total)
		assert.Equal(t, 1, sum.Male)
		assert.Equal(t, 1, sum.Female)
		assert.Equal(t, 3, sum.Unrecognized)
		assert.Less(t, sum.Male+sum.Female, sum.Total)
		assert.Equal(t, sum.Total, sum.Male+sum.Female+sum.Unrecognized)
	})

	t.Run("strict rejects", func(t *testing.T) {
		_, err := Summarize(table, GenderStrict)
		require.ErrorIs(t, err, ErrUnexpectedCategory)
		assert.Contains(t, err.Error(), `3 rows with "", "X", "m"`)
	})
}

func TestSummarize_StrictAcceptsClosedSet(t *testing.T) {
	sum, err := Summarize(scenarioTable(t), GenderStrict)
	require.NoError(t, err)
	assert.Equal(t, sum.Total, sum.Male+sum.Female)
}

func TestSummarize_Idempotent(t *testing.T) {
	table := scenarioTable(t)

	first, err := Summarize(table, GenderTolerate)
	require.NoError(t, err)
	second, err := Summarize(table, GenderTolerate)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestSummarize_NotLoaded(t *testing.T) {
	_, err := Summarize(nil, GenderTolerate)
	assert.ErrorIs(t, err, ErrNotLoaded)
}

func TestSummarize_EmptyTable(t *testing.T) {
	table, err := NewTable(testColumns, nil)
	require.NoError(t, err)

	sum, err := Summarize(table, GenderStrict)
	require.NoError(t, err)
	assert.Equal(t, Summary{}, sum)
}

func TestChartData_Province(t *testing.T) {
	table := mustTable(t,
		[]string{"1", "A", "1111111111111", "M", "Sindh"},
		[]string{"2", "B", "2222222222222", "F", "Punjab"},
		[]string{"3", "C", "3333333333333", "M", "Punjab"},
		[]string{"4", "D", "4444444444444", "M", "KPK"},
		[]string{"5", "E", "5555555555555", "F", ""},
		[]string{"6", "F", "6666666666666", "M", "Punjab"},
	)

	counts, err := ChartData(table, DimensionProvince)
	require.NoError(t, err)
	require.Len(t, counts, 3)

	assert.Equal(t, "Punjab", counts[0].Label)
	assert.Equal(t, 3, counts[0].Count)
	assert.Equal(t, "60", counts[0].Percent.String())

	// Sindh and KPK tie; Sindh appears first.
	assert.Equal(t, "Sindh", counts[1].Label)
	assert.Equal(t, "KPK", counts[2].Label)
	assert.Equal(t, "20", counts[2].Percent.String())
}

func TestChartData_GenderRounding(t *testing.T) {
	table := mustTable(t,
		[]string{"1", "A", "1111111111111", "M", "Sindh"},
		[]string{"2", "B", "2222222222222", "M", "Sindh"},
		[]string{"3", "C", "3333333333333", "F", "Sindh"},
	)

	counts, err := ChartData(table, DimensionGender)
	require.NoError(t, err)
	require.Len(t, counts, 2)
	assert.Equal(t, "M", counts[0].Label)
	assert.Equal(t, "66.7", counts[0].Percent.String())
	assert.Equal(t, "33.3", counts[1].Percent.String())
}

func TestChartData_Errors(t *testing.T) {
	_, err := ChartData(nil, DimensionGender)
	assert.ErrorIs(t, err, ErrNotLoaded)

	_, err = ChartData(scenarioTable(t), Dimension("district"))
	assert.ErrorIs(t, err, ErrUnknownDimension)
}

func TestParseDimension(t *testing.T) {
	d, err := ParseDimension("Province")
	require.NoError(t, err)
	assert.Equal(t, DimensionProvince, d)
	assert.True(t, d.Hole())

	d, err = ParseDimension("Non Filers (Male vs Female)")
	require.NoError(t, err)
	assert.Equal(t, DimensionGender, d)
	assert.False(t, d.Hole())

	_, err = ParseDimension("city")
	assert.ErrorIs(t, err, ErrUnknownDimension)
}

func TestParseGenderPolicy(t *testing.T) {
	p, err := ParseGenderPolicy("")
	require.NoError(t, err)
	assert.Equal(t, GenderTolerate, p)

	p, err = ParseGenderPolicy("STRICT")
	require.NoError(t, err)
	assert.Equal(t, GenderStrict, p)

	_, err = ParseGenderPolicy("ignore")
	assert.Error(t, err)
}
