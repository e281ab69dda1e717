package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr[T any](v T) *T { return &v }

func TestAdaptationSummary_CSVRows(t *testing.T) {
	s := AdaptationSummary{FSID: ptr(int64(7935)), Adaptation: []int64{29, 31}, Properties: ptr(4)}

	assert.Equal(t, [][]string{
		{"7935", "29", "4"},
		{"7935", "31", "4"},
	}, s.CSVRows())

	empty := AdaptationSummary{FSID: ptr(int64(1))}
	assert.Equal(t, [][]string{{"1", "", ""}}, empty.CSVRows())
}

func TestAdaptationDetail_CSVRows(t *testing.T) {
	d, err := Decode[AdaptationDetail](json.RawMessage(adaptationDetailJSON))
	require.NoError(t, err)

	rows := d.CSVRows()
	require.Len(t, rows, 1)
	assert.Len(t, rows[0], len(d.CSVHeader()))
	assert.Equal(t, "29", rows[0][0])
	assert.Equal(t, "false", rows[0][4])
	assert.Equal(t, "390000257,390000258", rows[0][6])
	assert.Equal(t, "", rows[0][8])
}

func TestSummaryDetail_CSVRows(t *testing.T) {
	sd := SummaryDetail{
		Summary: []AdaptationSummary{
			{FSID: ptr(int64(100)), Adaptation: []int64{29, 99}},
			{FSID: ptr(int64(200))},
		},
		Detail: []AdaptationDetail{
			{AdaptationID: ptr(int64(29)), Name: ptr("Levee")},
		},
	}

	header := sd.CSVHeader()
	rows := sd.CSVRows()
	require.Len(t, rows, 3)
	for _, row := range rows {
		assert.Len(t, row, len(header))
	}

	assert.Equal(t, "adaptationId", header[1])
	assert.Equal(t, "name", header[3])
	assert.Equal(t, []string{"100", "29", ""}, rows[0][:3])
	assert.Equal(t, "Levee", rows[0][3])
	assert.Equal(t, "", rows[1][3])
	assert.Equal(t, "200", rows[2][0])
}

func TestProbabilityDepth_CSVRows(t *testing.T) {
	d, err := Decode[ProbabilityDepth](json.RawMessage(
		`{"fsid": 5, "depth": [{"year": 2020, "data": [{"returnPeriod": 2, "data": {"low": 1.5, "mid": null, "high": 3}}, {"returnPeriod": 5, "data": {}}]}]}`))
	require.NoError(t, err)

	assert.Equal(t, [][]string{
		{"5", "2020", "2", "1.5", "", "3"},
		{"5", "2020", "5", "", "", ""},
	}, d.CSVRows())

	var none ProbabilityDepth
	assert.Equal(t, [][]string{{"", "", "", "", "", ""}}, none.CSVRows())
}

func TestProbabilityChance_CSVRows(t *testing.T) {
	c := ProbabilityChance{
		FSID: ptr(int64(9)),
		Chance: []ThresholdYear{{
			Year: 2035,
			Data: []ThresholdValue{{Threshold: 15, Data: Scenarios{Low: ptr(0.1), Mid: ptr(0.2), High: ptr(0.3)}}},
		}},
	}
	assert.Equal(t, [][]string{{"9", "2035", "15", "0.1", "0.2", "0.3"}}, c.CSVRows())
	assert.Equal(t, thresholdHeader, ProbabilityCumulative{}.CSVHeader())
}

func TestProbabilityCount_CSVRows(t *testing.T) {
	c := ProbabilityCount{
		FSID: ptr(int64(7935)),
		Count: []CountYear{{
			Year: 2020,
			Data: CountScenarios{
				Low:  []CountBin{{Bin: 0, Count: ptr(10)}},
				High: []CountBin{{Bin: 15, Count: nil}},
			},
		}},
	}

	assert.Equal(t, [][]string{
		{"7935", "2020", "low", "0", "10"},
		{"7935", "2020", "high", "15", ""},
	}, c.CSVRows())
}

func TestProbabilityCountSummary_CSVRows(t *testing.T) {
	s := ProbabilityCountSummary{
		FSID: ptr(int64(1)),
		State: []LocationCount{{
			FSID: ptr(int64(39)),
			Name: ptr("Ohio"),
			Count: []CountYear{{
				Year: 2020,
				Data: CountScenarios{Mid: []CountBin{{Bin: 0, Count: ptr(7)}}},
			}},
		}},
		County: []LocationCount{{FSID: ptr(int64(39049)), Name: ptr("Franklin")}},
	}

	rows := s.CSVRows()
	assert.Equal(t, [][]string{
		{"1", "state", "39", "Ohio", "2020", "mid", "0", "7"},
		{"1", "county", "39049", "Franklin", "", "", "", ""},
	}, rows)
	for _, row := range rows {
		assert.Len(t, row, len(s.CSVHeader()))
	}
}
