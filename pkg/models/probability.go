package models

import "strconv"

// ThresholdValue is the likelihood of exceeding a flood depth threshold.
type ThresholdValue struct {
	Threshold int       `json:"threshold"`
	Data      Scenarios `json:"data"`
}

// ThresholdYear groups threshold likelihoods for one projection year.
type ThresholdYear struct {
	Year int              `json:"year"`
	Data []ThresholdValue `json:"data"`
}

// ReturnPeriodValue is the expected flood depth for a return period.
type ReturnPeriodValue struct {
	ReturnPeriod int       `json:"returnPeriod"`
	Data         Scenarios `json:"data"`
}

// ReturnPeriodYear groups return-period depths for one projection year.
type ReturnPeriodYear struct {
	Year int                 `json:"year"`
	Data []ReturnPeriodValue `json:"data"`
}

// CountBin is the number of properties falling in a depth bin.
type CountBin struct {
	Bin   int  `json:"bin"`
	Count *int `json:"count"`
}

// CountScenarios holds depth-bin counts per climate scenario.
type CountScenarios struct {
	Low  []CountBin `json:"low"`
	Mid  []CountBin `json:"mid"`
	High []CountBin `json:"high"`
}

// CountYear groups bin counts for one projection year.
type CountYear struct {
	Year int            `json:"year"`
	Data CountScenarios `json:"data"`
}

// LocationCount is a count summary for one enclosing location.
type LocationCount struct {
	FSID  *int64      `json:"fsid"`
	Name  *string     `json:"name"`
	Count []CountYear `json:"count"`
}

// ProbabilityChance is the per-year chance of flooding above thresholds.
type ProbabilityChance struct {
	FSID   *int64          `json:"fsid"`
	Chance []ThresholdYear `json:"chance"`
}

// ProbabilityCumulative is the cumulative chance of flooding above
// thresholds over the years.
type ProbabilityCumulative struct {
	FSID       *int64          `json:"fsid"`
	Cumulative []ThresholdYear `json:"cumulative"`
}

// ProbabilityDepth is the expected flood depth per return period and year.
type ProbabilityDepth struct {
	FSID  *int64             `json:"fsid"`
	Depth []ReturnPeriodYear `json:"depth"`
}

// ProbabilityCount is the number of properties per flood depth bin.
type ProbabilityCount struct {
	FSID  *int64      `json:"fsid"`
	Count []CountYear `json:"count"`
}

// ProbabilityCountSummary summarises property counts for every location
// enclosing a property.
type ProbabilityCountSummary struct {
	FSID         *int64          `json:"fsid"`
	State        []LocationCount `json:"state"`
	City         []LocationCount `json:"city"`
	Zcta         []LocationCount `json:"zcta"`
	Neighborhood []LocationCount `json:"neighborhood"`
	Tract        []LocationCount `json:"tract"`
	County       []LocationCount `json:"county"`
	Cd           []LocationCount `json:"cd"`
}

var (
	thresholdHeader    = []string{"fsid", "year", "threshold", "low", "mid", "high"}
	returnPeriodHeader = []string{"fsid", "year", "returnPeriod", "low", "mid", "high"}
	countHeader        = []string{"fsid", "year", "scenario", "bin", "count"}
	countSummaryHeader = []string{"fsid", "locationType", "locationFsid", "name", "year", "scenario", "bin", "count"}
)

// CSVHeader implements export.Record.
func (ProbabilityChance) CSVHeader() []string { return thresholdHeader }

// CSVRows implements export.Record.
func (c ProbabilityChance) CSVRows() [][]string {
	return thresholdRows(formatInt64(c.FSID), c.Chance)
}

// CSVHeader implements export.Record.
func (ProbabilityCumulative) CSVHeader() []string { return thresholdHeader }

// CSVRows implements export.Record.
func (c ProbabilityCumulative) CSVRows() [][]string {
	return thresholdRows(formatInt64(c.FSID), c.Cumulative)
}

// CSVHeader implements export.Record.
func (ProbabilityDepth) CSVHeader() []string { return returnPeriodHeader }

// CSVRows implements export.Record.
func (d ProbabilityDepth) CSVRows() [][]string {
	fsid := formatInt64(d.FSID)

	var rows [][]string
	for _, y := range d.Depth {
		year := strconv.Itoa(y.Year)
		for _, v := range y.Data {
			row := []string{fsid, year, strconv.Itoa(v.ReturnPeriod)}
			rows = append(rows, append(row, v.Data.csv()...))
		}
	}
	if len(rows) == 0 {
		rows = [][]string{{fsid, "", "", "", "", ""}}
	}
	return rows
}

// CSVHeader implements export.Record.
func (ProbabilityCount) CSVHeader() []string { return countHeader }

// CSVRows implements export.Record.
func (c ProbabilityCount) CSVRows() [][]string {
	fsid := formatInt64(c.FSID)

	var rows [][]string
	for _, r := range countRows(c.Count) {
		rows = append(rows, append([]string{fsid}, r...))
	}
	if len(rows) == 0 {
		rows = [][]string{{fsid, "", "", "", ""}}
	}
	return rows
}

// CSVHeader implements export.Record.
func (ProbabilityCountSummary) CSVHeader() []string { return countSummaryHeader }

// CSVRows implements export.Record.
func (s ProbabilityCountSummary) CSVRows() [][]string {
	fsid := formatInt64(s.FSID)
	groups := []struct {
		name      string
		locations []LocationCount
	}{
		{"state", s.State},
		{"city", s.City},
		{"zcta", s.Zcta},
		{"neighborhood", s.Neighborhood},
		{"tract", s.Tract},
		{"county", s.County},
		{"cd", s.Cd},
	}

	var rows [][]string
	for _, g := range groups {
		for _, loc := range g.locations {
			prefix := []string{fsid, g.name, formatInt64(loc.FSID), formatString(loc.Name)}
			counts := countRows(loc.Count)
			if len(counts) == 0 {
				rows = append(rows, append(prefix, "", "", "", ""))
				continue
			}
			for _, r := range counts {
				rows = append(rows, append(append([]string{}, prefix...), r...))
			}
		}
	}
	if len(rows) == 0 {
		rows = [][]string{{fsid, "", "", "", "", "", "", ""}}
	}
	return rows
}

func thresholdRows(fsid string, years []ThresholdYear) [][]string {
	var rows [][]string
	for _, y := range years {
		year := strconv.Itoa(y.Year)
		for _, v := range y.Data {
			row := []string{fsid, year, strconv.Itoa(v.Threshold)}
			rows = append(rows, append(row, v.Data.csv()...))
		}
	}
	if len(rows) == 0 {
		rows = [][]string{{fsid, "", "", "", "", ""}}
	}
	return rows
}

// countRows flattens years into [year, scenario, bin, count] rows.
func countRows(years []CountYear) [][]string {
	var rows [][]string
	for _, y := range years {
		year := strconv.Itoa(y.Year)
		scenarios := []struct {
			name string
			bins []CountBin
		}{
			{"low", y.Data.Low},
			{"mid", y.Data.Mid},
			{"high", y.Data.High},
		}
		for _, sc := range scenarios {
			for _, b := range sc.bins {
				rows = append(rows, []string{year, sc.name, strconv.Itoa(b.Bin), formatInt(b.Count)})
			}
		}
	}
	return rows
}
