package models

import (
	"encoding/json"
	"slices"
	"strconv"

	"github.com/Sternrassler/fsf-client/pkg/search"
)

// Serving lists the FSIDs an adaptation project protects, per location type.
type Serving struct {
	Property     []int64 `json:"property"`
	Neighborhood []int64 `json:"neighborhood"`
	Zcta         []int64 `json:"zcta"`
	Tract        []int64 `json:"tract"`
	City         []int64 `json:"city"`
	County       []int64 `json:"county"`
	Cd           []int64 `json:"cd"`
	State        []int64 `json:"state"`
}

// AdaptationDetail describes a single flood adaptation project.
type AdaptationDetail struct {
	AdaptationID *int64          `json:"adaptationId"`
	Name         *string         `json:"name"`
	Type         *string         `json:"type"`
	Scenario     *string         `json:"scenario"`
	Conveyance   *bool           `json:"conveyance"`
	ReturnPeriod *int            `json:"returnPeriod"`
	Serving      Serving         `json:"serving"`
	Geometry     json.RawMessage `json:"geometry,omitempty"`
}

var adaptationDetailHeader = []string{
	"adaptationId", "name", "type", "scenario", "conveyance", "returnPeriod",
	"serving_property", "serving_neighborhood", "serving_zcta", "serving_tract",
	"serving_city", "serving_county", "serving_cd", "serving_state", "geometry",
}

// CSVHeader implements export.Record.
func (AdaptationDetail) CSVHeader() []string {
	return adaptationDetailHeader
}

// CSVRows implements export.Record.
func (d AdaptationDetail) CSVRows() [][]string {
	return [][]string{d.row()}
}

func (d AdaptationDetail) row() []string {
	return []string{
		formatInt64(d.AdaptationID),
		formatString(d.Name),
		formatString(d.Type),
		formatString(d.Scenario),
		formatBool(d.Conveyance),
		formatInt(d.ReturnPeriod),
		formatIDs(d.Serving.Property),
		formatIDs(d.Serving.Neighborhood),
		formatIDs(d.Serving.Zcta),
		formatIDs(d.Serving.Tract),
		formatIDs(d.Serving.City),
		formatIDs(d.Serving.County),
		formatIDs(d.Serving.Cd),
		formatIDs(d.Serving.State),
		string(d.Geometry),
	}
}

// AdaptationSummary lists the adaptation projects touching a location.
type AdaptationSummary struct {
	FSID       *int64  `json:"fsid"`
	Adaptation []int64 `json:"adaptation"`
	Properties *int    `json:"properties"`
}

var adaptationSummaryHeader = []string{"fsid", "adaptationId", "properties"}

// CSVHeader implements export.Record.
func (AdaptationSummary) CSVHeader() []string {
	return adaptationSummaryHeader
}

// CSVRows implements export.Record. One row is written per adaptation ID;
// a summary without adaptations still gets a single row.
func (s AdaptationSummary) CSVRows() [][]string {
	fsid := formatInt64(s.FSID)
	props := formatInt(s.Properties)

	if len(s.Adaptation) == 0 {
		return [][]string{{fsid, "", props}}
	}

	rows := make([][]string, 0, len(s.Adaptation))
	for _, id := range s.Adaptation {
		rows = append(rows, []string{fsid, strconv.FormatInt(id, 10), props})
	}
	return rows
}

// IDSet is a sorted, duplicate-free set of adaptation IDs referenced by a
// group of summaries. It is the input of the detail phase of a
// summary-detail query.
type IDSet []int64

// AdaptationIDs collects the union of adaptation IDs across summaries.
func AdaptationIDs(summaries []AdaptationSummary) IDSet {
	var ids []int64
	for _, s := range summaries {
		ids = append(ids, s.Adaptation...)
	}
	slices.Sort(ids)
	return IDSet(slices.Compact(ids))
}

// Empty reports whether the set holds no IDs.
func (s IDSet) Empty() bool {
	return len(s) == 0
}

// Items converts the set into search items for the detail request.
func (s IDSet) Items() []search.Item {
	items := make([]search.Item, len(s))
	for i, id := range s {
		items[i] = search.FSID(strconv.FormatInt(id, 10))
	}
	return items
}

// NoAdaptationPlaceholder is mapped into the single detail record returned
// when none of the summaries reference an adaptation project.
var NoAdaptationPlaceholder = json.RawMessage(`{"adaptationId": null}`)

// SummaryDetail is the result of a two-phase summary-detail query.
type SummaryDetail struct {
	Summary []AdaptationSummary
	Detail  []AdaptationDetail
}

// CSVHeader implements export.Record.
func (SummaryDetail) CSVHeader() []string {
	header := slices.Clone(adaptationSummaryHeader)
	return append(header, adaptationDetailHeader[1:]...)
}

// CSVRows implements export.Record. Each summary row is joined with the
// detail of its adaptation ID; detail columns stay empty when unknown.
func (sd SummaryDetail) CSVRows() [][]string {
	byID := make(map[int64]AdaptationDetail, len(sd.Detail))
	for _, d := range sd.Detail {
		if d.AdaptationID != nil {
			byID[*d.AdaptationID] = d
		}
	}

	blank := make([]string, len(adaptationDetailHeader)-1)

	var rows [][]string
	for _, s := range sd.Summary {
		summaryRows := s.CSVRows()
		if len(s.Adaptation) == 0 {
			rows = append(rows, append(summaryRows[0], blank...))
			continue
		}
		for i, id := range s.Adaptation {
			row := summaryRows[i]
			if d, ok := byID[id]; ok {
				row = append(row, d.row()[1:]...)
			} else {
				row = append(row, blank...)
			}
			rows = append(rows, row)
		}
	}
	return rows
}
