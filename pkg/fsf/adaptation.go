package fsf

import (
	"context"
	"fmt"

	"github.com/Sternrassler/fsf-client/pkg/export"
	"github.com/Sternrassler/fsf-client/pkg/models"
	"github.com/Sternrassler/fsf-client/pkg/product"
)

// Adaptation serves the adaptation product.
type Adaptation struct {
	core *core
}

// GetDetail returns one detail record per adaptation ID in input.
func (a *Adaptation) GetDetail(ctx context.Context, input any, opts Options) ([]models.AdaptationDetail, error) {
	details, err := fetch[models.AdaptationDetail](ctx, a.core, product.AdaptationDetail, input, "", opts)
	if err != nil {
		return nil, err
	}

	if err := a.core.finish("Adaptation Detail", target(product.AdaptationDetail, ""), export.Records(details), opts); err != nil {
		return nil, err
	}
	return details, nil
}

// GetSummary returns one summary record per location in input.
func (a *Adaptation) GetSummary(ctx context.Context, input any, loc product.LocationType, opts Options) ([]models.AdaptationSummary, error) {
	summaries, err := fetch[models.AdaptationSummary](ctx, a.core, product.AdaptationSummary, input, loc, opts)
	if err != nil {
		return nil, err
	}

	if err := a.core.finish("Adaptation Summary", target(product.AdaptationSummary, loc), export.Records(summaries), opts); err != nil {
		return nil, err
	}
	return summaries, nil
}

// GetSummaryDetail fetches summaries for input and then the details of
// every adaptation they reference. Without any reference the detail list
// holds a single placeholder record and no detail request is sent.
func (a *Adaptation) GetSummaryDetail(ctx context.Context, input any, loc product.LocationType, opts Options) (models.SummaryDetail, error) {
	summaries, err := fetch[models.AdaptationSummary](ctx, a.core, product.AdaptationSummary, input, loc, opts)
	if err != nil {
		return models.SummaryDetail{}, err
	}

	ids := models.AdaptationIDs(summaries)

	var details []models.AdaptationDetail
	if ids.Empty() {
		placeholder, err := models.Decode[models.AdaptationDetail](models.NoAdaptationPlaceholder)
		if err != nil {
			return models.SummaryDetail{}, fmt.Errorf("adaptation placeholder: %w", err)
		}
		details = []models.AdaptationDetail{placeholder}
	} else {
		details, err = fetchItems[models.AdaptationDetail](ctx, a.core, product.AdaptationDetail, ids.Items(), "", opts)
		if err != nil {
			return models.SummaryDetail{}, err
		}
	}

	result := models.SummaryDetail{Summary: summaries, Detail: details}

	t := export.Target{Product: "adaptation", Subtype: "summary_detail", LocationType: string(loc)}
	if err := a.core.finish("Adaptation Summary Detail", t, []export.Record{result}, opts); err != nil {
		return models.SummaryDetail{}, err
	}
	return result, nil
}
