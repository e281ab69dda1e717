package fsf

import (
	"context"

	"github.com/Sternrassler/fsf-client/pkg/export"
	"github.com/Sternrassler/fsf-client/pkg/models"
	"github.com/Sternrassler/fsf-client/pkg/product"
)

// Probability serves the probability product. Every subtype except count
// is looked up at the property level.
type Probability struct {
	core *core
}

// GetDepth returns flood depth by return period for each property.
func (p *Probability) GetDepth(ctx context.Context, input any, opts Options) ([]models.ProbabilityDepth, error) {
	return probability[models.ProbabilityDepth](ctx, p.core, product.ProbabilityDepth, "Probability Depth", input, "", opts)
}

// GetChance returns the chance of flooding above each depth threshold.
func (p *Probability) GetChance(ctx context.Context, input any, opts Options) ([]models.ProbabilityChance, error) {
	return probability[models.ProbabilityChance](ctx, p.core, product.ProbabilityChance, "Probability Chance", input, "", opts)
}

// GetCumulative returns the cumulative chance of flooding over 30 years.
func (p *Probability) GetCumulative(ctx context.Context, input any, opts Options) ([]models.ProbabilityCumulative, error) {
	return probability[models.ProbabilityCumulative](ctx, p.core, product.ProbabilityCumulative, "Probability Cumulative", input, "", opts)
}

// GetCountSummary returns property counts for every location containing
// each property.
func (p *Probability) GetCountSummary(ctx context.Context, input any, opts Options) ([]models.ProbabilityCountSummary, error) {
	return probability[models.ProbabilityCountSummary](ctx, p.core, product.ProbabilityCountSummary, "Probability Count-Summary", input, "", opts)
}

// GetCount returns the count of flooded properties per depth bin for
// locations of type loc.
func (p *Probability) GetCount(ctx context.Context, input any, loc product.LocationType, opts Options) ([]models.ProbabilityCount, error) {
	return probability[models.ProbabilityCount](ctx, p.core, product.ProbabilityCount, "Probability Count", input, loc, opts)
}

func probability[T export.Record](ctx context.Context, c *core, kind product.Kind, label string, input any, loc product.LocationType, opts Options) ([]T, error) {
	records, err := fetch[T](ctx, c, kind, input, loc, opts)
	if err != nil {
		return nil, err
	}

	if err := c.finish(label, target(kind, loc), export.Records(records), opts); err != nil {
		return nil, err
	}
	return records, nil
}
