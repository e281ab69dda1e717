package fsf

import (
	"context"
	"fmt"

	"github.com/Sternrassler/fsf-client/pkg/apierrors"
	"github.com/Sternrassler/fsf-client/pkg/product"
)

// SummaryDetailSubtype names the combined adaptation summary/detail lookup.
const SummaryDetailSubtype = "summary-detail"

// Query names one facade method by product and subtype.
type Query struct {
	Product string
	Subtype string

	// NeedsLocation reports whether the method takes a location type.
	NeedsLocation bool
}

func (q Query) String() string {
	return q.Product + "/" + q.Subtype
}

// Queries lists every facade method, product by product.
func Queries() []Query {
	var qs []Query
	for _, k := range product.Kinds() {
		e := k.Endpoint()
		qs = append(qs, Query{Product: e.Product, Subtype: e.Subtype, NeedsLocation: e.Mode == product.LocationRequired})
		if k == product.AdaptationSummary {
			qs = append(qs, Query{Product: e.Product, Subtype: SummaryDetailSubtype, NeedsLocation: true})
		}
	}
	return qs
}

// FindQuery returns the query for productName and subtype.
func FindQuery(productName, subtype string) (Query, error) {
	for _, q := range Queries() {
		if q.Product == productName && q.Subtype == subtype {
			return q, nil
		}
	}
	return Query{}, fmt.Errorf("%w: unknown product %q subtype %q", apierrors.ErrInvalidArgument, productName, subtype)
}

// Run calls the facade method named by q. loc is ignored when the query
// takes no location type.
func (a *API) Run(ctx context.Context, q Query, input any, loc product.LocationType, opts Options) (any, error) {
	if q.Product == "adaptation" && q.Subtype == SummaryDetailSubtype {
		return a.Adaptation.GetSummaryDetail(ctx, input, loc, opts)
	}

	kind, err := product.Lookup(q.Product, q.Subtype)
	if err != nil {
		return nil, err
	}

	switch kind {
	case product.AdaptationDetail:
		return a.Adaptation.GetDetail(ctx, input, opts)
	case product.AdaptationSummary:
		return a.Adaptation.GetSummary(ctx, input, loc, opts)
	case product.ProbabilityChance:
		return a.Probability.GetChance(ctx, input, opts)
	case product.ProbabilityCount:
		return a.Probability.GetCount(ctx, input, loc, opts)
	case product.ProbabilityCountSummary:
		return a.Probability.GetCountSummary(ctx, input, opts)
	case product.ProbabilityCumulative:
		return a.Probability.GetCumulative(ctx, input, opts)
	case product.ProbabilityDepth:
		return a.Probability.GetDepth(ctx, input, opts)
	default:
		return nil, fmt.Errorf("%w: no method for %s", apierrors.ErrInvalidArgument, q)
	}
}
