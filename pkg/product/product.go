// Package product enumerates the First Street API products, their subtypes
// and the location types that qualify summary and count queries.
package product

import (
	"fmt"
	"strings"

	"github.com/Sternrassler/fsf-client/pkg/apierrors"
)

// Kind identifies one product/subtype pair served by the API.
type Kind int

const (
	AdaptationDetail Kind = iota + 1
	AdaptationSummary
	ProbabilityChance
	ProbabilityCount
	ProbabilityCountSummary
	ProbabilityCumulative
	ProbabilityDepth
)

// LocationMode describes how a Kind uses the location type path segment.
type LocationMode int

const (
	// LocationNone means the endpoint has no location segment.
	LocationNone LocationMode = iota

	// LocationFixed means the endpoint always uses Endpoint.Location.
	LocationFixed

	// LocationRequired means the caller must supply a location type.
	LocationRequired
)

// Endpoint is the static description of a Kind.
type Endpoint struct {
	Product  string
	Subtype  string
	Mode     LocationMode
	Location LocationType
}

var endpoints = map[Kind]Endpoint{
	AdaptationDetail:        {Product: "adaptation", Subtype: "detail", Mode: LocationNone},
	AdaptationSummary:       {Product: "adaptation", Subtype: "summary", Mode: LocationRequired},
	ProbabilityChance:       {Product: "probability", Subtype: "chance", Mode: LocationFixed, Location: Property},
	ProbabilityCount:        {Product: "probability", Subtype: "count", Mode: LocationRequired},
	ProbabilityCountSummary: {Product: "probability", Subtype: "count-summary", Mode: LocationFixed, Location: Property},
	ProbabilityCumulative:   {Product: "probability", Subtype: "cumulative", Mode: LocationFixed, Location: Property},
	ProbabilityDepth:        {Product: "probability", Subtype: "depth", Mode: LocationFixed, Location: Property},
}

// Kinds returns every known Kind in declaration order.
func Kinds() []Kind {
	return []Kind{
		AdaptationDetail,
		AdaptationSummary,
		ProbabilityChance,
		ProbabilityCount,
		ProbabilityCountSummary,
		ProbabilityCumulative,
		ProbabilityDepth,
	}
}

// Endpoint returns the endpoint description for k.
func (k Kind) Endpoint() Endpoint {
	e, ok := endpoints[k]
	if !ok {
		panic(fmt.Sprintf("product: unknown kind %d", int(k)))
	}
	return e
}

// String returns "product/subtype".
func (k Kind) String() string {
	e, ok := endpoints[k]
	if !ok {
		return fmt.Sprintf("kind(%d)", int(k))
	}
	return e.Product + "/" + e.Subtype
}

// Lookup finds the Kind for a product and subtype name.
func Lookup(productName, subtype string) (Kind, error) {
	for _, k := range Kinds() {
		e := endpoints[k]
		if e.Product == productName && e.Subtype == subtype {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown product %q subtype %q", apierrors.ErrInvalidArgument, productName, subtype)
}

// Path builds the request path "/{product}/{subtype}[/{location}]".
// loc is only consulted for LocationRequired kinds and must already be valid.
func (k Kind) Path(loc LocationType) string {
	e := k.Endpoint()

	parts := []string{"", e.Product, e.Subtype}
	switch e.Mode {
	case LocationFixed:
		parts = append(parts, string(e.Location))
	case LocationRequired:
		parts = append(parts, string(loc))
	}

	return strings.Join(parts, "/")
}
