package product

import (
	"fmt"

	"github.com/Sternrassler/fsf-client/pkg/apierrors"
)

// LocationType selects the spatial aggregation level of a query.
type LocationType string

const (
	Property     LocationType = "property"
	Neighborhood LocationType = "neighborhood"
	City         LocationType = "city"
	Zcta         LocationType = "zcta"
	Tract        LocationType = "tract"
	County       LocationType = "county"
	Cd           LocationType = "cd"
	State        LocationType = "state"
)

// LocationTypes returns all supported location types.
func LocationTypes() []LocationType {
	return []LocationType{Property, Neighborhood, City, Zcta, Tract, County, Cd, State}
}

// Validate rejects empty and unknown location types with ErrInvalidArgument.
func (l LocationType) Validate() error {
	if l == "" {
		return fmt.Errorf("%w: location type is empty", apierrors.ErrInvalidArgument)
	}
	for _, known := range LocationTypes() {
		if l == known {
			return nil
		}
	}
	return fmt.Errorf("%w: unknown location type %q", apierrors.ErrInvalidArgument, string(l))
}

// ParseLocationType converts an untyped value (flag, config entry, query
// parameter) into a LocationType. Non-string values yield ErrInvalidType.
func ParseLocationType(v any) (LocationType, error) {
	var l LocationType
	switch s := v.(type) {
	case nil:
		return "", fmt.Errorf("%w: location type is empty", apierrors.ErrInvalidArgument)
	case string:
		l = LocationType(s)
	case LocationType:
		l = s
	default:
		return "", fmt.Errorf("%w: location type must be a string, got %T", apierrors.ErrInvalidType, v)
	}

	if err := l.Validate(); err != nil {
		return "", err
	}
	return l, nil
}
