// Package search normalizes search input (FSIDs, coordinates, addresses or a
// file of them) into an ordered list of items and splits it into batches.
package search

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/Sternrassler/fsf-client/pkg/apierrors"
)

// Item is a single location reference. Exactly one of FSID, the Lat/Lng pair
// or Address is set.
type Item struct {
	FSID    string   `json:"fsid,omitempty"`
	Lat     *float64 `json:"lat,omitempty"`
	Lng     *float64 `json:"lng,omitempty"`
	Address string   `json:"address,omitempty"`
}

// FSID returns an item referencing a First Street location ID.
func FSID(id string) Item {
	return Item{FSID: id}
}

// Coordinates returns an item referencing a latitude/longitude pair.
func Coordinates(lat, lng float64) Item {
	return Item{Lat: &lat, Lng: &lng}
}

// Address returns an item referencing a free-text address.
func Address(address string) Item {
	return Item{Address: address}
}

// IsCoordinates reports whether the item is a lat/lng pair.
func (i Item) IsCoordinates() bool {
	return i.Lat != nil && i.Lng != nil
}

// String returns a canonical representation, used in cache keys and logs.
func (i Item) String() string {
	switch {
	case i.FSID != "":
		return "fsid:" + i.FSID
	case i.IsCoordinates():
		return "latlng:" + strconv.FormatFloat(*i.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(*i.Lng, 'f', -1, 64)
	case i.Address != "":
		return "address:" + i.Address
	default:
		return "empty"
	}
}

// Validate checks that exactly one kind of reference is set.
func (i Item) Validate() error {
	set := 0
	if i.FSID != "" {
		set++
	}
	if i.Lat != nil || i.Lng != nil {
		if !i.IsCoordinates() {
			return fmt.Errorf("%w: coordinates need both lat and lng", apierrors.ErrInvalidArgument)
		}
		if *i.Lat < -90 || *i.Lat > 90 || *i.Lng < -180 || *i.Lng > 180 {
			return fmt.Errorf("%w: coordinates out of range: %s", apierrors.ErrInvalidArgument, i)
		}
		set++
	}
	if i.Address != "" {
		set++
	}

	switch set {
	case 0:
		return fmt.Errorf("%w: empty search item", apierrors.ErrInvalidArgument)
	case 1:
		return nil
	default:
		return fmt.Errorf("%w: search item mixes reference kinds", apierrors.ErrInvalidArgument)
	}
}

// Parse interprets a text identifier. Integers are FSIDs, "lat,lng" pairs
// within range are coordinates and anything else is an address.
func Parse(s string) (Item, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Item{}, fmt.Errorf("%w: empty search item", apierrors.ErrInvalidArgument)
	}

	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return FSID(s), nil
	}

	if latStr, lngStr, ok := strings.Cut(s, ","); ok {
		lat, latErr := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
		lng, lngErr := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
		if latErr == nil && lngErr == nil {
			item := Coordinates(lat, lng)
			if err := item.Validate(); err != nil {
				return Item{}, err
			}
			return item, nil
		}
	}

	return Address(s), nil
}
