package geocode

import (
	"context"
	"errors"

	"github.com/MegaphoneJon/com.aghstrategies.statelegemail/internal/domain"
)

// ErrNotFound is returned when the backend produced no coordinate for the
// address. It is an ordinary lookup miss, not a transport failure.
var ErrNotFound = errors.New("address could not be geocoded")

// Geocoder converts a structured address into a coordinate. Implementations
// wrap a pluggable backend; which one is used is decided by configuration.
type Geocoder interface {
	Geocode(ctx context.Context, addr domain.AddressRecord) (domain.GeoCoordinate, error)
}
