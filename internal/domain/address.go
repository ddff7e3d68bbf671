package domain

import (
	"strconv"
	"strings"

	apperrors "github.com/MegaphoneJon/com.aghstrategies.statelegemail/pkg/errors"
)

// AddressRecord is the normalized signer address used for recipient lookup.
// It is immutable once built; construct one per resolution request.
type AddressRecord struct {
	Street     string
	City       string
	Region     string // state/province abbreviation, lowercased
	PostalCode string // exactly five digits, left-zero-padded
}

// NewAddressRecord builds an AddressRecord from raw form fields.
// The region abbreviation and postal code are required; without them the
// address cannot be resolved to a legislative district.
func NewAddressRecord(street, city, region, postalCode string) (AddressRecord, error) {
	region = strings.ToLower(strings.TrimSpace(region))
	if region == "" {
		return AddressRecord{}, apperrors.InvalidInput("address is incomplete: region is required")
	}

	normalized, err := NormalizePostalCode(postalCode)
	if err != nil {
		return AddressRecord{}, err
	}

	return AddressRecord{
		Street:     strings.TrimSpace(street),
		City:       strings.TrimSpace(city),
		Region:     region,
		PostalCode: normalized,
	}, nil
}

// NormalizePostalCode renders a postal code as a five-character,
// left-zero-padded numeric string. For ZIP+4 values only the portion before
// the hyphen is used ("03301-1234" becomes "03301").
func NormalizePostalCode(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", apperrors.InvalidInput("address is incomplete: postal code is required")
	}

	if i := strings.Index(raw, "-"); i >= 0 {
		raw = raw[:i]
	}

	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || n < 0 {
		return "", apperrors.InvalidInput("postal code is not numeric: " + raw)
	}

	code := strconv.Itoa(n)
	for len(code) < 5 {
		code = "0" + code
	}
	return code, nil
}

// GeoCoordinate is a latitude/longitude pair produced by geocoding an address.
type GeoCoordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
