package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/MegaphoneJon/com.aghstrategies.statelegemail/pkg/errors"
)

func TestNormalizePostalCode(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "plain five digits", input: "03301", want: "03301"},
		{name: "zip plus four", input: "03301-1234", want: "03301"},
		{name: "short code is zero padded", input: "501", want: "00501"},
		{name: "leading zeros preserved through parse", input: "00501-0001", want: "00501"},
		{name: "surrounding whitespace", input: " 94110 ", want: "94110"},
		{name: "empty", input: "", wantErr: true},
		{name: "non numeric", input: "EC1A-1BB", wantErr: true},
		{name: "hyphen only prefix", input: "-1234", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizePostalCode(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Len(t, got, 5)
		})
	}
}

func TestNewAddressRecord(t *testing.T) {
	t.Run("normalizes region and postal code", func(t *testing.T) {
		addr, err := NewAddressRecord("1 Main St", "Concord", "NH", "03301-1234")
		require.NoError(t, err)
		assert.Equal(t, "nh", addr.Region)
		assert.Equal(t, "03301", addr.PostalCode)
		assert.Equal(t, "1 Main St", addr.Street)
		assert.Equal(t, "Concord", addr.City)
	})

	t.Run("missing region fails fast", func(t *testing.T) {
		_, err := NewAddressRecord("1 Main St", "Concord", "", "03301")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	})

	t.Run("missing postal code fails fast", func(t *testing.T) {
		_, err := NewAddressRecord("1 Main St", "Concord", "NH", "")
		require.Error(t, err)
		assert.True(t, errors.Is(err, apperrors.ErrInvalidInput))
	})
}

func TestRegionConfigDisplayName(t *testing.T) {
	cfg := RegionConfig{
		Region: "nh",
		Titles: map[string]string{"upper": "Senator", "lower": "Representative"},
	}

	tests := []struct {
		name string
		rec  LegislatorRecord
		want string
	}{
		{
			name: "titled upper chamber",
			rec:  LegislatorRecord{FullName: "Jane Doe", Chamber: "upper", Region: "nh"},
			want: "Senator Jane Doe",
		},
		{
			name: "titled lower chamber",
			rec:  LegislatorRecord{FullName: "John Roe", Chamber: "lower", Region: "nh"},
			want: "Representative John Roe",
		},
		{
			name: "unknown chamber falls back to bare name",
			rec:  LegislatorRecord{FullName: "Pat Poe", Chamber: "unicameral", Region: "nh"},
			want: "Pat Poe",
		},
		{
			name: "missing chamber falls back to bare name",
			rec:  LegislatorRecord{FullName: "Pat Poe", Region: "nh"},
			want: "Pat Poe",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cfg.DisplayName(tt.rec))
		})
	}

	t.Run("empty config never titles", func(t *testing.T) {
		empty := RegionConfig{Region: "nh"}
		rec := LegislatorRecord{FullName: "Jane Doe", Chamber: "upper", Region: "nh"}
		assert.Equal(t, "Jane Doe", empty.DisplayName(rec))
	})
}

func TestLegislatorRecordUsable(t *testing.T) {
	assert.True(t, LegislatorRecord{FullName: "Jane Doe", Email: "a@x.gov"}.Usable())
	assert.False(t, LegislatorRecord{FullName: "Jane Doe"}.Usable())
	assert.False(t, LegislatorRecord{Email: "a@x.gov"}.Usable())
}
