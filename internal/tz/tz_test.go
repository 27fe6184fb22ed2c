package tz

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolve(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name       string
		hints      Hints
		wantZone   string
		wantSource Source
	}{
		{
			name:       "explicit zone wins over country",
			hints:      Hints{Timezone: "Asia/Tokyo", Country: "NL", Phone: "31612345678"},
			wantZone:   "Asia/Tokyo",
			wantSource: SourceExplicit,
		},
		{
			name:       "unparseable override falls through to country",
			hints:      Hints{Timezone: "Mars/Olympus", Country: "nl"},
			wantZone:   "Europe/Amsterdam",
			wantSource: SourceCountry,
		},
		{
			name:       "Local is not an IANA zone",
			hints:      Hints{Timezone: "Local", Country: "US"},
			wantZone:   "America/New_York",
			wantSource: SourceCountry,
		},
		{
			name:       "phone prefix when country unknown",
			hints:      Hints{Country: "XX", Phone: "4915112345678"},
			wantZone:   "Europe/Berlin",
			wantSource: SourcePhone,
		},
		{
			name:       "three digit prefix beats one digit",
			hints:      Hints{Phone: "351912345678"},
			wantZone:   "Europe/Lisbon",
			wantSource: SourcePhone,
		},
		{
			name:       "single digit prefix",
			hints:      Hints{Phone: "12125550100"},
			wantZone:   "America/New_York",
			wantSource: SourcePhone,
		},
		{
			name:       "nothing known falls back to UTC",
			hints:      Hints{Phone: "0000"},
			wantZone:   "UTC",
			wantSource: SourceDefault,
		},
		{
			name:       "empty hints",
			hints:      Hints{},
			wantZone:   "UTC",
			wantSource: SourceDefault,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			z := Resolve(tc.hints)
			assert.Equal(t, tc.wantZone, z.Name)
			assert.Equal(t, tc.wantSource, z.Source)
			require.NotNil(t, z.Location)
		})
	}
}

func TestZoneLocal(t *testing.T) {
	t.Parallel()

	run := time.Date(2025, 3, 4, 9, 0, 0, 0, time.UTC)

	ams := Resolve(Hints{Country: "NL"})
	assert.Equal(t, 10, ams.Local(run).Hour())

	ny := Resolve(Hints{Country: "US"})
	assert.Equal(t, 4, ny.Local(run).Hour())
}

func TestTablesLoad(t *testing.T) {
	t.Parallel()

	for code, name := range countryZones {
		_, err := time.LoadLocation(name)
		assert.NoError(t, err, "country %s -> %s", code, name)
	}
	for prefix, name := range prefixZones {
		_, err := time.LoadLocation(name)
		assert.NoError(t, err, "prefix %s -> %s", prefix, name)
	}
}
