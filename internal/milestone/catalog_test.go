package milestone

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func maleCatalog(t *testing.T) *Catalog {
	t.Helper()
	c, err := New([]Milestone{
		{Gene: Male, Day: 90, Title: "King", Emoji: "👑", LevelTemplate: "m9"},
		{Gene: Male, Day: 0, Title: "Ground Zero", Emoji: "🪨", LevelTemplate: "m0"},
		{Gene: Male, Day: 14, Title: "Warrior", Emoji: "⚔️", LevelTemplate: "m2"},
		{Gene: Male, Day: 7, Title: "Fighter", Emoji: "🥊", LevelTemplate: "m1"},
	})
	require.NoError(t, err)
	return c
}

func TestCatalogLookups(t *testing.T) {
	t.Parallel()

	c := maleCatalog(t)

	testCases := []struct {
		name        string
		days        int
		wantCurrent string
		wantNext    string
		hasNext     bool
	}{
		{name: "day zero", days: 0, wantCurrent: "Ground Zero", wantNext: "Fighter", hasNext: true},
		{name: "between thresholds", days: 6, wantCurrent: "Ground Zero", wantNext: "Fighter", hasNext: true},
		{name: "exact threshold", days: 7, wantCurrent: "Fighter", wantNext: "Warrior", hasNext: true},
		{name: "past fighter", days: 21, wantCurrent: "Warrior", wantNext: "King", hasNext: true},
		{name: "final", days: 90, wantCurrent: "King", hasNext: false},
		{name: "beyond final", days: 400, wantCurrent: "King", hasNext: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			cur, ok := c.Current(Male, tc.days)
			require.True(t, ok)
			assert.Equal(t, tc.wantCurrent, cur.Title)

			next, ok := c.Next(Male, tc.days)
			assert.Equal(t, tc.hasNext, ok)
			if tc.hasNext {
				assert.Equal(t, tc.wantNext, next.Title)
			}
		})
	}

	final, ok := c.Final(Male)
	require.True(t, ok)
	assert.Equal(t, 90, final.Day)

	_, ok = c.Current(Female, 3)
	assert.False(t, ok)
	_, ok = c.Final(Female)
	assert.False(t, ok)

	_, ok = c.Current(Male, -1)
	assert.False(t, ok)
}

func TestCatalogSorted(t *testing.T) {
	t.Parallel()

	list := maleCatalog(t).Milestones(Male)
	require.Len(t, list, 4)
	for i := 1; i < len(list); i++ {
		assert.Less(t, list[i-1].Day, list[i].Day)
	}
}

func TestNewRejectsInvalidCatalogs(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		items   []Milestone
		wantErr error
	}{
		{name: "empty", items: nil, wantErr: ErrEmptyCatalog},
		{
			name: "duplicate day",
			items: []Milestone{
				{Gene: Male, Day: 0, Title: "A"},
				{Gene: Male, Day: 0, Title: "B"},
			},
			wantErr: ErrDuplicateDay,
		},
		{
			name:    "no day zero",
			items:   []Milestone{{Gene: Female, Day: 7, Title: "A"}},
			wantErr: ErrMissingDayZero,
		},
		{
			name:    "unknown gene",
			items:   []Milestone{{Gene: "other", Day: 0, Title: "A"}},
			wantErr: ErrInvalidMilestone,
		},
		{
			name:    "negative day",
			items:   []Milestone{{Gene: Male, Day: -7, Title: "A"}, {Gene: Male, Day: 0}},
			wantErr: ErrInvalidMilestone,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			_, err := New(tc.items)
			require.Error(t, err)
			assert.ErrorIs(t, err, tc.wantErr)
		})
	}
}

func TestSameDayAcrossGendersIsAllowed(t *testing.T) {
	t.Parallel()

	c, err := New([]Milestone{
		{Gene: Male, Day: 0, Title: "Ground Zero"},
		{Gene: Female, Day: 0, Title: "Ground Zero"},
	})
	require.NoError(t, err)
	assert.Len(t, c.Milestones(Male), 1)
	assert.Len(t, c.Milestones(Female), 1)
}

func TestDecode(t *testing.T) {
	t.Parallel()

	raw := []byte(`{"L":[
		{"M":{"gene":{"S":"male"},"milestone_day":{"N":"0"},"title":{"S":"Ground Zero"},"emoji":{"S":"🪨"},"level_template":{"S":"m0"}}},
		{"gene":"male","milestone_day":7,"title":"Fighter","emoji":"🥊","level_template":"m1","media_url":"https://cdn.example/fighter.png"}
	]}`)

	c, err := Decode(raw)
	require.NoError(t, err)

	cur, ok := c.Current(Male, 9)
	require.True(t, ok)
	assert.Equal(t, "Fighter 🥊", cur.Label())
	assert.Equal(t, "https://cdn.example/fighter.png", cur.MediaURL)

	wrapped, err := Decode([]byte(`{"milestones":[{"gene":"female","milestone_day":"0","title":"Ground Zero"}]}`))
	require.NoError(t, err)
	assert.Len(t, wrapped.Milestones(Female), 1)
}

func TestDecodeErrors(t *testing.T) {
	t.Parallel()

	_, err := Decode([]byte(`[]`))
	assert.ErrorIs(t, err, ErrEmptyCatalog)

	_, err = Decode([]byte(`[{"gene":"male","milestone_day":"seven"}]`))
	assert.ErrorIs(t, err, ErrInvalidMilestone)

	_, err = Decode([]byte(`not json`))
	assert.Error(t, err)
}

func TestParseGender(t *testing.T) {
	t.Parallel()

	g, ok := ParseGender("Female")
	require.True(t, ok)
	assert.Equal(t, "Queen", g.FinalRankTitle())

	g, ok = ParseGender("")
	require.True(t, ok)
	assert.Equal(t, "King", g.FinalRankTitle())

	_, ok = ParseGender("robot")
	assert.False(t, ok)
}
