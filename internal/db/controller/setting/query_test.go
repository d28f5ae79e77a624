package setting

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GoSiteSettings/GoSiteSettings/internal/i18n"
)

func TestListSettingsOrder(t *testing.T) {
	f := setupRepo(t)
	b := f.key(t, "b_links", true)
	a := f.key(t, "a_links", true)

	// inserted out of order on purpose
	s2b := f.create(t, f.second.ID, b, NumberValue(1), 0)
	s1b := f.create(t, f.first.ID, b, NumberValue(2), 0)
	s1aLow := f.create(t, f.first.ID, a, NumberValue(3), 5)
	s1aHigh := f.create(t, f.first.ID, a, NumberValue(4), 10)
	s1aTie := f.create(t, f.first.ID, a, CharValue("five"), 5)
	s2a := f.create(t, f.second.ID, a, NumberValue(6), -1)

	expected := []uint64{s1aHigh.ID, s1aLow.ID, s1aTie.ID, s1b.ID, s2a.ID, s2b.ID}

	testCases := []struct {
		name     string
		pageSize int
	}{
		{name: "default page size", pageSize: 0},
		{name: "pages of one", pageSize: 1},
		{name: "pages of four", pageSize: 4},
		{name: "exact page", pageSize: 6},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got := collect(t, f.repo.ListSettings(f.ctx, Filter{PageSize: tc.pageSize}))

			ids := make([]uint64, 0, len(got))
			for _, s := range got {
				ids = append(ids, s.ID)
			}

			assert.Equal(t, expected, ids)
		})
	}
}

func TestListSettingsFilters(t *testing.T) {
	f := setupRepo(t)
	links := f.key(t, "links", true)
	title := f.key(t, "site_title", false)

	link1 := f.create(t, f.first.ID, links, URLValue("https://example.com/1"), 0)
	count1 := f.create(t, f.first.ID, links, NumberValue(1), 0)
	title1 := f.create(t, f.first.ID, title, CharValue("Example"), 0)
	title2 := f.create(t, f.second.ID, title, CharValue("Shop"), 0)

	testCases := []struct {
		name     string
		filter   Filter
		expected []uint64
	}{
		{name: "no filter", filter: Filter{}, expected: []uint64{link1.ID, count1.ID, title1.ID, title2.ID}},
		{name: "site", filter: Filter{SiteID: f.second.ID}, expected: []uint64{title2.ID}},
		{name: "key id", filter: Filter{KeyID: title.ID}, expected: []uint64{title1.ID, title2.ID}},
		{name: "key name", filter: Filter{KeyName: "links"}, expected: []uint64{link1.ID, count1.ID}},
		{name: "kind", filter: Filter{Kind: KindNumber}, expected: []uint64{count1.ID}},
		{
			name:     "site and key",
			filter:   Filter{SiteID: f.first.ID, KeyName: "site_title"},
			expected: []uint64{title1.ID},
		},
		{name: "nothing matches", filter: Filter{SiteID: 999}, expected: nil},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			var ids []uint64

			for _, s := range collect(t, f.repo.ListSettings(f.ctx, tc.filter)) {
				require.NotNil(t, s.Value, "values are resolved for every listed setting")
				ids = append(ids, s.ID)
			}

			assert.Equal(t, tc.expected, ids)
		})
	}
}

func TestListSettingsErrors(t *testing.T) {
	f := setupRepo(t)

	testCases := []struct {
		name          string
		filter        Filter
		expectedError error
	}{
		{name: "unknown kind", filter: Filter{Kind: "color"}, expectedError: ErrUnknownKind},
		{name: "unsupported language", filter: Filter{Language: "es"}, expectedError: i18n.ErrUnsupportedLanguage},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			calls := 0

			for s, err := range f.repo.ListSettings(f.ctx, tc.filter) {
				calls++

				require.ErrorIs(t, err, tc.expectedError)
				assert.Nil(t, s)
			}

			assert.Equal(t, 1, calls)
		})
	}
}

func TestListSettingsIsLazyAndRestartable(t *testing.T) {
	f := setupRepo(t)
	k := f.key(t, "links", true)

	for i := range 5 {
		f.create(t, f.first.ID, k, NumberValue(int32(i)), 0)
	}

	seq := f.repo.ListSettings(f.ctx, Filter{PageSize: 2})

	seen := 0

	for s, err := range seq {
		require.NoError(t, err)

		// reads inside the loop must not block on the listing
		_, err = f.repo.GetSetting(f.ctx, s.ID)
		require.NoError(t, err)

		seen++
		if seen == 3 {
			break
		}
	}

	assert.Equal(t, 3, seen)
	assert.Len(t, collect(t, seq), 5, "ranging again starts over")
}

func TestListSettingsCancelledContext(t *testing.T) {
	f := setupRepo(t)
	k := f.key(t, "links", true)
	f.create(t, f.first.ID, k, NumberValue(1), 0)

	ctx, cancel := context.WithCancel(f.ctx)
	cancel()

	for _, err := range f.repo.ListSettings(ctx, Filter{}) {
		require.ErrorIs(t, err, context.Canceled)
	}
}

func TestListSettingsLanguage(t *testing.T) {
	f := setupRepo(t)
	banner := f.key(t, "banner_text", true)
	flag := f.key(t, "maintenance", false)

	translated := f.create(t, f.first.ID, banner, CharValue("Hello"), 1)
	require.NoError(t, f.repo.SetTranslation(f.ctx, translated.ID, "fr", CharValue("Bonjour")))

	onlyFrench, err := f.repo.CreateSetting(f.ctx, CreateInput{
		SiteID: f.first.ID, KeyID: banner.ID, Kind: KindText, Value: TextValue("Texte"), Language: "fr",
	})
	require.NoError(t, err)

	plain := f.create(t, f.first.ID, flag, BooleanValue(false), 0)

	testCases := []struct {
		name     string
		filter   Filter
		ctx      context.Context
		expected map[uint64]Value
		langs    map[uint64]string
	}{
		{
			name:     "default language",
			filter:   Filter{},
			ctx:      f.ctx,
			expected: map[uint64]Value{translated.ID: CharValue("Hello"), onlyFrench.ID: nil, plain.ID: BooleanValue(false)},
			langs:    map[uint64]string{translated.ID: "en", onlyFrench.ID: "", plain.ID: ""},
		},
		{
			name:     "explicit language",
			filter:   Filter{Language: "fr"},
			ctx:      f.ctx,
			expected: map[uint64]Value{translated.ID: CharValue("Bonjour"), onlyFrench.ID: TextValue("Texte"), plain.ID: BooleanValue(false)},
			langs:    map[uint64]string{translated.ID: "fr", onlyFrench.ID: "fr", plain.ID: ""},
		},
		{
			name:     "request language",
			filter:   Filter{},
			ctx:      i18n.WithLanguage(f.ctx, "fr"),
			expected: map[uint64]Value{translated.ID: CharValue("Bonjour"), onlyFrench.ID: TextValue("Texte"), plain.ID: BooleanValue(false)},
			langs:    map[uint64]string{translated.ID: "fr", onlyFrench.ID: "fr", plain.ID: ""},
		},
		{
			name:     "german falls back to default",
			filter:   Filter{Language: "de"},
			ctx:      f.ctx,
			expected: map[uint64]Value{translated.ID: CharValue("Hello"), onlyFrench.ID: nil, plain.ID: BooleanValue(false)},
			langs:    map[uint64]string{translated.ID: "en", onlyFrench.ID: "", plain.ID: ""},
		},
		{
			name:     "translated only skips settings without the language",
			filter:   Filter{Language: "en", TranslatedOnly: true},
			ctx:      f.ctx,
			expected: map[uint64]Value{translated.ID: CharValue("Hello"), plain.ID: BooleanValue(false)},
			langs:    map[uint64]string{translated.ID: "en", plain.ID: ""},
		},
		{
			name:     "translated only in french",
			filter:   Filter{Language: "fr", TranslatedOnly: true},
			ctx:      f.ctx,
			expected: map[uint64]Value{translated.ID: CharValue("Bonjour"), onlyFrench.ID: TextValue("Texte"), plain.ID: BooleanValue(false)},
			langs:    map[uint64]string{translated.ID: "fr", onlyFrench.ID: "fr", plain.ID: ""},
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			values := make(map[uint64]Value)
			langs := make(map[uint64]string)

			for _, s := range collect(t, f.repo.ListSettings(tc.ctx, tc.filter)) {
				values[s.ID] = s.Value
				langs[s.ID] = s.Language
			}

			assert.Equal(t, tc.expected, values)
			assert.Equal(t, tc.langs, langs)
		})
	}
}
