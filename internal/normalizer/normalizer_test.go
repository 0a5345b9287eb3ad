package normalizer

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
)

const (
	posterPlaceholder   = "https://via.placeholder.com/500x750?text=No+Poster"
	backdropPlaceholder = "https://via.placeholder.com/1920x1080?text=No+Backdrop"
)

func TestNormalizeListItem(t *testing.T) {
	t.Run("list item with lookup", func(t *testing.T) {
		var raw models.RawMovie
		require.NoError(t, json.Unmarshal([]byte(`{"id":1,"title":"X","release_date":"2022-05-01","poster_path":null,"vote_average":7.3,"genre_ids":[28]}`), &raw))

		rec := Normalize(raw, models.GenreLookup{28: "Action"})

		assert.Equal(t, 1, rec.ID)
		assert.Equal(t, "2022", rec.Year)
		assert.Equal(t, "Action", rec.Genre)
		assert.Equal(t, 7.3, rec.Rating)
		assert.Equal(t, posterPlaceholder, rec.Poster)
		assert.Nil(t, rec.Details, "list items carry no details")
	})

	t.Run("poster url", func(t *testing.T) {
		rec := Normalize(models.RawMovie{ID: 2, PosterPath: "/abc.jpg"}, nil)
		assert.Equal(t, "https://image.tmdb.org/t/p/w500/abc.jpg", rec.Poster)
	})

	t.Run("custom image base", func(t *testing.T) {
		n := New(shared.MediaConfig{ImageBaseURL: "https://img.test/t/p/", PosterPlaceholder: "none.png"})
		assert.Equal(t, "https://img.test/t/p/w500/a.jpg", n.Normalize(models.RawMovie{PosterPath: "a.jpg"}, nil).Poster)
		assert.Equal(t, "none.png", n.Normalize(models.RawMovie{}, nil).Poster)
	})

	t.Run("empty object degrades to fallbacks", func(t *testing.T) {
		rec := Normalize(models.RawMovie{}, nil)
		assert.Equal(t, NotAvailable, rec.Year)
		assert.Equal(t, NotAvailable, rec.Genre)
		assert.Equal(t, 0.0, rec.Rating)
		assert.Equal(t, posterPlaceholder, rec.Poster)
	})
}

func TestYear(t *testing.T) {
	tc := map[string]string{
		"2022-05-01": "2022",
		"1999":       "1999",
		"":           NotAvailable,
		"  ":         NotAvailable,
		"-01-01":     NotAvailable,
	}
	for in, want := range tc {
		assert.Equal(t, want, Year(in), "Year(%q)", in)
	}
}

func TestGenre(t *testing.T) {
	lookup := models.GenreLookup{28: "Action", 18: "Drama"}

	tc := []struct {
		name   string
		raw    models.RawMovie
		lookup models.GenreLookup
		want   string
	}{
		{"ids resolved in order", models.RawMovie{GenreIDs: []int{18, 28}}, lookup, "Drama, Action"},
		{"unresolved ids dropped", models.RawMovie{GenreIDs: []int{28, 99}}, lookup, "Action"},
		{"nothing resolves", models.RawMovie{GenreIDs: []int{99}}, lookup, NotAvailable},
		{"no lookup keeps raw ids", models.RawMovie{GenreIDs: []int{28, 99}}, nil, "28, 99"},
		{"genre objects win", models.RawMovie{GenreIDs: []int{28}, Genres: []models.Genre{{ID: 18, Name: "Drama"}}}, lookup, "Drama"},
		{"nothing at all", models.RawMovie{}, lookup, NotAvailable},
	}
	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Genre(tt.raw, tt.lookup))
		})
	}
}

func TestClampRating(t *testing.T) {
	assert.Equal(t, 0.0, ClampRating(-2))
	assert.Equal(t, 10.0, ClampRating(11.5))
	assert.Equal(t, 8.4, ClampRating(8.4))
}

func TestNormalizeDetail(t *testing.T) {
	payload := `{
		"id": 27205,
		"title": "Inception",
		"release_date": "2010-07-15",
		"vote_average": 8.4,
		"poster_path": "/p.jpg",
		"backdrop_path": "/b.jpg",
		"runtime": 148,
		"budget": 160000000,
		"revenue": 0,
		"genres": [{"id": 28, "name": "Action"}, {"id": 878, "name": "Science Fiction"}],
		"credits": {
			"crew": [{"name": "Hans Zimmer", "job": "Original Music Composer"}, {"name": "Christopher Nolan", "job": "Director"}],
			"cast": [{"name": "A"}, {"name": "B"}, {"name": "C"}, {"name": "D"}, {"name": "E"}, {"name": "F"}]
		}
	}`
	var raw models.RawMovie
	require.NoError(t, json.Unmarshal([]byte(payload), &raw))
	raw.Kind = models.RawDetail

	rec := Normalize(raw, nil)
	require.NotNil(t, rec.Details)

	assert.Equal(t, "Action, Science Fiction", rec.Genre)
	assert.Equal(t, "Christopher Nolan", rec.Details.Director)
	assert.Equal(t, []string{"A", "B", "C", "D", "E"}, rec.Details.Cast)
	assert.Equal(t, "2h 28m", rec.Details.Runtime)
	assert.Equal(t, "https://image.tmdb.org/t/p/original/b.jpg", rec.Details.Backdrop)
	assert.Equal(t, "$160,000,000", rec.Details.Budget)
	assert.Equal(t, NotAvailable, rec.Details.Revenue)
	assert.Equal(t, "Action, Science Fiction", rec.Details.Genres)

	t.Run("missing credits and backdrop", func(t *testing.T) {
		rec := Normalize(models.RawMovie{Kind: models.RawDetail, ID: 3}, nil)
		require.NotNil(t, rec.Details)
		assert.Equal(t, UnknownDirector, rec.Details.Director)
		assert.NotNil(t, rec.Details.Cast)
		assert.Empty(t, rec.Details.Cast)
		assert.Equal(t, NotAvailable, rec.Details.Runtime)
		assert.Equal(t, backdropPlaceholder, rec.Details.Backdrop)
		assert.Equal(t, NotAvailable, rec.Details.Budget)
		assert.Equal(t, NotAvailable, rec.Details.Genres)
	})
}

func TestRuntime(t *testing.T) {
	assert.Equal(t, "1h 0m", Runtime(60))
	assert.Equal(t, "0h 45m", Runtime(45))
	assert.Equal(t, NotAvailable, Runtime(0))
}

func TestMergeDetails(t *testing.T) {
	base := Normalize(models.RawMovie{ID: 7, Title: "List Title", ReleaseDate: "2001-01-01", GenreIDs: []int{28}}, models.GenreLookup{28: "Action"})
	detail := Normalize(models.RawMovie{
		Kind:        models.RawDetail,
		ID:          7,
		Title:       "Detail Title",
		ReleaseDate: "2002-02-02",
		Genres:      []models.Genre{{ID: 18, Name: "Drama"}},
		Runtime:     90,
		Overview:    "from detail",
	}, nil)

	merged := MergeDetails(base, detail)

	assert.Equal(t, "List Title", merged.Title)
	assert.Equal(t, "2001", merged.Year)
	assert.Equal(t, "Action", merged.Genre)
	assert.Equal(t, "from detail", merged.Overview, "empty base fields may be filled")
	require.NotNil(t, merged.Details)
	assert.Equal(t, "1h 30m", merged.Details.Runtime)

	t.Run("empty base takes the detail record", func(t *testing.T) {
		assert.Equal(t, detail, MergeDetails(models.MovieRecord{}, detail))
	})
}
