package models

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// Category selects one of the fixed catalog listings.
type Category string

const (
	CategoryPopular  Category = "popular"
	CategoryTopRated Category = "top-rated"
	CategoryUpcoming Category = "upcoming"
)

// Categories lists every category in display order.
var Categories = []Category{CategoryPopular, CategoryTopRated, CategoryUpcoming}

// ParseCategory accepts the endpoint name or common spellings of it.
func ParseCategory(s string) (Category, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "popular":
		return CategoryPopular, nil
	case "top-rated", "top_rated", "toprated", "top":
		return CategoryTopRated, nil
	case "upcoming":
		return CategoryUpcoming, nil
	}
	return "", fmt.Errorf("unknown category %q", s)
}

// Title is the heading shown above a listing.
func (c Category) Title() string {
	switch c {
	case CategoryTopRated:
		return "Top Rated"
	case CategoryUpcoming:
		return "Upcoming"
	default:
		return "Popular"
	}
}

const DefaultSort = "popularity.desc"

// Filter field names accepted by [FilterState.With].
const (
	FilterGenre  = "genre"
	FilterYear   = "year"
	FilterRating = "rating"
	FilterSort   = "sort"
)

// StaticGenres maps the filter panel genres to catalog genre ids.
var StaticGenres = []Genre{
	{ID: 28, Name: "Action"},
	{ID: 18, Name: "Drama"},
	{ID: 878, Name: "Sci-Fi"},
	{ID: 80, Name: "Crime"},
	{ID: 53, Name: "Thriller"},
}

// FilterYears are the selectable release years, newest first, followed by decades.
var FilterYears = []string{"2024", "2023", "2022", "2021", "2020", "2019", "2018", "2017", "2016", "2015", "2010s", "2000s", "1990s"}

// FilterRatings are the selectable minimum ratings.
var FilterRatings = []string{"9", "8", "7", "6"}

// SortOptions are the accepted sort_by values.
var SortOptions = []string{
	"popularity.desc", "popularity.asc",
	"vote_average.desc", "vote_average.asc",
	"primary_release_date.desc", "primary_release_date.asc",
	"revenue.desc",
}

// FilterState is the active discover filter set.
//
// Each field is either empty (unset) or one of the recognized values.
type FilterState struct {
	Genre  string `json:"genre,omitempty"`
	Year   string `json:"year,omitempty"`
	Rating string `json:"rating,omitempty"`
	SortBy string `json:"sort_by"`
}

// DefaultFilters is the filter set that never triggers discover mode.
func DefaultFilters() FilterState {
	return FilterState{SortBy: DefaultSort}
}

// IsDefault reports whether every field holds its default.
func (f FilterState) IsDefault() bool {
	return f.Genre == "" && f.Year == "" && f.Rating == "" && (f.SortBy == "" || f.SortBy == DefaultSort)
}

// With returns a copy of f with one field replaced, after validating the value.
//
// "All" or an empty value clears a field. Genres are checked against [StaticGenres] and then lookup.
func (f FilterState) With(field, value string, lookup GenreLookup) (FilterState, error) {
	value = strings.TrimSpace(value)
	if strings.EqualFold(value, "all") {
		value = ""
	}

	switch field {
	case FilterGenre:
		if value != "" {
			name, ok := canonicalGenre(value, lookup)
			if !ok {
				return f, fmt.Errorf("unknown genre %q", value)
			}
			value = name
		}
		f.Genre = value
	case FilterYear:
		if value != "" && !contains(FilterYears, value) {
			return f, fmt.Errorf("unknown year %q", value)
		}
		f.Year = value
	case FilterRating:
		if value != "" {
			value = normalizeRating(value)
			if !contains(FilterRatings, value) {
				return f, fmt.Errorf("unknown rating %q", value)
			}
		}
		f.Rating = value
	case FilterSort:
		if value == "" {
			value = DefaultSort
		}
		if !contains(SortOptions, value) {
			return f, fmt.Errorf("unknown sort %q", value)
		}
		f.SortBy = value
	default:
		return f, fmt.Errorf("unknown filter %q", field)
	}
	return f, nil
}

// DiscoverParams builds the discover query for f.
func (f FilterState) DiscoverParams(query string, page int, lookup GenreLookup) (DiscoverParams, error) {
	p := DiscoverParams{Query: strings.TrimSpace(query), Page: page, SortBy: f.SortBy}
	if p.SortBy == "" {
		p.SortBy = DefaultSort
	}
	if p.Page < 1 {
		p.Page = 1
	}

	if f.Genre != "" {
		id, ok := GenreID(f.Genre, lookup)
		if !ok {
			return p, fmt.Errorf("unknown genre %q", f.Genre)
		}
		p.GenreID = id
	}

	if f.Rating != "" {
		r, err := strconv.ParseFloat(f.Rating, 64)
		if err != nil {
			return p, fmt.Errorf("invalid rating %q: %w", f.Rating, err)
		}
		p.MinRating = r
	}

	if f.Year != "" {
		if strings.HasSuffix(f.Year, "s") {
			start, err := strconv.Atoi(strings.TrimSuffix(f.Year, "s"))
			if err != nil {
				return p, fmt.Errorf("invalid decade %q: %w", f.Year, err)
			}
			p.ReleaseFrom = fmt.Sprintf("%d-01-01", start)
			p.ReleaseTo = fmt.Sprintf("%d-12-31", start+9)
		} else {
			y, err := strconv.Atoi(f.Year)
			if err != nil {
				return p, fmt.Errorf("invalid year %q: %w", f.Year, err)
			}
			p.Year = y
		}
	}
	return p, nil
}

// GenreID resolves a genre name through [StaticGenres] and then lookup.
func GenreID(name string, lookup GenreLookup) (int, bool) {
	for _, g := range StaticGenres {
		if strings.EqualFold(g.Name, name) {
			return g.ID, true
		}
	}
	if lookup != nil {
		return lookup.IDFor(name)
	}
	return 0, false
}

func canonicalGenre(name string, lookup GenreLookup) (string, bool) {
	for _, g := range StaticGenres {
		if strings.EqualFold(g.Name, name) {
			return g.Name, true
		}
	}
	if id, ok := lookup.IDFor(name); ok {
		return lookup[id], true
	}
	return "", false
}

func normalizeRating(s string) string {
	s = strings.TrimSuffix(s, "+")
	if r, err := strconv.ParseFloat(s, 64); err == nil && r == float64(int(r)) {
		return strconv.Itoa(int(r))
	}
	return s
}

func contains(values []string, v string) bool {
	for _, s := range values {
		if s == v {
			return true
		}
	}
	return false
}

// DiscoverParams is the query sent to the discover endpoint.
type DiscoverParams struct {
	Query       string
	GenreID     int
	MinRating   float64
	Year        int
	ReleaseFrom string
	ReleaseTo   string
	SortBy      string
	Page        int
}

// Values encodes p as URL query parameters, omitting unset fields.
func (p DiscoverParams) Values() url.Values {
	v := url.Values{}
	if p.Query != "" {
		v.Set("query", p.Query)
	}
	if p.GenreID != 0 {
		v.Set("with_genres", strconv.Itoa(p.GenreID))
	}
	if p.MinRating > 0 {
		v.Set("vote_average.gte", strconv.FormatFloat(p.MinRating, 'f', -1, 64))
	}
	if p.Year != 0 {
		v.Set("primary_release_year", strconv.Itoa(p.Year))
	}
	if p.ReleaseFrom != "" {
		v.Set("primary_release_date.gte", p.ReleaseFrom)
	}
	if p.ReleaseTo != "" {
		v.Set("primary_release_date.lte", p.ReleaseTo)
	}
	sort := p.SortBy
	if sort == "" {
		sort = DefaultSort
	}
	v.Set("sort_by", sort)
	page := p.Page
	if page < 1 {
		page = 1
	}
	v.Set("page", strconv.Itoa(page))
	return v
}
