// Package normalizer turns catalog API movie objects into [models.MovieRecord] values.
//
// Normalization is total: every missing or null field degrades to a fixed fallback
// ("N/A", "Unknown", a placeholder image) and no input makes it fail.
package normalizer

import (
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
)

const (
	NotAvailable    = "N/A"
	UnknownDirector = "Unknown"
	MaxCast         = 5
	MaxRating       = 10.0

	posterSize   = "w500"
	backdropSize = "original"
)

// Normalizer carries the image settings used to build absolute URLs.
type Normalizer struct {
	imageBase           string
	posterPlaceholder   string
	backdropPlaceholder string
	printer             *message.Printer
}

// New builds a Normalizer from media config. Empty fields fall back to the embedded defaults.
func New(cfg shared.MediaConfig) *Normalizer {
	def := shared.DefaultConfig().Media
	if cfg.ImageBaseURL == "" {
		cfg.ImageBaseURL = def.ImageBaseURL
	}
	if cfg.PosterPlaceholder == "" {
		cfg.PosterPlaceholder = def.PosterPlaceholder
	}
	if cfg.BackdropPlaceholder == "" {
		cfg.BackdropPlaceholder = def.BackdropPlaceholder
	}
	return &Normalizer{
		imageBase:           strings.TrimRight(cfg.ImageBaseURL, "/"),
		posterPlaceholder:   cfg.PosterPlaceholder,
		backdropPlaceholder: cfg.BackdropPlaceholder,
		printer:             message.NewPrinter(language.English),
	}
}

var defaultNormalizer = New(shared.MediaConfig{})

// Normalize converts raw with the default image settings.
func Normalize(raw models.RawMovie, lookup models.GenreLookup) models.MovieRecord {
	return defaultNormalizer.Normalize(raw, lookup)
}

// NormalizeAll converts a page of list results in order.
func (n *Normalizer) NormalizeAll(raws []models.RawMovie, lookup models.GenreLookup) []models.MovieRecord {
	out := make([]models.MovieRecord, 0, len(raws))
	for _, r := range raws {
		out = append(out, n.Normalize(r, lookup))
	}
	return out
}

// Normalize converts one raw movie. Detail payloads also populate [models.MovieDetails].
//
// lookup may be nil, in which case list genre ids are rendered as numbers.
func (n *Normalizer) Normalize(raw models.RawMovie, lookup models.GenreLookup) models.MovieRecord {
	rec := models.MovieRecord{
		ID:       raw.ID,
		Title:    strings.TrimSpace(raw.Title),
		Year:     Year(raw.ReleaseDate),
		Genre:    Genre(raw, lookup),
		Rating:   ClampRating(raw.VoteAverage),
		Poster:   n.imageURL(posterSize, raw.PosterPath, n.posterPlaceholder),
		Overview: raw.Overview,
	}
	if raw.Kind == models.RawDetail {
		rec.Details = n.details(raw)
	}
	return rec
}

func (n *Normalizer) details(raw models.RawMovie) *models.MovieDetails {
	d := &models.MovieDetails{
		Director: UnknownDirector,
		Cast:     []string{},
		Runtime:  Runtime(raw.Runtime),
		Backdrop: n.imageURL(backdropSize, raw.BackdropPath, n.backdropPlaceholder),
		Budget:   n.Money(raw.Budget),
		Revenue:  n.Money(raw.Revenue),
		Genres:   genreNames(raw.Genres),
	}
	if raw.Credits == nil {
		return d
	}
	for _, c := range raw.Credits.Crew {
		if c.Job == "Director" && c.Name != "" {
			d.Director = c.Name
			break
		}
	}
	for _, c := range raw.Credits.Cast {
		if len(d.Cast) == MaxCast {
			break
		}
		d.Cast = append(d.Cast, c.Name)
	}
	return d
}

func (n *Normalizer) imageURL(size, path, placeholder string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return placeholder
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return n.imageBase + "/" + size + path
}

// Money renders whole dollars with thousands grouping, or "N/A" for zero.
func (n *Normalizer) Money(amount int64) string {
	if amount <= 0 {
		return NotAvailable
	}
	return n.printer.Sprintf("$%d", amount)
}

// Year takes everything before the first dash of a release date.
func Year(releaseDate string) string {
	releaseDate = strings.TrimSpace(releaseDate)
	if releaseDate == "" {
		return NotAvailable
	}
	if i := strings.IndexByte(releaseDate, '-'); i >= 0 {
		if i == 0 {
			return NotAvailable
		}
		return releaseDate[:i]
	}
	return releaseDate
}

// Genre renders the genre field of a record.
//
// Genre objects win over ids. Ids resolve through lookup and unresolved ids are dropped.
// With no lookup the ids themselves are joined.
func Genre(raw models.RawMovie, lookup models.GenreLookup) string {
	if len(raw.Genres) > 0 {
		return genreNames(raw.Genres)
	}
	if len(raw.GenreIDs) == 0 {
		return NotAvailable
	}

	parts := make([]string, 0, len(raw.GenreIDs))
	for _, id := range raw.GenreIDs {
		if lookup == nil {
			parts = append(parts, strconv.Itoa(id))
			continue
		}
		if name, ok := lookup[id]; ok && name != "" {
			parts = append(parts, name)
		}
	}
	if len(parts) == 0 {
		return NotAvailable
	}
	return strings.Join(parts, ", ")
}

func genreNames(genres []models.Genre) string {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		if g.Name != "" {
			names = append(names, g.Name)
		}
	}
	if len(names) == 0 {
		return NotAvailable
	}
	return strings.Join(names, ", ")
}

// ClampRating keeps a vote average within [0, 10].
func ClampRating(r float64) float64 {
	if math.IsNaN(r) || r < 0 {
		return 0
	}
	return math.Min(r, MaxRating)
}

// Runtime renders minutes as "Xh Ym", or "N/A" when unknown.
func Runtime(minutes int) string {
	if minutes <= 0 {
		return NotAvailable
	}
	return strconv.Itoa(minutes/60) + "h " + strconv.Itoa(minutes%60) + "m"
}

// MergeDetails adds the detail-only fields of detail to base.
//
// Fields already present on base are kept; only Details is taken from detail.
func MergeDetails(base, detail models.MovieRecord) models.MovieRecord {
	if base.ID == 0 {
		return detail
	}
	out := base
	out.Details = detail.Details
	if out.Overview == "" {
		out.Overview = detail.Overview
	}
	return out
}
