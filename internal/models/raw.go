package models

// RawKind tags which catalog endpoint produced a [RawMovie].
type RawKind int

const (
	RawListItem RawKind = iota
	RawDetail
)

func (k RawKind) String() string {
	if k == RawDetail {
		return "detail"
	}
	return "list"
}

// RawMovie is a movie exactly as the catalog API returns it.
//
// List items carry GenreIDs; detail payloads carry Genres, Runtime, Budget, Revenue and Credits.
// Any field may be absent or null.
type RawMovie struct {
	Kind         RawKind  `json:"-"`
	ID           int      `json:"id"`
	Title        string   `json:"title"`
	ReleaseDate  string   `json:"release_date"`
	VoteAverage  float64  `json:"vote_average"`
	PosterPath   string   `json:"poster_path"`
	BackdropPath string   `json:"backdrop_path"`
	Overview     string   `json:"overview"`
	GenreIDs     []int    `json:"genre_ids"`
	Genres       []Genre  `json:"genres"`
	Runtime      int      `json:"runtime"`
	Budget       int64    `json:"budget"`
	Revenue      int64    `json:"revenue"`
	Credits      *Credits `json:"credits"`
}

// Credits is the cast and crew block of a detail payload.
type Credits struct {
	Cast []CastMember `json:"cast"`
	Crew []CrewMember `json:"crew"`
}

type CastMember struct {
	Name      string `json:"name"`
	Character string `json:"character"`
}

type CrewMember struct {
	Name string `json:"name"`
	Job  string `json:"job"`
}

// RawListPage is one page of list results.
type RawListPage struct {
	Page         int        `json:"page"`
	Results      []RawMovie `json:"results"`
	TotalPages   int        `json:"total_pages"`
	TotalResults int        `json:"total_results"`
}
