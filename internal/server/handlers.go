package server

import (
	"cmp"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/desertthunder/reelx/internal/library"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/tasks"
)

const (
	windowSize    = 5
	activityLimit = 10
)

// movieView is a record plus its collection membership.
type movieView struct {
	models.MovieRecord
	library.Flags
}

type listingView struct {
	Status     string             `json:"status"`
	Mode       string             `json:"mode"`
	Category   models.Category    `json:"category"`
	Query      string             `json:"query,omitempty"`
	Filters    models.FilterState `json:"filters"`
	Page       int                `json:"page"`
	TotalPages int                `json:"total_pages"`
	Window     []int              `json:"window"`
	Movies     []movieView        `json:"movies"`
	Error      *errorBody         `json:"error,omitempty"`
	Genres     []models.Genre     `json:"genres,omitempty"`
	Sorts      []string           `json:"sort_options,omitempty"`
}

func (s *Server) view(m models.MovieRecord) movieView {
	v := movieView{MovieRecord: m}
	if s.deps.Library != nil {
		v.Flags = s.deps.Library.FlagsFor(m.ID)
	}
	return v
}

func (s *Server) listing(st tasks.ListingState) listingView {
	v := listingView{
		Status:     st.Status.String(),
		Mode:       st.Mode.String(),
		Category:   st.Category,
		Query:      st.Query,
		Filters:    st.Filters,
		Page:       st.Page,
		TotalPages: st.TotalPages,
		Window:     st.Window(windowSize),
		Movies:     make([]movieView, 0, len(st.Movies)),
	}
	for _, m := range st.Movies {
		v.Movies = append(v.Movies, s.view(m))
	}
	if st.Status == tasks.StatusFailed {
		v.Error = &errorBody{Error: st.Error, Kind: st.ErrorKind}
	}
	return v
}

func (s *Server) controller() *tasks.ListingController {
	return tasks.NewListingController(s.catalog(), tasks.ListingOpts{
		Normalizer: s.deps.Normalizer,
		Logger:     s.logger,
	})
}

// listingQuery reads category, page and filter parameters.
func listingQuery(q url.Values, lookup models.GenreLookup) (tasks.ListingQuery, error) {
	out := tasks.ListingQuery{Category: models.CategoryPopular, Filters: models.DefaultFilters(), Page: 1}

	if c := q.Get("category"); c != "" {
		cat, err := models.ParseCategory(c)
		if err != nil {
			return out, fmt.Errorf("%w: %v", shared.ErrInvalidArgument, err)
		}
		out.Category = cat
	}

	if p := q.Get("page"); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 {
			return out, fmt.Errorf("%w: %q", shared.ErrInvalidPage, p)
		}
		out.Page = n
	}

	for _, field := range []string{models.FilterGenre, models.FilterYear, models.FilterRating, models.FilterSort} {
		if !q.Has(field) {
			continue
		}
		f, err := out.Filters.With(field, q.Get(field), lookup)
		if err != nil {
			return out, fmt.Errorf("%w: %v", shared.ErrInvalidFilter, err)
		}
		out.Filters = f
	}
	return out, nil
}

func (s *Server) serveListing(w http.ResponseWriter, r *http.Request, query string) {
	ctrl := s.controller()
	lookup := ctrl.Genres(r.Context())

	lq, err := listingQuery(r.URL.Query(), lookup)
	if err != nil {
		writeError(w, err)
		return
	}
	lq.Query = query

	st, err := ctrl.Load(r.Context(), lq)
	v := s.listing(st)
	v.Sorts = models.SortOptions
	for id, name := range lookup {
		v.Genres = append(v.Genres, models.Genre{ID: id, Name: name})
	}
	slices.SortFunc(v.Genres, func(a, b models.Genre) int { return cmp.Compare(a.Name, b.Name) })
	if err != nil {
		writeJSON(w, http.StatusBadGateway, v)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	s.serveListing(w, r, "")
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if strings.TrimSpace(query) == "" {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	s.serveListing(w, r, query)
}

func movieID(r *http.Request) (int, error) {
	raw := chi.URLParam(r, "id")
	id, err := strconv.Atoi(raw)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("%w: movie id %q", shared.ErrInvalidArgument, raw)
	}
	return id, nil
}

func (s *Server) handleMovie(w http.ResponseWriter, r *http.Request) {
	id, err := movieID(r)
	if err != nil {
		writeError(w, err)
		return
	}

	ctrl := s.controller()
	ctrl.Genres(r.Context())
	rec, err := ctrl.Select(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(rec))
}

type registerRequest struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	ConfirmPassword string `json:"confirm_password"`
	AcceptTerms     bool   `json:"accept_terms"`
}

type sessionView struct {
	User models.User `json:"user"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	if s.deps.Session == nil {
		writeError(w, shared.ErrNotImplemented)
		return
	}

	var creds models.Credentials
	if err := decodeBody(r, &creds); err != nil {
		writeError(w, err)
		return
	}

	sess, err := s.deps.Session.Login(r.Context(), creds)
	if err != nil {
		writeError(w, err)
		return
	}
	s.deps.Activity.Log(r.Context(), models.ActivityLogin, 0, sess.User.DisplayName())
	writeJSON(w, http.StatusOK, sessionView{User: sess.User})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	if s.deps.Session == nil {
		writeError(w, shared.ErrNotImplemented)
		return
	}

	var req registerRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, err)
		return
	}

	reg := models.Registration{
		Name:            req.Name,
		Email:           req.Email,
		Password:        req.Password,
		ConfirmPassword: req.ConfirmPassword,
		AcceptTerms:     req.AcceptTerms,
	}
	if err := s.deps.Session.Register(r.Context(), reg); err != nil {
		writeError(w, err)
		return
	}
	s.deps.Activity.Log(r.Context(), models.ActivityRegister, 0, reg.Email)
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Registration successful. Please log in."})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	if s.deps.Session == nil {
		writeError(w, shared.ErrNotImplemented)
		return
	}
	if err := s.deps.Session.Logout(r.Context()); err != nil {
		writeError(w, err)
		return
	}
	s.deps.Activity.Log(r.Context(), models.ActivityLogout, 0, "")
	w.WriteHeader(http.StatusNoContent)
}

type dashboardView struct {
	User      models.User        `json:"user"`
	ExpiresAt string             `json:"token_expires_at,omitempty"`
	Watchlist []int              `json:"watchlist"`
	Favorites []int              `json:"favorites"`
	Activity  []*models.Activity `json:"activity"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.deps.Session == nil {
		writeError(w, shared.ErrNotAuthenticated)
		return
	}
	sess := s.deps.Session.Current()
	if sess == nil {
		writeError(w, shared.ErrNotAuthenticated)
		return
	}

	v := dashboardView{User: sess.User, Watchlist: []int{}, Favorites: []int{}}
	if claims, err := s.deps.Session.Claims(); err == nil && !claims.ExpiresAt.IsZero() {
		v.ExpiresAt = claims.ExpiresAt.UTC().Format(http.TimeFormat)
	}
	if s.deps.Library != nil {
		v.Watchlist = s.deps.Library.Watchlist()
		v.Favorites = s.deps.Library.Favorites()
	}

	activity, err := s.deps.Activity.Recent(r.Context(), activityLimit)
	if err != nil {
		s.logger.Warn("failed to load activity", "error", err)
	}
	if activity == nil {
		activity = []*models.Activity{}
	}
	v.Activity = activity
	writeJSON(w, http.StatusOK, v)
}

type toggleView struct {
	ID         int                `json:"id"`
	Collection library.Collection `json:"collection"`
	Added      bool               `json:"added"`
	library.Flags
}

func (s *Server) handleToggle(c library.Collection) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := movieID(r)
		if err != nil {
			writeError(w, err)
			return
		}
		if s.deps.Library == nil {
			writeError(w, shared.ErrNotImplemented)
			return
		}

		added, err := s.deps.Library.Toggle(r.Context(), c, id)
		if err != nil {
			writeError(w, err)
			return
		}
		s.deps.Activity.Log(r.Context(), c.ActivityKind(added), id, "")
		writeJSON(w, http.StatusOK, toggleView{ID: id, Collection: c, Added: added, Flags: s.deps.Library.FlagsFor(id)})
	}
}

