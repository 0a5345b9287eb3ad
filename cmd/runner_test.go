package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/desertthunder/reelx/internal/library"
	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/services"
	"github.com/desertthunder/reelx/internal/shared"
	"github.com/desertthunder/reelx/internal/storage"
	tu "github.com/desertthunder/reelx/internal/testing"
)

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			catalog := &tu.MockCatalog{}
			identity := &tu.MockIdentity{}
			fs := afero.NewMemMapFs()

			runner := NewRunner(RunnerOpts{
				Config:   config,
				Logger:   logger,
				Output:   output,
				Catalog:  catalog,
				Identity: identity,
				Fs:       fs,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.catalog != catalog {
				t.Error("expected catalog to be set")
			}
			if runner.identity != identity {
				t.Error("expected identity to be set")
			}
			if runner.fs != fs {
				t.Error("expected fs to be set")
			}
			if runner.normalizer == nil {
				t.Error("expected normalizer to be built from config")
			}
		})

		t.Run("with nil config uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Config: nil})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
		})

		t.Run("with nil logger uses default", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Logger: nil})

			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
		})

		t.Run("with nil output uses stdout", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: nil})

			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
		})

		t.Run("with nil fs uses the OS filesystem", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if _, ok := runner.fs.(*afero.OsFs); !ok {
				t.Errorf("expected OsFs, got %T", runner.fs)
			}
		})

		t.Run("with configPath sets field", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{ConfigPath: "/test/path/config.toml"})

			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeJSON(map[string]string{"key": "value"}, true)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("writes compact JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			expected := `{"key":"value"}` + "\n"
			if result := output.String(); result != expected {
				t.Errorf("expected %q, got %q", expected, result)
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			// channels cannot be marshaled to JSON
			err := runner.writeJSON(make(chan int), false)
			if err == nil {
				t.Fatal("expected error for non-serializable data")
			}
			if !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil {
				t.Fatal("expected error writing newline")
			}
			if !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		t.Run("writes plain text successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writePlain("hello %s", "world"); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if result := output.String(); result != "hello world" {
				t.Errorf("expected 'hello world', got %q", result)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writePlain("test")
			if err == nil {
				t.Fatal("expected error from failing writer")
			}
			if !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})
		commands := runner.register()

		if len(commands) == 0 {
			t.Error("expected at least one command to be registered")
		}

		names := map[string]bool{}
		for i, cmd := range commands {
			if cmd == nil {
				t.Errorf("command at index %d is nil", i)
				continue
			}
			names[cmd.Name] = true
		}
		for _, want := range []string{"setup", "auth", "movies", "watchlist", "favorites", "activity", "serve", "tui"} {
			if !names[want] {
				t.Errorf("expected %q command to be registered", want)
			}
		}
	})

	t.Run("openStorage", func(t *testing.T) {
		t.Run("selects the configured backend", func(t *testing.T) {
			for backend, want := range map[string]string{
				"memory": "*storage.Memory",
				"file":   "*storage.File",
			} {
				config := shared.DefaultConfig()
				config.Storage.Backend = backend
				config.Storage.Path = "/data"
				runner := NewRunner(RunnerOpts{Config: config, Fs: afero.NewMemMapFs()})

				st, err := runner.openStorage()
				if err != nil {
					t.Fatalf("%s: expected no error, got %v", backend, err)
				}
				if got := typeName(st); got != want {
					t.Errorf("%s: expected %s, got %s", backend, want, got)
				}
			}
		})

		t.Run("rejects unknown backends", func(t *testing.T) {
			config := shared.DefaultConfig()
			config.Storage.Backend = "redis"
			runner := NewRunner(RunnerOpts{Config: config})

			_, err := runner.openStorage()
			if !errors.Is(err, shared.ErrInvalidConfig) {
				t.Errorf("expected ErrInvalidConfig, got %v", err)
			}
		})
	})
}

func typeName(v any) string {
	switch v.(type) {
	case *storage.Memory:
		return "*storage.Memory"
	case *storage.File:
		return "*storage.File"
	}
	return "unknown"
}

type harness struct {
	runner   *Runner
	output   *bytes.Buffer
	catalog  *tu.MockCatalog
	identity *tu.MockIdentity
	store    storage.Storage
	fs       afero.Fs
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	config := shared.DefaultConfig()
	config.Database.Path = ":memory:"
	db := tu.MemoryDB(t)

	h := &harness{
		output:   &bytes.Buffer{},
		catalog:  &tu.MockCatalog{},
		identity: &tu.MockIdentity{},
		store:    storage.NewMemory(),
		fs:       afero.NewMemMapFs(),
	}
	h.runner = NewRunner(RunnerOpts{
		Config:   config,
		Catalog:  h.catalog,
		Identity: h.identity,
		Logger:   shared.NewLogger(&bytes.Buffer{}),
		Output:   h.output,
		Fs:       h.fs,
		Storage:  h.store,
		DB:       db,
	})
	t.Cleanup(func() { h.runner.Close() })
	return h
}

func (h *harness) run(args ...string) error {
	h.output.Reset()
	app := &cli.Command{Name: "reelx", Commands: h.runner.register()}
	return app.Run(context.Background(), append([]string{"reelx"}, args...))
}

func TestCollectionCommands(t *testing.T) {
	t.Run("add, list and remove ids", func(t *testing.T) {
		h := newHarness(t)

		require.NoError(t, h.run("watchlist", "add", "5", "7"))
		assert.Contains(t, h.output.String(), "✓ 5 in Watchlist")

		require.NoError(t, h.run("watchlist", "add", "5"))
		assert.Contains(t, h.output.String(), "5 already in Watchlist")

		require.NoError(t, h.run("watchlist", "list", "--ids", "--json", "--pretty=false"))
		assert.Equal(t, "[5,7]\n", h.output.String())

		require.NoError(t, h.run("watchlist", "remove", "5"))
		require.NoError(t, h.run("watchlist", "list", "--ids", "--json", "--pretty=false"))
		assert.Equal(t, "[7]\n", h.output.String())

		var saved []int
		require.NoError(t, storage.GetJSON(context.Background(), h.store, storage.KeyWatchlist, &saved))
		assert.Equal(t, []int{7}, saved)

		require.NoError(t, h.run("activity", "--json", "--pretty=false"))
		assert.Contains(t, h.output.String(), string(models.ActivityWatchlistRemove))
		assert.Contains(t, h.output.String(), string(models.ActivityWatchlistAdd))
	})

	t.Run("collections are independent", func(t *testing.T) {
		h := newHarness(t)

		require.NoError(t, h.run("favorites", "add", "9"))
		app, err := h.runner.open(context.Background())
		require.NoError(t, err)
		assert.True(t, app.library.Contains(library.Favorites, 9))
		assert.False(t, app.library.Contains(library.Watchlist, 9))
	})

	t.Run("rejects bad ids", func(t *testing.T) {
		h := newHarness(t)

		assert.ErrorIs(t, h.run("watchlist", "add", "abc"), shared.ErrInvalidArgument)
		assert.ErrorIs(t, h.run("watchlist", "add"), shared.ErrMissingArgument)
	})

	t.Run("export writes the resolved collection", func(t *testing.T) {
		h := newHarness(t)
		h.catalog.On("FetchGenres", mock.Anything).Return([]models.Genre{{ID: 80, Name: "Crime"}, {ID: 18, Name: "Drama"}}, nil)
		h.catalog.On("FetchDetails", mock.Anything, 1).Return(&models.RawMovie{
			Kind: models.RawDetail, ID: 1, Title: "Heat", ReleaseDate: "1995-12-15", VoteAverage: 7.9, GenreIDs: []int{80, 18},
		}, nil)
		h.catalog.On("FetchDetails", mock.Anything, 2).Return(nil, &shared.APIError{StatusCode: 404, Message: "not found"})

		require.NoError(t, h.run("favorites", "add", "1", "2"))
		require.NoError(t, h.run("favorites", "export", "--format", "json", "--output", "/out/favs.json"))

		out := h.output.String()
		assert.Contains(t, out, "Exported 1 of 2 movies to /out/favs.json")
		assert.Contains(t, out, "✗ 2")

		data, err := afero.ReadFile(h.fs, "/out/favs.json")
		require.NoError(t, err)
		assert.Contains(t, string(data), `"Heat"`)
		assert.Contains(t, string(data), `"Crime, Drama"`)
		h.catalog.AssertCalled(t, "FetchGenres", mock.Anything)
	})

	t.Run("export rejects unknown formats", func(t *testing.T) {
		h := newHarness(t)

		assert.ErrorIs(t, h.run("watchlist", "export", "--format", "xml"), shared.ErrInvalidFlag)
	})
}

func TestMoviesCommands(t *testing.T) {
	heat := tu.Movie(1, "Heat", "1995-12-15", 7.9, 80)
	genres := []models.Genre{{ID: 80, Name: "Crime"}, {ID: 28, Name: "Action"}}

	t.Run("list prints a category page with membership marks", func(t *testing.T) {
		h := newHarness(t)
		h.catalog.On("FetchGenres", mock.Anything).Return(genres, nil)
		h.catalog.On("FetchByCategory", mock.Anything, models.CategoryTopRated, 2).Return(tu.Page(2, 3, heat), nil)

		require.NoError(t, h.run("watchlist", "add", "1"))
		require.NoError(t, h.run("movies", "list", "--category", "top-rated", "--page", "2"))

		out := h.output.String()
		assert.Contains(t, out, "Top Rated Movies")
		assert.Contains(t, out, "Heat (1995)")
		assert.Contains(t, out, "Crime ◉")
		assert.Contains(t, out, "Page 2 of 3")
	})

	t.Run("filters switch to discover", func(t *testing.T) {
		h := newHarness(t)
		h.catalog.On("FetchGenres", mock.Anything).Return(genres, nil)
		h.catalog.On("Discover", mock.Anything, mock.MatchedBy(func(p models.DiscoverParams) bool {
			return p.GenreID == 28 && p.MinRating == 8 && p.Page == 1
		})).Return(tu.Page(1, 1, heat), nil)

		require.NoError(t, h.run("movies", "list", "--genre", "action", "--rating", "8+"))
		assert.Contains(t, h.output.String(), "Discover Action · 8+")
		h.catalog.AssertNotCalled(t, "FetchByCategory", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("invalid filters are rejected before any listing request", func(t *testing.T) {
		h := newHarness(t)
		h.catalog.On("FetchGenres", mock.Anything).Return(genres, nil)

		assert.ErrorIs(t, h.run("movies", "list", "--rating", "3"), shared.ErrInvalidFlag)
		assert.ErrorIs(t, h.run("movies", "list", "--page", "0"), shared.ErrInvalidPage)
		h.catalog.AssertNotCalled(t, "FetchByCategory", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("search requires a query", func(t *testing.T) {
		h := newHarness(t)

		assert.ErrorIs(t, h.run("movies", "search"), shared.ErrMissingArgument)
	})

	t.Run("search failure carries the search message", func(t *testing.T) {
		h := newHarness(t)
		h.catalog.On("FetchGenres", mock.Anything).Return(genres, nil)
		h.catalog.On("Search", mock.Anything, "heat wave", 1).Return(nil, &shared.NetworkError{Op: "GET", Err: errors.New("refused")})

		err := h.run("movies", "search", "heat", "wave")
		require.Error(t, err)
		assert.ErrorIs(t, err, shared.ErrNetwork)
		assert.Contains(t, err.Error(), "Failed to load search results")
	})

	t.Run("show prints details", func(t *testing.T) {
		h := newHarness(t)
		h.catalog.On("FetchDetails", mock.Anything, 1).Return(&models.RawMovie{
			Kind: models.RawDetail, ID: 1, Title: "Heat", ReleaseDate: "1995-12-15", Runtime: 170,
			Credits: &models.Credits{Crew: []models.CrewMember{{Name: "Michael Mann", Job: "Director"}}},
		}, nil)

		require.NoError(t, h.run("movies", "show", "1"))
		out := h.output.String()
		assert.Contains(t, out, "Heat (1995)")
		assert.Contains(t, out, "Michael Mann")
		assert.Contains(t, out, "2h 50m")
	})

	t.Run("genre resolves names through the catalog table", func(t *testing.T) {
		h := newHarness(t)
		h.catalog.On("FetchGenres", mock.Anything).Return(genres, nil)
		h.catalog.On("FetchByGenre", mock.Anything, 80, 1).Return(tu.Page(1, 1, heat), nil)

		require.NoError(t, h.run("movies", "genre", "crime"))
		assert.Contains(t, h.output.String(), "Crime Movies")

		assert.ErrorIs(t, h.run("movies", "genre", "western"), shared.ErrInvalidArgument)
	})
}

func TestAuthCommands(t *testing.T) {
	sess := &models.Session{Token: "tok", User: models.User{ID: "1", Name: "Ada", Email: "ada@example.com"}}

	t.Run("login, status, dashboard and logout", func(t *testing.T) {
		h := newHarness(t)
		creds := models.Credentials{Email: "ada@example.com", Password: "secret1"}
		h.identity.On("Login", mock.Anything, creds).Return(sess, nil)

		assert.ErrorIs(t, h.run("auth", "dashboard"), shared.ErrNotAuthenticated)

		require.NoError(t, h.run("auth", "login", "--email", "ada@example.com", "--password", "secret1"))
		assert.Contains(t, h.output.String(), "Signed in as Ada")

		_, err := h.store.Get(context.Background(), storage.KeySession)
		require.NoError(t, err)

		require.NoError(t, h.run("auth", "status", "--json", "--pretty=false"))
		assert.Contains(t, h.output.String(), `"authenticated":true`)

		require.NoError(t, h.run("auth", "dashboard"))
		assert.Contains(t, h.output.String(), "Welcome back, Ada")

		require.NoError(t, h.run("auth", "logout"))
		_, err = h.store.Get(context.Background(), storage.KeySession)
		assert.ErrorIs(t, err, storage.ErrNotFound)
		assert.ErrorIs(t, h.run("auth", "dashboard"), shared.ErrNotAuthenticated)
	})

	t.Run("login validation never reaches the identity service", func(t *testing.T) {
		h := newHarness(t)

		err := h.run("auth", "login", "--email", "not-an-email", "--password", "secret1")
		assert.ErrorIs(t, err, shared.ErrValidation)
		h.identity.AssertNotCalled(t, "Login", mock.Anything, mock.Anything)
	})

	t.Run("register requires accepted terms", func(t *testing.T) {
		h := newHarness(t)
		h.identity.On("Register", mock.Anything, mock.Anything).Return(nil)

		err := h.run("auth", "register", "--name", "Ada", "--email", "ada@example.com", "--password", "secret1")
		assert.ErrorIs(t, err, shared.ErrValidation)

		require.NoError(t, h.run("auth", "register", "--name", "Ada", "--email", "ada@example.com", "--password", "secret1", "--accept-terms"))
		assert.Contains(t, h.output.String(), "Account created")
		h.identity.AssertNumberOfCalls(t, "Register", 1)
	})
}

var _ services.Catalog = (*tu.MockCatalog)(nil)
