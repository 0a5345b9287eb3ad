package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"

	"github.com/desertthunder/reelx/internal/library"
	"github.com/desertthunder/reelx/internal/models"
)

var _ list.Item = movieItem{}

// movieItem wraps [models.MovieRecord] to implement [list.Item].
type movieItem struct {
	movie models.MovieRecord
	flags library.Flags
}

func (i movieItem) FilterValue() string { return i.movie.Title }
func (i movieItem) Title() string {
	var marks []string
	if i.flags.Watchlist {
		marks = append(marks, "◉")
	}
	if i.flags.Favorite {
		marks = append(marks, "♥")
	}
	title := fmt.Sprintf("%s (%s)", i.movie.Title, i.movie.Year)
	if len(marks) > 0 {
		title += " " + strings.Join(marks, " ")
	}
	return title
}
func (i movieItem) Description() string {
	return fmt.Sprintf("%s • ★ %.1f", i.movie.Genre, i.movie.Rating)
}
