// package formatter renders movie collections as CSV, Markdown, plain text or JSON and writes them to disk
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/spf13/afero"

	"github.com/desertthunder/reelx/internal/models"
	"github.com/desertthunder/reelx/internal/shared"
)

// Format names an export encoding.
type Format string

const (
	FormatCSV      Format = "csv"
	FormatMarkdown Format = "markdown"
	FormatText     Format = "text"
	FormatJSON     Format = "json"
)

// Formats lists the supported formats in display order.
var Formats = []Format{FormatCSV, FormatMarkdown, FormatText, FormatJSON}

// ParseFormat accepts a format name or its common file extension.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return FormatCSV, nil
	case "markdown", "md":
		return FormatMarkdown, nil
	case "text", "txt":
		return FormatText, nil
	case "json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, s)
}

// Ext is the file extension used for f.
func (f Format) Ext() string {
	switch f {
	case FormatMarkdown:
		return ".md"
	case FormatText:
		return ".txt"
	default:
		return "." + string(f)
	}
}

// Export is one named collection ready to be rendered.
type Export struct {
	Name       string               `json:"name"`
	ExportedAt time.Time            `json:"exported_at"`
	Movies     []models.MovieRecord `json:"movies"`
}

// Render encodes export in format f.
func Render(export *Export, f Format) ([]byte, error) {
	switch f {
	case FormatCSV:
		return ExportToCSV(export)
	case FormatMarkdown:
		return ExportToMarkdown(export)
	case FormatText:
		return ExportToText(export)
	case FormatJSON:
		return ExportToJSON(export)
	}
	return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, f)
}

// ExportToCSV writes one row per movie: ID, Title, Year, Genre, Rating, Director, Runtime, Poster
func ExportToCSV(export *Export) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Year", "Genre", "Rating", "Director", "Runtime", "Poster"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, m := range export.Movies {
		director, runtime := detailColumns(m)
		record := []string{
			strconv.Itoa(m.ID),
			m.Title,
			m.Year,
			m.Genre,
			strconv.FormatFloat(m.Rating, 'f', 1, 64),
			director,
			runtime,
			m.Poster,
		}
		if err := writer.Write(record); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a heading, a count and a numbered list with poster links.
func ExportToMarkdown(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", title(export))
	fmt.Fprintf(&buf, "**Movies**: %d\n", len(export.Movies))
	if !export.ExportedAt.IsZero() {
		fmt.Fprintf(&buf, "**Exported**: %s\n", export.ExportedAt.UTC().Format(time.RFC3339))
	}
	buf.WriteString("\n")

	for i, m := range export.Movies {
		fmt.Fprintf(&buf, "%d. **%s** (%s) ★ %.1f\n", i+1, m.Title, m.Year, m.Rating)
		fmt.Fprintf(&buf, "   - Genre: %s\n", m.Genre)
		if m.HasDetails() {
			fmt.Fprintf(&buf, "   - Director: %s\n", m.Details.Director)
			fmt.Fprintf(&buf, "   - Runtime: %s\n", m.Details.Runtime)
			if len(m.Details.Cast) > 0 {
				fmt.Fprintf(&buf, "   - Cast: %s\n", strings.Join(m.Details.Cast, ", "))
			}
		}
		fmt.Fprintf(&buf, "   - ![Poster](%s)\n", m.Poster)
	}

	return buf.Bytes(), nil
}

// ExportToText renders a plain numbered list.
func ExportToText(export *Export) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "Collection: %s\n", title(export))
	fmt.Fprintf(&buf, "Movies: %d\n\n", len(export.Movies))

	for i, m := range export.Movies {
		fmt.Fprintf(&buf, "%d. %s (%s) - %s - %.1f\n", i+1, m.Title, m.Year, m.Genre, m.Rating)
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the whole export as indented JSON.
func ExportToJSON(export *Export) ([]byte, error) {
	data, err := json.MarshalIndent(export, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return append(data, '\n'), nil
}

// WriteExport renders export and writes it to path on fs, creating parent directories.
//
// An empty path defaults to {name}{ext} in the working directory.
func WriteExport(fs afero.Fs, export *Export, f Format, path string) (string, error) {
	if path == "" {
		path = DefaultFilename(export.Name, f)
	}

	data, err := Render(export, f)
	if err != nil {
		return "", err
	}

	if dir := filepath.Dir(path); dir != "." && dir != "" {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return "", fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s file: %w", f, err)
	}
	return path, nil
}

// DefaultFilename is {name}_movies{ext}, or movies{ext} when name is empty.
func DefaultFilename(name string, f Format) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return "movies" + f.Ext()
	}
	return name + "_movies" + f.Ext()
}

func title(export *Export) string {
	if export.Name == "" {
		return "Movies"
	}
	return strings.ToUpper(export.Name[:1]) + export.Name[1:]
}

func detailColumns(m models.MovieRecord) (director, runtime string) {
	if !m.HasDetails() {
		return "", ""
	}
	return m.Details.Director, m.Details.Runtime
}
