// package formatter exports track collections (liked songs, catalog snapshots) to CSV, Markdown, plain text and JSON
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/wavelet/internal/models"
	"github.com/desertthunder/wavelet/internal/shared"
)

// Format is an export file format.
type Format string

const (
	CSV      Format = "csv"
	Markdown Format = "md"
	Text     Format = "txt"
	JSON     Format = "json"
)

// ParseFormat accepts csv, md/markdown, txt/text and json.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "csv":
		return CSV, nil
	case "md", "markdown":
		return Markdown, nil
	case "txt", "text":
		return Text, nil
	case "json":
		return JSON, nil
	}
	return "", fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, s)
}

// Collection is a named, ordered set of tracks to export.
type Collection struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Description string         `json:"description,omitempty"`
	ExportedAt  time.Time      `json:"exported_at"`
	Tracks      []models.Track `json:"tracks"`
}

// TotalDuration sums track durations in seconds.
func (c *Collection) TotalDuration() int {
	total := 0
	for _, t := range c.Tracks {
		total += t.Duration
	}
	return total
}

// CoverURL is the artwork of the first track that has one.
func (c *Collection) CoverURL() string {
	for _, t := range c.Tracks {
		if t.ArtworkURL != "" {
			return t.ArtworkURL
		}
	}
	return ""
}

// ExportToCSV converts a Collection to CSV with columns: ID, Title, Artist, Duration, Explicit, Status, AudioURL
func ExportToCSV(c *Collection) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Artist", "Duration", "Explicit", "Status", "AudioURL"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range c.Tracks {
		record := []string{
			track.ID,
			track.Title,
			track.Artist,
			strconv.Itoa(track.Duration),
			strconv.FormatBool(track.Explicit),
			track.Status,
			track.AudioURL,
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

// ExportToMarkdown renders a Collection as a Markdown document, with an optional cover image
func ExportToMarkdown(c *Collection, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "# %s\n\n", c.Name)
	if imageFilename != "" {
		fmt.Fprintf(&buf, "![Cover](%s)\n\n", imageFilename)
	}
	if c.Description != "" {
		fmt.Fprintf(&buf, "%s\n\n", c.Description)
	}

	fmt.Fprintf(&buf, "**Tracks**: %d\n", len(c.Tracks))
	fmt.Fprintf(&buf, "**Length**: %s\n", shared.FormatDuration(c.TotalDuration()))
	if !c.ExportedAt.IsZero() {
		fmt.Fprintf(&buf, "**Exported**: %s\n", c.ExportedAt.UTC().Format(time.RFC3339))
	}
	buf.WriteString("\n## Tracks\n\n")

	buf.WriteString("| # | Title | Artist | Length |\n|---|---|---|---|\n")
	for i, track := range c.Tracks {
		title := escapeCell(track.Title)
		if track.Explicit {
			title += " 🅴"
		}
		fmt.Fprintf(&buf, "| %d | %s | %s | %s |\n", i+1, title, escapeCell(track.Artist), shared.FormatDuration(track.Duration))
	}

	return buf.Bytes(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}

// ExportToText converts a Collection to plain text format
func ExportToText(c *Collection) ([]byte, error) {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "%s\n", c.Name)
	if c.Description != "" {
		fmt.Fprintf(&buf, "%s\n", c.Description)
	}
	fmt.Fprintf(&buf, "Tracks: %d (%s)\n\n", len(c.Tracks), shared.FormatDuration(c.TotalDuration()))

	for i, track := range c.Tracks {
		fmt.Fprintf(&buf, "%d. %s - %s [%s]\n", i+1, track.Artist, track.Title, shared.FormatDuration(track.Duration))
	}

	return buf.Bytes(), nil
}

// ExportToJSON renders the whole Collection, tracks included.
func ExportToJSON(c *Collection, pretty bool) ([]byte, error) {
	return shared.MarshalJSON(c, pretty)
}

// Export renders c in the given format.
func Export(c *Collection, format Format) ([]byte, error) {
	switch format {
	case CSV:
		return ExportToCSV(c)
	case Markdown:
		return ExportToMarkdown(c, "")
	case Text:
		return ExportToText(c)
	case JSON:
		return ExportToJSON(c, true)
	}
	return nil, fmt.Errorf("%w: unknown export format %q", shared.ErrInvalidFlag, format)
}

// DownloadImage downloads an image from the given URL and returns the raw bytes.
// A nil client uses a 30 second timeout.
func DownloadImage(client *http.Client, url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	resp, err := client.Get(url)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	imageData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image data: %w", err)
	}

	return imageData, nil
}

// WriteResult lists the files an export created.
type WriteResult struct {
	Path       string
	Files      []string
	CoverImage string
}

// WriteExport writes c to path in the given format.
//
// An empty path defaults to {c.ID}.{ext}; Markdown exports go to a directory ({c.ID}/README.md) with the first
// track's artwork saved beside them when it can be downloaded.
func WriteExport(c *Collection, format Format, path string, client *http.Client) (*WriteResult, error) {
	if format == Markdown {
		return WriteMarkdownExport(c, path, client)
	}
	if path == "" {
		path = fmt.Sprintf("%s.%s", c.ID, format)
	}

	data, err := Export(c, format)
	if err != nil {
		return nil, fmt.Errorf("failed to generate %s: %w", format, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s file: %w", format, err)
	}
	return &WriteResult{Path: path, Files: []string{path}}, nil
}

// WriteMarkdownExport writes {dir}/README.md and optionally {dir}/cover.jpg. Directory name defaults to c.ID.
func WriteMarkdownExport(c *Collection, outputDir string, client *http.Client) (*WriteResult, error) {
	if outputDir == "" {
		outputDir = c.ID
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &WriteResult{Path: outputDir, Files: []string{}}

	var coverImageFilename string
	if imageURL := c.CoverURL(); imageURL != "" {
		imageData, err := DownloadImage(client, imageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := filepath.Join(outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(c, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := filepath.Join(outputDir, "README.md")
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)
	return result, nil
}
