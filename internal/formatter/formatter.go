// package formatter provides functions to export soundtrack data to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/vincentsto199-blip/Comic/internal/models"
	"github.com/vincentsto199-blip/Comic/internal/shared"
)

// ExportToCSV converts a soundtrack's track list to CSV with columns: Order, Title, URL, Pages
func ExportToCSV(soundtrack *models.Soundtrack) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Order", "Title", "URL", "Pages"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, track := range soundtrack.Tracks() {
		record := []string{
			strconv.Itoa(track.OrderIndex + 1),
			track.Title,
			track.YouTubeURL,
			pageRange(track),
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

// ExportToMarkdown converts a soundtrack to Markdown with optional cover image
func ExportToMarkdown(soundtrack *models.Soundtrack, issueTitle, imageFilename string) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", soundtrack.Title()))

	if imageFilename != "" {
		buf.WriteString(fmt.Sprintf("![Cover](%s)\n\n", imageFilename))
	}

	if issueTitle != "" {
		buf.WriteString(fmt.Sprintf("**Issue**: %s\n", issueTitle))
	}
	buf.WriteString(fmt.Sprintf("**Curated by**: %s\n", soundtrack.OwnerName()))
	buf.WriteString(fmt.Sprintf("**Score**: %d (%d up, %d down)\n\n",
		soundtrack.Score(), soundtrack.Upvotes(), soundtrack.Downvotes()))

	buf.WriteString("## Tracks\n\n")
	for i, track := range soundtrack.Tracks() {
		pagePart := ""
		if pages := pageRange(track); pages != "" {
			pagePart = fmt.Sprintf(" (pages %s)", pages)
		}
		buf.WriteString(fmt.Sprintf("%d. [%s](%s)%s\n", i+1, track.Title, track.YouTubeURL, pagePart))
	}

	return buf.Bytes(), nil
}

// ExportToText converts a soundtrack to plain text format
func ExportToText(soundtrack *models.Soundtrack) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Soundtrack: %s\n", soundtrack.Title()))
	buf.WriteString(fmt.Sprintf("Curated by: %s\n", soundtrack.OwnerName()))
	buf.WriteString(fmt.Sprintf("Tracks: %d\n\n", len(soundtrack.Tracks())))

	for i, track := range soundtrack.Tracks() {
		pagePart := ""
		if pages := pageRange(track); pages != "" {
			pagePart = fmt.Sprintf(" [pages %s]", pages)
		}
		buf.WriteString(fmt.Sprintf("%d. %s%s\n   %s\n", i+1, track.Title, pagePart, track.YouTubeURL))
	}

	return buf.Bytes(), nil
}

// DownloadImage downloads an image from the given URL and returns the raw bytes
func DownloadImage(url string) ([]byte, error) {
	if url == "" {
		return nil, fmt.Errorf("empty URL provided")
	}

	client := &http.Client{
		Timeout: 30 * time.Second,
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

// metadata is the JSON shape written next to track exports.
type metadata struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Owner     string `json:"owner"`
	Score     int    `json:"score"`
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
	Tracks    int    `json:"tracks"`
}

// ToMetadataJSON generates a JSON representation of soundtrack metadata (without tracks)
func ToMetadataJSON(soundtrack *models.Soundtrack) ([]byte, error) {
	return shared.MarshalJSON(metadata{
		ID:        soundtrack.ID(),
		Title:     soundtrack.Title(),
		Owner:     soundtrack.OwnerName(),
		Score:     soundtrack.Score(),
		Upvotes:   soundtrack.Upvotes(),
		Downvotes: soundtrack.Downvotes(),
		Tracks:    len(soundtrack.Tracks()),
	}, true)
}

// CSVExportResult contains the paths of files created by WriteCSVExport
type CSVExportResult struct {
	TracksFile   string
	MetadataFile string
}

// WriteCSVExport exports a soundtrack to CSV format with accompanying metadata JSON file.
//
// Defaults to the soundtrack ID as the base filename & creates {base}_tracks.csv and {base}_metadata.json
func WriteCSVExport(soundtrack *models.Soundtrack, baseFilepath string) (*CSVExportResult, error) {
	if baseFilepath == "" {
		baseFilepath = soundtrack.ID()
	}

	csvData, err := ExportToCSV(soundtrack)
	if err != nil {
		return nil, fmt.Errorf("failed to generate CSV: %w", err)
	}

	tracksFile := baseFilepath + "_tracks.csv"
	if err := os.WriteFile(tracksFile, csvData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write CSV file: %w", err)
	}

	metadataJSON, err := ToMetadataJSON(soundtrack)
	if err != nil {
		return nil, fmt.Errorf("failed to generate metadata JSON: %w", err)
	}

	metadataFile := baseFilepath + "_metadata.json"
	if err := os.WriteFile(metadataFile, metadataJSON, 0644); err != nil {
		return nil, fmt.Errorf("failed to write metadata file: %w", err)
	}

	return &CSVExportResult{
		TracksFile:   tracksFile,
		MetadataFile: metadataFile,
	}, nil
}

// MarkdownExportResult contains information about files created by WriteMarkdownExport
type MarkdownExportResult struct {
	Directory  string
	Files      []string
	CoverImage string
}

// WriteMarkdownExport exports a soundtrack to Markdown format in a dedicated directory.
//
// Directory name defaults to the soundtrack ID.
// The imageURL parameter is optional - if provided, attempts to download the issue cover.
// Creates a directory structure: {dir}/README.md and optionally {dir}/cover.jpg
func WriteMarkdownExport(soundtrack *models.Soundtrack, issueTitle, outputDir, imageURL string) (*MarkdownExportResult, error) {
	if outputDir == "" {
		outputDir = soundtrack.ID()
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	result := &MarkdownExportResult{
		Directory: outputDir,
		Files:     []string{},
	}

	var coverImageFilename string
	if imageURL != "" {
		imageData, err := DownloadImage(imageURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to download cover image: %v\n", err)
		} else {
			coverImageFilename = "cover.jpg"
			coverImagePath := fmt.Sprintf("%s/%s", outputDir, coverImageFilename)
			if err := os.WriteFile(coverImagePath, imageData, 0644); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to save cover image: %v\n", err)
				coverImageFilename = ""
			} else {
				result.CoverImage = coverImagePath
				result.Files = append(result.Files, coverImagePath)
			}
		}
	}

	mdData, err := ExportToMarkdown(soundtrack, issueTitle, coverImageFilename)
	if err != nil {
		return nil, fmt.Errorf("failed to generate Markdown: %w", err)
	}

	mdFile := fmt.Sprintf("%s/README.md", outputDir)
	if err := os.WriteFile(mdFile, mdData, 0644); err != nil {
		return nil, fmt.Errorf("failed to write Markdown file: %w", err)
	}

	result.Files = append(result.Files, mdFile)

	return result, nil
}

// WriteTextExport exports a soundtrack to plain text format.
//
// Defaults to {soundtrack.ID}_tracks.txt as the filename.
func WriteTextExport(soundtrack *models.Soundtrack, filepath string) (string, error) {
	if filepath == "" {
		filepath = fmt.Sprintf("%s_tracks.txt", soundtrack.ID())
	}

	textData, err := ExportToText(soundtrack)
	if err != nil {
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if err := os.WriteFile(filepath, textData, 0644); err != nil {
		return "", fmt.Errorf("failed to write text file: %w", err)
	}

	return filepath, nil
}

// pageRange renders a track's optional page range as "start-end".
func pageRange(track models.Track) string {
	if track.PageStart == nil || track.PageEnd == nil {
		return ""
	}
	return fmt.Sprintf("%d-%d", *track.PageStart, *track.PageEnd)
}
