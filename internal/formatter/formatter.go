// package formatter provides functions to export publication lists to various formats (CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"

	"github.com/desertthunder/pubdex/internal/models"
)

// ExportToCSV converts publications to CSV with columns: ID, Title, Authors, Year, Journal, DOI, Keywords, Uploaded
func ExportToCSV(pubs []models.Publication) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Title", "Authors", "Year", "Journal", "DOI", "Keywords", "Uploaded"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, pub := range pubs {
		record := []string{
			strconv.Itoa(pub.ID),
			pub.Title,
			pub.AuthorNames(),
			yearString(pub),
			stringValue(pub.Journal),
			stringValue(pub.DOI),
			pub.KeywordNames(),
			pub.UploadDate.Format("2006-01-02"),
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

// ExportToMarkdown converts publications to a Markdown listing under the given title.
func ExportToMarkdown(title string, pubs []models.Publication) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	buf.WriteString(fmt.Sprintf("**Publications**: %d\n\n", len(pubs)))

	for i, pub := range pubs {
		buf.WriteString(fmt.Sprintf("%d. **%s**", i+1, pub.Title))
		if authors := pub.AuthorNames(); authors != "" {
			buf.WriteString(fmt.Sprintf(" by %s", authors))
		}
		if year := yearString(pub); year != "" {
			buf.WriteString(fmt.Sprintf(" (%s)", year))
		}
		if pub.Journal != nil && *pub.Journal != "" {
			buf.WriteString(fmt.Sprintf(", *%s*", *pub.Journal))
		}
		buf.WriteString("\n")
		if pub.DOI != nil && *pub.DOI != "" {
			buf.WriteString(fmt.Sprintf("   DOI: `%s`\n", *pub.DOI))
		}
		if keywords := pub.KeywordNames(); keywords != "" {
			buf.WriteString(fmt.Sprintf("   Keywords: %s\n", keywords))
		}
	}

	return buf.Bytes(), nil
}

// ExportToText converts publications to a plain text listing.
func ExportToText(pubs []models.Publication) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Publications: %d\n\n", len(pubs)))

	for i, pub := range pubs {
		buf.WriteString(fmt.Sprintf("%d. [%d] %s\n", i+1, pub.ID, pub.Title))
		if authors := pub.AuthorNames(); authors != "" {
			buf.WriteString(fmt.Sprintf("   %s", authors))
			if year := yearString(pub); year != "" {
				buf.WriteString(fmt.Sprintf(", %s", year))
			}
			buf.WriteString("\n")
		}
		buf.WriteString(fmt.Sprintf("   uploaded %s\n", pub.UploadDate.Format("2006-01-02")))
	}

	return buf.Bytes(), nil
}

func yearString(pub models.Publication) string {
	if pub.Year == nil {
		return ""
	}
	return strconv.Itoa(*pub.Year)
}

func stringValue(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
