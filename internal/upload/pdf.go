package upload

import (
	"regexp"
	"strings"

	"github.com/ledongthuc/pdf"
)

// doiScan finds DOI-like strings inside page text, more permissive than the
// submission hint because extraction trims trailing punctuation afterwards.
var doiScan = regexp.MustCompile(`10\.\d{4,9}/[^\s<>"{}|\\^~\[\]` + "`" + `]+`)

// Suggestion is best-effort metadata pulled from a selected PDF, offered as
// prefill for the draft. Empty fields mean nothing was found.
type Suggestion struct {
	Title string
	DOI   string
}

// Suggest scans the first pages of the PDF at path for a title line and a
// DOI. Errors are only returned when the file cannot be opened; a PDF that
// yields no text produces an empty suggestion.
func Suggest(path string) (Suggestion, error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return Suggestion{}, err
	}
	defer f.Close()

	maxPages := 3
	if r.NumPage() < maxPages {
		maxPages = r.NumPage()
	}

	var s Suggestion
	for i := 1; i <= maxPages; i++ {
		page := r.Page(i)
		if page.V.IsNull() {
			continue
		}

		text, err := page.GetPlainText(nil)
		if err != nil {
			continue
		}

		if s.Title == "" && i == 1 {
			s.Title = firstTitleLine(text)
		}
		if s.DOI == "" {
			s.DOI = findDOI(text)
		}
		if s.Title != "" && s.DOI != "" {
			break
		}
	}

	return s, nil
}

// firstTitleLine picks the first substantial line of the first page.
func firstTitleLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) > 20 && !looksLikeHeader(line) {
			return line
		}
	}
	return ""
}

func findDOI(text string) string {
	for _, match := range doiScan.FindAllString(text, -1) {
		match = strings.TrimRight(match, ".,;:)")
		if strings.Contains(match, "/") {
			return match
		}
	}
	return ""
}

func looksLikeHeader(line string) bool {
	lower := strings.ToLower(line)
	switch {
	case strings.Contains(lower, "copyright"):
		return true
	case strings.Contains(lower, "volume") && strings.Contains(lower, "issue"):
		return true
	case strings.Contains(lower, "downloaded from"):
		return true
	}
	return false
}
