package menu

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/go-shiori/go-readability"
)

// maxPageSize bounds how much of a fetched page is read.
const maxPageSize = 10 * 1024 * 1024

var (
	// (?s) lets dot match newlines; (?i) makes tags case-insensitive.
	reRT = regexp.MustCompile(`(?si)<rt\b[^>]*>.*?</rt>`)
	reRP = regexp.MustCompile(`(?si)<rp\b[^>]*>.*?</rp>`)
)

// SanitizeRuby removes furigana (<rt>) and ruby parentheses (<rp>) so that
// extracted dish names are not followed by their readings. It works on raw
// bytes and is safe for Shift_JIS input.
func SanitizeRuby(content []byte) []byte {
	cleaned := reRT.ReplaceAll(content, nil)
	return reRP.ReplaceAll(cleaned, nil)
}

// Page is the readable content of a menu web page.
type Page struct {
	Title    string
	SiteName string
	Lines    []string
}

// ExtractPage pulls the main content out of an HTML menu page and splits it
// into translatable lines.
func ExtractPage(r io.Reader, pageURL *url.URL) (Page, error) {
	body, err := io.ReadAll(io.LimitReader(r, maxPageSize))
	if err != nil {
		return Page{}, err
	}
	article, err := readability.FromReader(bytes.NewReader(SanitizeRuby(body)), pageURL)
	if err != nil {
		return Page{}, fmt.Errorf("extract article: %w", err)
	}
	return Page{
		Title:    strings.TrimSpace(article.Title),
		SiteName: article.SiteName,
		Lines:    SplitLines(article.TextContent),
	}, nil
}

// FetchPage downloads and extracts a menu page.
func FetchPage(ctx context.Context, client *http.Client, rawURL string) (Page, error) {
	pageURL, err := url.Parse(rawURL)
	if err != nil {
		return Page{}, err
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Page{}, err
	}
	req.Header.Set("User-Agent", "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "ja,en-US;q=0.8,en;q=0.7")

	resp, err := client.Do(req)
	if err != nil {
		return Page{}, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Page{}, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}
	if resp.ContentLength > maxPageSize {
		return Page{}, fmt.Errorf("content-length %d exceeds limit of %d bytes", resp.ContentLength, maxPageSize)
	}
	return ExtractPage(resp.Body, pageURL)
}

// SplitLines breaks text on newlines and Japanese sentence delimiters,
// trimming whitespace and dropping empty lines.
func SplitLines(text string) []string {
	var lines []string
	var current strings.Builder

	emit := func() {
		if s := strings.TrimSpace(current.String()); s != "" {
			lines = append(lines, s)
		}
		current.Reset()
	}
	for _, r := range text {
		if r == '\n' {
			emit()
			continue
		}
		current.WriteRune(r)
		// 。(3002), ！(FF01), ？(FF1F)
		if r == '。' || r == '！' || r == '？' {
			emit()
		}
	}
	emit()
	return lines
}
