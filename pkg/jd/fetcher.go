package jd

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/pkg/errors"
)

//nolint:gochecknoglobals // Compiled once, read-only
var scriptStyleRe = regexp.MustCompile(`(?is)<(script|style)\b.*?</(script|style)>`)

// Fetch retrieves a job description from a file path or URL.
func Fetch(ctx context.Context, input string) (content string, err error) {
	// Check if input is a URL
	parsedURL, urlErr := url.Parse(input)
	if urlErr == nil && (parsedURL.Scheme == "http" || parsedURL.Scheme == "https") {
		content, err = fetchFromURL(ctx, input)
		if err != nil {
			err = errors.Wrapf(err, "failed to fetch job description from URL: %s", input)
			return content, err
		}
		return content, err
	}

	// It's a file path - read from disk
	content, err = fetchFromFile(input)
	if err != nil {
		err = errors.Wrapf(err, "failed to fetch job description from file: %s", input)
		return content, err
	}

	return content, err
}

// fetchFromFile reads a job description from a file.
func fetchFromFile(path string) (content string, err error) {
	var data []byte
	data, err = os.ReadFile(path)
	if err != nil {
		err = errors.Wrapf(err, "failed to read file: %s", path)
		return content, err
	}

	content = string(data)
	if strings.TrimSpace(content) == "" {
		err = errors.New("file is empty")
		return content, err
	}

	return content, err
}

// fetchFromURL retrieves a job description from a URL.
func fetchFromURL(ctx context.Context, urlStr string) (content string, err error) {
	var req *http.Request
	req, err = http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		err = errors.Wrap(err, "failed to create HTTP request")
		return content, err
	}

	req.Header.Set("User-Agent", "resumeforge/1.0")

	client := &http.Client{
		Timeout: 30 * time.Second,
	}

	var resp *http.Response
	resp, err = client.Do(req)
	if err != nil {
		err = errors.Wrap(err, "HTTP request failed")
		return content, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		err = errors.Errorf("HTTP request failed with status: %d", resp.StatusCode)
		return content, err
	}

	// Read response body
	var bodyBytes []byte
	bodyBytes, err = io.ReadAll(resp.Body)
	if err != nil {
		err = errors.Wrap(err, "failed to read response body")
		return content, err
	}

	content = stripHTML(string(bodyBytes))
	if content == "" {
		err = errors.New("fetched content is empty after processing")
		return content, err
	}

	return content, err
}

// stripHTML reduces an HTML page to its visible text.
func stripHTML(html string) (text string) {
	// Remove script and style tags with their content
	text = scriptStyleRe.ReplaceAllString(html, "")

	// Remove remaining tags
	inTag := false
	var b strings.Builder
	for _, char := range text {
		switch {
		case char == '<':
			inTag = true
		case char == '>':
			inTag = false
		case !inTag:
			b.WriteRune(char)
		}
	}
	text = b.String()

	// Collapse blank lines left behind by stripped markup
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	text = strings.Join(lines, "\n")

	return text
}
