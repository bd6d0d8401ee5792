package input

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"unicode"

	"github.com/ppiankov/redline/internal/model"
	"golang.org/x/net/html"
)

var (
	// ErrEmptyDocument means no analyzable text survived extraction.
	ErrEmptyDocument = errors.New("document contains no analyzable text")
	// ErrDocumentTooLarge means the file exceeds the configured size cap.
	ErrDocumentTooLarge = errors.New("document exceeds size limit")
)

// LoadFile reads a contract from disk and normalizes it to a Document.
// Plain text and markdown pass through; HTML is reduced to visible
// text. The document ID is the content hash, so identical files map to
// identical cache and audit entries.
func LoadFile(path string, maxSizeMB int) (model.Document, error) {
	info, err := os.Stat(path)
	if err != nil {
		return model.Document{}, fmt.Errorf("stat document: %w", err)
	}
	if maxSizeMB > 0 && info.Size() > int64(maxSizeMB)*1024*1024 {
		return model.Document{}, fmt.Errorf("%w: %s is %d bytes, limit %d MB",
			ErrDocumentTooLarge, path, info.Size(), maxSizeMB)
	}

	raw, err := os.ReadFile(path)
	if err != nil {
		return model.Document{}, fmt.Errorf("read document: %w", err)
	}

	format := formatForPath(path)
	text := string(raw)
	if format == model.FormatHTML {
		text, err = extractVisibleText(text)
		if err != nil {
			return model.Document{}, fmt.Errorf("parse html: %w", err)
		}
	}
	text = normalize(text)

	if strings.TrimSpace(text) == "" {
		return model.Document{}, fmt.Errorf("%s: %w", path, ErrEmptyDocument)
	}

	sum := sha256.Sum256([]byte(text))
	return model.Document{
		ID:       hex.EncodeToString(sum[:])[:16],
		Name:     filepath.Base(path),
		Text:     text,
		Language: detectLanguage(text),
		Format:   format,
	}, nil
}

// FromText wraps already-extracted text, for callers that do not go
// through the filesystem.
func FromText(name, text string) (model.Document, error) {
	text = normalize(text)
	if strings.TrimSpace(text) == "" {
		return model.Document{}, ErrEmptyDocument
	}
	sum := sha256.Sum256([]byte(text))
	return model.Document{
		ID:       hex.EncodeToString(sum[:])[:16],
		Name:     name,
		Text:     text,
		Language: detectLanguage(text),
		Format:   model.FormatText,
	}, nil
}

func formatForPath(path string) model.SourceFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".txt", ".text":
		return model.FormatText
	case ".md", ".markdown":
		return model.FormatMarkdown
	case ".html", ".htm":
		return model.FormatHTML
	default:
		return model.FormatUnknown
	}
}

// extractVisibleText walks the HTML tree collecting text nodes while
// skipping script and style subtrees. Block elements emit newlines so
// the section structure survives for segmentation.
func extractVisibleText(htmlContent string) (string, error) {
	doc, err := html.Parse(strings.NewReader(htmlContent))
	if err != nil {
		return "", err
	}

	blockTags := map[string]bool{
		"p": true, "div": true, "li": true, "tr": true, "br": true,
		"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
		"section": true, "article": true, "blockquote": true, "table": true,
	}

	var buf strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript", "iframe", "head":
				return
			}
			if blockTags[n.Data] {
				buf.WriteString("\n\n")
			}
		}
		if n.Type == html.TextNode {
			if text := strings.TrimSpace(n.Data); text != "" {
				buf.WriteString(text)
				buf.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
		if n.Type == html.ElementNode && blockTags[n.Data] {
			buf.WriteString("\n\n")
		}
	}
	walk(doc)
	return buf.String(), nil
}

// normalize unifies line endings and strips control characters that
// would confuse offset arithmetic downstream.
func normalize(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' || !unicode.IsControl(r) {
			return r
		}
		return -1
	}, text)
}

// detectLanguage tags the document "hi" when a meaningful share of its
// letters are Devanagari, "en" otherwise. A tag, not a translation
// step; the rule patterns are English-only either way.
func detectLanguage(text string) string {
	letters, devanagari := 0, 0
	for _, r := range text {
		if !unicode.IsLetter(r) {
			continue
		}
		letters++
		if unicode.Is(unicode.Devanagari, r) {
			devanagari++
		}
		if letters >= 2000 {
			break
		}
	}
	if letters > 0 && float64(devanagari)/float64(letters) > 0.3 {
		return "hi"
	}
	return "en"
}
