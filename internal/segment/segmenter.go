package segment

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/ppiankov/redline/internal/model"
)

// Segmenter splits a contract document into ordered, non-overlapping
// clauses. Policy is layered: explicit structural markers first
// (numbered headers, all-caps titles, blank-line paragraphs), sentence
// grouping as a fallback when the text carries no structure at all.
type Segmenter struct {
	minChars int
	maxChars int
}

// Result is the segmenter's output. Degraded marks documents that had no
// structural markers and fell back to sentence grouping; informational,
// not an error.
type Result struct {
	Clauses  []model.Clause
	Degraded bool
}

var (
	// "1.", "3.2", "4.1.2)", followed by text.
	numberedHeaderRe = regexp.MustCompile(`^\s*(\d+(?:\.\d+)*[.)]?)\s+\S`)
	// "Article 4", "Section 12", "Clause 3".
	namedHeaderRe = regexp.MustCompile(`^\s*((?:Article|Section|Clause)\s+\d+[.:]?)`)
)

// New creates a segmenter. Zero or negative limits fall back to the
// defaults from model.DefaultConfig.
func New(cfg model.SegmenterConfig) *Segmenter {
	min := cfg.MinClauseChars
	max := cfg.MaxClauseChars
	if min <= 0 {
		min = model.DefaultConfig().Segmenter.MinClauseChars
	}
	if max <= min {
		max = model.DefaultConfig().Segmenter.MaxClauseChars
	}
	return &Segmenter{minChars: min, maxChars: max}
}

// Segment splits the document text into clauses. An empty document
// yields an empty slice, never an error. Spans into doc.Text are
// non-overlapping, strictly increasing, and cover the document modulo
// whitespace.
func (s *Segmenter) Segment(doc model.Document) Result {
	if strings.TrimSpace(doc.Text) == "" {
		return Result{}
	}

	blocks, structured := s.splitBlocks(doc.Text)

	degraded := false
	if !structured {
		blocks = s.sentenceBlocks(doc.Text)
		degraded = true
	}

	blocks = s.mergeShort(doc.Text, blocks)
	blocks = s.forceSplit(doc.Text, blocks)

	clauses := make([]model.Clause, 0, len(blocks))
	for i, b := range blocks {
		start, end := trimSpan(doc.Text, b.start, b.end)
		if start >= end {
			continue
		}
		clauses = append(clauses, model.Clause{
			Index: i,
			Start: start,
			End:   end,
			Label: b.label,
			Text:  doc.Text[start:end],
		})
	}
	// Reindex after any empty blocks were dropped.
	for i := range clauses {
		clauses[i].Index = i
	}
	return Result{Clauses: clauses, Degraded: degraded}
}

// block is a candidate clause extent before trimming.
type block struct {
	start int
	end   int
	label string
}

// splitBlocks walks the text line by line and cuts at structural
// markers. The second return reports whether any structure was found:
// either header lines or more than one blank-line paragraph.
func (s *Segmenter) splitBlocks(text string) ([]block, bool) {
	var blocks []block
	var cur *block
	sawHeader := false

	lineStart := 0
	flush := func(end int) {
		if cur != nil && cur.start < end {
			cur.end = end
			blocks = append(blocks, *cur)
			cur = nil
		}
	}

	for lineStart <= len(text) {
		lineEnd := strings.IndexByte(text[lineStart:], '\n')
		if lineEnd < 0 {
			lineEnd = len(text)
		} else {
			lineEnd += lineStart
		}
		line := text[lineStart:lineEnd]

		switch {
		case strings.TrimSpace(line) == "":
			// Paragraph break.
			flush(lineStart)
		case headerLabel(line) != "":
			flush(lineStart)
			cur = &block{start: lineStart, label: headerLabel(line)}
			sawHeader = true
		default:
			if cur == nil {
				cur = &block{start: lineStart}
			}
		}

		if lineEnd >= len(text) {
			break
		}
		lineStart = lineEnd + 1
	}
	flush(len(text))

	structured := sawHeader || len(blocks) > 1
	return blocks, structured
}

// headerLabel returns the clause label when the line opens a new
// provision: a numbered header, a named header, or an all-caps section
// title. Empty string otherwise.
func headerLabel(line string) string {
	if m := numberedHeaderRe.FindStringSubmatch(line); m != nil {
		return strings.TrimRight(m[1], ".)")
	}
	if m := namedHeaderRe.FindStringSubmatch(line); m != nil {
		return strings.TrimRight(strings.TrimSpace(m[1]), ".:")
	}
	if isCapsTitle(line) {
		return strings.TrimSpace(line)
	}
	return ""
}

// isCapsTitle detects short all-caps section titles like "TERMINATION"
// or "LIMITATION OF LIABILITY".
func isCapsTitle(line string) bool {
	t := strings.TrimSpace(line)
	if len(t) < 3 || len(t) > 80 {
		return false
	}
	letters := 0
	for _, r := range t {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsLetter(r) {
			letters++
		}
	}
	return letters >= 3
}

// sentenceBlocks groups consecutive sentences into clauses bounded by
// the max clause length. Used when the document has no structure.
func (s *Segmenter) sentenceBlocks(text string) []block {
	ends := sentenceEnds(text)
	if len(ends) == 0 || ends[len(ends)-1] < len(text) {
		// Trailing text without a terminator still belongs to a clause.
		ends = append(ends, len(text))
	}

	var blocks []block
	start := 0
	prev := 0
	for _, end := range ends {
		if end-start > s.maxChars && prev > start {
			blocks = append(blocks, block{start: start, end: prev})
			start = prev
		}
		prev = end
	}
	if start < len(text) {
		blocks = append(blocks, block{start: start, end: len(text)})
	}
	return blocks
}

// mergeShort folds fragments below the minimum clause length into their
// neighbor so that spans still cover the document.
func (s *Segmenter) mergeShort(text string, blocks []block) []block {
	if len(blocks) <= 1 {
		return blocks
	}
	var out []block
	for _, b := range blocks {
		st, en := trimSpan(text, b.start, b.end)
		if en-st < s.minChars && len(out) > 0 {
			out[len(out)-1].end = b.end
			continue
		}
		out = append(out, b)
	}
	// A short leading fragment merges forward instead.
	if len(out) >= 2 {
		st, en := trimSpan(text, out[0].start, out[0].end)
		if en-st < s.minChars {
			out[1].start = out[0].start
			if out[1].label == "" {
				out[1].label = out[0].label
			}
			out = out[1:]
		}
	}
	return out
}

// forceSplit cuts any block over the max length at the nearest sentence
// boundary before the limit, keeping downstream input bounded.
func (s *Segmenter) forceSplit(text string, blocks []block) []block {
	var out []block
	for _, b := range blocks {
		for b.end-b.start > s.maxChars {
			seg := text[b.start:b.end]
			cut := -1
			for _, e := range sentenceEnds(seg) {
				if e > s.maxChars {
					break
				}
				cut = e
			}
			if cut <= 0 {
				// No sentence boundary before the limit; cut at the last
				// whitespace, or hard at the limit as a last resort.
				cut = lastSpaceBefore(seg, s.maxChars)
				if cut <= 0 {
					cut = s.maxChars
				}
			}
			out = append(out, block{start: b.start, end: b.start + cut, label: b.label})
			b = block{start: b.start + cut, end: b.end}
		}
		out = append(out, b)
	}
	return out
}

func lastSpaceBefore(s string, limit int) int {
	if limit > len(s) {
		limit = len(s)
	}
	for i := limit - 1; i > 0; i-- {
		if s[i] == ' ' || s[i] == '\n' || s[i] == '\t' {
			return i
		}
	}
	return -1
}

// trimSpan shrinks [start,end) to exclude surrounding whitespace.
func trimSpan(text string, start, end int) (int, int) {
	for start < end && isSpaceByte(text[start]) {
		start++
	}
	for end > start && isSpaceByte(text[end-1]) {
		end--
	}
	return start, end
}

func isSpaceByte(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r' || b == '\v' || b == '\f'
}
