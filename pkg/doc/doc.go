package doc

import (
	"regexp"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// SectionRule describes how one kind of section heading is recognized and
// which wrapper tokens enclose the section's replaceable body.
type SectionRule struct {
	// Pattern is a regular expression with exactly one capture group that
	// yields the section's display name (e.g. `\\section\{([^}]+)\}`).
	Pattern string `json:"pattern"`
	// ListOpen and ListClose are the wrapper tokens that open and close the
	// section's list structure. Both may be empty, in which case the whole
	// span after the heading is treated as the body.
	ListOpen  string `json:"list_open,omitempty"`
	ListClose string `json:"list_close,omitempty"`
}

// Ruleset drives section recognition during parsing.
type Ruleset struct {
	Headings []SectionRule
	// Aliases maps canonical heading names to preferred canonical names,
	// e.g. "technical_skills" -> "skills".
	Aliases map[string]string
}

// DefaultRuleset recognizes the \section{NAME} heading convention with the
// resumeSubHeadingList wrapper macros common to LaTeX resume templates.
func DefaultRuleset() (rs Ruleset) {
	rs = Ruleset{
		Headings: []SectionRule{
			{
				Pattern:   `\\section\{([^}]+)\}`,
				ListOpen:  `\resumeSubHeadingListStart`,
				ListClose: `\resumeSubHeadingListEnd`,
			},
		},
		Aliases: map[string]string{
			"technical_skills": "skills",
			"work_experience":  "experience",
		},
	}
	return rs
}

// Section is a named, contiguous, independently replaceable region of a
// document. The raw fields concatenate to exactly the source text the
// section was parsed from: Heading + Open + Body + Close.
type Section struct {
	// Name is the canonical identifier, e.g. "experience".
	Name string
	// Heading is the original section-opening token range, verbatim.
	Heading string
	// Open holds everything between the heading and the body, including the
	// list wrapper open token. Empty when no wrapper was recognized.
	Open string
	// Body is the replaceable content.
	Body string
	// Close holds the list wrapper close token and everything after it up to
	// the end of the section span. Empty when no wrapper was recognized.
	Close string
}

// Raw returns the section's full source text.
func (s Section) Raw() (raw string) {
	raw = s.Heading + s.Open + s.Body + s.Close
	return raw
}

type segment struct {
	verbatim string
	section  *Section
}

// Document is an ordered sequence of verbatim and section segments. Documents
// are immutable values: every edit produces a new Document and never touches
// the one it was derived from.
type Document struct {
	segments []segment
	aliases  map[string]string
}

// endDocumentMarker terminates the last section's span so the document
// closing stays verbatim.
const endDocumentMarker = `\end{document}`

// CanonicalName normalizes a section display name to its canonical
// identifier: lowercased, with interior whitespace collapsed to underscores.
func CanonicalName(name string) (canonical string) {
	canonical = strings.ToLower(strings.TrimSpace(name))
	canonical = strings.Join(strings.Fields(canonical), "_")
	return canonical
}

type headingMatch struct {
	start, end int
	name       string
	rule       SectionRule
}

// Parse segments raw document text into verbatim and section segments.
// Unrecognized structure is preserved as verbatim rather than failing; the
// only fatal condition is a document that cannot be segmented coherently,
// such as two sections resolving to the same canonical name.
func Parse(raw string, rs Ruleset) (d Document, err error) {
	d.aliases = rs.Aliases

	var matches []headingMatch
	for _, rule := range rs.Headings {
		var re *regexp.Regexp
		re, err = regexp.Compile(rule.Pattern)
		if err != nil {
			err = errors.Wrapf(err, "invalid section heading pattern: %s", rule.Pattern)
			return d, err
		}
		if re.NumSubexp() != 1 {
			err = errors.Errorf("section heading pattern must have exactly one capture group: %s", rule.Pattern)
			return d, err
		}

		for _, idx := range re.FindAllStringSubmatchIndex(raw, -1) {
			matches = append(matches, headingMatch{
				start: idx[0],
				end:   idx[1],
				name:  canonicalize(raw[idx[2]:idx[3]], rs.Aliases),
				rule:  rule,
			})
		}
	}

	sort.Slice(matches, func(i, j int) bool { return matches[i].start < matches[j].start })

	endDoc := strings.Index(raw, endDocumentMarker)

	seen := map[string]bool{}
	pos := 0
	for i, m := range matches {
		if m.start < pos {
			// Overlapping match from another rule, already consumed.
			continue
		}
		if seen[m.name] {
			err = errors.Errorf("duplicate section %q in document", m.name)
			return Document{}, err
		}
		seen[m.name] = true

		if m.start > pos {
			d.segments = append(d.segments, segment{verbatim: raw[pos:m.start]})
		}

		// The next span boundary is the next match past this heading; matches
		// from other rules may start inside the heading's own token range.
		spanEnd := len(raw)
		for j := i + 1; j < len(matches); j++ {
			if matches[j].start >= m.end {
				spanEnd = matches[j].start
				break
			}
		}
		if endDoc >= m.end && endDoc < spanEnd {
			spanEnd = endDoc
		}

		sec := splitSection(m.name, raw[m.start:m.end], raw[m.end:spanEnd], m.rule)
		d.segments = append(d.segments, segment{section: &sec})
		pos = spanEnd
	}

	if pos < len(raw) {
		d.segments = append(d.segments, segment{verbatim: raw[pos:]})
	}

	return d, err
}

// splitSection carves the span following a heading into wrapper open, body,
// and wrapper close. When the rule's wrapper tokens are absent the whole span
// becomes the body, keeping the round-trip property intact.
func splitSection(name, heading, rest string, rule SectionRule) (sec Section) {
	sec = Section{Name: name, Heading: heading, Body: rest}

	if rule.ListOpen == "" || rule.ListClose == "" {
		return sec
	}

	oi := strings.Index(rest, rule.ListOpen)
	if oi < 0 {
		return sec
	}
	openEnd := oi + len(rule.ListOpen)

	ci := strings.LastIndex(rest, rule.ListClose)
	if ci < openEnd {
		return sec
	}

	sec.Open = rest[:openEnd]
	sec.Body = rest[openEnd:ci]
	sec.Close = rest[ci:]
	return sec
}

func canonicalize(name string, aliases map[string]string) (canonical string) {
	canonical = CanonicalName(name)
	if alias, ok := aliases[canonical]; ok {
		canonical = alias
	}
	return canonical
}

// Render reconstructs the document text. For an unedited document this is
// byte-for-byte identical to the text it was parsed from.
func (d Document) Render() (raw string) {
	var b strings.Builder
	for _, seg := range d.segments {
		if seg.section != nil {
			b.WriteString(seg.section.Raw())
			continue
		}
		b.WriteString(seg.verbatim)
	}
	raw = b.String()
	return raw
}

// ResolveName canonicalizes a section name and applies the alias map the
// document was parsed with, so every spelling that canonicalized to a section
// at parse time addresses that section afterwards too.
func (d Document) ResolveName(name string) (canonical string) {
	canonical = canonicalize(name, d.aliases)
	return canonical
}

// FindSection looks up a section by name. The name is resolved through
// ResolveName before matching. Absence is a normal branch, not an error.
func (d Document) FindSection(name string) (sec Section, found bool) {
	canonical := d.ResolveName(name)
	for _, seg := range d.segments {
		if seg.section != nil && seg.section.Name == canonical {
			sec = *seg.section
			found = true
			return sec, found
		}
	}
	return sec, found
}

// Sections returns the document's sections in source order.
func (d Document) Sections() (sections []Section) {
	for _, seg := range d.segments {
		if seg.section != nil {
			sections = append(sections, *seg.section)
		}
	}
	return sections
}
