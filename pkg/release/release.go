// Package release parses repository meta-index (Release) files and answers
// checksum lookups for the index files they list.
package release

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	pkgerrors "github.com/glorpus-work/acquire/pkg/errors"
	"github.com/glorpus-work/acquire/pkg/hashes"
	"github.com/glorpus-work/acquire/pkg/tagfile"
)

// Entry is one file listed in a Release file.
type Entry struct {
	MetaKey    string
	Size       int64
	MD5Hash    string
	SHA1Hash   string
	SHA256Hash string
}

var hashSections = []hashes.Kind{hashes.MD5, hashes.SHA1, hashes.SHA256}

// Parser holds the parsed content of a Release file.
type Parser struct {
	expectedDist string

	Origin   string
	Label    string
	Suite    string
	Codename string
	Date     string

	errorText string

	entries map[string]*Entry
}

// NewParser returns a parser that expects the given distribution, as written
// in the source list (for example "sid" or "stable/updates").
func NewParser(expectedDist string) *Parser {
	return &Parser{expectedDist: expectedDist}
}

// Load parses the Release file at path, replacing any earlier content.
func (p *Parser) Load(path string) error {
	p.entries = make(map[string]*Entry)
	p.errorText = ""

	section, err := tagfile.First(path)
	if err != nil {
		p.errorText = fmt.Sprintf("Unable to parse Release file %s", path)
		return pkgerrors.Wrap(pkgerrors.ErrReleaseParse, err.Error())
	}

	p.Origin = section.Get("Origin")
	p.Label = section.Get("Label")
	p.Suite = section.Get("Suite")
	p.Codename = section.Get("Codename")
	p.Date = section.Get("Date")

	found := false
	for _, kind := range hashSections {
		if _, ok := section.Find(string(kind)); !ok {
			continue
		}
		found = true
		for _, line := range section.Lines(string(kind)) {
			if err := p.addLine(kind, line); err != nil {
				p.errorText = fmt.Sprintf("Unable to parse Release file %s", path)
				return pkgerrors.Wrapf(pkgerrors.ErrReleaseParse, "%s: %v", path, err)
			}
		}
	}
	if !found {
		p.errorText = fmt.Sprintf("No Hash entry in Release file %s", path)
		return pkgerrors.Wrap(pkgerrors.ErrReleaseParse, p.errorText)
	}
	return nil
}

func (p *Parser) addLine(kind hashes.Kind, line string) error {
	parts := strings.Fields(line)
	if len(parts) != 3 {
		return fmt.Errorf("bad %s line %q", kind, line)
	}
	size, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil {
		return fmt.Errorf("bad size in %q: %w", line, err)
	}

	e, ok := p.entries[parts[2]]
	if !ok {
		e = &Entry{MetaKey: parts[2], Size: size}
		p.entries[parts[2]] = e
	}
	switch kind {
	case hashes.MD5:
		e.MD5Hash = parts[0]
	case hashes.SHA1:
		e.SHA1Hash = parts[0]
	case hashes.SHA256:
		e.SHA256Hash = parts[0]
	}
	return nil
}

// ErrorText describes the last Load failure in user terms.
func (p *Parser) ErrorText() string {
	return p.errorText
}

// Lookup returns the entry for a meta key such as "main/binary-amd64/Packages".
func (p *Parser) Lookup(metaKey string) (*Entry, bool) {
	e, ok := p.entries[metaKey]
	return e, ok
}

// Entries returns all entries sorted by meta key.
func (p *Parser) Entries() []*Entry {
	out := make([]*Entry, 0, len(p.entries))
	for _, e := range p.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].MetaKey < out[j].MetaKey })
	return out
}

// Dist returns the suite declared by the Release file.
func (p *Parser) Dist() string {
	return p.Suite
}

// ExpectedDist returns the distribution the source list asked for.
func (p *Parser) ExpectedDist() string {
	return p.expectedDist
}

// CheckDist reports whether dist names this Release file, either by suite
// or by codename.
func (p *Parser) CheckDist(dist string) bool {
	return dist == p.Suite || dist == p.Codename
}
