// Package tagfile reads RFC 822 style control files such as Release files
// and pdiff indexes: blank-line separated paragraphs of "Key: value" fields
// where indented lines continue the previous field.
package tagfile

import (
	"bufio"
	"io"
	"os"
	"strings"

	pkgerrors "github.com/glorpus-work/acquire/pkg/errors"
)

// Field is a single key/value pair of a paragraph.
type Field struct {
	Key   string
	Value string
}

// Section is one paragraph. Field order is preserved.
type Section struct {
	Fields []Field
}

// Find returns the value of key, matched case-insensitively.
func (s *Section) Find(key string) (string, bool) {
	for _, f := range s.Fields {
		if strings.EqualFold(f.Key, key) {
			return f.Value, true
		}
	}
	return "", false
}

// Get returns the value of key or the empty string.
func (s *Section) Get(key string) string {
	v, _ := s.Find(key)
	return v
}

// Lines returns the non-empty lines of a multi-line field, trimmed.
func (s *Section) Lines(key string) []string {
	v, ok := s.Find(key)
	if !ok {
		return nil
	}
	var out []string
	for _, l := range strings.Split(v, "\n") {
		if l = strings.TrimSpace(l); l != "" {
			out = append(out, l)
		}
	}
	return out
}

// Parse reads every paragraph from r.
func Parse(r io.Reader) ([]Section, error) {
	var (
		sections []Section
		cur      *Section
		lineNo   int
	)

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 16*1024*1024)
	for sc.Scan() {
		lineNo++
		line := strings.TrimRight(sc.Text(), " \t\r")

		if line == "" {
			cur = nil
			continue
		}
		if line[0] == '#' {
			continue
		}

		if line[0] == ' ' || line[0] == '\t' {
			if cur == nil || len(cur.Fields) == 0 {
				return nil, pkgerrors.Wrapf(pkgerrors.ErrTagFileParse, "line %d: continuation without a field", lineNo)
			}
			last := &cur.Fields[len(cur.Fields)-1]
			last.Value += "\n" + strings.TrimLeft(line, " \t")
			continue
		}

		key, value, ok := strings.Cut(line, ":")
		if !ok || key == "" {
			return nil, pkgerrors.Wrapf(pkgerrors.ErrTagFileParse, "line %d: missing ':'", lineNo)
		}
		if cur == nil {
			sections = append(sections, Section{})
			cur = &sections[len(sections)-1]
		}
		cur.Fields = append(cur.Fields, Field{Key: key, Value: strings.TrimSpace(value)})
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return sections, nil
}

// ParseFile reads every paragraph of the file at path.
func ParseFile(path string) ([]Section, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Parse(f)
}

// First returns the first paragraph of the file at path.
func First(path string) (*Section, error) {
	sections, err := ParseFile(path)
	if err != nil {
		return nil, err
	}
	if len(sections) == 0 {
		return nil, pkgerrors.Wrapf(pkgerrors.ErrTagFileParse, "%s: no paragraphs", path)
	}
	return &sections[0], nil
}
