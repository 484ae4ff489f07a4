package tagfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	pkgerrors "github.com/glorpus-work/acquire/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const diffIndex = `SHA1-Current: abcd 2048
SHA1-History:
 1234 100 patch1
 abcd 50 patch2
SHA1-Patches:
 aaaa 10 patch1
 bbbb 20 patch2
`

func TestParse(t *testing.T) {
	sections, err := Parse(strings.NewReader(diffIndex))
	require.NoError(t, err)
	require.Len(t, sections, 1)

	s := sections[0]
	assert.Equal(t, "abcd 2048", s.Get("SHA1-Current"))
	assert.Equal(t, "abcd 2048", s.Get("sha1-current"), "keys are case-insensitive")
	assert.Equal(t, []string{"1234 100 patch1", "abcd 50 patch2"}, s.Lines("SHA1-History"))

	_, ok := s.Find("SHA256-History")
	assert.False(t, ok)
	assert.Nil(t, s.Lines("SHA256-History"))
}

func TestParseMultipleParagraphs(t *testing.T) {
	input := "# comment\nPackage: a\nVersion: 1\n\n\nPackage: b\nVersion: 2\n"
	sections, err := Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, sections, 2)
	assert.Equal(t, "a", sections[0].Get("Package"))
	assert.Equal(t, "2", sections[1].Get("Version"))
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{"leading continuation", " orphan\n"},
		{"missing colon", "Package a\n"},
		{"empty key", ": value\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, pkgerrors.ErrTagFileParse)
		})
	}
}

func TestFirst(t *testing.T) {
	dir := t.TempDir()

	path := filepath.Join(dir, "Index")
	require.NoError(t, os.WriteFile(path, []byte(diffIndex), 0o644))
	s, err := First(path)
	require.NoError(t, err)
	assert.Equal(t, "abcd 2048", s.Get("SHA1-Current"))

	empty := filepath.Join(dir, "empty")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	_, err = First(empty)
	assert.ErrorIs(t, err, pkgerrors.ErrTagFileParse)

	_, err = First(filepath.Join(dir, "missing"))
	assert.Error(t, err)
}
