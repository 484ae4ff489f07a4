package acquiretest

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/glorpus-work/acquire/pkg/fsutil"
	"github.com/mholt/archives"
)

// WriteFile writes data to path, creating parent directories.
func WriteFile(path string, data []byte) error {
	if err := fsutil.EnsureFileDir(path); err != nil {
		return err
	}
	return os.WriteFile(path, data, fsutil.FileModeDefault)
}

// WriteGzip writes data gzip-compressed to path.
func WriteGzip(path string, data []byte) error {
	return writeCompressed(path, data, archives.Gz{})
}

// WriteBzip2 writes data bzip2-compressed to path.
func WriteBzip2(path string, data []byte) error {
	return writeCompressed(path, data, archives.Bz2{CompressionLevel: 9})
}

func writeCompressed(path string, data []byte, format archives.Compressor) error {
	var buf bytes.Buffer
	w, err := format.OpenWriter(&buf)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return WriteFile(path, buf.Bytes())
}

var edCommand = regexp.MustCompile(`^(\d+)(?:,(\d+))?([acd])$`)

// ApplyEd applies an ed script as found in pdiff files. Commands are applied
// in order, so scripts must address lines from the bottom up.
func ApplyEd(original, script []byte) ([]byte, error) {
	lines := splitLines(original)
	cmds := splitLines(script)

	for i := 0; i < len(cmds); i++ {
		m := edCommand.FindStringSubmatch(cmds[i])
		if m == nil {
			return nil, fmt.Errorf("bad ed command %q", cmds[i])
		}
		from, _ := strconv.Atoi(m[1])
		to := from
		if m[2] != "" {
			to, _ = strconv.Atoi(m[2])
		}
		if from < 0 || to < from || to > len(lines) {
			return nil, fmt.Errorf("ed command %q out of range", cmds[i])
		}

		var text []string
		if m[3] != "d" {
			for i++; i < len(cmds) && cmds[i] != "."; i++ {
				text = append(text, cmds[i])
			}
			if i == len(cmds) {
				return nil, fmt.Errorf("unterminated text for %q", m[0])
			}
		}

		var head, tail []string
		switch m[3] {
		case "a":
			head, tail = lines[:from], lines[from:]
		default:
			if from == 0 {
				return nil, fmt.Errorf("ed command %q addresses line 0", m[0])
			}
			head, tail = lines[:from-1], lines[to:]
		}
		next := make([]string, 0, len(head)+len(text)+len(tail))
		next = append(next, head...)
		next = append(next, text...)
		next = append(next, tail...)
		lines = next
	}

	if len(lines) == 0 {
		return nil, nil
	}
	return []byte(strings.Join(lines, "\n") + "\n"), nil
}

func splitLines(b []byte) []string {
	s := strings.TrimSuffix(string(b), "\n")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
