// Package hashes computes the content digests used to verify fetched files.
package hashes

import (
	"crypto/md5"  //nolint:gosec // archive indexes still publish MD5 sums
	"crypto/sha1" //nolint:gosec // pdiff histories are keyed by SHA-1
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"
	"strings"
)

// Kind names a digest algorithm.
type Kind string

const (
	MD5    Kind = "MD5Sum"
	SHA1   Kind = "SHA1"
	SHA256 Kind = "SHA256"
)

func (k Kind) newHash() (hash.Hash, error) {
	switch k {
	case MD5:
		return md5.New(), nil //nolint:gosec
	case SHA1:
		return sha1.New(), nil //nolint:gosec
	case SHA256:
		return sha256.New(), nil
	default:
		return nil, fmt.Errorf("unsupported hash kind %q", string(k))
	}
}

// Reader returns the lowercase hex digest of everything read from r.
func Reader(kind Kind, r io.Reader) (string, error) {
	h, err := kind.newHash()
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(h, r); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}

// File returns the lowercase hex digest of the file at path.
func File(kind Kind, path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return Reader(kind, f)
}

// FileMD5 is File(MD5, path).
func FileMD5(path string) (string, error) {
	return File(MD5, path)
}

// FileSHA1 is File(SHA1, path).
func FileSHA1(path string) (string, error) {
	return File(SHA1, path)
}

// Equal compares two hex digests ignoring case.
func Equal(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
