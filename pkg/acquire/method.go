//go:generate mockgen -destination=./mocks/acquire.go . Method,MetaIndexParser,HookRunner
package acquire

import (
	"context"
	"strings"
)

// MethodConfig describes the transport method answering a request.
type MethodConfig struct {
	Access         string
	LocalOnly      bool
	Removable      bool
	SingleInstance bool
}

// Request is one unit of work handed to a method.
type Request struct {
	URI         string
	DestFile    string
	Description string
	Headers     Message
	ResumePoint int64
}

// Method performs transfers for one access scheme such as "http", "gzip"
// or "gpgv". Fetch blocks until the transfer ends; started may be called
// once with the "URI Start" report, typically carrying Size.
type Method interface {
	Config() MethodConfig
	Fetch(ctx context.Context, req Request, started func(Message)) (Message, error)
}

// FetchError carries the failure report of a method.
type FetchError struct {
	Message Message
}

func (e *FetchError) Error() string {
	return e.Message.Get("Message")
}

// Failure builds a FetchError from alternating keys and values.
func Failure(kv ...string) *FetchError {
	return &FetchError{Message: NewMessage(kv...)}
}

// accessOf returns the scheme of uri, the text before the first ':'.
func accessOf(uri string) string {
	scheme, _, ok := strings.Cut(uri, ":")
	if !ok {
		return ""
	}
	return scheme
}
