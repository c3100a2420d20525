// Package xerrors defines the error taxonomy shared by every component that
// talks to the upstream video service or the filesystem store.
package xerrors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrQuotaExceeded is returned when a quota reservation would exceed the
	// configured daily limit. Fatal for the current run.
	ErrQuotaExceeded = errors.New("quota exceeded")

	// ErrRateLimited is returned when the upstream service responds 429.
	// Retryable with backoff; becomes ErrUpstream after retries are exhausted.
	ErrRateLimited = errors.New("rate limited by upstream")

	// ErrForbidden is returned when the upstream service responds 403.
	ErrForbidden = errors.New("forbidden by upstream")

	// ErrUpstream wraps a non-2xx upstream response that isn't 429 or 403.
	ErrUpstream = errors.New("upstream error")

	// ErrTimeout is returned when an upstream call exceeds its per-request
	// deadline.
	ErrTimeout = errors.New("upstream timeout")

	// ErrParse is returned when an RSS entry, cache file, or ECO record
	// cannot be decoded. Per-item: the item is dropped and the phase
	// continues.
	ErrParse = errors.New("parse error")

	// ErrIO is returned when a cache/checkpoint/video-file write or read
	// fails at the filesystem boundary.
	ErrIO = errors.New("io error")

	// ErrConfigInvalid is returned at startup when required configuration
	// is missing or malformed.
	ErrConfigInvalid = errors.New("invalid configuration")
)

// Upstream wraps ErrUpstream with the offending HTTP status code.
func Upstream(statusCode int) error {
	return fmt.Errorf("%w: status %d", ErrUpstream, statusCode)
}

// Parse wraps ErrParse with the kind of item that failed to parse
// (e.g. "rss-entry", "cache-file", "eco-table").
func Parse(kind string, cause error) error {
	if cause == nil {
		return fmt.Errorf("%w: %s", ErrParse, kind)
	}
	return fmt.Errorf("%w: %s: %v", ErrParse, kind, cause)
}

// IO wraps ErrIO with the path that could not be read or written.
func IO(path string, cause error) error {
	return fmt.Errorf("%w: %s: %v", ErrIO, path, cause)
}

// Wrap adds operation context to any error without discarding its identity,
// mirroring the teacher's db.WrapError.
func Wrap(err error, operation string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", operation, err)
}

// IsQuotaExceeded reports whether err is or wraps ErrQuotaExceeded.
func IsQuotaExceeded(err error) bool { return errors.Is(err, ErrQuotaExceeded) }

// IsRateLimited reports whether err is or wraps ErrRateLimited.
func IsRateLimited(err error) bool { return errors.Is(err, ErrRateLimited) }

// IsForbidden reports whether err is or wraps ErrForbidden.
func IsForbidden(err error) bool { return errors.Is(err, ErrForbidden) }

// IsUpstream reports whether err is or wraps ErrUpstream.
func IsUpstream(err error) bool { return errors.Is(err, ErrUpstream) }

// IsTimeout reports whether err is or wraps ErrTimeout.
func IsTimeout(err error) bool { return errors.Is(err, ErrTimeout) }

// IsParse reports whether err is or wraps ErrParse.
func IsParse(err error) bool { return errors.Is(err, ErrParse) }

// IsIO reports whether err is or wraps ErrIO.
func IsIO(err error) bool { return errors.Is(err, ErrIO) }

// IsConfigInvalid reports whether err is or wraps ErrConfigInvalid.
func IsConfigInvalid(err error) bool { return errors.Is(err, ErrConfigInvalid) }

// LooksLikeRateLimitSignal does a best-effort scan of a raw upstream error
// message for a rate-limit signal, used by the channel indexer's
// all-channels-failed escalation rule (spec §4.2).
func LooksLikeRateLimitSignal(err error) bool {
	if err == nil {
		return false
	}
	if IsRateLimited(err) || IsQuotaExceeded(err) {
		return true
	}
	msg := strings.ToLower(err.Error())
	for _, signal := range []string{"rate limit", "quota", "429"} {
		if strings.Contains(msg, signal) {
			return true
		}
	}
	return false
}
