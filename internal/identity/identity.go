// Package identity normalizes inbound channel addresses and matches them
// against user directory records.
package identity

import (
	"context"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"trader-bot/internal/domain"
)

// MinMatchLength is the length the shorter of two normalized identities must
// exceed before a substring match counts. It keeps short fragments from
// matching unrelated numbers while tolerating a missing country code.
const MinMatchLength = 6

var channelPrefixes = []string{"whatsapp:", "sms:", "mms:", "tel:"}

// Source returns the full, ordered set of directory records.
type Source interface {
	Records(ctx context.Context) ([]domain.Record, error)
}

// Normalize strips channel-prefix tokens and every non-digit rune, leaving
// only the significant digit sequence.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	lower := strings.ToLower(s)
	for _, p := range channelPrefixes {
		if strings.HasPrefix(lower, p) {
			s = s[len(p):]
			lower = lower[len(p):]
		}
	}

	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r <= unicode.MaxASCII && unicode.IsDigit(r) {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Matches reports whether two normalized identities refer to the same sender.
func Matches(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	shorter := min(len(a), len(b))
	if shorter <= MinMatchLength {
		return false
	}
	return strings.Contains(a, b) || strings.Contains(b, a)
}

// Resolver finds the directory record for an inbound address.
type Resolver struct {
	source Source
	logger *zap.Logger
}

// NewResolver creates a Resolver. A nil source makes every lookup miss.
func NewResolver(source Source, logger *zap.Logger) *Resolver {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{source: source, logger: logger}
}

// Result describes one lookup. Err is set when the directory could not be
// read; the lookup then reports no match.
type Result struct {
	Key    string
	Record domain.Record
	Found  bool
	Err    error
}

// Resolve normalizes raw and returns the first matching record. Directory
// failures never propagate: they resolve as "no match".
func (r *Resolver) Resolve(ctx context.Context, raw string) Result {
	res := Result{Key: Normalize(raw)}
	if r.source == nil || res.Key == "" {
		return res
	}

	records, err := r.source.Records(ctx)
	if err != nil {
		r.logger.Warn("directory unavailable, treating sender as unregistered",
			zap.String("identity", res.Key),
			zap.Error(err),
		)
		res.Err = err
		return res
	}

	for _, rec := range records {
		if Matches(res.Key, Normalize(rec.Phone)) {
			res.Record = rec
			res.Found = true
			return res
		}
	}
	return res
}
