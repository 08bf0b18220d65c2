package allocator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"

	"github.com/sirupsen/logrus"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const (
	// DefaultTTL bounds how long an unreleased reservation can block a code.
	DefaultTTL = 5 * time.Minute

	// DefaultMaxCandidates bounds the propose/reserve retry loop.
	DefaultMaxCandidates = 100

	fallbackBaseCode = "PRD"
	maxBaseCodeLen   = 4
)

// Allocator proposes, reserves, and releases product codes so that
// concurrently editing sessions never commit colliding codes. Allocation is
// optimistic: propose a candidate, attempt to reserve it, move to the next
// candidate on conflict.
type Allocator struct {
	store         ReservationStore
	ttl           time.Duration
	maxCandidates int
	logger        *logrus.Entry
}

// New creates an allocator on top of the given reservation store
func New(store ReservationStore, logger *logrus.Logger) *Allocator {
	return &Allocator{
		store:         store,
		ttl:           DefaultTTL,
		maxCandidates: DefaultMaxCandidates,
		logger:        logger.WithField("component", "code-allocator"),
	}
}

// SetTTL overrides the reservation TTL
func (a *Allocator) SetTTL(ttl time.Duration) {
	a.ttl = ttl
}

// Propose derives a base code from the product name and returns the
// lowest-index candidate that is neither in scopeCodes (committed or already
// used within the in-progress order) nor held by a live reservation.
func (a *Allocator) Propose(ctx context.Context, productName string, scopeCodes []string) (string, error) {
	taken := make(map[string]bool, len(scopeCodes))
	for _, code := range scopeCodes {
		taken[strings.ToUpper(code)] = true
	}

	base := BaseCode(productName)
	for i := 1; i <= a.maxCandidates; i++ {
		candidate := fmt.Sprintf("%s%02d", base, i)
		if taken[candidate] {
			continue
		}
		reservation, err := a.store.Get(ctx, candidate)
		if err != nil {
			return "", err
		}
		if reservation != nil {
			continue
		}
		return candidate, nil
	}
	return "", ErrNoCodeAvailable
}

// ProposeAndReserve proposes a code and reserves it for ownerID, retrying
// with the next candidate when another session wins the race. Exhaustion
// surfaces ErrNoCodeAvailable rather than reusing a colliding code.
func (a *Allocator) ProposeAndReserve(ctx context.Context, productName, ownerID string, scopeCodes []string) (string, error) {
	scope := make([]string, len(scopeCodes))
	copy(scope, scopeCodes)

	for attempt := 0; attempt < a.maxCandidates; attempt++ {
		candidate, err := a.Propose(ctx, productName, scope)
		if err != nil {
			return "", err
		}

		err = a.Reserve(ctx, candidate, ownerID)
		if err == nil {
			return candidate, nil
		}

		var conflict *CodeConflictError
		if !errors.As(err, &conflict) {
			return "", err
		}

		a.logger.WithFields(logrus.Fields{
			"code":  candidate,
			"owner": ownerID,
		}).Debug("Proposed code lost reservation race, retrying with next candidate")
		scope = append(scope, candidate)
	}
	return "", ErrNoCodeAvailable
}

// Reserve claims the code for ownerID with the configured TTL
func (a *Allocator) Reserve(ctx context.Context, code, ownerID string) error {
	return a.store.Acquire(ctx, strings.ToUpper(code), ownerID, a.ttl)
}

// Release drops the owner's reservations for the given codes. It is
// idempotent and must be invoked on every exit path: manual code edit, line
// removal, draft save, commit, cancel, and teardown.
func (a *Allocator) Release(ctx context.Context, codes []string, ownerID string) error {
	var firstErr error
	for _, code := range codes {
		if err := a.store.Release(ctx, strings.ToUpper(code), ownerID); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

var diacriticFolder = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// crossed D does not decompose to a combining mark
var crossedDReplacer = strings.NewReplacer("Đ", "D", "đ", "d")

// BaseCode derives a stable code prefix from a product name: diacritics
// folded, initials of the leading words, uppercased.
func BaseCode(productName string) string {
	folded, _, err := transform.String(diacriticFolder, crossedDReplacer.Replace(productName))
	if err != nil {
		folded = productName
	}

	var initials strings.Builder
	for _, word := range strings.Fields(folded) {
		for _, r := range word {
			if unicode.IsLetter(r) || unicode.IsDigit(r) {
				initials.WriteRune(unicode.ToUpper(r))
				break
			}
		}
		if initials.Len() >= maxBaseCodeLen {
			break
		}
	}

	if initials.Len() == 0 {
		return fallbackBaseCode
	}
	return initials.String()
}
