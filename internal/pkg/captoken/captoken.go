// Package captoken issues and redeems capability tokens: opaque random strings
// bound to one pending record, redeemable exactly once.
package captoken

import (
	"crypto/rand"
	"errors"
	"fmt"

	"travel-backend/internal/infrastructure/database"
	"travel-backend/internal/pkg/metrics"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// Length of every generated token.
const Length = 32

const alphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// DefaultAttempts bounds regeneration when a token collides with an existing one.
const DefaultAttempts = 5

var (
	ErrExhausted = errors.New("captoken: could not issue a unique token")
	// ErrNotPending is returned by Transition when no row was in the expected state.
	ErrNotPending = errors.New("captoken: record is not in the expected state")
)

// Generate returns a uniformly random alphanumeric token of Length characters.
func Generate() (string, error) {
	// 248 is the largest multiple of 62 below 256; larger bytes are rejected to avoid bias.
	const limit = 256 - 256%len(alphabet)
	out := make([]byte, 0, Length)
	buf := make([]byte, Length*2)
	for len(out) < Length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("captoken: read random: %w", err)
		}
		for _, b := range buf {
			if int(b) >= limit {
				continue
			}
			out = append(out, alphabet[int(b)%len(alphabet)])
			if len(out) == Length {
				break
			}
		}
	}
	return string(out), nil
}

// Issue calls create with fresh tokens until it succeeds, fails with an error other
// than a unique violation, or attempts run out. Only token collisions should be
// retried: create must surface other unique violations as its own error type.
func Issue(attempts int, create func(token string) error) (string, error) {
	if attempts <= 0 {
		attempts = DefaultAttempts
	}
	for i := 0; i < attempts; i++ {
		token, err := Generate()
		if err != nil {
			return "", err
		}
		err = create(token)
		if err == nil {
			return token, nil
		}
		if !database.IsUniqueViolation(err) {
			return "", err
		}
		metrics.TokenCollisions.Inc()
		log.Warn().Int("attempt", i+1).Msg("captoken: token collision, regenerating")
	}
	return "", ErrExhausted
}

// Transition moves the row of model matching where/args from status from to status to,
// as a single conditional update. It returns ErrNotPending when nothing matched, so
// two concurrent redemptions cannot both succeed.
func Transition(tx *gorm.DB, model interface{}, from, to string, where string, args ...interface{}) error {
	q := tx.Model(model).Where(where, args...).Where("status = ?", from)
	res := q.Update("status", to)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotPending
	}
	return nil
}
