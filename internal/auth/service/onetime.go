package service

import (
	"context"
	"errors"
	"time"

	"github.com/docuchat/docuchat/internal/auth/domain"
	"github.com/docuchat/docuchat/internal/auth/metrics"
	"github.com/docuchat/docuchat/internal/auth/store"
	"github.com/docuchat/docuchat/pkg/cryptox"
	"github.com/docuchat/docuchat/pkg/idx"
)

const (
	DefaultEmailVerificationTTL = 24 * time.Hour
	DefaultPasswordResetTTL     = 2 * time.Hour
)

// OneTimeTokens issues and redeems single-use tokens for one purpose. Email
// verification and password reset each get their own instance.
type OneTimeTokens struct {
	Store   store.Store
	Purpose domain.TokenPurpose
	Secret  string
	TTL     time.Duration
	Metrics *metrics.Metrics
	Now     func() time.Time
}

// Issue stores a new token for userID and returns the raw value.
func (s *OneTimeTokens) Issue(ctx context.Context, userID string) (string, error) {
	now := clock(s.Now)

	raw, err := cryptox.GenerateToken(cryptox.DefaultTokenSize)
	if err != nil {
		return "", err
	}

	t := domain.OneTimeToken{
		ID:        idx.New().String(),
		UserID:    userID,
		TokenHash: cryptox.KeyedFingerprint(raw, s.Secret),
		ExpiresAt: now.Add(s.TTL),
		CreatedAt: now,
	}
	if err := s.Store.OneTimeTokens(s.Purpose).CreateToken(ctx, t); err != nil {
		return "", err
	}
	return raw, nil
}

// Consume redeems raw and runs then in the same transaction. The token is
// marked used with a conditional update, so of two concurrent redemptions
// exactly one reaches then. Any error from then rolls the redemption back.
func (s *OneTimeTokens) Consume(
	ctx context.Context,
	raw string,
	then func(tx store.Tx, userID string) error,
) (string, error) {
	if raw == "" {
		return "", ErrInvalidOrExpiredToken
	}

	now := clock(s.Now)
	hash := cryptox.KeyedFingerprint(raw, s.Secret)

	var userID string
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		repo := tx.OneTimeTokens(s.Purpose)

		t, err := repo.GetTokenByHash(ctx, hash)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return ErrInvalidOrExpiredToken
			}
			return err
		}
		if !t.Usable(now) {
			return ErrInvalidOrExpiredToken
		}

		ok, err := repo.MarkTokenUsed(ctx, t.ID, now)
		if err != nil {
			return err
		}
		if !ok {
			return ErrInvalidOrExpiredToken
		}

		if then != nil {
			if err := then(tx, t.UserID); err != nil {
				return err
			}
		}

		userID = t.UserID
		return nil
	})

	switch {
	case err == nil:
		s.Metrics.TokenConsumed(string(s.Purpose), "ok")
	case errors.Is(err, ErrInvalidOrExpiredToken):
		s.Metrics.TokenConsumed(string(s.Purpose), "rejected")
	default:
		s.Metrics.TokenConsumed(string(s.Purpose), "error")
	}
	if err != nil {
		return "", err
	}
	return userID, nil
}
