package service

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/docuchat/docuchat/internal/auth/domain"
	"github.com/docuchat/docuchat/internal/auth/metrics"
	"github.com/docuchat/docuchat/internal/auth/store"
	"github.com/docuchat/docuchat/pkg/cryptox"
	"github.com/docuchat/docuchat/pkg/idx"
	"github.com/docuchat/docuchat/pkg/slogx"
)

// DefaultRefreshTokenTTL is used when RefreshLedger.TTL is unset.
const DefaultRefreshTokenTTL = 30 * 24 * time.Hour

var errRotationRace = errors.New("refresh token rotated concurrently")

// IssuedRefreshToken carries the raw token. It is returned exactly once and
// only its keyed digest is stored.
type IssuedRefreshToken struct {
	ID        string
	UserID    string
	Token     string
	ExpiresAt time.Time
}

// RefreshLedger owns the refresh_tokens table: issuance, rotation with reuse
// detection, and revocation.
type RefreshLedger struct {
	Store   store.Store
	Secret  string // keyed digest secret
	TTL     time.Duration
	Metrics *metrics.Metrics
	Now     func() time.Time
}

func (l *RefreshLedger) ttl() time.Duration {
	if l.TTL <= 0 {
		return DefaultRefreshTokenTTL
	}
	return l.TTL
}

// Issue starts a new rotation chain for userID.
func (l *RefreshLedger) Issue(ctx context.Context, userID string, meta domain.RequestMeta) (IssuedRefreshToken, error) {
	return l.issue(ctx, l.Store.RefreshTokens(), userID, meta, clock(l.Now))
}

func (l *RefreshLedger) issue(
	ctx context.Context,
	repo store.RefreshTokens,
	userID string,
	meta domain.RequestMeta,
	now time.Time,
) (IssuedRefreshToken, error) {
	raw, err := cryptox.GenerateToken(cryptox.TokenSizeRefresh)
	if err != nil {
		return IssuedRefreshToken{}, err
	}

	rt := domain.RefreshToken{
		ID:          idx.New().String(),
		UserID:      userID,
		TokenHash:   cryptox.KeyedFingerprint(raw, l.Secret),
		ExpiresAt:   now.Add(l.ttl()),
		CreatedByIP: meta.IP,
		UserAgent:   meta.UserAgent,
		CreatedAt:   now,
	}
	if err := repo.CreateRefreshToken(ctx, rt); err != nil {
		return IssuedRefreshToken{}, err
	}

	return IssuedRefreshToken{ID: rt.ID, UserID: userID, Token: raw, ExpiresAt: rt.ExpiresAt}, nil
}

// Rotate exchanges raw for a successor token.
//
// Presenting a token that was already revoked or rotated is treated as theft:
// every active token of the owner is revoked before ErrUnauthorized is
// returned. An expired token is marked revoked. If a concurrent rotation of
// the same record commits first, the conditional revoke affects no rows, the
// successor is rolled back and the caller gets ErrUnauthorized.
func (l *RefreshLedger) Rotate(ctx context.Context, raw string, meta domain.RequestMeta) (IssuedRefreshToken, error) {
	log := slogx.FromContext(ctx)
	if raw == "" {
		l.Metrics.Refresh(metrics.RefreshUnknown)
		return IssuedRefreshToken{}, ErrUnauthorized
	}

	now := clock(l.Now)
	hash := cryptox.KeyedFingerprint(raw, l.Secret)

	var (
		issued  IssuedRefreshToken
		outcome string
	)

	err := l.Store.WithTx(ctx, func(tx store.Tx) error {
		rt, err := tx.RefreshTokens().GetRefreshTokenByHash(ctx, hash)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				outcome = metrics.RefreshUnknown
				return ErrUnauthorized
			}
			return err
		}

		switch rt.State(now) {
		case domain.RefreshTokenRotated, domain.RefreshTokenRevoked:
			n, err := tx.RefreshTokens().RevokeAllUserRefreshTokens(ctx, rt.UserID, now, meta.IP)
			if err != nil {
				return err
			}
			log.Warn("refresh token reuse detected, revoked all sessions",
				slog.String("user_id", rt.UserID),
				slog.String("token_id", rt.ID),
				slog.Int64("revoked", n),
				slog.String("ip", meta.IP),
			)
			outcome = metrics.RefreshReused
			return nil

		case domain.RefreshTokenExpired:
			if _, err := tx.RefreshTokens().RevokeRefreshToken(ctx, rt.ID, now, meta.IP, ""); err != nil {
				return err
			}
			outcome = metrics.RefreshExpired
			return nil
		}

		next, err := l.issue(ctx, tx.RefreshTokens(), rt.UserID, meta, now)
		if err != nil {
			return err
		}

		ok, err := tx.RefreshTokens().RevokeRefreshToken(ctx, rt.ID, now, meta.IP, next.ID)
		if err != nil {
			return err
		}
		if !ok {
			return errRotationRace
		}

		issued = next
		outcome = metrics.RefreshRotated
		return nil
	})

	switch {
	case errors.Is(err, errRotationRace):
		log.Info("refresh token rotation lost a race")
		l.Metrics.Refresh(metrics.RefreshRace)
		return IssuedRefreshToken{}, ErrUnauthorized
	case err != nil:
		if outcome != "" {
			l.Metrics.Refresh(outcome)
		}
		return IssuedRefreshToken{}, err
	}

	l.Metrics.Refresh(outcome)
	if outcome != metrics.RefreshRotated {
		return IssuedRefreshToken{}, ErrUnauthorized
	}
	return issued, nil
}

// RevokeAll revokes every active token of userID and returns how many changed.
func (l *RefreshLedger) RevokeAll(ctx context.Context, userID, ip string) (int64, error) {
	return l.Store.RefreshTokens().RevokeAllUserRefreshTokens(ctx, userID, clock(l.Now), ip)
}

// RevokeOne revokes the record matching raw. Unknown or already revoked
// tokens are not an error.
func (l *RefreshLedger) RevokeOne(ctx context.Context, raw, ip string) error {
	if raw == "" {
		return nil
	}
	_, err := l.Store.RefreshTokens().RevokeRefreshTokenByHash(ctx, cryptox.KeyedFingerprint(raw, l.Secret), clock(l.Now), ip)
	return err
}
