package webhook

import (
	"context"
	"strings"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"

	"github.com/surveyloop/surveyloop/internal/config"
	ierr "github.com/surveyloop/surveyloop/internal/errors"
	"github.com/surveyloop/surveyloop/internal/logger"
)

// Claims are the validated claims of an inbound webhook bearer token.
type Claims struct {
	Subject  string
	Issuer   string
	Audience []string
	Expiry   time.Time
}

// Verifier validates inbound webhook bearer tokens.
type Verifier interface {
	Verify(ctx context.Context, rawToken string) (*Claims, error)
}

// TokenVerifier validates signed webhook tokens against the key set
// published at the marketplace discovery endpoint. Issuer, audience and
// signing algorithm are pinned from configuration. The remote key set
// caches keys and refetches the discovery document exactly once on an
// unknown key id before failing.
type TokenVerifier struct {
	verifier *oidc.IDTokenVerifier
	logger   *logger.Logger
}

// NewTokenVerifier creates a verifier bound to the configured issuer,
// audience and JWKS endpoint. ctx governs the lifetime of the key
// cache's discovery fetches.
func NewTokenVerifier(ctx context.Context, cfg *config.Configuration, log *logger.Logger) *TokenVerifier {
	keySet := oidc.NewRemoteKeySet(ctx, cfg.Marketplace.WebhookJWKSURL)
	verifier := oidc.NewVerifier(cfg.Marketplace.WebhookIssuer, keySet, &oidc.Config{
		ClientID:             cfg.Marketplace.WebhookAudience,
		SupportedSigningAlgs: []string{oidc.RS256},
	})

	return &TokenVerifier{
		verifier: verifier,
		logger:   log,
	}
}

// Verify validates a bearer token. Any failure means the request must
// be rejected as unauthorized with no further processing.
func (v *TokenVerifier) Verify(ctx context.Context, rawToken string) (*Claims, error) {
	rawToken = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(rawToken), "Bearer "))
	if rawToken == "" {
		return nil, ierr.NewError("missing webhook bearer token").
			WithHint("Authorization header is required").
			Mark(ierr.ErrPermissionDenied)
	}

	token, err := v.verifier.Verify(ctx, rawToken)
	if err != nil {
		v.logger.Warnw("webhook token verification failed", "error", err)
		return nil, ierr.WithError(err).
			WithHint("Webhook token signature, issuer, audience or expiry is invalid").
			Mark(ierr.ErrPermissionDenied)
	}

	return &Claims{
		Subject:  token.Subject,
		Issuer:   token.Issuer,
		Audience: token.Audience,
		Expiry:   token.Expiry,
	}, nil
}
