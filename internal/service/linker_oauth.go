package service

import (
	"context"
	"sync"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/surveyloop/surveyloop/internal/config"
	ierr "github.com/surveyloop/surveyloop/internal/errors"
	"github.com/surveyloop/surveyloop/internal/logger"
)

// OAuthExchanger wraps the authorization-code grant against the
// identity provider.
type OAuthExchanger interface {
	AuthCodeURL(state string) string
	Exchange(ctx context.Context, code string) (*oauth2.Token, error)
}

// IdentityVerifier validates a raw ID token and extracts the purchaser
// identity claims.
type IdentityVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*PurchaserIdentity, error)
}

type oauthExchanger struct {
	config *oauth2.Config
}

// NewOAuthExchanger builds the production exchanger from the landing
// configuration.
func NewOAuthExchanger(cfg *config.Configuration) OAuthExchanger {
	return &oauthExchanger{
		config: &oauth2.Config{
			ClientID:     cfg.Landing.ClientID,
			ClientSecret: cfg.Landing.ClientSecret,
			RedirectURL:  cfg.Landing.RedirectURL,
			Scopes:       cfg.Landing.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.Landing.AuthURL,
				TokenURL: cfg.Landing.TokenURL,
			},
		},
	}
}

func (e *oauthExchanger) AuthCodeURL(state string) string {
	return e.config.AuthCodeURL(state)
}

func (e *oauthExchanger) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	// Direct server-to-server call to the token endpoint; trust is
	// never re-derived from the browser.
	return e.config.Exchange(ctx, code)
}

type identityVerifier struct {
	issuerURL string
	clientID  string
	logger    *logger.Logger

	mu       sync.Mutex
	verifier *oidc.IDTokenVerifier
}

// NewIdentityVerifier builds the production ID-token verifier. Provider
// discovery happens lazily on first use so an unreachable IdP degrades
// a single request instead of failing startup.
func NewIdentityVerifier(cfg *config.Configuration, log *logger.Logger) IdentityVerifier {
	return &identityVerifier{
		issuerURL: cfg.Landing.IssuerURL,
		clientID:  cfg.Landing.ClientID,
		logger:    log,
	}
}

func (v *identityVerifier) getVerifier(ctx context.Context) (*oidc.IDTokenVerifier, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.verifier != nil {
		return v.verifier, nil
	}

	provider, err := oidc.NewProvider(ctx, v.issuerURL)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Identity provider discovery failed").
			Mark(ierr.ErrHTTPClient)
	}
	v.verifier = provider.Verifier(&oidc.Config{ClientID: v.clientID})
	return v.verifier, nil
}

func (v *identityVerifier) Verify(ctx context.Context, rawIDToken string) (*PurchaserIdentity, error) {
	verifier, err := v.getVerifier(ctx)
	if err != nil {
		return nil, err
	}

	idToken, err := verifier.Verify(ctx, rawIDToken)
	if err != nil {
		v.logger.Warnw("identity token verification failed", "error", err)
		return nil, ierr.WithError(err).
			WithHint("The identity token could not be verified").
			Mark(ierr.ErrPermissionDenied)
	}

	var claims struct {
		OID               string `json:"oid"`
		TID               string `json:"tid"`
		Name              string `json:"name"`
		Email             string `json:"email"`
		PreferredUsername string `json:"preferred_username"`
	}
	if err := idToken.Claims(&claims); err != nil {
		return nil, ierr.WithError(err).
			WithHint("The identity token carries malformed claims").
			Mark(ierr.ErrPermissionDenied)
	}

	email := claims.Email
	if email == "" {
		email = claims.PreferredUsername
	}

	identity := &PurchaserIdentity{
		OID:      claims.OID,
		TenantID: claims.TID,
		Name:     claims.Name,
		Email:    email,
	}
	if identity.OID == "" {
		identity.OID = idToken.Subject
	}

	if identity.OID == "" || identity.TenantID == "" {
		return nil, ierr.NewError("identity token missing subject or tenant claim").
			WithHint("The signed-in account does not belong to an organization").
			Mark(ierr.ErrPermissionDenied)
	}

	return identity, nil
}
