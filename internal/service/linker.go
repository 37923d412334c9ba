package service

import (
	"context"
	"time"

	"github.com/surveyloop/surveyloop/internal/correlation"
	"github.com/surveyloop/surveyloop/internal/domain/entitlement"
	ierr "github.com/surveyloop/surveyloop/internal/errors"
	"github.com/surveyloop/surveyloop/internal/marketplace"
	"github.com/surveyloop/surveyloop/internal/types"
)

// PurchaserIdentity is the validated identity extracted from the
// provider's ID token during the landing handshake.
type PurchaserIdentity struct {
	OID      string
	TenantID string
	Name     string
	Email    string
}

// LandingResult is what the callback handler forwards to the front end
// after a completed purchase landing.
type LandingResult struct {
	SubscriptionID string
	PlanID         string
	Status         types.SubscriptionStatus
	TenantID       string
	UserName       string
	UserEmail      string
}

// LinkerService drives the two-phase identity-linking handshake that
// correlates an anonymous marketplace purchase token with an
// authenticated organizational identity.
type LinkerService interface {
	// Begin stores the purchase token under a fresh correlation key and
	// returns the provider authorization URL to redirect the browser to.
	Begin(ctx context.Context, marketplaceToken string) (string, error)

	// Complete consumes the correlation state, exchanges the code,
	// validates the identity and activates the subscription.
	Complete(ctx context.Context, code, state string) (*LandingResult, error)
}

type linkerService struct {
	ServiceParams
}

func NewLinkerService(params ServiceParams) LinkerService {
	return &linkerService{ServiceParams: params}
}

func (s *linkerService) Begin(ctx context.Context, marketplaceToken string) (string, error) {
	if marketplaceToken == "" {
		return "", ierr.NewError("marketplace token is required").
			WithHint("The purchase link is missing its token").
			Mark(ierr.ErrValidation)
	}

	state := types.GenerateUUIDWithPrefix(types.UUID_PREFIX_STATE)
	s.CorrelationStore.Put(state, correlation.Entry{
		MarketplaceToken: marketplaceToken,
		CreatedAt:        time.Now().UTC(),
	})

	s.Logger.WithContext(ctx).Infow("started identity-linking handshake", "state", state)

	return s.Exchanger.AuthCodeURL(state), nil
}

func (s *linkerService) Complete(ctx context.Context, code, state string) (*LandingResult, error) {
	log := s.Logger.WithContext(ctx)

	if code == "" || state == "" {
		return nil, ierr.NewError("code and state are required").
			WithHint("The sign-in response is incomplete").
			Mark(ierr.ErrValidation)
	}

	// The state is consumed exactly once; a replayed callback fails
	// here with a session-expired outcome.
	entry, err := s.CorrelationStore.TakeOnce(state)
	if err != nil {
		return nil, err
	}

	token, err := s.Exchanger.Exchange(ctx, code)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Sign-in could not be completed, please try again").
			Mark(ierr.ErrPermissionDenied)
	}

	rawIDToken, ok := token.Extra("id_token").(string)
	if !ok || rawIDToken == "" {
		return nil, ierr.NewError("token response missing id_token").
			WithHint("The identity provider did not return an identity token").
			Mark(ierr.ErrPermissionDenied)
	}

	identity, err := s.Identity.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, err
	}

	resolved, err := s.Marketplace.ResolveToken(ctx, entry.MarketplaceToken)
	if err != nil {
		return nil, err
	}

	// Persist as Pending before activating: a crash between the two
	// calls leaves an auditable Pending record instead of data loss.
	pending, err := s.persist(ctx, resolved, identity, types.SubscriptionStatusPending)
	if err != nil {
		return nil, err
	}
	log.Infow("stored pending subscription from landing flow",
		"subscription_id", pending.SubscriptionID,
		"plan_id", pending.PlanID,
		"tenant_id", identity.TenantID)

	// Unlike pure webhook delivery, the landing flow is the trigger of
	// record for activation.
	if err := s.Marketplace.Activate(ctx, resolved.SubscriptionID, resolved.PlanID); err != nil {
		return nil, err
	}

	activated, err := s.persist(ctx, resolved, identity, types.SubscriptionStatusActivated)
	if err != nil {
		return nil, err
	}
	log.Infow("activated subscription from landing flow",
		"subscription_id", activated.SubscriptionID,
		"plan_id", activated.PlanID,
		"tenant_id", identity.TenantID)

	return &LandingResult{
		SubscriptionID: activated.SubscriptionID,
		PlanID:         activated.PlanID,
		Status:         activated.Status,
		TenantID:       identity.TenantID,
		UserName:       identity.Name,
		UserEmail:      identity.Email,
	}, nil
}

// persist runs the same merge logic as webhook reconciliation, with the
// validated identity attached.
func (s *linkerService) persist(ctx context.Context, resolved *marketplace.ResolvedSubscription, identity *PurchaserIdentity, status types.SubscriptionStatus) (*entitlement.SubscriptionRecord, error) {
	existing, err := loadNewestRecord(ctx, s.EntitlementRepo, resolved.SubscriptionID)
	if err != nil {
		return nil, err
	}

	incoming := &entitlement.SubscriptionRecord{
		SubscriptionID: resolved.SubscriptionID,
		Origin:         originOrDefault(existing, types.OriginLanding),
		PlanID:         resolved.PlanID,
		OfferID:        resolved.OfferID,
		Quantity:       resolved.Quantity,
		Status:         status,
		UserOID:        identity.OID,
		UserEmail:      identity.Email,
		UserName:       identity.Name,
		UserTenant:     identity.TenantID,
		LastModified:   time.Now().UTC(),
	}

	merged, outcome := mergeRecords(existing, incoming, s.Logger.WithContext(ctx))
	if outcome != mergeApplied {
		return merged, nil
	}
	if err := s.EntitlementRepo.Upsert(ctx, merged); err != nil {
		return nil, err
	}
	return merged, nil
}
