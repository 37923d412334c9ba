package service

import (
	"context"
	"time"

	"github.com/surveyloop/surveyloop/internal/domain/entitlement"
	ierr "github.com/surveyloop/surveyloop/internal/errors"
	"github.com/surveyloop/surveyloop/internal/logger"
	"github.com/surveyloop/surveyloop/internal/types"
)

// mergeOutcome classifies what a merge attempt did.
type mergeOutcome int

const (
	mergeApplied mergeOutcome = iota
	// mergeDuplicate means the operation id was already merged; the
	// caller must still acknowledge successfully.
	mergeDuplicate
	// mergeStale means the incoming snapshot is older than the stored
	// record. Logged, never surfaced as an error.
	mergeStale
)

// loadNewestRecord finds the existing record for a subscription across
// both origin partitions. A record created by the landing flow and one
// created by webhook delivery are the same logical subscription; when
// both partitions hold divergent records the one with the newer
// last_modified wins and subsequent writes land under its origin.
func loadNewestRecord(ctx context.Context, repo entitlement.Repository, subscriptionID string) (*entitlement.SubscriptionRecord, error) {
	records, err := repo.ListBySubscriptionID(ctx, subscriptionID)
	if err != nil {
		if ierr.IsNotFound(err) {
			return nil, nil
		}
		return nil, err
	}

	var newest *entitlement.SubscriptionRecord
	for _, record := range records {
		if newest == nil || record.IsNewerThan(newest) {
			newest = record
		}
	}
	return newest, nil
}

// mergeRecords merges incoming data into the stored record under the
// last-write-wins rule. Commercial attributes are updated only when
// the incoming value is present; status, last_operation_id and
// last_modified always follow the winning write.
func mergeRecords(existing, incoming *entitlement.SubscriptionRecord, log *logger.Logger) (*entitlement.SubscriptionRecord, mergeOutcome) {
	if existing == nil {
		if incoming.CreatedAt.IsZero() {
			incoming.CreatedAt = time.Now().UTC()
		}
		return incoming, mergeApplied
	}

	if incoming.LastOperationID != "" && incoming.LastOperationID == existing.LastOperationID {
		log.Infow("duplicate operation delivery, merge is a no-op",
			"subscription_id", existing.SubscriptionID,
			"operation_id", incoming.LastOperationID)
		return existing, mergeDuplicate
	}

	if incoming.LastModified.Before(existing.LastModified) {
		log.Warnw("ignoring stale merge, stored record is newer",
			"subscription_id", existing.SubscriptionID,
			"incoming_operation_id", incoming.LastOperationID,
			"incoming_last_modified", incoming.LastModified,
			"stored_last_modified", existing.LastModified)
		return existing, mergeStale
	}

	merged := *existing
	if incoming.PlanID != "" {
		merged.PlanID = incoming.PlanID
	}
	if incoming.OfferID != "" {
		merged.OfferID = incoming.OfferID
	}
	if incoming.Quantity > 0 {
		merged.Quantity = incoming.Quantity
	}
	if incoming.UserOID != "" {
		merged.UserOID = incoming.UserOID
	}
	if incoming.UserEmail != "" {
		merged.UserEmail = incoming.UserEmail
	}
	if incoming.UserName != "" {
		merged.UserName = incoming.UserName
	}
	if incoming.UserTenant != "" {
		merged.UserTenant = incoming.UserTenant
	}
	merged.Status = incoming.Status
	merged.LastOperationID = incoming.LastOperationID
	merged.LastModified = incoming.LastModified

	return &merged, mergeApplied
}

// newRecordTimestamp picks the effective last_modified for an incoming
// merge: the authoritative operation snapshot time when available,
// otherwise the wall clock.
func newRecordTimestamp(snapshot time.Time) time.Time {
	if snapshot.IsZero() {
		return time.Now().UTC()
	}
	return snapshot.UTC()
}

// originOrDefault keeps writes under the existing record's partition.
func originOrDefault(existing *entitlement.SubscriptionRecord, fallback types.SubscriptionOrigin) types.SubscriptionOrigin {
	if existing != nil {
		return existing.Origin
	}
	return fallback
}
