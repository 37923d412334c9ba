package service

import (
	"context"

	"github.com/surveyloop/surveyloop/internal/api/dto"
	"github.com/surveyloop/surveyloop/internal/domain/entitlement"
	"github.com/surveyloop/surveyloop/internal/types"
)

// ReconcilerService ingests verified marketplace notifications, fetches
// the authoritative operation and merges the result into the ledger.
// The whole flow is safe to re-run end-to-end for the same notification:
// the marketplace redelivers on any non-2xx outcome, so idempotency is
// the only concurrency control.
type ReconcilerService interface {
	ProcessNotification(ctx context.Context, req *dto.OperationNotification) error
}

type reconcilerService struct {
	ServiceParams
}

func NewReconcilerService(params ServiceParams) ReconcilerService {
	return &reconcilerService{ServiceParams: params}
}

func (s *reconcilerService) ProcessNotification(ctx context.Context, req *dto.OperationNotification) error {
	if err := req.Validate(); err != nil {
		return err
	}

	log := s.Logger.WithContext(ctx)

	// The notification body is untrusted; the authoritative operation
	// is the source of truth for the resulting lifecycle status.
	operation, err := s.Marketplace.GetOperation(ctx, req.SubscriptionID, req.ID)
	if err != nil {
		return err
	}

	existing, err := loadNewestRecord(ctx, s.EntitlementRepo, operation.SubscriptionID)
	if err != nil {
		return err
	}

	incoming := &entitlement.SubscriptionRecord{
		SubscriptionID:  operation.SubscriptionID,
		Origin:          originOrDefault(existing, types.OriginWebhook),
		PlanID:          operation.PlanID,
		OfferID:         operation.OfferID,
		Quantity:        operation.Quantity,
		Status:          types.DeriveStatus(operation.Action, operation.Status),
		LastOperationID: operation.ID,
		LastModified:    newRecordTimestamp(operation.TimeStamp),
	}

	merged, outcome := mergeRecords(existing, incoming, log)
	if outcome == mergeApplied {
		if err := s.EntitlementRepo.Upsert(ctx, merged); err != nil {
			return err
		}
		log.Infow("merged subscription operation",
			"subscription_id", merged.SubscriptionID,
			"operation_id", operation.ID,
			"status", merged.Status,
			"origin", merged.Origin)
	}

	// Only an operation the marketplace still reports as in progress
	// needs an explicit acknowledgement. Failure here is left to the
	// marketplace's redelivery; the ledger merge is never rolled back.
	if operation.Status == types.OperationStatusInProgress {
		if err := s.Marketplace.AcknowledgeOperation(ctx, operation.SubscriptionID, operation.ID); err != nil {
			log.Errorw("failed to acknowledge operation, awaiting redelivery",
				"subscription_id", operation.SubscriptionID,
				"operation_id", operation.ID,
				"error", err)
		}
	}

	return nil
}
