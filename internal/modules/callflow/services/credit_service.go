package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/credit"
)

type PurchaseRequest struct {
	Reference string    `json:"reference"`
	OwnerID   uuid.UUID `json:"owner_id"`
	PlanType  string    `json:"plan_type"`
	Quantity  int       `json:"quantity"`
}

type CreditBalance struct {
	PlanType  string `json:"plan_type"`
	Purchased int    `json:"purchased"`
	Consumed  int    `json:"consumed"`
	Available int    `json:"available"`
}

// CreditService is the purchase-facing side of the ledger.
type CreditService struct {
	ledger *credit.Ledger
	audit  AuditRecorder
}

func NewCreditService(ledger *credit.Ledger, audit AuditRecorder) *CreditService {
	return &CreditService{ledger: ledger, audit: audit}
}

// Purchase applies a paid purchase once per reference. It reports whether
// this call applied it.
func (s *CreditService) Purchase(ctx context.Context, req PurchaseRequest) (bool, error) {
	if req.OwnerID == uuid.Nil {
		return false, fmt.Errorf("%w: owner_id is required", ErrInvalidInput)
	}
	if strings.TrimSpace(req.Reference) == "" {
		return false, fmt.Errorf("%w: reference is required", ErrInvalidInput)
	}

	recorded, err := s.ledger.RecordPurchaseOnce(ctx, req.Reference, req.OwnerID, req.PlanType, req.Quantity)
	if err != nil {
		return false, err
	}
	if !recorded {
		return false, nil
	}

	if err := s.audit.LogChange(ctx, req.OwnerID, audit.ActionCreditPurchased, "credit_purchase", req.Reference, nil, req); err != nil {
		log.Error().Err(err).Str("reference", req.Reference).Msg("failed to audit credit purchase")
	}
	return true, nil
}

// Balance summarises every ledger entry of the owner.
func (s *CreditService) Balance(ctx context.Context, ownerID uuid.UUID) ([]CreditBalance, error) {
	entries, err := s.ledger.GetEntries(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	balances := make([]CreditBalance, 0, len(entries))
	for _, e := range entries {
		balances = append(balances, CreditBalance{
			PlanType:  e.PlanType,
			Purchased: e.PurchasedQuantity,
			Consumed:  e.ConsumedQuantity,
			Available: e.Available(),
		})
	}
	return balances, nil
}
