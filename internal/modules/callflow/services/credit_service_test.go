package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/audit"
	"github.com/MuhamadAgungGumelar/callflow-be/internal/core/credit"
)

func TestPurchaseAppliesReferenceOnce(t *testing.T) {
	e := newEnv(t, 0)
	svc := NewCreditService(e.ledger, e.audit)
	ctx := context.Background()
	owner := uuid.New()

	req := PurchaseRequest{Reference: "cs_test_1", OwnerID: owner, PlanType: credit.PlanSmall, Quantity: 2}
	recorded, err := svc.Purchase(ctx, req)
	require.NoError(t, err)
	assert.True(t, recorded)

	recorded, err = svc.Purchase(ctx, req)
	require.NoError(t, err)
	assert.False(t, recorded)

	_, err = svc.Purchase(ctx, PurchaseRequest{Reference: "cs_test_2", OwnerID: owner, PlanType: credit.PlanSmall, Quantity: 3})
	require.NoError(t, err)

	balances, err := svc.Balance(ctx, owner)
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, CreditBalance{PlanType: credit.PlanSmall, Purchased: 5, Consumed: 0, Available: 5}, balances[0])
	assert.Equal(t, []string{audit.ActionCreditPurchased, audit.ActionCreditPurchased}, e.audit.recorded())
}

func TestPurchaseRejectsInvalidRequests(t *testing.T) {
	e := newEnv(t, 0)
	svc := NewCreditService(e.ledger, e.audit)
	ctx := context.Background()

	_, err := svc.Purchase(ctx, PurchaseRequest{Reference: "r", PlanType: credit.PlanSmall, Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Purchase(ctx, PurchaseRequest{OwnerID: uuid.New(), PlanType: credit.PlanSmall, Quantity: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.Purchase(ctx, PurchaseRequest{Reference: "r", OwnerID: uuid.New(), PlanType: credit.PlanSmall})
	assert.ErrorIs(t, err, credit.ErrInvalidQuantity)
}
