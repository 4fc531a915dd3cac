package audit

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MuhamadAgungGumelar/callflow-be/internal/shared/database/dbtest"
)

func TestLogChangeAndFilter(t *testing.T) {
	svc := NewService(dbtest.Open(t, &AuditLog{}))
	ctx := context.Background()
	owner := uuid.New()
	other := uuid.New()
	locationID := uuid.New().String()

	require.NoError(t, svc.LogChange(ctx, owner, ActionLocationProvisioned, "location", locationID, nil, map[string]string{"name": "Downtown"}))
	require.NoError(t, svc.LogChange(ctx, owner, ActionCreditReleased, "credit_entry", uuid.New().String(), nil, nil))
	require.NoError(t, svc.LogChange(ctx, other, ActionCreditPurchased, "credit_entry", uuid.New().String(), nil, nil))

	resp, err := svc.GetLogs(ctx, AuditFilter{OwnerID: &owner})
	require.NoError(t, err)
	assert.EqualValues(t, 2, resp.TotalCount)
	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 50, resp.PageSize)
	assert.Equal(t, 1, resp.TotalPages)

	resp, err = svc.GetLogs(ctx, AuditFilter{OwnerID: &owner, Action: ActionLocationProvisioned})
	require.NoError(t, err)
	require.Len(t, resp.Logs, 1)

	var newValue map[string]string
	require.NoError(t, json.Unmarshal(resp.Logs[0].NewValue, &newValue))
	assert.Equal(t, "Downtown", newValue["name"])
	assert.JSONEq(t, "null", string(resp.Logs[0].OldValue))

	history, err := svc.GetEntityHistory(ctx, owner, "location", locationID)
	require.NoError(t, err)
	assert.Len(t, history, 1)
}

func TestGetLogsPaginates(t *testing.T) {
	svc := NewService(dbtest.Open(t, &AuditLog{}))
	ctx := context.Background()
	owner := uuid.New()
	for i := 0; i < 5; i++ {
		require.NoError(t, svc.LogChange(ctx, owner, ActionCreditPurchased, "credit_entry", "e", nil, nil))
	}

	resp, err := svc.GetLogs(ctx, AuditFilter{OwnerID: &owner, Page: 2, PageSize: 2})

	require.NoError(t, err)
	assert.Len(t, resp.Logs, 2)
	assert.Equal(t, 3, resp.TotalPages)
}
