package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workbooster/internal/apperrors"
	"workbooster/internal/stageview"
)

func newAccount(t *testing.T, f *fixture, name string) int64 {
	t.Helper()
	a, err := f.accounts.Create(context.Background(), admin, AccountRequest{AccountName: name})
	require.NoError(t, err)
	return a.ID
}

func TestLeadCreateDefaultsToFirstStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	accountID := newAccount(t, f, "Acme")

	lead, err := f.leads.Create(ctx, admin, LeadRequest{AccountID: accountID, StageID: 2, Notes: ptr("  ")})
	require.NoError(t, err)

	assert.Equal(t, int64(21), lead.StatusID)
	assert.Equal(t, "Telecalling", lead.StageName)
	assert.Equal(t, "Open", lead.StatusName)
	assert.Equal(t, "Acme", lead.AccountName)
	assert.Nil(t, lead.Notes)
	require.NotNil(t, lead.GeneratedBy)
	assert.Equal(t, admin.UserID, *lead.GeneratedBy)
}

func TestLeadCreateRejectsBadReferences(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	accountID := newAccount(t, f, "Acme")

	tests := []struct {
		name string
		req  LeadRequest
		msg  string
	}{
		{"status of another stage", LeadRequest{AccountID: accountID, StageID: 2, StatusID: ptr(int64(11))}, "does not belong"},
		{"unknown stage", LeadRequest{AccountID: accountID, StageID: 99}, "stage_id 99"},
		{"unknown account", LeadRequest{AccountID: 9999, StageID: 1}, "account_id 9999"},
		{"unknown telecaller", LeadRequest{AccountID: accountID, StageID: 1, TelecallerID: ptr(int64(77))}, "telecaller_id"},
		{"negative value", LeadRequest{AccountID: accountID, StageID: 1, ExpectedValue: ptr(-1.0)}, "expected_value"},
		{"missing stage", LeadRequest{AccountID: accountID}, "stage_id is required"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.leads.Create(ctx, admin, tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
	assert.Empty(t, f.db.Leads)
}

func TestLeadUpdateStageChangeResetsStatus(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	accountID := newAccount(t, f, "Acme")

	lead, err := f.leads.Create(ctx, admin, LeadRequest{AccountID: accountID, StageID: 1, StatusID: ptr(int64(12))})
	require.NoError(t, err)
	require.Equal(t, int64(12), lead.StatusID)

	// status 12 belongs to stage 1, so moving to stage 3 lands on 3's first status
	moved, err := f.leads.Update(ctx, lead.ID, LeadRequest{AccountID: accountID, StageID: 3, StatusID: ptr(int64(12))})
	require.NoError(t, err)
	assert.Equal(t, int64(3), moved.StageID)
	assert.Equal(t, int64(31), moved.StatusID)

	kept, err := f.leads.Update(ctx, lead.ID, LeadRequest{AccountID: accountID, StageID: 4, StatusID: ptr(int64(42))})
	require.NoError(t, err)
	assert.Equal(t, int64(42), kept.StatusID)
}

func TestLeadUpdateSameStage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	accountID := newAccount(t, f, "Acme")

	lead, err := f.leads.Create(ctx, admin, LeadRequest{AccountID: accountID, StageID: 5, StatusID: ptr(int64(52))})
	require.NoError(t, err)

	same, err := f.leads.Update(ctx, lead.ID, LeadRequest{AccountID: accountID, StageID: 5, ExpectedValue: ptr(1500.0)})
	require.NoError(t, err)
	assert.Equal(t, int64(52), same.StatusID)
	assert.Equal(t, 1500.0, *same.ExpectedValue)

	_, err = f.leads.Update(ctx, lead.ID, LeadRequest{AccountID: accountID, StageID: 5, StatusID: ptr(int64(61))})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.leads.Update(ctx, 4242, LeadRequest{AccountID: accountID, StageID: 5})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLeadChangeStage(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	accountID := newAccount(t, f, "Acme")

	lead, err := f.leads.Create(ctx, admin, LeadRequest{AccountID: accountID, StageID: 1, StatusID: ptr(int64(12))})
	require.NoError(t, err)

	moved, err := f.leads.ChangeStage(ctx, lead.ID, StageChangeRequest{StageID: 7})
	require.NoError(t, err)
	assert.Equal(t, "Won", moved.StageName)
	assert.Equal(t, int64(71), moved.StatusID)

	moved, err = f.leads.ChangeStage(ctx, lead.ID, StageChangeRequest{StageID: 8, StatusID: ptr(int64(82))})
	require.NoError(t, err)
	assert.Equal(t, int64(82), moved.StatusID)

	moved, err = f.leads.ChangeStage(ctx, lead.ID, StageChangeRequest{StageID: 8})
	require.NoError(t, err)
	assert.Equal(t, int64(82), moved.StatusID, "same stage without a status keeps the current one")

	_, err = f.leads.ChangeStage(ctx, lead.ID, StageChangeRequest{StageID: 2, StatusID: ptr(int64(82))})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	_, err = f.leads.ChangeStage(ctx, 4242, StageChangeRequest{StageID: 2})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestLeadListByView(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	acme := newAccount(t, f, "Acme")
	globex := newAccount(t, f, "Globex")

	for _, req := range []LeadRequest{
		{AccountID: acme, StageID: 1},
		{AccountID: globex, StageID: 2},
		{AccountID: acme, StageID: 2},
		{AccountID: globex, StageID: 7},
	} {
		_, err := f.leads.Create(ctx, admin, req)
		require.NoError(t, err)
	}

	rows, err := f.leads.List(ctx, "telecalling", stageview.Criteria{Sort: "account_name"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Acme", rows[0].AccountName)
	assert.Equal(t, "Globex", rows[1].AccountName)

	rows, err = f.leads.List(ctx, "", stageview.Criteria{Search: "glob"})
	require.NoError(t, err)
	assert.Len(t, rows, 2)

	rows, err = f.leads.List(ctx, "closed", stageview.Criteria{})
	require.NoError(t, err)
	assert.Len(t, rows, 1)

	_, err = f.leads.List(ctx, "kanban", stageview.Criteria{})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	assert.Len(t, f.leads.Views(), len(stageview.Kinds()))
}

func TestLeadDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	lead, err := f.leads.Create(ctx, admin, LeadRequest{AccountID: newAccount(t, f, "Acme"), StageID: 1})
	require.NoError(t, err)

	require.NoError(t, f.leads.Delete(ctx, lead.ID))
	assert.ErrorIs(t, f.leads.Delete(ctx, lead.ID), apperrors.ErrNotFound)
}
