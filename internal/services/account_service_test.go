package services

import (
	"context"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workbooster/internal/apperrors"
	"workbooster/internal/models"
)

func TestAccountCreate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	account, err := f.accounts.Create(ctx, admin, AccountRequest{
		AccountName:    "  Acme Tools ",
		IndustryID:     ptr(int64(1)),
		CompanyWebsite: ptr("https://www.acme.example/"),
		Email:          ptr("  "),
		Contacts: []ContactInput{
			{Name: "Ravi", Phone: ptr("081234 56789"), Email: ptr(""), IsPrimary: true},
		},
		LOBIDs:     []int64{3, 3, 4},
		UseCaseIDs: []int64{7},
		Departments: []DepartmentInput{
			{DepartmentID: 2, PainPoints: []string{" slow quotes ", ""}},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "Acme Tools", account.AccountName)
	assert.Equal(t, models.AccountStatusProspect, account.Status)
	assert.Nil(t, account.Email)
	require.NotNil(t, account.OwnerID)
	assert.Equal(t, admin.UserID, *account.OwnerID)
	require.Len(t, account.Contacts, 1)
	assert.Equal(t, "+918123456789", *account.Contacts[0].Phone)
	assert.Nil(t, account.Contacts[0].Email)
	assert.Len(t, account.LOBs, 2)
	require.Len(t, account.Departments, 1)
	assert.Equal(t, []models.PainPoint{{Description: "slow quotes"}}, account.Departments[0].PainPoints)
	// name, industry, website, contact, lob, department
	assert.Equal(t, 60, account.DataCompletionScore)
}

func TestAccountCreateRejectsDuplicates(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	_, err := f.accounts.Create(ctx, admin, AccountRequest{AccountName: "Acme", CompanyWebsite: ptr("acme.example")})
	require.NoError(t, err)

	tests := []struct {
		name string
		req  AccountRequest
		msg  string
	}{
		{"same name different case", AccountRequest{AccountName: " ACME "}, "already exists"},
		{"same website", AccountRequest{AccountName: "Other", CompanyWebsite: ptr("HTTP://WWW.Acme.Example/")}, "website"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.accounts.Create(ctx, admin, tt.req)
			require.Error(t, err)
			assert.Equal(t, http.StatusBadRequest, apperrors.Status(err))
			assert.Contains(t, err.Error(), tt.msg)
		})
	}
	assert.Len(t, f.db.Accounts, 1)
}

func TestAccountCreateValidation(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	tests := []struct {
		name string
		req  AccountRequest
	}{
		{"missing name", AccountRequest{AccountName: "   "}},
		{"bad status", AccountRequest{AccountName: "A", Status: "Closed"}},
		{"bad email", AccountRequest{AccountName: "A", Email: ptr("not-an-email")}},
		{"bad contact phone", AccountRequest{AccountName: "A", Contacts: []ContactInput{{Name: "X", Phone: ptr("12")}}}},
		{"unknown owner", AccountRequest{AccountName: "A", OwnerID: ptr(int64(999))}},
		{"department twice", AccountRequest{AccountName: "A", Departments: []DepartmentInput{{DepartmentID: 1}, {DepartmentID: 1}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.accounts.Create(ctx, admin, tt.req)
			require.Error(t, err)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		})
	}
	assert.Empty(t, f.db.Accounts)
}

func TestAccountUpdateIgnoresItselfInDuplicateCheck(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.accounts.Create(ctx, admin, AccountRequest{AccountName: "Acme", CompanyWebsite: ptr("acme.example")})
	require.NoError(t, err)

	updated, err := f.accounts.Update(ctx, a.ID, AccountRequest{
		AccountName:    "acme",
		CompanyWebsite: ptr("www.acme.example"),
		Status:         models.AccountStatusActive,
		HeadOffice:     ptr("Mumbai"),
	})
	require.NoError(t, err)
	assert.Equal(t, "acme", updated.AccountName)
	assert.Equal(t, models.AccountStatusActive, updated.Status)
	assert.Equal(t, 30, updated.DataCompletionScore)

	_, err = f.accounts.Update(ctx, 4242, AccountRequest{AccountName: "x"})
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAccountDeleteWithLeadsIsRefused(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.accounts.Create(ctx, admin, AccountRequest{AccountName: "Acme"})
	require.NoError(t, err)
	_, err = f.leads.Create(ctx, admin, LeadRequest{AccountID: a.ID, StageID: 1})
	require.NoError(t, err)

	err = f.accounts.Delete(ctx, a.ID)
	require.Error(t, err)
	assert.Equal(t, http.StatusBadRequest, apperrors.Status(err))

	still, err := f.accounts.Get(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Acme", still.AccountName)

	assert.ErrorIs(t, f.accounts.Delete(ctx, 4242), apperrors.ErrNotFound)
}

func TestAccountDelete(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.accounts.Create(ctx, admin, AccountRequest{AccountName: "Acme"})
	require.NoError(t, err)
	require.NoError(t, f.accounts.Delete(ctx, a.ID))

	_, err = f.accounts.Get(ctx, a.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestAccountCheckDuplicate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	a, err := f.accounts.Create(ctx, admin, AccountRequest{AccountName: "Acme", CompanyWebsite: ptr("acme.example")})
	require.NoError(t, err)

	flags, err := f.accounts.CheckDuplicate(ctx, DuplicateQuery{AccountName: "acme ", CompanyWebsite: "https://acme.example"})
	require.NoError(t, err)
	assert.True(t, flags.AccountNameExists)
	assert.True(t, flags.CompanyWebsiteExists)

	flags, err = f.accounts.CheckDuplicate(ctx, DuplicateQuery{AccountName: "Acme", ExcludeAccountID: &a.ID})
	require.NoError(t, err)
	assert.False(t, flags.Any())
}
