package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workbooster/internal/metrics"
)

func TestImportCreatesAccountsAndLeads(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	text := "account_name,industry,city,stage,status,expected_value,follow_up_at,contact_name,contact_phone,contact_email,region\n" +
		"Acme,manufacturing,Pune,Telecalling,done,\"1,25,000\",2026-03-12 10:30,Ravi,08123456789,ravi@acme.example,West\n" +
		"ACME ,,,,,,,,,,\n" +
		"Globex\n"

	res, err := f.imports.Import(ctx, admin, text)
	require.NoError(t, err)

	assert.Equal(t, 3, res.Total)
	assert.Equal(t, 3, res.ImportedCount)
	assert.Empty(t, res.Errors)
	assert.Equal(t, []string{"region"}, res.IgnoredColumns)
	require.Len(t, res.Imported, 3)

	first, second, third := res.Imported[0], res.Imported[1], res.Imported[2]
	assert.True(t, first.AccountCreated)
	assert.False(t, second.AccountCreated)
	assert.Equal(t, first.AccountID, second.AccountID)
	assert.True(t, third.AccountCreated)
	assert.Equal(t, "Globex", third.AccountName)
	assert.Len(t, f.db.Accounts, 2)

	lead := f.db.Leads[first.LeadID]
	require.NotNil(t, lead)
	assert.Equal(t, int64(2), lead.StageID)
	assert.Equal(t, int64(22), lead.StatusID)
	assert.Equal(t, 125000.0, *lead.ExpectedValue)
	assert.Equal(t, time.Date(2026, 3, 12, 10, 30, 0, 0, time.UTC), *lead.FollowUpAt)

	account := f.db.Accounts[first.AccountID]
	require.Len(t, account.Contacts, 1)
	assert.Equal(t, "+918123456789", *account.Contacts[0].Phone)
	assert.Equal(t, int64(1), *account.IndustryID)

	// blank stage and status land on the first of each
	assert.Equal(t, int64(1), f.db.Leads[third.LeadID].StageID)
	assert.Equal(t, int64(11), f.db.Leads[third.LeadID].StatusID)
}

func TestImportCollectsRowErrors(t *testing.T) {
	f := newFixture()
	m := metrics.New()
	f.imports.metrics = m
	ctx := context.Background()

	text := "account_name,industry,stage,status,expected_value,contact_email,follow_up_at\n" +
		",,,,,,\n" +
		"Acme,Retail,,,,,\n" +
		"Globex,,Demo,Closed Won,,,\n" +
		"Initech,,,,abc,not-an-email,tomorrow\n" +
		"Umbrella,,POC,,,,\n"

	res, err := f.imports.Import(ctx, admin, text)
	require.NoError(t, err)

	assert.Equal(t, 5, res.Total)
	assert.Equal(t, 1, res.ImportedCount)
	assert.Equal(t, 4, res.FailedCount)
	require.Len(t, res.Imported, 1)
	assert.Equal(t, 5, res.Imported[0].Row)

	byRow := map[int][]ImportError{}
	for _, e := range res.Errors {
		byRow[e.Row] = append(byRow[e.Row], e)
	}
	require.Len(t, byRow[1], 1)
	assert.Equal(t, "account_name", byRow[1][0].Field)

	require.Len(t, byRow[2], 1)
	assert.Equal(t, "industry", byRow[2][0].Field)
	assert.Equal(t, "Retail", byRow[2][0].Value)

	require.Len(t, byRow[3], 1)
	assert.Equal(t, "status", byRow[3][0].Field)

	require.Len(t, byRow[4], 3)
	assert.Equal(t, "expected_value", byRow[4][0].Field)
	assert.Equal(t, "follow_up_at", byRow[4][1].Field)
	assert.Equal(t, "contact_email", byRow[4][2].Field)

	// failed rows leave nothing behind
	assert.Len(t, f.db.Accounts, 1)

	assert.Equal(t, 1.0, counterValue(t, m, "workbooster_import_rows_total", "imported"))
	assert.Equal(t, 4.0, counterValue(t, m, "workbooster_import_rows_total", "failed"))
}

func TestImportEmptyInput(t *testing.T) {
	f := newFixture()

	for _, text := range []string{"", "account_name,city\n", "\n\n  \n"} {
		res, err := f.imports.Import(context.Background(), admin, text)
		require.NoError(t, err)
		assert.Equal(t, NothingToImport, res.Notice)
		assert.Zero(t, res.Total)
		assert.Empty(t, res.Imported)
	}
}

func TestImportRowCap(t *testing.T) {
	f := newFixture()
	f.imports.maxRows = 2

	res, err := f.imports.Import(context.Background(), admin, "account_name\nA\nB\nC\nD\n")
	require.NoError(t, err)

	assert.Equal(t, 4, res.Total)
	assert.Equal(t, 2, res.ImportedCount)
	require.Len(t, res.Errors, 1)
	assert.Equal(t, 3, res.Errors[0].Row)
	assert.Contains(t, res.Errors[0].Message, "2 row(s) skipped")
}

func TestImportTreatsCaseInsensitiveMasterNames(t *testing.T) {
	f := newFixture()

	res, err := f.imports.Import(context.Background(), admin, "account_name,lead_source,product,country\nAcme,WEBSITE,workflow suite,india\n")
	require.NoError(t, err)
	require.Empty(t, res.Errors)

	lead := f.db.Leads[res.Imported[0].LeadID]
	assert.Equal(t, int64(1), *lead.SourceID)
	assert.Equal(t, int64(1), *lead.ProductID)
}

func TestImportKeepsContactDetailsWithoutContactName(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	text := "account_name,contact_phone,contact_email,city\n" +
		"Initech,08123456789,hello@initech.example,Pune\n" +
		"initech,09876543210,,Pune\n"

	res, err := f.imports.Import(ctx, admin, text)
	require.NoError(t, err)
	require.Len(t, res.Imported, 2)

	account := f.db.Accounts[res.Imported[0].AccountID]
	require.NotNil(t, account)
	assert.Empty(t, account.Contacts)
	require.NotNil(t, account.Phone)
	assert.Equal(t, "+918123456789", *account.Phone)
	require.NotNil(t, account.Email)
	assert.Equal(t, "hello@initech.example", *account.Email)
	assert.Empty(t, res.Imported[0].IgnoredFields)

	second := res.Imported[1]
	assert.False(t, second.AccountCreated)
	assert.Equal(t, []string{"city", "contact_phone"}, second.IgnoredFields)
	assert.Equal(t, "+918123456789", *f.db.Accounts[second.AccountID].Phone)
}
