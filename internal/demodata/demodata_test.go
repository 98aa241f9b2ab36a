package demodata

import (
	"context"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"workbooster/internal/memstore"
	"workbooster/internal/models"
	"workbooster/internal/services"
)

var admin = &models.Session{UserID: 1, Role: models.RoleAdmin}

func newSeeder(db *memstore.DB) *Seeder {
	accounts := services.NewAccountService(memstore.Accounts{DB: db}, memstore.Users{DB: db}, "IN")
	leads := services.NewLeadService(memstore.Leads{DB: db}, memstore.Accounts{DB: db}, memstore.Lookups{DB: db}, memstore.Users{DB: db}, nil)
	calls := services.NewTelecallService(memstore.Calls{DB: db}, memstore.Leads{DB: db}, nil)
	return NewSeeder(accounts, leads, calls, memstore.Lookups{DB: db})
}

func TestSeedCreatesAccountsLeadsAndCalls(t *testing.T) {
	db := memstore.New()

	sum, err := newSeeder(db).Seed(context.Background(), admin, Config{Accounts: 5, LeadsPerAccount: 2, CallChance: 1, Seed: 42})
	require.NoError(t, err)

	assert.Equal(t, 5, sum.Accounts+sum.Skipped)
	assert.Len(t, db.Accounts, sum.Accounts)
	assert.Equal(t, 2*sum.Accounts, sum.Leads)
	assert.Len(t, db.Leads, sum.Leads)
	assert.Equal(t, sum.Leads, sum.Calls)
	assert.Len(t, db.Calls, sum.Calls)

	for _, l := range db.Leads {
		assert.Equal(t, l.StageID*10+1, l.StatusID, "lead %d starts at its stage's first status", l.ID)
	}
	for _, a := range db.Accounts {
		assert.True(t, models.ValidAccountStatus(a.Status))
		require.NotNil(t, a.IndustryID)
		assert.Equal(t, int64(1), *a.IndustryID)
	}
}

func TestSeedWithoutCalls(t *testing.T) {
	db := memstore.New()

	sum, err := newSeeder(db).Seed(context.Background(), admin, Config{Accounts: 2, LeadsPerAccount: 1, CallChance: 0, Seed: 7})
	require.NoError(t, err)
	assert.Zero(t, sum.Calls)
	assert.Empty(t, db.Calls)
}

func TestSeedRequiresStages(t *testing.T) {
	db := memstore.New()
	db.Stages = nil

	_, err := newSeeder(db).Seed(context.Background(), admin, Config{Accounts: 1})
	require.Error(t, err)
	assert.Empty(t, db.Accounts)
}

func TestPickAndDomain(t *testing.T) {
	f := gofakeit.New(1)
	assert.Nil(t, pick(f, nil))
	assert.Equal(t, int64(9), *pick(f, []int64{9}))

	assert.Equal(t, "acmecorpltd", domain("Acme Corp, Ltd."))
	assert.Len(t, domain("A Very Long Company Name Indeed Incorporated"), 20)
}
