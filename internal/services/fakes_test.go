package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"workbooster/internal/memstore"
	"workbooster/internal/metrics"
	"workbooster/internal/models"
)

type fixture struct {
	db       *memstore.DB
	accounts *AccountService
	leads    *LeadService
	masters  *MasterService
	users    *UserService
	imports  *ImportService
}

func newFixture() *fixture {
	db := memstore.New()
	accounts := NewAccountService(memstore.Accounts{DB: db}, memstore.Users{DB: db}, "IN")
	leads := NewLeadService(memstore.Leads{DB: db}, memstore.Accounts{DB: db}, memstore.Lookups{DB: db}, memstore.Users{DB: db}, nil)
	f := &fixture{
		db:       db,
		accounts: accounts,
		leads:    leads,
		masters:  NewMasterService(memstore.Lookups{DB: db}, memstore.Users{DB: db}, nil),
		users:    NewUserService(memstore.Users{DB: db}),
		imports:  NewImportService(accounts, leads, memstore.Lookups{DB: db}, nil, 0),
	}
	f.imports.loc = time.UTC
	return f
}

var admin = &models.Session{UserID: 1, Role: models.RoleAdmin}

func ptr[T any](v T) *T { return &v }

// counterValue reads one series of a counter from the registry. An empty label matches a
// counter without labels.
func counterValue(t *testing.T, m *metrics.Metrics, name, label string) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
		for _, metric := range mf.GetMetric() {
			pairs := metric.GetLabel()
			if (label == "" && len(pairs) == 0) || (len(pairs) > 0 && pairs[0].GetValue() == label) {
				return metric.GetCounter().GetValue()
			}
		}
	}
	return 0
}
