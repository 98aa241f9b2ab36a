// Package demodata fills an empty installation with fake accounts, leads and call history
// for demos and local development.
package demodata

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v6"

	"workbooster/internal/apperrors"
	"workbooster/internal/logger"
	"workbooster/internal/models"
	"workbooster/internal/services"
)

// Config controls how much data Seed creates.
type Config struct {
	Accounts        int
	LeadsPerAccount int
	// CallChance is the probability (0.0-1.0) that a lead gets a call logged.
	CallChance float64
	Seed       int64
}

type Summary struct {
	Accounts int `json:"accounts"`
	Leads    int `json:"leads"`
	Calls    int `json:"calls"`
	Skipped  int `json:"skipped"`
}

type Seeder struct {
	accounts *services.AccountService
	leads    *services.LeadService
	calls    *services.TelecallService
	lookups  services.LookupStore
	log      logger.Logger
}

func NewSeeder(accounts *services.AccountService, leads *services.LeadService, calls *services.TelecallService, lookups services.LookupStore) *Seeder {
	return &Seeder{accounts: accounts, leads: leads, calls: calls, lookups: lookups, log: logger.Default()}
}

// refs holds the lookup ids the generator picks from.
type refs struct {
	stages     []models.Stage
	industries []int64
	cities     []int64
	countries  []int64
	sources    []int64
	products   []int64
}

func (s *Seeder) loadRefs(ctx context.Context) (*refs, error) {
	stages, err := s.lookups.Stages(ctx)
	if err != nil {
		return nil, fmt.Errorf("load stages: %w", err)
	}
	if len(stages) == 0 {
		return nil, apperrors.Validation("no stages configured, run the migrations first")
	}
	r := &refs{stages: stages}
	for name, dst := range map[string]*[]int64{
		"industries":      &r.industries,
		"cities":          &r.cities,
		"countries":       &r.countries,
		"lead_sources":    &r.sources,
		"products_master": &r.products,
	} {
		t, _ := models.MasterTableByName(name)
		items, err := s.lookups.ListMaster(ctx, t, nil)
		if err != nil {
			return nil, fmt.Errorf("load %s: %w", name, err)
		}
		for _, item := range items {
			*dst = append(*dst, item.ID)
		}
	}
	return r, nil
}

// Seed creates cfg.Accounts accounts with their leads. Generated rows the services reject,
// such as a company name that already exists, are skipped.
func (s *Seeder) Seed(ctx context.Context, actor *models.Session, cfg Config) (*Summary, error) {
	r, err := s.loadRefs(ctx)
	if err != nil {
		return nil, err
	}
	f := gofakeit.New(cfg.Seed)
	sum := &Summary{}

	for i := 0; i < cfg.Accounts; i++ {
		account, err := s.accounts.Create(ctx, actor, accountRequest(f, r))
		if err != nil {
			if apperrors.Status(err) == http.StatusInternalServerError {
				return sum, fmt.Errorf("create account: %w", err)
			}
			s.log.Debug("demo account skipped", "error", err)
			sum.Skipped++
			continue
		}
		sum.Accounts++

		for j := 0; j < cfg.LeadsPerAccount; j++ {
			lead, err := s.leads.Create(ctx, actor, leadRequest(f, r, account.ID))
			if err != nil {
				if apperrors.Status(err) == http.StatusInternalServerError {
					return sum, fmt.Errorf("create lead: %w", err)
				}
				sum.Skipped++
				continue
			}
			sum.Leads++

			if f.Float64() >= cfg.CallChance {
				continue
			}
			if _, err := s.calls.Log(ctx, actor, lead.ID, callRequest(f)); err != nil {
				return sum, fmt.Errorf("log call: %w", err)
			}
			sum.Calls++
		}
	}
	s.log.Info("demo data seeded", "accounts", sum.Accounts, "leads", sum.Leads, "calls", sum.Calls, "skipped", sum.Skipped)
	return sum, nil
}

func pick(f *gofakeit.Faker, ids []int64) *int64 {
	if len(ids) == 0 {
		return nil
	}
	id := ids[f.Number(0, len(ids)-1)]
	return &id
}

func domain(company string) string {
	d := strings.ToLower(strings.NewReplacer(" ", "", ",", "", ".", "", "'", "").Replace(company))
	if len(d) > 20 {
		d = d[:20]
	}
	return d
}

func accountRequest(f *gofakeit.Faker, r *refs) services.AccountRequest {
	name := f.Company()
	website := fmt.Sprintf("https://www.%s.com", domain(name))
	email := fmt.Sprintf("contact@%s.com", domain(name))
	office := f.Street()
	phone := "+91 98" + f.Numerify("########")
	contactPhone := "+91 97" + f.Numerify("########")
	contactEmail := f.Email()
	designation := f.JobTitle()

	return services.AccountRequest{
		AccountName:    name,
		IndustryID:     pick(f, r.industries),
		HeadOffice:     &office,
		CityID:         pick(f, r.cities),
		CountryID:      pick(f, r.countries),
		CompanyWebsite: &website,
		Phone:          &phone,
		Email:          &email,
		Status:         f.RandomString([]string{models.AccountStatusProspect, models.AccountStatusActive, models.AccountStatusDormant}),
		Contacts: []services.ContactInput{{
			Name:        f.Name(),
			Designation: &designation,
			Phone:       &contactPhone,
			Email:       &contactEmail,
			IsPrimary:   true,
		}},
	}
}

func leadRequest(f *gofakeit.Faker, r *refs, accountID int64) services.LeadRequest {
	stage := r.stages[f.Number(0, len(r.stages)-1)]
	value := float64(f.Number(1, 500)) * 10000
	notes := f.Sentence(8)
	req := services.LeadRequest{
		AccountID:     accountID,
		StageID:       stage.ID,
		SourceID:      pick(f, r.sources),
		ProductID:     pick(f, r.products),
		ExpectedValue: &value,
		Notes:         &notes,
	}
	if f.Bool() {
		at := time.Now().Add(time.Duration(f.Number(1, 14*24)) * time.Hour).Truncate(time.Hour)
		req.FollowUpAt = &at
	}
	return req
}

func callRequest(f *gofakeit.Faker) services.TelecallRequest {
	notes := f.Sentence(6)
	return services.TelecallRequest{
		Outcome:         f.RandomString(models.CallOutcomes),
		Notes:           &notes,
		DurationSeconds: f.Number(15, 900),
	}
}
