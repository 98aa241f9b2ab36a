// Package memstore implements the service store interfaces in memory. It backs the service
// and handler tests and mirrors the repositories' semantics: nil on not found, case-insensitive
// name matching and a transactional telecall follow-up.
package memstore

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"workbooster/internal/models"
	"workbooster/internal/repositories"
)

// DB is the shared state behind the in-memory stores. Each store type wraps it so the
// method sets do not collide.
type DB struct {
	mu sync.Mutex

	nextID   int64
	Now      time.Time
	Users    map[int64]*models.User
	Accounts map[int64]*models.Account
	Leads    map[int64]*models.Lead
	Calls    []models.TelecallLog
	Meetings []models.AccountMeeting
	Stages   []models.Stage
	Statuses []models.Status
	Masters  map[string][]models.MasterItem
}

// StageNames lists the seeded pipeline in sort order.
var StageNames = []string{"Sourcing", "Telecalling", "Demo", "POC", "Proposal", "Negotiation", "Won", "Lost"}

// New seeds the pipeline (stage n has statuses 10n+1 "Open" and 10n+2 "Done"), two active
// users and an inactive one, and one row in each master table the import resolves.
func New() *DB {
	db := &DB{
		nextID:   100,
		Now:      time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC),
		Users:    map[int64]*models.User{},
		Accounts: map[int64]*models.Account{},
		Leads:    map[int64]*models.Lead{},
		Masters:  map[string][]models.MasterItem{},
	}
	for i, name := range StageNames {
		id := int64(i + 1)
		db.Stages = append(db.Stages, models.Stage{ID: id, Name: name, SortOrder: i + 1})
		// inserted out of order so FirstStatus has to sort
		db.Statuses = append(db.Statuses,
			models.Status{ID: id*10 + 2, StageID: id, Name: "Done", SortOrder: 2},
			models.Status{ID: id*10 + 1, StageID: id, Name: "Open", SortOrder: 1},
		)
	}
	db.Users[1] = &models.User{ID: 1, Name: "Admin", Email: "admin@example.com", Role: models.RoleAdmin, IsActive: true}
	db.Users[2] = &models.User{ID: 2, Name: "Tara", Email: "tara@example.com", Role: models.RoleTelecaller, IsActive: true}
	db.Users[3] = &models.User{ID: 3, Name: "Gone", Email: "gone@example.com", Role: models.RoleSales, IsActive: false}

	for table, name := range map[string]string{
		"industries":      "Manufacturing",
		"cities":          "Pune",
		"countries":       "India",
		"lead_sources":    "Website",
		"products_master": "Workflow Suite",
	} {
		db.Masters[table] = []models.MasterItem{{ID: 1, Name: name}}
	}
	return db
}

func (db *DB) id() int64 {
	db.nextID++
	return db.nextID
}

func (db *DB) leadRow(l *models.Lead) *models.LeadRow {
	row := &models.LeadRow{Lead: *l}
	if a := db.Accounts[l.AccountID]; a != nil {
		row.AccountName = a.AccountName
		row.IndustryID = a.IndustryID
		row.CityID = a.CityID
		if len(a.Contacts) > 0 {
			row.ContactName = &a.Contacts[0].Name
			row.ContactPhone = a.Contacts[0].Phone
		}
	}
	for _, s := range db.Stages {
		if s.ID == l.StageID {
			row.StageName = s.Name
		}
	}
	for _, s := range db.Statuses {
		if s.ID == l.StatusID {
			row.StatusName = s.Name
		}
	}
	for i := len(db.Calls) - 1; i >= 0; i-- {
		if db.Calls[i].LeadID == l.ID {
			row.LastCallOutcome = &db.Calls[i].Outcome
			row.LastCallAt = &db.Calls[i].CalledAt
			break
		}
	}
	return row
}

type Users struct{ *DB }

func (f Users) Create(ctx context.Context, u *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	u.Prepare()
	u.ID = f.id()
	u.CreatedAt = f.Now
	cp := *u
	f.Users[u.ID] = &cp
	return nil
}

func (f Users) UpsertByEmail(ctx context.Context, u *models.User) error {
	if existing, _ := f.FindByEmail(ctx, u.Email); existing != nil {
		f.mu.Lock()
		defer f.mu.Unlock()
		u.Prepare()
		u.ID = existing.ID
		u.IsActive = true
		cp := *u
		f.Users[u.ID] = &cp
		return nil
	}
	u.IsActive = true
	return f.Create(ctx, u)
}

func (f Users) FindByID(ctx context.Context, id int64) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u := f.Users[id]; u != nil {
		cp := *u
		return &cp, nil
	}
	return nil, nil
}

func (f Users) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.Users {
		if strings.EqualFold(u.Email, strings.TrimSpace(email)) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, nil
}

func (f Users) List(ctx context.Context) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.User{}
	for _, u := range f.Users {
		out = append(out, *u)
	}
	slices.SortFunc(out, func(a, b models.User) int { return int(a.ID - b.ID) })
	return out, nil
}

func (f Users) Update(ctx context.Context, u *models.User) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Users[u.ID] == nil {
		return false, nil
	}
	u.Prepare()
	cp := *u
	f.Users[u.ID] = &cp
	return true, nil
}

func (f Users) TouchLastLogin(ctx context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u := f.Users[id]; u != nil {
		now := f.Now
		u.LastLoginAt = &now
	}
	return nil
}

func (f Users) ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[int64]bool{}
	for _, id := range ids {
		if f.Users[id] != nil {
			out[id] = true
		}
	}
	return out, nil
}

type Lookups struct{ *DB }

func (f Lookups) Stages(ctx context.Context) ([]models.Stage, error) {
	return slices.Clone(f.DB.Stages), nil
}

func (f Lookups) StageByID(ctx context.Context, id int64) (*models.Stage, error) {
	for _, s := range f.DB.Stages {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, nil
}

func (f Lookups) StageByName(ctx context.Context, name string) (*models.Stage, error) {
	for _, s := range f.DB.Stages {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return &s, nil
		}
	}
	return nil, nil
}

func (f Lookups) Statuses(ctx context.Context, stageID *int64) ([]models.Status, error) {
	out := []models.Status{}
	for _, s := range f.DB.Statuses {
		if stageID == nil || s.StageID == *stageID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f Lookups) StatusByID(ctx context.Context, id int64) (*models.Status, error) {
	for _, s := range f.DB.Statuses {
		if s.ID == id {
			return &s, nil
		}
	}
	return nil, nil
}

func (f Lookups) StatusByName(ctx context.Context, stageID int64, name string) (*models.Status, error) {
	for _, s := range f.DB.Statuses {
		if s.StageID == stageID && strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return &s, nil
		}
	}
	return nil, nil
}

func (f Lookups) FirstStatus(ctx context.Context, stageID int64) (*models.Status, error) {
	var first *models.Status
	for _, s := range f.DB.Statuses {
		if s.StageID == stageID && (first == nil || s.SortOrder < first.SortOrder) {
			first = &s
		}
	}
	return first, nil
}

func (f Lookups) ListMaster(ctx context.Context, t models.MasterTable, industryID *int64) ([]models.MasterItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.MasterItem{}
	for _, item := range f.Masters[t.Name] {
		if industryID == nil || (item.IndustryID != nil && *item.IndustryID == *industryID) {
			out = append(out, item)
		}
	}
	return out, nil
}

func (f Lookups) FindMaster(ctx context.Context, t models.MasterTable, id int64) (*models.MasterItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.Masters[t.Name] {
		if item.ID == id {
			return &item, nil
		}
	}
	return nil, nil
}

func (f Lookups) FindMasterByName(ctx context.Context, t models.MasterTable, name string) (*models.MasterItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, item := range f.Masters[t.Name] {
		if strings.EqualFold(item.Name, strings.TrimSpace(name)) {
			return &item, nil
		}
	}
	return nil, nil
}

func (f Lookups) CreateMaster(ctx context.Context, t models.MasterTable, item *models.MasterItem) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	item.ID = f.id()
	item.CreatedAt = f.Now
	f.Masters[t.Name] = append(f.Masters[t.Name], *item)
	return nil
}

func (f Lookups) UpdateMaster(ctx context.Context, t models.MasterTable, item *models.MasterItem) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i, existing := range f.Masters[t.Name] {
		if existing.ID == item.ID {
			f.Masters[t.Name][i] = *item
			return true, nil
		}
	}
	return false, nil
}

func (f Lookups) DeleteMaster(ctx context.Context, t models.MasterTable, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	items := f.Masters[t.Name]
	for i, existing := range items {
		if existing.ID == id {
			f.Masters[t.Name] = slices.Delete(items, i, i+1)
			return true, nil
		}
	}
	return false, nil
}

type Accounts struct{ *DB }

func (f Accounts) List(ctx context.Context, flt repositories.AccountFilter) ([]models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.Account{}
	for _, a := range f.Accounts {
		if flt.Search != "" && !strings.Contains(strings.ToLower(a.AccountName), strings.ToLower(flt.Search)) {
			continue
		}
		if flt.Status != "" && a.Status != flt.Status {
			continue
		}
		if flt.OwnerID != nil && (a.OwnerID == nil || *a.OwnerID != *flt.OwnerID) {
			continue
		}
		out = append(out, *a)
	}
	return out, nil
}

func (f Accounts) FindByID(ctx context.Context, id int64) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a := f.Accounts[id]; a != nil {
		cp := *a
		return &cp, nil
	}
	return nil, nil
}

func (f Accounts) FindByName(ctx context.Context, name string) (*models.Account, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, a := range f.Accounts {
		if models.NormalizeAccountName(a.AccountName) == models.NormalizeAccountName(name) {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (f Accounts) Create(ctx context.Context, a *models.Account) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	a.ID = f.id()
	a.CreatedAt = f.Now
	a.UpdatedAt = f.Now
	cp := *a
	f.Accounts[a.ID] = &cp
	return nil
}

func (f Accounts) Update(ctx context.Context, a *models.Account) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing := f.Accounts[a.ID]
	if existing == nil {
		return false, nil
	}
	a.CreatedAt = existing.CreatedAt
	a.UpdatedAt = f.Now
	cp := *a
	f.Accounts[a.ID] = &cp
	return true, nil
}

func (f Accounts) Delete(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Accounts[id] == nil {
		return false, nil
	}
	delete(f.Accounts, id)
	return true, nil
}

func (f Accounts) CountLeads(ctx context.Context, accountID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, l := range f.Leads {
		if l.AccountID == accountID {
			n++
		}
	}
	return n, nil
}

func (f Accounts) FindDuplicates(ctx context.Context, name, website string, excludeID *int64) (models.DuplicateFlags, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var flags models.DuplicateFlags
	for _, a := range f.Accounts {
		if excludeID != nil && a.ID == *excludeID {
			continue
		}
		if name != "" && models.NormalizeAccountName(a.AccountName) == models.NormalizeAccountName(name) {
			flags.AccountNameExists = true
		}
		if website != "" && a.CompanyWebsite != nil && models.NormalizeWebsite(*a.CompanyWebsite) == website {
			flags.CompanyWebsiteExists = true
		}
	}
	return flags, nil
}

func (f Accounts) ListIDs(ctx context.Context) ([]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ids := []int64{}
	for id := range f.Accounts {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids, nil
}

func (f Accounts) UpdateScore(ctx context.Context, id int64, score int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if a := f.Accounts[id]; a != nil {
		a.DataCompletionScore = score
	}
	return nil
}

type Leads struct{ *DB }

func (f Leads) List(ctx context.Context, flt repositories.LeadFilter) ([]models.LeadRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.LeadRow{}
	for _, l := range f.Leads {
		row := f.leadRow(l)
		if len(flt.StageNames) > 0 && !slices.Contains(flt.StageNames, row.StageName) {
			continue
		}
		if flt.AccountID != nil && l.AccountID != *flt.AccountID {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

func (f Leads) FindByID(ctx context.Context, id int64) (*models.LeadRow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if l := f.Leads[id]; l != nil {
		return f.leadRow(l), nil
	}
	return nil, nil
}

func (f Leads) Create(ctx context.Context, l *models.Lead) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	l.ID = f.id()
	// spread creation times so the default sort is deterministic
	l.CreatedAt = f.Now.Add(time.Duration(l.ID) * time.Minute)
	l.UpdatedAt = l.CreatedAt
	cp := *l
	f.Leads[l.ID] = &cp
	return nil
}

func (f Leads) Update(ctx context.Context, l *models.Lead) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	existing := f.Leads[l.ID]
	if existing == nil {
		return false, nil
	}
	l.CreatedAt = existing.CreatedAt
	cp := *l
	f.Leads[l.ID] = &cp
	return true, nil
}

func (f Leads) UpdateStage(ctx context.Context, id, stageID, statusID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	l := f.Leads[id]
	if l == nil {
		return false, nil
	}
	l.StageID = stageID
	l.StatusID = statusID
	return true, nil
}

func (f Leads) Delete(ctx context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Leads[id] == nil {
		return false, nil
	}
	delete(f.Leads, id)
	return true, nil
}

type Calls struct{ *DB }

func (f Calls) Create(ctx context.Context, log *models.TelecallLog) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	log.ID = f.id()
	f.Calls = append(f.Calls, *log)
	if log.FollowUpAt != nil {
		if l := f.Leads[log.LeadID]; l != nil {
			at := *log.FollowUpAt
			l.FollowUpAt = &at
		}
	}
	return nil
}

func (f Calls) ListByLead(ctx context.Context, leadID int64) ([]models.TelecallLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.TelecallLog{}
	for i := len(f.Calls) - 1; i >= 0; i-- {
		if f.Calls[i].LeadID == leadID {
			out = append(out, f.Calls[i])
		}
	}
	return out, nil
}

func (f Calls) FollowUps(ctx context.Context, from, to time.Time) ([]models.FollowUp, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.FollowUp{}
	for _, l := range f.Leads {
		if l.FollowUpAt == nil || l.FollowUpAt.Before(from) || !l.FollowUpAt.Before(to) {
			continue
		}
		row := f.leadRow(l)
		out = append(out, models.FollowUp{LeadID: l.ID, AccountName: row.AccountName, FollowUpAt: *l.FollowUpAt})
	}
	slices.SortFunc(out, func(a, b models.FollowUp) int { return a.FollowUpAt.Compare(b.FollowUpAt) })
	return out, nil
}

type Meetings struct{ *DB }

func (f Meetings) Create(ctx context.Context, m *models.AccountMeeting) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m.ID = f.id()
	m.CreatedAt = f.Now
	f.Meetings = append(f.Meetings, *m)
	return nil
}

func (f Meetings) ListByAccount(ctx context.Context, accountID int64) ([]models.AccountMeeting, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.AccountMeeting{}
	for _, m := range f.Meetings {
		if m.AccountID == accountID {
			out = append(out, m)
		}
	}
	return out, nil
}

type Dashboard struct{ *DB }

func (f Dashboard) StageCounts(ctx context.Context) ([]models.StageCount, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.StageCount, 0, len(f.Stages))
	for _, s := range f.Stages {
		c := models.StageCount{StageID: s.ID, StageName: s.Name}
		for _, l := range f.Leads {
			if l.StageID == s.ID {
				c.Count++
			}
		}
		out = append(out, c)
	}
	return out, nil
}

func (f Dashboard) AccountsByStatus(ctx context.Context) (map[string]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := map[string]int{models.AccountStatusProspect: 0, models.AccountStatusActive: 0, models.AccountStatusDormant: 0}
	for _, a := range f.Accounts {
		out[a.Status]++
	}
	return out, nil
}

func (f Dashboard) UserStats(ctx context.Context, dayStart, weekStart, weekEnd time.Time) ([]models.UserStat, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []models.UserStat{}
	for _, u := range f.Users {
		if !u.IsActive {
			continue
		}
		stat := models.UserStat{UserID: u.ID, UserName: u.Name, Role: u.Role}
		for _, l := range f.Leads {
			for _, id := range []*int64{l.GeneratedBy, l.TelecallerID, l.BDID, l.DataEnrichmentID} {
				if id != nil && *id == u.ID {
					stat.LeadsOwned++
					break
				}
			}
		}
		for _, c := range f.Calls {
			if c.UserID != nil && *c.UserID == u.ID && !c.CalledAt.Before(dayStart) {
				stat.CallsToday++
			}
		}
		for _, m := range f.Meetings {
			if m.UserID != nil && *m.UserID == u.ID && !m.ScheduledAt.Before(weekStart) && m.ScheduledAt.Before(weekEnd) {
				stat.MeetingsThisWeek++
			}
		}
		out = append(out, stat)
	}
	slices.SortFunc(out, func(a, b models.UserStat) int {
		if c := strings.Compare(a.UserName, b.UserName); c != 0 {
			return c
		}
		return int(a.UserID - b.UserID)
	})
	return out, nil
}

