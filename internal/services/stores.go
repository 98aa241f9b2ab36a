package services

import (
	"context"
	"time"

	"workbooster/internal/models"
	"workbooster/internal/repositories"
)

// The interfaces below are implemented by the repositories package and, in memory, by
// internal/memstore.

type UserStore interface {
	Create(ctx context.Context, user *models.User) error
	UpsertByEmail(ctx context.Context, user *models.User) error
	FindByID(ctx context.Context, id int64) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	List(ctx context.Context) ([]models.User, error)
	Update(ctx context.Context, user *models.User) (bool, error)
	TouchLastLogin(ctx context.Context, id int64) error
	ExistingIDs(ctx context.Context, ids []int64) (map[int64]bool, error)
}

type TokenBlacklist interface {
	Blacklist(ctx context.Context, jti string, ttl time.Duration) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
}

type Cache interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
	DeletePattern(ctx context.Context, pattern string) error
}

type LookupStore interface {
	Stages(ctx context.Context) ([]models.Stage, error)
	StageByID(ctx context.Context, id int64) (*models.Stage, error)
	StageByName(ctx context.Context, name string) (*models.Stage, error)
	Statuses(ctx context.Context, stageID *int64) ([]models.Status, error)
	StatusByID(ctx context.Context, id int64) (*models.Status, error)
	StatusByName(ctx context.Context, stageID int64, name string) (*models.Status, error)
	FirstStatus(ctx context.Context, stageID int64) (*models.Status, error)

	ListMaster(ctx context.Context, t models.MasterTable, industryID *int64) ([]models.MasterItem, error)
	FindMaster(ctx context.Context, t models.MasterTable, id int64) (*models.MasterItem, error)
	FindMasterByName(ctx context.Context, t models.MasterTable, name string) (*models.MasterItem, error)
	CreateMaster(ctx context.Context, t models.MasterTable, item *models.MasterItem) error
	UpdateMaster(ctx context.Context, t models.MasterTable, item *models.MasterItem) (bool, error)
	DeleteMaster(ctx context.Context, t models.MasterTable, id int64) (bool, error)
}

type AccountStore interface {
	List(ctx context.Context, f repositories.AccountFilter) ([]models.Account, error)
	FindByID(ctx context.Context, id int64) (*models.Account, error)
	FindByName(ctx context.Context, name string) (*models.Account, error)
	Create(ctx context.Context, a *models.Account) error
	Update(ctx context.Context, a *models.Account) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	CountLeads(ctx context.Context, accountID int64) (int, error)
	FindDuplicates(ctx context.Context, name, website string, excludeID *int64) (models.DuplicateFlags, error)
	ListIDs(ctx context.Context) ([]int64, error)
	UpdateScore(ctx context.Context, id int64, score int) error
}

type LeadStore interface {
	List(ctx context.Context, f repositories.LeadFilter) ([]models.LeadRow, error)
	FindByID(ctx context.Context, id int64) (*models.LeadRow, error)
	Create(ctx context.Context, l *models.Lead) error
	Update(ctx context.Context, l *models.Lead) (bool, error)
	UpdateStage(ctx context.Context, id, stageID, statusID int64) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
}

type TelecallStore interface {
	Create(ctx context.Context, log *models.TelecallLog) error
	ListByLead(ctx context.Context, leadID int64) ([]models.TelecallLog, error)
	FollowUps(ctx context.Context, from, to time.Time) ([]models.FollowUp, error)
}

type MeetingStore interface {
	Create(ctx context.Context, m *models.AccountMeeting) error
	ListByAccount(ctx context.Context, accountID int64) ([]models.AccountMeeting, error)
}

type DashboardStore interface {
	StageCounts(ctx context.Context) ([]models.StageCount, error)
	AccountsByStatus(ctx context.Context) (map[string]int, error)
	UserStats(ctx context.Context, dayStart, weekStart, weekEnd time.Time) ([]models.UserStat, error)
}
