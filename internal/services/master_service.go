package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"workbooster/internal/apperrors"
	"workbooster/internal/logger"
	"workbooster/internal/models"
	"workbooster/internal/validation"
)

const (
	LookupCacheTTL     = 5 * time.Minute
	lookupCachePrefix  = "lookup:"
	lookupCachePattern = lookupCachePrefix + "*"
)

type MasterItemRequest struct {
	Name       string `json:"name" binding:"required,max=200"`
	IndustryID *int64 `json:"industry_id" binding:"omitempty,gt=0"`
}

// LookupFilter carries the optional query parameters of the lookup endpoints.
type LookupFilter struct {
	StageID    *int64
	IndustryID *int64
}

// MasterService serves the lookup endpoints and the admin master-table editor.
type MasterService struct {
	lookups LookupStore
	users   UserStore
	cache   Cache
	log     logger.Logger
}

// NewMasterService accepts a nil cache, in which case every lookup hits the database.
func NewMasterService(lookups LookupStore, users UserStore, cache Cache) *MasterService {
	return &MasterService{lookups: lookups, users: users, cache: cache, log: logger.Default()}
}

func (s *MasterService) table(name string) (models.MasterTable, error) {
	t, ok := models.MasterTableByName(name)
	if !ok {
		return models.MasterTable{}, apperrors.NotFound("unknown master table %q", name)
	}
	return t, nil
}

// Lookup returns the array behind GET /api/leads/{slug}.
func (s *MasterService) Lookup(ctx context.Context, slug string, f LookupFilter) (any, error) {
	switch slug {
	case "users":
		users, err := s.users.List(ctx)
		if err != nil {
			return nil, err
		}
		active := make([]models.User, 0, len(users))
		for _, u := range users {
			if u.IsActive {
				active = append(active, u)
			}
		}
		return active, nil

	case "stages":
		return cachedList(ctx, s, "stages", func() ([]models.Stage, error) {
			return s.lookups.Stages(ctx)
		})

	case "statuses":
		return cachedList(ctx, s, "statuses:"+idKey(f.StageID), func() ([]models.Status, error) {
			return s.lookups.Statuses(ctx, f.StageID)
		})
	}

	t, ok := models.MasterTableBySlug(slug)
	if !ok {
		return nil, apperrors.NotFound("unknown lookup %q", slug)
	}
	var industryID *int64
	if t.HasIndustry {
		industryID = f.IndustryID
	}
	return cachedList(ctx, s, t.Name+":"+idKey(industryID), func() ([]models.MasterItem, error) {
		return s.lookups.ListMaster(ctx, t, industryID)
	})
}

// cachedList serves key from the cache or from load. Cache failures are logged and skipped.
func cachedList[T any](ctx context.Context, s *MasterService, key string, load func() ([]T, error)) ([]T, error) {
	key = lookupCachePrefix + key
	if s.cache != nil {
		var items []T
		found, err := s.cache.GetJSON(ctx, key, &items)
		if err != nil {
			s.log.Warn("lookup cache read failed", "key", key, "error", err)
		} else if found {
			return items, nil
		}
	}

	items, err := load()
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, items, LookupCacheTTL); err != nil {
			s.log.Warn("lookup cache write failed", "key", key, "error", err)
		}
	}
	return items, nil
}

func idKey(id *int64) string {
	if id == nil {
		return "all"
	}
	return fmt.Sprint(*id)
}

func (s *MasterService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeletePattern(ctx, lookupCachePattern); err != nil {
		s.log.Warn("lookup cache invalidation failed", "error", err)
	}
}

func (s *MasterService) List(ctx context.Context, table string, industryID *int64) ([]models.MasterItem, error) {
	t, err := s.table(table)
	if err != nil {
		return nil, err
	}
	if !t.HasIndustry {
		industryID = nil
	}
	return s.lookups.ListMaster(ctx, t, industryID)
}

func (s *MasterService) Create(ctx context.Context, table string, req MasterItemRequest) (*models.MasterItem, error) {
	t, item, err := s.prepare(table, req)
	if err != nil {
		return nil, err
	}
	if err := s.lookups.CreateMaster(ctx, t, item); err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	return item, nil
}

func (s *MasterService) Update(ctx context.Context, table string, id int64, req MasterItemRequest) (*models.MasterItem, error) {
	t, item, err := s.prepare(table, req)
	if err != nil {
		return nil, err
	}
	item.ID = id
	found, err := s.lookups.UpdateMaster(ctx, t, item)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, apperrors.NotFound("%s %d not found", t.Name, id)
	}
	s.invalidate(ctx)
	return item, nil
}

func (s *MasterService) Delete(ctx context.Context, table string, id int64) error {
	t, err := s.table(table)
	if err != nil {
		return err
	}
	found, err := s.lookups.DeleteMaster(ctx, t, id)
	if err != nil {
		return err
	}
	if !found {
		return apperrors.NotFound("%s %d not found", t.Name, id)
	}
	s.invalidate(ctx)
	return nil
}

func (s *MasterService) prepare(table string, req MasterItemRequest) (models.MasterTable, *models.MasterItem, error) {
	t, err := s.table(table)
	if err != nil {
		return t, nil, err
	}
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		return t, nil, err
	}
	item := &models.MasterItem{Name: req.Name}
	if t.HasIndustry {
		if req.IndustryID == nil {
			return t, nil, apperrors.Validation("industry_id is required")
		}
		item.IndustryID = req.IndustryID
	}
	return t, item, nil
}

// resolveMaster finds a master row by name for the import. Blank names resolve to nil.
func resolveMaster(ctx context.Context, lookups LookupStore, table, name string) (*int64, error) {
	if strings.TrimSpace(name) == "" {
		return nil, nil
	}
	t, ok := models.MasterTableByName(table)
	if !ok {
		return nil, fmt.Errorf("unknown master table %q", table)
	}
	item, err := lookups.FindMasterByName(ctx, t, name)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, apperrors.Validation("unknown %s %q", strings.TrimSuffix(t.Slug, "-master"), name)
	}
	return &item.ID, nil
}
