package services

import (
	"context"
	"fmt"
	"strings"

	"workbooster/internal/apperrors"
	"workbooster/internal/models"
	"workbooster/internal/repositories"
	"workbooster/internal/utils"
	"workbooster/internal/validation"
)

type ContactInput struct {
	Name        string  `json:"name" binding:"required"`
	Designation *string `json:"designation"`
	Phone       *string `json:"phone"`
	Email       *string `json:"email" binding:"omitempty,email"`
	IsPrimary   bool    `json:"is_primary"`
}

type DepartmentInput struct {
	DepartmentID int64    `json:"department_id" binding:"required,gt=0"`
	PainPoints   []string `json:"pain_points"`
}

// AccountRequest is the body of POST and PUT /api/accounts. Child collections are
// replaced wholesale on update.
type AccountRequest struct {
	AccountName    string            `json:"account_name" binding:"required"`
	IndustryID     *int64            `json:"industry_id" binding:"omitempty,gt=0"`
	HeadOffice     *string           `json:"head_office"`
	CityID         *int64            `json:"city_id" binding:"omitempty,gt=0"`
	CountryID      *int64            `json:"country_id" binding:"omitempty,gt=0"`
	CompanyWebsite *string           `json:"company_website"`
	Phone          *string           `json:"phone"`
	Email          *string           `json:"email" binding:"omitempty,email"`
	Status         string            `json:"status" binding:"omitempty,oneof=Prospect Active Dormant"`
	OwnerID        *int64            `json:"owner_id" binding:"omitempty,gt=0"`
	Contacts       []ContactInput    `json:"contacts" binding:"omitempty,dive"`
	LOBIDs         []int64           `json:"lob_ids" binding:"omitempty,dive,gt=0"`
	Departments    []DepartmentInput `json:"departments" binding:"omitempty,dive"`
	UseCaseIDs     []int64           `json:"use_case_ids" binding:"omitempty,dive,gt=0"`
}

type DuplicateQuery struct {
	AccountName      string
	CompanyWebsite   string
	ExcludeAccountID *int64
}

type AccountService struct {
	accounts      AccountStore
	users         UserStore
	defaultRegion string
}

func NewAccountService(accounts AccountStore, users UserStore, defaultRegion string) *AccountService {
	return &AccountService{accounts: accounts, users: users, defaultRegion: defaultRegion}
}

func (s *AccountService) List(ctx context.Context, f repositories.AccountFilter) ([]models.Account, error) {
	if f.Status != "" && !models.ValidAccountStatus(f.Status) {
		return nil, apperrors.Validation("status must be one of: Prospect, Active, Dormant")
	}
	f.Search = strings.TrimSpace(f.Search)
	return s.accounts.List(ctx, f)
}

func (s *AccountService) Get(ctx context.Context, id int64) (*models.Account, error) {
	account, err := s.accounts.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if account == nil {
		return nil, apperrors.NotFound("account %d not found", id)
	}
	return account, nil
}

func (s *AccountService) CheckDuplicate(ctx context.Context, q DuplicateQuery) (models.DuplicateFlags, error) {
	return s.accounts.FindDuplicates(ctx,
		strings.TrimSpace(q.AccountName),
		models.NormalizeWebsite(q.CompanyWebsite),
		q.ExcludeAccountID,
	)
}

func (s *AccountService) Create(ctx context.Context, actor *models.Session, req AccountRequest) (*models.Account, error) {
	account, err := s.build(ctx, req, nil)
	if err != nil {
		return nil, err
	}
	if account.OwnerID == nil && actor != nil {
		account.OwnerID = &actor.UserID
	}
	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, fmt.Errorf("create account: %w", err)
	}
	return s.Get(ctx, account.ID)
}

func (s *AccountService) Update(ctx context.Context, id int64, req AccountRequest) (*models.Account, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	account, err := s.build(ctx, req, &id)
	if err != nil {
		return nil, err
	}
	account.ID = id

	found, err := s.accounts.Update(ctx, account)
	if err != nil {
		return nil, fmt.Errorf("update account: %w", err)
	}
	if !found {
		return nil, apperrors.NotFound("account %d not found", id)
	}
	return s.Get(ctx, id)
}

// Delete refuses while leads still reference the account.
func (s *AccountService) Delete(ctx context.Context, id int64) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	n, err := s.accounts.CountLeads(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return apperrors.Conflict("account has %d lead(s); delete or move them first", n)
	}
	found, err := s.accounts.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !found {
		return apperrors.NotFound("account %d not found", id)
	}
	return nil
}

// build validates the request and turns it into an account ready to persist.
// excludeID skips the account itself in the duplicate check.
func (s *AccountService) build(ctx context.Context, req AccountRequest, excludeID *int64) (*models.Account, error) {
	req.AccountName = strings.TrimSpace(req.AccountName)
	req.Email = blankToNil(req.Email)
	for i := range req.Contacts {
		req.Contacts[i].Email = blankToNil(req.Contacts[i].Email)
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	website := ""
	if req.CompanyWebsite != nil {
		website = models.NormalizeWebsite(*req.CompanyWebsite)
	}
	flags, err := s.accounts.FindDuplicates(ctx, req.AccountName, website, excludeID)
	if err != nil {
		return nil, fmt.Errorf("check duplicates: %w", err)
	}
	if flags.AccountNameExists {
		return nil, apperrors.Validation("an account named %q already exists", req.AccountName)
	}
	if flags.CompanyWebsiteExists {
		return nil, apperrors.Validation("an account with website %q already exists", *req.CompanyWebsite)
	}

	if err := validateAssignees(ctx, s.users, map[string]*int64{"owner_id": req.OwnerID}); err != nil {
		return nil, err
	}

	phone, err := s.phone("phone", req.Phone)
	if err != nil {
		return nil, err
	}

	account := &models.Account{
		AccountName:    req.AccountName,
		IndustryID:     req.IndustryID,
		HeadOffice:     blankToNil(req.HeadOffice),
		CityID:         req.CityID,
		CountryID:      req.CountryID,
		CompanyWebsite: blankToNil(req.CompanyWebsite),
		Phone:          phone,
		Email:          req.Email,
		Status:         req.Status,
		OwnerID:        req.OwnerID,
		Contacts:       []models.Contact{},
		LOBs:           []models.AccountLOB{},
		Departments:    []models.AccountDepartment{},
		UseCases:       []models.AccountUseCase{},
	}

	for i, c := range req.Contacts {
		phone, err := s.phone(fmt.Sprintf("contacts[%d].phone", i), c.Phone)
		if err != nil {
			return nil, err
		}
		account.Contacts = append(account.Contacts, models.Contact{
			Name:        strings.TrimSpace(c.Name),
			Designation: blankToNil(c.Designation),
			Phone:       phone,
			Email:       c.Email,
			IsPrimary:   c.IsPrimary,
		})
	}
	for _, id := range uniqueIDs(req.LOBIDs) {
		account.LOBs = append(account.LOBs, models.AccountLOB{LOBID: id})
	}
	seenDept := map[int64]bool{}
	for _, d := range req.Departments {
		if seenDept[d.DepartmentID] {
			return nil, apperrors.Validation("department %d is listed twice", d.DepartmentID)
		}
		seenDept[d.DepartmentID] = true
		dept := models.AccountDepartment{DepartmentID: d.DepartmentID, PainPoints: []models.PainPoint{}}
		for _, p := range d.PainPoints {
			if p = strings.TrimSpace(p); p != "" {
				dept.PainPoints = append(dept.PainPoints, models.PainPoint{Description: p})
			}
		}
		account.Departments = append(account.Departments, dept)
	}
	for _, id := range uniqueIDs(req.UseCaseIDs) {
		account.UseCases = append(account.UseCases, models.AccountUseCase{UseCaseID: id})
	}

	account.Prepare()
	return account, nil
}

func (s *AccountService) phone(field string, raw *string) (*string, error) {
	if raw == nil {
		return nil, nil
	}
	normalized, err := utils.NormalizePhone(*raw, s.defaultRegion)
	if err != nil {
		return nil, apperrors.Validation("%s: %v", field, err)
	}
	if normalized == "" {
		return nil, nil
	}
	return &normalized, nil
}

func blankToNil(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}

func uniqueIDs(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
