package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"workbooster/internal/repositories"
	"workbooster/internal/responses"
	"workbooster/internal/services"
)

type AccountHandler struct {
	accountService *services.AccountService
	meetingService *services.MeetingService
}

func NewAccountHandler(accountService *services.AccountService, meetingService *services.MeetingService) *AccountHandler {
	return &AccountHandler{accountService: accountService, meetingService: meetingService}
}

// ListAccounts handles GET /api/accounts
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	ownerID, ok := queryID(c, "owner_id")
	if !ok {
		return
	}
	accounts, err := h.accountService.List(c.Request.Context(), repositories.AccountFilter{
		Search:  trimmedQuery(c, "search"),
		OwnerID: ownerID,
		Status:  trimmedQuery(c, "status"),
	})
	if err != nil {
		responses.Error(c, err, "Failed to list accounts")
		return
	}
	responses.Success(c, http.StatusOK, accounts, "Accounts retrieved successfully")
}

// GetAccount handles GET /api/accounts/:id
func (h *AccountHandler) GetAccount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	account, err := h.accountService.Get(c.Request.Context(), id)
	if err != nil {
		responses.Error(c, err, "Failed to retrieve account")
		return
	}
	responses.Success(c, http.StatusOK, account, "Account retrieved successfully")
}

// CheckDuplicate handles GET /api/accounts/check-duplicate
func (h *AccountHandler) CheckDuplicate(c *gin.Context) {
	exclude, ok := queryID(c, "exclude_account_id")
	if !ok {
		return
	}
	flags, err := h.accountService.CheckDuplicate(c.Request.Context(), services.DuplicateQuery{
		AccountName:      c.Query("account_name"),
		CompanyWebsite:   c.Query("company_website"),
		ExcludeAccountID: exclude,
	})
	if err != nil {
		responses.Error(c, err, "Failed to check duplicates")
		return
	}
	responses.Success(c, http.StatusOK, flags, "Duplicate check completed")
}

// CreateAccount handles POST /api/accounts
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req services.AccountRequest
	if !bindJSON(c, &req) {
		return
	}
	account, err := h.accountService.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		responses.Error(c, err, "Failed to create account")
		return
	}
	responses.Success(c, http.StatusCreated, account, "Account created successfully")
}

// UpdateAccount handles PUT /api/accounts/:id
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.AccountRequest
	if !bindJSON(c, &req) {
		return
	}
	account, err := h.accountService.Update(c.Request.Context(), id, req)
	if err != nil {
		responses.Error(c, err, "Failed to update account")
		return
	}
	responses.Success(c, http.StatusOK, account, "Account updated successfully")
}

// DeleteAccount handles DELETE /api/accounts/:id
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.accountService.Delete(c.Request.Context(), id); err != nil {
		responses.Error(c, err, "Failed to delete account")
		return
	}
	responses.Success(c, http.StatusOK, nil, "Account deleted successfully")
}

// ListMeetings handles GET /api/accounts/:id/meetings
func (h *AccountHandler) ListMeetings(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	meetings, err := h.meetingService.List(c.Request.Context(), id)
	if err != nil {
		responses.Error(c, err, "Failed to list meetings")
		return
	}
	responses.Success(c, http.StatusOK, meetings, "Meetings retrieved successfully")
}

// CreateMeeting handles POST /api/accounts/:id/meetings
func (h *AccountHandler) CreateMeeting(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req services.MeetingRequest
	if !bindJSON(c, &req) {
		return
	}
	meeting, err := h.meetingService.Create(c.Request.Context(), actor(c), id, req)
	if err != nil {
		responses.Error(c, err, "Failed to create meeting")
		return
	}
	responses.Success(c, http.StatusCreated, meeting, "Meeting logged successfully")
}
