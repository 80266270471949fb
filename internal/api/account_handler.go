package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"ixiclinic-admin-go/internal/core"
	"ixiclinic-admin-go/internal/middleware"
	"ixiclinic-admin-go/internal/models"
	"ixiclinic-admin-go/internal/tableutil"
)

// AccountHandler handles the account CRUD endpoints.
type AccountHandler struct {
	accountService core.AccountService
	logger         *zap.Logger
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(as core.AccountService, logger *zap.Logger) *AccountHandler {
	return &AccountHandler{accountService: as, logger: logger}
}

// mapAccountErrorToStatus maps errors from core.AccountService to HTTP status
// codes and ErrorResponse bodies.
func (h *AccountHandler) mapAccountErrorToStatus(c *gin.Context, err error) {
	var statusCode int
	var errResponse ErrorResponse

	switch {
	case errors.Is(err, core.ErrAccountNotFound):
		statusCode = http.StatusNotFound
		errResponse = ErrorResponse{Error: core.ErrAccountNotFound.Error()}
	case errors.Is(err, core.ErrDeletionNotAcknowledged):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: core.ErrDeletionNotAcknowledged.Error()}
	case errors.Is(err, core.ErrUnknownPlan):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Unknown plan", Details: err.Error()}
	case errors.Is(err, core.ErrOwnerUserNotFound):
		statusCode = http.StatusBadRequest
		errResponse = ErrorResponse{Error: "Owner user not found", Details: err.Error()}
	case errors.Is(err, core.ErrNoOwnerLinked):
		statusCode = http.StatusConflict
		errResponse = ErrorResponse{Error: core.ErrNoOwnerLinked.Error()}
	default:
		h.logger.Error("account handler internal error", zap.Error(err))
		statusCode = http.StatusInternalServerError
		errResponse = ErrorResponse{Error: "An unexpected internal server error occurred."}
	}
	c.JSON(statusCode, errResponse)
}

// accountSortFields maps sortable column names of the accounts table to
// extractors. Missing dates surface as nil so they sort last.
var accountSortFields = map[string]tableutil.FieldFunc[*models.Account]{
	"email":     func(a *models.Account) any { return a.Email },
	"name":      func(a *models.Account) any { return a.Name },
	"type":      func(a *models.Account) any { return string(a.Type) },
	"status":    func(a *models.Account) any { return string(a.BillingInfo.SubscriptionStatus) },
	"planName":  func(a *models.Account) any { return a.BillingInfo.PlanName },
	"createdAt": func(a *models.Account) any { return a.CreatedAt },
	"trialEndDate": func(a *models.Account) any {
		if a.BillingInfo.TrialEndDate == nil {
			return nil
		}
		return *a.BillingInfo.TrialEndDate
	},
	"nextPaymentDate": func(a *models.Account) any {
		if a.BillingInfo.NextPaymentDate == nil {
			return nil
		}
		return *a.BillingInfo.NextPaymentDate
	},
}

// ListAccounts handles GET /accounts with optional status filtering, sorting
// and pagination (?status=&sortBy=&sortDir=&page=&pageSize=).
func (h *AccountHandler) ListAccounts(c *gin.Context) {
	var (
		accounts []*models.Account
		err      error
	)
	if status := c.Query("status"); status != "" {
		accounts, err = h.accountService.ListAccountsByStatus(c.Request.Context(), models.SubscriptionStatus(status))
	} else {
		accounts, err = h.accountService.ListAccounts(c.Request.Context())
	}
	if err != nil {
		h.mapAccountErrorToStatus(c, err)
		return
	}

	sortBy := c.Query("sortBy")
	sortDir := tableutil.Direction(c.DefaultQuery("sortDir", string(tableutil.Ascending)))
	if field, ok := accountSortFields[sortBy]; ok {
		accounts = tableutil.SortBy(accounts, field, sortDir)
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	pageSize, _ := strconv.Atoi(c.DefaultQuery("pageSize", strconv.Itoa(tableutil.DefaultPageSize)))
	pager := tableutil.NewPager(accounts, pageSize)
	pager.SetPage(page)

	resp := PagedResponse{
		Items:      pager.Page(),
		Page:       pager.CurrentPage(),
		PageSize:   pager.PageSize(),
		TotalItems: pager.TotalItems(),
		TotalPages: pager.TotalPages(),
		SortDir:    string(sortDir),
	}
	if _, ok := accountSortFields[sortBy]; ok {
		resp.SortBy = sortBy
	}
	c.JSON(http.StatusOK, resp)
}

// CreateAccount handles POST /accounts.
func (h *AccountHandler) CreateAccount(c *gin.Context) {
	var req models.CreateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	account, err := h.accountService.CreateAccount(c.Request.Context(), c.GetString(middleware.ContextAdminID), req)
	if err != nil {
		h.mapAccountErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusCreated, account)
}

// GetAccount handles GET /accounts/:accountId.
func (h *AccountHandler) GetAccount(c *gin.Context) {
	account, err := h.accountService.GetAccount(c.Request.Context(), c.Param("accountId"))
	if err != nil {
		h.mapAccountErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// UpdateAccount handles PUT /accounts/:accountId.
func (h *AccountHandler) UpdateAccount(c *gin.Context) {
	var req models.UpdateAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	account, err := h.accountService.UpdateAccount(c.Request.Context(), c.GetString(middleware.ContextAdminID), c.Param("accountId"), req)
	if err != nil {
		h.mapAccountErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, account)
}

// DeleteAccount handles DELETE /accounts/:accountId. The request body must
// acknowledge the deletion by echoing the account ID.
func (h *AccountHandler) DeleteAccount(c *gin.Context) {
	var req models.DeleteAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid request payload", Details: err.Error()})
		return
	}

	result, err := h.accountService.DeleteAccountCompletely(
		c.Request.Context(),
		c.GetString(middleware.ContextAdminID),
		c.Param("accountId"),
		req.Acknowledge,
	)
	if err != nil {
		h.mapAccountErrorToStatus(c, err)
		return
	}
	c.JSON(http.StatusOK, SuccessResponse{Message: "Account and all related data deleted", Data: result})
}
