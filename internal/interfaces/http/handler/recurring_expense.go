package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/fitmanager/backend/internal/application/ledger"
	"github.com/fitmanager/backend/internal/domain/ledger"
	"github.com/fitmanager/backend/internal/interfaces/http/dto"
)

// RecurringExpenseHandler handles recurring expense API endpoints, including
// the sync operation that materializes ledger entries for a month.
type RecurringExpenseHandler struct {
	BaseHandler
	expenseService         *ledgerapp.RecurringExpenseService
	materializationService *ledgerapp.MaterializationService
}

// NewRecurringExpenseHandler creates a new RecurringExpenseHandler
func NewRecurringExpenseHandler(expenseService *ledgerapp.RecurringExpenseService, materializationService *ledgerapp.MaterializationService) *RecurringExpenseHandler {
	return &RecurringExpenseHandler{
		expenseService:         expenseService,
		materializationService: materializationService,
	}
}

// RecurringExpenseListRequest represents query parameters for recurring expense listing
type RecurringExpenseListRequest struct {
	dto.ListRequest
	Active *bool `form:"active"`
}

// SyncRequest represents the target month for a materialization run
type SyncRequest struct {
	Year  int `json:"year" binding:"required,min=2000,max=2200"`
	Month int `json:"month" binding:"required,min=1,max=12"`
}

// SyncResponse reports how many ledger entries a materialization run created
type SyncResponse struct {
	EntriesCreated int `json:"entries_created"`
}

// Create godoc
// @Summary      Create a recurring expense
// @Description  Registers a fixed-cost definition for automatic ledger materialization
// @Tags         recurring-expenses
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.CreateRecurringExpenseRequest true "Recurring expense creation request"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/recurring-expenses [post]
func (h *RecurringExpenseHandler) Create(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	actor, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	var req ledgerapp.CreateRecurringExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	expense, err := h.expenseService.CreateRecurringExpense(c.Request.Context(), tenantID, actor, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, expense)
}

// GetByID godoc
// @Summary      Get recurring expense by ID
// @Tags         recurring-expenses
// @Produce      json
// @Param        id path string true "Recurring expense ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/recurring-expenses/{id} [get]
func (h *RecurringExpenseHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid recurring expense ID format")
		return
	}

	expense, err := h.expenseService.GetRecurringExpense(c.Request.Context(), tenantID, expenseID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, expense)
}

// List godoc
// @Summary      List recurring expenses
// @Tags         recurring-expenses
// @Produce      json
// @Param        active query bool false "Filter by active flag"
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/recurring-expenses [get]
func (h *RecurringExpenseHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	req := RecurringExpenseListRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := ledger.RecurringExpenseFilter{
		Filter: listRequestToFilter(req.ListRequest),
		Active: req.Active,
	}

	result, err := h.expenseService.ListRecurringExpenses(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update godoc
// @Summary      Update a recurring expense
// @Description  Changes the name, amount, due day, or category of a definition
// @Tags         recurring-expenses
// @Accept       json
// @Produce      json
// @Param        id path string true "Recurring expense ID" format(uuid)
// @Param        request body ledgerapp.UpdateRecurringExpenseRequest true "Recurring expense update request"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/recurring-expenses/{id} [put]
func (h *RecurringExpenseHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	actor, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid recurring expense ID format")
		return
	}

	var req ledgerapp.UpdateRecurringExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	expense, err := h.expenseService.UpdateRecurringExpense(c.Request.Context(), tenantID, actor, expenseID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, expense)
}

// Activate godoc
// @Summary      Activate a recurring expense
// @Tags         recurring-expenses
// @Produce      json
// @Param        id path string true "Recurring expense ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/recurring-expenses/{id}/activate [post]
func (h *RecurringExpenseHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate godoc
// @Summary      Deactivate a recurring expense
// @Description  Stops future materialization; already-created ledger entries are untouched
// @Tags         recurring-expenses
// @Produce      json
// @Param        id path string true "Recurring expense ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/recurring-expenses/{id}/deactivate [post]
func (h *RecurringExpenseHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *RecurringExpenseHandler) setActive(c *gin.Context, active bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}
	actor, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	expenseID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid recurring expense ID format")
		return
	}

	var expense *ledgerapp.RecurringExpenseResponse
	if active {
		expense, err = h.expenseService.ActivateRecurringExpense(c.Request.Context(), tenantID, actor, expenseID)
	} else {
		expense, err = h.expenseService.DeactivateRecurringExpense(c.Request.Context(), tenantID, actor, expenseID)
	}
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, expense)
}

// Sync godoc
// @Summary      Materialize recurring expenses for a month
// @Description  Creates the missing ledger entries for every active definition due in the requested month; already-materialized periods are skipped
// @Tags         recurring-expenses
// @Accept       json
// @Produce      json
// @Param        request body SyncRequest true "Target month"
// @Success      200 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/recurring-expenses/sync [post]
func (h *RecurringExpenseHandler) Sync(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	var req SyncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	created, err := h.materializationService.Sync(c.Request.Context(), tenantID, req.Year, time.Month(req.Month))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, SyncResponse{EntriesCreated: created})
}
