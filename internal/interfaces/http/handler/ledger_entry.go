package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/fitmanager/backend/internal/application/ledger"
	"github.com/fitmanager/backend/internal/domain/ledger"
	"github.com/fitmanager/backend/internal/interfaces/http/dto"
)

// LedgerEntryHandler handles ledger entry API endpoints
type LedgerEntryHandler struct {
	BaseHandler
	entryService *ledgerapp.LedgerEntryService
}

// NewLedgerEntryHandler creates a new LedgerEntryHandler
func NewLedgerEntryHandler(entryService *ledgerapp.LedgerEntryService) *LedgerEntryHandler {
	return &LedgerEntryHandler{entryService: entryService}
}

// LedgerEntryListRequest represents query parameters for ledger entry listing
type LedgerEntryListRequest struct {
	dto.ListRequest
	Direction string `form:"direction" binding:"omitempty,oneof=IN OUT"`
	Category  string `form:"category" binding:"omitempty"`
	Origin    string `form:"origin" binding:"omitempty,oneof=MANUAL SYSTEM"`
	ClientID  string `form:"client_id" binding:"omitempty,uuid"`
	From      string `form:"from" binding:"omitempty,datetime=2006-01-02"`
	To        string `form:"to" binding:"omitempty,datetime=2006-01-02"`
}

// MonthlySummaryRequest represents query parameters for the monthly summary
type MonthlySummaryRequest struct {
	Year  int `form:"year" binding:"required,min=2000,max=2200"`
	Month int `form:"month" binding:"required,min=1,max=12"`
}

// Create godoc
// @Summary      Create a manual ledger entry
// @Description  Records a free-form incoming or outgoing cash movement
// @Tags         ledger-entries
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.CreateManualEntryRequest true "Entry creation request"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/entries [post]
func (h *LedgerEntryHandler) Create(c *gin.Context) {
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

	var req ledgerapp.CreateManualEntryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	entry, err := h.entryService.CreateManualEntry(c.Request.Context(), tenantID, actor, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, entry)
}

// GetByID godoc
// @Summary      Get ledger entry by ID
// @Tags         ledger-entries
// @Produce      json
// @Param        id path string true "Entry ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/entries/{id} [get]
func (h *LedgerEntryHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID format")
		return
	}

	entry, err := h.entryService.GetEntry(c.Request.Context(), tenantID, entryID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, entry)
}

// List godoc
// @Summary      List ledger entries
// @Description  Returns entries filtered by direction, category, origin, client, and effective date window
// @Tags         ledger-entries
// @Produce      json
// @Param        direction query string false "Entry direction"
// @Param        category query string false "Entry category"
// @Param        origin query string false "Entry origin"
// @Param        client_id query string false "Client ID" format(uuid)
// @Param        from query string false "Effective date lower bound (inclusive)" format(date)
// @Param        to query string false "Effective date upper bound (exclusive)" format(date)
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/entries [get]
func (h *LedgerEntryHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	req := LedgerEntryListRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := ledger.LedgerEntryFilter{Filter: listRequestToFilter(req.ListRequest)}
	if req.Direction != "" {
		direction := ledger.Direction(req.Direction)
		filter.Direction = &direction
	}
	if req.Category != "" {
		category := ledger.EntryCategory(req.Category)
		filter.Category = &category
	}
	if req.Origin != "" {
		origin := ledger.EntryOrigin(req.Origin)
		filter.Origin = &origin
	}
	if req.ClientID != "" {
		clientID, _ := uuid.Parse(req.ClientID)
		filter.ClientID = &clientID
	}
	if req.From != "" {
		from, _ := time.Parse("2006-01-02", req.From)
		filter.From = &from
	}
	if req.To != "" {
		to, _ := time.Parse("2006-01-02", req.To)
		filter.To = &to
	}

	result, err := h.entryService.ListEntries(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// MonthlySummary godoc
// @Summary      Monthly cash flow summary
// @Description  Returns total income, total expenses, and net balance for a calendar month
// @Tags         ledger-entries
// @Produce      json
// @Param        year query int true "Year"
// @Param        month query int true "Month (1-12)"
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/entries/summary [get]
func (h *LedgerEntryHandler) MonthlySummary(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	var req MonthlySummaryRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	summary, err := h.entryService.MonthlySummary(c.Request.Context(), tenantID, req.Year, time.Month(req.Month))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, summary)
}

// Delete godoc
// @Summary      Delete a ledger entry
// @Description  Soft deletes a manual ledger entry; engine-written entries cannot be removed directly
// @Tags         ledger-entries
// @Produce      json
// @Param        id path string true "Entry ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/entries/{id} [delete]
func (h *LedgerEntryHandler) Delete(c *gin.Context) {
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

	entryID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid entry ID format")
		return
	}

	if err := h.entryService.DeleteEntry(c.Request.Context(), tenantID, actor, entryID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
