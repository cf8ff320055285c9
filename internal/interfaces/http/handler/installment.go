package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/fitmanager/backend/internal/application/ledger"
	"github.com/fitmanager/backend/internal/domain/ledger"
	"github.com/fitmanager/backend/internal/interfaces/http/dto"
)

// InstallmentHandler handles installment-related API endpoints, including
// the pay and unpay operations of the payment engine.
type InstallmentHandler struct {
	BaseHandler
	contractService *ledgerapp.ContractService
	paymentService  *ledgerapp.PaymentService
}

// NewInstallmentHandler creates a new InstallmentHandler
func NewInstallmentHandler(contractService *ledgerapp.ContractService, paymentService *ledgerapp.PaymentService) *InstallmentHandler {
	return &InstallmentHandler{
		contractService: contractService,
		paymentService:  paymentService,
	}
}

// InstallmentListRequest represents query parameters for the due-installments view
type InstallmentListRequest struct {
	dto.ListRequest
	Status  string `form:"status" binding:"omitempty,oneof=PENDING PARTIAL PAID"`
	DueFrom string `form:"due_from" binding:"omitempty,datetime=2006-01-02"`
	DueTo   string `form:"due_to" binding:"omitempty,datetime=2006-01-02"`
}

// ListDue godoc
// @Summary      List due installments
// @Description  Returns the tenant's installments filtered by status and due window, ordered by due date
// @Tags         installments
// @Produce      json
// @Param        status query string false "Installment status"
// @Param        due_from query string false "Due date lower bound (inclusive)" format(date)
// @Param        due_to query string false "Due date upper bound (exclusive)" format(date)
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/installments/due [get]
func (h *InstallmentHandler) ListDue(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	req := InstallmentListRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := ledger.InstallmentFilter{Filter: listRequestToFilter(req.ListRequest)}
	if req.Status != "" {
		status := ledger.InstallmentStatus(req.Status)
		filter.Status = &status
	}
	if req.DueFrom != "" {
		from, _ := time.Parse("2006-01-02", req.DueFrom)
		filter.DueFrom = &from
	}
	if req.DueTo != "" {
		to, _ := time.Parse("2006-01-02", req.DueTo)
		filter.DueTo = &to
	}

	installments, err := h.contractService.ListDueInstallments(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, installments)
}

// Pay godoc
// @Summary      Pay an installment
// @Description  Records a full or partial payment and writes the matching incoming ledger entry atomically
// @Tags         installments
// @Accept       json
// @Produce      json
// @Param        id path string true "Installment ID" format(uuid)
// @Param        request body ledgerapp.PayRequest true "Payment request"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/installments/{id}/pay [post]
func (h *InstallmentHandler) Pay(c *gin.Context) {
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

	installmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid installment ID format")
		return
	}

	var req ledgerapp.PayRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	installment, err := h.paymentService.Pay(c.Request.Context(), tenantID, actor, installmentID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, installment)
}

// Unpay godoc
// @Summary      Undo all payments on an installment
// @Description  Reverts the installment to pending and soft deletes its payment ledger entries
// @Tags         installments
// @Produce      json
// @Param        id path string true "Installment ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/installments/{id}/unpay [post]
func (h *InstallmentHandler) Unpay(c *gin.Context) {
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

	installmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid installment ID format")
		return
	}

	installment, err := h.paymentService.Unpay(c.Request.Context(), tenantID, actor, installmentID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, installment)
}

// Delete godoc
// @Summary      Delete an installment
// @Description  Soft deletes an unpaid installment from the plan
// @Tags         installments
// @Produce      json
// @Param        id path string true "Installment ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/installments/{id} [delete]
func (h *InstallmentHandler) Delete(c *gin.Context) {
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

	installmentID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid installment ID format")
		return
	}

	if err := h.contractService.DeleteInstallment(c.Request.Context(), tenantID, actor, installmentID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
