package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/fitmanager/backend/internal/application/ledger"
	"github.com/fitmanager/backend/internal/domain/ledger"
	"github.com/fitmanager/backend/internal/interfaces/http/dto"
)

// ContractHandler handles contract-related API endpoints
type ContractHandler struct {
	BaseHandler
	contractService *ledgerapp.ContractService
}

// NewContractHandler creates a new ContractHandler
func NewContractHandler(contractService *ledgerapp.ContractService) *ContractHandler {
	return &ContractHandler{
		contractService: contractService,
	}
}

// ContractListRequest represents query parameters for listing contracts
type ContractListRequest struct {
	dto.ListRequest
	ClientID      string `form:"client_id" binding:"omitempty,uuid"`
	PaymentStatus string `form:"payment_status" binding:"omitempty,oneof=PENDING PARTIAL PAID"`
	Closed        *bool  `form:"closed"`
}

// Create godoc
// @Summary      Create a contract
// @Description  Sells a contract to a client, optionally generating an installment plan over the residual
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        request body ledgerapp.CreateContractRequest true "Contract creation request"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/contracts [post]
func (h *ContractHandler) Create(c *gin.Context) {
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

	var req ledgerapp.CreateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	detail, err := h.contractService.CreateContract(c.Request.Context(), tenantID, actor, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, detail)
}

// GetByID godoc
// @Summary      Get contract by ID
// @Description  Returns the contract together with its installment plan
// @Tags         contracts
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/contracts/{id} [get]
func (h *ContractHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	detail, err := h.contractService.GetContract(c.Request.Context(), tenantID, contractID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, detail)
}

// List godoc
// @Summary      List contracts
// @Tags         contracts
// @Produce      json
// @Param        client_id query string false "Filter by client"
// @Param        payment_status query string false "Filter by payment status"
// @Param        closed query bool false "Filter by closed flag"
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/contracts [get]
func (h *ContractHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	req := ContractListRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := ledger.ContractFilter{
		Filter: listRequestToFilter(req.ListRequest),
		Closed: req.Closed,
	}
	if req.ClientID != "" {
		clientID, err := uuid.Parse(req.ClientID)
		if err != nil {
			h.BadRequest(c, "Invalid client ID format")
			return
		}
		filter.ClientID = &clientID
	}
	if req.PaymentStatus != "" {
		status := ledger.PaymentStatus(req.PaymentStatus)
		filter.PaymentStatus = &status
	}

	result, err := h.contractService.ListContracts(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update godoc
// @Summary      Update a contract
// @Description  Updates title, end date, and notes. Monetary fields are immutable.
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Param        request body ledgerapp.UpdateContractRequest true "Contract update request"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/contracts/{id} [put]
func (h *ContractHandler) Update(c *gin.Context) {
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

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	var req ledgerapp.UpdateContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	contract, err := h.contractService.UpdateContract(c.Request.Context(), tenantID, actor, contractID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, contract)
}

// Delete godoc
// @Summary      Delete a contract
// @Description  Soft deletes a contract. Only allowed while nothing has been collected on it.
// @Tags         contracts
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/contracts/{id} [delete]
func (h *ContractHandler) Delete(c *gin.Context) {
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

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	if err := h.contractService.DeleteContract(c.Request.Context(), tenantID, actor, contractID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}

// Close godoc
// @Summary      Close a contract
// @Tags         contracts
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/contracts/{id}/close [post]
func (h *ContractHandler) Close(c *gin.Context) {
	h.transition(c, h.contractService.CloseContract)
}

// Reopen godoc
// @Summary      Reopen a closed contract
// @Tags         contracts
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/contracts/{id}/reopen [post]
func (h *ContractHandler) Reopen(c *gin.Context) {
	h.transition(c, h.contractService.ReopenContract)
}

func (h *ContractHandler) transition(
	c *gin.Context,
	fn func(ctx context.Context, tenantID, actor, contractID uuid.UUID) (*ledgerapp.ContractResponse, error),
) {
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

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	contract, err := fn(c.Request.Context(), tenantID, actor, contractID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, contract)
}

// AddInstallment godoc
// @Summary      Add an installment to a contract
// @Tags         contracts
// @Accept       json
// @Produce      json
// @Param        id path string true "Contract ID" format(uuid)
// @Param        request body ledgerapp.AddInstallmentRequest true "Installment request"
// @Success      201 {object} dto.Response
// @Failure      422 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/contracts/{id}/installments [post]
func (h *ContractHandler) AddInstallment(c *gin.Context) {
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

	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid contract ID format")
		return
	}

	var req ledgerapp.AddInstallmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	installment, err := h.contractService.AddInstallment(c.Request.Context(), tenantID, actor, contractID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, installment)
}
