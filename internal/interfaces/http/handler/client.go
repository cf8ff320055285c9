package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	crmapp "github.com/fitmanager/backend/internal/application/crm"
	"github.com/fitmanager/backend/internal/domain/crm"
	"github.com/fitmanager/backend/internal/interfaces/http/dto"
)

// ClientHandler handles client-related API endpoints
type ClientHandler struct {
	BaseHandler
	clientService *crmapp.ClientService
}

// NewClientHandler creates a new ClientHandler
func NewClientHandler(clientService *crmapp.ClientService) *ClientHandler {
	return &ClientHandler{
		clientService: clientService,
	}
}

// ClientListRequest represents query parameters for listing clients
type ClientListRequest struct {
	dto.ListRequest
	Active *bool `form:"active"`
}

// Create godoc
// @Summary      Create a new client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        request body crmapp.CreateClientRequest true "Client creation request"
// @Success      201 {object} dto.Response
// @Failure      400 {object} dto.Response
// @Security     BearerAuth
// @Router       /crm/clients [post]
func (h *ClientHandler) Create(c *gin.Context) {
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

	var req crmapp.CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	client, err := h.clientService.CreateClient(c.Request.Context(), tenantID, actor, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Created(c, client)
}

// GetByID godoc
// @Summary      Get client by ID
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /crm/clients/{id} [get]
func (h *ClientHandler) GetByID(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	client, err := h.clientService.GetClient(c.Request.Context(), tenantID, clientID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, client)
}

// List godoc
// @Summary      List clients
// @Tags         clients
// @Produce      json
// @Param        page query int false "Page number"
// @Param        page_size query int false "Page size"
// @Param        search query string false "Search in name, email, phone"
// @Param        active query bool false "Filter by active flag"
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /crm/clients [get]
func (h *ClientHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	req := ClientListRequest{ListRequest: dto.DefaultListRequest()}
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	filter := crm.ClientFilter{
		Filter: listRequestToFilter(req.ListRequest),
		Active: req.Active,
	}

	result, err := h.clientService.ListClients(c.Request.Context(), tenantID, filter)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update godoc
// @Summary      Update a client
// @Tags         clients
// @Accept       json
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Param        request body crmapp.UpdateClientRequest true "Client update request"
// @Success      200 {object} dto.Response
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /crm/clients/{id} [put]
func (h *ClientHandler) Update(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	actor, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	var req crmapp.UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	client, err := h.clientService.UpdateClient(c.Request.Context(), tenantID, actor, clientID, req)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, client)
}

// Activate godoc
// @Summary      Activate a client
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /crm/clients/{id}/activate [post]
func (h *ClientHandler) Activate(c *gin.Context) {
	h.setActive(c, true)
}

// Deactivate godoc
// @Summary      Deactivate a client
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /crm/clients/{id}/deactivate [post]
func (h *ClientHandler) Deactivate(c *gin.Context) {
	h.setActive(c, false)
}

func (h *ClientHandler) setActive(c *gin.Context, active bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	actor, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid user")
		return
	}

	var client *crmapp.ClientResponse
	if active {
		client, err = h.clientService.ActivateClient(c.Request.Context(), tenantID, actor, clientID)
	} else {
		client, err = h.clientService.DeactivateClient(c.Request.Context(), tenantID, actor, clientID)
	}
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, client)
}

// Delete godoc
// @Summary      Delete a client
// @Tags         clients
// @Produce      json
// @Param        id path string true "Client ID" format(uuid)
// @Success      204
// @Failure      404 {object} dto.Response
// @Security     BearerAuth
// @Router       /crm/clients/{id} [delete]
func (h *ClientHandler) Delete(c *gin.Context) {
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

	clientID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid client ID format")
		return
	}

	if err := h.clientService.DeleteClient(c.Request.Context(), tenantID, actor, clientID); err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.NoContent(c)
}
