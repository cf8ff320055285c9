package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	ledgerapp "github.com/fitmanager/backend/internal/application/ledger"
	"github.com/fitmanager/backend/internal/interfaces/http/dto"
)

// AuditHandler exposes the read-only audit trail
type AuditHandler struct {
	BaseHandler
	auditService *ledgerapp.AuditService
}

// NewAuditHandler creates a new AuditHandler
func NewAuditHandler(auditService *ledgerapp.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

// List godoc
// @Summary      List audit records
// @Description  Returns the tenant's audit trail, newest first
// @Tags         audit
// @Produce      json
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/audit [get]
func (h *AuditHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	req := dto.DefaultListRequest()
	if err := c.ShouldBindQuery(&req); err != nil {
		h.BadRequest(c, err.Error())
		return
	}

	records, err := h.auditService.List(c.Request.Context(), tenantID, listRequestToFilter(req))
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, records)
}

// ListForEntity godoc
// @Summary      List audit records for an entity
// @Description  Returns the change history of a single entity, newest first
// @Tags         audit
// @Produce      json
// @Param        entity_type path string true "Entity type"
// @Param        entity_id path string true "Entity ID" format(uuid)
// @Success      200 {object} dto.Response
// @Security     BearerAuth
// @Router       /ledger/audit/{entity_type}/{entity_id} [get]
func (h *AuditHandler) ListForEntity(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Invalid tenant")
		return
	}

	entityType := c.Param("entity_type")
	if entityType == "" {
		h.BadRequest(c, "Entity type is required")
		return
	}

	entityID, err := uuid.Parse(c.Param("entity_id"))
	if err != nil {
		h.BadRequest(c, "Invalid entity ID format")
		return
	}

	records, err := h.auditService.ListForEntity(c.Request.Context(), tenantID, entityType, entityID)
	if err != nil {
		h.HandleDomainError(c, err)
		return
	}

	h.Success(c, records)
}
