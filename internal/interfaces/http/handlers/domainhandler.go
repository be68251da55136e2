package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"nomadly/internal/application/registration/usecases"
	"nomadly/internal/shared/logger"
	"nomadly/internal/shared/utils"
)

// DomainHandler exposes management operations on registered domains.
type DomainHandler struct {
	updateNameserversUC *usecases.UpdateNameserversUseCase
	logger              logger.Interface
}

func NewDomainHandler(updateNameserversUC *usecases.UpdateNameserversUseCase, log logger.Interface) *DomainHandler {
	return &DomainHandler{
		updateNameserversUC: updateNameserversUC,
		logger:              log,
	}
}

type UpdateNameserversRequest struct {
	OwnerID     int64    `json:"owner_id" binding:"required"`
	Nameservers []string `json:"nameservers" binding:"required,min=2,max=4"`
}

type DomainResponse struct {
	DomainID       uint     `json:"domain_id"`
	DomainName     string   `json:"domain_name"`
	NameserverMode string   `json:"nameserver_mode"`
	Nameservers    []string `json:"nameservers"`
	Status         string   `json:"status"`
}

// UpdateNameservers switches a domain to the caller-supplied nameserver set.
func (h *DomainHandler) UpdateNameservers(c *gin.Context) {
	domainID, err := strconv.ParseUint(c.Param("domain_id"), 10, 32)
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "invalid domain id")
		return
	}

	var req UpdateNameserversRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, bindingErrorMessage(err))
		return
	}

	dom, err := h.updateNameserversUC.Execute(c.Request.Context(), usecases.UpdateNameserversCommand{
		OwnerID:     req.OwnerID,
		DomainID:    uint(domainID),
		Nameservers: req.Nameservers,
	})
	if err != nil {
		utils.AppErrorResponse(c, err)
		return
	}

	h.logger.Infow("nameservers updated", "domain_id", dom.ID(), "owner_id", dom.OwnerID())
	utils.SuccessResponse(c, http.StatusOK, "nameservers updated", DomainResponse{
		DomainID:       dom.ID(),
		DomainName:     dom.DomainName(),
		NameserverMode: dom.NameserverMode().String(),
		Nameservers:    dom.Nameservers().Hosts(),
		Status:         dom.Status().String(),
	})
}
