package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"parcel-relay/internal/usecase/contract"
	"parcel-relay/pkg/utils"
)

type ContractHandler struct {
	service *contract.Service
}

func NewContractHandler(service *contract.Service) *ContractHandler {
	return &ContractHandler{service: service}
}

func (h *ContractHandler) RegisterCarrierRoutes(router *gin.RouterGroup) {
	contracts := router.Group("/contracts")
	{
		contracts.GET("", h.ListContracts)
		contracts.GET("/authorize", h.Authorize)
		contracts.POST("/:id/sign", h.SignContract)
	}
}

// Authorize reports whether the calling carrier currently holds a signed,
// unexpired contract. The check is evaluated at request time.
func (h *ContractHandler) Authorize(c *gin.Context) {
	carrierID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	action := c.DefaultQuery("action", "professional_transition")

	if err := h.service.Authorize(c.Request.Context(), carrierID, action); err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Carrier is authorized", gin.H{"authorized": true})
}

func (h *ContractHandler) SignContract(c *gin.Context) {
	contractID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid contract ID")
		return
	}

	carrierID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	result, err := h.service.Sign(c.Request.Context(), contractID, carrierID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Contract signed successfully", contract.ToContractResponse(result, time.Now()))
}

func (h *ContractHandler) ListContracts(c *gin.Context) {
	carrierID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	results, err := h.service.ListByCarrier(c.Request.Context(), carrierID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Contracts retrieved successfully", results)
}
