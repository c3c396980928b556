package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"parcel-relay/internal/usecase/relay"
	"parcel-relay/pkg/utils"
)

type RelayHandler struct {
	service *relay.Service
}

func NewRelayHandler(service *relay.Service) *RelayHandler {
	return &RelayHandler{service: service}
}

func (h *RelayHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/parcels/:id/relay/history", h.History)
}

func (h *RelayHandler) RegisterCarrierRoutes(router *gin.RouterGroup) {
	router.POST("/relay/checkpoints", h.CreateCheckpoint)
	router.POST("/relay/checkpoints/:id/confirm", h.ConfirmCheckpoint)
}

func (h *RelayHandler) CreateCheckpoint(c *gin.Context) {
	var req relay.CreateCheckpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	carrierID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	result, err := h.service.CreateCheckpoint(c.Request.Context(), carrierID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Checkpoint created successfully", relay.ToCheckpointResponse(result))
}

func (h *RelayHandler) ConfirmCheckpoint(c *gin.Context) {
	checkpointID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid checkpoint ID")
		return
	}

	var req relay.ConfirmCheckpointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	carrierID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	result, err := h.service.ConfirmCheckpoint(c.Request.Context(), checkpointID, req.Code, carrierID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Checkpoint confirmed successfully", relay.ToCheckpointResponse(result))
}

func (h *RelayHandler) History(c *gin.Context) {
	parcelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid parcel ID")
		return
	}

	results, err := h.service.History(c.Request.Context(), parcelID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Relay history retrieved successfully", relay.ToCheckpointResponses(results))
}
