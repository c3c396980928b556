package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"parcel-relay/internal/usecase/match"
	"parcel-relay/pkg/utils"
)

type MatchHandler struct {
	service *match.Service
}

func NewMatchHandler(service *match.Service) *MatchHandler {
	return &MatchHandler{service: service}
}

func (h *MatchHandler) RegisterRoutes(router *gin.RouterGroup) {
	matches := router.Group("/matches")
	{
		matches.POST("/propose", h.ProposeMatch)
		matches.GET("/parcel/:id", h.ListByParcel)
	}
}

func (h *MatchHandler) RegisterCarrierRoutes(router *gin.RouterGroup) {
	matches := router.Group("/matches")
	{
		matches.GET("/pending", h.ListPending)
		matches.POST("/:id/accept", h.AcceptMatch)
		matches.POST("/:id/reject", h.RejectMatch)
	}
}

func (h *MatchHandler) ProposeMatch(c *gin.Context) {
	var req match.ProposeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	result, err := h.service.Propose(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Match proposed successfully", match.ToMatchResponse(result))
}

func (h *MatchHandler) AcceptMatch(c *gin.Context) {
	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid match ID")
		return
	}

	carrierID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	result, err := h.service.Accept(c.Request.Context(), matchID, carrierID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Match accepted successfully", match.ToMatchResponse(result))
}

func (h *MatchHandler) RejectMatch(c *gin.Context) {
	matchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid match ID")
		return
	}

	var req match.RejectRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	carrierID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	result, err := h.service.Reject(c.Request.Context(), matchID, carrierID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Match rejected", match.ToMatchResponse(result))
}

func (h *MatchHandler) ListByParcel(c *gin.Context) {
	parcelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid parcel ID")
		return
	}

	results, err := h.service.ListByParcel(c.Request.Context(), parcelID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Matches retrieved successfully", match.ToMatchResponses(results))
}

func (h *MatchHandler) ListPending(c *gin.Context) {
	carrierID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	results, err := h.service.ListPendingByCarrier(c.Request.Context(), carrierID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Pending matches retrieved successfully", match.ToMatchResponses(results))
}
