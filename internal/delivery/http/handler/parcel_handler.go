package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainParcel "parcel-relay/internal/domain/parcel"
	"parcel-relay/internal/usecase/lifecycle"
	"parcel-relay/internal/usecase/parcel"
	"parcel-relay/pkg/utils"
)

type ParcelHandler struct {
	service   *parcel.Service
	lifecycle *lifecycle.Service
}

func NewParcelHandler(service *parcel.Service, lifecycleSvc *lifecycle.Service) *ParcelHandler {
	return &ParcelHandler{service: service, lifecycle: lifecycleSvc}
}

func (h *ParcelHandler) RegisterRoutes(router *gin.RouterGroup) {
	parcels := router.Group("/parcels")
	{
		parcels.GET("", h.ListParcels)
		parcels.GET("/:id", h.GetParcel)
		parcels.POST("/:id/transition", h.TransitionParcel)
	}
}

func (h *ParcelHandler) RegisterSenderRoutes(router *gin.RouterGroup) {
	parcels := router.Group("/parcels")
	{
		parcels.POST("", h.CreateParcel)
	}
}

// RegisterPublicRoutes exposes tracking without authentication.
func (h *ParcelHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.GET("/track/:number", h.TrackParcel)
}

func (h *ParcelHandler) CreateParcel(c *gin.Context) {
	var req parcel.CreateParcelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	senderID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	result, err := h.service.Create(c.Request.Context(), senderID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Parcel created successfully", result)
}

func (h *ParcelHandler) GetParcel(c *gin.Context) {
	parcelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid parcel ID")
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	result, err := h.service.Get(c.Request.Context(), userID, parcelID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Parcel retrieved successfully", result)
}

func (h *ParcelHandler) TrackParcel(c *gin.Context) {
	trackingNumber := c.Param("number")
	if trackingNumber == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Tracking number required")
		return
	}

	result, err := h.service.Track(c.Request.Context(), trackingNumber)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Parcel retrieved successfully", result)
}

func (h *ParcelHandler) ListParcels(c *gin.Context) {
	var filter parcel.ParcelFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	userID, ok := userIDFromContext(c)
	if !ok {
		return
	}
	userRole := c.GetString("role")

	result, err := h.service.List(c.Request.Context(), userID, userRole, &filter)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Parcels retrieved successfully", result)
}

func (h *ParcelHandler) TransitionParcel(c *gin.Context) {
	parcelID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid parcel ID")
		return
	}

	var req parcel.TransitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, err.Error())
		return
	}

	actorID, ok := userIDFromContext(c)
	if !ok {
		return
	}

	updated, err := h.lifecycle.Transition(c.Request.Context(), parcelID, domainParcel.Status(req.TargetStatus), actorID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Parcel status updated successfully", parcel.ToParcelResponse(updated))
}
