package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"terminal-inventory/internal/usecase/inventory"
	appErrors "terminal-inventory/pkg/errors"
	"terminal-inventory/pkg/utils"
)

type DeviceHandler struct {
	service *inventory.Service
}

func NewDeviceHandler(service *inventory.Service) *DeviceHandler {
	return &DeviceHandler{service: service}
}

func (h *DeviceHandler) RegisterRoutes(router *gin.RouterGroup) {
	devices := router.Group("/devices")
	{
		devices.GET("", h.ListDevices)
		devices.GET("/:id", h.GetDevice)
		devices.GET("/by-customer", h.DevicesByCustomer)
		devices.POST("", h.AddDevice)
		devices.POST("/batch", h.AddDevicesBatch)
		devices.POST("/:id/checkout", h.CheckoutDevice)
		devices.POST("/checkout-batch", h.CheckoutDevicesBatch)
		devices.POST("/:id/return", h.ReturnDevice)
	}

	router.GET("/stats", h.GetStats)
	router.GET("/models", h.GetModels)
}

func (h *DeviceHandler) ListDevices(c *gin.Context) {
	var req inventory.ListDevicesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	devices, err := h.service.ListDevices(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Devices retrieved successfully", devices)
}

func (h *DeviceHandler) GetDevice(c *gin.Context) {
	deviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid device ID")
		return
	}

	device, err := h.service.GetDevice(c.Request.Context(), deviceID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device retrieved successfully", device)
}

func (h *DeviceHandler) AddDevice(c *gin.Context) {
	var req inventory.CreateDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	device, err := h.service.AddDevice(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Device added successfully", device)
}

func (h *DeviceHandler) AddDevicesBatch(c *gin.Context) {
	var req inventory.BatchCreateDevicesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.AddDevicesBatch(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusCreated, "Devices added successfully", result)
}

func (h *DeviceHandler) CheckoutDevice(c *gin.Context) {
	deviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid device ID")
		return
	}

	var req inventory.CheckoutDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	device, err := h.service.CheckoutDevice(c.Request.Context(), deviceID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device checked out successfully", device)
}

func (h *DeviceHandler) CheckoutDevicesBatch(c *gin.Context) {
	var req inventory.BatchCheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.service.CheckoutDevicesBatch(c.Request.Context(), &req)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Batch checkout completed", result)
}

func (h *DeviceHandler) ReturnDevice(c *gin.Context) {
	deviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid device ID")
		return
	}

	device, err := h.service.ReturnDevice(c.Request.Context(), deviceID)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Device returned to inventory", device)
}

func (h *DeviceHandler) DevicesByCustomer(c *gin.Context) {
	reason := c.Query("reason")
	if reason == "" {
		utils.ErrorResponse(c, http.StatusBadRequest, "Removal reason required")
		return
	}

	groups, err := h.service.DevicesByCustomer(c.Request.Context(), reason)
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Devices grouped by customer", groups)
}

func (h *DeviceHandler) GetStats(c *gin.Context) {
	stats, err := h.service.Stats(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Statistics retrieved successfully", stats)
}

func (h *DeviceHandler) GetModels(c *gin.Context) {
	models, err := h.service.Models(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Model summaries retrieved successfully", models)
}

// respondError translates service error codes into HTTP statuses.
func respondError(c *gin.Context, err error) {
	var appErr *appErrors.AppError
	if !errors.As(err, &appErr) {
		utils.ErrorResponse(c, http.StatusInternalServerError, err.Error())
		return
	}

	switch appErr.Code {
	case appErrors.CodeValidation:
		utils.ErrorResponse(c, http.StatusBadRequest, appErr.Message)
	case appErrors.CodeNotFound:
		utils.ErrorResponse(c, http.StatusNotFound, appErr.Message)
	case appErrors.CodeDuplicateSerial, appErrors.CodeInvalidState:
		utils.ErrorResponse(c, http.StatusConflict, appErr.Message)
	default:
		utils.ErrorResponse(c, http.StatusInternalServerError, appErr.Message)
	}
}
