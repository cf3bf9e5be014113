package handler

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"order-system/apps/order/model"
	"order-system/apps/order/service"
	"order-system/pkg/response"

	"github.com/gin-gonic/gin"
)

const (
	msgNoData      = "No data provided"
	msgInvalidJSON = "Invalid JSON body"
	msgStoreError  = "Database error"
)

type Handler struct {
	svc *service.Service
	log *slog.Logger
}

func New(svc *service.Service, log *slog.Logger) *Handler {
	if log == nil {
		log = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Handler{svc: svc, log: log}
}

// Register mounts the order and order detail routes on r.
func (h *Handler) Register(r gin.IRouter) {
	orders := r.Group("/orders")
	{
		orders.GET("", h.ListOrders)
		orders.POST("", h.CreateOrder)
		orders.GET("/:id", h.GetOrder)
		orders.PUT("/:id", h.UpdateOrder)
		orders.DELETE("/:id", h.DeleteOrder)
		orders.GET("/:id/details", h.ListDetails)
		orders.POST("/:id/details", h.CreateDetail)
		orders.GET("/:id/summary", h.Summary)
	}

	details := r.Group("/orderdetails")
	{
		details.GET("/:id", h.GetDetail)
		details.PUT("/:id", h.UpdateDetail)
		details.DELETE("/:id", h.DeleteDetail)
	}
}

func (h *Handler) ListOrders(c *gin.Context) {
	params := service.ListParams{
		StartDate: c.Query("start_date"),
		EndDate:   c.Query("end_date"),
	}
	// a non-numeric customer filter is ignored rather than rejected
	if v, err := strconv.ParseInt(c.Query("customer_id"), 10, 64); err == nil {
		params.CustomerID = v
	}
	if v, err := strconv.Atoi(c.Query("page")); err == nil {
		params.Page = v
	}
	if v, err := strconv.Atoi(c.Query("per_page")); err == nil {
		params.PerPage = v
	}

	result, err := h.svc.ListHeaders(c.Request.Context(), params)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, result)
}

func (h *Handler) GetOrder(c *gin.Context) {
	id, ok := pathID(c, service.ResourceOrder)
	if !ok {
		return
	}

	order, err := h.svc.GetHeader(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, order)
}

func (h *Handler) CreateOrder(c *gin.Context) {
	fields, ok := bindFields(c)
	if !ok {
		return
	}

	order, err := h.svc.CreateHeader(c.Request.Context(), fields)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, "Order created successfully", order)
}

func (h *Handler) UpdateOrder(c *gin.Context) {
	id, ok := pathID(c, service.ResourceOrder)
	if !ok {
		return
	}
	fields, ok := bindFields(c)
	if !ok {
		return
	}

	order, changed, err := h.svc.UpdateHeader(c.Request.Context(), id, fields)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !changed {
		response.SuccessWithMessage(c, "No changes made to the order", order)
		return
	}
	response.SuccessWithMessage(c, "Order updated successfully", order)
}

func (h *Handler) DeleteOrder(c *gin.Context) {
	id, ok := pathID(c, service.ResourceOrder)
	if !ok {
		return
	}

	if err := h.svc.DeleteHeader(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "Order deleted successfully", nil)
}

func (h *Handler) ListDetails(c *gin.Context) {
	id, ok := pathID(c, service.ResourceOrder)
	if !ok {
		return
	}

	details, err := h.svc.ListDetails(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, details)
}

func (h *Handler) CreateDetail(c *gin.Context) {
	id, ok := pathID(c, service.ResourceOrder)
	if !ok {
		return
	}
	fields, ok := bindFields(c)
	if !ok {
		return
	}

	detail, err := h.svc.CreateDetail(c.Request.Context(), id, fields)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Created(c, "Order detail created successfully", detail)
}

func (h *Handler) Summary(c *gin.Context) {
	id, ok := pathID(c, service.ResourceOrder)
	if !ok {
		return
	}

	summary, err := h.svc.Summary(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, summary)
}

func (h *Handler) GetDetail(c *gin.Context) {
	id, ok := pathID(c, service.ResourceDetail)
	if !ok {
		return
	}

	detail, err := h.svc.GetDetail(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	response.Success(c, detail)
}

func (h *Handler) UpdateDetail(c *gin.Context) {
	id, ok := pathID(c, service.ResourceDetail)
	if !ok {
		return
	}
	fields, ok := bindFields(c)
	if !ok {
		return
	}

	detail, changed, err := h.svc.UpdateDetail(c.Request.Context(), id, fields)
	if err != nil {
		h.fail(c, err)
		return
	}
	if !changed {
		response.SuccessWithMessage(c, "No changes made to the order detail", detail)
		return
	}
	response.SuccessWithMessage(c, "Order detail updated successfully", detail)
}

func (h *Handler) DeleteDetail(c *gin.Context) {
	id, ok := pathID(c, service.ResourceDetail)
	if !ok {
		return
	}

	if err := h.svc.DeleteDetail(c.Request.Context(), id); err != nil {
		h.fail(c, err)
		return
	}
	response.SuccessWithMessage(c, "Order detail deleted successfully", nil)
}

// fail maps service errors onto the response envelope. Store failures are
// logged with their cause and answered with a generic message.
func (h *Handler) fail(c *gin.Context, err error) {
	var ve *model.ValidationError
	switch {
	case errors.As(err, &ve):
		response.Error(c, http.StatusBadRequest, ve.Message)
	case service.IsNotFound(err):
		response.Error(c, http.StatusNotFound, err.Error())
	default:
		h.log.ErrorContext(c.Request.Context(), "request failed",
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
		response.Error(c, http.StatusInternalServerError, msgStoreError)
	}
}

// pathID parses the :id parameter. An id that is not a positive integer
// cannot name a record, so it is answered with 404.
func pathID(c *gin.Context, resource string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 0)
	if err != nil || id == 0 {
		response.Error(c, http.StatusNotFound, resource+" not found")
		return 0, false
	}
	return uint(id), true
}

// bindFields binds a JSON object body. The router turns on
// binding.EnableDecoderUseNumber so integer fields keep their exact value.
func bindFields(c *gin.Context) (model.Fields, bool) {
	var fields model.Fields
	if err := c.ShouldBindJSON(&fields); err != nil {
		if errors.Is(err, io.EOF) {
			response.Error(c, http.StatusBadRequest, msgNoData)
		} else {
			response.Error(c, http.StatusBadRequest, msgInvalidJSON)
		}
		return nil, false
	}
	if len(fields) == 0 {
		response.Error(c, http.StatusBadRequest, msgNoData)
		return nil, false
	}
	return fields, true
}
