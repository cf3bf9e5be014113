package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusError   = "error"
)

// Response 统一响应结构体
type Response struct {
	Status  string `json:"status"`            // success / error
	Message string `json:"message,omitempty"` // 提示信息
	Data    any    `json:"data,omitempty"`    // 数据
}

// Success 成功响应 (200)
func Success(ctx *gin.Context, data any) {
	ctx.JSON(http.StatusOK, Response{
		Status: StatusSuccess,
		Data:   data,
	})
}

// SuccessWithMessage 成功响应并携带提示信息 (200)
func SuccessWithMessage(ctx *gin.Context, msg string, data any) {
	ctx.JSON(http.StatusOK, Response{
		Status:  StatusSuccess,
		Message: msg,
		Data:    data,
	})
}

// Created 创建成功 (201)
func Created(ctx *gin.Context, msg string, data any) {
	ctx.JSON(http.StatusCreated, Response{
		Status:  StatusSuccess,
		Message: msg,
		Data:    data,
	})
}

// Error 失败响应
func Error(ctx *gin.Context, httpStatus int, msg string) {
	ctx.JSON(httpStatus, Response{
		Status:  StatusError,
		Message: msg,
	})
}

// Abort 失败响应并终止后续中间件
func Abort(ctx *gin.Context, httpStatus int, msg string) {
	ctx.AbortWithStatusJSON(httpStatus, Response{
		Status:  StatusError,
		Message: msg,
	})
}
