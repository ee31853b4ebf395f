package controllers

import "net/http"

// APIResponse 统一API响应结构
type APIResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"操作成功"`
	Data   interface{} `json:"data,omitempty"`
}

// PaginatedResponse 分页响应结构
type PaginatedResponse struct {
	Status int         `json:"status" example:"0"`
	Msg    string      `json:"msg" example:"操作成功"`
	Data   interface{} `json:"data"`
	Total  int64       `json:"total" example:"100"`
	Page   int         `json:"page" example:"1"`
	Size   int         `json:"size" example:"10"`
}

// SuccessResponse 成功响应
func SuccessResponse(msg string, data interface{}) APIResponse {
	if msg == "" {
		msg = "操作成功"
	}
	return APIResponse{Status: 0, Msg: msg, Data: data}
}

// SuccessPaginatedResponse 分页成功响应
func SuccessPaginatedResponse(data interface{}, total int64, page, size int) PaginatedResponse {
	return PaginatedResponse{
		Status: 0,
		Msg:    "操作成功",
		Data:   data,
		Total:  total,
		Page:   page,
		Size:   size,
	}
}

// BadRequestResponse 请求参数错误响应
func BadRequestResponse(msg string, err error) APIResponse {
	return errorResponse(http.StatusBadRequest, msg, err)
}

// NotFoundResponse 资源不存在响应
func NotFoundResponse(msg string, err error) APIResponse {
	return errorResponse(http.StatusNotFound, msg, err)
}

// InternalErrorResponse 服务器内部错误响应
func InternalErrorResponse(msg string, err error) APIResponse {
	return errorResponse(http.StatusInternalServerError, msg, err)
}

func errorResponse(status int, msg string, err error) APIResponse {
	if err != nil {
		msg = msg + ": " + err.Error()
	}
	return APIResponse{Status: status, Msg: msg}
}
