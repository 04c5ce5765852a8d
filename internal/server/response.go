package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/stockyard/pkg/db/pagination"
)

// apiResponse is the envelope every endpoint answers with.
type apiResponse struct {
	Success    bool                 `json:"success"`
	Message    string               `json:"message,omitempty"`
	Data       any                  `json:"data,omitempty"`
	Pagination *pagination.PageInfo `json:"pagination,omitempty"`
	Error      string               `json:"error,omitempty"`
}

func respondOK(c *gin.Context, data any) {
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: data})
}

func respondCreated(c *gin.Context, message string, data any) {
	c.JSON(http.StatusCreated, apiResponse{Success: true, Message: message, Data: data})
}

func respondMessage(c *gin.Context, message string, data any) {
	c.JSON(http.StatusOK, apiResponse{Success: true, Message: message, Data: data})
}

func respondPage(c *gin.Context, data any, page pagination.PageInfo) {
	c.JSON(http.StatusOK, apiResponse{Success: true, Data: data, Pagination: &page})
}
