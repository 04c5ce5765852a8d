package server

import (
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/stockyard/internal/history/domain"
	"github.com/smallbiznis/stockyard/pkg/db/pagination"
)

func (s *Server) ListHistory(c *gin.Context) {
	var page pagination.Request
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, domain.ErrInvalidDateRange)
		return
	}

	from, ok := parseOptionalTime(c.Query("start_date"), false)
	if !ok {
		AbortWithError(c, domain.ErrInvalidDateRange)
		return
	}
	to, ok := parseOptionalTime(c.Query("end_date"), true)
	if !ok {
		AbortWithError(c, domain.ErrInvalidDateRange)
		return
	}

	req := domain.ListRequest{
		ProductID: c.Query("product_id"),
		From:      from,
		To:        to,
		Page:      page,
	}

	entries, pageInfo, err := s.historySvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondPage(c, entries, pageInfo)
}

func (s *Server) GetProductHistory(c *gin.Context) {
	resp, err := s.historySvc.ProductHistory(c.Request.Context(), c.Param("productId"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, resp)
}

func (s *Server) GetInventorySummary(c *gin.Context) {
	req := domain.SummaryRequest{
		Category:    c.Query("category"),
		StockBucket: c.Query("stock_level"),
	}

	summary, err := s.historySvc.Summary(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, summary)
}
