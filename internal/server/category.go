package server

import (
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/stockyard/internal/category/domain"
)

func (s *Server) ListCategories(c *gin.Context) {
	categories, err := s.categorySvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if categories == nil {
		categories = []domain.Response{}
	}
	respondOK(c, categories)
}
