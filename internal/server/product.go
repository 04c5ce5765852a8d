package server

import (
	"github.com/gin-gonic/gin"
	"github.com/smallbiznis/stockyard/internal/product/domain"
	"github.com/smallbiznis/stockyard/pkg/db/pagination"
)

type productPayload struct {
	Name     *string `json:"name"`
	Unit     *string `json:"unit"`
	Category *string `json:"category"`
	Brand    *string `json:"brand"`
	Stock    *int    `json:"stock"`
	Status   *string `json:"status"`
	Image    *string `json:"image"`
}

func (s *Server) ListProducts(c *gin.Context) {
	var page pagination.Request
	if err := c.ShouldBindQuery(&page); err != nil {
		AbortWithError(c, domain.ErrInvalidStock)
		return
	}

	req := domain.ListRequest{
		Name:        c.Query("name"),
		Category:    c.Query("category"),
		StockBucket: c.Query("stock_level"),
		SortBy:      c.Query("sort_by"),
		OrderBy:     c.Query("order_by"),
		Page:        page,
	}

	products, pageInfo, err := s.productSvc.List(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondPage(c, products, pageInfo)
}

func (s *Server) GetProductByID(c *gin.Context) {
	product, err := s.productSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondOK(c, product)
}

func (s *Server) CreateProduct(c *gin.Context) {
	var payload productPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		AbortWithError(c, domain.ErrInvalidName)
		return
	}

	req := domain.CreateRequest{
		Unit:     payload.Unit,
		Category: payload.Category,
		Brand:    payload.Brand,
		Stock:    payload.Stock,
		Status:   payload.Status,
		Image:    payload.Image,
	}
	if payload.Name != nil {
		req.Name = *payload.Name
	}

	product, err := s.productSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondCreated(c, "Product created successfully", product)
}

func (s *Server) UpdateProduct(c *gin.Context) {
	var payload productPayload
	if err := c.ShouldBindJSON(&payload); err != nil {
		AbortWithError(c, domain.ErrInvalidName)
		return
	}

	req := domain.UpdateRequest{
		ID:       c.Param("id"),
		Name:     payload.Name,
		Unit:     payload.Unit,
		Category: payload.Category,
		Brand:    payload.Brand,
		Stock:    payload.Stock,
		Status:   payload.Status,
		Image:    payload.Image,
	}

	product, err := s.productSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondMessage(c, "Product updated successfully", product)
}

func (s *Server) DeleteProduct(c *gin.Context) {
	if err := s.productSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}
	respondMessage(c, "Product deleted successfully", nil)
}

// ListProductCategories returns the distinct category values in use by
// products, as opposed to the seeded lookup table.
func (s *Server) ListProductCategories(c *gin.Context) {
	categories, err := s.productSvc.Categories(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}
	if categories == nil {
		categories = []string{}
	}
	respondOK(c, categories)
}
