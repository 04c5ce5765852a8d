package server

import (
	"fmt"
	"time"

	"github.com/gin-gonic/gin"
	transferdomain "github.com/smallbiznis/stockyard/internal/transfer/domain"
)

func (s *Server) ImportProducts(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		AbortWithError(c, transferdomain.ErrMalformedCSV)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		AbortWithError(c, transferdomain.ErrMalformedCSV)
		return
	}
	defer file.Close()

	result, err := s.transferSvc.Import(c.Request.Context(), file)
	if err != nil {
		AbortWithError(c, err)
		return
	}
	respondMessage(c, fmt.Sprintf("Import completed: %d added, %d skipped", result.Added, result.Skipped), result)
}

func (s *Server) ExportProducts(c *gin.Context) {
	filename := fmt.Sprintf("products_export_%s.csv", time.Now().Format("2006-01-02"))
	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := s.transferSvc.Export(c.Request.Context(), c.Writer); err != nil {
		// headers are already out; the truncated payload is the signal
		_ = c.Error(err)
	}
}
