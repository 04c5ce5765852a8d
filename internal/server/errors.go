package server

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	historydomain "github.com/smallbiznis/stockyard/internal/history/domain"
	productdomain "github.com/smallbiznis/stockyard/internal/product/domain"
	transferdomain "github.com/smallbiznis/stockyard/internal/transfer/domain"
)

// AbortWithError records err on the context and stops the handler chain.
// ErrorHandlingMiddleware translates it into the response envelope.
func AbortWithError(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		err := c.Errors.Last().Err
		status, message := mapError(err)

		resp := apiResponse{Success: false, Message: message}
		if status == http.StatusInternalServerError {
			resp.Message = "Internal server error"
			resp.Error = err.Error()
		}
		c.JSON(status, resp)
	}
}

func mapError(err error) (int, string) {
	switch {
	case errors.Is(err, productdomain.ErrNotFound):
		return http.StatusNotFound, "Product not found"
	case errors.Is(err, historydomain.ErrProductNotFound):
		return http.StatusNotFound, "Product not found"
	case errors.Is(err, productdomain.ErrDuplicateName):
		return http.StatusConflict, "A product with this name already exists"
	case errors.Is(err, productdomain.ErrInvalidID),
		errors.Is(err, historydomain.ErrInvalidProductID):
		return http.StatusBadRequest, "Invalid product id"
	case errors.Is(err, productdomain.ErrInvalidName):
		return http.StatusBadRequest, "Product name is required and must be at most 255 characters"
	case errors.Is(err, productdomain.ErrInvalidUnit):
		return http.StatusBadRequest, "Unit must be at most 50 characters"
	case errors.Is(err, productdomain.ErrInvalidCategory):
		return http.StatusBadRequest, "Category must be at most 100 characters"
	case errors.Is(err, productdomain.ErrInvalidBrand):
		return http.StatusBadRequest, "Brand must be at most 100 characters"
	case errors.Is(err, productdomain.ErrInvalidStock):
		return http.StatusBadRequest, "Stock must be a non-negative integer"
	case errors.Is(err, productdomain.ErrInvalidStatus):
		return http.StatusBadRequest, "Status must be one of: active, inactive, discontinued"
	case errors.Is(err, productdomain.ErrInvalidImage):
		return http.StatusBadRequest, "Image must be a valid URL"
	case errors.Is(err, productdomain.ErrInvalidStockBucket),
		errors.Is(err, historydomain.ErrInvalidStockBucket):
		return http.StatusBadRequest, "Stock level must be one of: out_of_stock, low_stock, in_stock"
	case errors.Is(err, historydomain.ErrInvalidDateRange):
		return http.StatusBadRequest, "Invalid date range"
	case errors.Is(err, transferdomain.ErrMalformedCSV):
		return http.StatusBadRequest, "Malformed CSV file"
	case errors.Is(err, transferdomain.ErrMissingNameColumn):
		return http.StatusBadRequest, "CSV file must contain a name column"
	case errors.Is(err, transferdomain.ErrTooManyRows):
		return http.StatusBadRequest, "CSV file exceeds the maximum number of rows"
	default:
		return http.StatusInternalServerError, "Internal server error"
	}
}

// classifyErrorForLog labels request errors for the logging middleware.
func classifyErrorForLog(err error) (string, string) {
	status, _ := mapError(err)
	switch {
	case status == http.StatusNotFound:
		return "client", "not_found"
	case status == http.StatusConflict:
		return "client", "conflict"
	case status < http.StatusInternalServerError:
		return "client", "validation"
	default:
		return "server", "internal"
	}
}
