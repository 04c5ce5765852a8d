package migration

import (
	categorydomain "github.com/smallbiznis/stockyard/internal/category/domain"
	historydomain "github.com/smallbiznis/stockyard/internal/history/domain"
	productdomain "github.com/smallbiznis/stockyard/internal/product/domain"
	"gorm.io/gorm"
)

// Run creates the schema on startup so the application is usable out of the
// box against an empty single-file database.
func Run(conn *gorm.DB) error {
	return conn.AutoMigrate(
		&productdomain.Product{},
		&historydomain.Entry{},
		&categorydomain.Category{},
	)
}
