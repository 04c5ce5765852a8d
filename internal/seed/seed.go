package seed

import (
	"errors"
	"time"

	"github.com/bwmarrin/snowflake"
	categorydomain "github.com/smallbiznis/stockyard/internal/category/domain"
	"gorm.io/gorm"
)

// EnsureDefaultCategories inserts the lookup categories that are missing.
// Existing rows are left untouched so operator edits survive restarts.
func EnsureDefaultCategories(conn *gorm.DB, genID *snowflake.Node) error {
	for _, name := range categorydomain.DefaultNames {
		var existing categorydomain.Category
		err := conn.First(&existing, "name = ?", name).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		category := categorydomain.Category{
			ID:        genID.Generate().Int64(),
			Name:      name,
			CreatedAt: time.Now().UTC(),
		}
		if err := conn.Create(&category).Error; err != nil {
			return err
		}
	}
	return nil
}
