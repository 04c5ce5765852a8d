package domain

import "time"

// Audit reasons written by the application. History rows are append-only;
// nothing ever updates them.
const (
	ReasonInitialStock = "Initial stock"
	ReasonManualUpdate = "Manual update"
	ReasonImport       = "Imported from CSV"
)

// Entry records one stock-quantity change. ProductID is a plain relation, not
// an owning foreign key: rows are deleted explicitly before their product.
type Entry struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	ProductID    int64     `json:"product_id" gorm:"not null;index:ix_inventory_history_product"`
	OldQuantity  int       `json:"old_quantity" gorm:"not null"`
	NewQuantity  int       `json:"new_quantity" gorm:"not null"`
	ChangeAmount int       `json:"change_amount" gorm:"not null"`
	ChangeDate   time.Time `json:"change_date" gorm:"not null;default:CURRENT_TIMESTAMP;index:ix_inventory_history_change_date"`
	UserInfo     string    `json:"user_info" gorm:"type:text"`
	Reason       string    `json:"reason" gorm:"type:text"`
}

func (Entry) TableName() string { return "inventory_history" }

// EntryWithProduct is an Entry joined with its product's name for listings.
type EntryWithProduct struct {
	Entry
	ProductName string `gorm:"column:product_name"`
}
