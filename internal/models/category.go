package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Category is an income or expense label. Categories without an owner
// are shared defaults visible to every user.
type Category struct {
	ID        uuid.UUID       `json:"id"`
	UserID    uuid.NullUUID   `json:"user_id"`
	Name      string          `json:"name"`
	Type      TransactionType `json:"type"`
	Icon      string          `json:"icon,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
}

// IsShared reports whether the category is a shared default.
func (c Category) IsShared() bool {
	return !c.UserID.Valid
}

// VisibleTo reports whether the user may use the category.
func (c Category) VisibleTo(userID uuid.UUID) bool {
	return c.IsShared() || c.UserID.UUID == userID
}

// Names of the categories the ledger maintains for transfers.
const (
	TransferOutCategory = "Transfer Keluar"
	TransferInCategory  = "Transfer Masuk"
)

// CategoryNames returns the distinct category names in order. Names that
// exist for both types, like "Lainnya", appear once.
func CategoryNames(categories []Category) []string {
	seen := make(map[string]bool, len(categories))
	names := make([]string, 0, len(categories))
	for _, c := range categories {
		key := strings.ToLower(c.Name)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, c.Name)
	}
	return names
}
