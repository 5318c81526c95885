package cart

import (
	"time"

	"github.com/mimasafoods/storefront/internal/catalog"
)

// Item is one cart row. Product is resolved on read and stays nil when the
// referenced product no longer exists in the catalog.
type Item struct {
	ID        string           `json:"id"`
	SessionID string           `json:"sessionId"`
	ProductID string           `json:"productId"`
	Quantity  int              `json:"quantity"`
	Product   *catalog.Product `json:"product,omitempty"`
	UpdatedAt time.Time        `json:"updatedAt"`
}
