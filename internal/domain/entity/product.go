package entity

import "time"

// Product status values. Status is only mutated as a side effect of
// transaction transitions; everything else about a product is owned by
// the product service.
const (
	ProductStatusSale     = "SALE"
	ProductStatusReserved = "RESERVED"
	ProductStatusSoldOut  = "SOLD_OUT"
)

type Product struct {
	ID          string  `json:"id" firestore:"id"`
	SellerID    string  `json:"seller_id" firestore:"sellerId"`
	Title       string  `json:"title" firestore:"title"`
	Description string  `json:"description,omitempty" firestore:"description,omitempty"`
	Price       float64 `json:"price" firestore:"price"`
	Status      string  `json:"status" firestore:"status"`

	CreatedAt time.Time `json:"created_at" firestore:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" firestore:"updatedAt"`
}
