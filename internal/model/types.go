// Package model defines domain types used by the service.
package model

// MaxQuantity is the hard ceiling on product stock, enforced at every write.
const MaxQuantity = 10

// Product represents one slot in the machine's catalog. Price is in
// stotinki.
type Product struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity"`
}

// ProductPatch is a partial update. Name and Price overwrite only when
// present; Quantity is always overwritten and re-validated.
type ProductPatch struct {
	Name     *string `json:"name,omitempty"`
	Price    *int64  `json:"price,omitempty"`
	Quantity int     `json:"quantity"`
}
