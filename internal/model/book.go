package model

// Book is a catalog entry.
type Book struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// CartLine is one book held in the cart. The book attributes are copied
// when the line is created, so later catalog edits do not change it.
type CartLine struct {
	Book
	Quantity int `json:"quantity"`
}

// Subtotal is price times quantity.
func (l CartLine) Subtotal() float64 { return l.Price * float64(l.Quantity) }
