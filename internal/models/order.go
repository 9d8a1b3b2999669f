package models

import "time"

// MenuItem is a pizza that can be ordered.
type MenuItem struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
}

// OrderStatus tracks an order through factory fulfillment.
type OrderStatus string

const (
	OrderCreated   OrderStatus = "created"
	OrderFulfilled OrderStatus = "fulfilled"
	OrderFailed    OrderStatus = "failed"
)

// OrderItem is one line of an order.
type OrderItem struct {
	ID          int64   `json:"id,omitempty"`
	MenuID      int64   `json:"menuId"`
	Description string  `json:"description"`
	Price       float64 `json:"price"`
}

// Order is a diner's purchase at a specific store.
type Order struct {
	ID          int64       `json:"id"`
	DinerID     int64       `json:"dinerId"`
	FranchiseID int64       `json:"franchiseId"`
	StoreID     int64       `json:"storeId"`
	Date        time.Time   `json:"date"`
	Status      OrderStatus `json:"status"`
	Items       []OrderItem `json:"items"`
	FactoryJWT  string      `json:"-"`
	ReportURL   string      `json:"-"`
}

// Total sums the item prices.
func (o Order) Total() float64 {
	var total float64
	for _, it := range o.Items {
		total += it.Price
	}
	return total
}
