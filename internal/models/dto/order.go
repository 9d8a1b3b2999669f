package dto

import "github.com/hongminglow/pizza-be/internal/models"

type CreateOrderRequest struct {
	FranchiseID int64              `json:"franchiseId"`
	StoreID     int64              `json:"storeId"`
	Items       []models.OrderItem `json:"items"`
}

type CreateOrderResponse struct {
	Order     models.Order `json:"order"`
	JWT       string       `json:"jwt"`
	ReportURL string       `json:"reportUrl"`
}

type OrderFailureResponse struct {
	Message   string `json:"message"`
	ReportURL string `json:"reportUrl,omitempty"`
}

type ListOrdersResponse struct {
	DinerID int64          `json:"dinerId"`
	Orders  []models.Order `json:"orders"`
	Page    int            `json:"page"`
	More    bool           `json:"more"`
}

type UpdateMenuRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
}
