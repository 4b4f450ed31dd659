package dto

// CreateOrderRequest is the checkout payload from the app.
type CreateOrderRequest struct {
	UserID      string             `json:"userId" binding:"required"`
	AgentID     string             `json:"agentId"`
	Status      string             `json:"status"`
	FullName    string             `json:"fullName"`
	TotalAmount float64            `json:"totalAmount"`
	Currency    string             `json:"currency"`
	Items       []OrderItemRequest `json:"items"`
}

type OrderItemRequest struct {
	ProductID   string  `json:"productId"`
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unitPrice"`
}
