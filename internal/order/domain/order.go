package domain

import "time"

// Order statuses as stored. Dispatching only reacts to confirmed orders;
// the comparison is case-insensitive because mobile clients have shipped
// both spellings.
const StatusConfirmed = "confirmed"

// Order is a purchase placed through the app, optionally assigned to a
// fulfillment agent.
type Order struct {
	ID     string `json:"id" gorm:"primaryKey"`
	UserID string `json:"user_id" gorm:"index;not null"`
	// AgentID is empty when no fulfillment agent is assigned yet.
	AgentID string `json:"agent_id" gorm:"index"`
	Status  string `json:"status"`

	// FullName is the buyer's delivery name as entered at checkout.
	FullName    string  `json:"full_name"`
	TotalAmount float64 `json:"total_amount"`
	Currency    string  `json:"currency"`

	Items []OrderItem `json:"items" gorm:"foreignKey:OrderID"`

	// Notification bookkeeping. Exactly one of these gets stamped per
	// dispatch attempt; neither is ever cleared retroactively.
	AgentNotifiedAt  *time.Time `json:"agent_notified_at"`
	AgentNotifyError string     `json:"agent_notify_error,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Order) TableName() string {
	return "orders"
}

// OrderItem is one line of an order.
type OrderItem struct {
	ID      string `json:"id" gorm:"primaryKey"`
	OrderID string `json:"order_id" gorm:"index;not null"`

	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	UnitPrice   float64 `json:"unit_price"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

// Agent is a fulfillment agent reachable over FCM.
type Agent struct {
	ID       string `json:"id" gorm:"primaryKey"`
	Name     string `json:"name"`
	Email    string `json:"email"`
	FCMToken string `json:"-"`
	IsActive bool   `json:"is_active"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (Agent) TableName() string {
	return "agents"
}
