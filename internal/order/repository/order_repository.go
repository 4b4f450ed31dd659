package repository

import (
	"time"

	orderdomain "hushh-backend/internal/order/domain"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrderRepository defines persistence for orders
type OrderRepository interface {
	Create(order *orderdomain.Order) error
	FindByID(id string) (*orderdomain.Order, error)
	ListByUser(userID string, limit, offset int) ([]orderdomain.Order, error)
	MarkAgentNotified(id string, at time.Time) error
	MarkAgentNotifyError(id, message string) error
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{
		db: db,
	}
}

func (r *orderRepository) Create(order *orderdomain.Order) error {
	now := time.Now()
	if order.ID == "" {
		order.ID = uuid.New().String()
	}
	order.CreatedAt = now
	order.UpdatedAt = now
	for i := range order.Items {
		if order.Items[i].ID == "" {
			order.Items[i].ID = uuid.New().String()
		}
		order.Items[i].OrderID = order.ID
		order.Items[i].CreatedAt = now
		order.Items[i].UpdatedAt = now
	}
	return r.db.Create(order).Error
}

func (r *orderRepository) FindByID(id string) (*orderdomain.Order, error) {
	var order orderdomain.Order
	err := r.db.Preload("Items").Where("id = ?", id).First(&order).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *orderRepository) ListByUser(userID string, limit, offset int) ([]orderdomain.Order, error) {
	if limit <= 0 {
		limit = 50
	}
	var orders []orderdomain.Order
	err := r.db.Preload("Items").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&orders).Error
	return orders, err
}

func (r *orderRepository) MarkAgentNotified(id string, at time.Time) error {
	return r.db.Model(&orderdomain.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"agent_notified_at": at,
		"updated_at":        time.Now(),
	}).Error
}

func (r *orderRepository) MarkAgentNotifyError(id, message string) error {
	return r.db.Model(&orderdomain.Order{}).Where("id = ?", id).Updates(map[string]interface{}{
		"agent_notify_error": message,
		"updated_at":         time.Now(),
	}).Error
}
