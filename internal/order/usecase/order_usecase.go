package usecase

import (
	"context"

	orderdomain "hushh-backend/internal/order/domain"
	"hushh-backend/internal/order/dto"
	"hushh-backend/internal/order/repository"
)

// OrderUsecase creates orders and triggers agent dispatch.
type OrderUsecase interface {
	Create(ctx context.Context, req *dto.CreateOrderRequest) (*orderdomain.Order, error)
	Get(id string) (*orderdomain.Order, error)
	ListByUser(userID string, limit, offset int) ([]orderdomain.Order, error)
}

type orderUsecase struct {
	orders     repository.OrderRepository
	dispatcher *Dispatcher
}

func NewOrderUsecase(orders repository.OrderRepository, dispatcher *Dispatcher) OrderUsecase {
	return &orderUsecase{
		orders:     orders,
		dispatcher: dispatcher,
	}
}

// Create persists the order first, then dispatches the agent notification.
// Dispatch is deliberately fire-and-forget: a push failure must never fail
// checkout, it only leaves an error stamp on the order.
func (u *orderUsecase) Create(ctx context.Context, req *dto.CreateOrderRequest) (*orderdomain.Order, error) {
	status := req.Status
	if status == "" {
		status = orderdomain.StatusConfirmed
	}
	currency := req.Currency
	if currency == "" {
		currency = "USD"
	}

	order := &orderdomain.Order{
		UserID:      req.UserID,
		AgentID:     req.AgentID,
		Status:      status,
		FullName:    req.FullName,
		TotalAmount: req.TotalAmount,
		Currency:    currency,
	}
	for _, item := range req.Items {
		quantity := item.Quantity
		if quantity <= 0 {
			quantity = 1
		}
		order.Items = append(order.Items, orderdomain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    quantity,
			UnitPrice:   item.UnitPrice,
		})
	}

	if err := u.orders.Create(order); err != nil {
		return nil, err
	}

	u.dispatcher.Dispatch(ctx, order)
	return order, nil
}

func (u *orderUsecase) Get(id string) (*orderdomain.Order, error) {
	return u.orders.FindByID(id)
}

func (u *orderUsecase) ListByUser(userID string, limit, offset int) ([]orderdomain.Order, error) {
	return u.orders.ListByUser(userID, limit, offset)
}
