package usecase

import (
	"context"
	"errors"
	"testing"
	"time"

	orderdomain "hushh-backend/internal/order/domain"
	"hushh-backend/pkg/fcm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeOrderRepo struct {
	notifiedID   string
	notifiedAt   *time.Time
	errorID      string
	errorMessage string
}

func (r *fakeOrderRepo) Create(order *orderdomain.Order) error { return nil }

func (r *fakeOrderRepo) FindByID(id string) (*orderdomain.Order, error) { return nil, nil }

func (r *fakeOrderRepo) ListByUser(userID string, limit, offset int) ([]orderdomain.Order, error) {
	return nil, nil
}

func (r *fakeOrderRepo) MarkAgentNotified(id string, at time.Time) error {
	r.notifiedID = id
	r.notifiedAt = &at
	return nil
}

func (r *fakeOrderRepo) MarkAgentNotifyError(id, message string) error {
	r.errorID = id
	r.errorMessage = message
	return nil
}

type fakeAgentRepo struct {
	agent *orderdomain.Agent
}

func (r *fakeAgentRepo) FindByID(id string) (*orderdomain.Agent, error) {
	return r.agent, nil
}

type fakeSender struct {
	sentToken    string
	notification fcm.Notification
	calls        int
	err          error
}

func (s *fakeSender) SendToDevice(ctx context.Context, token string, notification fcm.Notification) error {
	s.calls++
	s.sentToken = token
	s.notification = notification
	return s.err
}

func confirmedOrder() *orderdomain.Order {
	return &orderdomain.Order{
		ID:          "order-1",
		UserID:      "user-1",
		AgentID:     "agent-1",
		Status:      "confirmed",
		FullName:    "Jane Doe",
		TotalAmount: 42.5,
		Currency:    "USD",
		Items: []orderdomain.OrderItem{
			{ProductName: "Widget", Quantity: 1},
			{ProductName: "Gadget", Quantity: 2},
		},
	}
}

func TestDispatchSendsAndStamps(t *testing.T) {
	orders := &fakeOrderRepo{}
	agents := &fakeAgentRepo{agent: &orderdomain.Agent{ID: "agent-1", FCMToken: "device-token"}}
	sender := &fakeSender{}

	NewDispatcher(orders, agents, sender).Dispatch(context.Background(), confirmedOrder())

	assert.Equal(t, 1, sender.calls)
	assert.Equal(t, "device-token", sender.sentToken)
	assert.Equal(t, "New Order Received", sender.notification.Title)
	assert.Equal(t, "Jane Doe placed an order: Widget +1 more. Please proceed to fulfillment.", sender.notification.Body)
	assert.Equal(t, "order-1", sender.notification.Data["order_id"])
	assert.Equal(t, "42.50", sender.notification.Data["total_amount"])

	assert.Equal(t, "order-1", orders.notifiedID)
	require.NotNil(t, orders.notifiedAt)
	assert.Empty(t, orders.errorID)
}

func TestDispatchStatusIsCaseInsensitive(t *testing.T) {
	orders := &fakeOrderRepo{}
	agents := &fakeAgentRepo{agent: &orderdomain.Agent{ID: "agent-1", FCMToken: "device-token"}}
	sender := &fakeSender{}
	dispatcher := NewDispatcher(orders, agents, sender)

	order := confirmedOrder()
	order.Status = "CONFIRMED"
	dispatcher.Dispatch(context.Background(), order)
	assert.Equal(t, 1, sender.calls)

	order.Status = "pending"
	dispatcher.Dispatch(context.Background(), order)
	assert.Equal(t, 1, sender.calls, "non-confirmed orders never notify")
}

func TestDispatchSkipsWhenAgentHasNoToken(t *testing.T) {
	orders := &fakeOrderRepo{}
	agents := &fakeAgentRepo{agent: &orderdomain.Agent{ID: "agent-1"}}
	sender := &fakeSender{}

	NewDispatcher(orders, agents, sender).Dispatch(context.Background(), confirmedOrder())

	assert.Equal(t, 0, sender.calls)
	// The order row stays untouched: no stamp, no error.
	assert.Empty(t, orders.notifiedID)
	assert.Empty(t, orders.errorID)
}

func TestDispatchSkipsUnassignedOrder(t *testing.T) {
	orders := &fakeOrderRepo{}
	sender := &fakeSender{}

	order := confirmedOrder()
	order.AgentID = ""
	NewDispatcher(orders, &fakeAgentRepo{}, sender).Dispatch(context.Background(), order)

	assert.Equal(t, 0, sender.calls)
	assert.Empty(t, orders.notifiedID)
}

func TestDispatchRecordsSendFailure(t *testing.T) {
	orders := &fakeOrderRepo{}
	agents := &fakeAgentRepo{agent: &orderdomain.Agent{ID: "agent-1", FCMToken: "device-token"}}
	sender := &fakeSender{err: errors.New("fcm unavailable")}

	NewDispatcher(orders, agents, sender).Dispatch(context.Background(), confirmedOrder())

	assert.Equal(t, "order-1", orders.errorID)
	assert.Equal(t, "fcm unavailable", orders.errorMessage)
	assert.Empty(t, orders.notifiedID)
}

func TestComposeBodyDefaults(t *testing.T) {
	order := confirmedOrder()
	order.FullName = "  "
	order.Items = nil
	assert.Equal(t, "Customer placed an order: New order items. Please proceed to fulfillment.", composeBody(order))

	order.Items = []orderdomain.OrderItem{{Quantity: 1}}
	assert.Equal(t, "Customer placed an order: Product. Please proceed to fulfillment.", composeBody(order))

	order.Items = []orderdomain.OrderItem{{ProductName: "Widget"}}
	assert.Equal(t, "Customer placed an order: Widget. Please proceed to fulfillment.", composeBody(order))
}
