package usecase

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	orderdomain "hushh-backend/internal/order/domain"
	"hushh-backend/internal/order/repository"
	"hushh-backend/pkg/fcm"
)

// Sender pushes a notification to a single device. Satisfied by *fcm.Client.
type Sender interface {
	SendToDevice(ctx context.Context, token string, notification fcm.Notification) error
}

// Dispatcher notifies the assigned agent when an order is confirmed.
// It never fails the surrounding request: every exit path either stamps the
// order or silently leaves it untouched.
type Dispatcher struct {
	orders repository.OrderRepository
	agents repository.AgentRepository
	sender Sender
}

func NewDispatcher(orders repository.OrderRepository, agents repository.AgentRepository, sender Sender) *Dispatcher {
	return &Dispatcher{
		orders: orders,
		agents: agents,
		sender: sender,
	}
}

// Dispatch sends the order alert to the assigned agent's device.
// Non-confirmed orders, unassigned orders, and agents without a device token
// all exit without touching the order row.
func (d *Dispatcher) Dispatch(ctx context.Context, order *orderdomain.Order) {
	if !strings.EqualFold(order.Status, orderdomain.StatusConfirmed) {
		return
	}
	if order.AgentID == "" {
		log.Printf("[ORDER] Order %s has no agent assigned, skipping notification", order.ID)
		return
	}
	if d.sender == nil {
		log.Printf("[ORDER] FCM not configured, skipping notification for order %s", order.ID)
		return
	}

	agent, err := d.agents.FindByID(order.AgentID)
	if err != nil {
		log.Printf("[ORDER] Agent lookup failed for order %s: %v", order.ID, err)
		return
	}
	if agent == nil || agent.FCMToken == "" {
		log.Printf("[ORDER] Agent %s has no device token, skipping notification", order.AgentID)
		return
	}

	notification := fcm.Notification{
		Title: "New Order Received",
		Body:  composeBody(order),
		Data: map[string]string{
			"type":         "order_confirmed",
			"order_id":     order.ID,
			"agent_id":     order.AgentID,
			"user_id":      order.UserID,
			"status":       order.Status,
			"total_amount": strconv.FormatFloat(order.TotalAmount, 'f', 2, 64),
			"currency":     order.Currency,
		},
	}

	if err := d.sender.SendToDevice(ctx, agent.FCMToken, notification); err != nil {
		log.Printf("[ORDER] Failed to notify agent for order %s: %v", order.ID, err)
		if markErr := d.orders.MarkAgentNotifyError(order.ID, err.Error()); markErr != nil {
			log.Printf("[ORDER] Failed to record notify error for order %s: %v", order.ID, markErr)
		}
		return
	}

	if err := d.orders.MarkAgentNotified(order.ID, time.Now()); err != nil {
		log.Printf("[ORDER] Failed to stamp notification time for order %s: %v", order.ID, err)
	}
}

// composeBody builds the agent-facing summary line.
func composeBody(order *orderdomain.Order) string {
	name := strings.TrimSpace(order.FullName)
	if name == "" {
		name = "Customer"
	}

	summary := "New order items"
	if len(order.Items) > 0 {
		summary = order.Items[0].ProductName
		if summary == "" {
			summary = "Product"
		}
		if extra := len(order.Items) - 1; extra > 0 {
			summary = fmt.Sprintf("%s +%d more", summary, extra)
		}
	}

	return fmt.Sprintf("%s placed an order: %s. Please proceed to fulfillment.", name, summary)
}
