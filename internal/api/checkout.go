package api

import (
	"context"
	"encoding/json"
	"net/http"
)

// OrderItem is one purchased line. Only the display fields travel;
// internal product ids stay on the client.
type OrderItem struct {
	Name     string      `json:"name"`
	Price    json.Number `json:"price"`
	Quantity int         `json:"quantity"`
}

// Order is the checkout submission for the active cart.
type Order struct {
	Email string      `json:"email"`
	Items []OrderItem `json:"items"`
	Total json.Number `json:"total"`
}

// OrderResult confirms a placed order. The backend also emails a PDF
// receipt to the buyer.
type OrderResult struct {
	TransactionID string      `json:"transaction_id"`
	Amount        json.Number `json:"amount"`
	Email         string      `json:"email"`
}

// SubmitOrder posts the confirmed cart to the checkout endpoint.
func (c *Client) SubmitOrder(ctx context.Context, order Order) (*OrderResult, error) {
	var result OrderResult
	if err := c.sendJSON(ctx, "checkout_submit", http.MethodPost, "/api/checkout", order, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
