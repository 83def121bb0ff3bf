package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
)

// Product is one catalog entry in the shop.
type Product struct {
	ID          string      `json:"_id"`
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Price       json.Number `json:"price"`
	Description string      `json:"description"`
	ImageURL    string      `json:"image_url"`
	IsNew       bool        `json:"isNew"`
}

// ProductInput is the creation request for a catalog entry.
type ProductInput struct {
	Name        string      `json:"name"`
	Category    string      `json:"category"`
	Price       json.Number `json:"price"`
	Description string      `json:"description"`
	ImageURL    string      `json:"image_url"`
	IsNew       bool        `json:"isNew"`
}

// ProductUpdate carries partial catalog changes. The update route
// accepts the stored image field name, not the list alias.
type ProductUpdate struct {
	Name        string      `json:"name,omitempty"`
	Category    string      `json:"category,omitempty"`
	Price       json.Number `json:"price,omitempty"`
	Description string      `json:"description,omitempty"`
	Image       string      `json:"image,omitempty"`
	IsNew       *bool       `json:"isNew,omitempty"`
}

// Products lists the shop catalog.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var result struct {
		Products []Product `json:"products"`
	}
	if err := c.get(ctx, "shop_products", "/products", nil, &result); err != nil {
		return nil, err
	}
	return result.Products, nil
}

// CreateProduct adds a catalog entry and returns its id.
func (c *Client) CreateProduct(ctx context.Context, input ProductInput) (string, error) {
	var result struct {
		ID string `json:"id"`
	}
	if err := c.sendJSON(ctx, "shop_create_product", http.MethodPost, "/products", input, &result); err != nil {
		return "", err
	}
	return result.ID, nil
}

// UpdateProduct applies partial changes to a catalog entry.
func (c *Client) UpdateProduct(ctx context.Context, productID string, update ProductUpdate) error {
	return c.sendJSON(ctx, "shop_update_product", http.MethodPut,
		"/products/"+url.PathEscape(productID), update, nil)
}

// DeleteProduct removes a catalog entry.
func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	return c.do(ctx, "shop_delete_product", http.MethodDelete,
		"/products/"+url.PathEscape(productID), nil, nil, "", nil)
}
