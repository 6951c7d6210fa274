package api

import (
	"context"
	"net/http"
	"net/url"
)

// MenuCategory is a browsable menu section.
type MenuCategory struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	PhotoURL string `json:"photoUrl"`
}

// MenuItem is one orderable dish.
type MenuItem struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	ImageURL    string  `json:"image_url"`
	Description string  `json:"description"`
}

// Categories fetches the menu category list from the admin backend.
func (c *Client) Categories(ctx context.Context) ([]MenuCategory, error) {
	var categories []MenuCategory
	err := c.do(ctx, "menu.Categories", http.MethodGet, c.adminURL("/menu-category"), "", nil, &categories)
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// ItemsByCategory fetches the items of one category.
func (c *Client) ItemsByCategory(ctx context.Context, categoryID string) ([]MenuItem, error) {
	var items []MenuItem
	path := "/menu-items/category/" + url.PathEscape(categoryID)
	err := c.do(ctx, "menu.ItemsByCategory", http.MethodGet, c.adminURL(path), "", nil, &items)
	if err != nil {
		return nil, err
	}
	return items, nil
}
