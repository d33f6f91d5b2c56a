// Package cart implements the in-memory cart for the bill being composed.
// All operations are pure list manipulation; persistence happens only when
// the finished cart is snapshotted into a bill.
package cart

import (
	"fmt"
	"strconv"
	"strings"

	"storebill/backend/internal/domain"
)

// RateNotApplicable marks the unused rate field on a line item.
const RateNotApplicable = "N/A"

type Cart struct {
	Items       []domain.LineItem
	TotalAmount float64
}

func New() *Cart {
	return &Cart{Items: []domain.LineItem{}}
}

// AddItem validates the request, appends the resulting line item and
// recomputes the total. On a validation error the cart is untouched.
func (c *Cart) AddItem(req domain.ItemRequest) error {
	item, err := buildLineItem(req)
	if err != nil {
		return err
	}
	c.Items = append(c.Items, item)
	c.recompute()
	return nil
}

// UpdateItem replaces the line item at index after the same validation as
// AddItem.
func (c *Cart) UpdateItem(index int, req domain.ItemRequest) error {
	if index < 0 || index >= len(c.Items) {
		return fmt.Errorf("item index %d out of range: %w", index, domain.ErrValidation)
	}
	item, err := buildLineItem(req)
	if err != nil {
		return err
	}
	c.Items[index] = item
	c.recompute()
	return nil
}

func (c *Cart) RemoveItem(index int) error {
	if index < 0 || index >= len(c.Items) {
		return fmt.Errorf("item index %d out of range: %w", index, domain.ErrValidation)
	}
	c.Items = append(c.Items[:index], c.Items[index+1:]...)
	c.recompute()
	return nil
}

func (c *Cart) Reset() {
	c.Items = []domain.LineItem{}
	c.TotalAmount = 0
}

// recompute re-sums every line item from scratch. The total is never
// maintained incrementally, so repeated edits cannot accumulate
// floating-point drift.
func (c *Cart) recompute() {
	total := 0.0
	for _, item := range c.Items {
		total += item.TotalPrice
	}
	c.TotalAmount = total
}

func buildLineItem(req domain.ItemRequest) (domain.LineItem, error) {
	product := strings.TrimSpace(req.Product)
	if product == "" {
		return domain.LineItem{}, fmt.Errorf("product name is required: %w", domain.ErrValidation)
	}
	if req.Quantity <= 0 {
		return domain.LineItem{}, fmt.Errorf("quantity must be greater than zero: %w", domain.ErrValidation)
	}

	perKg := strings.TrimSpace(req.PricePerKg)
	perQty := strings.TrimSpace(req.PricePerQuantity)
	if perKg == RateNotApplicable {
		perKg = ""
	}
	if perQty == RateNotApplicable {
		perQty = ""
	}

	if perKg == "" && perQty == "" {
		return domain.LineItem{}, fmt.Errorf("either price per kg or price per quantity is required: %w", domain.ErrValidation)
	}
	if perKg != "" && perQty != "" {
		return domain.LineItem{}, fmt.Errorf("only one of price per kg or price per quantity may be set: %w", domain.ErrValidation)
	}

	rateText := perKg
	if rateText == "" {
		rateText = perQty
	}
	rate, err := strconv.ParseFloat(rateText, 64)
	if err != nil || rate <= 0 {
		return domain.LineItem{}, fmt.Errorf("price must be a positive number: %w", domain.ErrValidation)
	}

	totalPrice := rate * req.Quantity
	if totalPrice <= 0 {
		return domain.LineItem{}, fmt.Errorf("invalid quantity or price: %w", domain.ErrValidation)
	}

	item := domain.LineItem{
		Product:          product,
		PricePerKg:       RateNotApplicable,
		PricePerQuantity: RateNotApplicable,
		Quantity:         req.Quantity,
		TotalPrice:       totalPrice,
	}
	if perKg != "" {
		item.PricePerKg = rateText
	} else {
		item.PricePerQuantity = rateText
	}
	return item, nil
}
