package cart

import (
	"errors"
	"testing"

	"storebill/backend/internal/domain"
)

func TestAddItemComputesTotals(t *testing.T) {
	c := New()

	if err := c.AddItem(domain.ItemRequest{Product: "Rice", PricePerKg: "40", Quantity: 5}); err != nil {
		t.Fatalf("add rice failed: %v", err)
	}
	if got := c.Items[0].TotalPrice; got != 200 {
		t.Fatalf("expected rice total 200.00, got %.2f", got)
	}
	if c.Items[0].PricePerQuantity != RateNotApplicable {
		t.Fatalf("expected unused rate to be %q, got %q", RateNotApplicable, c.Items[0].PricePerQuantity)
	}

	if err := c.AddItem(domain.ItemRequest{Product: "Sugar", PricePerQuantity: "20", Quantity: 3}); err != nil {
		t.Fatalf("add sugar failed: %v", err)
	}
	if got := c.Items[1].TotalPrice; got != 60 {
		t.Fatalf("expected sugar total 60.00, got %.2f", got)
	}

	if c.TotalAmount != 260 {
		t.Fatalf("expected cart total 260.00, got %.2f", c.TotalAmount)
	}
}

func TestAddItemValidation(t *testing.T) {
	cases := []struct {
		name string
		req  domain.ItemRequest
	}{
		{"empty product", domain.ItemRequest{PricePerKg: "10", Quantity: 1}},
		{"blank product", domain.ItemRequest{Product: "   ", PricePerKg: "10", Quantity: 1}},
		{"zero quantity", domain.ItemRequest{Product: "Rice", PricePerKg: "10"}},
		{"negative quantity", domain.ItemRequest{Product: "Rice", PricePerKg: "10", Quantity: -2}},
		{"no rate", domain.ItemRequest{Product: "Rice", Quantity: 1}},
		{"both rates", domain.ItemRequest{Product: "Rice", PricePerKg: "10", PricePerQuantity: "5", Quantity: 1}},
		{"non-numeric rate", domain.ItemRequest{Product: "Rice", PricePerKg: "cheap", Quantity: 1}},
		{"zero rate", domain.ItemRequest{Product: "Rice", PricePerKg: "0", Quantity: 1}},
		{"negative rate", domain.ItemRequest{Product: "Rice", PricePerQuantity: "-4", Quantity: 1}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := New()
			err := c.AddItem(tc.req)
			if !errors.Is(err, domain.ErrValidation) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if len(c.Items) != 0 || c.TotalAmount != 0 {
				t.Fatalf("expected cart untouched after rejection, got %d items total %.2f", len(c.Items), c.TotalAmount)
			}
		})
	}
}

func TestRemoveItemRecomputesTotal(t *testing.T) {
	c := New()
	for _, req := range []domain.ItemRequest{
		{Product: "Rice", PricePerKg: "40", Quantity: 5},
		{Product: "Sugar", PricePerQuantity: "20", Quantity: 3},
		{Product: "Tea", PricePerQuantity: "15", Quantity: 2},
	} {
		if err := c.AddItem(req); err != nil {
			t.Fatalf("add %s failed: %v", req.Product, err)
		}
	}

	if err := c.RemoveItem(1); err != nil {
		t.Fatalf("remove failed: %v", err)
	}

	if len(c.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(c.Items))
	}
	if c.Items[0].Product != "Rice" || c.Items[1].Product != "Tea" {
		t.Fatalf("expected remaining items Rice and Tea, got %s and %s", c.Items[0].Product, c.Items[1].Product)
	}
	// Same total as if Sugar had never been added.
	if c.TotalAmount != 230 {
		t.Fatalf("expected total 230.00, got %.2f", c.TotalAmount)
	}

	if err := c.RemoveItem(5); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected out-of-range remove to fail validation, got %v", err)
	}
}

func TestUpdateItemReplacesInPlace(t *testing.T) {
	c := New()
	if err := c.AddItem(domain.ItemRequest{Product: "Rice", PricePerKg: "40", Quantity: 5}); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if err := c.AddItem(domain.ItemRequest{Product: "Sugar", PricePerQuantity: "20", Quantity: 3}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	if err := c.UpdateItem(0, domain.ItemRequest{Product: "Basmati Rice", PricePerKg: "80", Quantity: 2}); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if c.Items[0].Product != "Basmati Rice" || c.Items[0].TotalPrice != 160 {
		t.Fatalf("expected replaced item with total 160.00, got %s %.2f", c.Items[0].Product, c.Items[0].TotalPrice)
	}
	if c.TotalAmount != 220 {
		t.Fatalf("expected total 220.00 after update, got %.2f", c.TotalAmount)
	}

	err := c.UpdateItem(2, domain.ItemRequest{Product: "Tea", PricePerKg: "10", Quantity: 1})
	if !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("expected out-of-range update to fail validation, got %v", err)
	}
}

func TestTotalIndependentOfAddOrder(t *testing.T) {
	reqs := []domain.ItemRequest{
		{Product: "Rice", PricePerKg: "40.5", Quantity: 3},
		{Product: "Sugar", PricePerQuantity: "19.99", Quantity: 7},
		{Product: "Oil", PricePerKg: "120", Quantity: 1.5},
	}

	forward := New()
	for _, req := range reqs {
		if err := forward.AddItem(req); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	backward := New()
	for i := len(reqs) - 1; i >= 0; i-- {
		if err := backward.AddItem(reqs[i]); err != nil {
			t.Fatalf("add failed: %v", err)
		}
	}

	if forward.TotalAmount != backward.TotalAmount {
		t.Fatalf("expected order-independent total, got %.6f vs %.6f", forward.TotalAmount, backward.TotalAmount)
	}
}

func TestResetEmptiesCart(t *testing.T) {
	c := New()
	if err := c.AddItem(domain.ItemRequest{Product: "Rice", PricePerKg: "40", Quantity: 5}); err != nil {
		t.Fatalf("add failed: %v", err)
	}

	c.Reset()

	if len(c.Items) != 0 || c.TotalAmount != 0 {
		t.Fatalf("expected empty cart after reset, got %d items total %.2f", len(c.Items), c.TotalAmount)
	}
}
