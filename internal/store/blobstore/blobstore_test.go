package blobstore

import (
	"context"
	"errors"
	"testing"

	"storebill/backend/internal/domain"
	"storebill/backend/internal/kv"
)

func newTestStore() *Store {
	return New(kv.NewMemory())
}

func sampleBill(name string, total float64) domain.Bill {
	return domain.Bill{
		Username:    name,
		PhoneNumber: "9876543210",
		CartItems: []domain.LineItem{
			{Product: "Rice", PricePerKg: "40", PricePerQuantity: "N/A", Quantity: total / 40, TotalPrice: total},
		},
		TotalAmount: total,
		Date:        "8/28/2026, 10:15:00 AM",
	}
}

func TestListBillsEmptyWhenNothingStored(t *testing.T) {
	s := newTestStore()

	bills, err := s.ListBills(context.Background())
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if bills == nil || len(bills) != 0 {
		t.Fatalf("expected empty non-nil history, got %#v", bills)
	}
}

func TestAppendAndListBills(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	saved, err := s.AppendBill(ctx, sampleBill("Asha", 200))
	if err != nil {
		t.Fatalf("append failed: %v", err)
	}
	if saved.ID == "" {
		t.Fatalf("expected an assigned bill id")
	}

	bills, err := s.ListBills(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(bills) != 1 {
		t.Fatalf("expected 1 bill, got %d", len(bills))
	}
	got := bills[0]
	if got.ID != saved.ID || got.Username != "Asha" || got.TotalAmount != 200 {
		t.Fatalf("round-trip mismatch: %#v", got)
	}
	if len(got.CartItems) != 1 || got.CartItems[0].Product != "Rice" {
		t.Fatalf("cart items did not survive the round trip: %#v", got.CartItems)
	}
}

func TestDeleteBillShiftsLaterIndices(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		if _, err := s.AppendBill(ctx, sampleBill(name, 100)); err != nil {
			t.Fatalf("append %s failed: %v", name, err)
		}
	}

	if err := s.DeleteBill(ctx, 1); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	bills, err := s.ListBills(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(bills) != 2 {
		t.Fatalf("expected 2 bills, got %d", len(bills))
	}
	if bills[0].Username != "first" || bills[1].Username != "third" {
		t.Fatalf("expected first and third to remain in order, got %s and %s", bills[0].Username, bills[1].Username)
	}

	if err := s.DeleteBill(ctx, 7); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for out-of-range delete, got %v", err)
	}
	if err := s.DeleteBill(ctx, -1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for negative index, got %v", err)
	}
}

func TestGetBillByIndex(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	if _, err := s.AppendBill(ctx, sampleBill("Asha", 260)); err != nil {
		t.Fatalf("append failed: %v", err)
	}

	bill, err := s.GetBill(ctx, 0)
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if bill.Username != "Asha" {
		t.Fatalf("expected Asha, got %s", bill.Username)
	}

	if _, err := s.GetBill(ctx, 1); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for missing index, got %v", err)
	}
}

func TestCreateAccountRejectsDuplicateGmail(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	account := domain.Account{Name: "Asha", ShopName: "Asha Stores", Gmail: "asha@gmail.com", Password: "hash"}
	if err := s.CreateAccount(ctx, account); err != nil {
		t.Fatalf("first create failed: %v", err)
	}

	dup := account
	dup.Gmail = "ASHA@Gmail.com"
	if err := s.CreateAccount(ctx, dup); !errors.Is(err, domain.ErrDuplicateAccount) {
		t.Fatalf("expected duplicate account error, got %v", err)
	}

	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("list accounts failed: %v", err)
	}
	if len(accounts) != 1 {
		t.Fatalf("expected the duplicate to be rejected, got %d accounts", len(accounts))
	}
}

func TestUpdateAccountPassword(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	if err := s.CreateAccount(ctx, domain.Account{Name: "Asha", Gmail: "asha@gmail.com", Password: "old"}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	if err := s.UpdateAccountPassword(ctx, "Asha@Gmail.com", "new-hash"); err != nil {
		t.Fatalf("update failed: %v", err)
	}

	accounts, err := s.ListAccounts(ctx)
	if err != nil {
		t.Fatalf("list accounts failed: %v", err)
	}
	if accounts[0].Password != "new-hash" {
		t.Fatalf("expected password replaced, got %q", accounts[0].Password)
	}

	if err := s.UpdateAccountPassword(ctx, "nobody@gmail.com", "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected not found for unknown gmail, got %v", err)
	}
}

func TestSessionRoundTrip(t *testing.T) {
	s := newTestStore()
	ctx := context.Background()

	session, err := s.GetSession(ctx)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if session.IsLoggedIn || session.ShopName != "" {
		t.Fatalf("expected zero session before login, got %#v", session)
	}

	if err := s.SetSession(ctx, domain.Session{IsLoggedIn: true, ShopName: "Asha Stores"}); err != nil {
		t.Fatalf("set session failed: %v", err)
	}

	session, err = s.GetSession(ctx)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if !session.IsLoggedIn || session.ShopName != "Asha Stores" {
		t.Fatalf("unexpected session after login: %#v", session)
	}

	if err := s.ClearSession(ctx); err != nil {
		t.Fatalf("clear session failed: %v", err)
	}

	session, err = s.GetSession(ctx)
	if err != nil {
		t.Fatalf("get session failed: %v", err)
	}
	if session.IsLoggedIn || session.ShopName != "" {
		t.Fatalf("expected cleared session, got %#v", session)
	}
}
