// Package blobstore implements store.Repository over a kv.Store. Each record
// set lives under one key as a single JSON blob; every mutation is a
// read-entire-blob, modify, write-entire-blob cycle. A process-level mutex
// serializes those cycles; across processes the store is last-writer-wins.
package blobstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"storebill/backend/internal/domain"
	"storebill/backend/internal/kv"
	"storebill/backend/internal/store"
	"storebill/backend/internal/xid"
)

const (
	keyUsers       = "users"
	keyBillHistory = "billHistory"
	keyIsLoggedIn  = "isLoggedIn"
	keyShopName    = "shopName"
)

var _ store.Repository = (*Store)(nil)

type Store struct {
	mu sync.Mutex
	kv kv.Store
}

func New(kvStore kv.Store) *Store {
	return &Store{kv: kvStore}
}

func (s *Store) ListBills(ctx context.Context) ([]domain.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readBills(ctx)
}

func (s *Store) AppendBill(ctx context.Context, bill domain.Bill) (*domain.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bills, err := s.readBills(ctx)
	if err != nil {
		return nil, err
	}

	if bill.ID == "" {
		bill.ID = xid.New("bill")
	}
	bills = append(bills, bill)

	if err := s.writeJSON(ctx, keyBillHistory, bills); err != nil {
		return nil, err
	}
	saved := bill
	return &saved, nil
}

func (s *Store) GetBill(ctx context.Context, index int) (*domain.Bill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	bills, err := s.readBills(ctx)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(bills) {
		return nil, domain.ErrNotFound
	}
	bill := bills[index]
	return &bill, nil
}

// DeleteBill splices out the element at index; every later bill keeps its
// data and moves down one position.
func (s *Store) DeleteBill(ctx context.Context, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	bills, err := s.readBills(ctx)
	if err != nil {
		return err
	}
	if index < 0 || index >= len(bills) {
		return domain.ErrNotFound
	}

	bills = append(bills[:index], bills[index+1:]...)
	return s.writeJSON(ctx, keyBillHistory, bills)
}

func (s *Store) CreateAccount(ctx context.Context, account domain.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.readAccounts(ctx)
	if err != nil {
		return err
	}

	gmail := strings.ToLower(strings.TrimSpace(account.Gmail))
	for _, existing := range accounts {
		if strings.ToLower(existing.Gmail) == gmail {
			return domain.ErrDuplicateAccount
		}
	}

	accounts = append(accounts, account)
	return s.writeJSON(ctx, keyUsers, accounts)
}

func (s *Store) ListAccounts(ctx context.Context) ([]domain.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readAccounts(ctx)
}

func (s *Store) UpdateAccountPassword(ctx context.Context, gmail string, password string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	accounts, err := s.readAccounts(ctx)
	if err != nil {
		return err
	}

	gmail = strings.ToLower(strings.TrimSpace(gmail))
	for i := range accounts {
		if strings.ToLower(accounts[i].Gmail) == gmail {
			accounts[i].Password = password
			return s.writeJSON(ctx, keyUsers, accounts)
		}
	}
	return domain.ErrNotFound
}

func (s *Store) SetSession(ctx context.Context, session domain.Session) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.writeJSON(ctx, keyIsLoggedIn, session.IsLoggedIn); err != nil {
		return err
	}
	return s.writeJSON(ctx, keyShopName, session.ShopName)
}

func (s *Store) GetSession(ctx context.Context) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var session domain.Session

	raw, err := s.kv.Get(ctx, keyIsLoggedIn)
	if errors.Is(err, kv.ErrNoRecord) {
		return session, nil
	}
	if err != nil {
		return session, err
	}
	if err := json.Unmarshal(raw, &session.IsLoggedIn); err != nil {
		return domain.Session{}, fmt.Errorf("decode %s: %w", keyIsLoggedIn, err)
	}

	raw, err = s.kv.Get(ctx, keyShopName)
	if errors.Is(err, kv.ErrNoRecord) {
		return session, nil
	}
	if err != nil {
		return domain.Session{}, err
	}
	if err := json.Unmarshal(raw, &session.ShopName); err != nil {
		return domain.Session{}, fmt.Errorf("decode %s: %w", keyShopName, err)
	}

	return session, nil
}

func (s *Store) ClearSession(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.kv.Delete(ctx, keyIsLoggedIn); err != nil {
		return err
	}
	return s.kv.Delete(ctx, keyShopName)
}

// readBills returns the persisted history in storage order. An absent blob is
// an empty history, not an error.
func (s *Store) readBills(ctx context.Context) ([]domain.Bill, error) {
	var bills []domain.Bill
	if err := s.readJSON(ctx, keyBillHistory, &bills); err != nil {
		return nil, err
	}
	if bills == nil {
		bills = []domain.Bill{}
	}
	return bills, nil
}

func (s *Store) readAccounts(ctx context.Context) ([]domain.Account, error) {
	var accounts []domain.Account
	if err := s.readJSON(ctx, keyUsers, &accounts); err != nil {
		return nil, err
	}
	if accounts == nil {
		accounts = []domain.Account{}
	}
	return accounts, nil
}

func (s *Store) readJSON(ctx context.Context, key string, dest any) error {
	raw, err := s.kv.Get(ctx, key)
	if errors.Is(err, kv.ErrNoRecord) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", key, err)
	}
	if err := json.Unmarshal(raw, dest); err != nil {
		return fmt.Errorf("decode %s: %w", key, err)
	}
	return nil
}

func (s *Store) writeJSON(ctx context.Context, key string, value any) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	if err := s.kv.Set(ctx, key, payload); err != nil {
		return fmt.Errorf("write %s: %w", key, err)
	}
	return nil
}
