package service

import (
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"sync"
	"time"

	"storebill/backend/internal/cache"
	"storebill/backend/internal/cart"
	"storebill/backend/internal/domain"
	"storebill/backend/internal/receipt"
	"storebill/backend/internal/store"
	"storebill/backend/internal/xid"
)

// billDateFormat matches the locale-formatted timestamp the history table
// displays, e.g. "1/2/2006, 3:04:05 PM".
const billDateFormat = "1/2/2006, 3:04:05 PM"

var phonePattern = regexp.MustCompile(`^[0-9]{10}$`)

// Service drives the billing flow: drafts are held in process memory while a
// bill is being composed; only a saved bill reaches the repository. Losing
// drafts on restart is intended, a cart exists only during composition.
type Service struct {
	repo       store.Repository
	receipts   cache.ReceiptCache
	receiptTTL time.Duration

	mu     sync.Mutex
	drafts map[string]*draft
}

type draft struct {
	id          string
	username    string
	phoneNumber string
	cart        *cart.Cart
	startedAt   time.Time
}

func New(repo store.Repository, receipts cache.ReceiptCache, receiptTTL time.Duration) *Service {
	if receipts == nil {
		receipts = cache.NoopReceiptCache{}
	}
	if receiptTTL <= 0 {
		receiptTTL = 5 * time.Minute
	}

	return &Service{
		repo:       repo,
		receipts:   receipts,
		receiptTTL: receiptTTL,
		drafts:     make(map[string]*draft),
	}
}

// StartBill opens a new draft once the customer fields pass validation: a
// non-empty name and a phone number of exactly 10 digits.
func (s *Service) StartBill(_ context.Context, req domain.StartBillRequest) (domain.DraftBill, error) {
	username := strings.TrimSpace(req.Username)
	phone := strings.TrimSpace(req.PhoneNumber)

	if username == "" || phone == "" {
		return domain.DraftBill{}, fmt.Errorf("customer name and phone number are required: %w", domain.ErrValidation)
	}
	if !phonePattern.MatchString(phone) {
		return domain.DraftBill{}, fmt.Errorf("phone number must be exactly 10 digits: %w", domain.ErrValidation)
	}

	d := &draft{
		id:          xid.New("draft"),
		username:    username,
		phoneNumber: phone,
		cart:        cart.New(),
		startedAt:   time.Now().UTC(),
	}

	s.mu.Lock()
	s.drafts[d.id] = d
	s.mu.Unlock()

	return d.snapshot(), nil
}

func (s *Service) GetDraft(_ context.Context, draftID string) (domain.DraftBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.lookupDraft(draftID)
	if err != nil {
		return domain.DraftBill{}, err
	}
	return d.snapshot(), nil
}

// DiscardDraft drops an in-progress cart, the navigation-away path.
func (s *Service) DiscardDraft(_ context.Context, draftID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.lookupDraft(draftID); err != nil {
		return err
	}
	delete(s.drafts, draftID)
	return nil
}

func (s *Service) AddItem(_ context.Context, draftID string, req domain.ItemRequest) (domain.DraftBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.lookupDraft(draftID)
	if err != nil {
		return domain.DraftBill{}, err
	}
	if err := d.cart.AddItem(req); err != nil {
		return domain.DraftBill{}, err
	}
	return d.snapshot(), nil
}

func (s *Service) UpdateItem(_ context.Context, draftID string, index int, req domain.ItemRequest) (domain.DraftBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.lookupDraft(draftID)
	if err != nil {
		return domain.DraftBill{}, err
	}
	if err := d.cart.UpdateItem(index, req); err != nil {
		return domain.DraftBill{}, err
	}
	return d.snapshot(), nil
}

func (s *Service) RemoveItem(_ context.Context, draftID string, index int) (domain.DraftBill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, err := s.lookupDraft(draftID)
	if err != nil {
		return domain.DraftBill{}, err
	}
	if err := d.cart.RemoveItem(index); err != nil {
		return domain.DraftBill{}, err
	}
	return d.snapshot(), nil
}

// SaveBill snapshots the draft into a bill, appends it to the history and
// renders the receipt. The draft is claimed under the lock before the write,
// so a double-submitted save observes not-found instead of appending twice.
// A failed append restores the draft so the user may retry; a failed render
// still leaves the bill saved.
func (s *Service) SaveBill(ctx context.Context, draftID string) (domain.SavedBillResponse, error) {
	s.mu.Lock()
	d, err := s.lookupDraft(draftID)
	if err != nil {
		s.mu.Unlock()
		return domain.SavedBillResponse{}, err
	}

	if d.cart.TotalAmount <= 0 {
		s.mu.Unlock()
		return domain.SavedBillResponse{}, fmt.Errorf("total amount is 0, cannot save the bill: %w", domain.ErrValidation)
	}

	now := time.Now()
	bill := domain.Bill{
		Username:    d.username,
		PhoneNumber: d.phoneNumber,
		CartItems:   append([]domain.LineItem(nil), d.cart.Items...),
		TotalAmount: d.cart.TotalAmount,
		Date:        now.Format(billDateFormat),
	}
	delete(s.drafts, draftID)
	s.mu.Unlock()

	saved, err := s.repo.AppendBill(ctx, bill)
	if err != nil {
		// Nothing was persisted; put the draft back so the user may retry.
		s.mu.Lock()
		s.drafts[draftID] = d
		s.mu.Unlock()
		return domain.SavedBillResponse{}, fmt.Errorf("save bill: %w", err)
	}

	pdf, err := receipt.Render(*saved)
	if err != nil {
		// The bill is already persisted; only the receipt output failed.
		return domain.SavedBillResponse{}, err
	}
	s.cacheReceipt(ctx, saved.ID, pdf)

	if actor, ok := ActorFromContext(ctx); ok {
		slog.Info("bill saved", "bill_id", saved.ID, "total", saved.TotalAmount, "by", actor.Gmail)
	}

	return domain.SavedBillResponse{
		Bill:            *saved,
		ReceiptFileName: receipt.FileName(*saved, now),
	}, nil
}

func (s *Service) ListBills(ctx context.Context) (domain.BillHistoryResponse, error) {
	bills, err := s.repo.ListBills(ctx)
	if err != nil {
		return domain.BillHistoryResponse{}, err
	}
	return domain.BillHistoryResponse{Bills: bills}, nil
}

func (s *Service) DeleteBill(ctx context.Context, index int) error {
	return s.repo.DeleteBill(ctx, index)
}

// BillReceipt renders (or re-renders) the receipt for the bill at the given
// history index. Cached bytes are reused; the file name is stamped fresh on
// every call.
func (s *Service) BillReceipt(ctx context.Context, index int) ([]byte, string, error) {
	bill, err := s.repo.GetBill(ctx, index)
	if err != nil {
		return nil, "", err
	}

	fileName := receipt.FileName(*bill, time.Now())

	if bill.ID != "" {
		if cached, ok, err := s.receipts.Get(ctx, receiptKey(bill.ID)); err != nil {
			slog.Warn("receipt cache read failed", "bill_id", bill.ID, "error", err)
		} else if ok {
			return cached, fileName, nil
		}
	}

	pdf, err := receipt.Render(*bill)
	if err != nil {
		return nil, "", err
	}
	s.cacheReceipt(ctx, bill.ID, pdf)

	return pdf, fileName, nil
}

func (s *Service) lookupDraft(draftID string) (*draft, error) {
	d, ok := s.drafts[strings.TrimSpace(draftID)]
	if !ok {
		return nil, fmt.Errorf("draft bill %q: %w", draftID, domain.ErrNotFound)
	}
	return d, nil
}

func (s *Service) cacheReceipt(ctx context.Context, billID string, pdf []byte) {
	if billID == "" {
		return
	}
	if err := s.receipts.Set(ctx, receiptKey(billID), pdf, s.receiptTTL); err != nil {
		slog.Warn("receipt cache write failed", "bill_id", billID, "error", err)
	}
}

func receiptKey(billID string) string {
	return "receipt:" + billID
}

func (d *draft) snapshot() domain.DraftBill {
	return domain.DraftBill{
		ID:          d.id,
		Username:    d.username,
		PhoneNumber: d.phoneNumber,
		CartItems:   append([]domain.LineItem(nil), d.cart.Items...),
		TotalAmount: d.cart.TotalAmount,
		StartedAt:   d.startedAt,
	}
}
