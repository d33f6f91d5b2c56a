package httpapi

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"storebill/backend/internal/domain"
)

// AuthManager owns account registration, credential checks and the session
// tokens handed to the billing views. Accounts live in the injected store;
// a credential cache avoids re-reading the blob on every token parse.
type AuthManager struct {
	mu       sync.RWMutex
	secret   []byte
	tokenTTL time.Duration
	accounts AccountStore
	creds    map[string]credential
}

// AccountStore is the slice of the repository the AuthManager needs.
type AccountStore interface {
	CreateAccount(ctx context.Context, account domain.Account) error
	ListAccounts(ctx context.Context) ([]domain.Account, error)
	UpdateAccountPassword(ctx context.Context, gmail string, password string) error
	SetSession(ctx context.Context, session domain.Session) error
	GetSession(ctx context.Context) (domain.Session, error)
	ClearSession(ctx context.Context) error
}

type credential struct {
	name     string
	shopName string
	password string
}

type billingClaims struct {
	jwtlib.RegisteredClaims
	Name     string `json:"name"`
	ShopName string `json:"shop_name"`
}

func NewAuthManager(secret string, tokenTTL time.Duration, accounts AccountStore) *AuthManager {
	if secret == "" {
		secret = "dev-change-me"
	}
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}

	manager := &AuthManager{
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		accounts: accounts,
		creds:    make(map[string]credential),
	}
	// Startup load, before any request context exists.
	manager.bootstrapAccounts(context.Background())
	return manager
}

// Register creates a new account. All four fields are required; the gmail
// must not already be registered.
func (a *AuthManager) Register(ctx context.Context, req domain.CreateAccountRequest) (domain.AccountInfo, error) {
	name := strings.TrimSpace(req.Name)
	shopName := strings.TrimSpace(req.ShopName)
	gmail := strings.ToLower(strings.TrimSpace(req.Gmail))
	password := strings.TrimSpace(req.Password)

	if name == "" || shopName == "" || gmail == "" || password == "" {
		return domain.AccountInfo{}, fmt.Errorf("all fields are required: %w", domain.ErrValidation)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return domain.AccountInfo{}, fmt.Errorf("hash password: %w", err)
	}

	if err := a.accounts.CreateAccount(ctx, domain.Account{
		Name:     name,
		ShopName: shopName,
		Gmail:    gmail,
		Password: hash,
	}); err != nil {
		return domain.AccountInfo{}, err
	}

	a.mu.Lock()
	a.creds[gmail] = credential{name: name, shopName: shopName, password: hash}
	a.mu.Unlock()

	return domain.AccountInfo{Name: name, ShopName: shopName, Gmail: gmail}, nil
}

// Login checks the credentials, persists the session flags and returns a
// signed access token carrying the account's name and shop name.
func (a *AuthManager) Login(ctx context.Context, req domain.LoginRequest) (domain.LoginResponse, error) {
	a.bootstrapAccounts(ctx)

	gmail := strings.ToLower(strings.TrimSpace(req.Gmail))
	a.mu.RLock()
	cred, ok := a.creds[gmail]
	a.mu.RUnlock()
	if !ok {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}
	if !verifyPassword(cred.password, req.Password) {
		return domain.LoginResponse{}, domain.ErrInvalidCredentials
	}

	expiresAt := time.Now().UTC().Add(a.tokenTTL)
	token, err := a.sign(gmail, cred, expiresAt)
	if err != nil {
		return domain.LoginResponse{}, err
	}

	if err := a.accounts.SetSession(ctx, domain.Session{IsLoggedIn: true, ShopName: cred.shopName}); err != nil {
		slog.Warn("failed to persist session flags", "error", err)
	}

	return domain.LoginResponse{
		AccessToken: token,
		Name:        cred.name,
		ShopName:    cred.shopName,
		ExpiresAt:   expiresAt.Format(time.RFC3339),
	}, nil
}

func (a *AuthManager) Logout(ctx context.Context) error {
	return a.accounts.ClearSession(ctx)
}

func (a *AuthManager) Session(ctx context.Context) (domain.Session, error) {
	return a.accounts.GetSession(ctx)
}

func (a *AuthManager) ParseToken(tokenStr string) (domain.Actor, error) {
	claims := &billingClaims{}
	token, err := jwtlib.ParseWithClaims(tokenStr, claims, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return a.secret, nil
	}, jwtlib.WithValidMethods([]string{"HS256"}))
	if err != nil || !token.Valid {
		return domain.Actor{}, errors.New("invalid or expired token")
	}
	sub, err := claims.GetSubject()
	if err != nil || sub == "" {
		return domain.Actor{}, errors.New("invalid token subject")
	}
	return domain.Actor{Gmail: sub, Name: claims.Name, ShopName: claims.ShopName}, nil
}

func (a *AuthManager) sign(gmail string, cred credential, expiresAt time.Time) (string, error) {
	claims := billingClaims{
		RegisteredClaims: jwtlib.RegisteredClaims{
			Subject:   gmail,
			IssuedAt:  jwtlib.NewNumericDate(time.Now().UTC()),
			ExpiresAt: jwtlib.NewNumericDate(expiresAt),
			Issuer:    "storebill",
		},
		Name:     cred.name,
		ShopName: cred.shopName,
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(a.secret)
}

// bootstrapAccounts loads accounts from the store into the credential cache.
// Legacy records that still carry a plain-text password are upgraded to a
// bcrypt hash in the store as they are seen.
func (a *AuthManager) bootstrapAccounts(ctx context.Context) {
	if a.accounts == nil {
		return
	}

	accounts, err := a.accounts.ListAccounts(ctx)
	if err != nil || len(accounts) == 0 {
		return
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	for _, account := range accounts {
		gmail := strings.ToLower(strings.TrimSpace(account.Gmail))
		if gmail == "" {
			continue
		}
		password := account.Password
		if !isPasswordHash(password) {
			hashed, err := hashPassword(password)
			if err == nil {
				password = hashed
				_ = a.accounts.UpdateAccountPassword(ctx, gmail, hashed)
			}
		}
		a.creds[gmail] = credential{
			name:     account.Name,
			shopName: account.ShopName,
			password: password,
		}
	}
}

// verifyPassword trims the input the same way Register trims before hashing,
// so surrounding whitespace never makes a password unmatchable.
func verifyPassword(stored string, input string) bool {
	input = strings.TrimSpace(input)
	if stored == "" || input == "" || !isPasswordHash(stored) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(input)) == nil
}

func hashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

func isPasswordHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") || strings.HasPrefix(value, "$2b$") || strings.HasPrefix(value, "$2y$")
}
