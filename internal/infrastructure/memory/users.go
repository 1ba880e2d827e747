package memory

import (
	"context"
	"sync"

	domain "github.com/gurungd265/webshop/app/internal/domain/user"
)

// UserProvider is an in-memory identity and address book.
type UserProvider struct {
	mu        sync.RWMutex
	users     map[string]*domain.User    // email -> user
	addresses map[string]*domain.Address // address id -> address
}

func NewUserProvider() *UserProvider {
	return &UserProvider{
		users:     make(map[string]*domain.User),
		addresses: make(map[string]*domain.Address),
	}
}

func (u *UserProvider) PutUser(user *domain.User) {
	u.mu.Lock()
	defer u.mu.Unlock()
	clone := *user
	u.users[user.Email] = &clone
}

func (u *UserProvider) PutAddress(addr *domain.Address) {
	u.mu.Lock()
	defer u.mu.Unlock()
	clone := *addr
	u.addresses[addr.ID] = &clone
}

func (u *UserProvider) FindUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	_ = ctx

	u.mu.RLock()
	defer u.mu.RUnlock()

	usr, ok := u.users[email]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	clone := *usr
	return &clone, nil
}

func (u *UserProvider) FindAddress(ctx context.Context, id string) (*domain.Address, error) {
	_ = ctx

	u.mu.RLock()
	defer u.mu.RUnlock()

	addr, ok := u.addresses[id]
	if !ok {
		return nil, domain.ErrAddressNotFound
	}
	clone := *addr
	return &clone, nil
}
