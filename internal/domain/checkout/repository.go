// internal/domain/checkout/repository.go
package checkout

import (
	"context"

	"github.com/veggiefresh/grocery-backend/internal/domain/cart"
	"github.com/veggiefresh/grocery-backend/internal/domain/order"
	"github.com/veggiefresh/grocery-backend/internal/domain/user"
)

// TxRepos are the repositories bound to one transaction
type TxRepos interface {
	Orders() order.Repository
	Carts() cart.Repository
}

// TransactionManager runs fn inside a single database transaction
type TransactionManager interface {
	WithinTx(ctx context.Context, fn func(r TxRepos) error) error
}

// AddressBook resolves a user's saved addresses
type AddressBook interface {
	GetAddress(ctx context.Context, userID, addressID uint) (*user.Address, error)
}
