// internal/infrastructure/database/postgres/tx_manager.go
package postgres

import (
	"context"

	"github.com/veggiefresh/grocery-backend/internal/domain/cart"
	"github.com/veggiefresh/grocery-backend/internal/domain/checkout"
	"github.com/veggiefresh/grocery-backend/internal/domain/order"
	"gorm.io/gorm"
)

type txRepos struct {
	orders order.Repository
	carts  cart.Repository
}

func (r *txRepos) Orders() order.Repository { return r.orders }
func (r *txRepos) Carts() cart.Repository   { return r.carts }

// TxManager runs checkout writes in one database transaction
type TxManager struct {
	db *gorm.DB
}

// NewTxManager creates a new transaction manager
func NewTxManager(db *gorm.DB) *TxManager {
	return &TxManager{db: db}
}

// WithinTx implements checkout.TransactionManager
func (tm *TxManager) WithinTx(ctx context.Context, fn func(r checkout.TxRepos) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// repositories are rebuilt on the transaction handle
		return fn(&txRepos{
			orders: NewOrderRepository(tx),
			carts:  NewCartRepository(tx),
		})
	})
}
