package store

import (
	"context"
	"errors"
	"math"
	"time"

	"order-system/apps/order/model"
)

var ErrNotFound = errors.New("record not found")

// HeaderFilter narrows a header listing. Zero values mean "no filter".
type HeaderFilter struct {
	CustomerID int64
	StartDate  *time.Time
	EndDate    *time.Time
}

// Page is a 1-based page request.
type Page struct {
	Number  int
	PerPage int
}

// Offset saturates at math.MaxInt for pages far past any result set.
func (p Page) Offset() int {
	if p.Number <= 1 || p.PerPage <= 0 {
		return 0
	}
	if p.Number-1 > math.MaxInt/p.PerPage {
		return math.MaxInt
	}
	return (p.Number - 1) * p.PerPage
}

// Store is the persistence boundary of the order service. Every write commits
// atomically or not at all.
type Store interface {
	CreateHeader(ctx context.Context, h *model.OrderHeader) error
	GetHeader(ctx context.Context, id uint) (*model.OrderHeader, error)
	ListHeaders(ctx context.Context, filter HeaderFilter, page Page) ([]model.OrderHeader, int64, error)
	CountHeaders(ctx context.Context) (int64, error)
	UpdateHeader(ctx context.Context, h *model.OrderHeader) error
	// DeleteHeader removes the header and every detail it owns.
	DeleteHeader(ctx context.Context, id uint) error

	CreateDetail(ctx context.Context, d *model.OrderDetail) error
	GetDetail(ctx context.Context, id uint) (*model.OrderDetail, error)
	ListDetails(ctx context.Context, orderID uint) ([]model.OrderDetail, error)
	UpdateDetail(ctx context.Context, d *model.OrderDetail) error
	DeleteDetail(ctx context.Context, id uint) error
}
