package store

import (
	"context"
	"errors"
	"fmt"

	"order-system/apps/order/model"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// AutoMigrate creates or updates the order tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&model.OrderHeader{}, &model.OrderDetail{})
}

func (s *GormStore) CreateHeader(ctx context.Context, h *model.OrderHeader) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Omit(clause.Associations).Create(h).Error
	})
	if err != nil {
		return fmt.Errorf("create header: %w", err)
	}
	return nil
}

func (s *GormStore) GetHeader(ctx context.Context, id uint) (*model.OrderHeader, error) {
	var h model.OrderHeader
	if err := s.db.WithContext(ctx).First(&h, id).Error; err != nil {
		return nil, notFound("get header", err)
	}
	return &h, nil
}

func (s *GormStore) ListHeaders(ctx context.Context, filter HeaderFilter, page Page) ([]model.OrderHeader, int64, error) {
	query := s.db.WithContext(ctx).Model(&model.OrderHeader{})
	if filter.CustomerID > 0 {
		query = query.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.StartDate != nil {
		query = query.Where("order_date >= ?", *filter.StartDate)
	}
	if filter.EndDate != nil {
		query = query.Where("order_date <= ?", *filter.EndDate)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count headers: %w", err)
	}

	headers := make([]model.OrderHeader, 0)
	offset := page.Offset()
	if int64(offset) >= total {
		return headers, total, nil
	}
	err := query.Order("order_date desc").Order("order_id desc").
		Offset(offset).Limit(page.PerPage).
		Find(&headers).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list headers: %w", err)
	}
	return headers, total, nil
}

func (s *GormStore) CountHeaders(ctx context.Context) (int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&model.OrderHeader{}).Count(&total).Error; err != nil {
		return 0, fmt.Errorf("count headers: %w", err)
	}
	return total, nil
}

func (s *GormStore) UpdateHeader(ctx context.Context, h *model.OrderHeader) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.OrderHeader
		if err := tx.First(&existing, h.OrderID).Error; err != nil {
			return err
		}
		return tx.Omit(clause.Associations).Save(h).Error
	})
	return notFound("update header", err)
}

func (s *GormStore) DeleteHeader(ctx context.Context, id uint) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.OrderHeader
		if err := tx.First(&existing, id).Error; err != nil {
			return err
		}
		// cascade explicitly; SQLite only enforces FK actions with foreign_keys=ON
		if err := tx.Where("order_id = ?", id).Delete(&model.OrderDetail{}).Error; err != nil {
			return err
		}
		return tx.Delete(&existing).Error
	})
	return notFound("delete header", err)
}

func (s *GormStore) CreateDetail(ctx context.Context, d *model.OrderDetail) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var parent model.OrderHeader
		if err := tx.First(&parent, d.OrderID).Error; err != nil {
			return err
		}
		return tx.Create(d).Error
	})
	return notFound("create detail", err)
}

func (s *GormStore) GetDetail(ctx context.Context, id uint) (*model.OrderDetail, error) {
	var d model.OrderDetail
	if err := s.db.WithContext(ctx).First(&d, id).Error; err != nil {
		return nil, notFound("get detail", err)
	}
	return &d, nil
}

func (s *GormStore) ListDetails(ctx context.Context, orderID uint) ([]model.OrderDetail, error) {
	details := make([]model.OrderDetail, 0)
	err := s.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("detail_id asc").
		Find(&details).Error
	if err != nil {
		return nil, fmt.Errorf("list details: %w", err)
	}
	return details, nil
}

func (s *GormStore) UpdateDetail(ctx context.Context, d *model.OrderDetail) error {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing model.OrderDetail
		if err := tx.First(&existing, d.DetailID).Error; err != nil {
			return err
		}
		// a detail is never re-parented
		d.OrderID = existing.OrderID
		return tx.Save(d).Error
	})
	return notFound("update detail", err)
}

func (s *GormStore) DeleteDetail(ctx context.Context, id uint) error {
	result := s.db.WithContext(ctx).Delete(&model.OrderDetail{}, id)
	if result.Error != nil {
		return fmt.Errorf("delete detail: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("delete detail: %w", ErrNotFound)
	}
	return nil
}

// notFound wraps err with op, translating gorm's missing-row error into
// ErrNotFound. A nil err stays nil.
func notFound(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
