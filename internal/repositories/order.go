package repositories

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "mealpay/internal/errors"
	"mealpay/internal/models"
)

// OrderRepository persists marketplace orders.
type OrderRepository interface {
	Create(ctx context.Context, order *models.Order) error
	FindByReference(ctx context.Context, reference string) (*models.Order, error)
	FindByIdempotencyKey(ctx context.Context, buyerID uint, key string) (*models.Order, error)
	ListBySeller(ctx context.Context, sellerID uint, limit, offset int) ([]models.Order, int64, error)
	ListByBuyer(ctx context.Context, buyerID uint, limit, offset int) ([]models.Order, int64, error)
}

type orderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) OrderRepository {
	return &orderRepository{db: db}
}

func (r *orderRepository) Create(ctx context.Context, order *models.Order) error {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		return mapCreateError(err)
	}
	return nil
}

func (r *orderRepository) FindByReference(ctx context.Context, reference string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&order).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &order, nil
}

func (r *orderRepository) FindByIdempotencyKey(ctx context.Context, buyerID uint, key string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("buyer_id = ? AND idempotency_key = ?", buyerID, key).
		First(&order).Error
	if err != nil {
		return nil, mapNotFound(err)
	}
	return &order, nil
}

func (r *orderRepository) ListBySeller(ctx context.Context, sellerID uint, limit, offset int) ([]models.Order, int64, error) {
	return r.list(ctx, "seller_id = ?", sellerID, limit, offset)
}

func (r *orderRepository) ListByBuyer(ctx context.Context, buyerID uint, limit, offset int) ([]models.Order, int64, error) {
	return r.list(ctx, "buyer_id = ?", buyerID, limit, offset)
}

func (r *orderRepository) list(ctx context.Context, cond string, id uint, limit, offset int) ([]models.Order, int64, error) {
	var (
		orders []models.Order
		total  int64
	)
	db := r.db.WithContext(ctx)
	if err := db.Model(&models.Order{}).Where(cond, id).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("count orders: %w", err)
	}
	err := db.Where(cond, id).Order("created_at DESC").Limit(limit).Offset(offset).Find(&orders).Error
	if err != nil {
		return nil, 0, fmt.Errorf("list orders: %w", err)
	}
	return orders, total, nil
}

// mapCreateError reports unique-index violations as ErrDuplicateOrder. It
// relies on gorm.Config.TranslateError, which InitDB sets.
func mapCreateError(err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return apperrors.ErrDuplicateOrder.WithDetail("%v", err)
	}
	return fmt.Errorf("create order: %w", err)
}

func mapNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.ErrOrderNotFound
	}
	return fmt.Errorf("query order: %w", err)
}
