package repository

import (
	"checkout/api/internal/domain"
	"checkout/api/internal/infra/postgres"
	"fmt"

	"gorm.io/gorm"
)

type OrdersRepo struct {
}

func InitOrdersRepo() *OrdersRepo {
	return &OrdersRepo{}
}

func (r *OrdersRepo) NextOrderNumber(tx *gorm.DB) (int64, error) {
	var n int64
	err := tx.Raw(fmt.Sprintf("SELECT nextval('%s')", postgres.ORDER_NUMBER_SEQ)).Scan(&n).Error
	return n, err
}

func (r *OrdersRepo) Create(tx *gorm.DB, order *domain.Orders) error {
	return tx.Create(order).Error
}

func (r *OrdersRepo) FindByNumber(tx *gorm.DB, orderNumber int64) (*domain.Orders, error) {
	var order domain.Orders
	return &order, tx.Where("order_number = ?", orderNumber).First(&order).Error
}

func (r *OrdersRepo) FindBySessionID(tx *gorm.DB, sessionId string) (*domain.Orders, error) {
	var order domain.Orders
	return &order, tx.Where("session_id = ?", sessionId).First(&order).Error
}
