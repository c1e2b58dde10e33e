package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// first order number handed out by order_number_seq
const ORDER_NUMBER_START = 1001

type Orders struct {
	ID              uint            `gorm:"primaryKey"`
	OrderNumber     int64           `gorm:"uniqueIndex;not null"`
	SessionID       string          `gorm:"size:36;index;not null"`
	PayerContact    string          `gorm:"type:text"`
	ProductUrl      string          `gorm:"type:text"`
	ProductTitle    string          `gorm:"type:text"`
	ProductImage    string          `gorm:"type:text"`
	ProductCurrency string          `gorm:"size:8"`
	ProductPrice    decimal.Decimal `gorm:"type:numeric"`
	Shipping        string          `gorm:"type:text"` // json encoded Shipping
	TotalFiat       decimal.Decimal `gorm:"type:numeric"`
	Amount          decimal.Decimal `gorm:"type:numeric"` // settlement asset
	ShippingOrigin  string          `gorm:"size:8"`
	CreatedAt       time.Time
}

// product record produced by the scraper on the client side
type Product struct {
	Url      string          `json:"url" validate:"required,url,max=2048"`
	Title    string          `json:"title" validate:"required,max=512"`
	Price    decimal.Decimal `json:"price"`
	Currency string          `json:"currency" validate:"max=8"`
	Image    string          `json:"image" validate:"max=2048"`
}

type ShippingAddress struct {
	Street  string `json:"street" validate:"required,max=256"`
	City    string `json:"city" validate:"required,max=128"`
	State   string `json:"state" validate:"required,max=128"`
	Zip     string `json:"zip" validate:"required,max=32"`
	Country string `json:"country" validate:"required,max=64"`
}

type Shipping struct {
	Name    string          `json:"name" validate:"required,max=256"`
	Email   string          `json:"email" validate:"max=256"`
	Phone   string          `json:"phone" validate:"max=64"`
	Address ShippingAddress `json:"address" validate:"required"`
}
