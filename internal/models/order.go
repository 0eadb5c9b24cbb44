package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusShipped   OrderStatus = "SHIPPED"
	OrderStatusDelivered OrderStatus = "DELIVERED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

func (s OrderStatus) Valid() bool {
	switch s {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusShipped, OrderStatusDelivered, OrderStatusCancelled:
		return true
	}
	return false
}

type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "PENDING"
	PaymentStatusPaid     PaymentStatus = "PAID"
	PaymentStatusFailed   PaymentStatus = "FAILED"
	PaymentStatusRefunded PaymentStatus = "REFUNDED"
)

func (s PaymentStatus) Valid() bool {
	switch s {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed, PaymentStatusRefunded:
		return true
	}
	return false
}

// UnknownShippingField is stored for region/address when checkout omits them.
const UnknownShippingField = "Unknown"

// Order is the immutable record of a checkout. Only Status and PaymentStatus
// change after creation, through their own transition operations.
type Order struct {
	ID            string          `json:"id" gorm:"primaryKey;type:varchar(36)"`
	UserID        string          `json:"user_id" gorm:"type:varchar(36);index;not null"`
	Status        OrderStatus     `json:"status" gorm:"type:varchar(20);index;not null;default:'PENDING'"`
	PaymentStatus PaymentStatus   `json:"payment_status" gorm:"type:varchar(20);index;not null;default:'PENDING'"`
	TotalPrice    decimal.Decimal `json:"total_price" gorm:"type:decimal(12,2);not null"`
	CustomerName  string          `json:"customer_name" gorm:"type:varchar(150);not null"`
	CustomerPhone string          `json:"customer_phone" gorm:"type:varchar(32);not null"`
	Region        string          `json:"region" gorm:"type:varchar(100)"`
	Address       string          `json:"address" gorm:"type:varchar(255)"`
	Items         []OrderItem     `json:"items" gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
	User          *User           `json:"user,omitempty" gorm:"foreignKey:UserID"`
	CreatedAt     time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// OrderItem is one frozen line of an order. Price is the unit price captured when
// the order was created and is never recomputed from the catalog.
type OrderItem struct {
	ID       string `json:"id" gorm:"primaryKey;type:varchar(36)"`
	OrderID  string `json:"order_id" gorm:"type:varchar(36);index;not null"`
	Position int    `json:"position" gorm:"not null;default:0"`
	LineDetails
	Price   decimal.Decimal `json:"price" gorm:"type:decimal(12,2);not null"`
	Variant *ProductVariant `json:"variant,omitempty" gorm:"foreignKey:VariantID"`
}

// CalculateTotal sets TotalPrice to the sum of price x quantity over the items.
func (o *Order) CalculateTotal() {
	o.TotalPrice = SumLines(o.Items)
}

// SumLines returns Σ price × quantity.
func SumLines(items []OrderItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

func (o *Order) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

func (i *OrderItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == "" {
		i.ID = uuid.New().String()
	}
	return nil
}
