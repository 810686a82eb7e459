// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// An order is stored across four tables: orders, sub_orders, sub_order_items and the
// append-only sub_order_status_changes audit trail.
package orderrepo

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderDTO represents the database structure for persisting order aggregates.
type OrderDTO struct {
	ID                   uuid.UUID       `gorm:"type:uuid;primaryKey"`
	CustomerID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	CustomerEmail        string          `gorm:"size:320"`
	PaymentMethod        int             `gorm:"not null"`
	AddressText          string          `gorm:"not null"`
	Address              LocationDTO     `gorm:"embedded;embeddedPrefix:address_"`
	TotalAmount          decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	PaymentCaptured      bool            `gorm:"not null;default:false"`
	PaymentTransactionID string          `gorm:"size:128"`
	RefundRequested      bool            `gorm:"not null;default:false"`
	RefundRef            string          `gorm:"size:128"`
	CreatedAt            time.Time       `gorm:"not null"`
	SubOrders            []SubOrderDTO   `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the database table name for order entities.
func (OrderDTO) TableName() string {
	return "orders"
}

// LocationDTO represents the embedded delivery coordinates within the order table.
type LocationDTO struct {
	Latitude  float64 `gorm:"not null"`
	Longitude float64 `gorm:"not null"`
}

// SubOrderDTO is one shop's part of an order. Handoff columns are the only ones
// that change after checkout.
type SubOrderDTO struct {
	ID               uuid.UUID       `gorm:"type:uuid;primaryKey"`
	OrderID          uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_sub_orders_order_position"`
	Position         int             `gorm:"not null;uniqueIndex:idx_sub_orders_order_position"`
	ShopID           uuid.UUID       `gorm:"type:uuid;not null;index"`
	ShopName         string          `gorm:"not null"`
	OwnerID          uuid.UUID       `gorm:"type:uuid;not null;index"`
	Subtotal         decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Status           int             `gorm:"not null;index"`
	AssignedWorkerID *uuid.UUID      `gorm:"type:uuid;index"`
	AssignmentID     *uuid.UUID      `gorm:"type:uuid"`
	DeliveryOtp      string          `gorm:"size:4"`
	OtpExpiresAt     *time.Time
	DeliveredAt      *time.Time `gorm:"index"`
	Items            []ItemDTO  `gorm:"foreignKey:SubOrderID;constraint:OnDelete:CASCADE"`
}

func (SubOrderDTO) TableName() string {
	return "sub_orders"
}

// ItemDTO is a purchased line of a sub-order.
type ItemDTO struct {
	SubOrderID uuid.UUID       `gorm:"type:uuid;primaryKey;autoIncrement:false"`
	Position   int             `gorm:"primaryKey;autoIncrement:false"`
	ItemRef    uuid.UUID       `gorm:"type:uuid;not null"`
	Name       string          `gorm:"not null"`
	Price      decimal.Decimal `gorm:"type:numeric(12,2);not null"`
	Quantity   int             `gorm:"not null"`
}

func (ItemDTO) TableName() string {
	return "sub_order_items"
}

// StatusChangeDTO is an audit trail row. Rows are only ever inserted.
type StatusChangeDTO struct {
	ID         uint64    `gorm:"primaryKey;autoIncrement"`
	OrderID    uuid.UUID `gorm:"type:uuid;not null"`
	SubOrderID uuid.UUID `gorm:"type:uuid;not null;index"`
	Status     int       `gorm:"not null"`
	ActorID    uuid.UUID `gorm:"type:uuid;not null"`
	ActorRole  int       `gorm:"not null"`
	ChangedAt  time.Time `gorm:"not null"`
}

func (StatusChangeDTO) TableName() string {
	return "sub_order_status_changes"
}
