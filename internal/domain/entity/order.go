package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus estado de una orden de venta.
type OrderStatus string

// Estados declarados; la creación solo produce CONFIRMED.
const (
	OrderStatusPending   OrderStatus = "PENDING"
	OrderStatusConfirmed OrderStatus = "CONFIRMED"
	OrderStatusCancelled OrderStatus = "CANCELLED"
)

// Order orden de venta confirmada. Inmutable una vez creada.
type Order struct {
	ID          string
	TenantID    string
	Items       []OrderItem
	Status      OrderStatus
	TotalAmount decimal.Decimal
	CreatedAt   time.Time
}

// OrderItem línea de la orden con el precio vigente al momento de la venta.
type OrderItem struct {
	ProductID  string
	VariantSKU string
	Quantity   int64
	Price      decimal.Decimal
}

// Subtotal devuelve Quantity × Price.
func (i OrderItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.Quantity))
}
