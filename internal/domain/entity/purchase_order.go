package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// PurchaseOrderStatus estado del ciclo de vida de una orden de compra.
type PurchaseOrderStatus string

// PENDING → RECEIVED. CONFIRMED existe en el esquema pero está reservado (sin uso).
const (
	PurchaseOrderStatusPending   PurchaseOrderStatus = "PENDING"
	PurchaseOrderStatusConfirmed PurchaseOrderStatus = "CONFIRMED"
	PurchaseOrderStatusReceived  PurchaseOrderStatus = "RECEIVED"
)

// PurchaseOrder orden de compra a un proveedor.
type PurchaseOrder struct {
	ID         string
	TenantID   string
	SupplierID string
	Items      []PurchaseOrderItem
	Status     PurchaseOrderStatus
	CreatedAt  time.Time
	ReceivedAt *time.Time
}

// PurchaseOrderItem línea de la orden de compra. QuantityReceived pasa de 0 a
// QuantityOrdered al recibir (no hay recepción parcial).
type PurchaseOrderItem struct {
	ProductID        string
	SKU              string
	QuantityOrdered  int64
	QuantityReceived int64
	Price            decimal.Decimal
}

// IsReceived indica si la orden ya fue recibida.
func (po *PurchaseOrder) IsReceived() bool {
	return po.Status == PurchaseOrderStatusReceived
}
