package dto

import (
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CreatePurchaseOrderRequest body para POST /api/purchase-orders.
type CreatePurchaseOrderRequest struct {
	SupplierID string                     `json:"supplier_id" validate:"required"`
	Items      []PurchaseOrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// PurchaseOrderItemRequest línea pedida al proveedor.
type PurchaseOrderItemRequest struct {
	ProductID       string          `json:"product_id" validate:"required"`
	SKU             string          `json:"sku" validate:"required"`
	QuantityOrdered int64           `json:"quantity_ordered" validate:"gte=1"`
	Price           decimal.Decimal `json:"price"`
}

// PurchaseOrderResponse orden de compra.
type PurchaseOrderResponse struct {
	ID         string                      `json:"id"`
	TenantID   string                      `json:"tenant_id"`
	SupplierID string                      `json:"supplier_id"`
	Status     string                      `json:"status"`
	Items      []PurchaseOrderItemResponse `json:"items"`
	CreatedAt  time.Time                   `json:"created_at"`
	ReceivedAt *time.Time                  `json:"received_at,omitempty"`
}

// PurchaseOrderItemResponse línea de orden de compra.
type PurchaseOrderItemResponse struct {
	ProductID        string          `json:"product_id"`
	SKU              string          `json:"sku"`
	QuantityOrdered  int64           `json:"quantity_ordered"`
	QuantityReceived int64           `json:"quantity_received"`
	Price            decimal.Decimal `json:"price"`
}

// NewPurchaseOrderResponse mapea la entidad a su representación HTTP.
func NewPurchaseOrderResponse(po *entity.PurchaseOrder) PurchaseOrderResponse {
	resp := PurchaseOrderResponse{
		ID:         po.ID,
		TenantID:   po.TenantID,
		SupplierID: po.SupplierID,
		Status:     string(po.Status),
		CreatedAt:  po.CreatedAt,
		ReceivedAt: po.ReceivedAt,
		Items:      make([]PurchaseOrderItemResponse, 0, len(po.Items)),
	}
	for _, it := range po.Items {
		resp.Items = append(resp.Items, PurchaseOrderItemResponse{
			ProductID:        it.ProductID,
			SKU:              it.SKU,
			QuantityOrdered:  it.QuantityOrdered,
			QuantityReceived: it.QuantityReceived,
			Price:            it.Price,
		})
	}
	return resp
}
