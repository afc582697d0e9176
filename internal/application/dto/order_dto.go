package dto

import (
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// CreateOrderRequest body para POST /api/orders.
type CreateOrderRequest struct {
	Items []OrderItemRequest `json:"items" validate:"required,min=1,dive"`
}

// OrderItemRequest línea solicitada. Price es el precio que el caller fija para la venta.
type OrderItemRequest struct {
	ProductID  string          `json:"product_id" validate:"required"`
	VariantSKU string          `json:"variant_sku" validate:"required"`
	Quantity   int64           `json:"quantity" validate:"gte=1"`
	Price      decimal.Decimal `json:"price"`
}

// OrderResponse orden confirmada.
type OrderResponse struct {
	ID          string              `json:"id"`
	TenantID    string              `json:"tenant_id"`
	Status      string              `json:"status"`
	TotalAmount decimal.Decimal     `json:"total_amount"`
	Items       []OrderItemResponse `json:"items"`
	CreatedAt   time.Time           `json:"created_at"`
}

// OrderItemResponse línea de una orden.
type OrderItemResponse struct {
	ProductID  string          `json:"product_id"`
	VariantSKU string          `json:"variant_sku"`
	Quantity   int64           `json:"quantity"`
	Price      decimal.Decimal `json:"price"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// NewOrderResponse mapea la entidad a su representación HTTP.
func NewOrderResponse(o *entity.Order) OrderResponse {
	resp := OrderResponse{
		ID:          o.ID,
		TenantID:    o.TenantID,
		Status:      string(o.Status),
		TotalAmount: o.TotalAmount,
		CreatedAt:   o.CreatedAt,
		Items:       make([]OrderItemResponse, 0, len(o.Items)),
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, OrderItemResponse{
			ProductID:  it.ProductID,
			VariantSKU: it.VariantSKU,
			Quantity:   it.Quantity,
			Price:      it.Price,
			Subtotal:   it.Subtotal(),
		})
	}
	return resp
}
