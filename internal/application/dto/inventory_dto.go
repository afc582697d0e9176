package dto

import (
	"time"

	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// AdjustStockRequest body para POST /api/inventory/adjustments.
// Delta con signo: positivo suma, negativo resta.
type AdjustStockRequest struct {
	ProductID   string `json:"product_id" validate:"required"`
	SKU         string `json:"sku" validate:"required"`
	Delta       int64  `json:"delta" validate:"required"`
	Type        string `json:"type" validate:"omitempty,oneof=IN OUT ADJUSTMENT"`
	ReferenceID string `json:"reference_id,omitempty"`
}

// MovementQuery filtros de GET /api/inventory/movements.
type MovementQuery struct {
	ProductID string `query:"product_id"`
	SKU       string `query:"sku"`
	Type      string `query:"type" validate:"omitempty,oneof=IN OUT ADJUSTMENT"`
	Limit     int    `query:"limit" validate:"min=0,max=500"`
	Offset    int    `query:"offset" validate:"min=0"`
}

// ReconcileQuery parámetros de GET /api/inventory/reconcile.
type ReconcileQuery struct {
	ProductID string `query:"product_id" validate:"required"`
	SKU       string `query:"sku" validate:"required"`
}

// MovementResponse fila del libro de movimientos.
type MovementResponse struct {
	ID          string    `json:"id"`
	ProductID   string    `json:"product_id"`
	VariantSKU  string    `json:"variant_sku"`
	Type        string    `json:"type"`
	Quantity    int64     `json:"quantity"`
	ReferenceID string    `json:"reference_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// NewMovementResponse mapea la entidad a su representación HTTP.
func NewMovementResponse(m *entity.StockMovement) MovementResponse {
	return MovementResponse{
		ID:          m.ID,
		ProductID:   m.ProductID,
		VariantSKU:  m.VariantSKU,
		Type:        string(m.Type),
		Quantity:    m.Quantity,
		ReferenceID: m.ReferenceID,
		CreatedAt:   m.CreatedAt,
	}
}

// ReconciliationResponse resultado de GET /api/inventory/reconcile.
type ReconciliationResponse struct {
	ProductID  string `json:"product_id"`
	SKU        string `json:"sku"`
	Stock      int64  `json:"stock"`
	LedgerSum  int64  `json:"ledger_sum"`
	Consistent bool   `json:"consistent"`
}
