package entity

import "time"

// MovementType tipo de movimiento del libro de stock.
type MovementType string

// Tipos de movimiento de inventario.
const (
	MovementTypeIN         MovementType = "IN"         // entrada
	MovementTypeOUT        MovementType = "OUT"        // salida
	MovementTypeADJUSTMENT MovementType = "ADJUSTMENT" // ajuste manual (positivo o negativo)
)

// Valid indica si el tipo es uno de los soportados.
func (t MovementType) Valid() bool {
	switch t {
	case MovementTypeIN, MovementTypeOUT, MovementTypeADJUSTMENT:
		return true
	}
	return false
}

// StockMovement fila del libro de movimientos (append-only, nunca se actualiza ni borra).
// La suma de Quantity por (tenant, producto, sku) es igual al stock de la variante.
type StockMovement struct {
	ID          string
	TenantID    string
	ProductID   string
	VariantSKU  string
	Type        MovementType
	Quantity    int64  // positivo en entradas, negativo en salidas
	ReferenceID string // orden u orden de compra que lo causó (opcional)
	CreatedAt   time.Time
}
