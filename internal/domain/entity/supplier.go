package entity

import "time"

// Supplier proveedor de un tenant, referenciado por órdenes de compra.
type Supplier struct {
	ID        string
	TenantID  string
	Name      string
	Contact   string
	CreatedAt time.Time
}
