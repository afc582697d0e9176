package catalog

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
)

// Catalog resultado de Parse: productos con variantes en stock 0 y el stock de apertura por SKU.
// El stock de apertura no se escribe en la variante; se registra como movimiento ADJUSTMENT.
type Catalog struct {
	Products []*entity.Product
	Opening  []inventory.OpeningStock
}

// Import arma la carga para inventory.ImportCatalog.
func (c *Catalog) Import(tenantID string, supplier *entity.Supplier) inventory.CatalogImport {
	return inventory.CatalogImport{
		TenantID: tenantID,
		Products: c.Products,
		Opening:  c.Opening,
		Supplier: supplier,
	}
}

var header = []string{"product_id", "name", "sku", "attributes", "price", "stock"}

// Parse lee un CSV con cabecera product_id,name,sku,attributes,price,stock.
// attributes usa el formato clave=valor;clave=valor. Las filas de un mismo product_id se agrupan
// en orden de aparición. Si latin1 es true la entrada se decodifica desde ISO-8859-1
// (exportaciones de hojas de cálculo antiguas).
func Parse(r io.Reader, tenantID string, latin1 bool) (*Catalog, error) {
	if latin1 {
		r = transform.NewReader(r, charmap.ISO8859_1.NewDecoder())
	}
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = len(header)
	cr.TrimLeadingSpace = true

	first, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("catalog: leer cabecera: %w", err)
	}
	for i, col := range header {
		if !strings.EqualFold(strings.TrimSpace(first[i]), col) {
			return nil, fmt.Errorf("catalog: columna %d debe ser %q: %w", i+1, col, domain.ErrInvalidInput)
		}
	}

	out := &Catalog{}
	byID := make(map[string]*entity.Product)
	seenSKU := make(map[string]bool)
	line := 1
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("catalog: línea %d: %w", line, err)
		}
		productID, name, sku := strings.TrimSpace(rec[0]), strings.TrimSpace(rec[1]), strings.TrimSpace(rec[2])
		if productID == "" || sku == "" {
			return nil, fmt.Errorf("catalog: línea %d: product_id y sku son obligatorios: %w", line, domain.ErrInvalidInput)
		}
		if seenSKU[sku] {
			return nil, fmt.Errorf("catalog: línea %d: sku %s repetido: %w", line, sku, domain.ErrDuplicate)
		}
		seenSKU[sku] = true

		attrs, err := parseAttributes(rec[3])
		if err != nil {
			return nil, fmt.Errorf("catalog: línea %d: %w", line, err)
		}
		price, err := decimal.NewFromString(strings.TrimSpace(rec[4]))
		if err != nil || price.IsNegative() {
			return nil, fmt.Errorf("catalog: línea %d: precio %q: %w", line, rec[4], domain.ErrInvalidInput)
		}
		stock, err := strconv.ParseInt(strings.TrimSpace(rec[5]), 10, 64)
		if err != nil || stock < 0 {
			return nil, fmt.Errorf("catalog: línea %d: stock %q: %w", line, rec[5], domain.ErrInvalidInput)
		}

		p, ok := byID[productID]
		if !ok {
			p = &entity.Product{ID: productID, TenantID: tenantID, Name: name}
			byID[productID] = p
			out.Products = append(out.Products, p)
		}
		p.Variants = append(p.Variants, entity.ProductVariant{
			ProductID:  productID,
			SKU:        sku,
			Attributes: attrs,
			Price:      price,
		})
		if stock > 0 {
			out.Opening = append(out.Opening, inventory.OpeningStock{ProductID: productID, SKU: sku, Quantity: stock})
		}
	}
	return out, nil
}

func parseAttributes(s string) (map[string]string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	attrs := make(map[string]string)
	for _, pair := range strings.Split(s, ";") {
		k, v, ok := strings.Cut(pair, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("atributo %q: %w", pair, domain.ErrInvalidInput)
		}
		attrs[k] = strings.TrimSpace(v)
	}
	return attrs, nil
}
