package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-ledger/internal/application/dto"
	"github.com/jhoicas/inventario-ledger/internal/application/inventory"
	"github.com/jhoicas/inventario-ledger/internal/domain/entity"
	"github.com/jhoicas/inventario-ledger/internal/domain/repository"
	"github.com/jhoicas/inventario-ledger/pkg/logger"
)

// InventoryHandler maneja ajustes manuales y consultas del libro de movimientos (protegido).
type InventoryHandler struct {
	adjust *inventory.AdjustStockUseCase
	ledger *inventory.LedgerUseCase
	log    *logger.Logger
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(adjust *inventory.AdjustStockUseCase, ledger *inventory.LedgerUseCase, log *logger.Logger) *InventoryHandler {
	return &InventoryHandler{adjust: adjust, ledger: ledger, log: log}
}

// Adjust godoc
// @Summary      Ajuste manual de stock
// @Description  delta con signo. type por defecto ADJUSTMENT; IN exige delta positivo y OUT negativo.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body      dto.AdjustStockRequest  true  "product_id, sku, delta, type, reference_id"
// @Success      201   {object}  dto.MovementResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      403   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/adjustments [post]
func (h *InventoryHandler) Adjust(c *fiber.Ctx) error {
	var in dto.AdjustStockRequest
	if err := c.BodyParser(&in); err != nil {
		return badBody(c)
	}
	if err := dto.Validate(in); err != nil {
		return writeError(c, h.log, err)
	}
	typ := entity.MovementTypeADJUSTMENT
	if in.Type != "" {
		typ = entity.MovementType(in.Type)
	}
	mov, err := h.adjust.RegisterAdjustment(c.UserContext(), inventory.AdjustStockInput{
		TenantID:    GetTenantID(c),
		ProductID:   in.ProductID,
		SKU:         in.SKU,
		Delta:       in.Delta,
		Type:        typ,
		ReferenceID: in.ReferenceID,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewMovementResponse(mov))
}

// ListMovements godoc
// @Summary      Libro de movimientos
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "filtrar por producto"
// @Param        sku         query  string  false  "filtrar por variante"
// @Param        type        query  string  false  "IN, OUT o ADJUSTMENT"
// @Param        limit       query  int     false  "por defecto 50, máximo 500"
// @Param        offset      query  int     false  "desplazamiento"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	var q dto.MovementQuery
	if err := c.QueryParser(&q); err != nil {
		return badBody(c)
	}
	if err := dto.Validate(q); err != nil {
		return writeError(c, h.log, err)
	}
	list, err := h.ledger.ListMovements(c.UserContext(), GetTenantID(c), repository.MovementFilter{
		ProductID: q.ProductID,
		SKU:       q.SKU,
		Type:      entity.MovementType(q.Type),
		Limit:     q.Limit,
		Offset:    q.Offset,
	})
	if err != nil {
		return writeError(c, h.log, err)
	}
	out := make([]dto.MovementResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.NewMovementResponse(m))
	}
	return c.JSON(fiber.Map{"total": len(out), "movements": out})
}

// Reconcile godoc
// @Summary      Conciliar variante
// @Description  Compara el stock vivo con la suma del libro de movimientos de la variante.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  true  "producto"
// @Param        sku         query  string  true  "variante"
// @Success      200  {object}  dto.ReconciliationResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/reconcile [get]
func (h *InventoryHandler) Reconcile(c *fiber.Ctx) error {
	var q dto.ReconcileQuery
	if err := c.QueryParser(&q); err != nil {
		return badBody(c)
	}
	if err := dto.Validate(q); err != nil {
		return writeError(c, h.log, err)
	}
	rec, err := h.ledger.ReconcileVariant(c.UserContext(), GetTenantID(c), q.ProductID, q.SKU)
	if err != nil {
		return writeError(c, h.log, err)
	}
	return c.JSON(dto.ReconciliationResponse{
		ProductID:  rec.ProductID,
		SKU:        rec.SKU,
		Stock:      rec.Stock,
		LedgerSum:  rec.LedgerSum,
		Consistent: rec.Consistent,
	})
}
