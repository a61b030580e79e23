package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/branch-ledger/internal/application/dto"
	"github.com/jhoicas/branch-ledger/internal/application/inventory"
	"github.com/jhoicas/branch-ledger/internal/application/retry"
	"github.com/jhoicas/branch-ledger/internal/domain"
	"github.com/jhoicas/branch-ledger/internal/domain/entity"
	"github.com/jhoicas/branch-ledger/internal/infrastructure/metrics"
)

// InventoryHandler maneja el libro de inventario, saldos y reposición (protegido).
type InventoryHandler struct {
	ledger        *inventory.LedgerUseCase
	replenishment *inventory.ReplenishmentUseCase
	retry         retry.Policy
	metrics       *metrics.Metrics
}

// NewInventoryHandler construye el handler. policy acota los reintentos por conflicto de concurrencia.
func NewInventoryHandler(ledger *inventory.LedgerUseCase, replenishment *inventory.ReplenishmentUseCase, policy retry.Policy, m *metrics.Metrics) *InventoryHandler {
	return &InventoryHandler{ledger: ledger, replenishment: replenishment, retry: policy, metrics: m}
}

// PostTransaction godoc
// @Summary      Registrar documento de inventario
// @Description  PURCHASE, SALE, ADJUST (cantidad con signo) o TRANSFER. Todo o nada: si alguna línea
//
//	deja saldo negativo no se escribe nada.
//
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.PostTransactionRequest  true  "Documento"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Failure      422   {object}  dto.ErrorResponse
// @Router       /api/inventory/transactions [post]
func (h *InventoryHandler) PostTransaction(c *fiber.Ctx) error {
	var in dto.PostTransactionRequest
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	post := inventory.PostInput{
		Type:                in.Type,
		BranchID:            branchOr(c, in.BranchID),
		DestinationBranchID: in.DestinationBranchID,
		ActorID:             GetUserID(c),
		Reference:           in.Reference,
		Notes:               in.Notes,
		SupplierID:          in.SupplierID,
		CustomerName:        in.CustomerName,
		PriceTier:           in.PriceTier,
		Items:               in.ItemInputs(),
	}
	var txn *entity.InventoryTransaction
	ctx := c.UserContext()
	err := h.retry.Do(ctx, func() error {
		var err error
		txn, err = h.ledger.PostTransaction(ctx, post)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	h.metrics.TransactionPosted(txn.Type)
	return c.Status(fiber.StatusCreated).JSON(dto.NewTransactionResponse(txn))
}

// ConsumeRecipe godoc
// @Summary      Consumir receta
// @Description  Expande la receta por las unidades producidas y la registra como una sola salida.
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ConsumeRecipeRequest  true  "Receta y unidades"
// @Success      201   {object}  dto.TransactionResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/inventory/recipes/consume [post]
func (h *InventoryHandler) ConsumeRecipe(c *fiber.Ctx) error {
	var in dto.ConsumeRecipeRequest
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	consume := inventory.ConsumeRecipeInput{
		BranchID:     branchOr(c, in.BranchID),
		ActorID:      GetUserID(c),
		Reference:    in.Reference,
		Notes:        in.Notes,
		CustomerName: in.CustomerName,
		Units:        in.Units,
		Recipe:       in.RecipeLines(),
	}
	var txn *entity.InventoryTransaction
	ctx := c.UserContext()
	err := h.retry.Do(ctx, func() error {
		var err error
		txn, err = h.ledger.ConsumeRecipe(ctx, consume)
		return err
	})
	if err != nil {
		return respondError(c, err)
	}
	h.metrics.TransactionPosted(txn.Type)
	return c.Status(fiber.StatusCreated).JSON(dto.NewTransactionResponse(txn))
}

// GetTransaction godoc
// @Summary      Obtener documento
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del documento"
// @Success      200  {object}  dto.TransactionResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/transactions/{id} [get]
func (h *InventoryHandler) GetTransaction(c *fiber.Ctx) error {
	txn, err := h.ledger.GetTransaction(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewTransactionResponse(txn))
}

// ListTransactions godoc
// @Summary      Documentos de una sucursal
// @Description  Incluye los traslados recibidos. from/to en RFC3339 o YYYY-MM-DD.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        branchId  path   string  true   "Sucursal"
// @Param        from      query  string  false  "Desde"
// @Param        to        query  string  false  "Hasta"
// @Param        limit     query  int     false  "Máximo 100"
// @Param        offset    query  int     false  "Desplazamiento"
// @Success      200  {object}  dto.TransactionListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/branches/{branchId}/transactions [get]
func (h *InventoryHandler) ListTransactions(c *fiber.Ctx) error {
	var page dto.PageRequest
	if err := c.QueryParser(&page); err != nil {
		return respondError(c, domain.Invalid("limit", "paginación inválida"))
	}
	page.DefaultPage()
	if err := validate.Struct(page); err != nil {
		return respondError(c, &requestError{status: fiber.StatusBadRequest, code: "VALIDATION", message: "paginación inválida", details: validationDetails(err)})
	}
	from, err := timeQuery(c, "from")
	if err != nil {
		return respondError(c, err)
	}
	to, err := timeQuery(c, "to")
	if err != nil {
		return respondError(c, err)
	}
	list, err := h.ledger.ListTransactions(c.UserContext(), c.Params("branchId"), from, to, page.Limit, page.Offset)
	if err != nil {
		return respondError(c, err)
	}
	out := dto.TransactionListResponse{
		Items: make([]dto.TransactionResponse, 0, len(list)),
		Page:  dto.PageResponse{Limit: page.Limit, Offset: page.Offset},
	}
	for _, t := range list {
		out.Items = append(out.Items, dto.NewTransactionResponse(t))
	}
	return c.JSON(out)
}

// ListStock godoc
// @Summary      Saldos de la sucursal
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        branchId  path  string  true  "Sucursal"
// @Success      200  {array}  dto.StockLineResponse
// @Router       /api/branches/{branchId}/stock [get]
func (h *InventoryHandler) ListStock(c *fiber.Ctx) error {
	lines, err := h.ledger.ListStockByBranch(c.UserContext(), c.Params("branchId"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.StockLineResponse, 0, len(lines))
	for _, l := range lines {
		out = append(out, dto.NewStockLineResponse(l))
	}
	return c.JSON(out)
}

// GetStock godoc
// @Summary      Saldo de un producto
// @Description  Cero si el producto nunca tuvo movimientos en la sucursal.
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        branchId   path  string  true  "Sucursal"
// @Param        productId  path  string  true  "Producto"
// @Success      200  {object}  dto.StockBalanceResponse
// @Router       /api/branches/{branchId}/stock/{productId} [get]
func (h *InventoryHandler) GetStock(c *fiber.Ctx) error {
	b, err := h.ledger.GetStockBalance(c.UserContext(), c.Params("branchId"), c.Params("productId"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewStockBalanceResponse(b))
}

// GetReplenishmentList godoc
// @Summary      Lista de reposición
// @Description  Productos por debajo del mínimo con la compra sugerida en su unidad de compra,
//
//	ordenados del más urgente al menos urgente.
//
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        branchId  path  string  true  "Sucursal"
// @Success      200  {array}   dto.ReplenishmentSuggestionDTO
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/branches/{branchId}/replenishment [get]
func (h *InventoryHandler) GetReplenishmentList(c *fiber.Ctx) error {
	list, err := h.replenishment.GenerateReplenishmentList(c.UserContext(), c.Params("branchId"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ReplenishmentSuggestionDTO, 0, len(list))
	for _, s := range list {
		out = append(out, dto.NewReplenishmentSuggestionDTO(s))
	}
	return c.JSON(fiber.Map{
		"total":          len(out),
		"replenishments": out,
	})
}

// timeQuery lee un parámetro de fecha opcional.
func timeQuery(c *fiber.Ctx, key string) (*time.Time, error) {
	raw := c.Query(key)
	if raw == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, raw); err == nil {
			return &t, nil
		}
	}
	return nil, domain.Invalid(key, "fecha inválida (RFC3339 o YYYY-MM-DD)")
}
