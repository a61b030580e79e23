package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/branch-ledger/internal/application/catalog"
	"github.com/jhoicas/branch-ledger/internal/application/dto"
	"github.com/jhoicas/branch-ledger/internal/domain"
	"github.com/jhoicas/branch-ledger/internal/domain/entity"
)

// ProductHandler maneja unidades de medida, productos y sus unidades (protegido).
type ProductHandler struct {
	uc *catalog.ProductUseCase
}

// NewProductHandler construye el handler.
func NewProductHandler(uc *catalog.ProductUseCase) *ProductHandler {
	return &ProductHandler{uc: uc}
}

// CreateUom godoc
// @Summary      Registrar unidad de medida
// @Tags         uoms
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateUomRequest  true  "code, name"
// @Success      201   {object}  dto.UomResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/uoms [post]
func (h *ProductHandler) CreateUom(c *fiber.Ctx) error {
	var in dto.CreateUomRequest
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	u, err := h.uc.CreateUom(c.UserContext(), in.Code, in.Name)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewUomResponse(u))
}

// ListUoms godoc
// @Summary      Listar unidades de medida
// @Tags         uoms
// @Security     Bearer
// @Produce      json
// @Success      200  {array}  dto.UomResponse
// @Router       /api/uoms [get]
func (h *ProductHandler) ListUoms(c *fiber.Ctx) error {
	list, err := h.uc.ListUoms(c.UserContext())
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.UomResponse, 0, len(list))
	for _, u := range list {
		out = append(out, dto.NewUomResponse(u))
	}
	return c.JSON(out)
}

// Create godoc
// @Summary      Crear producto
// @Description  Crea el producto y su unidad base (factor 1, compra y venta) en la misma transacción.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateProductRequest  true  "Datos del producto"
// @Success      201   {object}  dto.ProductResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products [post]
func (h *ProductHandler) Create(c *fiber.Ctx) error {
	var in dto.CreateProductRequest
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	p, err := h.uc.CreateProduct(c.UserContext(), catalog.CreateProductInput{
		BranchID:       branchOr(c, in.BranchID),
		SKU:            in.SKU,
		Barcode:        in.Barcode,
		Name:           in.Name,
		BaseUomID:      in.BaseUomID,
		IsDivisible:    in.IsDivisible,
		PurchasePrice:  in.PurchasePrice,
		WholesalePrice: in.WholesalePrice,
		RetailPrice:    in.RetailPrice,
		MinStock:       in.MinStock,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewProductResponse(p))
}

// GetByID godoc
// @Summary      Obtener producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [get]
func (h *ProductHandler) GetByID(c *fiber.Ctx) error {
	p, err := h.uc.GetProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewProductResponse(p))
}

// Delete godoc
// @Summary      Eliminar producto
// @Description  Borra el producto si ningún movimiento lo referencia; si no, lo desactiva.
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {object}  map[string]string
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/products/{id} [delete]
func (h *ProductHandler) Delete(c *fiber.Ctx) error {
	hard, err := h.uc.DeleteProduct(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	mode := "soft"
	if hard {
		mode = "hard"
	}
	return c.JSON(fiber.Map{"deleted": mode})
}

// ListByBranch godoc
// @Summary      Listar productos de una sucursal
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        branchId          path   string  true   "Sucursal"
// @Param        include_inactive  query  bool    false  "Incluir desactivados"
// @Success      200  {object}  dto.ProductListResponse
// @Router       /api/branches/{branchId}/products [get]
func (h *ProductHandler) ListByBranch(c *fiber.Ctx) error {
	list, err := h.uc.ListProductsByBranch(c.UserContext(), c.Params("branchId"), c.QueryBool("include_inactive", false))
	if err != nil {
		return respondError(c, err)
	}
	out := dto.ProductListResponse{Items: make([]dto.ProductResponse, 0, len(list)), Total: len(list)}
	for _, p := range list {
		out.Items = append(out.Items, dto.NewProductResponse(p))
	}
	return c.JSON(out)
}

// FindByBarcode godoc
// @Summary      Buscar producto por código de barras
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        branchId  path  string  true  "Sucursal"
// @Param        barcode   path  string  true  "Código de barras"
// @Success      200  {object}  dto.ProductResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/branches/{branchId}/products/barcode/{barcode} [get]
func (h *ProductHandler) FindByBarcode(c *fiber.Ctx) error {
	p, err := h.uc.FindProductByBarcode(c.UserContext(), c.Params("branchId"), c.Params("barcode"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(dto.NewProductResponse(p))
}

// ListUnits godoc
// @Summary      Unidades del producto
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID del producto"
// @Success      200  {array}  dto.ProductUomResponse
// @Router       /api/products/{id}/uoms [get]
func (h *ProductHandler) ListUnits(c *fiber.Ctx) error {
	list, err := h.uc.ListProductUoms(c.UserContext(), c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	out := make([]dto.ProductUomResponse, 0, len(list))
	for _, v := range list {
		out = append(out, dto.NewProductUomViewResponse(v))
	}
	return c.JSON(out)
}

// AddUnit godoc
// @Summary      Agregar unidad al producto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        id    path  string                    true  "ID del producto"
// @Param        body  body  dto.AddProductUomRequest  true  "uom_id, factor_to_base, purpose"
// @Success      201   {object}  dto.ProductUomResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/uoms [post]
func (h *ProductHandler) AddUnit(c *fiber.Ctx) error {
	var in dto.AddProductUomRequest
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	pu, err := h.uc.AddProductUom(c.UserContext(), catalog.AddUomInput{
		ProductID:    c.Params("id"),
		UomID:        in.UomID,
		FactorToBase: in.FactorToBase,
		Purpose:      in.Purpose,
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(dto.NewProductUomResponse(pu))
}

// UpdateFactor godoc
// @Summary      Cambiar factor de una unidad
// @Description  Los movimientos ya registrados conservan el factor con que se registraron.
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Param        id     path  string                   true  "ID del producto"
// @Param        uomId  path  string                   true  "ID de la unidad del producto"
// @Param        body   body  dto.UpdateFactorRequest  true  "factor_to_base"
// @Success      204
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/products/{id}/uoms/{uomId}/factor [put]
func (h *ProductHandler) UpdateFactor(c *fiber.Ctx) error {
	var in dto.UpdateFactorRequest
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	if err := h.uc.UpdateProductUomFactor(c.UserContext(), c.Params("id"), c.Params("uomId"), in.FactorToBase); err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// GetDefaultUnit godoc
// @Summary      Unidad por defecto
// @Description  Devuelve null cuando no hay default explícito y hay más de una unidad elegible.
// @Tags         products
// @Security     Bearer
// @Produce      json
// @Param        id       path  string  true  "ID del producto"
// @Param        purpose  path  string  true  "sale | purchase"
// @Success      200  {object}  dto.ProductUomResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/default-uom/{purpose} [get]
func (h *ProductHandler) GetDefaultUnit(c *fiber.Ctx) error {
	purpose, err := purposeParam(c)
	if err != nil {
		return respondError(c, err)
	}
	var pu *entity.ProductUom
	if purpose == entity.UomPurposeSale {
		pu, err = h.uc.DefaultSaleUom(c.UserContext(), c.Params("id"))
	} else {
		pu, err = h.uc.DefaultPurchaseUom(c.UserContext(), c.Params("id"))
	}
	if err != nil {
		return respondError(c, err)
	}
	if pu == nil {
		return c.JSON(nil)
	}
	return c.JSON(dto.NewProductUomResponse(pu))
}

// SetDefaultUnit godoc
// @Summary      Fijar unidad por defecto
// @Tags         products
// @Security     Bearer
// @Accept       json
// @Param        id       path  string                    true  "ID del producto"
// @Param        purpose  path  string                    true  "sale | purchase"
// @Param        body     body  dto.SetDefaultUomRequest  true  "product_uom_id"
// @Success      204
// @Failure      404  {object}  dto.ErrorResponse
// @Failure      422  {object}  dto.ErrorResponse
// @Router       /api/products/{id}/default-uom/{purpose} [put]
func (h *ProductHandler) SetDefaultUnit(c *fiber.Ctx) error {
	purpose, err := purposeParam(c)
	if err != nil {
		return respondError(c, err)
	}
	var in dto.SetDefaultUomRequest
	if err := bind(c, &in); err != nil {
		return respondError(c, err)
	}
	actorID := GetUserID(c)
	if purpose == entity.UomPurposeSale {
		err = h.uc.SetDefaultSaleUom(c.UserContext(), actorID, c.Params("id"), in.ProductUomID)
	} else {
		err = h.uc.SetDefaultPurchaseUom(c.UserContext(), actorID, c.Params("id"), in.ProductUomID)
	}
	if err != nil {
		return respondError(c, err)
	}
	return c.SendStatus(fiber.StatusNoContent)
}

func purposeParam(c *fiber.Ctx) (string, error) {
	switch strings.ToUpper(c.Params("purpose")) {
	case entity.UomPurposeSale:
		return entity.UomPurposeSale, nil
	case entity.UomPurposePurchase:
		return entity.UomPurposePurchase, nil
	}
	return "", domain.Invalid("purpose", "sale o purchase")
}
