package http

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/jhoicas/branch-ledger/internal/application/dto"
	"github.com/jhoicas/branch-ledger/pkg/jwt"
)

// Locals keys para el actor y su sucursal en Fiber.
const (
	LocalUserID   = "user_id"
	LocalBranchID = "branch_id"
)

// AuthMiddleware valida el Bearer Token JWT y deja el actor (y su sucursal, si viene) en c.Locals.
// No decide permisos: el actor solo se registra en los documentos.
func AuthMiddleware(jwtSecret string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		if authHeader == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "Authorization header requerido"})
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "formato: Bearer <token>"})
		}
		tokenString := strings.TrimSpace(parts[1])
		if tokenString == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "MISSING_TOKEN", Message: "token vacío"})
		}
		userID, branchID, err := jwt.Parse(jwtSecret, tokenString)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Code: "INVALID_TOKEN", Message: "token inválido o expirado"})
		}
		c.Locals(LocalUserID, userID)
		c.Locals(LocalBranchID, branchID)
		return c.Next()
	}
}

// GetUserID devuelve el actor del contexto (después del middleware de auth).
func GetUserID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalUserID).(string)
	return s
}

// GetBranchID devuelve la sucursal del token; vacío si el token no la trae.
func GetBranchID(c *fiber.Ctx) string {
	s, _ := c.Locals(LocalBranchID).(string)
	return s
}

// branchOr usa la sucursal explícita del request y, si falta, la del token.
func branchOr(c *fiber.Ctx, branchID string) string {
	if branchID != "" {
		return branchID
	}
	return GetBranchID(c)
}
