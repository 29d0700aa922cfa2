package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain"
)

// ShortfallDTO línea faltante en una respuesta INSUFFICIENT_STOCK.
type ShortfallDTO struct {
	ItemID    string `json:"item_id"`
	Name      string `json:"name,omitempty"`
	LotID     string `json:"lot_id,omitempty"`
	Required  string `json:"required"`
	Available string `json:"available"`
	Missing   string `json:"missing"`
}

// respondError traduce errores de dominio a código HTTP + dto.ErrorResponse y deja una línea en el log.
func respondError(c *fiber.Ctx, log zerolog.Logger, err error) error {
	status, body := mapError(err)
	ev := log.Warn()
	if status >= fiber.StatusInternalServerError {
		ev = log.Error()
	}
	ev.Err(err).
		Str("code", body.Code).
		Int("status", status).
		Str("method", c.Method()).
		Str("path", c.Path()).
		Msg("petición rechazada")
	return c.Status(status).JSON(body)
}

func mapError(err error) (int, dto.ErrorResponse) {
	var (
		invalid  *domain.ValidationError
		short    *domain.InsufficientStockError
		stale    *domain.StaleStateError
		notFound *domain.NotFoundError
	)
	switch {
	case errors.As(err, &invalid):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: invalid.Error(),
			Details: fiber.Map{"field": invalid.Field, "reason": invalid.Reason}}
	case errors.Is(err, domain.ErrInvalidInput):
		return fiber.StatusBadRequest, dto.ErrorResponse{Code: "VALIDATION", Message: err.Error()}
	case errors.As(err, &notFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: notFound.Error()}
	case errors.Is(err, domain.ErrNotFound):
		return fiber.StatusNotFound, dto.ErrorResponse{Code: "NOT_FOUND", Message: err.Error()}
	case errors.Is(err, domain.ErrUnauthorized):
		return fiber.StatusUnauthorized, dto.ErrorResponse{Code: "UNAUTHORIZED", Message: err.Error()}
	case errors.Is(err, domain.ErrForbidden):
		return fiber.StatusForbidden, dto.ErrorResponse{Code: "FORBIDDEN", Message: err.Error()}
	case errors.As(err, &short):
		lines := make([]ShortfallDTO, 0, len(short.Shortfalls))
		for _, s := range short.Shortfalls {
			lines = append(lines, ShortfallDTO{
				ItemID:    s.ItemID,
				Name:      s.Name,
				LotID:     s.LotID,
				Required:  s.Required.String(),
				Available: s.Available.String(),
				Missing:   s.Missing().String(),
			})
		}
		return fiber.StatusConflict, dto.ErrorResponse{Code: "INSUFFICIENT_STOCK", Message: short.Error(), Details: lines}
	case errors.As(err, &stale):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "STALE_STATE", Message: stale.Error(),
			Details: fiber.Map{"current": stale.Current, "expected": stale.Expected}}
	case errors.Is(err, domain.ErrStaleState):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "STALE_STATE", Message: err.Error()}
	case errors.Is(err, domain.ErrConcurrencyConflict):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "CONCURRENCY_CONFLICT", Message: domain.ErrConcurrencyConflict.Error()}
	case errors.Is(err, domain.ErrDuplicate):
		return fiber.StatusConflict, dto.ErrorResponse{Code: "DUPLICATE", Message: err.Error()}
	default:
		return fiber.StatusInternalServerError, dto.ErrorResponse{Code: "INTERNAL", Message: "error interno"}
	}
}

func badBody(c *fiber.Ctx) error {
	return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Code: "INVALID_BODY", Message: "cuerpo inválido"})
}
