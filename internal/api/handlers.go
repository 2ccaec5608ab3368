// internal/api/handlers.go
package api

import (
	"encoding/json"
	stderrors "errors"

	"risk-predictor/internal/common/errors"
	"risk-predictor/internal/common/logger"
	"risk-predictor/internal/prediction"
	"risk-predictor/internal/service"

	"github.com/gofiber/fiber/v3"
)

var errNullBody = stderrors.New("body is null")

type handlers struct {
	svc    *service.Service
	logger logger.Logger
}

// SchemaResponse lists the expected feature slots in order.
type SchemaResponse struct {
	Features []prediction.FeatureSlot `json:"features"`
}

func (h *handlers) predict(c fiber.Ctx) error {
	var input map[string]interface{}
	if err := json.Unmarshal(c.Body(), &input); err != nil {
		return h.writeError(c, errors.NewInvalidRequestBodyError(err))
	}
	if input == nil {
		return h.writeError(c, errors.NewInvalidRequestBodyError(errNullBody))
	}

	ctx := c.Context()
	if id := c.Get(requestIDHeader); id != "" {
		ctx = service.WithRequestID(ctx, id)
	}

	resp, err := h.svc.Predict(ctx, input, service.TransportHTTP)
	if err != nil {
		return h.writeError(c, err)
	}

	c.Set(requestIDHeader, resp.RequestID)
	c.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	return c.Status(fiber.StatusOK).Send(resp.Record)
}

func (h *handlers) health(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(h.svc.Health())
}

func (h *handlers) schema(c fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(SchemaResponse{Features: h.svc.Schema().Slots()})
}

func (h *handlers) writeError(c fiber.Ctx, err error) error {
	std := errors.Normalize(err)
	return c.Status(errors.HTTPStatus(std.Code)).JSON(std.Public())
}
