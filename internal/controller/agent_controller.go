package controller

import (
	"inventory-agent-be/internal/dto"
	"inventory-agent-be/internal/pkg/serverutils"
	"inventory-agent-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IAgentController interface {
	RegisterRoutes(r fiber.Router)
	Ask(ctx *fiber.Ctx) error
	Health(ctx *fiber.Ctx) error
}

type agentController struct {
	agentService service.IAgentService
}

func NewAgentController(agentService service.IAgentService) IAgentController {
	return &agentController{
		agentService: agentService,
	}
}

func (c *agentController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/agent/v1")
	h.Get("health", c.Health)
	h.Use(serverutils.SecretMiddleware)
	h.Post("ask", c.Ask)
}

func (c *agentController) Ask(ctx *fiber.Ctx) error {
	var req dto.AskRequest
	if err := ctx.BodyParser(&req); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(serverutils.ErrorResponse(400, "Invalid request body"))
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.agentService.Ask(ctx.Context(), &req)
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(serverutils.ErrorResponse(500, err.Error()))
	}

	return ctx.JSON(serverutils.SuccessResponse("Success answer question", res))
}

func (c *agentController) Health(ctx *fiber.Ctx) error {
	res := c.agentService.Health(ctx.Context())
	return ctx.JSON(serverutils.SuccessResponse("Service health", res))
}
