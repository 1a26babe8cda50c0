package controller

import (
	"net/url"

	"matvision-be/internal/dto"
	"matvision-be/internal/pkg/serverutils"
	"matvision-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAnalyticsController interface {
	RegisterRoutes(r fiber.Router)
	SubmitReview(ctx *fiber.Ctx) error
	Trends(ctx *fiber.Ctx) error
	Badges(ctx *fiber.Ctx) error
	Interrater(ctx *fiber.Ctx) error
}

type analyticsController struct {
	analyticsService service.IAnalyticsService
}

func NewAnalyticsController(analyticsService service.IAnalyticsService) IAnalyticsController {
	return &analyticsController{
		analyticsService: analyticsService,
	}
}

func (c *analyticsController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/analytics/v1")
	h.Use(serverutils.JwtMiddleware)
	h.Post("reviews", c.SubmitReview)
	h.Get("athletes/:name/trends", c.Trends)
	h.Get("athletes/:name/badges", c.Badges)
	h.Get("athletes/:name/interrater", c.Interrater)
}

// athleteParam decodes the :name segment; athlete names carry spaces.
func athleteParam(ctx *fiber.Ctx) string {
	name := ctx.Params("name")
	if decoded, err := url.PathUnescape(name); err == nil {
		return decoded
	}
	return name
}

func (c *analyticsController) SubmitReview(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.SubmitReviewRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.analyticsService.SubmitReview(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	return ctx.Status(fiber.StatusCreated).JSON(serverutils.SuccessResponse("Success submit review", res))
}

func (c *analyticsController) Trends(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.analyticsService.Trends(ctx.Context(), userId, athleteParam(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show trends", res))
}

func (c *analyticsController) Badges(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.analyticsService.Badges(ctx.Context(), userId, athleteParam(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show badges", res))
}

func (c *analyticsController) Interrater(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	res, err := c.analyticsService.Interrater(ctx.Context(), userId, athleteParam(ctx))
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show interrater agreement", res))
}
