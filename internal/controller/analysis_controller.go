package controller

import (
	"matvision-be/internal/dto"
	"matvision-be/internal/pkg/serverutils"
	"matvision-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type IAnalysisController interface {
	RegisterRoutes(r fiber.Router)
	Submit(ctx *fiber.Ctx) error
	PollJob(ctx *fiber.Ctx) error
	Show(ctx *fiber.Ctx) error
	List(ctx *fiber.Ctx) error
	Search(ctx *fiber.Ctx) error
}

type analysisController struct {
	analysisService service.IAnalysisService
}

func NewAnalysisController(analysisService service.IAnalysisService) IAnalysisController {
	return &analysisController{
		analysisService: analysisService,
	}
}

func (c *analysisController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/analysis/v1")
	h.Use(serverutils.JwtMiddleware)
	// Literal segments before the :id wildcard.
	h.Get("search", c.Search)
	h.Get("jobs/:id", c.PollJob)
	h.Post("", c.Submit)
	h.Get("", c.List)
	h.Get(":id", c.Show)
}

func (c *analysisController) Submit(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	var req dto.SubmitAnalysisRequest
	if err := ctx.BodyParser(&req); err != nil {
		return err
	}

	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	res, err := c.analysisService.Submit(ctx.Context(), userId, &req)
	if err != nil {
		return err
	}

	if res.JobId != nil {
		return ctx.Status(fiber.StatusAccepted).JSON(serverutils.SuccessResponse("Analysis job accepted", res))
	}
	return ctx.JSON(serverutils.SuccessResponse("Analysis complete", res))
}

func (c *analysisController) PollJob(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	res, err := c.analysisService.Poll(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success poll job", res))
}

func (c *analysisController) Show(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	idParam := ctx.Params("id")
	id, _ := uuid.Parse(idParam)

	res, err := c.analysisService.Show(ctx.Context(), userId, id)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success show assessment", res))
}

func (c *analysisController) List(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	page := ctx.QueryInt("page", 1)
	pageSize := ctx.QueryInt("page_size", 20)

	res, err := c.analysisService.List(ctx.Context(), userId, page, pageSize)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success list assessments", res))
}

func (c *analysisController) Search(ctx *fiber.Ctx) error {
	userIdStr := ctx.Locals("user_id").(string)
	userId, _ := uuid.Parse(userIdStr)

	q := ctx.Query("q", "")

	res, err := c.analysisService.Search(ctx.Context(), userId, q)
	if err != nil {
		return err
	}

	return ctx.JSON(serverutils.SuccessResponse("Success search assessments", res))
}
