package handler

import (
	"errors"
	"io"
	"log"
	"strconv"
	"time"

	"github.com/fadilmartias/resumind/internal/apperror"
	"github.com/fadilmartias/resumind/internal/dto"
	"github.com/fadilmartias/resumind/internal/middleware"
	"github.com/fadilmartias/resumind/internal/repository"
	"github.com/fadilmartias/resumind/internal/usecase"
	"github.com/fadilmartias/resumind/internal/util"
	"github.com/gofiber/fiber/v2"
)

const maxDocumentSize = 5 * 1024 * 1024

type AnalyzeHandler struct {
	uc *usecase.AnalysisUsecase
}

func NewAnalyzeHandler(uc *usecase.AnalysisUsecase) *AnalyzeHandler {
	return &AnalyzeHandler{uc: uc}
}

func (h *AnalyzeHandler) RegisterRoutes(app *fiber.App) {
	app.Post("/analyze", middleware.RateLimiter(1, 4*time.Second), h.Analyze)
	app.Get("/submissions", h.List)
	app.Get("/submissions/:id", h.Get)
	app.Get("/submissions/:id/resume", h.Resume)
	app.Get("/submissions/:id/image", h.Image)
	app.Get("/submissions/:id/similar", h.Similar)
}

func (h *AnalyzeHandler) Analyze(c *fiber.Ctx) error {
	file, err := c.FormFile("resume")
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "resume file is required",
		}, err)
	}
	if file.Size > maxDocumentSize {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusRequestEntityTooLarge,
			Message: "resume file size is too large (max 5MB)",
		}, nil)
	}

	src, err := file.Open()
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "cannot open resume file",
		}, err)
	}
	defer src.Close()

	document, err := io.ReadAll(src)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusBadRequest,
			Message: "cannot read resume file",
		}, err)
	}

	input := usecase.AnalysisInput{
		CompanyName:    c.FormValue("company-name"),
		JobTitle:       c.FormValue("job-title"),
		JobDescription: c.FormValue("job-description"),
		FileName:       file.Filename,
		Document:       document,
	}

	id, err := h.uc.Analyze(c.UserContext(), input, func(stage usecase.Stage, detail string) {
		log.Printf("analysis stage %s: %s", stage, detail)
	})
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    statusForKind(apperror.KindOf(err)),
			Message: err.Error(),
		}, err)
	}

	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusCreated,
		Message: "Success analyze resume",
		Data:    fiber.Map{"id": id},
	})
}

func (h *AnalyzeHandler) List(c *fiber.Ctx) error {
	records, skipped, err := h.uc.ListSubmissions()
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to list submissions",
		}, err)
	}
	if skipped > 0 {
		log.Printf("submission listing skipped %d malformed record(s)", skipped)
	}
	data := make([]dto.SubmissionDTO, 0, len(records))
	for i := range records {
		data = append(data, dto.FromRecord(&records[i]))
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Success get submissions",
		Data:    data,
		Meta:    fiber.Map{"skipped": skipped},
	})
}

func (h *AnalyzeHandler) Get(c *fiber.Ctx) error {
	record, err := h.uc.GetSubmission(c.Params("id"))
	if err != nil {
		return h.recordError(c, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Success get submission",
		Data:    dto.FromRecord(record),
	})
}

func (h *AnalyzeHandler) Resume(c *fiber.Ctx) error {
	record, err := h.uc.GetSubmission(c.Params("id"))
	if err != nil {
		return h.recordError(c, err)
	}
	return h.sendBlob(c, "application/pdf", record.ResumePath)
}

func (h *AnalyzeHandler) Image(c *fiber.Ctx) error {
	record, err := h.uc.GetSubmission(c.Params("id"))
	if err != nil {
		return h.recordError(c, err)
	}
	return h.sendBlob(c, "image/png", record.ImagePath)
}

func (h *AnalyzeHandler) Similar(c *fiber.Ctx) error {
	topK, err := strconv.Atoi(c.Query("top_k", "5"))
	if err != nil || topK < 1 {
		topK = 5
	}
	results, err := h.uc.SimilarSubmissions(c.Params("id"), topK)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "no similar submissions found",
		}, err)
	}
	return util.SuccessResponse(c, util.SuccessResponseFormat{
		Code:    fiber.StatusOK,
		Message: "Success get similar submissions",
		Data:    results,
	})
}

func (h *AnalyzeHandler) sendBlob(c *fiber.Ctx, contentType, handle string) error {
	if handle == "" {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "blob not available",
		}, nil)
	}
	data, err := h.uc.ReadBlob(c.UserContext(), handle)
	if err != nil {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Message: "failed to read blob",
		}, err)
	}
	c.Set(fiber.HeaderContentType, contentType)
	return c.Send(data)
}

func (h *AnalyzeHandler) recordError(c *fiber.Ctx, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return util.ErrorResponse(c, util.ErrorResponseFormat{
			Code:    fiber.StatusNotFound,
			Message: "submission not found",
		}, err)
	}
	return util.ErrorResponse(c, util.ErrorResponseFormat{
		Message: "failed to get submission",
	}, err)
}

func statusForKind(kind apperror.Kind) int {
	switch kind {
	case apperror.KindValidation:
		return fiber.StatusBadRequest
	case apperror.KindConversion:
		return fiber.StatusUnprocessableEntity
	case apperror.KindUpload, apperror.KindInference, apperror.KindParse:
		return fiber.StatusBadGateway
	default:
		return fiber.StatusInternalServerError
	}
}
