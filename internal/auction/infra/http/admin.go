package http

import (
	"errors"
	"time"

	"github.com/auctionroom/auctionroom/internal/auction/application"
	"github.com/auctionroom/auctionroom/internal/auction/domain"
	"github.com/auctionroom/auctionroom/internal/shared/logger"
	"github.com/auctionroom/auctionroom/internal/shared/scheduler"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// AdminHandler exposes the thin REST surface for auction management.
// Authentication sits in front of it and is not handled here.
type AdminHandler struct {
	admin     *application.AdminService
	lifecycle *application.LifecycleService
	auctions  domain.AuctionRepository
	scheduler *scheduler.ActivationScheduler
}

func NewAdminHandler(admin *application.AdminService, lifecycle *application.LifecycleService, auctions domain.AuctionRepository, sched *scheduler.ActivationScheduler) *AdminHandler {
	return &AdminHandler{
		admin:     admin,
		lifecycle: lifecycle,
		auctions:  auctions,
		scheduler: sched,
	}
}

// Register mounts the admin routes on the fiber app.
func (h *AdminHandler) Register(app *fiber.App) {
	grp := app.Group("/admin")
	grp.Get("/auctions", h.listAuctions)
	grp.Post("/auctions", h.createAuction)
	grp.Post("/auctions/:slug/lots", h.createLot)
	grp.Post("/auctions/:slug/participants", h.createParticipant)
	grp.Post("/auctions/:slug/status", h.changeStatus)
	grp.Delete("/auctions/:slug/schedule", h.cancelActivation)
	grp.Post("/vendors", h.createVendor)
	grp.Get("/lots/:id/bids", h.bidLog)
}

type createAuctionRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	StartTime   *time.Time `json:"start_time"`
	EndTime     *time.Time `json:"end_time"`
}

func (h *AdminHandler) createAuction(c *fiber.Ctx) error {
	var req createAuctionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Title == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "title is required"})
	}

	a, err := h.admin.CreateAuction(c.Context(), req.Title, req.Description, req.StartTime, req.EndTime)
	if err != nil {
		return h.fail(c, err)
	}

	// A start time arms automatic activation; Activate tolerates the timer
	// racing a manual go-live.
	if a.StartTime != nil {
		h.scheduler.ScheduleActivation(a.ID, *a.StartTime)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":         a.ID,
		"slug":       a.Slug,
		"public_url": "/a/" + a.Slug,
	})
}

func (h *AdminHandler) listAuctions(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", 10)
	offset := c.QueryInt("offset", 0)
	if limit < 1 || limit > 100 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}
	auctions, err := h.admin.ListAuctions(c.Context(), limit, offset)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(auctions)
}

type createLotRequest struct {
	Name         string          `json:"name"`
	BasePrice    decimal.Decimal `json:"base_price"`
	MinIncrement decimal.Decimal `json:"min_increment"`
	Currency     string          `json:"currency"`
	EndTime      *time.Time      `json:"end_time"`
	ExtensionSec int             `json:"extension_sec"`
}

func (h *AdminHandler) createLot(c *fiber.Ctx) error {
	var req createLotRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Name == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name is required"})
	}
	if !req.MinIncrement.IsPositive() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "min_increment must be positive"})
	}
	if req.ExtensionSec < 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "extension_sec must not be negative"})
	}
	if req.Currency == "" {
		req.Currency = "EUR"
	}

	lot, err := h.admin.CreateLot(c.Context(), c.Params("slug"), req.Name, req.BasePrice, req.MinIncrement, req.Currency, req.EndTime, req.ExtensionSec)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(lot)
}

type createParticipantRequest struct {
	VendorID uuid.UUID `json:"vendor_id"`
}

func (h *AdminHandler) createParticipant(c *fiber.Ctx) error {
	var req createParticipantRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	p, err := h.admin.CreateParticipant(c.Context(), c.Params("slug"), req.VendorID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":           p.ID,
		"invite_token": p.InviteToken,
		"join_url":     "/a/" + c.Params("slug") + "?t=" + p.InviteToken,
	})
}

type createVendorRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Comment string `json:"comment"`
}

func (h *AdminHandler) createVendor(c *fiber.Ctx) error {
	var req createVendorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if req.Name == "" || req.Email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "name and email are required"})
	}
	v, err := h.admin.CreateVendor(c.Context(), req.Name, req.Email, req.Comment)
	if err != nil {
		return h.fail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(v)
}

type changeStatusRequest struct {
	Status domain.AuctionStatus `json:"status"`
}

func (h *AdminHandler) changeStatus(c *fiber.Ctx) error {
	var req changeStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if !req.Status.Valid() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "unknown status"})
	}
	a, err := h.auctions.GetBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return h.fail(c, err)
	}
	if err := h.lifecycle.ChangeStatus(c.Context(), a.ID, req.Status); err != nil {
		return h.fail(c, err)
	}
	return c.JSON(fiber.Map{"slug": a.Slug, "status": req.Status})
}

func (h *AdminHandler) cancelActivation(c *fiber.Ctx) error {
	a, err := h.auctions.GetBySlug(c.Context(), c.Params("slug"))
	if err != nil {
		return h.fail(c, err)
	}
	h.scheduler.CancelActivation(a.ID)
	return c.SendStatus(fiber.StatusNoContent)
}

func (h *AdminHandler) bidLog(c *fiber.Ctx) error {
	lotID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid lot id"})
	}
	bids, err := h.admin.BidLog(c.Context(), lotID)
	if err != nil {
		return h.fail(c, err)
	}
	return c.JSON(bids)
}

func (h *AdminHandler) fail(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, domain.ErrAuctionNotFound),
		errors.Is(err, domain.ErrLotNotFound),
		errors.Is(err, domain.ErrVendorNotFound),
		errors.Is(err, domain.ErrParticipantNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidTransition):
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
	default:
		log.Error("admin request failed",
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
	}
}
