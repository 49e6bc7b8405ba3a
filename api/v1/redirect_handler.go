package v1

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	"log/slog"

	"linkdeck/internal/clicks"
	"linkdeck/internal/config"
	"linkdeck/internal/links"
)

// RedirectLinkHandler records a click and 302s the visitor to the link's
// target. Recording failures never block the redirect; losing one event
// beats stranding a visitor.
func RedirectLinkHandler(ctx *cartridge.Context) error {
	linkID, err := ctx.ParamsInt("id")
	if err != nil || linkID <= 0 {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid link id"})
	}

	link, err := links.FindByID(ctx.DB(), uint(linkID))
	if err != nil || !link.IsActive {
		return ctx.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "link not found"})
	}

	input := &clicks.RecordClickInput{
		LinkID:      link.ID,
		ProfileID:   link.ProfileID,
		IPAddress:   getClientIP(ctx.Ctx),
		UserAgent:   ctx.Get("User-Agent"),
		ReferrerURL: ctx.Get("Referer"),
		UTMSource:   ctx.Query("utm_source"),
		UTMMedium:   ctx.Query("utm_medium"),
		UTMCampaign: ctx.Query("utm_campaign"),
		Timestamp:   time.Now().UTC(),
	}

	cfg := config.GetConfig()
	if err := clicks.RecordClick(ctx.DBManager, ctx.Logger, cfg.PrivateKey, input); err != nil {
		ctx.Logger.Error("Failed to record click",
			slog.Int("linkId", linkID),
			slog.Any("error", err))
	}

	return ctx.Redirect(link.URL, fiber.StatusFound)
}
