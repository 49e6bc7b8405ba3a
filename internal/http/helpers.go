package http

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	"log/slog"

	"linkdeck/internal/profiles"
)

// errorJSON is the uniform error envelope for the JSON API.
func errorJSON(ctx *cartridge.Context, status int, message string) error {
	return ctx.Status(status).JSON(fiber.Map{"error": message})
}

// currentProfile resolves the session user's own profile. Every admin
// endpoint operates on this profile only; IDs from the request never
// select whose data gets touched.
func currentProfile(ctx *cartridge.Context) (*profiles.Profile, error) {
	userID, ok := ctx.Session.GetUserID(ctx.Ctx)
	if !ok {
		return nil, errorJSON(ctx, fiber.StatusUnauthorized, "authentication required")
	}

	profile, err := profiles.FindByUserID(ctx.DB(), userID)
	if err != nil {
		var notFound *profiles.ProfileNotFoundError
		if errors.As(err, &notFound) {
			return nil, errorJSON(ctx, fiber.StatusNotFound, "profile not found")
		}
		ctx.Logger.Error("Failed to load profile", slog.Any("error", err))
		return nil, errorJSON(ctx, fiber.StatusInternalServerError, "internal error")
	}
	return profile, nil
}
