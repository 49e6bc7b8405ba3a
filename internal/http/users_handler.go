package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/karloscodes/cartridge"
	"github.com/karloscodes/cartridge/crypto"
	"log/slog"

	"linkdeck/internal/users"
)

// ProcessLoginAction handles the login request
func ProcessLoginAction(ctx *cartridge.Context) error {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := ctx.BodyParser(&body); err != nil {
		return errorJSON(ctx, fiber.StatusBadRequest, "invalid request body")
	}
	if body.Email == "" || body.Password == "" {
		return errorJSON(ctx, fiber.StatusBadRequest, "email and password are required")
	}

	db := ctx.DB()
	user, err := users.FindByEmail(db, body.Email)

	// Always verify a password so response time does not reveal whether
	// the email exists.
	var passwordValid bool
	if err != nil {
		ctx.Logger.Debug("User not found during login",
			slog.String("email", body.Email))
		dummyHash := "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy" // bcrypt hash of "dummy"
		crypto.VerifyPassword(dummyHash, body.Password)
		passwordValid = false
	} else {
		passwordValid = crypto.VerifyPassword(user.EncryptedPassword, body.Password)
		if !passwordValid {
			ctx.Logger.Debug("Invalid password attempt",
				slog.String("email", body.Email))
		}
	}

	if !passwordValid {
		// Generic message - don't reveal whether the email exists
		return errorJSON(ctx, fiber.StatusUnauthorized, "invalid email or password")
	}

	if err := ctx.Session.SetSession(ctx.Ctx, user.ID); err != nil {
		ctx.Logger.Error("Failed to set session", slog.Any("error", err))
		return errorJSON(ctx, fiber.StatusInternalServerError, "login failed")
	}

	ctx.Logger.Debug("Login successful",
		slog.String("email", body.Email),
		slog.Int("userId", int(user.ID)))

	return ctx.JSON(fiber.Map{
		"user": fiber.Map{
			"id":    user.ID,
			"email": user.Email,
		},
	})
}

// LogoutAction handles user logout
func LogoutAction(ctx *cartridge.Context) error {
	ctx.Session.ClearSession(ctx.Ctx)
	return ctx.SendStatus(fiber.StatusNoContent)
}

// ChangePasswordAction lets the signed-in user rotate their password.
func ChangePasswordAction(ctx *cartridge.Context) error {
	userID, ok := ctx.Session.GetUserID(ctx.Ctx)
	if !ok {
		return errorJSON(ctx, fiber.StatusUnauthorized, "authentication required")
	}

	var body struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := ctx.BodyParser(&body); err != nil {
		return errorJSON(ctx, fiber.StatusBadRequest, "invalid request body")
	}
	if len(body.NewPassword) < 8 {
		return errorJSON(ctx, fiber.StatusBadRequest, "new password must be at least 8 characters")
	}

	db := ctx.DB()
	user, err := users.FindByID(db, userID)
	if err != nil {
		return errorJSON(ctx, fiber.StatusUnauthorized, "authentication required")
	}

	if !crypto.VerifyPassword(user.EncryptedPassword, body.CurrentPassword) {
		return errorJSON(ctx, fiber.StatusUnauthorized, "current password is incorrect")
	}

	if err := users.ChangePassword(db, user.Email, body.NewPassword); err != nil {
		ctx.Logger.Error("Failed to change password", slog.Any("error", err))
		return errorJSON(ctx, fiber.StatusInternalServerError, "failed to change password")
	}

	return ctx.JSON(fiber.Map{"status": "ok"})
}
