package handler

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"medvault/internal/config"
	"medvault/internal/http/middleware"
	"medvault/internal/model"
	"medvault/internal/service"
)

type registerRequest struct {
	Email           string `json:"email" form:"email"`
	FirstName       string `json:"first_name" form:"first_name"`
	LastName        string `json:"last_name" form:"last_name"`
	Password        string `json:"password" form:"password"`
	PasswordConfirm string `json:"password_confirm" form:"password_confirm"`
	Role            string `json:"role" form:"role"`
}

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// RegisterForm describes the registration form for API clients.
func RegisterForm() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"roles":  []model.Role{model.RolePatient, model.RoleDoctor},
			"fields": []string{"email", "first_name", "last_name", "password", "password_confirm", "role"},
		})
	}
}

// Register creates an account and points the client at the login page.
func Register(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req registerRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "malformed request body")
		}

		u, err := svc.Register(c.UserContext(), service.RegisterInput{
			Email:           req.Email,
			FirstName:       req.FirstName,
			LastName:        req.LastName,
			Password:        req.Password,
			PasswordConfirm: req.PasswordConfirm,
			Role:            req.Role,
		})
		if err != nil {
			return writeServiceError(c, err)
		}

		if middleware.WantsHTML(c) {
			return c.Redirect(middleware.LoginPath, fiber.StatusSeeOther)
		}
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{
			"user":        u,
			"redirect_to": middleware.LoginPath,
		})
	}
}

// LoginForm describes the login form for API clients.
func LoginForm() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"fields": []string{"email", "password"},
		})
	}
}

// Login verifies credentials, sets the session cookie, and redirects to the
// role's dashboard.
func Login(svc service.AuthService, cfg config.AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req loginRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", "malformed request body")
		}

		res, err := svc.Login(c.UserContext(), req.Email, req.Password)
		if err != nil {
			return writeServiceError(c, err)
		}

		c.Cookie(&fiber.Cookie{
			Name:     cfg.SessionCookie,
			Value:    res.Token,
			Expires:  time.Now().Add(time.Duration(cfg.SessionTTLMin) * time.Minute),
			HTTPOnly: true,
			Secure:   cfg.CookieSecure,
			SameSite: fiber.CookieSameSiteLaxMode,
			Path:     "/",
		})

		if middleware.WantsHTML(c) {
			return c.Redirect(res.RedirectTo, fiber.StatusSeeOther)
		}
		return c.JSON(fiber.Map{
			"token":       res.Token,
			"user":        res.User,
			"redirect_to": res.RedirectTo,
		})
	}
}

// Logout clears the session cookie and sends the client to registration.
func Logout(cfg config.AuthConfig) fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Cookie(&fiber.Cookie{
			Name:     cfg.SessionCookie,
			Value:    "",
			Expires:  time.Now().Add(-time.Hour),
			HTTPOnly: true,
			Secure:   cfg.CookieSecure,
			SameSite: fiber.CookieSameSiteLaxMode,
			Path:     "/",
		})
		return c.Redirect("/accounts/register/", fiber.StatusSeeOther)
	}
}

// Profile returns the caller's own account record.
func Profile(svc service.AuthService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok := middleware.CallerFromCtx(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		u, err := svc.Profile(c.UserContext(), caller.UserID)
		if err != nil {
			return writeServiceError(c, err)
		}
		return c.JSON(u)
	}
}

// Dashboard redirects the caller to their role's dashboard.
func Dashboard() fiber.Handler {
	return func(c *fiber.Ctx) error {
		caller, ok := middleware.CallerFromCtx(c)
		if !ok {
			return fiber.ErrUnauthorized
		}
		return c.Redirect(caller.Role.DashboardPath(), fiber.StatusSeeOther)
	}
}
