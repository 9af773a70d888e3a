package middleware

import (
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"

	"proplead/config"
	"proplead/models"
	"proplead/utils"
)

// Protected requires a valid bearer credential and resolves the account
// behind it.
func Protected() fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c)
		if token == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": "Authorization required",
			})
		}

		user, err := resolveUser(token)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error": err.Error(),
			})
		}

		c.Locals("user", user)
		c.Locals("userID", user.ID)
		return c.Next()
	}
}

// OptionalAuth resolves the acting seeker for action recording: the real
// user when a valid credential is present, otherwise the anonymous identity.
// A successful authentication discards the anonymous cookie so subsequent
// actions attribute to the real user id.
func OptionalAuth() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if token := bearerToken(c); token != "" {
			user, err := resolveUser(token)
			if err != nil {
				return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
					"error": err.Error(),
				})
			}
			ClearAnonymousID(c)
			c.Locals("user", user)
			c.Locals("seekerID", fmt.Sprintf("%d", user.ID))
			c.Locals("isAnonymous", false)
			return c.Next()
		}

		c.Locals("seekerID", GetOrCreateAnonymousID(c))
		c.Locals("isAnonymous", true)
		return c.Next()
	}
}

func bearerToken(c *fiber.Ctx) string {
	authHeader := c.Get("Authorization")
	if authHeader != "" {
		tokenParts := strings.Split(authHeader, " ")
		if len(tokenParts) == 2 && tokenParts[0] == "Bearer" {
			return tokenParts[1]
		}
		return ""
	}
	return c.Cookies("access_token")
}

func resolveUser(token string) (*models.User, error) {
	claims, err := utils.ParseJWTToken(token)
	if err != nil {
		return nil, fmt.Errorf("invalid or expired token")
	}

	var user models.User
	if err := config.DB.First(&user, claims.UserID).Error; err != nil {
		return nil, fmt.Errorf("user not found")
	}

	if !user.IsActive {
		return nil, fmt.Errorf("account is not active")
	}

	if claims.TokenVersion != user.TokenVersion {
		return nil, fmt.Errorf("invalid token version")
	}

	return &user, nil
}
