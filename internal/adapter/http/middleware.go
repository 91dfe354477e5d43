package http

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// HeaderUserID carries the caller identity, already authenticated by the
// gateway in front of this service.
const HeaderUserID = "X-User-ID"

const localsUserID = "userID"

// RequireUser rejects requests without a valid X-User-ID and stores the id
// in the request locals.
func RequireUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		uid, err := uuid.Parse(c.Get(HeaderUserID))
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing or invalid " + HeaderUserID})
		}
		c.Locals(localsUserID, uid)
		return c.Next()
	}
}

func userID(c *fiber.Ctx) uuid.UUID {
	uid, _ := c.Locals(localsUserID).(uuid.UUID)
	return uid
}
