package utils

import "github.com/gofiber/fiber/v2"

// Success writes payload's keys at the top level next to "success": true.
func Success(c *fiber.Ctx, status int, payload fiber.Map) error {
	body := fiber.Map{"success": true}
	for key, value := range payload {
		body[key] = value
	}
	return c.Status(status).JSON(body)
}

func Error(c *fiber.Ctx, status int, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"success": false,
		"error":   message,
	})
}

// ErrorWithDetails writes an arbitrary error value, such as a relayed
// upstream body, plus optional extra keys.
func ErrorWithDetails(c *fiber.Ctx, status int, errValue interface{}, extra fiber.Map) error {
	body := fiber.Map{
		"success": false,
		"error":   errValue,
	}
	for key, value := range extra {
		body[key] = value
	}
	return c.Status(status).JSON(body)
}
