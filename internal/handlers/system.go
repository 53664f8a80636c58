package handlers

import "github.com/gofiber/fiber/v2"

func Home(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status":  "ok",
		"message": "Drive Clone Backend is running",
		"endpoints": []string{
			"/auth/signup",
			"/auth/login",
			"/auth/profile",
			"/files/upload",
			"/files",
			"/files/trash",
		},
	})
}

func Health(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "ok"})
}
