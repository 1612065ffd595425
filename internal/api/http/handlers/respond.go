package handlers

import "github.com/gofiber/fiber/v2"

func respondOK(c *fiber.Ctx, data any) error {
	return c.JSON(fiber.Map{"success": true, "data": data})
}

func respondCreated(c *fiber.Ctx, data any) error {
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"success": true, "data": data})
}

func respondNoData(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"success": true})
}
