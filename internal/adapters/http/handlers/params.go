package handlers

import (
	"strconv"

	"github.com/gofiber/fiber/v2"
)

func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}

// monthQuery reads ?year=&month=, both required
func monthQuery(c *fiber.Ctx) (year, month int, ok bool) {
	year, errY := strconv.Atoi(c.Query("year"))
	month, errM := strconv.Atoi(c.Query("month"))
	return year, month, errY == nil && errM == nil
}
