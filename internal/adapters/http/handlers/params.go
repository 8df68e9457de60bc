package handlers

import (
	"strconv"
	"time"

	"aidtrust/internal/core/domain"

	"github.com/gofiber/fiber/v2"
)

const dateLayout = "2006-01-02"

// parseID reads a positive numeric route parameter
func parseID(c *fiber.Ctx, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, domain.Invalidf("Invalid %s.", name)
	}
	return uint(id), nil
}

// parseDate reads an RFC 3339 timestamp or a YYYY-MM-DD date. A date-only
// value marks the start of that day, or its last instant when endOfDay is set.
func parseDate(value, field string, endOfDay bool) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return &t, nil
	}

	t, err := time.Parse(dateLayout, value)
	if err != nil {
		return nil, domain.Invalidf("%s must be a date (YYYY-MM-DD) or RFC 3339 timestamp.", field)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// dateRange reads the startDate and endDate query parameters
func dateRange(c *fiber.Ctx) (start, end *time.Time, err error) {
	if start, err = parseDate(c.Query("startDate"), "startDate", false); err != nil {
		return nil, nil, err
	}
	if end, err = parseDate(c.Query("endDate"), "endDate", true); err != nil {
		return nil, nil, err
	}
	return start, end, nil
}
