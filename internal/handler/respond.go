package handler

import "github.com/labstack/echo/v4"

// Response envelope helpers. Every success reply is shaped
// {status: "success", results?, data: {<name>: ...}}; list replies carry the
// page size in results. Error replies are shaped centrally by apperr.
func respondData(c echo.Context, code int, name string, v any) error {
	return c.JSON(code, echo.Map{
		"status": "success",
		"data":   echo.Map{name: v},
	})
}

func respondList(c echo.Context, code int, name string, results int, v any) error {
	return c.JSON(code, echo.Map{
		"status":  "success",
		"results": results,
		"data":    echo.Map{name: v},
	})
}
