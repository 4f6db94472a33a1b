package handler

import "github.com/labstack/echo/v4"

// Response is the envelope every endpoint returns: success flag, a
// human-readable message the client may surface verbatim, and an optional
// payload.
type Response struct {
    Success bool        `json:"success"`
    Message string      `json:"message"`
    Data    interface{} `json:"data,omitempty"`
}

func respondOK(c echo.Context, status int, message string, data interface{}) error {
    return c.JSON(status, Response{Success: true, Message: message, Data: data})
}

func respondErr(c echo.Context, status int, message string) error {
    return c.JSON(status, Response{Success: false, Message: message})
}
