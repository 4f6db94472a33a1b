// Package router wires handlers and middleware onto the Echo instance.
package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/nwssu-ccis/campus-parking/internal/config"
	"github.com/nwssu-ccis/campus-parking/internal/handler"
	"github.com/nwssu-ccis/campus-parking/internal/middleware"
)

// Handlers collects every handler the router mounts.
type Handlers struct {
	Auth    *handler.AuthHandler
	Slots   *handler.SlotHandler
	Booking *handler.BookingHandler
	Admin   *handler.AdminHandler
}

// RegisterRoutes mounts all routes.  rdb may be nil; rate limiting and
// response caching then degrade to pass-through.
func RegisterRoutes(e *echo.Echo, cfg config.Config, h Handlers, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	rl := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewRedisCache(config.LoadCacheConfig(), rdb)

	auth := e.Group("/v1/auth", rl)
	auth.POST("/signup", h.Auth.Signup)
	auth.POST("/login", h.Auth.Login)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.POST("/logout", h.Auth.Logout)

	v1 := e.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	v1.GET("/auth/me", h.Auth.Me)
	v1.POST("/auth/logout-all", h.Auth.LogoutAll)

	// The slot listing is read-heavy and safe to serve slightly stale.
	v1.GET("/slots", h.Slots.List, cache)
	v1.POST("/availability/check", h.Slots.CheckAvailability)

	v1.POST("/bookings", h.Booking.Create, rl)
	v1.GET("/my-bookings", h.Booking.MyBookings)

	admin := v1.Group("/admin", middleware.RequireRole("admin"))
	admin.GET("/dashboard/slots", h.Admin.DashboardSlots)
	admin.GET("/users", h.Admin.ListUsers)
}
