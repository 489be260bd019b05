package main

import (
	"net/http"
	"time"

	"campus-commerce/internal/config"
	"campus-commerce/internal/httpapi"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func registerRoutes(r *gin.Engine, cfg config.Config, h httpapi.Handlers, auth, writeCap gin.HandlerFunc) {
	if len(cfg.App.AllowedOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.App.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := r.Group("/api")

	products := api.Group("/products")
	products.GET("/public", h.ListPublicProducts)

	authedProducts := products.Group("", auth)
	authedProducts.GET("", h.ListProducts)
	authedProducts.GET("/:id", h.GetProduct)
	authedProducts.POST("", writeCap, h.CreateProduct)
	authedProducts.POST("/form", writeCap, h.CreateProductForm)
	authedProducts.PUT("/:id", writeCap, h.UpdateProduct)
	authedProducts.PUT("/:id/form", writeCap, h.UpdateProductForm)
	authedProducts.DELETE("/:id", writeCap, h.DeleteProduct)

	carts := api.Group("/cart", auth)
	carts.GET("", h.GetCart)
	carts.GET("/full", h.GetCartFull)
	carts.POST("/items", h.AddCartItem)
	carts.PUT("/items", h.SetCartItem)
	carts.DELETE("/items/:product_id", h.RemoveCartItem)
	carts.DELETE("", h.ClearCart)

	authed := api.Group("/auth", auth)
	authed.GET("/me", h.Me)
}
