package http

import (
	"github.com/gin-gonic/gin"
	"github.com/soview/salesorders/internal/adapter/config"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

type Router struct {
	*gin.Engine
}

func NewRouter(
	conf *config.HTTP,
	orderHandler *OrderHandler,
	itemHandler *ItemHandler) (*Router, error) {

	router := gin.New()

	// Swagger
	router.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := router.Group("/api")
	{
		orders := api.Group("/sales-orders")
		{
			orders.GET("", orderHandler.ListOrders)
			orders.POST("", orderHandler.CreateOrder)
			orders.GET("/:id", orderHandler.GetOrder)
			orders.PUT("/:id", orderHandler.UpdateOrder)
			orders.DELETE("/:id", orderHandler.DeleteOrder)

			items := orders.Group("/:id/items")
			{
				items.POST("", itemHandler.AddItem)
				items.PUT("/:itemId", itemHandler.UpdateItem)
				items.DELETE("/:itemId", itemHandler.DeleteItem)
			}
		}
	}

	return &Router{router}, nil
}

// Serve starts the HTTP server
func (r *Router) Serve(listenAddr string) error {
	return r.Run(listenAddr)
}
