package photo

import "github.com/gin-gonic/gin"

// RegisterRoutes mounts the image endpoints and the health check on r.
func RegisterRoutes(r gin.IRouter, h *Handler) {
	r.GET("/health", h.Health)

	images := r.Group("/images")
	{
		images.POST("", h.Upload)
		images.GET("", h.Query)
		images.GET("/:signature", h.Get)
		images.DELETE("/:signature", h.Delete)
	}
}
