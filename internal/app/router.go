package app

import (
	"github.com/gin-gonic/gin"

	"geoimages/internal/domain/photo"
	"geoimages/internal/middleware"
)

// NewRouter builds the HTTP engine with the middleware stack and the image
// routes mounted at the root.
func NewRouter(a *App) *gin.Engine {
	r := gin.New()
	// whole multipart body, plus headroom for form fields
	r.MaxMultipartMemory = a.Config.MaxUploadSize + 1<<20
	r.Use(
		middleware.RequestID(),
		middleware.ErrorLogger(a.Logger),
		middleware.AccessLogger(a.Logger),
		middleware.CORS(a.Config.CORSOrigins...),
	)
	photo.RegisterRoutes(r, photo.NewHandler(a.Service))
	return r
}
