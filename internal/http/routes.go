package http

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func NewRouter(h *Handler) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestID())
	r.Use(Metrics())

	r.GET("/healthz", h.Healthz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	auth := r.Group("/auth")
	{
		auth.POST("/signup", h.rateLimit("signup"), h.Signup)
		auth.POST("/login", h.rateLimit("login"), h.Login)
		auth.GET("/profile", AuthJWT(h.Issuer, h.cookieMode()), h.Profile)

		// explicit routes per configured provider: /auth/google,
		// /auth/google/callback, ...
		for name := range h.Providers {
			auth.GET("/"+name, h.oauthStart(name))
			auth.GET("/"+name+"/callback", h.oauthCallback(name))
		}
	}

	notes := r.Group("/notes", AuthJWT(h.Issuer, h.cookieMode()))
	{
		notes.POST("", h.CreateNote)
		notes.GET("", h.ListNotes)
		notes.GET("/:id", h.GetNote)
		notes.PATCH("/:id", h.UpdateNote)
		notes.DELETE("/:id", h.DeleteNote)
	}

	return r
}
