package main

import (
	"github.com/gin-gonic/gin"

	"equi-cloud.backend/internal/interfaces/http/handlers"
)

type routeDeps struct {
	settingsHandler  *handlers.SettingsHandler
	dataStoreHandler *handlers.DataStoreHandler
	oauthHandler     *handlers.OAuthHandler
	accountHandler   *handlers.AccountHandler
	authMiddleware   gin.HandlerFunc
}

func registerAPIRoutes(r *gin.Engine, d routeDeps) {
	v1 := r.Group("/v1")
	{
		// OAuth routes (public)
		oauth := v1.Group("/oauth")
		{
			oauth.GET("/settings", d.oauthHandler.GetSettings)
			oauth.GET("/callback", d.oauthHandler.Callback)
		}

		// Account routes (protected)
		v1.GET("", d.authMiddleware, d.accountHandler.Info)
		v1.DELETE("", d.authMiddleware, d.accountHandler.DeleteAccount)

		// Settings routes (protected)
		settings := v1.Group("/settings")
		settings.Use(d.authMiddleware)
		{
			settings.HEAD("", d.settingsHandler.HeadSettings)
			settings.GET("", d.settingsHandler.GetSettings)
			settings.PUT("", d.settingsHandler.PutSettings)
			settings.DELETE("", d.settingsHandler.DeleteSettings)
		}
	}

	// Keyed datastore (protected)
	v2 := r.Group("/v2")
	v2.Use(d.authMiddleware)
	{
		v2.GET("/data/*key", d.dataStoreHandler.GetKey)
		v2.PUT("/data/*key", d.dataStoreHandler.PutKey)
		v2.DELETE("/data/*key", d.dataStoreHandler.DeleteKey)
		v2.GET("/manifest", d.dataStoreHandler.GetManifest)
		v2.POST("/sync", d.dataStoreHandler.Sync)
	}
}
