package main

import (
	"log"
	"os"

	"bookwise/app"
	"bookwise/config"
	"bookwise/routes"
)

func main() {
	config.LoadEnv()

	application := app.MustNew(config.Load())
	defer application.Close()

	r := application.Router

	// Health
	r.GET("/healthz", func(c *app.Ctx) { c.JSON(200, app.H{"ok": true}) })

	routes.RegisterRoutes(r, application)

	// Due workflow runs are picked up in the background.
	application.Engine.Start()

	port := os.Getenv("PORT")
	if port == "" {
		port = "3001"
	}
	log.Printf("listening on :%s", port)
	_ = r.Run(":" + port)
}
