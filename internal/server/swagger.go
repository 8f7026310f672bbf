package server

//go:generate swag init -g internal/server/swagger.go -o internal/server/docs

// @title policysim API
// @version 0.1
// @description Lever-driven MDR policy simulation over the LMIC intervention results.
// @contact.name policysim maintainers
// @contact.url https://github.com/raysh454/policysim
// @BasePath /

import (
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/raysh454/policysim/internal/server/docs" // registers the swagger document
)

func swaggerHandler() http.HandlerFunc {
	return httpSwagger.Handler(httpSwagger.URL("/swagger/doc.json"))
}
