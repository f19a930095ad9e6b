package main

import (
	"joban-api/app"
)

// @title           Joban API
// @version         1.0
// @description     Kanban board backend with salted-password registration and cookie sessions.

// @contact.name   API Support
// @contact.email  support@example.com

// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT

// @host      localhost:8080
// @BasePath  /
// @securityDefinitions.apikey CookieAuth
// @in cookie
// @name DxpAccessToken
func main() {
	app.Run()
}
