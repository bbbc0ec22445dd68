package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterSwagger registers minimal Swagger/OpenAPI endpoints.
// - GET /swagger/index.html  -> a small HTML page that loads the OpenAPI JSON
// - GET /swagger/doc.json    -> machine-readable OpenAPI JSON
func RegisterSwagger(rg *gin.Engine) {
	rg.GET("/swagger/index.html", func(c *gin.Context) {
		c.Header("Content-Type", "text/html; charset=utf-8")
		c.String(http.StatusOK, swaggerHTML)
	})

	rg.GET("/swagger/doc.json", func(c *gin.Context) {
		c.JSON(http.StatusOK, swaggerJSON)
	})
}

const swaggerHTML = `<!doctype html>
<html>
  <head>
    <meta charset="utf-8" />
    <title>classfeed — Swagger</title>
    <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@4/swagger-ui.css" />
  </head>
  <body>
    <div id="swagger-ui"></div>
    <script src="https://unpkg.com/swagger-ui-dist@4/swagger-ui-bundle.js"></script>
    <script>
      window.ui = SwaggerUIBundle({
        url: '/swagger/doc.json',
        dom_id: '#swagger-ui',
      })
    </script>
  </body>
</html>`

// Minimal OpenAPI document describing the public endpoints.
const swaggerJSON = `{
  "openapi": "3.0.0",
  "info": { "title": "classfeed", "version": "v0.1.0" },
  "paths": {
    "/auth/register": {
      "post": { "summary": "Create account and profile", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"username":{"type":"string"},"email":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "201": { "description": "tokens and profile" }, "409": { "description": "email in use" } } }
    },
    "/auth/login": {
      "post": { "summary": "Sign in with email and password", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"email":{"type":"string"},"password":{"type":"string"}}}}}}, "responses": { "200": { "description": "tokens returned" }, "401": { "description": "invalid credentials" } } }
    },
    "/auth/refresh": {
      "post": { "summary": "Refresh access token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "new access token" }, "401": { "description": "invalid refresh" } } }
    },
    "/auth/logout": {
      "post": { "summary": "Logout and invalidate refresh token", "requestBody": { "content": { "application/json": { "schema": {"type":"object","properties":{"refreshToken":{"type":"string"}}}}}}, "responses": { "200": { "description": "logged out" } } }
    },
    "/api/v1/me": {
      "get": { "summary": "Current session, role and navigable routes", "responses": { "200": { "description": "session info" }, "401": { "description": "not authenticated" } } }
    },
    "/api/posts": {
      "get": { "summary": "List posts, newest first", "responses": { "200": { "description": "posts" } } },
      "post": { "summary": "Create a post (instructor only, multipart with optional image)", "responses": { "201": { "description": "created" }, "403": { "description": "not an instructor" } } }
    },
    "/api/posts/{id}": {
      "get": { "summary": "Fetch one post", "responses": { "200": { "description": "post" }, "404": { "description": "not found" } } },
      "patch": { "summary": "Edit a post (author only)", "responses": { "200": { "description": "updated" }, "403": { "description": "not the author" } } },
      "delete": { "summary": "Delete a post (author only)", "responses": { "200": { "description": "deleted" }, "403": { "description": "not the author" } } }
    },
    "/api/users": {
      "get": { "summary": "List all profiles", "responses": { "200": { "description": "profiles" } } }
    },
    "/api/users/students": {
      "get": { "summary": "List student profiles", "responses": { "200": { "description": "profiles" } } }
    },
    "/api/users/instructors": {
      "get": { "summary": "List instructor profiles", "responses": { "200": { "description": "profiles" } } },
      "post": { "summary": "Grant the instructor role by email", "responses": { "200": { "description": "promoted profile" }, "403": { "description": "caller not instructor" }, "404": { "description": "no matching user" } } }
    },
    "/health": { "get": { "summary": "Liveness check", "responses": { "200": { "description": "healthy" } } } },
    "/ready": { "get": { "summary": "Readiness check", "responses": { "200": { "description": "ready" }, "503": { "description": "not ready" } } } }
  }
}`
