// Package docs registers the OpenAPI description served under /swagger.
// Regenerate with: swag init -g cmd/api/main.go
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/auth/register": {
            "post": {"tags": ["auth"], "summary": "Register a new user", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}}
        },
        "/api/auth/login": {
            "post": {"tags": ["auth"], "summary": "Login", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}}
        },
        "/api/auth/logout": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["auth"], "summary": "Logout", "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "502": {"description": "Bad Gateway"}}}
        },
        "/api/cart": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["cart"], "summary": "Get the caller's cart", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["cart"], "summary": "Add a product to the cart", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "404": {"description": "Not Found"}}}
        },
        "/api/cart/{productId}": {
            "put": {"security": [{"BearerAuth": []}], "tags": ["cart"], "summary": "Set the quantity of a cart line", "parameters": [{"type": "string", "name": "productId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}},
            "delete": {"security": [{"BearerAuth": []}], "tags": ["cart"], "summary": "Remove a product from the cart", "parameters": [{"type": "string", "name": "productId", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/api/payments/create-payment-intent": {
            "post": {"security": [{"BearerAuth": []}], "tags": ["payments"], "summary": "Create a payment intent", "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}, "429": {"description": "Too Many Requests"}, "502": {"description": "Bad Gateway"}}}
        },
        "/api/orders": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["orders"], "summary": "List the caller's orders, newest first", "responses": {"200": {"description": "OK"}}},
            "post": {"security": [{"BearerAuth": []}], "tags": ["orders"], "summary": "Finalize the cart into an order", "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}, "502": {"description": "Bad Gateway"}}}
        },
        "/api/sessions": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["sessions"], "summary": "List every session", "responses": {"200": {"description": "OK"}, "403": {"description": "Forbidden"}}}
        },
        "/api/sessions/user": {
            "get": {"security": [{"BearerAuth": []}], "tags": ["sessions"], "summary": "List the caller's sessions, newest first", "responses": {"200": {"description": "OK"}}}
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Storefront Commerce API",
	Description:      "Cart, payment intent and order finalization for the storefront.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
