// Package docs registers the OpenAPI document served under /swagger/.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/recipes": {
            "get": {
                "produces": ["application/json"],
                "summary": "Search recipes",
                "parameters": [
                    {"type": "integer", "description": "Restaurant ID", "name": "X-Restaurant-ID", "in": "header"},
                    {"type": "string", "description": "Case-insensitive text matched against title and ingredients", "name": "q", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/api.recipeResponse"}}},
                    "400": {"description": "Bad Request"}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Add recipe",
                "parameters": [
                    {"type": "integer", "description": "Restaurant ID", "name": "X-Restaurant-ID", "in": "header", "required": true},
                    {"type": "string", "description": "Replay protection key", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Recipe", "name": "recipe", "in": "body", "required": true, "schema": {"$ref": "#/definitions/api.recipeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/api.createdResponse"}},
                    "400": {"description": "Bad Request"}
                }
            }
        },
        "/api/recipes/{id}": {
            "delete": {
                "produces": ["application/json"],
                "summary": "Delete recipe",
                "parameters": [
                    {"type": "integer", "description": "Restaurant ID", "name": "X-Restaurant-ID", "in": "header", "required": true},
                    {"type": "integer", "description": "Recipe ID", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.statusResponse"}},
                    "400": {"description": "Bad Request"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/api.statusResponse"}}}
            }
        }
    },
    "definitions": {
        "api.recipeRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "ingredients": {"type": "string"},
                "instructions": {"type": "string"},
                "yield": {"type": "string"}
            }
        },
        "api.recipeResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "ingredients": {"type": "string"},
                "yield": {"type": "string"},
                "instructions": {"type": "string"}
            }
        },
        "api.createdResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "status": {"type": "string"}
            }
        },
        "api.statusResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "KitchenOS API",
	Description:      "Multi-tenant recipe catalog",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
