// Package docs registers the OpenAPI description served under /swagger.
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
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["system"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/sessions": {
            "post": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Create session",
                "responses": {"201": {"description": "Created"}, "500": {"description": "Internal Server Error"}}
            }
        },
        "/api/v1/session": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Get session",
                "parameters": [{"type": "string", "name": "X-Session-ID", "in": "header", "required": true}],
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthorized"}, "404": {"description": "Not Found"}}
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "Update session",
                "parameters": [
                    {"type": "string", "name": "X-Session-ID", "in": "header", "required": true},
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handlers.UpdateSessionRequest"}}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}
            },
            "delete": {
                "produces": ["application/json"],
                "tags": ["sessions"],
                "summary": "End session",
                "parameters": [{"type": "string", "name": "X-Session-ID", "in": "header", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/v1/simulation/run": {
            "post": {
                "produces": ["application/json"],
                "tags": ["simulation"],
                "summary": "Run simulation (blocking)",
                "parameters": [
                    {"type": "string", "name": "X-Session-ID", "in": "header", "required": true},
                    {"type": "integer", "name": "iterations", "in": "query"},
                    {"type": "string", "name": "interval", "in": "query"},
                    {"type": "integer", "name": "interval_ms", "in": "query"},
                    {"type": "number", "name": "threshold", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/v1/simulation/ws": {
            "get": {
                "tags": ["simulation"],
                "summary": "Stream simulation (WebSocket)",
                "parameters": [{"type": "string", "name": "X-Session-ID", "in": "header", "required": true}],
                "responses": {"101": {"description": "Switching Protocols"}, "400": {"description": "Bad Request"}}
            }
        },
        "/api/v1/pump": {
            "get": {
                "produces": ["application/json"],
                "tags": ["pump"],
                "summary": "Manual pump status",
                "parameters": [{"type": "string", "name": "X-Session-ID", "in": "header", "required": true}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/v1/pump/on": {
            "post": {
                "produces": ["application/json"],
                "tags": ["pump"],
                "summary": "Turn pump on",
                "parameters": [{"type": "string", "name": "X-Session-ID", "in": "header", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/v1/pump/off": {
            "post": {
                "produces": ["application/json"],
                "tags": ["pump"],
                "summary": "Turn pump off",
                "parameters": [{"type": "string", "name": "X-Session-ID", "in": "header", "required": true}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Conflict"}}
            }
        },
        "/api/v1/logs/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["logs"],
                "summary": "List pump events",
                "parameters": [
                    {"type": "string", "name": "X-Session-ID", "in": "header", "required": true},
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"type": "string", "name": "type", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request"}}
            }
        }
    },
    "definitions": {
        "handlers.UpdateSessionRequest": {
            "type": "object",
            "properties": {
                "mode": {"type": "string", "example": "manual"},
                "humidity_threshold": {"type": "number", "example": 45}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "PUNOGARIA plant watering API",
	Description:      "Simulated automatic plant-watering controller: sensor polling, sky classification, pump decisions and manual override.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
