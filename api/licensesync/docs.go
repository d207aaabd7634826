// Package licensesync registers the OpenAPI document of the license sync
// service with swag so it can be served by http-swagger.
package licensesync

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "AussieBroadWAN Team",
            "url": "https://github.com/aussiebroadwan/licensing"
        },
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/livez": {
            "get": {
                "description": "Liveness probe endpoint returning basic service health status, uptime, and version information",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Health Check Endpoint",
                "responses": {
                    "200": {
                        "description": "status, uptime, version",
                        "schema": {"$ref": "#/definitions/http.HealthResponse"}
                    }
                }
            }
        },
        "/readyz": {
            "get": {
                "description": "Readiness probe endpoint returning service health status and checks for critical dependencies",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Readiness Check Endpoint",
                "responses": {
                    "200": {
                        "description": "status, uptime, version, checks",
                        "schema": {"$ref": "#/definitions/http.HealthResponse"}
                    },
                    "503": {
                        "description": "status, uptime, version, checks - service not ready",
                        "schema": {"$ref": "#/definitions/http.HealthResponse"}
                    }
                }
            }
        },
        "/v1/webhooks/orders": {
            "post": {
                "description": "Records an order status change and issues or revokes the order's license.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Webhooks"],
                "summary": "Order Status Webhook",
                "parameters": [
                    {
                        "type": "string",
                        "description": "sha256=<hex HMAC-SHA256 of the body>",
                        "name": "X-Signature",
                        "in": "header"
                    },
                    {
                        "description": "Order event",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/http.OrderWebhookRequest"}
                    }
                ],
                "responses": {
                    "202": {
                        "description": "event_id",
                        "schema": {"$ref": "#/definitions/http.OrderWebhookResponse"}
                    },
                    "400": {"description": "success, error", "schema": {"type": "object", "additionalProperties": {}}},
                    "401": {"description": "success, error", "schema": {"type": "object", "additionalProperties": {}}},
                    "429": {"description": "success, error", "schema": {"type": "object", "additionalProperties": {}}},
                    "500": {"description": "success, error", "schema": {"type": "object", "additionalProperties": {}}}
                }
            }
        }
    },
    "definitions": {
        "http.HealthChecks": {
            "type": "object",
            "properties": {
                "database": {"type": "string"},
                "license_service": {"type": "string"}
            }
        },
        "http.HealthResponse": {
            "type": "object",
            "properties": {
                "checks": {"$ref": "#/definitions/http.HealthChecks"},
                "status": {"type": "string"},
                "uptime": {"type": "string"},
                "version": {"type": "string"}
            }
        },
        "http.OrderWebhookRequest": {
            "type": "object",
            "properties": {
                "event_id": {"type": "string"},
                "order": {"$ref": "#/definitions/http.WebhookOrder"},
                "type": {
                    "type": "string",
                    "enum": ["order.completed", "order.refunded", "order.cancelled"]
                }
            }
        },
        "http.OrderWebhookResponse": {
            "type": "object",
            "properties": {
                "event_id": {"type": "string"}
            }
        },
        "http.WebhookOrder": {
            "type": "object",
            "properties": {
                "billing_email": {"type": "string"},
                "id": {"type": "string"},
                "items": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/orders.OrderItem"}
                }
            }
        },
        "orders.OrderItem": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "product_id": {"type": "string"},
                "quantity": {"type": "integer"},
                "sku": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http", "https"},
	Title:            "License Sync Service API",
	Description:      "Receives storefront order events and keeps licenses on the license service in step with them.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
