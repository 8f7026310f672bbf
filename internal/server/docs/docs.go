// Package docs holds the swagger document served under /swagger.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {
            "name": "policysim maintainers",
            "url": "https://github.com/raysh454/policysim"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/api/view": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Evaluate the dashboard for a lever state",
                "parameters": [
                    {"type": "boolean", "description": "Increase Audit Score", "name": "audit", "in": "query"},
                    {"type": "boolean", "description": "Use Rapid AST", "name": "ast", "in": "query"},
                    {"type": "boolean", "description": "Apply Targeted Therapy", "name": "therapy", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/app.View"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/api/regions": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Summed MDR change per region",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/model.RegionDelta"}}}
                }
            }
        },
        "/api/metrics": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Summary metrics",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/model.Metrics"}}
                }
            }
        },
        "/api/risk": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Risk bucket counts",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.RiskResponse"}},
                    "404": {"description": "No probability column", "schema": {"$ref": "#/definitions/server.ErrorResponse"}},
                    "422": {"description": "Null probability", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/api/records": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Derived records with MDR change and risk level",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.RecordsResponse"}}
                }
            }
        },
        "/api/reload": {
            "post": {
                "produces": ["application/json"],
                "tags": ["dataset"],
                "summary": "Reload the dataset from its source",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.ReloadResponse"}},
                    "422": {"description": "Schema or value error", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/healthz": {
            "get": {
                "produces": ["application/json"],
                "tags": ["dataset"],
                "summary": "Loaded dataset status",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.HealthResponse"}},
                    "503": {"description": "No dataset", "schema": {"$ref": "#/definitions/server.HealthResponse"}}
                }
            }
        }
    },
    "definitions": {
        "app.View": {
            "type": "object",
            "properties": {
                "dataset_id": {"type": "string"},
                "source": {"type": "string"},
                "loaded_at": {"type": "string"},
                "levers": {"$ref": "#/definitions/model.LeverState"},
                "metrics": {"$ref": "#/definitions/model.Metrics"},
                "regions": {"type": "array", "items": {"$ref": "#/definitions/model.RegionDelta"}},
                "risk_available": {"type": "boolean"},
                "risk": {"type": "array", "items": {"$ref": "#/definitions/model.BucketCount"}},
                "risk_total": {"type": "integer"},
                "risk_error": {"type": "string"},
                "drivers": {"type": "array", "items": {"$ref": "#/definitions/app.Driver"}}
            }
        },
        "app.Driver": {
            "type": "object",
            "properties": {
                "features": {"type": "array", "items": {"type": "string"}},
                "explanation": {"type": "string"}
            }
        },
        "model.LeverState": {
            "type": "object",
            "properties": {
                "audit_effect": {"type": "boolean"},
                "ast_effect": {"type": "boolean"},
                "therapy_adjustment": {"type": "boolean"}
            }
        },
        "model.Metrics": {
            "type": "object",
            "properties": {
                "total_cases": {"type": "integer"},
                "predicted_baseline": {"type": "number"},
                "predicted_after": {"type": "number"},
                "net_change": {"type": "number"}
            }
        },
        "model.RegionDelta": {
            "type": "object",
            "properties": {
                "region": {"type": "string"},
                "delta_mdr": {"type": "number"}
            }
        },
        "model.BucketCount": {
            "type": "object",
            "properties": {
                "level": {"type": "string", "enum": ["Green", "Yellow", "Red"]},
                "count": {"type": "integer"}
            }
        },
        "model.DerivedRecord": {
            "type": "object",
            "properties": {
                "region": {"type": "string"},
                "mdr_pred_intervention": {"type": "number"},
                "mdr_pred_targeted": {"type": "number"},
                "mdr_probability": {"type": "number"},
                "mdr_probability_invalid": {"type": "string"},
                "delta_mdr": {"type": "number"},
                "risk_level": {"type": "string"}
            }
        },
        "server.RiskResponse": {
            "type": "object",
            "properties": {
                "buckets": {"type": "array", "items": {"$ref": "#/definitions/model.BucketCount"}},
                "total": {"type": "integer", "example": 120}
            }
        },
        "server.RecordsResponse": {
            "type": "object",
            "properties": {
                "levers": {"$ref": "#/definitions/model.LeverState"},
                "records": {"type": "array", "items": {"$ref": "#/definitions/model.DerivedRecord"}}
            }
        },
        "server.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "ok"},
                "dataset_id": {"type": "string"},
                "source": {"type": "string"},
                "records": {"type": "integer", "example": 120},
                "loaded_at": {"type": "string"}
            }
        },
        "server.ReloadResponse": {
            "type": "object",
            "properties": {
                "dataset_id": {"type": "string"},
                "records": {"type": "integer", "example": 120},
                "has_probability": {"type": "boolean", "example": true}
            }
        },
        "server.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "no dataset loaded"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "0.1",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "policysim API",
	Description:      "Lever-driven MDR policy simulation over the LMIC intervention results.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
