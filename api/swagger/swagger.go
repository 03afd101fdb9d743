package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "HavenPaws Shelter API",
        "description": "Role-gated shelter management: pets, adoptions, donations and medical records",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Authentication", "description": "Operator accounts and sessions"},
        {"name": "Pets", "description": "Shelter animal roster"},
        {"name": "Adoptions", "description": "Adoption processing"},
        {"name": "Donations", "description": "Donation intake"},
        {"name": "MedicalRecords", "description": "Treatment history"},
        {"name": "Dashboard", "description": "Operator dashboard"},
        {"name": "Reports", "description": "CSV and PDF exports"},
        {"name": "Users", "description": "Operator account administration"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register operator account",
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Username or email taken", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate operator",
                "responses": {
                    "200": {"description": "Token pair", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Rotate refresh token",
                "responses": {
                    "200": {"description": "New token pair"},
                    "401": {"description": "Invalid or revoked token"}
                }
            }
        },
        "/pets": {
            "get": {
                "tags": ["Pets"],
                "summary": "List pets",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "status", "in": "query", "type": "string", "enum": ["available", "adopted", "foster"]},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Pet list", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Pets"],
                "summary": "Create pet (admin)",
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json", "multipart/form-data"],
                "responses": {
                    "201": {"description": "Created"},
                    "403": {"description": "Employee access denied"},
                    "415": {"description": "Unsupported image format"}
                }
            }
        },
        "/pets/{id}": {
            "get": {
                "tags": ["Pets"],
                "summary": "Pet detail with medical history",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Pet detail"},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Pets"],
                "summary": "Update pet (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "200": {"description": "Updated"},
                    "404": {"description": "Not found"}
                }
            },
            "delete": {
                "tags": ["Pets"],
                "summary": "Delete pet with its adoption and medical history (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "type": "string", "required": true}],
                "responses": {
                    "204": {"description": "Deleted"},
                    "404": {"description": "Not found"}
                }
            }
        },
        "/adoptions": {
            "get": {
                "tags": ["Adoptions"],
                "summary": "List adoptions (employees see own only)",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Adoption list"}}
            },
            "post": {
                "tags": ["Adoptions"],
                "summary": "Process adoption; marks pet adopted atomically",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Unknown pet reference"},
                    "409": {"description": "Pet not available"}
                }
            }
        },
        "/donations": {
            "get": {
                "tags": ["Donations"],
                "summary": "List donations (employees see own only)",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Donation list"}}
            },
            "post": {
                "tags": ["Donations"],
                "summary": "Record donation",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Validation failed"}
                }
            }
        },
        "/medical-records": {
            "get": {
                "tags": ["MedicalRecords"],
                "summary": "List medical records",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Record list"}}
            },
            "post": {
                "tags": ["MedicalRecords"],
                "summary": "Record treatment (admin)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "400": {"description": "Unknown pet or donation reference"},
                    "403": {"description": "Employee access denied"}
                }
            }
        },
        "/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Counts and recent activity, role-scoped",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "Dashboard payload"}}
            }
        },
        "/reports/{entity}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Export entity data as CSV or PDF (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "entity", "in": "path", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {
                    "200": {"description": "File attachment"},
                    "403": {"description": "Admin only"}
                }
            }
        },
        "/users": {
            "get": {
                "tags": ["Users"],
                "summary": "List operator accounts (admin)",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "User list"},
                    "403": {"description": "Admin only"}
                }
            }
        }
    },
    "definitions": {
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"},
                "details": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "field": {"type": "string"},
                            "reason": {"type": "string"}
                        }
                    }
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
