package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ControlSST API",
        "description": "Occupational safety training compliance service",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Administrator login"},
        {"name": "Employees", "description": "Workforce records and training history"},
        {"name": "Sync", "description": "Sheet synchronization and manual import"},
        {"name": "Dashboard", "description": "Compliance overview"},
        {"name": "Settings", "description": "Company, admin and sync-source configuration"},
        {"name": "Photos", "description": "Training evidence gallery"},
        {"name": "Reports", "description": "Compliance matrix exports"},
        {"name": "Courses", "description": "Regulated course catalog"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate administrator",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "Access token issued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/courses": {
            "get": {
                "tags": ["Courses"],
                "summary": "List catalog courses",
                "responses": {
                    "200": {"description": "Course list", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/employees": {
            "get": {
                "tags": ["Employees"],
                "summary": "List employees",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "sector", "in": "query", "type": "string"},
                    {"name": "company", "in": "query", "type": "string"},
                    {"name": "course_id", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string", "enum": ["VALID", "EXPIRING", "EXPIRED", "NOT_TRAINED"]},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "Paginated employee list", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Employees"],
                "summary": "Create employee",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Employee"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Registration already in use", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/employees/lookup": {
            "get": {
                "tags": ["Employees"],
                "summary": "Lookup employee by registration",
                "parameters": [
                    {"name": "registration", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Employee with recomputed statuses", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Unknown registration", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/employees/{id}": {
            "get": {
                "tags": ["Employees"],
                "summary": "Get one employee",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Employee", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "patch": {
                "tags": ["Employees"],
                "summary": "Update employee fields",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/Employee"}}
                ],
                "responses": {
                    "200": {"description": "Updated employee", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Employees"],
                "summary": "Delete employee",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/api/v1/employees/{id}/trainings": {
            "put": {
                "tags": ["Employees"],
                "summary": "Set a training completion date",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TrainingUpdate"}}
                ],
                "responses": {
                    "200": {"description": "Employee with recomputed statuses", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/sync": {
            "post": {
                "tags": ["Sync"],
                "summary": "Run sheet synchronization",
                "responses": {
                    "200": {"description": "Synchronization outcome", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Synchronization already running", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "No sheet URL configured", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "502": {"description": "Source unreachable or rejected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/sync/status": {
            "get": {
                "tags": ["Sync"],
                "summary": "Synchronization status",
                "responses": {
                    "200": {"description": "In-progress flag and last sync marker", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/import": {
            "post": {
                "tags": ["Sync"],
                "summary": "Import pasted table data",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ImportRequest"}}
                ],
                "responses": {
                    "200": {"description": "Import outcome", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "422": {"description": "No recognizable records", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/dashboard": {
            "get": {
                "tags": ["Dashboard"],
                "summary": "Compliance dashboard summary",
                "responses": {
                    "200": {"description": "Totals, sector breakdown and upcoming expirations", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/reports": {
            "post": {
                "tags": ["Reports"],
                "summary": "Queue a compliance matrix report",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Queued report job", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Report job status",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Job status with download token when finished", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/api/v1/reports/download": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download a finished report",
                "parameters": [
                    {"name": "token", "in": "query", "required": true, "type": "string"}
                ],
                "produces": ["application/octet-stream"],
                "responses": {
                    "200": {"description": "Report artifact"},
                    "403": {"description": "Invalid or expired token"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "required": ["username", "password"],
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "Employee": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "registration": {"type": "string"},
                "role": {"type": "string"},
                "sector": {"type": "string"},
                "company": {"type": "string"},
                "photo_url": {"type": "string"},
                "trainings": {"type": "object"}
            }
        },
        "TrainingUpdate": {
            "type": "object",
            "required": ["course_id"],
            "properties": {
                "course_id": {"type": "string"},
                "completion_date": {"type": "string"}
            }
        },
        "ImportRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string"},
                "rows": {"type": "array", "items": {"type": "object"}}
            }
        },
        "ReportRequest": {
            "type": "object",
            "required": ["format"],
            "properties": {
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            }
        },
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
                "status": {"type": "integer"}
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
