package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Academic Assignment Helper API",
        "description": "Upload assignments, receive AI analysis, plagiarism checks and source suggestions.",
        "version": "2.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "System", "description": "Health and service metadata"},
        {"name": "Authentication", "description": "Student registration and tokens"},
        {"name": "Submissions", "description": "Assignment uploads and analyses"},
        {"name": "Sources", "description": "Academic source catalogue"}
    ],
    "paths": {
        "/": {
            "get": {
                "tags": ["System"],
                "summary": "Service banner",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/health": {
            "get": {
                "tags": ["System"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/HealthResponse"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register a student account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/RegisterResponse"}},
                    "400": {"description": "Validation failed or email taken", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate a student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/LoginResponse"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Describe the authenticated account",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/MeResponse"}},
                    "401": {"description": "Not authenticated", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/upload": {
            "post": {
                "tags": ["Submissions"],
                "summary": "Upload an assignment for analysis",
                "consumes": ["multipart/form-data"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "file", "in": "formData", "type": "file", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/UploadResponse"}},
                    "400": {"description": "Unsupported or unreadable file", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "401": {"description": "Not authenticated", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/submissions": {
            "get": {
                "tags": ["Submissions"],
                "summary": "List the caller's submissions",
                "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/analysis/{id}": {
            "get": {
                "tags": ["Submissions"],
                "summary": "Fetch a stored analysis",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK"},
                    "404": {"description": "Analysis not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/analysis/{id}/export": {
            "get": {
                "tags": ["Submissions"],
                "summary": "Download an analysis report",
                "produces": ["application/pdf", "text/csv"],
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "type": "string", "required": true},
                    {"name": "format", "in": "query", "type": "string", "enum": ["pdf", "csv"]}
                ],
                "responses": {
                    "200": {"description": "Report file"},
                    "400": {"description": "Unknown format", "schema": {"$ref": "#/definitions/ErrorBody"}},
                    "404": {"description": "Analysis not found", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        },
        "/sources": {
            "get": {
                "tags": ["Sources"],
                "summary": "Search academic sources",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "query", "in": "query", "type": "string", "required": true},
                    {"name": "top_k", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SourceSearchResponse"}},
                    "400": {"description": "Missing query", "schema": {"$ref": "#/definitions/ErrorBody"}}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["email", "password", "full_name", "student_id"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string", "maxLength": 72},
                "full_name": {"type": "string"},
                "student_id": {"type": "string"}
            }
        },
        "RegisterResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "user_id": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "LoginResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "expires_in": {"type": "integer"}
            }
        },
        "MeResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "full_name": {"type": "string"},
                "student_id": {"type": "string"},
                "role": {"type": "string"}
            }
        },
        "UploadResponse": {
            "type": "object",
            "properties": {
                "job_id": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "string"},
                "assignment_id": {"type": "string"},
                "analysis_id": {"type": "string"},
                "degraded": {"type": "boolean"}
            }
        },
        "SourceReference": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "title": {"type": "string"},
                "authors": {"type": "string"},
                "year": {"type": "integer"},
                "abstract": {"type": "string"},
                "type": {"type": "string", "enum": ["textbook", "paper", "article", "thesis", "website"]},
                "similarity_score": {"type": "number"}
            }
        },
        "SourceSearchResponse": {
            "type": "object",
            "properties": {
                "query": {"type": "string"},
                "sources": {"type": "array", "items": {"$ref": "#/definitions/SourceReference"}},
                "degraded": {"type": "boolean"}
            }
        },
        "HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "service": {"type": "string"},
                "database": {"type": "string"},
                "openai_configured": {"type": "boolean"},
                "version": {"type": "string"}
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
        "ErrorBody": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/APIError"},
                "detail": {"type": "string"}
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
