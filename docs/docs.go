// Package docs registers the OpenAPI document served by the Swagger UI.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "title": "{{.Title}}",
        "description": "{{escape .Description}}",
        "version": "{{.Version}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        }
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "bearer": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Bearer token returned by /auth/login"
        }
    },
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["auth"],
                "summary": "Register a user and issue a token",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/TokenResponse"}}, "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ValidationError"}}}
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["auth"],
                "summary": "Exchange credentials for a bearer token",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/TokenResponse"}}, "401": {"description": "Invalid credentials"}}
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["auth"],
                "security": [{"bearer": []}],
                "summary": "Revoke the current token",
                "responses": {"200": {"description": "OK"}, "401": {"description": "Unauthenticated"}}
            }
        },
        "/user": {
            "get": {
                "tags": ["auth"],
                "security": [{"bearer": []}],
                "summary": "Current user",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/User"}}}
            }
        },
        "/articles": {
            "get": {
                "tags": ["articles"],
                "security": [{"bearer": []}],
                "summary": "List articles",
                "parameters": [
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "per_page", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ArticlePage"}}}
            }
        },
        "/articles/search": {
            "get": {
                "tags": ["articles"],
                "security": [{"bearer": []}],
                "summary": "Search articles by keyword, ingestion date range, category and source",
                "parameters": [
                    {"type": "string", "name": "keyword", "in": "query"},
                    {"type": "string", "name": "date_from", "in": "query", "description": "YYYY-MM-DD or RFC3339"},
                    {"type": "string", "name": "date_to", "in": "query", "description": "YYYY-MM-DD or RFC3339"},
                    {"type": "integer", "name": "category_id", "in": "query"},
                    {"type": "integer", "name": "source_id", "in": "query"},
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "per_page", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/SearchResult"}}, "422": {"description": "Validation failed", "schema": {"$ref": "#/definitions/ValidationError"}}}
            }
        },
        "/articles/{id}": {
            "get": {
                "tags": ["articles"],
                "security": [{"bearer": []}],
                "summary": "Get one article",
                "parameters": [{"type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Article"}}, "404": {"description": "Article not found"}}
            }
        },
        "/preferences": {
            "get": {
                "tags": ["preferences"],
                "security": [{"bearer": []}],
                "summary": "Stored preferences, null when none",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Preference"}}}
            },
            "post": {
                "tags": ["preferences"],
                "security": [{"bearer": []}],
                "summary": "Create or replace preferences",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/PreferenceRequest"}}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Preference"}}, "422": {"description": "Validation failed"}}
            }
        },
        "/personalized-feed": {
            "get": {
                "tags": ["preferences"],
                "security": [{"bearer": []}],
                "summary": "Articles matching the stored preferences",
                "parameters": [
                    {"type": "integer", "name": "page", "in": "query"},
                    {"type": "integer", "name": "per_page", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ArticlePage"}}}
            }
        },
        "/sources": {
            "get": {
                "tags": ["catalog"],
                "security": [{"bearer": []}],
                "summary": "List sources",
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "tags": ["catalog"],
                "security": [{"bearer": []}],
                "summary": "Register a source",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/SourceRequest"}}],
                "responses": {"200": {"description": "OK"}, "422": {"description": "Validation failed"}}
            }
        },
        "/categories": {
            "get": {
                "tags": ["catalog"],
                "security": [{"bearer": []}],
                "summary": "List categories",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/fetch-articles": {
            "post": {
                "tags": ["ingestion"],
                "security": [{"bearer": []}],
                "summary": "Run one ingestion cycle across enabled providers",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Summary"}}}
            }
        }
    },
    "definitions": {
        "Article": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "description": {"type": "string"},
                "content": {"type": "string"},
                "author": {"type": "string"},
                "published_at": {"type": "string", "format": "date-time"},
                "category_id": {"type": "integer"},
                "source_id": {"type": "integer"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "ArticlePage": {
            "type": "object",
            "properties": {
                "current_page": {"type": "integer"},
                "data": {"type": "array", "items": {"$ref": "#/definitions/Article"}},
                "per_page": {"type": "integer"},
                "total": {"type": "integer"},
                "last_page": {"type": "integer"},
                "from": {"type": "integer"},
                "to": {"type": "integer"}
            }
        },
        "SearchResult": {
            "type": "object",
            "properties": {
                "articles": {"type": "array", "items": {"$ref": "#/definitions/Article"}},
                "total_pages": {"type": "integer"},
                "total_articles": {"type": "integer"}
            }
        },
        "Preference": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "user_id": {"type": "integer"},
                "categories": {"type": "array", "items": {"type": "integer"}},
                "sources": {"type": "array", "items": {"type": "integer"}},
                "authors": {"type": "array", "items": {"type": "string"}}
            }
        },
        "PreferenceRequest": {
            "type": "object",
            "properties": {
                "categories": {"type": "array", "items": {"type": "integer"}},
                "sources": {"type": "array", "items": {"type": "integer"}},
                "authors": {"type": "array", "items": {"type": "string"}}
            }
        },
        "SourceRequest": {
            "type": "object",
            "required": ["name"],
            "properties": {"name": {"type": "string"}}
        },
        "RegisterRequest": {
            "type": "object",
            "required": ["name", "email", "password", "password_confirmation"],
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "password": {"type": "string"},
                "password_confirmation": {"type": "string"}
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "TokenResponse": {
            "type": "object",
            "properties": {
                "access_token": {"type": "string"},
                "token_type": {"type": "string"},
                "user": {"$ref": "#/definitions/User"}
            }
        },
        "User": {
            "type": "object",
            "properties": {"id": {"type": "integer"}, "name": {"type": "string"}, "email": {"type": "string"}}
        },
        "Summary": {
            "type": "object",
            "properties": {
                "providers": {"type": "integer"},
                "failed_providers": {"type": "integer"},
                "created": {"type": "object", "additionalProperties": {"type": "integer"}},
                "errors": {"type": "object", "additionalProperties": {"type": "string"}},
                "started_at": {"type": "string", "format": "date-time"},
                "finished_at": {"type": "string", "format": "date-time"}
            }
        },
        "ValidationError": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "errors": {"type": "object", "additionalProperties": {"type": "array", "items": {"type": "string"}}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api",
	Schemes:          []string{"http", "https"},
	Title:            "News Aggregator API",
	Description:      "Aggregates NewsAPI, The Guardian and NY Times articles with search and personalized feeds",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
