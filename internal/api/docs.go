package api

import (
	"github.com/swaggo/swag"

	"github.com/Kamar-Folarin/commit-health/internal/models"
)

// ErrorResponse represents an API error
// @Description Error response from the API
type ErrorResponse struct {
	Error string `json:"error" example:"INVALID_INPUT: invalid limit parameter"`
}

// CommitListResponse represents a paginated list of commits
type CommitListResponse struct {
	Data       []*models.Commit `json:"data"`
	Pagination struct {
		Total  int64 `json:"total" example:"1000"`
		Limit  int   `json:"limit" example:"50"`
		Offset int   `json:"offset" example:"0"`
	} `json:"pagination"`
}

// AuthorListResponse represents the top authors of a repository
type AuthorListResponse struct {
	Data     []*models.AuthorStats `json:"data"`
	Metadata struct {
		Repository string `json:"repository" example:"golang/go"`
		Limit      int    `json:"limit" example:"10"`
	} `json:"metadata"`
}

// HealthResponse is the current assessment of a repository
type HealthResponse struct {
	Repository string                  `json:"repository" example:"golang/go"`
	Assessment models.HealthAssessment `json:"assessment"`
	Trend      models.Trend            `json:"trend" example:"Stable" enums:"Rising,Stable,Falling"`
}

// DistributionResponse holds the number of commits per intent category
type DistributionResponse struct {
	Repository   string         `json:"repository" example:"golang/go"`
	Distribution map[string]int `json:"distribution"`
	Total        int            `json:"total" example:"50"`
}

// SyncResponse is the result of a manual sync. Partial is set when fetching
// stopped early; Warning then holds the cause.
type SyncResponse struct {
	*models.SyncReport
	Partial bool   `json:"partial"`
	Warning string `json:"warning,omitempty"`
}

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/repos/{owner}/{repo}/commits": {
            "get": {
                "produces": ["application/json"],
                "tags": ["repository"],
                "summary": "Get repository commits",
                "parameters": [
                    {"type": "string", "name": "owner", "in": "path", "required": true},
                    {"type": "string", "name": "repo", "in": "path", "required": true},
                    {"type": "integer", "default": 50, "name": "limit", "in": "query"},
                    {"type": "integer", "default": 0, "name": "offset", "in": "query"},
                    {"type": "string", "description": "RFC3339", "name": "since", "in": "query"},
                    {"type": "string", "description": "RFC3339", "name": "until", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.CommitListResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/repos/{owner}/{repo}/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["repository"],
                "summary": "Get repository health",
                "parameters": [
                    {"type": "string", "name": "owner", "in": "path", "required": true},
                    {"type": "string", "name": "repo", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.HealthResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/repos/{owner}/{repo}/distribution": {
            "get": {
                "produces": ["application/json"],
                "tags": ["repository"],
                "summary": "Get commit intent distribution",
                "parameters": [
                    {"type": "string", "name": "owner", "in": "path", "required": true},
                    {"type": "string", "name": "repo", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.DistributionResponse"}}
                }
            }
        },
        "/repos/{owner}/{repo}/insights": {
            "get": {
                "produces": ["application/json"],
                "tags": ["repository"],
                "summary": "Get repository insights",
                "parameters": [
                    {"type": "string", "name": "owner", "in": "path", "required": true},
                    {"type": "string", "name": "repo", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.Insights"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/repos/{owner}/{repo}/authors": {
            "get": {
                "produces": ["application/json"],
                "tags": ["repository"],
                "summary": "Get top commit authors",
                "parameters": [
                    {"type": "string", "name": "owner", "in": "path", "required": true},
                    {"type": "string", "name": "repo", "in": "path", "required": true},
                    {"type": "integer", "default": 10, "name": "limit", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.AuthorListResponse"}}
                }
            }
        },
        "/repos/{owner}/{repo}/sync": {
            "post": {
                "produces": ["application/json"],
                "tags": ["sync"],
                "summary": "Sync a repository",
                "parameters": [
                    {"type": "string", "name": "owner", "in": "path", "required": true},
                    {"type": "string", "name": "repo", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/api.SyncResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        },
        "/repos/{owner}/{repo}/sync-status": {
            "get": {
                "produces": ["application/json"],
                "tags": ["sync"],
                "summary": "Get repository sync status",
                "parameters": [
                    {"type": "string", "name": "owner", "in": "path", "required": true},
                    {"type": "string", "name": "repo", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.SyncRun"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/api.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "api.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "api.CommitListResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/models.Commit"}},
                "pagination": {
                    "type": "object",
                    "properties": {
                        "total": {"type": "integer"},
                        "limit": {"type": "integer"},
                        "offset": {"type": "integer"}
                    }
                }
            }
        },
        "api.AuthorListResponse": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"$ref": "#/definitions/models.AuthorStats"}},
                "metadata": {
                    "type": "object",
                    "properties": {
                        "repository": {"type": "string"},
                        "limit": {"type": "integer"}
                    }
                }
            }
        },
        "api.HealthResponse": {
            "type": "object",
            "properties": {
                "repository": {"type": "string"},
                "assessment": {"$ref": "#/definitions/models.HealthAssessment"},
                "trend": {"type": "string", "enum": ["Rising", "Stable", "Falling"]}
            }
        },
        "api.DistributionResponse": {
            "type": "object",
            "properties": {
                "repository": {"type": "string"},
                "distribution": {"type": "object", "additionalProperties": {"type": "integer"}},
                "total": {"type": "integer"}
            }
        },
        "api.SyncResponse": {
            "type": "object",
            "properties": {
                "run_id": {"type": "string"},
                "repository": {"type": "string"},
                "state": {"type": "string"},
                "fetched": {"type": "integer"},
                "inserted": {"type": "integer"},
                "total": {"type": "integer"},
                "score": {"type": "integer"},
                "assessment": {"$ref": "#/definitions/models.HealthAssessment"},
                "distribution": {"type": "object", "additionalProperties": {"type": "integer"}},
                "trend": {"type": "string"},
                "partial": {"type": "boolean"},
                "warning": {"type": "string"}
            }
        },
        "models.Commit": {
            "type": "object",
            "properties": {
                "sha": {"type": "string"},
                "repository": {"type": "string"},
                "author_name": {"type": "string"},
                "author_email": {"type": "string"},
                "committed_at": {"type": "string"},
                "message": {"type": "string"},
                "additions": {"type": "integer"},
                "deletions": {"type": "integer"},
                "category": {"type": "string"},
                "html_url": {"type": "string"}
            }
        },
        "models.AuthorStats": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "email": {"type": "string"},
                "commit_count": {"type": "integer"}
            }
        },
        "models.HealthAssessment": {
            "type": "object",
            "properties": {
                "score": {"type": "integer"},
                "reasons": {"type": "array", "items": {"type": "string"}},
                "activity": {"type": "integer"},
                "community": {"type": "integer"},
                "stability": {"type": "integer"},
                "authors": {"type": "integer"},
                "top_contributor_ratio": {"type": "number"},
                "bus_factor_risk": {"type": "boolean"},
                "degraded": {"type": "boolean"}
            }
        },
        "models.Insights": {
            "type": "object",
            "properties": {
                "total_commits": {"type": "integer"},
                "contributors": {"type": "integer"},
                "active_days": {"type": "integer"},
                "trend": {"type": "string"},
                "weekend_ratio": {"type": "number"},
                "average_churn": {"type": "number"}
            }
        },
        "models.SyncRun": {
            "type": "object",
            "properties": {
                "run_id": {"type": "string"},
                "repository": {"type": "string"},
                "state": {"type": "string"},
                "since": {"type": "string"},
                "fetched": {"type": "integer"},
                "inserted": {"type": "integer"},
                "total": {"type": "integer"},
                "score": {"type": "integer"},
                "error": {"type": "string"},
                "started_at": {"type": "string"},
                "finished_at": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Commit Health API",
	Description:      "Commit history ingestion and repository health scoring",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
