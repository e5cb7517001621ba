package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "CEITM Web API",
        "description": "Portal administrativo del Consejo Estudiantil del ITM",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "tags": [
        {"name": "Auth", "description": "Sessions and credentials"},
        {"name": "Users", "description": "Council member accounts"},
        {"name": "Careers", "description": "Career catalog"},
        {"name": "Scholarships", "description": "Scholarship programs and quotas"},
        {"name": "Applications", "description": "Scholarship application workflow"},
        {"name": "Students", "description": "Scholarship holder registry"},
        {"name": "Complaints", "description": "Anonymous complaint mailbox"},
        {"name": "Map", "description": "Campus map directory"},
        {"name": "News", "description": "News feed"},
        {"name": "Documents", "description": "Transparency documents"},
        {"name": "Convenios", "description": "Partner business agreements"},
        {"name": "Shifts", "description": "Guard duty board"},
        {"name": "Sanctions", "description": "Internal member sanctions"},
        {"name": "Audit", "description": "Administrative audit trail"},
        {"name": "Uploads", "description": "Static file uploads"}
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
                    "200": {"description": "Ready"},
                    "503": {"description": "Degraded"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate a council member",
                "responses": {
                    "200": {"description": "Token pair"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/public/applications": {
            "post": {
                "tags": ["Applications"],
                "summary": "Submit a scholarship application",
                "responses": {
                    "201": {"description": "Application received"},
                    "409": {"description": "Duplicate live application"},
                    "412": {"description": "Submission window closed"}
                }
            }
        },
        "/public/complaints": {
            "post": {
                "tags": ["Complaints"],
                "summary": "File a complaint",
                "responses": {
                    "201": {"description": "Tracking code assigned"}
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
