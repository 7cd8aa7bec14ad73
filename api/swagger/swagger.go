package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Academy API",
        "description": "Multi-tenant school administration API",
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
        {"name": "Auth", "description": "Authentication"},
        {"name": "Companies", "description": "Company hierarchy management"},
        {"name": "Sites", "description": "Site management"},
        {"name": "Grades", "description": "Grade level management"},
        {"name": "Books", "description": "Book catalog management"},
        {"name": "Teachers", "description": "Teacher roster management"},
        {"name": "Students", "description": "Student roster management"},
        {"name": "AuditLogs", "description": "Change history"},
        {"name": "Exports", "description": "Roster exports"}
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
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate with email and password",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/companies": {
            "get": {
                "tags": ["Companies"],
                "summary": "List companies",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Companies"],
                "summary": "Create company",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateCompanyRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Duplicate code", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/companies/{id}": {
            "get": {
                "tags": ["Companies"],
                "summary": "Get company by id",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Companies"],
                "summary": "Update company",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateCompanyRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Companies"],
                "summary": "Deactivate company",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Deactivated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Blocked by dependents", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sites": {
            "get": {
                "tags": ["Sites"],
                "summary": "List sites",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "company_id", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Sites"],
                "summary": "Create site",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateSiteRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/sites/{id}": {
            "get": {
                "tags": ["Sites"],
                "summary": "Get site by id",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Sites"],
                "summary": "Update site",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSiteRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Sites"],
                "summary": "Delete site",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Blocked by dependents", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades": {
            "get": {
                "tags": ["Grades"],
                "summary": "List grades",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "company_id", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Grades"],
                "summary": "Create grade",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateGradeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/grades/{id}": {
            "get": {
                "tags": ["Grades"],
                "summary": "Get grade by id",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Grades"],
                "summary": "Update grade",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateGradeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Grades"],
                "summary": "Delete grade",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Deleted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Blocked by dependents", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/books": {
            "get": {
                "tags": ["Books"],
                "summary": "List books",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "company_id", "in": "query", "type": "string"},
                    {"name": "category", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Books"],
                "summary": "Create book",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateBookRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/books/{id}": {
            "get": {
                "tags": ["Books"],
                "summary": "Get book by id",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Books"],
                "summary": "Update book",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateBookRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Books"],
                "summary": "Delete book",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Deleted or deactivated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers": {
            "get": {
                "tags": ["Teachers"],
                "summary": "List teachers",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "company_id", "in": "query", "type": "string"},
                    {"name": "site_id", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Teachers"],
                "summary": "Create teacher",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTeacherRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "User already assigned", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teachers/{id}": {
            "get": {
                "tags": ["Teachers"],
                "summary": "Get teacher by id",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Teachers"],
                "summary": "Update teacher",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateTeacherRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Teachers"],
                "summary": "Deactivate teacher",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Deactivated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "company_id", "in": "query", "type": "string"},
                    {"name": "site_id", "in": "query", "type": "string"},
                    {"name": "grade_id", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student by id",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update student",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateStudentRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Deactivate student",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "Deactivated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/audit-logs": {
            "get": {
                "tags": ["AuditLogs"],
                "summary": "List audit log entries",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "table_name", "in": "query", "type": "string"},
                    {"name": "action", "in": "query", "type": "string"},
                    {"name": "record_id", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exports/students": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export the student roster",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "company_id", "in": "query", "type": "string"},
                    {"name": "site_id", "in": "query", "type": "string"},
                    {"name": "grade_id", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/exports/teachers": {
            "get": {
                "tags": ["Exports"],
                "summary": "Export the teacher roster",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "company_id", "in": "query", "type": "string"},
                    {"name": "site_id", "in": "query", "type": "string"},
                    {"name": "active", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "CreateCompanyRequest": {
            "type": "object",
            "properties": {
                "parent_company_id": {"type": "string"},
                "code": {"type": "string"},
                "name": {"type": "string"},
                "address": {"type": "string"},
                "city": {"type": "string"},
                "phone": {"type": "string"},
                "email": {"type": "string"},
                "is_head_office": {"type": "boolean"}
            },
            "required": ["code", "name"]
        },
        "UpdateCompanyRequest": {
            "type": "object",
            "properties": {
                "parent_company_id": {"type": "string"},
                "code": {"type": "string"},
                "name": {"type": "string"},
                "address": {"type": "string"},
                "city": {"type": "string"},
                "phone": {"type": "string"},
                "email": {"type": "string"},
                "is_head_office": {"type": "boolean"},
                "active": {"type": "boolean"}
            },
            "required": ["code", "name"]
        },
        "CreateSiteRequest": {
            "type": "object",
            "properties": {
                "company_id": {"type": "string"},
                "code": {"type": "string"},
                "name": {"type": "string"},
                "address": {"type": "string"},
                "city": {"type": "string"},
                "phone": {"type": "string"},
                "manager_name": {"type": "string"}
            },
            "required": ["company_id", "code", "name"]
        },
        "UpdateSiteRequest": {
            "type": "object",
            "properties": {
                "company_id": {"type": "string"},
                "code": {"type": "string"},
                "name": {"type": "string"},
                "address": {"type": "string"},
                "city": {"type": "string"},
                "phone": {"type": "string"},
                "manager_name": {"type": "string"},
                "active": {"type": "boolean"}
            },
            "required": ["company_id", "code", "name"]
        },
        "CreateGradeRequest": {
            "type": "object",
            "properties": {
                "company_id": {"type": "string"},
                "code": {"type": "string"},
                "name": {"type": "string"},
                "duration_months": {"type": "integer"},
                "sort_order": {"type": "integer"}
            },
            "required": ["company_id", "code", "name"]
        },
        "UpdateGradeRequest": {
            "type": "object",
            "properties": {
                "company_id": {"type": "string"},
                "code": {"type": "string"},
                "name": {"type": "string"},
                "duration_months": {"type": "integer"},
                "sort_order": {"type": "integer"},
                "active": {"type": "boolean"}
            },
            "required": ["company_id", "code", "name"]
        },
        "CreateBookRequest": {
            "type": "object",
            "properties": {
                "company_id": {"type": "string"},
                "code": {"type": "string"},
                "title": {"type": "string"},
                "author": {"type": "string"},
                "publisher": {"type": "string"},
                "isbn": {"type": "string"},
                "category": {"type": "string"}
            },
            "required": ["company_id", "code", "title", "author", "category"]
        },
        "UpdateBookRequest": {
            "type": "object",
            "properties": {
                "company_id": {"type": "string"},
                "code": {"type": "string"},
                "title": {"type": "string"},
                "author": {"type": "string"},
                "publisher": {"type": "string"},
                "isbn": {"type": "string"},
                "category": {"type": "string"},
                "active": {"type": "boolean"}
            },
            "required": ["company_id", "code", "title", "author", "category"]
        },
        "CreateTeacherRequest": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "company_id": {"type": "string"},
                "site_id": {"type": "string"},
                "code": {"type": "string"},
                "specialization": {"type": "string"},
                "experience_years": {"type": "integer"},
                "hourly_rate": {"type": "number"},
                "max_students_per_day": {"type": "integer"},
                "available_for_trial": {"type": "boolean"}
            },
            "required": ["user_id", "company_id", "site_id", "code", "specialization"]
        },
        "UpdateTeacherRequest": {
            "type": "object",
            "properties": {
                "user_id": {"type": "string"},
                "company_id": {"type": "string"},
                "site_id": {"type": "string"},
                "code": {"type": "string"},
                "specialization": {"type": "string"},
                "experience_years": {"type": "integer"},
                "hourly_rate": {"type": "number"},
                "max_students_per_day": {"type": "integer"},
                "available_for_trial": {"type": "boolean"},
                "active": {"type": "boolean"}
            },
            "required": ["user_id", "company_id", "site_id", "code", "specialization"]
        },
        "CreateStudentRequest": {
            "type": "object",
            "properties": {
                "company_id": {"type": "string"},
                "site_id": {"type": "string"},
                "code": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "birth_date": {"type": "string", "format": "date-time"},
                "gender": {"type": "string", "enum": ["MALE", "FEMALE"]},
                "phone": {"type": "string"},
                "email": {"type": "string"},
                "address": {"type": "string"},
                "current_grade_id": {"type": "string"},
                "assigned_teacher_id": {"type": "string"},
                "registration_date": {"type": "string", "format": "date-time"}
            },
            "required": ["company_id", "site_id", "code", "first_name", "last_name", "birth_date"]
        },
        "UpdateStudentRequest": {
            "type": "object",
            "properties": {
                "company_id": {"type": "string"},
                "site_id": {"type": "string"},
                "code": {"type": "string"},
                "first_name": {"type": "string"},
                "last_name": {"type": "string"},
                "birth_date": {"type": "string", "format": "date-time"},
                "gender": {"type": "string", "enum": ["MALE", "FEMALE"]},
                "phone": {"type": "string"},
                "email": {"type": "string"},
                "address": {"type": "string"},
                "current_grade_id": {"type": "string"},
                "assigned_teacher_id": {"type": "string"},
                "status": {"type": "string", "enum": ["ACTIVE", "ON_HOLD", "GRADUATED", "WITHDRAWN"]},
                "active": {"type": "boolean"}
            },
            "required": ["company_id", "site_id", "code", "first_name", "last_name", "birth_date", "status"]
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
