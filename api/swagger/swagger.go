package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "ClassTrack API",
        "description": "Campus classroom availability and booking service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Classrooms", "description": "Room dashboard and override console"},
        {"name": "Reservations", "description": "One-off room bookings"},
        {"name": "TimeSlots", "description": "Period table and campus clock"},
        {"name": "Exports", "description": "CSV and PDF downloads"},
        {"name": "Authentication", "description": "Console login"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate console user",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/verify": {
            "get": {
                "tags": ["Authentication"],
                "summary": "Verify current token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Unauthorized"}
                }
            }
        },
        "/rooms": {
            "get": {
                "tags": ["Classrooms"],
                "summary": "List classrooms with resolved status",
                "parameters": [
                    {"name": "slot_id", "in": "query", "type": "integer"},
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "block", "in": "query", "type": "string"},
                    {"name": "floor", "in": "query", "type": "integer"},
                    {"name": "min_capacity", "in": "query", "type": "integer"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/rooms/{id}": {
            "get": {
                "tags": ["Classrooms"],
                "summary": "Get one classroom with today's schedule",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/rooms/{id}/slots": {
            "get": {
                "tags": ["Classrooms"],
                "summary": "Per-slot availability for a room on one date",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/rooms/{id}/qr": {
            "get": {
                "tags": ["Classrooms"],
                "summary": "QR code image for a room's status page",
                "produces": ["image/png"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "download", "in": "query", "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "PNG image"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/rooms/{id}/override": {
            "put": {
                "tags": ["Classrooms"],
                "summary": "Set a manual status override",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/OverrideRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid status"},
                    "404": {"description": "Not Found"}
                }
            },
            "delete": {
                "tags": ["Classrooms"],
                "summary": "Clear a manual status override",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/slots": {
            "get": {
                "tags": ["TimeSlots"],
                "summary": "List time slots",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/slots/current": {
            "get": {
                "tags": ["TimeSlots"],
                "summary": "Active slot for the campus clock",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reservations": {
            "get": {
                "tags": ["Reservations"],
                "summary": "List reservations",
                "parameters": [
                    {"name": "room_id", "in": "query", "type": "string"},
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "upcoming", "in": "query", "type": "boolean"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Reservations"],
                "summary": "Book a room",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateReservationRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/ConflictResult"}}
                }
            }
        },
        "/reservations/check": {
            "get": {
                "tags": ["Reservations"],
                "summary": "Dry-run the conflict check",
                "parameters": [
                    {"name": "room_id", "in": "query", "required": true, "type": "string"},
                    {"name": "slot_id", "in": "query", "required": true, "type": "integer"},
                    {"name": "date", "in": "query", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ConflictResult"}}
                }
            }
        },
        "/reservations/{id}": {
            "delete": {
                "tags": ["Reservations"],
                "summary": "Cancel a reservation",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found"}
                }
            }
        },
        "/exports/reservations": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download reservations as CSV",
                "produces": ["text/csv"],
                "parameters": [
                    {"name": "room_id", "in": "query", "type": "string"},
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "CSV file"}
                }
            }
        },
        "/exports/rooms/{id}/schedule": {
            "get": {
                "tags": ["Exports"],
                "summary": "Download a room's day schedule as PDF",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "day", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF file"},
                    "404": {"description": "Not Found"}
                }
            }
        }
    },
    "definitions": {
        "Classroom": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "block": {"type": "string"},
                "floor": {"type": "integer"},
                "capacity": {"type": "integer"},
                "amenities": {"type": "array", "items": {"type": "string"}},
                "status_override": {"type": "string"},
                "override_expires": {"type": "string"}
            }
        },
        "TimeSlot": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "start_time": {"type": "string"},
                "end_time": {"type": "string"},
                "label": {"type": "string"}
            }
        },
        "StatusInfo": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "reason": {"type": "string"},
                "faculty": {"type": "string"},
                "booked_by": {"type": "string"}
            }
        },
        "ConflictResult": {
            "type": "object",
            "properties": {
                "has_conflict": {"type": "boolean"},
                "type": {"type": "string"},
                "details": {"type": "string"}
            }
        },
        "OverrideRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "expires_in": {"type": "integer"}
            },
            "required": ["status"]
        },
        "CreateReservationRequest": {
            "type": "object",
            "properties": {
                "room_id": {"type": "string"},
                "slot_id": {"type": "integer"},
                "date": {"type": "string"},
                "purpose": {"type": "string"},
                "booked_by": {"type": "string"}
            },
            "required": ["room_id", "slot_id", "date"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["username", "password"]
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
