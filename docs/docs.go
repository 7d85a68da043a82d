package docs

import "github.com/swaggo/swag"

const docTemplate = `{
  "swagger": "2.0",
  "info": {
    "title": "Sales Day Backend",
    "description": "Visit day orchestration for field sales: roster, route optimization, visit tracking and stop maps",
    "version": "1.0"
  },
  "basePath": "/",
  "securityDefinitions": {
    "AdminKey": {"type": "apiKey", "in": "header", "name": "X-Admin-Key"}
  },
  "paths": {
    "/healthz": {
      "get": {"tags": ["health"], "summary": "Health check", "produces": ["application/json"],
        "responses": {"200": {"description": "OK"}, "503": {"description": "Database unavailable"}}}
    },
    "/api/day": {
      "get": {"tags": ["day"], "summary": "Visit day status", "produces": ["application/json"],
        "responses": {"200": {"description": "Snapshot"}, "409": {"description": "NO_ACTIVE_DAY"}}},
      "post": {"tags": ["day"], "summary": "Start a visit day", "security": [{"AdminKey": []}],
        "consumes": ["application/json"], "produces": ["application/json"],
        "parameters": [{"in": "body", "name": "request", "required": false, "schema": {"$ref": "#/definitions/StartDayRequest"}}],
        "responses": {"201": {"description": "Snapshot"}, "400": {"description": "EMPTY_ROSTER or INVALID_REQUEST"}, "502": {"description": "ROSTER_ERROR"}}},
      "delete": {"tags": ["day"], "summary": "Reset the visit day", "security": [{"AdminKey": []}],
        "responses": {"204": {"description": "Reset"}}}
    },
    "/api/day/route": {
      "post": {"tags": ["day"], "summary": "Compute the route", "security": [{"AdminKey": []}],
        "consumes": ["application/json"], "produces": ["application/json"],
        "parameters": [{"in": "body", "name": "request", "required": false, "schema": {"$ref": "#/definitions/ComputeRouteRequest"}}],
        "responses": {"200": {"description": "Route"}, "400": {"description": "INVALID_REQUEST"}, "409": {"description": "NO_ACTIVE_DAY"}, "502": {"description": "ROUTING_PROVIDER_ERROR"}}}
    },
    "/api/day/progress": {
      "post": {"tags": ["visits"], "summary": "Record progress", "security": [{"AdminKey": []}], "produces": ["application/json"],
        "responses": {"200": {"description": "Progress"}, "409": {"description": "NO_ACTIVE_DAY"}}}
    },
    "/api/day/visits/{id}": {
      "put": {"tags": ["visits"], "summary": "Mark a visit", "security": [{"AdminKey": []}],
        "consumes": ["application/json"], "produces": ["application/json"],
        "parameters": [
          {"in": "path", "name": "id", "type": "string", "required": true},
          {"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/MarkVisitRequest"}}
        ],
        "responses": {"200": {"description": "VisitUpdate"}, "400": {"description": "INVALID_REQUEST"}, "404": {"description": "UNKNOWN_CLIENT"}, "409": {"description": "INVALID_TRANSITION or NO_ACTIVE_DAY"}}}
    },
    "/api/day/stops/{id}/map": {
      "get": {"tags": ["visits"], "summary": "Stop map image", "produces": ["image/png"],
        "parameters": [
          {"in": "path", "name": "id", "type": "string", "required": true},
          {"in": "query", "name": "zoom", "type": "integer", "default": 15, "minimum": 0, "maximum": 20},
          {"in": "query", "name": "style", "type": "string", "default": "main", "enum": ["main", "dark", "satellite"]},
          {"in": "query", "name": "width", "type": "integer", "default": 800, "minimum": 0, "maximum": 2048},
          {"in": "query", "name": "height", "type": "integer", "default": 600, "minimum": 0, "maximum": 2048}
        ],
        "responses": {"200": {"description": "PNG image", "schema": {"type": "file"}}, "400": {"description": "INVALID_REQUEST"}, "404": {"description": "UNKNOWN_CLIENT"}, "502": {"description": "MAP_RENDER_ERROR or ROUTING_PROVIDER_ERROR"}}}
    }
  },
  "definitions": {
    "Coordinates": {"type": "object", "properties": {"lat": {"type": "number"}, "lon": {"type": "number"}}},
    "ClientInput": {"type": "object", "required": ["id", "name", "address"],
      "properties": {
        "id": {"type": "string"}, "name": {"type": "string"}, "address": {"type": "string"},
        "contact": {"type": "string"}, "priority": {"type": "string", "enum": ["low", "medium", "high"]},
        "notes": {"type": "string"}, "last_visit": {"type": "string", "format": "date"},
        "coordinates": {"$ref": "#/definitions/Coordinates"}
      }},
    "StartDayRequest": {"type": "object", "properties": {"clients": {"type": "array", "items": {"$ref": "#/definitions/ClientInput"}}}},
    "StartInput": {"type": "object", "properties": {"address": {"type": "string"}, "coordinates": {"$ref": "#/definitions/Coordinates"}}},
    "ComputeRouteRequest": {"type": "object", "properties": {"start": {"$ref": "#/definitions/StartInput"}, "from_office": {"type": "boolean"}}},
    "MarkVisitRequest": {"type": "object", "required": ["status"],
      "properties": {"status": {"type": "string", "enum": ["pending", "in_progress", "completed", "skipped"]}}}
  }
}`

func init() {
	swag.Register(swag.Name, &s{})
}

type s struct{}

func (s *s) ReadDoc() string {
	return docTemplate
}
