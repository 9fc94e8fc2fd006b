// Package docs registers the OpenAPI description served by the swagger UI.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "paths": {
        "/tournaments": {
            "get": {"tags": ["tournaments"], "summary": "List tournaments",
                "parameters": [
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "offset", "in": "query", "type": "integer"}
                ],
                "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["tournaments"], "summary": "Create a tournament", "security": [{"BearerAuth": []}],
                "parameters": [{"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateTournamentInput"}}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Name already used"}, "422": {"description": "Invalid input"}}}
        },
        "/tournaments/{tournamentID}": {
            "get": {"tags": ["tournaments"], "summary": "Get a tournament",
                "parameters": [{"$ref": "#/parameters/tournamentID"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
        },
        "/tournaments/{tournamentID}/standings": {
            "get": {"tags": ["standings"], "summary": "Season leaderboard ordered by total points",
                "parameters": [{"$ref": "#/parameters/tournamentID"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/Leaderboard"}}, "404": {"description": "Not found"}}}
        },
        "/tournaments/{tournamentID}/standings.xlsx": {
            "get": {"tags": ["standings"], "summary": "Leaderboard as an Excel workbook",
                "produces": ["application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"],
                "parameters": [{"$ref": "#/parameters/tournamentID"}],
                "responses": {"200": {"description": "Workbook"}}}
        },
        "/tournaments/{tournamentID}/standings/rebuild": {
            "post": {"tags": ["standings"], "summary": "Recompute standings from results and penalties", "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/tournamentID"}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/tournaments/{tournamentID}/standings/{userID}": {
            "get": {"tags": ["standings"], "summary": "One player's standing with penalties",
                "parameters": [{"$ref": "#/parameters/tournamentID"}, {"$ref": "#/parameters/userID"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}}
        },
        "/tournaments/{tournamentID}/penalties": {
            "get": {"tags": ["penalties"], "summary": "Penalty ledger",
                "parameters": [{"$ref": "#/parameters/tournamentID"}, {"name": "user_id", "in": "query", "type": "integer"}],
                "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["penalties"], "summary": "Apply a manual penalty", "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/tournamentID"}],
                "responses": {"201": {"description": "Created"}, "422": {"description": "Invalid input"}}}
        },
        "/tournaments/{tournamentID}/games": {
            "get": {"tags": ["games"], "summary": "List games of a tournament",
                "parameters": [{"$ref": "#/parameters/tournamentID"}],
                "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["games"], "summary": "Schedule a game", "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/tournamentID"}],
                "responses": {"201": {"description": "Created"}, "409": {"description": "Sequence number used"}}}
        },
        "/games/{gameID}": {
            "get": {"tags": ["games"], "summary": "Get a game with its registered count",
                "parameters": [{"$ref": "#/parameters/gameID"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not found"}}},
            "patch": {"tags": ["games"], "summary": "Partially update a game", "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/gameID"}],
                "responses": {"200": {"description": "OK"}, "409": {"description": "Invalid status transition"}}}
        },
        "/games/{gameID}/register": {
            "post": {"tags": ["registrations"], "summary": "Register the caller for a game", "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/gameID"}],
                "responses": {"201": {"description": "Registered"}, "409": {"description": "Closed, full or already registered"}}}
        },
        "/games/{gameID}/cancel": {
            "post": {"tags": ["registrations"], "summary": "Cancel the caller's registration", "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/gameID"}],
                "responses": {"200": {"description": "Cancelled"}, "404": {"description": "No active registration"}}}
        },
        "/games/{gameID}/registrations": {
            "get": {"tags": ["registrations"], "summary": "List registrations",
                "parameters": [{"$ref": "#/parameters/gameID"}, {"name": "include_cancelled", "in": "query", "type": "boolean"}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/games/{gameID}/registrations/{userID}/paid": {
            "put": {"tags": ["registrations"], "summary": "Mark a buy-in as paid", "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/gameID"}, {"$ref": "#/parameters/userID"}],
                "responses": {"200": {"description": "OK"}}}
        },
        "/games/{gameID}/results": {
            "get": {"tags": ["results"], "summary": "Stored results ordered by place",
                "parameters": [{"$ref": "#/parameters/gameID"}],
                "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["results"], "summary": "Record final placements", "security": [{"BearerAuth": []}],
                "parameters": [{"$ref": "#/parameters/gameID"}],
                "responses": {"200": {"description": "Recorded"}, "422": {"description": "Invalid placements"}}}
        },
        "/admin/stats": {
            "get": {"tags": ["admin"], "summary": "League totals", "security": [{"BearerAuth": []}],
                "responses": {"200": {"description": "OK"}}}
        }
    },
    "parameters": {
        "tournamentID": {"name": "tournamentID", "in": "path", "required": true, "type": "integer"},
        "gameID": {"name": "gameID", "in": "path", "required": true, "type": "integer"},
        "userID": {"name": "userID", "in": "path", "required": true, "type": "integer"}
    },
    "definitions": {
        "CreateTournamentInput": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "top_players_count": {"type": "integer"},
                "starts_at": {"type": "string", "format": "date-time"},
                "ends_at": {"type": "string", "format": "date-time"}
            }
        },
        "Standing": {
            "type": "object",
            "properties": {
                "user_id": {"type": "integer"},
                "total_points": {"type": "integer"},
                "games_played": {"type": "integer"},
                "average_place": {"type": "number"},
                "best_place": {"type": "integer"},
                "position": {"type": "integer"},
                "in_grand_final": {"type": "boolean"}
            }
        },
        "Leaderboard": {
            "type": "object",
            "properties": {
                "standings": {"type": "array", "items": {"$ref": "#/definitions/Standing"}}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Poker League API",
	Description:      "Game lifecycle, penalties and season standings of a poker league.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
