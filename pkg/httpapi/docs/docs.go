// Package docs registers the swagger spec served at api.docs.path by
// gofiber/swagger's HandlerDefault. Hand-written in the shape swaggo/swag
// would generate from annotations, since the submission endpoint is small
// enough not to need the code-generation step.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/": {
            "post": {
                "description": "Render a captured HTTP exchange in an isolated page and report whether the supplied payload reflected and/or executed.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Detection"],
                "summary": "submit a captured exchange for out-of-band detection",
                "parameters": [
                    {
                        "description": "Submission body",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"type": "object"}
                    }
                ],
                "responses": {
                    "200": {"description": "xss detected"},
                    "201": {"description": "no xss detected"},
                    "400": {"description": "malformed request"}
                }
            }
        },
        "/health": {
            "get": {
                "description": "Liveness probe.",
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "health check",
                "responses": {
                    "200": {"description": "ok"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "xssentinel submission endpoint",
	Description:      "Out-of-band detection endpoint for already-captured HTTP exchanges.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
