package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Marks API",
        "description": "Student marks record store, joke teller and export endpoints",
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
        {
            "name": "Records",
            "description": "Student marks record store"
        },
        {
            "name": "Exports",
            "description": "Background export jobs"
        },
        {
            "name": "Jokes",
            "description": "Random joke teller"
        },
        {
            "name": "Auth",
            "description": "Admin token exchange"
        }
    ],
    "paths": {
        "/records": {
            "get": {
                "tags": [
                    "Records"
                ],
                "summary": "List all student records with the class summary",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Records"
                ],
                "summary": "Add a student record",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateRecordRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid marks",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "401": {
                        "description": "Missing or invalid token",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Duplicate code",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "500": {
                        "description": "Changes not saved",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/records/lookup": {
            "get": {
                "tags": [
                    "Records"
                ],
                "summary": "Find one student by code or name fragment",
                "parameters": [
                    {
                        "name": "q",
                        "in": "query",
                        "type": "string",
                        "required": true,
                        "description": "Student code or part of a name"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "No match",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/records/sorted": {
            "get": {
                "tags": [
                    "Records"
                ],
                "summary": "List records ordered by total mark",
                "parameters": [
                    {
                        "name": "order",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Sort direction",
                        "enum": [
                            "asc",
                            "desc"
                        ]
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/records/extreme": {
            "get": {
                "tags": [
                    "Records"
                ],
                "summary": "Show the highest or lowest scoring student",
                "parameters": [
                    {
                        "name": "which",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Which end",
                        "enum": [
                            "highest",
                            "lowest"
                        ]
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "No student data",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/records/export": {
            "get": {
                "tags": [
                    "Records"
                ],
                "summary": "Download the records as CSV or PDF",
                "parameters": [
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Export format",
                        "enum": [
                            "csv",
                            "pdf"
                        ]
                    },
                    {
                        "name": "order",
                        "in": "query",
                        "type": "string",
                        "required": false,
                        "description": "Sort direction",
                        "enum": [
                            "asc",
                            "desc"
                        ]
                    }
                ],
                "produces": [
                    "text/csv",
                    "application/pdf"
                ],
                "responses": {
                    "200": {
                        "description": "Rendered file",
                        "schema": {
                            "type": "file"
                        }
                    }
                }
            }
        },
        "/auth/token": {
            "post": {
                "tags": [
                    "Auth"
                ],
                "summary": "Obtain an admin bearer token",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/LoginRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/IssuedToken"
                        }
                    },
                    "401": {
                        "description": "Invalid credentials",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "403": {
                        "description": "Password login disabled",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/records/exports": {
            "get": {
                "tags": [
                    "Exports"
                ],
                "summary": "List stored export files",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ExportFilesResponse"
                        }
                    }
                }
            },
            "post": {
                "tags": [
                    "Exports"
                ],
                "summary": "Queue a background export",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/CreateExportJobRequest"
                        }
                    }
                ],
                "responses": {
                    "202": {
                        "description": "Accepted",
                        "schema": {
                            "$ref": "#/definitions/ExportJob"
                        }
                    },
                    "409": {
                        "description": "Export queue is full",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/records/exports/{id}": {
            "get": {
                "tags": [
                    "Exports"
                ],
                "summary": "Get export job status",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Export job ID"
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ExportJob"
                        }
                    },
                    "404": {
                        "description": "Unknown job",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/records/exports/{id}/download": {
            "get": {
                "tags": [
                    "Exports"
                ],
                "summary": "Download a finished export",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Export job ID"
                    }
                ],
                "produces": [
                    "text/csv",
                    "application/pdf"
                ],
                "responses": {
                    "200": {
                        "description": "Rendered file",
                        "schema": {
                            "type": "file"
                        }
                    },
                    "409": {
                        "description": "Job not finished",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/records/reload": {
            "post": {
                "tags": [
                    "Records"
                ],
                "summary": "Re-read the record store from its backend",
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "503": {
                        "description": "Data file missing",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/records/{selector}": {
            "patch": {
                "tags": [
                    "Records"
                ],
                "summary": "Change one field of a student record",
                "parameters": [
                    {
                        "name": "selector",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Student code or exact name"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/UpdateRecordRequest"
                        }
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "400": {
                        "description": "Invalid field or value",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "No match",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "Records"
                ],
                "summary": "Delete every record matching a code or exact name",
                "parameters": [
                    {
                        "name": "selector",
                        "in": "path",
                        "type": "string",
                        "required": true,
                        "description": "Student code or exact name"
                    }
                ],
                "security": [
                    {
                        "BearerAuth": []
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "No match",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/jokes/next": {
            "get": {
                "tags": [
                    "Jokes"
                ],
                "summary": "Draw a random joke setup",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/jokes/punchline": {
            "get": {
                "tags": [
                    "Jokes"
                ],
                "summary": "Reveal the punchline of the last drawn joke",
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "404": {
                        "description": "No joke drawn yet",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        }
    },
    "definitions": {
        "CreateRecordRequest": {
            "type": "object",
            "required": [
                "code",
                "name",
                "cw1",
                "cw2",
                "cw3",
                "exam"
            ],
            "properties": {
                "code": {
                    "type": "integer",
                    "minimum": 1
                },
                "name": {
                    "type": "string"
                },
                "cw1": {
                    "type": "integer",
                    "minimum": 0,
                    "maximum": 20
                },
                "cw2": {
                    "type": "integer",
                    "minimum": 0,
                    "maximum": 20
                },
                "cw3": {
                    "type": "integer",
                    "minimum": 0,
                    "maximum": 20
                },
                "exam": {
                    "type": "integer",
                    "minimum": 0,
                    "maximum": 100
                }
            }
        },
        "UpdateRecordRequest": {
            "type": "object",
            "required": [
                "field",
                "value"
            ],
            "properties": {
                "field": {
                    "type": "string",
                    "enum": [
                        "name",
                        "cw1",
                        "cw2",
                        "cw3",
                        "exam"
                    ]
                },
                "value": {
                    "description": "New value; a whole number for marks"
                }
            }
        },
        "StudentRecord": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "integer"
                },
                "name": {
                    "type": "string"
                },
                "cw1": {
                    "type": "integer"
                },
                "cw2": {
                    "type": "integer"
                },
                "cw3": {
                    "type": "integer"
                },
                "exam": {
                    "type": "integer"
                },
                "total_coursework": {
                    "type": "integer"
                },
                "total_mark": {
                    "type": "integer"
                },
                "percentage": {
                    "type": "number"
                },
                "grade": {
                    "type": "string",
                    "enum": [
                        "A",
                        "B",
                        "C",
                        "D",
                        "F"
                    ]
                }
            }
        },
        "RecordTable": {
            "type": "object",
            "properties": {
                "title": {
                    "type": "string"
                },
                "records": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/StudentRecord"
                    }
                },
                "summary": {
                    "type": "string"
                }
            }
        },
        "CreateExportJobRequest": {
            "type": "object",
            "required": [
                "format"
            ],
            "properties": {
                "format": {
                    "type": "string",
                    "enum": [
                        "csv",
                        "pdf"
                    ]
                },
                "order": {
                    "type": "string",
                    "enum": [
                        "asc",
                        "desc"
                    ]
                }
            }
        },
        "ExportJob": {
            "type": "object",
            "properties": {
                "id": {
                    "type": "string"
                },
                "format": {
                    "type": "string"
                },
                "order": {
                    "type": "string"
                },
                "status": {
                    "type": "string",
                    "enum": [
                        "QUEUED",
                        "PROCESSING",
                        "FINISHED",
                        "FAILED"
                    ]
                },
                "filename": {
                    "type": "string"
                },
                "records": {
                    "type": "integer"
                },
                "error": {
                    "type": "string"
                },
                "created_at": {
                    "type": "string",
                    "format": "date-time"
                },
                "finished_at": {
                    "type": "string",
                    "format": "date-time"
                }
            }
        },
        "ExportFilesResponse": {
            "type": "object",
            "properties": {
                "files": {
                    "type": "array",
                    "items": {
                        "type": "string"
                    }
                }
            }
        },
        "LoginRequest": {
            "type": "object",
            "required": [
                "password"
            ],
            "properties": {
                "username": {
                    "type": "string"
                },
                "password": {
                    "type": "string"
                }
            }
        },
        "IssuedToken": {
            "type": "object",
            "properties": {
                "access_token": {
                    "type": "string"
                },
                "expires_in": {
                    "type": "integer"
                }
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {
                    "type": "string"
                },
                "message": {
                    "type": "string"
                },
                "status": {
                    "type": "integer"
                }
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {
                    "type": "object"
                },
                "error": {
                    "$ref": "#/definitions/APIError"
                },
                "meta": {
                    "type": "object"
                }
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
