package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SMA Registrar API",
        "description": "Class scheduling, timetables and academic calendar for the registrar office",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {
            "name": "Schedules",
            "description": "Class schedules and conflict checks"
        },
        {
            "name": "Timetables",
            "description": "Section and faculty timetable grids"
        },
        {
            "name": "AcademicPeriods",
            "description": "Semesters and their derived calendars"
        }
    ],
    "paths": {
        "/schedules": {
            "get": {
                "tags": [
                    "Schedules"
                ],
                "summary": "List schedules",
                "parameters": [
                    {
                        "name": "section_id",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "subject_id",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "faculty_id",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "day_of_week",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "semester",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "school_year_id",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "room",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "page_size",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "sort_by",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "sort_order",
                        "in": "query",
                        "type": "string"
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
            },
            "post": {
                "tags": [
                    "Schedules"
                ],
                "summary": "Create schedule",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ScheduleRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/schedules/validate": {
            "post": {
                "tags": [
                    "Schedules"
                ],
                "summary": "Dry-run schedule validation",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ValidateScheduleRequest"
                        }
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
        "/schedules/bulk": {
            "post": {
                "tags": [
                    "Schedules"
                ],
                "summary": "Create several schedules in one transaction",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/BulkScheduleRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/schedules/duration": {
            "post": {
                "tags": [
                    "Schedules"
                ],
                "summary": "Snapped duration of a time range",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/DurationRequest"
                        }
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
        "/schedules/{id}": {
            "get": {
                "tags": [
                    "Schedules"
                ],
                "summary": "Get schedule",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
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
            },
            "put": {
                "tags": [
                    "Schedules"
                ],
                "summary": "Update schedule",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/ScheduleRequest"
                        }
                    }
                ],
                "responses": {
                    "200": {
                        "description": "OK",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            },
            "delete": {
                "tags": [
                    "Schedules"
                ],
                "summary": "Delete schedule",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                }
            }
        },
        "/sections/{id}/schedules": {
            "get": {
                "tags": [
                    "Schedules"
                ],
                "summary": "List section schedules",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "school_year_id",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "semester",
                        "in": "query",
                        "type": "string"
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
        "/faculty/{id}/schedules": {
            "get": {
                "tags": [
                    "Schedules"
                ],
                "summary": "List faculty schedules",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "school_year_id",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "semester",
                        "in": "query",
                        "type": "string"
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
        "/sections/{id}/timetable": {
            "get": {
                "tags": [
                    "Timetables"
                ],
                "summary": "Section timetable grid",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "school_year_id",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "semester",
                        "in": "query",
                        "type": "string"
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
        "/faculty/{id}/timetable": {
            "get": {
                "tags": [
                    "Timetables"
                ],
                "summary": "Faculty timetable grid",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "school_year_id",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "semester",
                        "in": "query",
                        "type": "string"
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
        "/sections/{id}/timetable/export": {
            "get": {
                "tags": [
                    "Timetables"
                ],
                "summary": "Download a section timetable",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "school_year_id",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "semester",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "format",
                        "in": "query",
                        "type": "string",
                        "enum": [
                            "csv",
                            "pdf",
                            "xlsx"
                        ]
                    }
                ],
                "responses": {
                    "200": {
                        "description": "File",
                        "schema": {
                            "type": "file"
                        }
                    }
                },
                "produces": [
                    "text/csv",
                    "application/pdf",
                    "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
                ]
            }
        },
        "/sections/{id}/eligibility": {
            "get": {
                "tags": [
                    "Schedules"
                ],
                "summary": "Eligible subjects and faculty for a section",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "school_year_id",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "semester",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "grade_level",
                        "in": "query",
                        "type": "string"
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
        "/academic-periods": {
            "get": {
                "tags": [
                    "AcademicPeriods"
                ],
                "summary": "List academic periods",
                "parameters": [
                    {
                        "name": "school_year_id",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "semester",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "active",
                        "in": "query",
                        "type": "boolean"
                    },
                    {
                        "name": "page",
                        "in": "query",
                        "type": "integer"
                    },
                    {
                        "name": "page_size",
                        "in": "query",
                        "type": "integer"
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
            },
            "post": {
                "tags": [
                    "AcademicPeriods"
                ],
                "summary": "Create academic period",
                "parameters": [
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AcademicPeriodRequest"
                        }
                    }
                ],
                "responses": {
                    "201": {
                        "description": "Created",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    },
                    "409": {
                        "description": "Conflict",
                        "schema": {
                            "$ref": "#/definitions/ResponseEnvelope"
                        }
                    }
                }
            }
        },
        "/academic-periods/derive": {
            "get": {
                "tags": [
                    "AcademicPeriods"
                ],
                "summary": "Preview the derived calendar",
                "parameters": [
                    {
                        "name": "start_date",
                        "in": "query",
                        "type": "string"
                    },
                    {
                        "name": "semester",
                        "in": "query",
                        "type": "string"
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
        "/academic-periods/{id}": {
            "get": {
                "tags": [
                    "AcademicPeriods"
                ],
                "summary": "Get academic period",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
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
            },
            "put": {
                "tags": [
                    "AcademicPeriods"
                ],
                "summary": "Update academic period",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/AcademicPeriodRequest"
                        }
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
            },
            "delete": {
                "tags": [
                    "AcademicPeriods"
                ],
                "summary": "Delete academic period",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    }
                ],
                "responses": {
                    "204": {
                        "description": "No Content"
                    }
                }
            }
        },
        "/academic-periods/{id}/activate": {
            "post": {
                "tags": [
                    "AcademicPeriods"
                ],
                "summary": "Make an academic period the active one",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
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
        "/academic-periods/{id}/enrollment": {
            "post": {
                "tags": [
                    "AcademicPeriods"
                ],
                "summary": "Open or close enrollment",
                "parameters": [
                    {
                        "name": "id",
                        "in": "path",
                        "required": true,
                        "type": "string"
                    },
                    {
                        "name": "payload",
                        "in": "body",
                        "required": true,
                        "schema": {
                            "$ref": "#/definitions/EnrollmentToggleRequest"
                        }
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
        }
    },
    "definitions": {
        "ScheduleRequest": {
            "type": "object",
            "properties": {
                "section_id": {
                    "type": "string"
                },
                "subject_id": {
                    "type": "string"
                },
                "faculty_id": {
                    "type": "string"
                },
                "day_of_week": {
                    "type": "string"
                },
                "start_time": {
                    "type": "string"
                },
                "end_time": {
                    "type": "string"
                },
                "semester": {
                    "type": "string"
                },
                "school_year_id": {
                    "type": "integer"
                },
                "room": {
                    "type": "string"
                }
            },
            "required": [
                "section_id",
                "subject_id",
                "day_of_week",
                "start_time",
                "end_time",
                "semester",
                "school_year_id"
            ]
        },
        "ValidateScheduleRequest": {
            "type": "object",
            "properties": {
                "section_id": {
                    "type": "string"
                },
                "subject_id": {
                    "type": "string"
                },
                "faculty_id": {
                    "type": "string"
                },
                "day_of_week": {
                    "type": "string"
                },
                "start_time": {
                    "type": "string"
                },
                "end_time": {
                    "type": "string"
                },
                "semester": {
                    "type": "string"
                },
                "school_year_id": {
                    "type": "integer"
                },
                "room": {
                    "type": "string"
                },
                "exclude_id": {
                    "type": "string"
                }
            },
            "required": [
                "section_id",
                "subject_id",
                "day_of_week",
                "start_time",
                "end_time",
                "semester",
                "school_year_id"
            ]
        },
        "BulkScheduleRequest": {
            "type": "object",
            "properties": {
                "items": {
                    "type": "array",
                    "items": {
                        "$ref": "#/definitions/ScheduleRequest"
                    }
                },
                "partial_on_error": {
                    "type": "boolean"
                }
            },
            "required": [
                "items"
            ]
        },
        "DurationRequest": {
            "type": "object",
            "properties": {
                "start_time": {
                    "type": "string"
                },
                "end_time": {
                    "type": "string"
                }
            },
            "required": [
                "start_time",
                "end_time"
            ]
        },
        "AcademicPeriodRequest": {
            "type": "object",
            "properties": {
                "school_year": {
                    "type": "string"
                },
                "semester": {
                    "type": "string"
                },
                "start_date": {
                    "type": "string"
                },
                "enrollment_start_date": {
                    "type": "string"
                },
                "enrollment_end_date": {
                    "type": "string"
                },
                "is_enrollment_open": {
                    "type": "boolean"
                }
            },
            "required": [
                "school_year",
                "semester"
            ]
        },
        "EnrollmentToggleRequest": {
            "type": "object",
            "properties": {
                "open": {
                    "type": "boolean"
                }
            },
            "required": [
                "open"
            ]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {
                    "type": "integer"
                },
                "page_size": {
                    "type": "integer"
                },
                "total_count": {
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
                "pagination": {
                    "$ref": "#/definitions/Pagination"
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
