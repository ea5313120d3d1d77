// Package docs provides Swagger documentation for the Go Warranty API.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Go Warranty API",
        "description": "Vehicle Warranty Checkout and Policy API.\n\nThis API backs the warranty checkout flow:\n1. **Warranty** - Resolve payment plans to terms and plan tiers to benefits\n2. **Quote Drafts** - Save a half-finished checkout form\n3. **Policies** - Issue a policy once payment succeeds\n4. **Discounts** - Check a discount code at checkout\n5. **Admin** - Campaign code refresh and the expiry sweep",
        "contact": {
            "name": "API Support",
            "url": "https://github.com/MrKriegler/go-warranty"
        },
        "license": {
            "name": "MIT"
        },
        "version": "1.0.0"
    },
    "host": "localhost:8080",
    "basePath": "/api/v1",
    "schemes": ["http", "https"],
    "consumes": ["application/json"],
    "produces": ["application/json"],
    "securityDefinitions": {
        "ApiKeyAuth": {"type": "apiKey", "in": "header", "name": "X-API-Key"}
    },
    "paths": {
        "/warranty/duration": {
            "get": {
                "tags": ["Warranty"],
                "summary": "Resolve a payment type",
                "description": "Returns the coverage term for a payment type. Unknown payment types fall back to 12 months.",
                "operationId": "getDuration",
                "parameters": [
                    {"name": "payment_type", "in": "query", "required": true, "type": "string", "description": "e.g. monthly, yearly, two_yearly, 36 months"}
                ],
                "responses": {
                    "200": {"description": "Successful response", "schema": {"$ref": "#/definitions/DurationResponse"}},
                    "400": {"description": "Missing payment_type", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/warranty/coverage": {
            "get": {
                "tags": ["Warranty"],
                "summary": "Benefits for a plan tier",
                "description": "Tiers match by substring: anything containing platinum or gold. Transfer cover is on every plan.",
                "operationId": "getCoverage",
                "parameters": [
                    {"name": "plan_tier", "in": "query", "required": false, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Successful response", "schema": {"$ref": "#/definitions/CoverageResponse"}}
                }
            }
        },
        "/warranty/quotes": {
            "post": {
                "tags": ["Warranty"],
                "summary": "Quote a warranty",
                "description": "Prices the term and coverage for checkout",
                "operationId": "createQuote",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/QuoteInput"}}
                ],
                "responses": {
                    "200": {"description": "Quote", "schema": {"$ref": "#/definitions/WarrantyQuote"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/quote-drafts/{draft_id}": {
            "put": {
                "tags": ["Quote Drafts"],
                "summary": "Save a checkout draft",
                "description": "Stores any JSON object for the draft TTL",
                "operationId": "saveDraft",
                "parameters": [
                    {"name": "draft_id", "in": "path", "required": true, "type": "string"},
                    {"name": "body", "in": "body", "required": true, "schema": {"type": "object"}}
                ],
                "responses": {
                    "200": {"description": "Saved", "schema": {"$ref": "#/definitions/QuoteDraft"}},
                    "400": {"description": "Body is not JSON", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            },
            "get": {
                "tags": ["Quote Drafts"],
                "summary": "Load a checkout draft",
                "operationId": "getDraft",
                "parameters": [
                    {"name": "draft_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Draft", "schema": {"$ref": "#/definitions/QuoteDraft"}},
                    "404": {"description": "Missing or expired", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            },
            "delete": {
                "tags": ["Quote Drafts"],
                "summary": "Delete a checkout draft",
                "operationId": "deleteDraft",
                "parameters": [
                    {"name": "draft_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/policies": {
            "post": {
                "tags": ["Policies"],
                "summary": "Issue a policy",
                "description": "Creates a policy for a paid order and refreshes the campaign discount code. Replaying the same order_ref returns the existing policy.",
                "operationId": "issuePolicy",
                "parameters": [
                    {"name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/IssueInput"}}
                ],
                "responses": {
                    "201": {"description": "Policy issued", "schema": {"$ref": "#/definitions/Policy"}},
                    "400": {"description": "Validation error", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/policies/{policy_id}": {
            "get": {
                "tags": ["Policies"],
                "summary": "Get a policy by ID",
                "operationId": "getPolicy",
                "parameters": [
                    {"name": "policy_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Successful response", "schema": {"$ref": "#/definitions/Policy"}},
                    "404": {"description": "Policy not found", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/policies/number/{number}": {
            "get": {
                "tags": ["Policies"],
                "summary": "Get a policy by number",
                "operationId": "getPolicyByNumber",
                "parameters": [
                    {"name": "number", "in": "path", "required": true, "type": "string", "description": "e.g. WP-2025-000001"}
                ],
                "responses": {
                    "200": {"description": "Successful response", "schema": {"$ref": "#/definitions/Policy"}},
                    "404": {"description": "Policy not found", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/discounts/{code}/validate": {
            "get": {
                "tags": ["Discounts"],
                "summary": "Check a discount code",
                "description": "Codes that exist but cannot be used answer 200 with valid=false and a reason",
                "operationId": "validateDiscount",
                "parameters": [
                    {"name": "code", "in": "path", "required": true, "type": "string"},
                    {"name": "product", "in": "query", "required": false, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Result", "schema": {"$ref": "#/definitions/DiscountValidation"}},
                    "404": {"description": "Unknown code", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/admin/policies": {
            "get": {
                "tags": ["Admin"],
                "summary": "List a customer's policies",
                "operationId": "listPolicies",
                "security": [{"ApiKeyAuth": []}],
                "parameters": [
                    {"name": "customer_email", "in": "query", "required": true, "type": "string"},
                    {"name": "limit", "in": "query", "required": false, "type": "integer", "default": 20},
                    {"name": "offset", "in": "query", "required": false, "type": "integer", "default": 0}
                ],
                "responses": {
                    "200": {"description": "Successful response", "schema": {"$ref": "#/definitions/PolicyList"}},
                    "400": {"description": "Missing customer_email", "schema": {"$ref": "#/definitions/ProblemDetails"}},
                    "401": {"description": "Missing or invalid API key", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/admin/discounts": {
            "get": {
                "tags": ["Admin"],
                "summary": "List discount codes",
                "operationId": "listDiscounts",
                "security": [{"ApiKeyAuth": []}],
                "parameters": [
                    {"name": "include_archived", "in": "query", "required": false, "type": "boolean"}
                ],
                "responses": {
                    "200": {"description": "Successful response", "schema": {"$ref": "#/definitions/DiscountList"}},
                    "401": {"description": "Missing or invalid API key", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/admin/discounts/{code}": {
            "get": {
                "tags": ["Admin"],
                "summary": "Get a discount code",
                "operationId": "getDiscount",
                "security": [{"ApiKeyAuth": []}],
                "parameters": [
                    {"name": "code", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Successful response", "schema": {"$ref": "#/definitions/DiscountCode"}},
                    "404": {"description": "Unknown code", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/admin/discounts/campaign:refresh": {
            "post": {
                "tags": ["Admin"],
                "summary": "Refresh the campaign code",
                "description": "Creates the campaign code or pushes its validity window forward",
                "operationId": "refreshCampaign",
                "security": [{"ApiKeyAuth": []}],
                "responses": {
                    "200": {"description": "Refreshed", "schema": {"$ref": "#/definitions/DiscountCode"}},
                    "401": {"description": "Missing or invalid API key", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/admin/discounts:expire": {
            "post": {
                "tags": ["Admin"],
                "summary": "Run the expiry sweep",
                "description": "Archives every unarchived code whose validity window has closed",
                "operationId": "expireDiscounts",
                "security": [{"ApiKeyAuth": []}],
                "responses": {
                    "200": {"description": "Number archived", "schema": {"$ref": "#/definitions/ExpireResult"}},
                    "401": {"description": "Missing or invalid API key", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        },
        "/admin/coverage": {
            "get": {
                "tags": ["Admin"],
                "summary": "Benefit eligibility for a tier",
                "operationId": "adminCoverage",
                "security": [{"ApiKeyAuth": []}],
                "parameters": [
                    {"name": "plan_tier", "in": "query", "required": false, "type": "string"},
                    {"name": "benefit", "in": "query", "required": false, "type": "string", "enum": ["motFee", "tyreCover", "wearTear", "europeCover", "transferCover"]}
                ],
                "responses": {
                    "200": {"description": "Successful response", "schema": {"$ref": "#/definitions/BenefitList"}},
                    "400": {"description": "Unknown benefit", "schema": {"$ref": "#/definitions/ProblemDetails"}}
                }
            }
        }
    },
    "definitions": {
        "DurationResponse": {
            "type": "object",
            "properties": {
                "payment_type": {"type": "string"},
                "normalized": {"type": "string", "example": "twoyearly"},
                "known": {"type": "boolean"},
                "months": {"type": "integer", "example": 24},
                "display_text": {"type": "string", "example": "24 months"},
                "payment_frequency": {"type": "string", "example": "24 months"},
                "email_text": {"type": "string", "example": "24 months"},
                "legacy": {"$ref": "#/definitions/Divergence"}
            }
        },
        "Divergence": {
            "type": "object",
            "properties": {
                "payment_type": {"type": "string"},
                "current": {"type": "string"},
                "legacy": {"type": "string"},
                "current_label": {"type": "string"},
                "legacy_label": {"type": "string"},
                "durations_agree": {"type": "boolean"}
            }
        },
        "EligibilityMatrix": {
            "type": "object",
            "properties": {
                "mot_fee": {"type": "boolean"},
                "tyre_cover": {"type": "boolean"},
                "wear_tear": {"type": "boolean"},
                "europe_cover": {"type": "boolean"},
                "transfer_cover": {"type": "boolean"}
            }
        },
        "CoverageResponse": {
            "type": "object",
            "properties": {
                "plan_tier": {"type": "string"},
                "coverage": {"$ref": "#/definitions/EligibilityMatrix"}
            }
        },
        "BenefitList": {
            "type": "object",
            "properties": {
                "plan_tier": {"type": "string"},
                "benefits": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "benefit": {"type": "string"},
                            "eligible": {"type": "boolean"}
                        }
                    }
                }
            }
        },
        "QuoteInput": {
            "type": "object",
            "required": ["plan_tier", "payment_type"],
            "properties": {
                "plan_tier": {"type": "string", "example": "Gold"},
                "payment_type": {"type": "string", "example": "two_yearly"},
                "start_date": {"type": "string", "format": "date", "example": "2025-03-01"}
            }
        },
        "WarrantyQuote": {
            "type": "object",
            "properties": {
                "plan_tier": {"type": "string"},
                "payment_type": {"type": "string"},
                "months": {"type": "integer"},
                "display_text": {"type": "string"},
                "payment_frequency": {"type": "string"},
                "email_text": {"type": "string"},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"},
                "coverage": {"$ref": "#/definitions/EligibilityMatrix"},
                "known_payment_type": {"type": "boolean"},
                "legacy_mismatch": {"type": "boolean"}
            }
        },
        "QuoteDraft": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "data": {"type": "object"},
                "saved_at": {"type": "string", "format": "date-time"}
            }
        },
        "Customer": {
            "type": "object",
            "required": ["first_name", "last_name", "email"],
            "properties": {
                "first_name": {"type": "string", "example": "Ada"},
                "last_name": {"type": "string", "example": "Lovelace"},
                "email": {"type": "string", "format": "email"},
                "phone": {"type": "string"}
            }
        },
        "Vehicle": {
            "type": "object",
            "required": ["registration"],
            "properties": {
                "registration": {"type": "string", "example": "AB12CDE"},
                "make": {"type": "string"},
                "model": {"type": "string"},
                "mileage": {"type": "integer"}
            }
        },
        "IssueInput": {
            "type": "object",
            "required": ["order_ref", "customer", "vehicle", "plan_tier", "payment_type"],
            "properties": {
                "order_ref": {"type": "string", "example": "pi_3Nx"},
                "customer": {"$ref": "#/definitions/Customer"},
                "vehicle": {"$ref": "#/definitions/Vehicle"},
                "plan_tier": {"type": "string"},
                "payment_type": {"type": "string"},
                "discount_code": {"type": "string"},
                "start_date": {"type": "string", "format": "date"}
            }
        },
        "Policy": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "number": {"type": "string", "example": "WP-2025-000001"},
                "order_ref": {"type": "string"},
                "customer": {"$ref": "#/definitions/Customer"},
                "vehicle": {"$ref": "#/definitions/Vehicle"},
                "plan_tier": {"type": "string"},
                "payment_type": {"type": "string"},
                "duration_months": {"type": "integer"},
                "coverage": {"$ref": "#/definitions/EligibilityMatrix"},
                "discount_code": {"type": "string"},
                "status": {"type": "string", "enum": ["active", "cancelled", "expired"]},
                "start_date": {"type": "string", "format": "date-time"},
                "end_date": {"type": "string", "format": "date-time"},
                "issued_at": {"type": "string", "format": "date-time"}
            }
        },
        "PolicyList": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/Policy"}},
                "total": {"type": "integer"},
                "limit": {"type": "integer"},
                "offset": {"type": "integer"}
            }
        },
        "DiscountCode": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "code": {"type": "string", "example": "EMAIL25SAVE"},
                "type": {"type": "string", "enum": ["fixed", "percentage"]},
                "value": {"type": "number", "example": 25},
                "valid_from": {"type": "string", "format": "date-time"},
                "valid_to": {"type": "string", "format": "date-time"},
                "usage_limit": {"type": "integer", "x-nullable": true},
                "used_count": {"type": "integer"},
                "active": {"type": "boolean"},
                "archived": {"type": "boolean"},
                "applicable_products": {"type": "array", "items": {"type": "string"}},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "DiscountList": {
            "type": "object",
            "properties": {
                "items": {"type": "array", "items": {"$ref": "#/definitions/DiscountCode"}}
            }
        },
        "DiscountValidation": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "valid": {"type": "boolean"},
                "reason": {"type": "string"},
                "type": {"type": "string"},
                "value": {"type": "number"}
            }
        },
        "ExpireResult": {
            "type": "object",
            "properties": {
                "archived": {"type": "integer"}
            }
        },
        "ProblemDetails": {
            "type": "object",
            "description": "RFC 7807 Problem Details",
            "properties": {
                "type": {"type": "string", "example": "about:blank"},
                "title": {"type": "string", "example": "Not Found"},
                "status": {"type": "integer", "example": 404},
                "detail": {"type": "string", "example": "Resource not found"}
            }
        }
    },
    "tags": [
        {"name": "Warranty", "description": "Terms, coverage and quotes"},
        {"name": "Quote Drafts", "description": "Saved checkout progress"},
        {"name": "Policies", "description": "Issued vehicle warranties"},
        {"name": "Discounts", "description": "Discount code checks"},
        {"name": "Admin", "description": "Campaign and sweep operations (API key)"}
    ]
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{"http", "https"},
	Title:            "Go Warranty API",
	Description:      "Vehicle Warranty Checkout and Policy API",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
