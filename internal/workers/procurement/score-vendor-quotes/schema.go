package scorevendorquotes

import "rfq-workers/internal/common/validation"

const inputSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "anyOf": [
    {"required": ["rfqId"]},
    {"required": ["rfq", "quotes"]}
  ],
  "properties": {
    "rfqId": {"type": "string", "minLength": 1},
    "rfq": {
      "type": "object",
      "required": ["items"],
      "properties": {
        "id": {"type": "string"},
        "items": {"type": "array", "items": {"$ref": "#/definitions/rfqItem"}}
      }
    },
    "quotes": {"type": "array", "items": {"$ref": "#/definitions/quote"}},
    "vendorHistories": {
      "type": "object",
      "additionalProperties": {"$ref": "#/definitions/history"}
    },
    "config": {
      "type": "object",
      "properties": {
        "weights": {"$ref": "#/definitions/weights"},
        "currencyRates": {
          "type": "object",
          "additionalProperties": {"type": "number", "exclusiveMinimum": 0}
        }
      }
    }
  },
  "definitions": {
    "rfqItem": {
      "type": "object",
      "required": ["sku", "quantity"],
      "properties": {
        "sku": {"type": "string"},
        "quantity": {"type": "number"}
      }
    },
    "quote": {
      "type": "object",
      "required": ["supplierName", "items"],
      "properties": {
        "id": {"type": "string"},
        "supplierName": {"type": "string"},
        "items": {"type": "array", "items": {"$ref": "#/definitions/quoteItem"}}
      }
    },
    "quoteItem": {
      "type": "object",
      "required": ["sku", "quantity", "unitPrice"],
      "properties": {
        "sku": {"type": "string"},
        "quantity": {"type": "number"},
        "unitPrice": {"type": "number"},
        "currency": {"type": "string"},
        "leadTimeDays": {"type": ["number", "null"]}
      }
    },
    "history": {
      "type": "object",
      "properties": {
        "onTimeRate": {"type": ["number", "null"]},
        "defectRate": {"type": ["number", "null"]},
        "avgLeadTimeDays": {"type": ["number", "null"]}
      }
    },
    "weights": {
      "type": "object",
      "properties": {
        "price": {"type": "number", "minimum": 0},
        "leadTime": {"type": "number", "minimum": 0},
        "quality": {"type": "number", "minimum": 0},
        "reliability": {"type": "number", "minimum": 0}
      }
    }
  }
}`

var inputSchema = validation.MustCompile(inputSchemaJSON)
