package publishvendorranking

import "rfq-workers/internal/common/validation"

const inputSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["rfqId", "weights", "vendors"],
  "properties": {
    "rfqId": {"type": "string", "minLength": 1},
    "scoringRunId": {"type": "string"},
    "weights": {
      "type": "object",
      "required": ["price", "leadTime", "quality", "reliability"],
      "properties": {
        "price": {"type": "number"},
        "leadTime": {"type": "number"},
        "quality": {"type": "number"},
        "reliability": {"type": "number"}
      }
    },
    "vendors": {"type": "array", "items": {"$ref": "#/definitions/result"}},
    "winner": {"oneOf": [{"type": "null"}, {"$ref": "#/definitions/result"}]}
  },
  "definitions": {
    "result": {
      "type": "object",
      "required": ["vendor", "components", "score"],
      "properties": {
        "vendor": {"type": "string"},
        "components": {"type": "object"},
        "score": {"type": "number"}
      }
    }
  }
}`

var inputSchema = validation.MustCompile(inputSchemaJSON)

// IndexMapping is applied when the worker manager creates the rankings index.
const IndexMapping = `{
  "mappings": {
    "properties": {
      "rfqId": {"type": "keyword"},
      "scoringRunId": {"type": "keyword"},
      "winningVendor": {"type": "keyword"},
      "publishedAt": {"type": "date"},
      "weights": {
        "properties": {
          "price": {"type": "double"},
          "leadTime": {"type": "double"},
          "quality": {"type": "double"},
          "reliability": {"type": "double"}
        }
      },
      "vendors": {
        "type": "nested",
        "properties": {
          "vendor": {"type": "keyword"},
          "score": {"type": "double"},
          "components": {
            "properties": {
              "price": {"type": "double"},
              "leadTime": {"type": "double"},
              "quality": {"type": "double"},
              "reliability": {"type": "double"}
            }
          }
        }
      },
      "winner": {
        "properties": {
          "vendor": {"type": "keyword"},
          "score": {"type": "double"}
        }
      }
    }
  }
}`
