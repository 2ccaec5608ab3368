package artifact

import "risk-predictor/internal/common/validation"

const classifierSchemaJSON = `{
  "type": "object",
  "required": ["kind", "type", "classes", "n_features"],
  "properties": {
    "kind": {"const": "classifier"},
    "type": {"enum": ["constant", "logistic", "gradient_boosting"]},
    "classes": {
      "type": "array",
      "minItems": 1,
      "items": {"type": ["integer", "number", "string"]}
    },
    "n_features": {"type": "integer", "minimum": 0},
    "label": {"type": ["integer", "number", "string"]},
    "probabilities": {"type": "array", "items": {"type": "number", "minimum": 0, "maximum": 1}},
    "weights": {"type": "array", "items": {"type": "number"}},
    "bias": {"type": "number"},
    "threshold": {"type": "number", "exclusiveMinimum": 0, "exclusiveMaximum": 1},
    "init_score": {"type": "number"},
    "learning_rate": {"type": "number", "exclusiveMinimum": 0},
    "trees": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["children_left", "children_right", "feature", "threshold", "value"],
        "properties": {
          "children_left": {"type": "array", "minItems": 1, "items": {"type": "integer"}},
          "children_right": {"type": "array", "minItems": 1, "items": {"type": "integer"}},
          "feature": {"type": "array", "minItems": 1, "items": {"type": "integer"}},
          "threshold": {"type": "array", "minItems": 1, "items": {"type": "number"}},
          "value": {"type": "array", "minItems": 1, "items": {"type": "number"}}
        }
      }
    }
  },
  "allOf": [
    {
      "if": {"properties": {"type": {"const": "constant"}}},
      "then": {"required": ["label"]}
    },
    {
      "if": {"properties": {"type": {"const": "logistic"}}},
      "then": {"required": ["weights", "bias"], "properties": {"classes": {"minItems": 2, "maxItems": 2}}}
    },
    {
      "if": {"properties": {"type": {"const": "gradient_boosting"}}},
      "then": {"required": ["init_score", "learning_rate", "trees"], "properties": {"classes": {"minItems": 2, "maxItems": 2}}}
    }
  ]
}`

const encoderSchemaJSON = `{
  "type": "object",
  "required": ["kind", "type", "features", "categories"],
  "properties": {
    "kind": {"const": "encoder"},
    "type": {"const": "one_hot"},
    "features": {"type": "array", "minItems": 1, "items": {"type": "string", "minLength": 1}},
    "categories": {
      "type": "array",
      "minItems": 1,
      "items": {"type": "array", "minItems": 1, "items": {"type": ["integer", "number", "string", "boolean"]}}
    },
    "handle_unknown": {"const": "ignore"}
  }
}`

var (
	classifierSchema = validation.MustCompile(KindClassifier, classifierSchemaJSON)
	encoderSchema    = validation.MustCompile(KindEncoder, encoderSchemaJSON)
)
