package completion

import (
	"encoding/json"

	"hotel-agent/internal/domain"
)

// Providers require an object root, so list results are wrapped.

var suggestHotelsSchema = domain.ResponseSchema{
	Name: "hotel_suggestions",
	Schema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "suggestions": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "hotel_id": {"type": "string", "description": "The ID of the suggested hotel."},
          "reason": {"type": "string", "description": "Why this hotel matches the user's preferences."}
        },
        "required": ["hotel_id", "reason"],
        "additionalProperties": false
      }
    }
  },
  "required": ["suggestions"],
  "additionalProperties": false
}`),
}

var hotelAnswerSchema = domain.ResponseSchema{
	Name: "hotel_answer",
	Schema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "answer": {"type": "string"}
  },
  "required": ["answer"],
  "additionalProperties": false
}`),
}

var attractionsSchema = domain.ResponseSchema{
	Name: "nearby_attractions",
	Schema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "attractions": {
      "type": "array",
      "items": {
        "type": "object",
        "properties": {
          "name": {"type": "string"},
          "type": {"type": "string", "enum": ["tourist_spot", "restaurant", "shopping"]},
          "description": {"type": "string", "description": "A brief, compelling description."}
        },
        "required": ["name", "type", "description"],
        "additionalProperties": false
      }
    }
  },
  "required": ["attractions"],
  "additionalProperties": false
}`),
}

var weatherSchema = domain.ResponseSchema{
	Name: "weather_forecast",
	Schema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "forecast": {
      "type": "object",
      "properties": {
        "temperature": {"type": "string", "description": "Current temperature in Celsius."},
        "condition": {"type": "string", "description": "Short condition such as Sunny or Rainy."},
        "summary": {"type": "string"}
      },
      "required": ["temperature", "condition", "summary"],
      "additionalProperties": false
    }
  },
  "required": ["forecast"],
  "additionalProperties": false
}`),
}

var upsellSchema = domain.ResponseSchema{
	Name: "room_upsell",
	Schema: json.RawMessage(`{
  "type": "object",
  "properties": {
    "suggestion": {"type": "string", "description": "A short upsell message."},
    "newChoice": {"type": "string", "description": "The upgraded room or package."}
  },
  "required": ["suggestion", "newChoice"],
  "additionalProperties": false
}`),
}
