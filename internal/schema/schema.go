// Package schema checks generated corpora against the ticket JSON Schema and
// the cross-record rules the generator guarantees.
package schema

import (
	"github.com/xeipuuv/gojsonschema"

	"github.com/civictriage/ticketsynth/internal/synth"
)

// TicketSchema returns the draft-07 JSON Schema for one JSONL line.
// Enumerations are taken from the synth package so the two never drift.
func TicketSchema() map[string]interface{} {
	hash := map[string]interface{}{
		"type":    "string",
		"pattern": "^[0-9a-f]{16}$",
	}
	return map[string]interface{}{
		"$schema":              "http://json-schema.org/draft-07/schema#",
		"title":                "Synthetic municipal ticket",
		"type":                 "object",
		"additionalProperties": false,
		"required": []string{
			"ticket_id", "citizen_id_hash", "phone_hash", "submitted_at", "location",
			"category", "subcategory", "description", "photos", "priority_claimed",
			"language", "channel", "_label_will_escalate", "_label_priority_score",
		},
		"properties": map[string]interface{}{
			"ticket_id":       map[string]interface{}{"type": "string", "minLength": 1},
			"citizen_id_hash": hash,
			"phone_hash":      hash,
			"submitted_at": map[string]interface{}{
				"type":    "string",
				"pattern": `^\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}(\.\d{1,6})?$`,
			},
			"location": map[string]interface{}{
				"type":                 "object",
				"additionalProperties": false,
				"required":             []string{"ward", "pincode", "lat", "lon"},
				"properties": map[string]interface{}{
					"ward":    map[string]interface{}{"type": "string", "enum": synth.Wards},
					"pincode": map[string]interface{}{"type": "string", "pattern": "^4000[1-9][0-9]$"},
					"lat":     map[string]interface{}{"type": "number"},
					"lon":     map[string]interface{}{"type": "number"},
				},
			},
			"category":    map[string]interface{}{"type": "string", "enum": synth.Categories},
			"subcategory": map[string]interface{}{"type": "string", "pattern": "_sub_[1-3]$"},
			"description": map[string]interface{}{"type": "string", "minLength": 1},
			"photos": map[string]interface{}{
				"type":     "array",
				"maxItems": 3,
				"items":    map[string]interface{}{"type": "string", "pattern": `^gs://bucket/photo_\d+_\d+\.jpg$`},
			},
			"priority_claimed":      map[string]interface{}{"type": "string", "enum": synth.Priorities},
			"language":              map[string]interface{}{"type": "string", "enum": synth.Languages},
			"channel":               map[string]interface{}{"type": "string", "enum": synth.Channels},
			"_label_will_escalate":  map[string]interface{}{"type": "boolean"},
			"_label_priority_score": map[string]interface{}{"type": "number", "minimum": 0, "maximum": 1},
		},
	}
}

func compileTicketSchema() (*gojsonschema.Schema, error) {
	return gojsonschema.NewSchema(gojsonschema.NewGoLoader(TicketSchema()))
}
