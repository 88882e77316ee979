package calendar

import "github.com/fruitctl/fruitctl/internal/integrations"

var (
	listCalendarsSchema = integrations.MustCompileSchema("calendar/list_calendars", `{
		"type": "object"
	}`)

	listEventsSchema = integrations.MustCompileSchema("calendar/list_events", `{
		"type": "object",
		"properties": {
			"calendar": {"type": "string", "minLength": 1},
			"from": {"type": "string", "minLength": 1},
			"to": {"type": "string", "minLength": 1}
		},
		"required": ["calendar", "from", "to"]
	}`)

	showEventSchema = integrations.MustCompileSchema("calendar/show_event", `{
		"type": "object",
		"properties": {
			"id": {"type": "string", "minLength": 1}
		},
		"required": ["id"]
	}`)

	addEventSchema = integrations.MustCompileSchema("calendar/add", `{
		"type": "object",
		"properties": {
			"calendar": {"type": "string", "minLength": 1},
			"title": {"type": "string", "minLength": 1, "maxLength": 500},
			"start": {"type": "string", "minLength": 1},
			"end": {"type": "string", "minLength": 1},
			"location": {"type": "string", "maxLength": 500},
			"notes": {"type": "string", "maxLength": 2000},
			"allDay": {"type": "boolean"}
		},
		"required": ["calendar", "title", "start", "end"],
		"additionalProperties": false
	}`)

	deleteEventSchema = integrations.MustCompileSchema("calendar/delete", `{
		"type": "object",
		"properties": {
			"id": {"type": "string", "minLength": 1}
		},
		"required": ["id"],
		"additionalProperties": false
	}`)
)
