package reminders

import "github.com/fruitctl/fruitctl/internal/integrations"

var (
	listListsSchema = integrations.MustCompileSchema("reminders/list_lists", `{
		"type": "object"
	}`)

	listRemindersSchema = integrations.MustCompileSchema("reminders/list_reminders", `{
		"type": "object",
		"properties": {
			"list": {"type": "string", "minLength": 1, "maxLength": 200}
		},
		"required": ["list"]
	}`)

	getReminderSchema = integrations.MustCompileSchema("reminders/get_reminder", `{
		"type": "object",
		"properties": {
			"id": {"type": "string", "minLength": 1}
		},
		"required": ["id"]
	}`)

	addReminderSchema = integrations.MustCompileSchema("reminders/add", `{
		"type": "object",
		"properties": {
			"title": {"type": "string", "minLength": 1, "maxLength": 500},
			"list": {"type": "string", "minLength": 1, "maxLength": 200},
			"due": {"type": "string", "minLength": 1},
			"notes": {"type": "string", "maxLength": 2000},
			"priority": {"enum": ["none", "low", "medium", "high"]}
		},
		"required": ["title"],
		"additionalProperties": false
	}`)

	editReminderSchema = integrations.MustCompileSchema("reminders/edit", `{
		"type": "object",
		"properties": {
			"id": {"type": "string", "minLength": 1},
			"title": {"type": "string", "minLength": 1, "maxLength": 500},
			"list": {"type": "string", "minLength": 1, "maxLength": 200},
			"due": {"type": "string", "minLength": 1},
			"notes": {"type": "string", "maxLength": 2000},
			"priority": {"enum": ["none", "low", "medium", "high"]}
		},
		"required": ["id"],
		"additionalProperties": false
	}`)

	idSchema = integrations.MustCompileSchema("reminders/id", `{
		"type": "object",
		"properties": {
			"id": {"type": "string", "minLength": 1}
		},
		"required": ["id"],
		"additionalProperties": false
	}`)
)
