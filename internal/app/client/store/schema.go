package store

import "initium/internal/domain/collection"

// tableSchema declares one collection's table: the primary key plus the
// document fields that get an expression index over the stored JSON.
type tableSchema struct {
	Collection string
	Indexed    []string
}

// schemaVersion groups the tables introduced at one version. Versions are
// applied in order and tracked through PRAGMA user_version; upgrades only add
// tables and indexes, existing data is never touched.
type schemaVersion struct {
	Version int
	Tables  []tableSchema
}

var schemaVersions = []schemaVersion{
	{
		Version: 1,
		Tables: []tableSchema{
			{Collection: collection.Users, Indexed: []string{"email", "username", "created_at"}},
			{Collection: collection.Quests, Indexed: []string{"title", "category", "status", "priority", "due_date", "project_id", "parent_id", "created_at"}},
			{Collection: collection.Habits, Indexed: []string{"title", "category", "frequency", "streak", "last_completed", "quest_id", "project_id", "created_at"}},
			{Collection: collection.Projects, Indexed: []string{"title", "status", "priority", "progress", "created_at"}},
			{Collection: collection.Tasks, Indexed: []string{"project_id", "quest_id", "title", "status", "created_at"}},
			{Collection: collection.Notes, Indexed: []string{"title", "created_at", "updated_at"}},
			{Collection: collection.Training, Indexed: []string{"type", "intensity", "date", "quest_id", "created_at"}},
			{Collection: collection.Events, Indexed: []string{"title", "type", "start_date", "end_date", "quest_id", "project_id", "created_at"}},
			{Collection: collection.Analytics, Indexed: []string{"date"}},
			{Collection: collection.Settings, Indexed: []string{"key"}},
			{Collection: collection.Badges, Indexed: []string{"user_id", "type", "earned_at"}},
			{Collection: collection.Backlinks, Indexed: []string{"source_id", "target_id"}},
		},
	},
	{
		Version: 2,
		Tables: []tableSchema{
			{Collection: collection.Notifications, Indexed: []string{"type", "read", "created_at"}},
			{Collection: collection.Feedback, Indexed: []string{"type", "status", "created_at"}},
			{Collection: collection.APIKeys, Indexed: []string{"service", "created_at"}},
		},
	},
}
