// Package schema defines the database schema for development.
//
// DEVELOPMENT USE ONLY
// This file contains the current database schema and is used for development and testing.
// Before deploying to production, these table definitions should be converted to proper migrations.
package schema

// TableDefinitions contains all the SQL statements to create the database tables
// Don't put REFERENCES and don't put CHECK constraints in the CREATE TABLE statements
var TableDefinitions = []string{
	`CREATE TABLE IF NOT EXISTS automations (
		id UUID PRIMARY KEY,
		workspace_id VARCHAR(32) NOT NULL,
		name VARCHAR(255) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'draft',
		trigger_config JSONB NOT NULL DEFAULT '{}',
		steps JSONB NOT NULL DEFAULT '[]',
		stats JSONB NOT NULL DEFAULT '{}',
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
		deleted_at TIMESTAMP WITH TIME ZONE
	)`,
	`CREATE TABLE IF NOT EXISTS automation_enrollments (
		id UUID PRIMARY KEY,
		workspace_id VARCHAR(32) NOT NULL,
		automation_id UUID NOT NULL,
		contact_email VARCHAR(255) NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		current_step_order INTEGER NOT NULL DEFAULT 0,
		enrolled_at TIMESTAMP WITH TIME ZONE NOT NULL,
		completed_at TIMESTAMP WITH TIME ZONE,
		cancelled_at TIMESTAMP WITH TIME ZONE,
		failed_at TIMESTAMP WITH TIME ZONE,
		exit_reason VARCHAR(255),
		context JSONB NOT NULL DEFAULT '{}'
	)`,
	`CREATE TABLE IF NOT EXISTS automation_executions (
		id UUID PRIMARY KEY,
		workspace_id VARCHAR(32) NOT NULL,
		enrollment_id UUID NOT NULL,
		step_id UUID NOT NULL,
		step_order INTEGER NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'pending',
		scheduled_at TIMESTAMP WITH TIME ZONE NOT NULL,
		started_at TIMESTAMP WITH TIME ZONE,
		completed_at TIMESTAMP WITH TIME ZONE,
		attempts INTEGER NOT NULL DEFAULT 0,
		error TEXT,
		result JSONB,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS contacts (
		workspace_id VARCHAR(32) NOT NULL,
		email VARCHAR(255) NOT NULL,
		external_id VARCHAR(255),
		first_name VARCHAR(255),
		last_name VARCHAR(255),
		phone VARCHAR(50),
		country VARCHAR(100),
		tags TEXT[] NOT NULL DEFAULT '{}',
		properties JSONB NOT NULL DEFAULT '{}',
		unsubscribed BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
		deleted_at TIMESTAMP WITH TIME ZONE,
		PRIMARY KEY (workspace_id, email)
	)`,
}

// IndexDefinitions contains the indexes the engine relies on. The partial
// unique index on enrollments is load-bearing: it is what turns a concurrent
// double-enroll into a 23505 instead of a duplicate row.
var IndexDefinitions = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_enrollments_active_unique
		ON automation_enrollments (automation_id, contact_email)
		WHERE status IN ('active', 'paused')`,
	`CREATE INDEX IF NOT EXISTS idx_executions_due
		ON automation_executions (scheduled_at)
		WHERE status IN ('pending', 'waiting', 'failed')`,
	`CREATE INDEX IF NOT EXISTS idx_executions_enrollment
		ON automation_executions (workspace_id, enrollment_id)`,
	`CREATE INDEX IF NOT EXISTS idx_executions_stale
		ON automation_executions (started_at)
		WHERE status = 'processing'`,
	`CREATE INDEX IF NOT EXISTS idx_enrollments_automation
		ON automation_enrollments (workspace_id, automation_id)`,
	`CREATE INDEX IF NOT EXISTS idx_automations_workspace
		ON automations (workspace_id)`,
	`CREATE INDEX IF NOT EXISTS idx_contacts_tags
		ON contacts USING GIN (tags)`,
}
