package postgresql

// migrations returns the schema migrations for the workflow store, keyed by
// version.
func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE IF NOT EXISTS workflows (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				nodes_json TEXT NOT NULL,
				edges_json TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'draft',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_workflows_status ON workflows (status);
			CREATE INDEX IF NOT EXISTS idx_workflows_updated_at ON workflows (updated_at DESC);
		`,
		2: `
			CREATE TABLE IF NOT EXISTS workflow_executions (
				id TEXT PRIMARY KEY,
				workflow_id TEXT NOT NULL REFERENCES workflows(id) ON DELETE CASCADE,
				triggered_by TEXT NOT NULL DEFAULT '',
				trigger_data_json TEXT,
				status TEXT NOT NULL DEFAULT 'running',
				result_json TEXT,
				started_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW(),
				completed_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX IF NOT EXISTS idx_executions_workflow_id ON workflow_executions (workflow_id);
			CREATE INDEX IF NOT EXISTS idx_executions_started_at ON workflow_executions (started_at DESC);
		`,
		3: `
			CREATE TABLE IF NOT EXISTS alert_logs (
				id TEXT PRIMARY KEY,
				execution_id TEXT REFERENCES workflow_executions(id) ON DELETE SET NULL,
				workflow_id TEXT NOT NULL,
				action_type TEXT NOT NULL,
				recipient TEXT NOT NULL DEFAULT '',
				message TEXT NOT NULL DEFAULT '',
				status TEXT NOT NULL DEFAULT 'pending',
				error_message TEXT,
				created_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE INDEX IF NOT EXISTS idx_alert_logs_created_at ON alert_logs (created_at DESC);
			CREATE INDEX IF NOT EXISTS idx_alert_logs_action_type ON alert_logs (action_type);
		`,
	}
}
