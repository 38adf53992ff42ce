package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflow_rules (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				trigger_type VARCHAR(50) NOT NULL,
				conditions JSONB NOT NULL DEFAULT '[]',
				actions JSONB NOT NULL DEFAULT '[]',
				is_active BOOLEAN NOT NULL DEFAULT true,
				created_by VARCHAR(255) NOT NULL DEFAULT '',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflow_rules_trigger_active ON workflow_rules(trigger_type, is_active);
			CREATE INDEX idx_workflow_rules_created_at ON workflow_rules(created_at);

			CREATE TABLE workflow_executions (
				id VARCHAR(255) PRIMARY KEY,
				rule_id VARCHAR(255) NOT NULL REFERENCES workflow_rules(id) ON DELETE CASCADE,
				status VARCHAR(20) NOT NULL CHECK (status IN ('PENDING', 'RUNNING', 'COMPLETED', 'FAILED', 'CANCELLED')),
				input JSONB NOT NULL DEFAULT '{}',
				output JSONB,
				error TEXT NOT NULL DEFAULT '',
				retry_of VARCHAR(255),
				executed_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL
			);

			CREATE INDEX idx_workflow_executions_rule_id ON workflow_executions(rule_id);
			CREATE INDEX idx_workflow_executions_status ON workflow_executions(status);
			CREATE INDEX idx_workflow_executions_executed_at ON workflow_executions(executed_at);
		`,
		2: `
			-- Status columns written by UPDATE_STATUS. The tables belong to the
			-- recruiting platform; they are only created when missing.
			CREATE TABLE IF NOT EXISTS applications (
				id VARCHAR(255) PRIMARY KEY,
				status VARCHAR(100) NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS candidates (
				id VARCHAR(255) PRIMARY KEY,
				status VARCHAR(100) NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);

			CREATE TABLE IF NOT EXISTS jobs (
				id VARCHAR(255) PRIMARY KEY,
				status VARCHAR(100) NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL DEFAULT NOW()
			);
		`,
	}
}
