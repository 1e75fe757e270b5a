package postgresql

func migrations() map[int]string {
	return map[int]string{
		1: `
			CREATE TABLE workflow_definitions (
				id VARCHAR(255) PRIMARY KEY,
				name VARCHAR(255) NOT NULL,
				owner VARCHAR(255),
				stages JSONB NOT NULL DEFAULT '[]',
				created_at TIMESTAMP WITH TIME ZONE NOT NULL,
				updated_at TIMESTAMP WITH TIME ZONE NOT NULL,
				deleted_at TIMESTAMP WITH TIME ZONE
			);

			CREATE INDEX idx_workflow_definitions_owner ON workflow_definitions(owner);
			CREATE INDEX idx_workflow_definitions_created_at ON workflow_definitions(created_at);
			CREATE INDEX idx_workflow_definitions_deleted_at ON workflow_definitions(deleted_at);
		`,
	}
}
