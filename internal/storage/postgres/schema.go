package postgres

// Schema contains the SQL statements to create the database schema.
// All statements are idempotent.
const Schema = `
-- Memories table: tenant-scoped knowledge records.
CREATE TABLE IF NOT EXISTS memories (
    id TEXT PRIMARY KEY,
    organization_id TEXT NOT NULL,
    user_id TEXT,
    content TEXT NOT NULL,
    content_embedding BYTEA,
    memory_type TEXT NOT NULL,
    importance_score REAL NOT NULL DEFAULT 0.5,
    metadata JSONB,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_memories_org ON memories(organization_id);
CREATE INDEX IF NOT EXISTS idx_memories_org_user ON memories(organization_id, user_id);
CREATE INDEX IF NOT EXISTS idx_memories_org_type ON memories(organization_id, memory_type);

-- Derivation edges: summary -> source lineage.
CREATE TABLE IF NOT EXISTS memory_relationships (
    id TEXT PRIMARY KEY,
    organization_id TEXT NOT NULL,
    from_id TEXT NOT NULL,
    to_id TEXT NOT NULL,
    relationship_type TEXT NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_relationships_org_from ON memory_relationships(organization_id, from_id);

-- Billing state read by the config resolver.
CREATE TABLE IF NOT EXISTS subscriptions (
    id TEXT PRIMARY KEY,
    organization_id TEXT NOT NULL UNIQUE,
    subscription_plan_id TEXT NOT NULL,
    status TEXT NOT NULL DEFAULT 'active',
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS subscription_plans (
    id TEXT PRIMARY KEY,
    name TEXT NOT NULL,
    features JSONB
);

-- Seed the standard tiers. Deployments can adjust limits per plan.
INSERT INTO subscription_plans (id, name, features) VALUES
    ('plan:free', 'free', '{"enable_memory_summarization": true, "max_memories_per_summary": 10, "min_memories_for_summary": 2, "similarity_threshold": 0.8, "max_summary_chars": 500}'),
    ('plan:pro', 'pro', '{"enable_memory_summarization": true, "max_memories_per_summary": 25, "min_memories_for_summary": 2, "similarity_threshold": 0.75, "max_summary_chars": 1000}'),
    ('plan:enterprise', 'enterprise', '{"enable_memory_summarization": true, "max_memories_per_summary": 50, "min_memories_for_summary": 2, "similarity_threshold": 0.7, "max_summary_chars": 2000}')
ON CONFLICT (id) DO NOTHING;

-- Recurring summarization intent, consumed by the external dispatcher.
CREATE TABLE IF NOT EXISTS scheduled_jobs (
    id TEXT PRIMARY KEY,
    organization_id TEXT NOT NULL,
    job_type TEXT NOT NULL,
    interval_hours INTEGER NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_scheduled_jobs_org ON scheduled_jobs(organization_id);
`

// MigrationPgvector adds the vector column for embedding storage. Applied
// only when the vector extension is available; safe to run multiple times.
const MigrationPgvector = `
DO $$
BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM information_schema.columns
        WHERE table_name = 'memories' AND column_name = 'content_embedding_vec'
    ) THEN
        ALTER TABLE memories ADD COLUMN content_embedding_vec vector;
    END IF;
END
$$;
`
