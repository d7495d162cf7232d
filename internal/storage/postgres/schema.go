// Package postgres provides the PostgreSQL implementation of the storage
// interfaces, including database-side vector search via pgvector.
package postgres

// Schema contains the SQL statements to create the database schema.
// All statements are idempotent so the schema can be applied on every
// startup. The vectors table uses a dimensionless vector column; rows of
// any one collection always share a dimension because the collection is
// replaced wholesale.
const Schema = `
-- Profiles table: the user corpus the matcher ranks against
CREATE TABLE IF NOT EXISTS profiles (
    id TEXT PRIMARY KEY,
    email TEXT,
    full_name TEXT NOT NULL,
    bio TEXT,
    skills JSONB,
    experience TEXT,
    education TEXT,
    technologies JSONB,
    role TEXT,
    languages JSONB,
    is_active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Projects table: the project corpus
CREATE TABLE IF NOT EXISTS projects (
    id TEXT PRIMARY KEY,
    title TEXT NOT NULL,
    description TEXT,
    technologies JSONB,
    roles JSONB,
    team_lead_id TEXT,
    status TEXT NOT NULL DEFAULT 'active',
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

-- Notifications table: match notifications delivered to users
CREATE TABLE IF NOT EXISTS notifications (
    id TEXT PRIMARY KEY,
    user_id TEXT NOT NULL,
    title TEXT NOT NULL,
    message TEXT NOT NULL,
    type TEXT NOT NULL,
    related_id TEXT,
    is_read BOOLEAN NOT NULL DEFAULT FALSE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    read_at TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_notifications_user ON notifications(user_id, created_at DESC);

-- Cache table: key/value entries with absolute expiry
CREATE TABLE IF NOT EXISTS cache (
    key TEXT PRIMARY KEY,
    value TEXT NOT NULL,
    expires_at TIMESTAMPTZ NOT NULL
);
`

// VectorSchema creates the embeddings table. Applied after the pgvector
// extension is enabled. The position column preserves insertion order so
// equal-distance results rank deterministically.
const VectorSchema = `
CREATE TABLE IF NOT EXISTS vectors (
    collection TEXT NOT NULL,
    entity_id TEXT NOT NULL,
    position INTEGER NOT NULL,
    embedding VECTOR NOT NULL,
    PRIMARY KEY (collection, entity_id)
);

CREATE INDEX IF NOT EXISTS idx_vectors_collection ON vectors(collection);
`
