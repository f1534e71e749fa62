package store

const schemaSQL = `
CREATE TABLE IF NOT EXISTS profiles (
    user_id              TEXT PRIMARY KEY,
    document             TEXT NOT NULL,
    legacy               INTEGER NOT NULL DEFAULT 0,
    updated_at           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_profiles_legacy ON profiles(legacy);
`
