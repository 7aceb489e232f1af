package bankcache

const schema = `
CREATE TABLE IF NOT EXISTS search_results (
    key        TEXT PRIMARY KEY,
    ids_json   TEXT NOT NULL,
    cached_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS questions (
    id         INTEGER PRIMARY KEY,
    text       TEXT NOT NULL,
    paths_json TEXT NOT NULL,
    cached_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_search_results_cached_at ON search_results (cached_at);
CREATE INDEX IF NOT EXISTS idx_questions_cached_at ON questions (cached_at);
`
