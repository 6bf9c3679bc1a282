package store

// migration represents a single schema migration.
type migration struct {
	Version int
	Name    string
	SQL     string
}

// migrations is the ordered list of all schema migrations.
var migrations = []migration{
	{
		Version: 1,
		Name:    "create turns",
		SQL: `
			CREATE TABLE turns (
				id          INTEGER PRIMARY KEY AUTOINCREMENT,
				thread_id   TEXT NOT NULL DEFAULT '',
				mode        TEXT NOT NULL,
				status      TEXT NOT NULL,
				error       TEXT NOT NULL DEFAULT '',
				bytes       INTEGER NOT NULL DEFAULT 0,
				files       INTEGER NOT NULL DEFAULT 0,
				duration_ms INTEGER NOT NULL DEFAULT 0,
				created_at  TEXT NOT NULL DEFAULT (datetime('now'))
			);

			CREATE INDEX idx_turns_thread ON turns (thread_id, id);
			CREATE INDEX idx_turns_created ON turns (created_at);
		`,
	},
}
