package runlog

const schema = `
CREATE TABLE IF NOT EXISTS action_runs (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    run_id TEXT NOT NULL,
    unit TEXT NOT NULL,
    mode TEXT NOT NULL DEFAULT '',
    action TEXT NOT NULL,
    outcome TEXT NOT NULL,
    detail TEXT NOT NULL DEFAULT '',
    started_at TEXT NOT NULL,
    finished_at TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_action_runs_unit ON action_runs(unit, id);
CREATE INDEX IF NOT EXISTS idx_action_runs_run ON action_runs(run_id);
`
