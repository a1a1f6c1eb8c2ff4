package repository

import (
    "context"
    "database/sql"
    "errors"
    "strings"
    "time"
)

// MySQLKV persists booking state in the booking_state table:
//
//	CREATE TABLE booking_state (
//	    state_key   VARCHAR(255) NOT NULL PRIMARY KEY,
//	    state_value TEXT         NOT NULL,
//	    updated_at  DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
//	);
//
// Session scoping is part of the key, so a prefix scan on state_key covers
// one session.  With a non-zero ttl, rows whose updated_at is older than
// ttl read as absent and PurgeExpired deletes them.
type MySQLKV struct {
    db  *sql.DB
    ttl time.Duration
}

// NewMySQLKV returns a MySQLKV bound to the provided database.  A ttl of
// zero keeps rows until they are deleted.
func NewMySQLKV(db *sql.DB, ttl time.Duration) *MySQLKV { return &MySQLKV{db: db, ttl: ttl} }

// ttlSeconds is the row lifetime in whole seconds, rounded up; 0 disables
// expiry.
func (r *MySQLKV) ttlSeconds() int64 {
    if r.ttl <= 0 {
        return 0
    }
    return int64((r.ttl + time.Second - 1) / time.Second)
}

// liveClause narrows a query to unexpired rows.  It returns the SQL to
// append and its arguments.
func (r *MySQLKV) liveClause() (string, []interface{}) {
    secs := r.ttlSeconds()
    if secs == 0 {
        return "", nil
    }
    return " AND updated_at > NOW() - INTERVAL ? SECOND", []interface{}{secs}
}

// EnsureSchema creates the booking_state table when it does not exist.
func (r *MySQLKV) EnsureSchema(ctx context.Context) error {
    const ddl = `CREATE TABLE IF NOT EXISTS booking_state (
        state_key   VARCHAR(255) NOT NULL PRIMARY KEY,
        state_value TEXT         NOT NULL,
        updated_at  DATETIME     NOT NULL DEFAULT CURRENT_TIMESTAMP ON UPDATE CURRENT_TIMESTAMP
    ) CHARACTER SET utf8mb4`
    _, err := r.db.ExecContext(ctx, ddl)
    return err
}

func (r *MySQLKV) Set(ctx context.Context, key, value string) error {
    const q = `INSERT INTO booking_state (state_key, state_value) VALUES (?, ?)
               ON DUPLICATE KEY UPDATE state_value = VALUES(state_value), updated_at = CURRENT_TIMESTAMP`
    _, err := r.db.ExecContext(ctx, q, key, value)
    return err
}

func (r *MySQLKV) Get(ctx context.Context, key string) (string, error) {
    live, args := r.liveClause()
    var v string
    err := r.db.QueryRowContext(ctx,
        `SELECT state_value FROM booking_state WHERE state_key = ?`+live,
        append([]interface{}{key}, args...)...,
    ).Scan(&v)
    if errors.Is(err, sql.ErrNoRows) {
        return "", ErrKeyNotFound
    }
    return v, err
}

func (r *MySQLKV) Delete(ctx context.Context, keys ...string) error {
    if len(keys) == 0 {
        return nil
    }
    placeholders := strings.TrimSuffix(strings.Repeat("?,", len(keys)), ",")
    args := make([]interface{}, 0, len(keys))
    for _, k := range keys {
        args = append(args, k)
    }
    _, err := r.db.ExecContext(ctx, `DELETE FROM booking_state WHERE state_key IN (`+placeholders+`)`, args...)
    return err
}

// Keys lists keys beginning with prefix.  LIKE wildcards inside the prefix
// are escaped so session ids and form names match literally.
func (r *MySQLKV) Keys(ctx context.Context, prefix string) ([]string, error) {
    live, args := r.liveClause()
    rows, err := r.db.QueryContext(ctx,
        `SELECT state_key FROM booking_state WHERE state_key LIKE ? ESCAPE '!'`+live+` ORDER BY state_key`,
        append([]interface{}{escapeLike(prefix) + "%"}, args...)...,
    )
    if err != nil {
        return nil, err
    }
    defer rows.Close()
    var out []string
    for rows.Next() {
        var k string
        if err := rows.Scan(&k); err != nil {
            return nil, err
        }
        out = append(out, k)
    }
    return out, rows.Err()
}

// PurgeExpired deletes rows older than the ttl and reports how many went.
// It is a no-op without a ttl.
func (r *MySQLKV) PurgeExpired(ctx context.Context) (int64, error) {
    secs := r.ttlSeconds()
    if secs == 0 {
        return 0, nil
    }
    res, err := r.db.ExecContext(ctx, `DELETE FROM booking_state WHERE updated_at <= NOW() - INTERVAL ? SECOND`, secs)
    if err != nil {
        return 0, err
    }
    return res.RowsAffected()
}

func (r *MySQLKV) Probe(ctx context.Context) error {
    if r.db == nil {
        return ErrBackendUnavailable
    }
    if err := r.Set(ctx, probeKey, probeKey); err != nil {
        return err
    }
    return r.Delete(ctx, probeKey)
}

func escapeLike(s string) string {
    r := strings.NewReplacer("!", "!!", "%", "!%", "_", "!_")
    return r.Replace(s)
}
