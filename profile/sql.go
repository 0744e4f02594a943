package profile

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"

	"github.com/rushteam/scoutmatch/core"
)

// 支持的 SQL 方言（同时也是 database/sql 的驱动名）
const (
	DialectSQLite   = "sqlite"
	DialectPostgres = "postgres"
)

//go:embed sql/schema.sql
var schemaFS embed.FS

// SQLSource 从 profiles 表读取画像。
//
// attributes / stats / preferences 列以 JSON 文本存储；ListByRole 按 id 升序返回。
type SQLSource struct {
	db      *sql.DB
	dialect string
}

// OpenSQLSource 打开数据库并确保表结构存在
func OpenSQLSource(ctx context.Context, dialect, dsn string) (*SQLSource, error) {
	if dialect != DialectSQLite && dialect != DialectPostgres {
		return nil, core.NewDomainError(core.ModuleProfile, core.ErrorCodeNotSupported, "profile: unsupported sql dialect "+dialect)
	}
	db, err := sql.Open(dialect, dsn)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleProfile, core.ErrorCodeUnavailable, "profile: open "+dialect, err)
	}
	if dialect == DialectSQLite {
		// SQLite 单写者，限制连接数避免 SQLITE_BUSY
		db.SetMaxOpenConns(1)
	}
	s := &SQLSource{db: db, dialect: dialect}
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLSource 使用已打开的 *sql.DB（不执行建表）
func NewSQLSource(db *sql.DB, dialect string) *SQLSource {
	return &SQLSource{db: db, dialect: dialect}
}

func (s *SQLSource) Name() string { return "sql:" + s.dialect }

// Migrate 执行内置建表语句（幂等）
func (s *SQLSource) Migrate(ctx context.Context) error {
	ddl, err := schemaFS.ReadFile("sql/schema.sql")
	if err != nil {
		return fmt.Errorf("read schema: %w", err)
	}
	for _, stmt := range strings.Split(string(ddl), ";") {
		if strings.TrimSpace(stmt) == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return core.WrapDomainError(core.ModuleProfile, core.ErrorCodeUnavailable, "profile: migrate", err)
		}
	}
	return nil
}

// placeholder 返回第 n 个（从 1 开始）参数占位符
func (s *SQLSource) placeholder(n int) string {
	if s.dialect == DialectPostgres {
		return fmt.Sprintf("$%d", n)
	}
	return "?"
}

const selectColumns = "id, role, full_name, attributes, stats, preferences, updated_at"

func (s *SQLSource) Get(ctx context.Context, id string) (*core.Profile, error) {
	q := "SELECT " + selectColumns + " FROM profiles WHERE id = " + s.placeholder(1)
	p, err := scanProfile(s.db.QueryRowContext(ctx, q, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, core.ErrProfileNotFound
	}
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleProfile, core.ErrorCodeUnavailable, "profile: get "+id, err)
	}
	return p, nil
}

func (s *SQLSource) ListByRole(ctx context.Context, role core.Role, excludeID string) ([]*core.Profile, error) {
	q := "SELECT " + selectColumns + " FROM profiles WHERE role = " + s.placeholder(1) +
		" AND id <> " + s.placeholder(2) + " ORDER BY id"
	rows, err := s.db.QueryContext(ctx, q, string(role), excludeID)
	if err != nil {
		return nil, core.WrapDomainError(core.ModuleProfile, core.ErrorCodeUnavailable, "profile: list "+string(role), err)
	}
	defer rows.Close()

	out := make([]*core.Profile, 0)
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, core.WrapDomainError(core.ModuleProfile, core.ErrorCodeInternalError, "profile: scan", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, core.WrapDomainError(core.ModuleProfile, core.ErrorCodeUnavailable, "profile: list "+string(role), err)
	}
	return out, nil
}

// Put 导入画像（按 id 覆盖），用于演示数据与训练数据导入
func (s *SQLSource) Put(ctx context.Context, profiles ...*core.Profile) error {
	q := "INSERT INTO profiles (id, role, full_name, attributes, stats, preferences, updated_at) VALUES (" +
		s.placeholder(1) + ", " + s.placeholder(2) + ", " + s.placeholder(3) + ", " + s.placeholder(4) + ", " +
		s.placeholder(5) + ", " + s.placeholder(6) + ", " + s.placeholder(7) + ") " +
		"ON CONFLICT (id) DO UPDATE SET role = excluded.role, full_name = excluded.full_name, " +
		"attributes = excluded.attributes, stats = excluded.stats, preferences = excluded.preferences, updated_at = excluded.updated_at"

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return core.WrapDomainError(core.ModuleProfile, core.ErrorCodeUnavailable, "profile: begin", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, p := range profiles {
		attrs, err := marshalJSON(p.Attributes)
		if err != nil {
			return err
		}
		stats, err := marshalJSON(p.Stats)
		if err != nil {
			return err
		}
		prefs, err := marshalJSON(p.Preferences)
		if err != nil {
			return err
		}
		updated := p.UpdateTime
		if updated.IsZero() {
			updated = time.Now()
		}
		if _, err := tx.ExecContext(ctx, q, p.ID, string(p.Role), p.Name, attrs, stats, prefs, updated.UTC()); err != nil {
			return core.WrapDomainError(core.ModuleProfile, core.ErrorCodeUnavailable, "profile: put "+p.ID, err)
		}
	}
	return tx.Commit()
}

func (s *SQLSource) Close() error { return s.db.Close() }

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProfile(row rowScanner) (*core.Profile, error) {
	var (
		p                   core.Profile
		role                string
		attrs, stats, prefs string
		updated             any
	)
	if err := row.Scan(&p.ID, &role, &p.Name, &attrs, &stats, &prefs, &updated); err != nil {
		return nil, err
	}
	p.Role = core.Role(role)
	p.UpdateTime = parseTime(updated)
	if err := unmarshalJSON(attrs, &p.Attributes); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(stats, &p.Stats); err != nil {
		return nil, err
	}
	if err := unmarshalJSON(prefs, &p.Preferences); err != nil {
		return nil, err
	}
	p.Features = make(map[string]float64)
	return &p, nil
}

// parseTime 兼容驱动返回 time.Time / 字符串 / []byte 的差异
func parseTime(v any) time.Time {
	switch t := v.(type) {
	case time.Time:
		return t
	case []byte:
		return parseTime(string(t))
	case string:
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
			if parsed, err := time.Parse(layout, t); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}

func marshalJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	if string(b) == "null" {
		return "{}", nil
	}
	return string(b), nil
}

func unmarshalJSON[T any](s string, out *T) error {
	if s == "" {
		return nil
	}
	return json.Unmarshal([]byte(s), out)
}

var _ core.ProfileSource = (*SQLSource)(nil)
