package rtstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

// subjectChanged is the NATS subject carrying change notices; one
// message per committed write, payload is the collection name.
const subjectChanged = "rtstore.changed"

// Postgres is the production Store: documents persist in a jsonb table
// and every committed write publishes a change notice on NATS. Each
// subscriber reloads the full snapshot from Postgres on every notice,
// so all app instances converge on the same view regardless of which
// instance wrote.
type Postgres struct {
	db  *pgxpool.Pool
	nc  *nats.Conn
	log *zap.Logger
}

const schemaDocs = `
CREATE TABLE IF NOT EXISTS rtstore_docs (
	collection text NOT NULL,
	key        text NOT NULL,
	seq        bigserial,
	doc        jsonb NOT NULL,
	PRIMARY KEY (collection, key)
);`

func NewPostgres(ctx context.Context, db *pgxpool.Pool, nc *nats.Conn, log *zap.Logger) (*Postgres, error) {
	if _, err := db.Exec(ctx, schemaDocs); err != nil {
		return nil, fmt.Errorf("ensure rtstore schema: %w", err)
	}
	return &Postgres{db: db, nc: nc, log: log}, nil
}

var _ Store = (*Postgres)(nil)

// ── Writes ─────────────────────────────────────────────────────────────

func (s *Postgres) Append(ctx context.Context, path string, doc any) (string, error) {
	segs, err := splitPath(path)
	if err != nil {
		return "", err
	}
	b, err := json.Marshal(doc)
	if err != nil {
		return "", err
	}
	key := uuid.NewString()

	if len(segs) == 1 {
		_, err = s.db.Exec(ctx,
			`INSERT INTO rtstore_docs (collection, key, doc) VALUES ($1,$2,$3)`,
			segs[0], key, b)
	} else {
		jsonPath := append(append([]string{}, segs[2:]...), key)
		var ct int64
		ct, err = s.setPath(ctx, segs[0], segs[1], jsonPath, b, false)
		if err == nil && ct == 0 {
			return "", ErrNotFound
		}
	}
	if err != nil {
		return "", err
	}
	s.publish(segs[0])
	return key, nil
}

func (s *Postgres) Remove(ctx context.Context, path string) error {
	segs, err := splitPath(path)
	if err != nil {
		return err
	}

	switch {
	case len(segs) == 1:
		_, err = s.db.Exec(ctx, `DELETE FROM rtstore_docs WHERE collection=$1`, segs[0])
	case len(segs) == 2:
		_, err = s.db.Exec(ctx,
			`DELETE FROM rtstore_docs WHERE collection=$1 AND key=$2`, segs[0], segs[1])
	default:
		_, err = s.patchNoValue(ctx, segs[0], segs[1], `doc #- $3`, segs[2:])
	}
	if err != nil {
		return err
	}
	s.publish(segs[0])
	return nil
}

func (s *Postgres) UpdatePaths(ctx context.Context, updates map[string]any) error {
	touched := make(map[string]bool)
	for path, partial := range updates {
		segs, err := splitPath(path)
		if err != nil || len(segs) < 2 {
			return ErrInvalidPath
		}
		b, err := json.Marshal(partial)
		if err != nil {
			return err
		}

		if len(segs) == 2 {
			// Upsert with shallow merge at the document root.
			_, err = s.db.Exec(ctx, `
INSERT INTO rtstore_docs (collection, key, doc) VALUES ($1,$2,$3)
ON CONFLICT (collection, key) DO UPDATE SET doc = rtstore_docs.doc || EXCLUDED.doc`,
				segs[0], segs[1], b)
		} else {
			_, err = s.setPath(ctx, segs[0], segs[1], segs[2:], b, true)
		}
		if err != nil {
			return err
		}
		touched[segs[0]] = true
	}
	for c := range touched {
		s.publish(c)
	}
	return nil
}

// setPath writes value at jsonPath inside one document. jsonb_set is a
// silent no-op when any parent step of the path is missing, so the
// generated expression first materializes each parent level with an
// empty object; without that, the first history append to a user whose
// doc has no history field would be dropped. With merge set the final
// step is an object merge instead of a replace.
func (s *Postgres) setPath(ctx context.Context, collection, key string, jsonPath []string, value []byte, merge bool) (int64, error) {
	expr, paths := setDocExpr(jsonPath, merge, 3)
	args := make([]any, 0, len(paths)+3)
	args = append(args, collection, key)
	for _, p := range paths {
		args = append(args, p)
	}
	args = append(args, value)

	ct, err := s.db.Exec(ctx,
		`UPDATE rtstore_docs SET doc = `+expr+` WHERE collection=$1 AND key=$2`, args...)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

// setDocExpr builds the jsonb expression replacing doc: one jsonb_set
// per parent prefix seeding missing levels via coalesce, then the
// write at the full path. Returns the expression and the path arguments
// in placeholder order, starting at $firstArg; the value placeholder
// follows the last path argument.
func setDocExpr(jsonPath []string, merge bool, firstArg int) (string, [][]string) {
	expr := "doc"
	paths := make([][]string, 0, len(jsonPath))
	arg := firstArg
	for i := 1; i < len(jsonPath); i++ {
		expr = fmt.Sprintf("jsonb_set(%s, $%d, coalesce(doc #> $%d, '{}'::jsonb), true)", expr, arg, arg)
		paths = append(paths, jsonPath[:i:i])
		arg++
	}
	valExpr := fmt.Sprintf("$%d::jsonb", arg+1)
	if merge {
		valExpr = fmt.Sprintf("coalesce(doc #> $%d, '{}'::jsonb) || $%d::jsonb", arg, arg+1)
	}
	expr = fmt.Sprintf("jsonb_set(%s, $%d, %s, true)", expr, arg, valExpr)
	paths = append(paths, jsonPath)
	return expr, paths
}

func (s *Postgres) patchNoValue(ctx context.Context, collection, key, expr string, jsonPath []string) (int64, error) {
	ct, err := s.db.Exec(ctx,
		`UPDATE rtstore_docs SET doc = `+expr+` WHERE collection=$1 AND key=$2`,
		collection, key, jsonPath)
	if err != nil {
		return 0, err
	}
	return ct.RowsAffected(), nil
}

// ── Reads / subscriptions ──────────────────────────────────────────────

func (s *Postgres) Snapshot(ctx context.Context, collection string) (Snapshot, error) {
	rows, err := s.db.Query(ctx,
		`SELECT key, doc FROM rtstore_docs WHERE collection=$1 ORDER BY seq`, collection)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snap Snapshot
	for rows.Next() {
		var d Doc
		if err := rows.Scan(&d.Key, &d.Data); err != nil {
			return nil, err
		}
		snap = append(snap, d)
	}
	return snap, rows.Err()
}

// Subscribe delivers the current snapshot, then reloads and redelivers
// on every change notice. NATS dispatches one subscription's messages
// sequentially, which gives the serialized-callback guarantee.
func (s *Postgres) Subscribe(collection string, cb Callback) (func(), error) {
	subject := subjectChanged + "." + collection
	sub, err := s.nc.Subscribe(subject, func(_ *nats.Msg) {
		s.reload(collection, cb)
	})
	if err != nil {
		return nil, err
	}

	s.reload(collection, cb)

	return func() { _ = sub.Unsubscribe() }, nil
}

func (s *Postgres) Close() {}

func (s *Postgres) reload(collection string, cb Callback) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	snap, err := s.Snapshot(ctx, collection)
	if err != nil {
		s.log.Warn("rtstore: snapshot reload failed",
			zap.String("collection", collection), zap.Error(err))
		return
	}
	cb(snap)
}

func (s *Postgres) publish(collection string) {
	if err := s.nc.Publish(subjectChanged+"."+collection, nil); err != nil {
		s.log.Warn("rtstore: change publish failed",
			zap.String("collection", collection), zap.Error(err))
	}
}
