//go:build cgo

package graph

import (
	"fmt"
	"os"
	"path/filepath"

	kuzu "github.com/kuzudb/go-kuzu"
)

// KuzuStore persists graph snapshots in a KuzuDB database. It requires CGO
// because the go-kuzu driver wraps KuzuDB's C library. A snapshot saved and
// loaded back reconstructs an identical graph, so a persisted index can be
// queried by a later process without re-parsing the repository.
type KuzuStore struct {
	db   *kuzu.Database
	conn *kuzu.Connection
}

// NewKuzuStore creates a KuzuStore backed by an in-memory KuzuDB instance.
func NewKuzuStore() (*KuzuStore, error) {
	return openKuzu(":memory:")
}

// NewKuzuFileStore creates a KuzuStore backed by a file-based KuzuDB at the
// given directory path. KuzuDB creates the leaf directory itself.
func NewKuzuFileStore(dbPath string) (*KuzuStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("kuzu: create parent directory: %w", err)
	}
	return openKuzu(dbPath)
}

func openKuzu(path string) (*KuzuStore, error) {
	cfg := kuzu.DefaultSystemConfig()
	db, err := kuzu.OpenDatabase(path, cfg)
	if err != nil {
		return nil, fmt.Errorf("kuzu: open database: %w", err)
	}
	conn, err := kuzu.OpenConnection(db)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("kuzu: open connection: %w", err)
	}
	return &KuzuStore{db: db, conn: conn}, nil
}

// Close releases the KuzuDB connection and database.
func (s *KuzuStore) Close() error {
	if s.conn != nil {
		s.conn.Close()
	}
	if s.db != nil {
		s.db.Close()
	}
	return nil
}

// ---------- Schema ----------

// ddlStatements defines the Cypher DDL executed by InitSchema. Every edge
// endpoint (file path, entity ID, or the External sentinel) gets a Node row
// so one EDGE rel table can carry all three edge kinds losslessly.
var ddlStatements = []string{
	`CREATE NODE TABLE IF NOT EXISTS File(
		path STRING,
		language STRING,
		loc INT64,
		PRIMARY KEY(path)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Entity(
		id STRING,
		kind STRING,
		name STRING,
		file_path STRING,
		start_line INT64,
		end_line INT64,
		language STRING,
		parent_class STRING,
		signature STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Node(
		id STRING,
		PRIMARY KEY(id)
	)`,
	`CREATE NODE TABLE IF NOT EXISTS Diag(
		seq INT64,
		kind STRING,
		file_path STRING,
		subject STRING,
		detail STRING,
		PRIMARY KEY(seq)
	)`,
	`CREATE REL TABLE IF NOT EXISTS EDGE(FROM Node TO Node, kind STRING)`,
}

// InitSchema creates all node and relationship tables if they do not exist.
func (s *KuzuStore) InitSchema() error {
	for _, stmt := range ddlStatements {
		res, err := s.conn.Query(stmt)
		if err != nil {
			return fmt.Errorf("kuzu: init schema: %w", err)
		}
		res.Close()
	}
	return nil
}

// ---------- Save ----------

// SaveGraph writes the graph's snapshot into the database. The database is
// expected to be empty (a persisted index is replaced wholesale, never
// updated in place, matching the graph's build-once lifecycle).
func (s *KuzuStore) SaveGraph(g *Graph) error {
	snap := g.Snapshot()

	nodeIDs := make(map[string]bool)
	addNode := func(id string) error {
		if nodeIDs[id] {
			return nil
		}
		nodeIDs[id] = true
		return s.exec("CREATE (n:Node {id: $id})", map[string]any{"id": id})
	}

	for _, f := range snap.Files {
		if err := s.exec(
			"CREATE (f:File {path: $path, language: $lang, loc: $loc})",
			map[string]any{"path": f.Path, "lang": string(f.Language), "loc": int64(f.LOC)},
		); err != nil {
			return err
		}
		if err := addNode(f.Path); err != nil {
			return err
		}
	}

	for _, ent := range snap.Entities {
		if err := s.exec(
			`CREATE (e:Entity {
				id: $id, kind: $kind, name: $name, file_path: $fp,
				start_line: $sl, end_line: $el, language: $lang,
				parent_class: $pc, signature: $sig
			})`,
			map[string]any{
				"id": ent.ID, "kind": string(ent.Kind), "name": ent.Name,
				"fp": ent.FilePath, "sl": int64(ent.StartLine), "el": int64(ent.EndLine),
				"lang": string(ent.Language), "pc": ent.ParentClass, "sig": ent.Signature,
			},
		); err != nil {
			return err
		}
		if err := addNode(ent.ID); err != nil {
			return err
		}
	}

	if err := addNode(External); err != nil {
		return err
	}

	for _, e := range snap.Edges {
		if err := s.exec(
			`MATCH (a:Node {id: $src}), (b:Node {id: $dst})
			 CREATE (a)-[:EDGE {kind: $kind}]->(b)`,
			map[string]any{"src": e.FromID, "dst": e.ToID, "kind": string(e.Kind)},
		); err != nil {
			return err
		}
	}

	for i, d := range snap.Diagnostics {
		if err := s.exec(
			"CREATE (d:Diag {seq: $seq, kind: $kind, file_path: $fp, subject: $subj, detail: $detail})",
			map[string]any{
				"seq": int64(i), "kind": string(d.Kind), "fp": d.FilePath,
				"subj": d.Subject, "detail": d.Detail,
			},
		); err != nil {
			return err
		}
	}

	return nil
}

// ---------- Load ----------

// LoadGraph reads a previously saved snapshot and reconstructs the frozen
// graph, re-validating the edge invariant on the way in.
func (s *KuzuStore) LoadGraph() (*Graph, error) {
	snap := &Snapshot{}

	rows, err := s.query("MATCH (f:File) RETURN f.path, f.language, f.loc ORDER BY f.path", nil)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		snap.Files = append(snap.Files, FileRecord{
			Path:     toString(r[0]),
			Language: Language(toString(r[1])),
			LOC:      toInt(r[2]),
		})
	}

	rows, err = s.query(
		`MATCH (e:Entity)
		 RETURN e.id, e.kind, e.name, e.file_path, e.start_line, e.end_line,
		        e.language, e.parent_class, e.signature
		 ORDER BY e.file_path, e.start_line, e.id`, nil)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		snap.Entities = append(snap.Entities, Entity{
			ID:          toString(r[0]),
			Kind:        EntityKind(toString(r[1])),
			Name:        toString(r[2]),
			FilePath:    toString(r[3]),
			StartLine:   toInt(r[4]),
			EndLine:     toInt(r[5]),
			Language:    Language(toString(r[6])),
			ParentClass: toString(r[7]),
			Signature:   toString(r[8]),
		})
	}

	rows, err = s.query(
		`MATCH (a:Node)-[r:EDGE]->(b:Node)
		 RETURN a.id, b.id, r.kind ORDER BY r.kind, a.id, b.id`, nil)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		snap.Edges = append(snap.Edges, Edge{
			FromID: toString(r[0]),
			ToID:   toString(r[1]),
			Kind:   EdgeKind(toString(r[2])),
		})
	}

	rows, err = s.query(
		"MATCH (d:Diag) RETURN d.kind, d.file_path, d.subject, d.detail ORDER BY d.seq", nil)
	if err != nil {
		return nil, err
	}
	for _, r := range rows {
		snap.Diagnostics = append(snap.Diagnostics, Diagnostic{
			Kind:     DiagnosticKind(toString(r[0])),
			FilePath: toString(r[1]),
			Subject:  toString(r[2]),
			Detail:   toString(r[3]),
		})
	}

	return FromSnapshot(snap)
}

// ---------- Internal helpers ----------

// exec runs a parameterized Cypher statement that produces no result rows.
func (s *KuzuStore) exec(cypher string, params map[string]any) error {
	stmt, err := s.conn.Prepare(cypher)
	if err != nil {
		return fmt.Errorf("kuzu: prepare: %w", err)
	}
	defer stmt.Close()

	res, err := s.conn.Execute(stmt, params)
	if err != nil {
		return fmt.Errorf("kuzu: execute: %w", err)
	}
	res.Close()
	return nil
}

// query runs a parameterized Cypher statement and collects all result rows.
// Each row is a []any slice with values in column order.
func (s *KuzuStore) query(cypher string, params map[string]any) ([][]any, error) {
	var res *kuzu.QueryResult
	var err error

	if len(params) == 0 {
		res, err = s.conn.Query(cypher)
	} else {
		var stmt *kuzu.PreparedStatement
		stmt, err = s.conn.Prepare(cypher)
		if err != nil {
			return nil, fmt.Errorf("kuzu: prepare: %w", err)
		}
		defer stmt.Close()
		res, err = s.conn.Execute(stmt, params)
	}
	if err != nil {
		return nil, fmt.Errorf("kuzu: query: %w", err)
	}
	defer res.Close()

	var rows [][]any
	for res.HasNext() {
		tuple, err := res.Next()
		if err != nil {
			return nil, fmt.Errorf("kuzu: next: %w", err)
		}
		vals, err := tuple.GetAsSlice()
		if err != nil {
			return nil, fmt.Errorf("kuzu: row values: %w", err)
		}
		rows = append(rows, vals)
	}
	return rows, nil
}

// ---------- Type coercion helpers ----------
// KuzuDB returns typed Go values (int64, float64, bool, string).

func toString(v any) string {
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprintf("%v", v)
}

func toInt(v any) int {
	switch n := v.(type) {
	case int64:
		return int(n)
	case int:
		return n
	case int32:
		return int(n)
	case float64:
		return int(n)
	default:
		return 0
	}
}
