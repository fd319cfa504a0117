package graphstore

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/insurance-graph/fraud-ring-backend/internal/fraud_detection/domain"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

const defaultBatchSize = 500

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

type Neo4jOptions struct {
	URI       string
	Username  string
	Password  string
	Database  string
	BatchSize int
}

// Neo4jStore runs Cypher over Bolt.
type Neo4jStore struct {
	driver    neo4j.DriverWithContext
	database  string
	batchSize int
}

func NewNeo4jStore(ctx context.Context, opt Neo4jOptions) (*Neo4jStore, error) {
	if opt.URI == "" {
		return nil, fmt.Errorf("NEO4J_URI is not set")
	}
	driver, err := neo4j.NewDriverWithContext(opt.URI, neo4j.BasicAuth(opt.Username, opt.Password, ""))
	if err != nil {
		return nil, fmt.Errorf("neo4j driver: %w", err)
	}
	if err := driver.VerifyConnectivity(ctx); err != nil {
		_ = driver.Close(ctx)
		return nil, fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	if opt.BatchSize <= 0 {
		opt.BatchSize = defaultBatchSize
	}
	return &Neo4jStore{driver: driver, database: opt.Database, batchSize: opt.BatchSize}, nil
}

func (s *Neo4jStore) session(ctx context.Context, mode neo4j.AccessMode) neo4j.SessionWithContext {
	return s.driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: mode, DatabaseName: s.database})
}

func (s *Neo4jStore) read(ctx context.Context, fn neo4j.ManagedTransactionWork) (any, error) {
	session := s.session(ctx, neo4j.AccessModeRead)
	defer session.Close(ctx)
	out, err := session.ExecuteRead(ctx, fn)
	return out, wrapErr(err)
}

func (s *Neo4jStore) write(ctx context.Context, fn neo4j.ManagedTransactionWork) (any, error) {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)
	out, err := session.ExecuteWrite(ctx, fn)
	return out, wrapErr(err)
}

func wrapErr(err error) error {
	if err == nil {
		return nil
	}
	if neo4j.IsConnectivityError(err) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}
	return err
}

func (s *Neo4jStore) Snapshot(ctx context.Context) (*domain.Graph, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		g := domain.NewGraph()

		res, err := tx.Run(ctx, `
			MATCH (n) WHERE n.id IS NOT NULL
			RETURN n.id AS id, labels(n) AS labels, properties(n) AS props`, nil)
		if err != nil {
			return nil, err
		}
		for res.Next(ctx) {
			rec := res.Record()
			id, _ := rec.Get("id")
			labels, _ := rec.Get("labels")
			props, _ := rec.Get("props")
			sid, ok := id.(string)
			if !ok {
				continue
			}
			g.AddNode(&domain.Node{ID: sid, Labels: toStrings(labels), Props: toAttrs(props)})
		}
		if err := res.Err(); err != nil {
			return nil, err
		}

		res, err = tx.Run(ctx, `
			MATCH (a)-[r]->(b) WHERE a.id IS NOT NULL AND b.id IS NOT NULL
			RETURN a.id AS from, b.id AS to, type(r) AS type, properties(r) AS props`, nil)
		if err != nil {
			return nil, err
		}
		for res.Next(ctx) {
			rec := res.Record()
			from, _ := rec.Get("from")
			to, _ := rec.Get("to")
			typ, _ := rec.Get("type")
			props, _ := rec.Get("props")
			f, _ := from.(string)
			t, _ := to.(string)
			rt, _ := typ.(string)
			g.AddEdge(&domain.Edge{From: f, To: t, Type: domain.RelType(rt), Props: toAttrs(props)})
		}
		return g, res.Err()
	})
	if err != nil {
		return nil, fmt.Errorf("snapshot: %w", err)
	}
	return out.(*domain.Graph), nil
}

func (s *Neo4jStore) Import(ctx context.Context, g *domain.Graph) error {
	nodeGroups := map[string][]map[string]any{}
	for _, n := range g.Nodes {
		for _, l := range n.Labels {
			if !identRe.MatchString(l) {
				return fmt.Errorf("import: invalid label %q", l)
			}
		}
		key := strings.Join(n.Labels, ":")
		row := cloneProps(n.Props)
		row[domain.PropID] = n.ID
		nodeGroups[key] = append(nodeGroups[key], row)
	}

	type edgeKey struct {
		rel      domain.RelType
		from, to string
	}
	edgeGroups := map[edgeKey][]map[string]any{}
	for _, e := range g.Edges {
		if !identRe.MatchString(string(e.Type)) {
			return fmt.Errorf("import: invalid relationship type %q", e.Type)
		}
		k := edgeKey{rel: e.Type, from: endpointLabel(g, e.From), to: endpointLabel(g, e.To)}
		edgeGroups[k] = append(edgeGroups[k], map[string]any{
			"from":  e.From,
			"to":    e.To,
			"props": map[string]any(cloneProps(e.Props)),
		})
	}

	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, key := range sortedKeys(nodeGroups) {
			cypher := fmt.Sprintf("UNWIND $rows AS row CREATE (n%s) SET n = row", labelExpr(strings.Split(key, ":")))
			if err := s.runBatches(ctx, tx, cypher, nodeGroups[key]); err != nil {
				return nil, err
			}
		}
		for k, rows := range edgeGroups {
			cypher := fmt.Sprintf(`
				UNWIND $rows AS row
				MATCH (a%s {id: row.from})
				MATCH (b%s {id: row.to})
				CREATE (a)-[r:%s]->(b)
				SET r = row.props`, labelExpr([]string{k.from}), labelExpr([]string{k.to}), k.rel)
			if err := s.runBatches(ctx, tx, cypher, rows); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	return nil
}

func (s *Neo4jStore) runBatches(ctx context.Context, tx neo4j.ManagedTransaction, cypher string, rows []map[string]any) error {
	for start := 0; start < len(rows); start += s.batchSize {
		end := min(start+s.batchSize, len(rows))
		batch := make([]any, 0, end-start)
		for _, r := range rows[start:end] {
			batch = append(batch, r)
		}
		res, err := tx.Run(ctx, cypher, map[string]any{"rows": batch})
		if err != nil {
			return err
		}
		if _, err := res.Consume(ctx); err != nil {
			return err
		}
	}
	return nil
}

// endpointLabel is the label used to match an endpoint; empty when the node is not in g.
func endpointLabel(g *domain.Graph, id string) string {
	if n, ok := g.Nodes[id]; ok {
		return n.PrimaryLabel()
	}
	return ""
}

func labelExpr(labels []string) string {
	var b strings.Builder
	for _, l := range labels {
		if l == "" {
			continue
		}
		b.WriteString(":")
		b.WriteString(l)
	}
	return b.String()
}

func sortedKeys[V any](m map[string]V) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (s *Neo4jStore) CreateIndexes(ctx context.Context) error {
	session := s.session(ctx, neo4j.AccessModeWrite)
	defer session.Close(ctx)
	for _, l := range domain.IndexedLabels {
		cypher := fmt.Sprintf("CREATE INDEX %s_id IF NOT EXISTS FOR (n:%s) ON (n.id)", strings.ToLower(l), l)
		res, err := session.Run(ctx, cypher, nil)
		if err != nil {
			return fmt.Errorf("create index on %s: %w", l, wrapErr(err))
		}
		if _, err := res.Consume(ctx); err != nil {
			return fmt.Errorf("create index on %s: %w", l, wrapErr(err))
		}
	}
	return nil
}

func (s *Neo4jStore) ClearAll(ctx context.Context) error {
	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, "MATCH (n) DETACH DELETE n", nil)
		if err != nil {
			return nil, err
		}
		return res.Consume(ctx)
	})
	if err != nil {
		return fmt.Errorf("clear all: %w", err)
	}
	return nil
}

func (s *Neo4jStore) ClearDetections(ctx context.Context) (domain.ClearStats, error) {
	out, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		var st domain.ClearStats
		counts := []struct {
			cypher string
			dst    *int
		}{
			{`MATCH (n) WHERE n.suspicious IS NOT NULL
			  REMOVE n.suspicious, n.suspicion_type, n.suspicion_score
			  RETURN count(n) AS c`, &st.Flagged},
			{`MATCH (n) WHERE n.degree_centrality IS NOT NULL
			  REMOVE n.degree_centrality
			  RETURN count(n) AS c`, &st.Centrality},
			{`MATCH ()-[r:SUSPICIOUS_RELATIONSHIP]->() DELETE r RETURN count(r) AS c`, &st.Relationships},
		}
		for _, q := range counts {
			n, err := single[int64](ctx, tx, q.cypher, nil, "c")
			if err != nil {
				return nil, err
			}
			*q.dst = int(n)
		}
		return st, nil
	})
	if err != nil {
		return domain.ClearStats{}, fmt.Errorf("clear detections: %w", err)
	}
	return out.(domain.ClearStats), nil
}

func (s *Neo4jStore) ApplyDetections(ctx context.Context, w domain.DetectionWrite) error {
	flags := map[string]any{}
	var flagIDs []string
	for _, f := range w.Flags {
		flags[f.NodeID] = map[string]any{"type": f.SuspicionType, "score": f.Score}
		flagIDs = append(flagIDs, f.NodeID)
	}
	links := make([]any, 0, len(w.Links))
	for _, l := range w.Links {
		links = append(links, map[string]any{"from": l.From, "to": l.To, "shared": l.SharedClaims})
	}
	degrees := map[string]any{}
	var degreeIDs []string
	for _, c := range w.Centrality {
		degrees[c.NodeID] = c.Degree
		degreeIDs = append(degreeIDs, c.NodeID)
	}

	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		steps := []struct {
			cypher string
			params map[string]any
		}{
			{`MATCH (n) WHERE n.id IN $ids AND coalesce(n.is_fraud, false) = false
			  WITH n, $flags[n.id] AS f
			  SET n.suspicious = true, n.suspicion_type = f.type, n.suspicion_score = f.score`,
				map[string]any{"ids": flagIDs, "flags": flags}},
			{`UNWIND $links AS l
			  MATCH (a {id: l.from})
			  MATCH (b {id: l.to})
			  MERGE (a)-[r:SUSPICIOUS_RELATIONSHIP]->(b)
			  SET r.shared_claims = l.shared`,
				map[string]any{"links": links}},
			{`MATCH (n) WHERE n.id IN $ids AND coalesce(n.is_fraud, false) = false
			  SET n.degree_centrality = $degrees[n.id]`,
				map[string]any{"ids": degreeIDs, "degrees": degrees}},
		}
		for _, st := range steps {
			res, err := tx.Run(ctx, st.cypher, st.params)
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("apply detections: %w", err)
	}
	return nil
}

func (s *Neo4jStore) GetNode(ctx context.Context, id string) (*domain.Node, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, `
			MATCH (n {id: $id})
			RETURN labels(n) AS labels, properties(n) AS props
			LIMIT 1`, map[string]any{"id": id})
		if err != nil {
			return nil, err
		}
		if !res.Next(ctx) {
			if err := res.Err(); err != nil {
				return nil, err
			}
			return nil, nil
		}
		rec := res.Record()
		labels, _ := rec.Get("labels")
		props, _ := rec.Get("props")
		return &domain.Node{ID: id, Labels: toStrings(labels), Props: toAttrs(props)}, nil
	})
	if err != nil {
		return nil, fmt.Errorf("get node %s: %w", id, err)
	}
	n, _ := out.(*domain.Node)
	if n == nil {
		return nil, fmt.Errorf("%s: %w", id, domain.ErrNodeNotFound)
	}
	return n, nil
}

func (s *Neo4jStore) NodeExists(ctx context.Context, id string) (bool, error) {
	out, err := s.read(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return single[bool](ctx, tx, "MATCH (n {id: $id}) RETURN count(n) > 0 AS ok", map[string]any{"id": id}, "ok")
	})
	if err != nil {
		return false, fmt.Errorf("node exists %s: %w", id, err)
	}
	return out.(bool), nil
}

func (s *Neo4jStore) CreateClaim(ctx context.Context, d domain.ClaimDraft) error {
	if d.Claim == nil {
		return fmt.Errorf("create claim: draft has no claim")
	}
	nodes := append([]*domain.Node{d.Claim}, d.NewNodes...)
	for _, n := range nodes {
		for _, l := range n.Labels {
			if !identRe.MatchString(l) {
				return fmt.Errorf("create claim: invalid label %q", l)
			}
		}
	}
	for _, e := range d.Edges {
		if !identRe.MatchString(string(e.Type)) {
			return fmt.Errorf("create claim: invalid relationship type %q", e.Type)
		}
	}

	_, err := s.write(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		for _, n := range nodes {
			props := cloneProps(n.Props)
			props[domain.PropID] = n.ID
			res, err := tx.Run(ctx, fmt.Sprintf("CREATE (n%s) SET n = $props", labelExpr(n.Labels)),
				map[string]any{"props": map[string]any(props)})
			if err != nil {
				return nil, err
			}
			if _, err := res.Consume(ctx); err != nil {
				return nil, err
			}
		}
		for _, e := range d.Edges {
			created, err := single[int64](ctx, tx, fmt.Sprintf(`
				MATCH (a {id: $from})
				MATCH (b {id: $to})
				CREATE (a)-[r:%s]->(b)
				SET r = $props
				RETURN count(r) AS c`, e.Type),
				map[string]any{"from": e.From, "to": e.To, "props": map[string]any(cloneProps(e.Props))}, "c")
			if err != nil {
				return nil, err
			}
			if created == 0 {
				return nil, fmt.Errorf("%s %s->%s: %w", e.Type, e.From, e.To, domain.ErrNodeNotFound)
			}
		}
		return nil, nil
	})
	if err != nil {
		return fmt.Errorf("create claim %s: %w", d.Claim.ID, err)
	}
	return nil
}

func (s *Neo4jStore) Ping(ctx context.Context) error {
	return wrapErr(s.driver.VerifyConnectivity(ctx))
}

func (s *Neo4jStore) Close(ctx context.Context) error {
	return s.driver.Close(ctx)
}

// single runs a query expected to return one row and reads key from it.
func single[T any](ctx context.Context, tx neo4j.ManagedTransaction, cypher string, params map[string]any, key string) (T, error) {
	var zero T
	res, err := tx.Run(ctx, cypher, params)
	if err != nil {
		return zero, err
	}
	rec, err := res.Single(ctx)
	if err != nil {
		return zero, err
	}
	v, _ := rec.Get(key)
	t, ok := v.(T)
	if !ok {
		return zero, fmt.Errorf("unexpected %T for %s", v, key)
	}
	return t, nil
}

func toStrings(v any) []string {
	list, _ := v.([]any)
	out := make([]string, 0, len(list))
	for _, x := range list {
		if s, ok := x.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func toAttrs(v any) domain.Attrs {
	m, _ := v.(map[string]any)
	out := make(domain.Attrs, len(m))
	for k, x := range m {
		out[k] = x
	}
	return out
}
