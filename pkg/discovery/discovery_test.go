package discovery

import (
	"context"
	"path/filepath"
	"testing"

	bolt "go.etcd.io/bbolt"

	"github.com/loomrun/loom/pkg/ir"
	"github.com/loomrun/loom/pkg/registry"
)

func TestBuildNodes_FlattensNestedWrites(t *testing.T) {
	reg := registry.New()
	reg.MustRegister("http", `Interface:
- Writes: shared["response"]: dict
    - status: int
    - body: string
- Params: url: string
`, func() registry.Node { return nil })

	candidates := BuildNodes(reg)
	if len(candidates) != 1 {
		t.Fatalf("len(candidates) = %d, want 1", len(candidates))
	}
	c := candidates[0]
	if c.Kind != KindNode || c.Name != "http" {
		t.Errorf("candidate = %+v", c)
	}
	want := map[string]bool{"response.status": true, "response.body": true}
	if len(c.Paths) != 2 {
		t.Fatalf("Paths = %v, want 2 entries", c.Paths)
	}
	for _, p := range c.Paths {
		if !want[p] {
			t.Errorf("unexpected path %q", p)
		}
	}
}

func TestBuildWorkflows_IndexesNameDescriptionInputs(t *testing.T) {
	workflows := []*ir.Workflow{
		{Name: "fetch-report", Description: "pulls a weekly sales report", Inputs: []ir.InputSpec{{Name: "week"}}},
	}
	candidates := BuildWorkflows(workflows)
	if len(candidates) != 1 {
		t.Fatalf("len(candidates) = %d, want 1", len(candidates))
	}
	c := candidates[0]
	if c.Kind != KindWorkflow || c.Name != "fetch-report" || c.Paths[0] != "week" {
		t.Errorf("candidate = %+v", c)
	}
}

func TestQuery_RanksSubstringAndTermOverlapAboveUnrelated(t *testing.T) {
	candidates := []Candidate{
		{Kind: KindNode, Name: "http", Description: "makes an http request and reads the response"},
		{Kind: KindNode, Name: "shell", Description: "runs a shell command"},
		{Kind: KindNode, Name: "file", Description: "reads or writes a file on disk"},
	}

	results, err := Query(context.Background(), candidates, "read a file", Options{TopK: 2})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(results) == 0 || results[0].Name != "file" {
		t.Errorf("results = %+v, want \"file\" ranked first", results)
	}
}

type fakeReranker struct {
	seen []Candidate
}

func (r *fakeReranker) Rerank(ctx context.Context, query string, candidates []Candidate) ([]Candidate, error) {
	r.seen = candidates
	// reverse the order, to prove the hook's output is what Query returns
	out := make([]Candidate, len(candidates))
	for i, c := range candidates {
		out[len(candidates)-1-i] = c
	}
	return out, nil
}

func TestQuery_UsesRerankerOverTopN(t *testing.T) {
	candidates := []Candidate{
		{Kind: KindNode, Name: "a", Description: "shell command"},
		{Kind: KindNode, Name: "b", Description: "shell command"},
	}
	reranker := &fakeReranker{}

	results, err := Query(context.Background(), candidates, "shell command", Options{TopN: 2, Rerank: reranker})
	if err != nil {
		t.Fatalf("Query() error = %v", err)
	}
	if len(reranker.seen) != 2 {
		t.Fatalf("reranker saw %d candidates, want 2", len(reranker.seen))
	}
	if results[0].Name != reranker.seen[1].Name {
		t.Errorf("results = %+v, want the reranker's reversed order", results)
	}
}

func TestStore_SaveThenLoadRoundTrips(t *testing.T) {
	db, err := bolt.Open(filepath.Join(t.TempDir(), "discovery.db"), 0o600, nil)
	if err != nil {
		t.Fatalf("bolt.Open() error = %v", err)
	}
	defer db.Close()

	store, err := NewStore(db)
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}

	if _, ok, err := store.Load(); err != nil || ok {
		t.Fatalf("Load() before Save = %v, %v, want a miss", ok, err)
	}

	candidates := []Candidate{{Kind: KindNode, Name: "http"}}
	if err := store.Save(candidates); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	loaded, ok, err := store.Load()
	if err != nil || !ok {
		t.Fatalf("Load() after Save = %v, %v, want a hit", ok, err)
	}
	if len(loaded) != 1 || loaded[0].Name != "http" {
		t.Errorf("loaded = %+v", loaded)
	}
}
