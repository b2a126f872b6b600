package discovery

import "context"

// Reranker is the optional LLM-assisted rerank hook (spec.md §4.13): given
// the query and the top-N term-overlap matches, it may reorder them with
// whatever richer judgment an LLM call can offer. No concrete provider is
// wired here — supplying one is the caller's job, the same way
// engine.RepairFunc is a hook the engine never constructs itself.
type Reranker interface {
	Rerank(ctx context.Context, query string, candidates []Candidate) ([]Candidate, error)
}

// Options controls one Query call.
type Options struct {
	// TopN bounds how many term-overlap matches are handed to Reranker,
	// if one is set. Zero means no cap (every match is reranked).
	TopN int
	// TopK bounds how many candidates Query returns, after any reranking.
	TopK int
	Rerank Reranker
}

// Query scores candidates against query by substring/term overlap, then
// optionally narrows to the top TopN and asks Rerank to reorder them, then
// returns the top TopK.
func Query(ctx context.Context, candidates []Candidate, query string, opts Options) ([]Candidate, error) {
	ranked := rank(query, candidates)

	out := make([]Candidate, len(ranked))
	for i, r := range ranked {
		out[i] = r.Candidate
	}

	if opts.TopN > 0 && len(out) > opts.TopN {
		out = out[:opts.TopN]
	}

	if opts.Rerank != nil {
		reranked, err := opts.Rerank.Rerank(ctx, query, out)
		if err != nil {
			return nil, err
		}
		out = reranked
	}

	if opts.TopK > 0 && len(out) > opts.TopK {
		out = out[:opts.TopK]
	}
	return out, nil
}
