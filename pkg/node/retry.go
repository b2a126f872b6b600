package node

import (
	"context"
	"time"

	"github.com/loomrun/loom/pkg/errs"
	"github.com/loomrun/loom/pkg/store"
)

// execOutcome carries the result of a single Exec attempt across a
// goroutine boundary, since registry.Node.Exec takes no context and must
// be raced against a per-node timeout instead of cooperatively cancelled.
type execOutcome struct {
	result any
	err    error
}

// runWithRetry runs Prep once, then Exec up to cfg.Retries+1 times with a
// fixed wait between attempts (spec.md §4.7: "fixed wait ... up to
// max_retries"), then Post. If every Exec attempt fails and the inner node
// implements fallbackNode, its ExecFallback result is used in place of a
// failed exec_result; otherwise the last error is categorized and
// returned. Cancellation is checked between phases and between retries,
// and a configured per-node timeout races each individual Exec call.
func (w *wrapped) runWithRetry(ctx context.Context, ns *store.Namespace, params map[string]any) (string, error) {
	prep, err := w.inner.Prep(ns, params)
	if err != nil {
		return "", wrapInnerError(w.id, err)
	}

	maxAttempts := w.cfg.Retries + 1
	wait := time.Duration(w.cfg.WaitMS) * time.Millisecond

	var execResult any
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return "", errs.NewCancelledError(w.id)
		}

		execResult, lastErr = w.execOnce(ctx, prep)
		if lastErr == nil {
			break
		}
		if errs.IsCategory(lastErr, errs.CategoryCancelled) {
			return "", lastErr
		}
		if attempt < maxAttempts && wait > 0 {
			if !sleepOrCancel(ctx, wait) {
				return "", errs.NewCancelledError(w.id)
			}
		}
	}

	if lastErr != nil {
		if fb, ok := w.inner.(fallbackNode); ok {
			result, fbErr := fb.ExecFallback(prep, lastErr)
			if fbErr != nil {
				return "", wrapInnerError(w.id, fbErr)
			}
			execResult, lastErr = result, nil
		}
	}
	if lastErr != nil {
		return "", wrapInnerError(w.id, lastErr)
	}

	action, err := w.inner.Post(ns, prep, execResult)
	if err != nil {
		return "", wrapInnerError(w.id, err)
	}
	return action, nil
}

// execOnce runs a single Exec attempt, enforcing cfg.Timeout (if set) by
// racing it against a timer in a separate goroutine. On timeout the
// goroutine is abandoned (Exec has no cancellation signal of its own) and
// a CategoryTimeout error is returned immediately.
func (w *wrapped) execOnce(ctx context.Context, prep any) (any, error) {
	if w.cfg.Timeout <= 0 {
		return w.inner.Exec(prep)
	}

	done := make(chan execOutcome, 1)
	go func() {
		result, err := w.inner.Exec(prep)
		done <- execOutcome{result: result, err: err}
	}()

	select {
	case out := <-done:
		return out.result, out.err
	case <-time.After(w.cfg.Timeout):
		return nil, errs.NewTimeoutError(w.id, "exec exceeded its configured timeout")
	case <-ctx.Done():
		return nil, errs.NewCancelledError(w.id)
	}
}

// sleepOrCancel waits out d, returning false early if ctx is cancelled
// first.
func sleepOrCancel(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return true
	case <-ctx.Done():
		return false
	}
}

// wrapInnerError normalizes whatever an inner node returns into an
// *errs.Error, leaving one already in that shape untouched so its category
// and suggestion survive.
func wrapInnerError(nodeID string, err error) error {
	if e, ok := errs.As(err); ok {
		return e
	}
	return errs.Wrap(errs.CategoryInternal, nodeID, err)
}
