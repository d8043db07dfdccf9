// Package context provides request-scoped state for multi-path tree
// operations using a two-phase pattern.
//
// # Phase 1: Lazy Memoization
//
// Reads that several components need within one request are fetched once.
// Concurrent readers of the same key share a single fetch, and a writer
// calls Invalidate once the data behind a key has changed:
//
//	ctx = context.Scoped(ctx)
//	likes, err := context.Load[domain.LikeSet](ctx, likeSetProvider{uid: uid})
//	...
//	context.Invalidate(ctx, "likes:"+uid)
//
// # Phase 2: Staged Writes
//
// Writes that must land together are staged and committed in order. When one
// fails, the ones already executed are rolled back in reverse order:
//
//	rc.Stage(removeCanonical)
//	rc.Stage(removeMirror)
//
//	if err := rc.Commit(ctx); err != nil {
//	    var ce *context.CommitError
//	    if errors.As(err, &ce) && !ce.RolledBack() {
//	        // the tree is partially written
//	    }
//	}
//
// The tree has no transactions, so rollback is best-effort: it rewrites the
// values read before the commit.
package context
