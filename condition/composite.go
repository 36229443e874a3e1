package condition

import "log/slog"

// raceResult is one pending child's resolution, tagged with its list
// position so the fold can stay in declaration order.
type raceResult struct {
	idx     int
	matched bool
	err     error
}

// pendingChild pairs a dispatched handle with its list position.
type pendingChild struct {
	idx    int
	handle *Handle
}

// evalComposite runs the composite state machine.
//
// Sequential phase: children are walked in list order. Synchronous children
// evaluate inline and block; a short-circuit value or error concludes the
// composite immediately and children later in the list never start (and
// never log). Asynchronous children are dispatched without blocking and
// recorded as pending.
//
// Race phase: completion callbacks on every pending handle feed one
// buffered channel; the first handle to resolve to the short-circuit value
// or to fail concludes the composite. Pending siblings are cancelled when
// the composite is cancellable. Callbacks rather than in-order joins keep a
// bounded executor from ever hosting more than this one waiter.
//
// Full resolution: when nothing short-circuits or fails, all child values
// fold left-to-right in list order.
func (n *Node) evalComposite(ctx *Context, unit string) (bool, error) {
	short := n.op.shortCircuit()
	values := make([]bool, len(n.children))
	var pending []pendingChild

	cancelPending := func() {
		if !n.attrs.Cancellable || len(pending) == 0 {
			return
		}
		slog.Debug("cancelling pending conditions",
			"composite", n.Alias(),
			"pending", len(pending),
		)
		for _, p := range pending {
			p.handle.Cancel()
		}
	}

	for i, child := range n.children {
		if child.attrs.Async {
			h := child.dispatch(ctx)
			pending = append(pending, pendingChild{idx: i, handle: h})
			slog.Debug("condition dispatched",
				"composite", n.Alias(),
				"child", child.Alias(),
				"executor", child.executor().Name(),
			)
			continue
		}

		matched, err := child.match(ctx, unit)
		if err != nil {
			cancelPending()
			return false, err
		}
		if matched == short {
			slog.Debug("condition short-circuited",
				"composite", n.Alias(),
				"child", child.Alias(),
				"value", matched,
			)
			cancelPending()
			return short, nil
		}
		values[i] = matched
	}

	if len(pending) > 0 {
		results := make(chan raceResult, len(pending))
		for _, p := range pending {
			p := p
			p.handle.onComplete(func(matched bool, err error) {
				results <- raceResult{idx: p.idx, matched: matched, err: err}
			})
		}

		for remaining := len(pending); remaining > 0; remaining-- {
			r := <-results
			if r.err != nil {
				cancelPending()
				return false, r.err
			}
			if r.matched == short {
				slog.Debug("condition short-circuited",
					"composite", n.Alias(),
					"child", n.children[r.idx].Alias(),
					"value", r.matched,
				)
				cancelPending()
				return short, nil
			}
			values[r.idx] = r.matched
		}
	}

	acc := values[0]
	for _, v := range values[1:] {
		acc = n.op.fold(acc, v)
	}
	return acc, nil
}
