package workerpool

import "context"

// Map applies fn to every item on a pool of the given size and returns the
// results in input order. Each job writes only its own slot, so no result
// depends on scheduling.
func Map[T, R any](ctx context.Context, workers int, items []T, fn func(T) R) ([]R, error) {
	out := make([]R, len(items))
	if len(items) == 0 {
		return out, nil
	}
	if workers > len(items) {
		workers = len(items)
	}
	p := New(workers, workers*2)
	p.Start(ctx)
	for i := range items {
		err := p.SubmitCtx(ctx, func(ctx context.Context) error {
			out[i] = fn(items[i])
			return nil
		})
		if err != nil {
			_ = p.Close()
			return nil, err
		}
	}
	if err := p.Close(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
