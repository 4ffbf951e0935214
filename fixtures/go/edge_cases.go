package fixtures

import (
	"context"
	"fmt"
)

type Runner interface {
	Run(ctx context.Context) error
}

type Worker struct{ name string }

func (w *Worker) Run(ctx context.Context) error {
	start := func() { fmt.Println("start", w.name) }
	start()
	return helper(ctx)
}

func (w Worker) String() string { return w.name }

func helper(ctx context.Context) error {
	return ctx.Err()
}

func Map[T, U any](in []T, f func(T) U) []U {
	out := make([]U, 0, len(in))
	for _, v := range in {
		out = append(out, f(v))
	}
	return out
}
