package fetch

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/sasanktumpati/fetchllm/internal/providers"
)

// Outcome is the result of one prompt in a batch.
type Outcome struct {
	Index  int
	Prompt string
	Result providers.Result
	Err    error
}

// BatchError reports the prompts that failed when a batch keeps going.
type BatchError struct {
	Failed int
	Total  int
	Errs   []error
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("%d of %d prompts failed", e.Failed, e.Total)
}

func (e *BatchError) Unwrap() []error { return e.Errs }

// Batch sends several prompts to the same provider.
//
// Outcomes are always emitted in input order. Parallel above one runs that
// many calls at once. Without KeepGoing the first failure stops the batch
// and is returned as is; with KeepGoing failures are emitted and summarized
// in a *BatchError.
type Batch struct {
	Resolver     Resolver
	Provider     string
	SystemPrompt string
	Options      Options
	Parallel     int
	KeepGoing    bool
}

// Run resolves the provider once, then calls emit for every outcome.
// An error returned by emit stops the batch.
func (b Batch) Run(ctx context.Context, prompts []string, emit func(Outcome) error) error {
	client, err := resolve(b.Resolver, b.Provider)
	if err != nil {
		return err
	}
	if len(prompts) == 0 {
		return nil
	}
	if b.Parallel <= 1 {
		return b.runSequential(ctx, client, prompts, emit)
	}
	return b.runParallel(ctx, client, prompts, emit)
}

func (b Batch) runSequential(ctx context.Context, client providers.Client, prompts []string, emit func(Outcome) error) error {
	var errs []error
	for i, prompt := range prompts {
		res, err := call(ctx, client, prompt, b.SystemPrompt, b.Options)
		if err != nil && !b.KeepGoing {
			return err
		}
		if err != nil {
			errs = append(errs, err)
		}
		if emitErr := emit(Outcome{Index: i, Prompt: prompt, Result: res, Err: err}); emitErr != nil {
			return emitErr
		}
	}
	return b.summarize(errs, len(prompts))
}

func (b Batch) runParallel(ctx context.Context, client providers.Client, prompts []string, emit func(Outcome) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.Parallel)

	outcomes := make([]Outcome, len(prompts))
	done := make([]chan struct{}, len(prompts))
	for i := range done {
		done[i] = make(chan struct{})
	}

	scheduled := make(chan struct{})
	go func() {
		defer close(scheduled)
		for i, prompt := range prompts {
			if err := gctx.Err(); err != nil {
				for j := i; j < len(prompts); j++ {
					outcomes[j] = Outcome{Index: j, Prompt: prompts[j], Err: context.Cause(gctx)}
					close(done[j])
				}
				return
			}
			g.Go(func() error {
				defer close(done[i])
				res, err := call(gctx, client, prompt, b.SystemPrompt, b.Options)
				outcomes[i] = Outcome{Index: i, Prompt: prompt, Result: res, Err: err}
				if err != nil && !b.KeepGoing {
					return err
				}
				return nil
			})
		}
	}()

	// drain stops scheduling and waits for in-flight calls.
	drain := func() error {
		cancel()
		<-scheduled
		return g.Wait()
	}

	var errs []error
	for i := range prompts {
		<-done[i]
		o := outcomes[i]
		if o.Err != nil && !b.KeepGoing {
			if first := drain(); first != nil {
				return first
			}
			return o.Err
		}
		if o.Err != nil {
			errs = append(errs, o.Err)
		}
		if err := emit(o); err != nil {
			drain()
			return err
		}
	}
	<-scheduled
	if err := g.Wait(); err != nil {
		return err
	}
	return b.summarize(errs, len(prompts))
}

func (b Batch) summarize(errs []error, total int) error {
	if len(errs) == 0 {
		return nil
	}
	return &BatchError{Failed: len(errs), Total: total, Errs: errs}
}

