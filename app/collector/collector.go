package collector

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/newsfocus/collector/app/sources"
)

// Collector retrieves all (source, category) feeds concurrently under a
// bounded worker pool and a global deadline. Per-task failures are
// isolated: one bad source never blocks the others.
type Collector struct {
	parser      Parser
	workerCount int
	timeout     time.Duration
}

func New(parser Parser, workerCount int, timeout time.Duration) *Collector {
	return &Collector{
		parser:      parser,
		workerCount: workerCount,
		timeout:     timeout,
	}
}

// Run enumerates every (source, category) pair of the registry and
// streams one Result per completed task, in completion order. The
// returned channel is closed once all tasks have completed or the
// deadline has elapsed; tasks still outstanding at the deadline are
// abandoned and yield nothing. Run itself never fails: per-task errors
// are logged and tagged onto their Result.
func (c *Collector) Run(ctx context.Context, registry []Source) <-chan Result {
	tasks := enumerateTasks(registry)
	total := len(tasks)

	// Buffered to the task count so workers never block on a slow
	// consumer and abandoned results cannot leak goroutines.
	results := make(chan Result, total)

	// The deadline is measured from submission, covering queue wait
	// plus fetch time for every task.
	runCtx, cancel := context.WithTimeout(ctx, c.timeout)

	taskCh := make(chan Task, total)
	for _, task := range tasks {
		taskCh <- task
	}
	close(taskCh)

	slog.Info("Retrieving feeds concurrently", "feeds", total, "workers", c.workerCount, "timeout", c.timeout)

	var wg sync.WaitGroup
	var completed atomic.Int64

	for i := 0; i < c.workerCount; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.worker(runCtx, taskCh, results, &completed)
		}()
	}

	go func() {
		wg.Wait()
		done := completed.Load()
		if done < int64(total) && errors.Is(context.Cause(runCtx), context.DeadlineExceeded) {
			slog.Warn("Collection deadline exceeded, abandoning outstanding feeds",
				"timeout", c.timeout, "completed", done, "total", total)
		}
		cancel()
		close(results)
	}()

	return results
}

func enumerateTasks(registry []Source) []Task {
	var tasks []Task
	for _, src := range registry {
		for _, category := range src.Categories() {
			tasks = append(tasks, Task{Source: src, Category: category})
		}
	}
	return tasks
}

func (c *Collector) worker(ctx context.Context, taskCh <-chan Task, results chan<- Result, completed *atomic.Int64) {
	for task := range taskCh {
		if ctx.Err() != nil {
			// Deadline elapsed, remaining queued tasks are abandoned.
			return
		}

		result, ok := c.execute(ctx, task)
		if !ok {
			continue
		}

		if result.Err != nil {
			slog.Warn("Feed retrieval failed",
				"kind", string(result.Err.Kind), "url", result.URL, "error", result.Err.Err)
		}

		completed.Add(1)
		results <- result
	}
}

// execute runs one task to completion. It returns ok=false when the
// task was cut off by the global deadline instead of failing on its
// own; such tasks yield neither a result nor a per-task failure log.
func (c *Collector) execute(ctx context.Context, task Task) (Result, bool) {
	result := Result{
		SourceName: task.Source.Name(),
		Category:   task.Category,
		URL:        task.Source.FeedURL(task.Category),
	}

	data, err := task.Source.Fetch(ctx, task.Category)
	if err != nil {
		if ctx.Err() != nil {
			return Result{}, false
		}
		result.Err = classify(result.URL, err)
		return result, true
	}

	items, err := c.parser.Run(data, result.SourceName, result.Category)
	if err != nil {
		result.Err = &FetchError{Kind: KindParse, URL: result.URL, Err: err}
		return result, true
	}

	result.Items = items
	return result, true
}

func classify(url string, err error) *FetchError {
	var statusErr *sources.StatusError
	var netErr net.Error

	switch {
	case errors.As(err, &statusErr):
		return &FetchError{Kind: KindHTTP, URL: url, Err: err}
	case errors.As(err, &netErr) && netErr.Timeout():
		return &FetchError{Kind: KindTimeout, URL: url, Err: err}
	default:
		return &FetchError{Kind: KindNetwork, URL: url, Err: err}
	}
}
