package service

import (
	"context"
	"fmt"
	"sync"

	"github.com/hashicorp/go-multierror"
)

// Service describes a long-running component of the uBasket application.
type Service interface {
	// Name returns the name of the service.
	Name() string

	// Run executes the service and blocks until the context gets cancelled
	// or an error occurs.
	Run(context.Context) error
}

// Group is a list of Service instances that can execute in parallel.
type Group []Service

// Execute runs all Service instances in the group and blocks until they have
// all completed, either because the context got cancelled or because any one
// of the services reported an error. The first error cancels the rest of the
// group.
func (g Group) Execute(ctx context.Context) error {
	if len(g) == 0 {
		return nil
	}

	if ctx == nil {
		ctx = context.Background()
	}

	runCtx, cancelFn := context.WithCancel(ctx)
	defer cancelFn()

	var wg sync.WaitGroup
	wg.Add(len(g))
	errChan := make(chan error, len(g))

	for _, svc := range g {
		go func(svc Service) {
			defer wg.Done()

			if err := svc.Run(runCtx); err != nil {
				errChan <- fmt.Errorf("%s: %w", svc.Name(), err)

				cancelFn()
			}
		}(svc)
	}

	// Keep running until the execution context gets cancelled, then wait
	// for all spawned service go-routines to exit.
	<-runCtx.Done()

	wg.Wait()

	// Collect and accumulate any reported errors.
	var combined error
	close(errChan)

	for svcErr := range errChan {
		combined = multierror.Append(combined, svcErr)
	}

	return combined
}
