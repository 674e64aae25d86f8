package command

import "context"

// Result is the pending outcome of Request. It resolves to false at once
// when the request is rejected, and to true once an admitted command has
// been executed (whether or not the command had an effect). A command
// dropped because the pipeline loop stopped resolves to false.
type Result struct {
	done     chan struct{}
	accepted bool
}

func newResult() *Result {
	return &Result{done: make(chan struct{})}
}

func rejected() *Result {
	r := newResult()
	r.resolve(false)
	return r
}

func (r *Result) resolve(accepted bool) {
	r.accepted = accepted
	close(r.done)
}

// Done is closed once the result is resolved.
func (r *Result) Done() <-chan struct{} {
	return r.done
}

// Wait blocks until the result resolves or ctx is done. Giving up on the
// wait does not cancel an admitted command.
func (r *Result) Wait(ctx context.Context) (bool, error) {
	select {
	case <-r.done:
		return r.accepted, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
