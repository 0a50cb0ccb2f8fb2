package compute

import "context"

// Dispatcher schedules workgroups onto a worker pool.
type Dispatcher struct {
	pool *Pool
}

// NewDispatcher starts a dispatcher with the given number of workers.
// Zero or negative uses GOMAXPROCS.
func NewDispatcher(workers int) *Dispatcher {
	return &Dispatcher{pool: NewPool(workers)}
}

// Close stops the worker pool. Dispatches after Close fail with
// ErrPoolClosed.
func (d *Dispatcher) Close() {
	d.pool.Close()
}

// Workers returns the number of pool workers.
func (d *Dispatcher) Workers() int {
	return d.pool.Workers()
}

// Dispatch runs kernel once per lane of dims. Kernels dispatched this way
// must not need a group barrier. Cancellation of ctx is observed between
// groups; a cancelled dispatch returns ctx.Err() and leaves the output
// partially written.
func (d *Dispatcher) Dispatch(ctx context.Context, dims Dims, kernel func(Invocation)) error {
	return d.run(ctx, dims, func(g ID) {
		for ly := 0; ly < dims.Group.Y; ly++ {
			for lx := 0; lx < dims.Group.X; lx++ {
				kernel(dims.invocation(g, ID{X: lx, Y: ly}))
			}
		}
	})
}

// Lane is the view a lane of a group-shared kernel has of its group.
type Lane[S any] struct {
	Invocation

	// Shared is the group's shared memory. It is allocated once per group
	// and visible to every lane of that group only.
	Shared *S
}

// Phase is the part of a group-shared kernel between two group barriers.
type Phase[S any] func(*Lane[S])

// DispatchPhases runs a kernel written as phases separated by group
// barriers. Within a group every lane finishes one phase before any lane
// starts the next, so writes to Shared made in a phase are visible to all
// lanes in the following ones. newShared is called once per group.
//
// The lanes of a group run in order on the worker that owns the group; no
// goroutine is started per lane. Lane-private values that must outlive a
// barrier belong in Shared, indexed by LocalIndex.
func DispatchPhases[S any](ctx context.Context, d *Dispatcher, dims Dims, newShared func() *S, phases ...Phase[S]) error {
	return d.run(ctx, dims, func(g ID) {
		shared := newShared()
		lanes := make([]Lane[S], 0, dims.GroupLanes())
		for ly := 0; ly < dims.Group.Y; ly++ {
			for lx := 0; lx < dims.Group.X; lx++ {
				lanes = append(lanes, Lane[S]{
					Invocation: dims.invocation(g, ID{X: lx, Y: ly}),
					Shared:     shared,
				})
			}
		}
		for _, phase := range phases {
			for i := range lanes {
				phase(&lanes[i])
			}
		}
	})
}

// run executes group once per workgroup of dims on the pool.
func (d *Dispatcher) run(ctx context.Context, dims Dims, group func(ID)) error {
	if err := dims.validate(); err != nil {
		return err
	}
	if !d.pool.Running() {
		return ErrPoolClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	slogger().Debug("compute: dispatch",
		"groups_x", dims.Groups.X,
		"groups_y", dims.Groups.Y,
		"group_lanes", dims.GroupLanes())

	tasks := make([]func(), 0, dims.GroupCount())
	for gy := 0; gy < dims.Groups.Y; gy++ {
		for gx := 0; gx < dims.Groups.X; gx++ {
			g := ID{X: gx, Y: gy}
			tasks = append(tasks, func() {
				if ctx.Err() != nil {
					return
				}
				group(g)
			})
		}
	}

	if !d.pool.Run(tasks) {
		return ErrPoolClosed
	}
	return ctx.Err()
}
