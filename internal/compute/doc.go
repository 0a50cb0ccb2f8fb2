// Package compute emulates the data-parallel execution model the
// post-processing kernels are written against.
//
// A dispatch covers a 2D range of workgroups. Every workgroup has a fixed
// 2D shape of lanes, and every lane receives an Invocation carrying its
// global, group-local and group coordinates.
//
// Two entry points exist:
//
//   - Dispatcher.Dispatch runs kernels that never synchronize inside a group.
//     Groups run in parallel on the worker pool; the lanes of one group run
//     in order on the worker that owns the group.
//   - DispatchPhases runs kernels that share group-local memory. The kernel
//     is split at its barriers into phases; a group runs each phase for all
//     of its lanes before the next, on the same worker, and each group gets
//     a fresh shared value.
//
// Counters provides atomic add on a uint32 array, used both for group-local
// and dispatch-global accumulation. A dispatch returns only after every lane
// of every group has returned, so all writes are visible to the caller.
//
// No cross-group synchronization exists: groups may run in any order and
// concurrently.
package compute
