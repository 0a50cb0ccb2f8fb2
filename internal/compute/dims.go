package compute

import "errors"

// Errors returned by dispatches.
var (
	// ErrInvalidDims is returned when a group shape has a non-positive side.
	ErrInvalidDims = errors.New("compute: invalid dispatch dimensions")

	// ErrPoolClosed is returned when dispatching on a closed Dispatcher.
	ErrPoolClosed = errors.New("compute: dispatcher closed")
)

// ID is a 2D coordinate in lanes or groups.
type ID struct {
	X, Y int
}

// Dims describes a dispatch: the lane shape of one group and the number of
// groups along each axis.
type Dims struct {
	Group  ID
	Groups ID
}

// Cover returns the smallest dispatch of group-shaped workgroups covering a
// width x height domain. Lanes past the domain still run; kernels must check
// bounds themselves.
func Cover(width, height int, group ID) Dims {
	return Dims{
		Group: group,
		Groups: ID{
			X: ceilDiv(max(width, 1), max(group.X, 1)),
			Y: ceilDiv(max(height, 1), max(group.Y, 1)),
		},
	}
}

// GroupLanes returns the number of lanes in one group.
func (d Dims) GroupLanes() int {
	return d.Group.X * d.Group.Y
}

// GroupCount returns the number of groups in the dispatch.
func (d Dims) GroupCount() int {
	return d.Groups.X * d.Groups.Y
}

func (d Dims) validate() error {
	if d.Group.X <= 0 || d.Group.Y <= 0 || d.Groups.X < 0 || d.Groups.Y < 0 {
		return ErrInvalidDims
	}
	return nil
}

// invocation builds the ids of the lane at local in group g.
func (d Dims) invocation(g, local ID) Invocation {
	return Invocation{
		Global:     ID{X: g.X*d.Group.X + local.X, Y: g.Y*d.Group.Y + local.Y},
		Local:      local,
		LocalIndex: local.Y*d.Group.X + local.X,
		Group:      g,
	}
}

// Invocation identifies one lane of a dispatch.
type Invocation struct {
	// Global is the lane coordinate across the whole dispatch.
	Global ID
	// Local is the lane coordinate within its group.
	Local ID
	// LocalIndex is Local flattened row-major.
	LocalIndex int
	// Group is the coordinate of the lane's group.
	Group ID
}

func ceilDiv(a, b int) int {
	return (a + b - 1) / b
}
