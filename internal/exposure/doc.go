// Package exposure implements histogram-based automatic exposure.
//
// A frame is metered in two dispatches. BuildHistogram sorts every texel
// into one of 256 log-luminance buckets, merging per-group histograms into
// a shared counter buffer with atomic adds. Reduce then collapses the
// histogram into a weighted average luminance in a single 256-lane group
// and blends it with the previous frame's adapted value.
//
// The adapted luminance is the only state that outlives a frame. It is
// passed into Reduce and returned from it; ReduceInto keeps it in a 1x1
// grid for hosts that prefer that.
package exposure
