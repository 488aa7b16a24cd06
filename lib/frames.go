package lib

import (
	"fmt"

	"github.com/phil-mansfield/nblist/lib/atoms"
	"github.com/phil-mansfield/nblist/lib/xyzio"
)

// Frame is a configuration along with its index in the input file.
type Frame struct {
	Index int
	Atoms *atoms.Atoms
}

// CollectFrames reads args.Input and returns the frames selected by
// args.Frames, in order. Every frame is returned if args.Frames is nil.
func CollectFrames(args *Args) ([]Frame, error) {
	all, err := xyzio.ReadFile(args.Input)
	if err != nil {
		return nil, err
	}
	return SelectFrames(all, args.Frames)
}

// SelectFrames picks the frames with the given indices out of all. A nil
// idx selects everything.
func SelectFrames(all []*atoms.Atoms, idx []int) ([]Frame, error) {
	if idx == nil {
		out := make([]Frame, len(all))
		for i := range all {
			out[i] = Frame{i, all[i]}
		}
		return out, nil
	}

	out := make([]Frame, len(idx))
	for k, i := range idx {
		if i < 0 || i >= len(all) {
			return nil, fmt.Errorf("frame %d was requested, but the input "+
				"only has %d frames", i, len(all))
		}
		out[k] = Frame{i, all[i]}
	}
	return out, nil
}

// FrameIndices returns the indices of the frames that a mode which doesn't
// read the input itself should use: args.Frames if it's set and every frame
// in args.Input otherwise.
func FrameIndices(args *Args) ([]int, error) {
	if args.Frames != nil {
		return args.Frames, nil
	}
	frames, err := CollectFrames(args)
	if err != nil {
		return nil, err
	}
	idx := make([]int, len(frames))
	for i := range frames {
		idx[i] = frames[i].Index
	}
	return idx, nil
}
