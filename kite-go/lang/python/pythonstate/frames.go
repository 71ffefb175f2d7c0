package pythonstate

import "github.com/kiteco/pyabsint/kite-go/lang/python/pythontype"

type binding struct {
	value   pythontype.Value
	present bool
}

// Frame is a saved caller frame on the explicit call stack. It holds everything needed to
// resume the caller once the nested analysis of the callee finishes.
type Frame struct {
	Caller  string
	Callee  string
	Index   int
	Context Context
	Scope   *Scope
	Cursor  WorkItem

	// Return and Exception capture what the callee produced
	Return    pythontype.Value
	Exception pythontype.Value
	returned  bool

	calleeFrame memKey
	saved       map[string]binding
}

func (f *Frame) save(name string, v pythontype.Value, present bool) {
	if f.saved == nil {
		f.saved = make(map[string]binding)
	}
	if _, ok := f.saved[name]; ok {
		return
	}
	f.saved[name] = binding{value: v, present: present}
}

// FrameStack is the explicit call stack used for nested analyses
type FrameStack struct {
	frames []*Frame
}

// Push adds a frame
func (s *FrameStack) Push(f *Frame) {
	s.frames = append(s.frames, f)
}

// Pop removes and returns the innermost frame, or nil if the stack is empty
func (s *FrameStack) Pop() *Frame {
	if len(s.frames) == 0 {
		return nil
	}
	f := s.frames[len(s.frames)-1]
	s.frames = s.frames[:len(s.frames)-1]
	return f
}

// Top returns the innermost frame, or nil
func (s *FrameStack) Top() *Frame {
	if len(s.frames) == 0 {
		return nil
	}
	return s.frames[len(s.frames)-1]
}

// Len returns the number of frames
func (s *FrameStack) Len() int {
	return len(s.frames)
}

// Count returns how many frames are calls into callee
func (s *FrameStack) Count(callee string) int {
	var n int
	for _, f := range s.frames {
		if f.Callee == callee {
			n++
		}
	}
	return n
}

// Names returns the callees on the stack, outermost first
func (s *FrameStack) Names() []string {
	names := make([]string, len(s.frames))
	for i, f := range s.frames {
		names[i] = f.Callee
	}
	return names
}
