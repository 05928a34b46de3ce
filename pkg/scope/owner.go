package scope

import (
	"sync"
	"sync/atomic"
)

// globalIDCounter is the source of unique IDs for owners.
var globalIDCounter uint64

func nextID() uint64 {
	return atomic.AddUint64(&globalIDCounter, 1)
}

// Owner is an explicit scope that owns cached values, context values and
// cleanup functions. When an Owner is disposed, its children are disposed
// first, then its cleanups run in reverse registration order.
//
// Owners form a hierarchy that mirrors a component tree. Unlike an ambient
// "current owner", an Owner is always passed by reference to the code that
// uses it, so lifetime and test isolation stay explicit.
type Owner struct {
	id   uint64
	name string

	// parent is nil for a root Owner.
	parent *Owner

	children   []*Owner
	childrenMu sync.Mutex

	// cleanups registered via OnCleanup.
	cleanups   []func()
	cleanupsMu sync.Mutex

	// values stores context values provided at this scope.
	values   map[any]any
	valuesMu sync.RWMutex

	disposed atomic.Bool

	// Hook slots give every call site a stable home across renders.
	// The cursor is reset by StartRender.
	slotsMu   sync.Mutex
	slots     []any
	slotIdx   int
	rendering bool
	renders   int
}

// NewOwner creates a new Owner registered as a child of parent.
// If parent is nil, a root Owner is created.
func NewOwner(parent *Owner, name string) *Owner {
	o := &Owner{
		id:     nextID(),
		name:   name,
		parent: parent,
	}

	if parent != nil {
		parent.addChild(o)
	}

	return o
}

// ID returns the unique identifier for this Owner.
func (o *Owner) ID() uint64 {
	return o.id
}

// Name returns the descriptive name given at construction.
func (o *Owner) Name() string {
	return o.name
}

// Parent returns the parent Owner, or nil for a root Owner.
func (o *Owner) Parent() *Owner {
	return o.parent
}

// IsDisposed reports whether Dispose has been called.
func (o *Owner) IsDisposed() bool {
	return o.disposed.Load()
}

// Children returns a snapshot of the live child owners.
func (o *Owner) Children() []*Owner {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()
	return append([]*Owner(nil), o.children...)
}

func (o *Owner) addChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()
	o.children = append(o.children, child)
}

func (o *Owner) removeChild(child *Owner) {
	o.childrenMu.Lock()
	defer o.childrenMu.Unlock()

	for i, c := range o.children {
		if c == child {
			o.children = append(o.children[:i], o.children[i+1:]...)
			return
		}
	}
}

// OnCleanup registers fn to run when this Owner is disposed.
// If the Owner is already disposed, fn runs immediately.
func (o *Owner) OnCleanup(fn func()) {
	if o.disposed.Load() {
		fn()
		return
	}

	o.cleanupsMu.Lock()
	defer o.cleanupsMu.Unlock()
	o.cleanups = append(o.cleanups, fn)
}

// SetValue stores a context value on this Owner.
func (o *Owner) SetValue(key, value any) {
	o.valuesMu.Lock()
	defer o.valuesMu.Unlock()

	if o.values == nil {
		o.values = make(map[any]any)
	}
	o.values[key] = value
}

// GetValue retrieves a value from this Owner or the nearest ancestor that
// holds one. Disposed owners along the chain are skipped.
func (o *Owner) GetValue(key any) (any, bool) {
	for cur := o; cur != nil; cur = cur.parent {
		if cur.disposed.Load() {
			continue
		}
		cur.valuesMu.RLock()
		val, ok := cur.values[key]
		cur.valuesMu.RUnlock()
		if ok {
			return val, true
		}
	}
	return nil, false
}

// Dispose tears down this Owner and every descendant.
// Calling Dispose more than once is a no-op.
func (o *Owner) Dispose() {
	if o.disposed.Swap(true) {
		return
	}

	if o.parent != nil {
		o.parent.removeChild(o)
	}

	o.childrenMu.Lock()
	children := make([]*Owner, len(o.children))
	copy(children, o.children)
	o.children = nil
	o.childrenMu.Unlock()

	// Dispose children in reverse order (LIFO)
	for i := len(children) - 1; i >= 0; i-- {
		children[i].Dispose()
	}

	o.cleanupsMu.Lock()
	cleanups := o.cleanups
	o.cleanups = nil
	o.cleanupsMu.Unlock()

	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}

	o.valuesMu.Lock()
	o.values = nil
	o.valuesMu.Unlock()

	o.slotsMu.Lock()
	o.slots = nil
	o.slotIdx = 0
	o.slotsMu.Unlock()
}

// StartRender begins a render pass: the hook-slot cursor is rewound so the
// n-th hook of this pass finds the state stored by the n-th hook of the
// previous pass.
func (o *Owner) StartRender() {
	o.slotsMu.Lock()
	defer o.slotsMu.Unlock()
	o.slotIdx = 0
	o.rendering = true
}

// EndRender finishes a render pass. A pass that used fewer slots than the
// first one means hooks were called conditionally, which panics.
func (o *Owner) EndRender() {
	o.slotsMu.Lock()
	defer o.slotsMu.Unlock()
	o.rendering = false
	o.renders++
	if o.slotIdx != len(o.slots) {
		panic(&HookOrderError{Owner: o.name, Expected: len(o.slots), Got: o.slotIdx})
	}
}

// Render runs fn as one render pass.
func (o *Owner) Render(fn func()) {
	o.StartRender()
	fn()
	o.EndRender()
}

// RenderCount returns how many render passes have completed.
func (o *Owner) RenderCount() int {
	o.slotsMu.Lock()
	defer o.slotsMu.Unlock()
	return o.renders
}

// UseSlot returns the value stored at the next hook slot, or nil when this is
// the first render to reach it. Callers that receive nil must create their
// state and store it with SetSlot.
//
// Typical use by a hook:
//
//	func UseThing(o *scope.Owner) *Thing {
//	    if slot := o.UseSlot(); slot != nil {
//	        return slot.(*Thing)
//	    }
//	    t := &Thing{}
//	    o.SetSlot(t)
//	    return t
//	}
func (o *Owner) UseSlot() any {
	o.slotsMu.Lock()
	defer o.slotsMu.Unlock()

	if !o.rendering {
		panic("memolab: hook used outside a render pass")
	}

	idx := o.slotIdx
	o.slotIdx++

	if idx < len(o.slots) {
		return o.slots[idx]
	}
	return nil
}

// SetSlot stores value in the slot most recently reached by UseSlot.
func (o *Owner) SetSlot(value any) {
	o.slotsMu.Lock()
	defer o.slotsMu.Unlock()

	idx := o.slotIdx - 1
	switch {
	case idx < 0:
		panic("memolab: SetSlot called before UseSlot")
	case idx < len(o.slots):
		o.slots[idx] = value
	case idx == len(o.slots):
		o.slots = append(o.slots, value)
	default:
		panic("memolab: hook slot skipped")
	}
}
