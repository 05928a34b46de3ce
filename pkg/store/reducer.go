package store

// Reducer routes every state transition of an atom through a single pure
// function of the current state and an action.
type Reducer[S, A any] struct {
	atom   *Atom[S]
	reduce func(state S, action A) S
}

// NewReducer binds reduce to atom.
//
//	counter := store.NewReducer(countAtom, func(s State, a Action) State {
//	    switch a {
//	    case Increment:
//	        return State{Count: s.Count + 1}
//	    }
//	    return s
//	})
func NewReducer[S, A any](atom *Atom[S], reduce func(state S, action A) S) *Reducer[S, A] {
	return &Reducer[S, A]{atom: atom, reduce: reduce}
}

// Dispatch applies action to the current state in s and returns the new
// state.
func (r *Reducer[S, A]) Dispatch(s *Store, action A) (S, error) {
	return r.atom.update(s, func(state S) S {
		return r.reduce(state, action)
	})
}

// State returns the current state in s.
func (r *Reducer[S, A]) State(s *Store) (S, error) {
	return r.atom.Get(s)
}

// Atom returns the atom holding the state.
func (r *Reducer[S, A]) Atom() *Atom[S] {
	return r.atom
}
