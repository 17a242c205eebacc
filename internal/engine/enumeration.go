package engine

import (
	"sync"

	"github.com/google/uuid"

	"mywbem/internal/cim"
)

// enumKind tags what a session's pending result set holds.
type enumKind int

const (
	enumInstances enumKind = iota
	enumPaths
)

// Context identifies an open enumeration sequence. The token is opaque;
// no state is encoded in it.
type Context struct {
	ID        string `json:"enumeration_context"`
	Namespace string `json:"namespace"`
}

// session holds the remainder of an eagerly computed result set.
type session struct {
	namespace string
	kind      enumKind
	instances []*cim.Instance
	paths     []*cim.InstanceName
}

// SessionManager layers the open/pull/close pagination protocol over
// the instance and association engines. Result sets are computed
// eagerly at open time; a session exists only while unexhausted.
type SessionManager struct {
	engine *Engine

	mu       sync.Mutex
	sessions map[string]*session
}

// NewSessionManager creates a session manager over an engine.
func NewSessionManager(e *Engine) *SessionManager {
	return &SessionManager{engine: e, sessions: make(map[string]*session)}
}

// Len returns the number of open sessions.
func (sm *SessionManager) Len() int {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	return len(sm.sessions)
}

// openInstances stores the remainder of an instance result set and
// returns the first batch. No context is created when the remainder is
// empty.
func (sm *SessionManager) openInstances(ns string, all []*cim.Instance, maxObjects int) ([]*cim.Instance, *Context, bool) {
	batch, rest := splitInstances(all, maxObjects)
	if len(rest) == 0 {
		return batch, nil, true
	}
	ctx := &Context{ID: uuid.New().String(), Namespace: ns}
	sm.mu.Lock()
	sm.sessions[ctx.ID] = &session{namespace: ns, kind: enumInstances, instances: rest}
	sm.mu.Unlock()
	return batch, ctx, false
}

func (sm *SessionManager) openPaths(ns string, all []*cim.InstanceName, maxObjects int) ([]*cim.InstanceName, *Context, bool) {
	batch, rest := splitPaths(all, maxObjects)
	if len(rest) == 0 {
		return batch, nil, true
	}
	ctx := &Context{ID: uuid.New().String(), Namespace: ns}
	sm.mu.Lock()
	sm.sessions[ctx.ID] = &session{namespace: ns, kind: enumPaths, paths: rest}
	sm.mu.Unlock()
	return batch, ctx, false
}

// OpenEnumerateInstances starts a paged instance enumeration.
func (sm *SessionManager) OpenEnumerateInstances(ns, className string, deep bool, opts InstanceOptions, maxObjects int) ([]*cim.Instance, *Context, bool, error) {
	all, err := sm.engine.EnumerateInstances(ns, className, deep, opts)
	if err != nil {
		return nil, nil, false, err
	}
	batch, ctx, eos := sm.openInstances(ns, all, maxObjects)
	return batch, ctx, eos, nil
}

// OpenEnumerateInstancePaths starts a paged instance-path enumeration.
func (sm *SessionManager) OpenEnumerateInstancePaths(ns, className string, maxObjects int) ([]*cim.InstanceName, *Context, bool, error) {
	all, err := sm.engine.EnumerateInstanceNames(ns, className)
	if err != nil {
		return nil, nil, false, err
	}
	batch, ctx, eos := sm.openPaths(ns, all, maxObjects)
	return batch, ctx, eos, nil
}

// OpenReferenceInstances starts a paged reference enumeration.
func (sm *SessionManager) OpenReferenceInstances(ns string, src *cim.InstanceName, resultClass, role string, opts InstanceOptions, maxObjects int) ([]*cim.Instance, *Context, bool, error) {
	all, err := sm.engine.References(ns, src, resultClass, role, opts)
	if err != nil {
		return nil, nil, false, err
	}
	batch, ctx, eos := sm.openInstances(ns, all, maxObjects)
	return batch, ctx, eos, nil
}

// OpenReferenceInstancePaths starts a paged reference-path enumeration.
func (sm *SessionManager) OpenReferenceInstancePaths(ns string, src *cim.InstanceName, resultClass, role string, maxObjects int) ([]*cim.InstanceName, *Context, bool, error) {
	all, err := sm.engine.ReferenceNames(ns, src, resultClass, role)
	if err != nil {
		return nil, nil, false, err
	}
	batch, ctx, eos := sm.openPaths(ns, all, maxObjects)
	return batch, ctx, eos, nil
}

// OpenAssociatorInstances starts a paged associator enumeration.
func (sm *SessionManager) OpenAssociatorInstances(ns string, src *cim.InstanceName, f AssocFilter, opts InstanceOptions, maxObjects int) ([]*cim.Instance, *Context, bool, error) {
	all, err := sm.engine.Associators(ns, src, f, opts)
	if err != nil {
		return nil, nil, false, err
	}
	batch, ctx, eos := sm.openInstances(ns, all, maxObjects)
	return batch, ctx, eos, nil
}

// OpenAssociatorInstancePaths starts a paged associator-path
// enumeration.
func (sm *SessionManager) OpenAssociatorInstancePaths(ns string, src *cim.InstanceName, f AssocFilter, maxObjects int) ([]*cim.InstanceName, *Context, bool, error) {
	all, err := sm.engine.AssociatorNames(ns, src, f)
	if err != nil {
		return nil, nil, false, err
	}
	batch, ctx, eos := sm.openPaths(ns, all, maxObjects)
	return batch, ctx, eos, nil
}

// PullInstancesWithPath returns the next batch of an instance
// enumeration. At exhaustion the context is destroyed and eos reported.
func (sm *SessionManager) PullInstancesWithPath(ctx *Context, maxObjects int) ([]*cim.Instance, bool, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	s, err := sm.lookup(ctx)
	if err != nil {
		return nil, false, err
	}
	if s.kind != enumInstances {
		return nil, false, cim.NewError(cim.StatusFailed,
			"enumeration context %s holds instance paths, not instances", ctx.ID)
	}
	batch, rest := splitInstances(s.instances, maxObjects)
	s.instances = rest
	if len(rest) == 0 {
		delete(sm.sessions, ctx.ID)
		return batch, true, nil
	}
	return batch, false, nil
}

// PullInstancePaths returns the next batch of a path enumeration.
func (sm *SessionManager) PullInstancePaths(ctx *Context, maxObjects int) ([]*cim.InstanceName, bool, error) {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	s, err := sm.lookup(ctx)
	if err != nil {
		return nil, false, err
	}
	if s.kind != enumPaths {
		return nil, false, cim.NewError(cim.StatusFailed,
			"enumeration context %s holds instances, not instance paths", ctx.ID)
	}
	batch, rest := splitPaths(s.paths, maxObjects)
	s.paths = rest
	if len(rest) == 0 {
		delete(sm.sessions, ctx.ID)
		return batch, true, nil
	}
	return batch, false, nil
}

// CloseEnumeration discards an open sequence before exhaustion. A
// sequence that already reached eos no longer exists, so closing it
// again fails InvalidEnumerationContext.
func (sm *SessionManager) CloseEnumeration(ctx *Context) error {
	sm.mu.Lock()
	defer sm.mu.Unlock()
	if _, err := sm.lookup(ctx); err != nil {
		return err
	}
	delete(sm.sessions, ctx.ID)
	return nil
}

// lookup resolves a context, enforcing the namespace it was opened
// against. Callers hold sm.mu.
func (sm *SessionManager) lookup(ctx *Context) (*session, error) {
	if ctx == nil || ctx.ID == "" {
		return nil, cim.NewError(cim.StatusInvalidEnumerationContext, "enumeration context is missing")
	}
	s, ok := sm.sessions[ctx.ID]
	if !ok {
		return nil, cim.NewError(cim.StatusInvalidEnumerationContext,
			"enumeration context %s is unknown or exhausted", ctx.ID)
	}
	if cim.Fold(s.namespace) != cim.Fold(ctx.Namespace) {
		return nil, cim.NewError(cim.StatusInvalidEnumerationContext,
			"enumeration context %s was not opened against namespace %s", ctx.ID, ctx.Namespace)
	}
	return s, nil
}

func splitInstances(all []*cim.Instance, max int) (batch, rest []*cim.Instance) {
	if max < 0 {
		max = 0
	}
	if max > len(all) {
		max = len(all)
	}
	return all[:max], all[max:]
}

func splitPaths(all []*cim.InstanceName, max int) (batch, rest []*cim.InstanceName) {
	if max < 0 {
		max = 0
	}
	if max > len(all) {
		max = len(all)
	}
	return all[:max], all[max:]
}
