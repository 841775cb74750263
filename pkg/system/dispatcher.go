package system

import (
	"sync"

	"github.com/apache/maven-resolver-sub005/pkg/artifact"
	"github.com/apache/maven-resolver-sub005/pkg/deploy"
	"github.com/apache/maven-resolver-sub005/pkg/resolve"
)

// Event is the shared shape every component's event reaches a
// Dispatcher in, so one set of registered listeners can observe
// resolve, install and deploy activity uniformly; collection emits no
// events (spec.md §6
// "listener contract", [NEW] concrete Dispatcher).
type Event struct {
	Kind       string
	Coordinate string
	Err        error
}

// EventListener receives every Event a Dispatcher fans out.
type EventListener interface {
	OnEvent(Event)
}

// Dispatcher is the concrete default EventListener fan-out: registered
// listeners are invoked synchronously, in registration order, on the
// calling goroutine (spec.md [NEW] "synchronous fan-out").
type Dispatcher struct {
	mu        sync.Mutex
	listeners []EventListener
}

// NewDispatcher returns a ready-to-use Dispatcher with no listeners.
func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Register adds l to the fan-out list.
func (d *Dispatcher) Register(l EventListener) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners = append(d.listeners, l)
}

// Dispatch invokes every registered listener with e.
func (d *Dispatcher) Dispatch(e Event) {
	d.mu.Lock()
	listeners := make([]EventListener, len(d.listeners))
	copy(listeners, d.listeners)
	d.mu.Unlock()

	for _, l := range listeners {
		l.OnEvent(e)
	}
}

// AsDeployListener adapts the Dispatcher to deploy.Listener, so
// Install/Deploy events reach every registered EventListener.
func (d *Dispatcher) AsDeployListener() deploy.Listener { return dispatchDeployListener{d} }

type dispatchDeployListener struct{ d *Dispatcher }

func (l dispatchDeployListener) OnEvent(kind, coordinate string, err error) {
	l.d.Dispatch(Event{Kind: kind, Coordinate: coordinate, Err: err})
}

// AsResolveListener adapts the Dispatcher to resolve.Listener, so
// ArtifactResolving/ArtifactResolved events reach every registered
// EventListener.
func (d *Dispatcher) AsResolveListener() resolve.Listener { return dispatchResolveListener{d} }

type dispatchResolveListener struct{ d *Dispatcher }

func (l dispatchResolveListener) ArtifactResolving(a artifact.Artifact) {
	l.d.Dispatch(Event{Kind: "ARTIFACT_RESOLVING", Coordinate: a.String()})
}

func (l dispatchResolveListener) ArtifactResolved(a artifact.Artifact, err error) {
	l.d.Dispatch(Event{Kind: "ARTIFACT_RESOLVED", Coordinate: a.String(), Err: err})
}
