package domain

// LifecycleHooks defines callbacks for worker observability. Hooks are
// optional; nil fields are skipped.
type LifecycleHooks struct {
	OnSpawn   func(workerID, transport string)
	OnMessage func(workerID string)
	OnError   func(workerID string, err error)
	OnExit    func(workerID string)
}
