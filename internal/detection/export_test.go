package detection

import "hrcore/internal/audit"

// Test-only exports for the external detection_test package.

var ActorKeyForTest = actorKey

func (e *Engine) Evaluate(event audit.Event) { e.evaluate(event) }
