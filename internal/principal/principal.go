// Package principal holds the authenticated identities that flow from the
// transport layer into the engine.
package principal

import "github.com/google/uuid"

// Agent scopes policy and quota lookups. How it was authenticated is not the
// engine's concern.
type Agent struct {
	OrgID uuid.UUID
	ID    uuid.UUID
	Name  string
}

type Admin struct {
	OrgID uuid.UUID
	ID    uuid.UUID
	Name  string
}
