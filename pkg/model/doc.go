// Package model implements the Coral namespace/metadata engine: a CDMI-style
// hierarchy of collections and resources addressed by path or stable
// identifier, layered over the store collaborator in pkg/store.
//
// The engine enforces referential integrity at write time (parent must
// exist, no duplicate name within a container, no collection/resource path
// collisions), maintains the identifier index alongside the primary rows,
// and emits a change notification for every mutation. The term index is a
// separate, explicitly driven component; see SearchIndex.
//
// Concurrency model: the engine is a library invoked synchronously by
// request-handling workers. It performs no internal threading and holds no
// locks of its own; safety under concurrent callers is inherited from the
// store backend. The existence-check-then-insert sequence in every create
// is racy across callers, so uniqueness is best-effort and the later write
// wins. See the method documentation on CreateCollection and CreateResource.
package model
