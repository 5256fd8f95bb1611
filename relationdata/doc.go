// Package relationdata defines the data-bag substrate underneath the
// manila-plugin configuration exchange. A relation carries, for every
// joined scope (one scope per remote peer), four small key/value bags:
// a private and a peer-visible bag for each side of the relation.
//
// Layers & Roles
//
//	Store : flat KV over (side, bag kind, scope, key) plus scope lifecycle
//	View  : one endpoint's side-bound handle with the replication rule
//	        baked in (SetRemote writes the own public bag, GetRemote reads
//	        the opposite side's public bag)
//
// Implementations
//
//	memorystore : in-process reference used for tests and examples
//	redisstore  : Redis-backed, for endpoints running in separate processes
//	boltstore   : single-file bbolt store so bags survive between hook runs
//
// All implementations are exercised by the shared conformance suite in
// relationdata/storetest.
package relationdata
