/*
Package ports defines the driven ports (interfaces) of the journeys engine.

These interfaces decouple the core logic from external implementations, so the
same preview sessions can run over different journey sources and state backends.

# Key Interfaces

  - JourneyLoader: loads journey documents (Loam, a directory, memory).
  - Watchable: optional change notifications for hot reload.
  - StateStore: persists preview session State.
  - DistributedLocker: serializes access to one session across replicas.
*/
package ports
