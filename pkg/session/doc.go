/*
Package session serializes access to preview sessions.

Hosts such as the HTTP and MCP adapters serve many sessions at once. The
Manager guarantees that each session's read-modify-write cycle runs alone,
locally through reference-counted mutexes and across replicas through an
optional ports.DistributedLocker.
*/
package session
