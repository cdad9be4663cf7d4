/*
Package keylock serializes work per key.

Entries are reference counted so that the map only holds keys somebody is
currently waiting on or working under. An optional ports.DistributedLocker
extends the exclusion to every process sharing the same backend.
*/
package keylock
