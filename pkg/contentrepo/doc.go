// Package contentrepo provides a provider-agnostic facade over pluggable
// content-repository backends.
//
// The facade exposes a single operation set (list, read, create, update,
// publish/unpublish content entries) and normalizes heterogeneous backend
// responses into one entry model: it derives entry paths and slugs from a
// collection's configuration, picks the right text serialization per entry,
// and layers an editorial-workflow state machine (draft -> in review ->
// published) on top of backends that may or may not support it natively.
//
// Backends live in subpackages under backend/ and satisfy the Backend
// interface. Durable session persistence lives under sessionstore/, text
// serialization engines under format/.
package contentrepo
