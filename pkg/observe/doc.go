// Package observe intercepts reads and writes on arbitrary Go values.
//
// Wrap returns a *Proxy over a map, slice, array, struct or pointer. Reads
// through the proxy return nested proxies; writes are applied to the live
// value and reported through a signal function, once per effective change.
//
// Every proxy remembers how to reach its value from the root rather than
// the value itself. After the owner replaces a container, proxies handed
// out earlier write to whatever now lives at their location. When nothing
// compatible lives there anymore the proxy is stale: its writes land on the
// detached value, do not signal, and are reported to the errors package as
// an *errors.OrphanError.
//
// # Collections
//
// Set, OrderedMap and IdentityMap are recognized by Proxy. Their methods
// are reachable through Proxy.Add, Has, Get, Set, Delete, Clear, ForEach,
// Entries, Values and Keys. Mutating calls always signal; values coming out
// of a collection are wrapped. IdentityMap supports only Get, Set, Has and
// Delete. Anything else panics.
//
// Proxies are not safe for concurrent use.
package observe
