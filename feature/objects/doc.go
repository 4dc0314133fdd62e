// Package objects exposes the object store client over HTTP.
//
// # Routes
//
//	PUT    /buckets/:bucket              create bucket (?location=)
//	DELETE /buckets/:bucket              delete an empty bucket
//	GET    /buckets/:bucket/objects      list keys (?prefix=, ?stats=true)
//	GET    /buckets/:bucket/prefixes     common prefixes of the first page (?delimiter=)
//	PUT    /buckets/:bucket/objects/*    store the JSON body (?create=true, ?raw=true)
//	GET    /buckets/:bucket/objects/*    fetch and decode (?raw=true for bytes)
//	POST   /buckets/:bucket/delete       {"keys": [...]} or {"prefix": "..."}
//
// # Errors
//
// Invalid bucket names and keys answer 400. Provider failures keep the
// provider's status code and error code in the body. Everything else is 500.
package objects
