// Package naming normalizes bucket names and validates object keys before
// they reach an S3-compatible provider.
//
// Bucket names supplied by callers are often derived from identifiers that
// are not legal bucket names (pipeline IDs with colons, mixed case, overly
// long values). NormalizeBucket rewrites them into a legal form; the same
// rewrite must run on both the write and the read path, so every operation
// of the objectstore client goes through a Normalizer.
//
// # Rules
//
//   - trim whitespace; empty input is rejected
//   - names longer than 63 characters are shortened (trailing 63 characters,
//     or a hash-suffixed prefix under the Hash policy)
//   - lowercase; ':' and every other character outside [a-z0-9.-] becomes '-'
//   - a non-alphanumeric first or last character becomes '0'
//   - the first run of two or more periods becomes '0'
//   - short results such as "b1" or "0" are returned as-is
//
// Keys only have to be non-empty after trimming.
package naming
