// Package metrics exposes Prometheus collectors for object store operations.
//
// StorageMetrics implements the Observer interface consumed by the
// objectstore client. Every call records one operation with its outcome,
// its duration and, when known, the number of payload bytes moved.
//
// # Series
//
//   - objstore_client_ops_total{op,result}
//   - objstore_client_bytes_total{op}
//   - objstore_client_op_duration_seconds{op}
//   - objstore_client_deleted_keys_total
//
// # Usage
//
//	reg := prometheus.NewRegistry()
//	m := metrics.NewStorageMetrics(reg)
//	client, _ := objectstore.New(backend, objectstore.WithObserver(m))
package metrics
