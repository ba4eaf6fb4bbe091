// Package integration contains the store synchronization bounded context.
// It reconciles a local ERP with remote PrestaShop stores ("channels").
//
// Key concepts:
//   - Channel: one configured remote store, with per-direction sync cursors
//   - RemoteLink: durable (kind, channel, remote id) -> local id identity mapping
//   - RemoteStateMapping: per-channel translation of the remote order-state vocabulary
//   - RemoteClient: port for reading and updating remote records
//   - SyncError: error taxonomy deciding whether a failure aborts a pass or skips a record
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
