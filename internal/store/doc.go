// Package store is the queryable document store behind the reminder jobs.
//
// It exposes:
//   - Cross-user scan of notification-preference records
//   - Point lookups of users and (namespaced) events
//   - Unread in-app notifications for the daily digest
//   - Optional sent markers (opt-in reminder dedup)
//   - Audit log appends (one row per job run)
//
// The scan order of ListRecords is whatever the backend yields; callers must
// not depend on it.
package store
