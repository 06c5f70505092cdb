// Package scan hosts the scheduled jobs: the reminder scanner and the daily
// unread-notification digest.
//
// Both jobs share the same failure policy: a record that cannot be resolved
// is skipped with a log line, a send that fails is counted and logged, and
// nothing short of a store outage at the very first query stops a run. A run
// never reports failure upward except through logs and the published summary.
package scan
