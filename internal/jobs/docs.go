// Package jobs provides scheduled background tasks for the fulfillment engine.
//
// Jobs are cron-based (github.com/robfig/cron/v3, seconds field enabled):
//
//  1. ReconcileAssignmentsJob removes assignment records left behind by delivered
//     sub-orders or deleted orders.
//  2. ExpireBroadcastsJob withdraws offers that no worker accepted within the
//     broadcast TTL, so the shop owner can broadcast again.
//
// Usage:
//
//	jm := jobs.NewJobManager(reconcileHandler, expireHandler, jobs.Schedules{
//		Reconcile:    "@every 1m",
//		Expire:       "@every 30s",
//		BroadcastTTL: 10 * time.Minute,
//	}, jobMetrics, logger)
//	if err := jm.StartAll(); err != nil {
//		return err
//	}
//	defer jm.StopAll()
//
// A failing run is logged and counted in job_failure_total; the schedule keeps going.
package jobs
