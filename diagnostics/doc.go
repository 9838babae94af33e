/*
Package diagnostics records why the search accepted or rejected each branch.

A ServiceReasons belongs to one search run. The engine feeds it and never
reads it back:

	diag := diagnostics.NewServiceReasons(detailed)
	diag.IncrementTotalChecked()
	diag.RecordState(branch)
	diag.RecordReason(diagnostics.ServiceReason{Code: traversal.HigherCost, ...})

Once the run ends, Snapshot freezes the counters. Snapshots of parallel
probes are combined with Merge; the result can be queried per reason code,
per node and per state type, rendered as JSON or archived (see the archive
subpackage).
*/
package diagnostics
