// Package changes records what happened to a document while mutations were
// applied to it.
//
// A [Recorder] receives document creation and deletion events from the
// mutation engine and field level modifications from the patch executor.
// [ChangeSet] is the default, append-only recorder. [Diff] computes field
// level changes between two versions of a document for operations that
// replace whole documents at once.
package changes
