package driven

import "github.com/ericfisherdev/localreview/internal/domain/model"

// ThreadView defines the driven port through which the comment service
// materializes comments into visual threads. The service never touches a
// display surface directly; any implementation of this capability set,
// including a pure in-memory double, is a valid substitute.
//
// Threads are keyed by model.ThreadKey(file, commentID), so thread identity
// is derivable purely from stored data.
type ThreadView interface {
	// CreateThread materializes a new visual thread for the comment.
	CreateThread(c model.Comment)
	// PopulateThread attaches comment data to a pre-existing placeholder
	// thread under the given key, creating the entry if the surface has
	// no placeholder. Existing view-only state for the key is preserved.
	PopulateThread(key string, c model.Comment)
	// DisposeThread removes the thread with the given key, if present.
	DisposeThread(key string)
	// DisposeAllThreads removes every thread across all files.
	DisposeAllThreads()
	// DisposeThreadsForFile removes every thread belonging to file.
	DisposeThreadsForFile(file string)
	// AddReplyToThread appends a reply to an existing thread without
	// rebuilding it, reporting whether the thread was found.
	AddReplyToThread(key string, reply model.Reply) bool
	// UpdateThreadWithComment replaces the thread's comment data in
	// place, preserving view-only state. Reports whether the thread was
	// found.
	UpdateThreadWithComment(key string, c model.Comment) bool
	// ThreadKeysForFile returns the keys of all threads currently
	// displayed for file.
	ThreadKeysForFile(file string) []string
	// ShowInfo surfaces an informational notification.
	ShowInfo(msg string)
	// ShowError surfaces an error notification.
	ShowError(msg string)
}
