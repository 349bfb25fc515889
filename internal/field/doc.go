// Package field binds display fields to paths in the content tree.
//
// A Text or Image is declared with a path and a default. Resolve computes the
// effective value from a tree snapshot: the override when one exists,
// otherwise the default. Mount keeps a Binding current by re-reading the
// whole tree on every change notification.
//
// Editing goes through Activate, which refuses with ErrAuthRequired until
// the session passes the editor gate. Editors buffer changes locally;
// Commit writes through the store and Discard drops the buffer.
//
// Image captions live at the ".description" sibling of the ".imageUrl"
// path. ImageEditor.Commit writes both in a single store write.
package field
