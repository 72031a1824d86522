// package tasks coordinates mutations against the publication repository:
// uploads and deletes, with local preconditions, single-flight guarding, and
// view-model invalidation after success.
package tasks
