// package collection holds the publication list view model: a load state
// machine bound to a query, with in-flight deduplication and a sequence
// guard that drops responses for superseded queries.
package collection
