// package upload models the publication submission form: the draft and its
// conditional field-requiredness rules as pure functions, and the submission
// lifecycle as a small state machine kept apart from any I/O.
package upload
