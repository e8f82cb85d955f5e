/*
Package sync implements the directory reconciliation algorithms that keep the
setup catalog consistent.

There are three algorithms, each with a distinct safety contract:

1) Mirror -- one-way sync of a source tree onto a destination tree. This is
   the only algorithm that deletes, and it only ever deletes from the
   destination. Files are compared by content fingerprint and copied when
   they differ.
2) CopyMissing -- one-way, additive-only propagation. A file that already
   exists at the destination is never touched, regardless of its contents.
   This is how driver folders are seeded without clobbering personal edits.
3) Bidirectional -- two-way merge of peer trees. Files present in only one
   tree are propagated to the other; files present in both with different
   contents are resolved in favor of the later modification time.

All algorithms walk trees depth first and synchronously. A failure on a
single file is logged and skipped; it never aborts the surrounding walk, so a
run that hits transient errors still converges as far as it can and the next
run picks up the rest.
*/
package sync
