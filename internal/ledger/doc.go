// Package ledger derives the analytical view of a household ledger:
// transfer detection, Income/Expense/Transfer classification, monthly
// summaries and category buckets with a synthesized Savings entry.
//
// Every function is a pure computation over the snapshot it is given.
// Callers re-read the full record set after any store mutation and run
// the pipeline again; nothing here keeps derived state between calls.
package ledger
