// Package report renders analysis results for people and for files.
//
// Conclusions turn the top-ranked rules into one-paragraph statements.
// The CSV writers produce the all-rules, conclusions, and itemset tables an
// analysis run saves, and the text writers produce the console report and
// dataset statistics. JSON output goes through the view types, which
// represent an infinite conviction as null.
package report
