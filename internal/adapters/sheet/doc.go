// Package sheet reads and writes the tabular files moderators exchange
//
// Design choices:
// - XLSX goes through excelize; only the first sheet is read, like the exporters produce.
// - CSV goes through encoding/csv with lazy quotes and ragged rows allowed.
// - Rows are keyed by header text; repeated headers get a _1, _2 suffix.
// - Fully blank rows are skipped but every record keeps its real sheet line number.
package sheet
