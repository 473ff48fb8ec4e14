package db

// timeLayout is how timestamps are stored. It matches SQLite's own datetime
// format so strftime and comparisons work on the raw column.
const timeLayout = "2006-01-02 15:04:05"
