// Package store persists processed videos in SQLite.
//
// A video is "processed" when its id has a row; the pipeline checks Exists
// before doing any work. Rows are written only through Upsert, which reads
// and writes inside one transaction, and are never deleted. Open holds an
// exclusive file lock next to the database so two runs cannot interleave.
package store
