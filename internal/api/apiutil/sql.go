package apiutil

import "database/sql"

// ToNullInt64 maps the zero id to NULL; optional foreign keys come in as 0.
func ToNullInt64(id int64) sql.NullInt64 {
	if id == 0 {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: id, Valid: true}
}
