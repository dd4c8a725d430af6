package db

import (
	"database/sql"
)

type User struct {
	ID           int64
	Username     sql.NullString
	Name         sql.NullString
	Birthday     sql.NullString
	YearOfBirth  sql.NullInt64
	Gender       sql.NullString
	Relationship sql.NullString
	Work         sql.NullString
	Education    sql.NullString
}

type Time struct {
	UserID int64
	Time   int64
}
