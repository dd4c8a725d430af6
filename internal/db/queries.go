package db

import (
	"context"
)

const createUser = `insert or ignore into users (
    id, username, name, birthday, year_of_birth, gender, relationship, work, education
) values (?, ?, ?, ?, ?, ?, ?, ?, ?)`

type CreateUserParams = User

// CreateUser inserts a user unless one with the same id exists, existing
// rows are never overwritten.
func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) error {
	_, err := q.db.ExecContext(ctx, createUser,
		arg.ID,
		arg.Username,
		arg.Name,
		arg.Birthday,
		arg.YearOfBirth,
		arg.Gender,
		arg.Relationship,
		arg.Work,
		arg.Education,
	)
	return err
}

const createTime = `insert or ignore into times (user_id, time) values (?, ?)`

type CreateTimeParams = Time

func (q *Queries) CreateTime(ctx context.Context, arg CreateTimeParams) error {
	_, err := q.db.ExecContext(ctx, createTime, arg.UserID, arg.Time)
	return err
}

const getUser = `select
    id, username, name, birthday, year_of_birth, gender, relationship, work, education
from users where id = ?`

func (q *Queries) GetUser(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRowContext(ctx, getUser, id)
	var i User
	err := row.Scan(
		&i.ID,
		&i.Username,
		&i.Name,
		&i.Birthday,
		&i.YearOfBirth,
		&i.Gender,
		&i.Relationship,
		&i.Work,
		&i.Education,
	)
	return i, err
}

const listUsers = `select
    id, username, name, birthday, year_of_birth, gender, relationship, work, education
from users order by id`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.QueryContext(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		var i User
		err := rows.Scan(
			&i.ID,
			&i.Username,
			&i.Name,
			&i.Birthday,
			&i.YearOfBirth,
			&i.Gender,
			&i.Relationship,
			&i.Work,
			&i.Education,
		)
		if err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const listUserTimes = `select time from times where user_id = ? order by time`

func (q *Queries) ListUserTimes(ctx context.Context, userID int64) ([]int64, error) {
	rows, err := q.db.QueryContext(ctx, listUserTimes, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []int64
	for rows.Next() {
		var t int64
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countTimes = `select count(*) from times`

func (q *Queries) CountTimes(ctx context.Context) (int64, error) {
	row := q.db.QueryRowContext(ctx, countTimes)
	var count int64
	err := row.Scan(&count)
	return count, err
}
