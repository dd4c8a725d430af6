package store

import (
	"context"
	"database/sql"
	"errors"
	"fbwatch/internal/components/assert"
	"fbwatch/internal/components/chrono"
	"fbwatch/internal/components/telemetry"
	"fbwatch/internal/db"
	"fbwatch/pkg/migrations"
	"fmt"
	"time"
)

const (
	report_db_query  = "db.query"
	report_save      = "store.save"
	report_times_len = "store.times"
)

var ErrInvalidRecord = errors.New("invalid record")

// UserRecord is a tracked user ready to be persisted, Id is always the
// numeric profile id.
type UserRecord struct {
	Id           int64       `json:"id"`
	Username     string      `json:"username,omitempty"`
	Name         string      `json:"name,omitempty"`
	Birthday     string      `json:"birthday,omitempty"`
	YearOfBirth  int         `json:"year_of_birth,omitempty"`
	Gender       string      `json:"gender,omitempty"`
	Relationship string      `json:"relationship,omitempty"`
	Work         string      `json:"work,omitempty"`
	Education    string      `json:"education,omitempty"`
	Times        []time.Time `json:"times"`
}

func (r UserRecord) validate() error {
	if r.Id <= 0 {
		return fmt.Errorf("%w: id %d", ErrInvalidRecord, r.Id)
	}
	if r.Times == nil {
		return fmt.Errorf("%w: user %d has no list of times", ErrInvalidRecord, r.Id)
	}
	return nil
}

// Store persists users and their last active times. User rows are written
// once and never updated, times are appended and duplicates are ignored.
type Store struct {
	db     *sql.DB
	qry    *db.Queries
	makeTx db.MakeTx
	time   chrono.API
	tel    telemetry.API
}

// Open opens (and migrates) a sqlite file, ":memory:" or a libsql url.
func Open(location string, time chrono.API, tel telemetry.API) (Store, error) {
	database, err := migrations.OpenAndMigrateDB(db.Schema, location)
	if err != nil {
		return Store{}, err
	}
	return NewStore(database, time, tel), nil
}

func NewStore(database *sql.DB, time chrono.API, tel telemetry.API) Store {
	assert.NotNil(database)
	assert.NotNil(time)
	assert.NotNil(tel)

	return Store{
		db:     database,
		qry:    db.New(database),
		makeTx: db.NewMakeTx(database),
		time:   time,
		tel:    telemetry.NewScopedAPI("store", tel),
	}
}

func (s Store) Close() error {
	return s.db.Close()
}

// Save writes every record in a single transaction. When any record is
// invalid nothing is written.
func (s Store) Save(ctx context.Context, records []UserRecord) error {
	for _, record := range records {
		err := record.validate()
		if err != nil {
			s.tel.ReportBroken(report_save, err)
			return err
		}
	}

	tx, discard, commit, err := s.makeTx(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("make tx: %w", err))
		return err
	}
	defer discard()

	for _, record := range records {
		for _, t := range record.Times {
			param := db.CreateTimeParams{UserID: record.Id, Time: t.Unix()}
			err := tx.CreateTime(ctx, param)
			if err != nil {
				s.tel.ReportBroken(report_db_query, err, "CreateTime", param)
				return err
			}
		}

		param := userRow(record)
		err := tx.CreateUser(ctx, param)
		if err != nil {
			s.tel.ReportBroken(report_db_query, err, "CreateUser", param.ID)
			return err
		}
	}

	err = commit()
	if err != nil {
		s.tel.ReportBroken(report_db_query, fmt.Errorf("commit: %w", err))
		return err
	}

	count, err := s.qry.CountTimes(ctx)
	if err != nil {
		s.tel.ReportWarning(report_db_query, err, "CountTimes")
		return nil
	}
	s.tel.ReportCount(report_times_len, count)
	return nil
}

// Users reads back every stored user with its times, ordered by id.
func (s Store) Users(ctx context.Context) ([]UserRecord, error) {
	rows, err := s.qry.ListUsers(ctx)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "ListUsers")
		return nil, err
	}

	records := make([]UserRecord, 0, len(rows))
	for _, row := range rows {
		times, err := s.Times(ctx, row.ID)
		if err != nil {
			return nil, err
		}
		record := userRecord(row)
		record.Times = times
		records = append(records, record)
	}
	return records, nil
}

// Times returns the stored times of a user in ascending order.
func (s Store) Times(ctx context.Context, userId int64) ([]time.Time, error) {
	unix, err := s.qry.ListUserTimes(ctx, userId)
	if err != nil {
		s.tel.ReportBroken(report_db_query, err, "ListUserTimes", userId)
		return nil, err
	}
	times := make([]time.Time, len(unix))
	for i, t := range unix {
		times[i] = time.Unix(t, 0).In(s.time.Location())
	}
	return times, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}

func userRow(r UserRecord) db.User {
	return db.User{
		ID:           r.Id,
		Username:     nullString(r.Username),
		Name:         nullString(r.Name),
		Birthday:     nullString(r.Birthday),
		YearOfBirth:  sql.NullInt64{Int64: int64(r.YearOfBirth), Valid: r.YearOfBirth != 0},
		Gender:       nullString(r.Gender),
		Relationship: nullString(r.Relationship),
		Work:         nullString(r.Work),
		Education:    nullString(r.Education),
	}
}

func userRecord(u db.User) UserRecord {
	return UserRecord{
		Id:           u.ID,
		Username:     u.Username.String,
		Name:         u.Name.String,
		Birthday:     u.Birthday.String,
		YearOfBirth:  int(u.YearOfBirth.Int64),
		Gender:       u.Gender.String,
		Relationship: u.Relationship.String,
		Work:         u.Work.String,
		Education:    u.Education.String,
	}
}
