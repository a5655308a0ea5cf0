package errors

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/lib/pq"
)

// Report is the loggable breakdown of a failed operation: the outermost
// message, the typed code if one is in the chain, every cause down to the
// root, and any database driver detail buried along the way.
type Report struct {
	Summary string   `json:"summary"`
	Code    Code     `json:"code,omitempty"`
	Causes  []string `json:"causes,omitempty"`
	DB      *DBFault `json:"db,omitempty"`
}

// DBFault holds the driver-level fields of a Postgres failure. Both pgx and
// lib/pq are in play, so either error shape maps onto it.
type DBFault struct {
	SQLState   string `json:"sql_state,omitempty"`
	Constraint string `json:"constraint,omitempty"`
	Table      string `json:"table,omitempty"`
	Column     string `json:"column,omitempty"`
	Detail     string `json:"detail,omitempty"`
	Message    string `json:"message,omitempty"`
}

// Describe flattens an error into a Report suitable for structured logging.
func Describe(err error) Report {
	if err == nil {
		return Report{}
	}

	report := Report{
		Summary: err.Error(),
	}

	if typed := As(err); typed != nil {
		report.Code = typed.Code()
	}

	for cause := err; cause != nil; cause = errors.Unwrap(cause) {
		report.Causes = append(report.Causes, fmt.Sprintf("%T: %v", cause, cause))
	}

	report.DB = dbFault(err)

	return report
}

func dbFault(err error) *DBFault {
	var pgxErr *pgconn.PgError
	if errors.As(err, &pgxErr) {
		return &DBFault{
			SQLState:   pgxErr.Code,
			Constraint: pgxErr.ConstraintName,
			Table:      pgxErr.TableName,
			Column:     pgxErr.ColumnName,
			Detail:     pgxErr.Detail,
			Message:    pgxErr.Message,
		}
	}

	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return &DBFault{
			SQLState:   string(pqErr.Code),
			Constraint: pqErr.Constraint,
			Table:      pqErr.Table,
			Column:     pqErr.Column,
			Detail:     pqErr.Detail,
			Message:    pqErr.Message,
		}
	}

	return nil
}
