package sqlxrepos

import (
	"context"
	"database/sql"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"

	"github.com/trezcool/ubao/core/student"
)

type studentRepository struct {
	db *sqlx.DB
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(db *sqlx.DB) *studentRepository {
	return &studentRepository{db: db}
}

func (repo *studentRepository) CheckEmailUniqueness(ctx context.Context, email string, excludedStudents ...student.Student) error {
	query := `SELECT COUNT(*) FROM student WHERE email = ?`
	args := []interface{}{email}

	if len(excludedStudents) > 0 {
		placeholders := make([]string, 0, len(excludedStudents))
		for _, std := range excludedStudents {
			placeholders = append(placeholders, "?")
			args = append(args, std.ID)
		}
		query += " AND id NOT IN (" + strings.Join(placeholders, ",") + ")"
	}

	var count int
	if err := repo.db.GetContext(ctx, &count, query, args...); err != nil {
		return errors.Wrap(err, "checking student email uniqueness")
	}
	if count > 0 {
		return student.ErrEmailExists
	}
	return nil
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	res, err := repo.db.ExecContext(ctx,
		`INSERT INTO student (name, email) VALUES (?, ?)`, std.Name, std.Email,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "inserting student")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return student.Student{}, errors.Wrap(err, "fetching student id")
	}
	std.ID = int(id)
	return std, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	res, err := repo.db.ExecContext(ctx,
		`UPDATE student SET name = ?, email = ? WHERE id = ?`, std.Name, std.Email, std.ID,
	)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return student.Student{}, errors.Wrap(err, "updating student")
	}
	if affected == 0 {
		return student.Student{}, student.ErrNotFound
	}
	return std, nil
}

func (repo *studentRepository) QueryAllStudents(ctx context.Context) ([]student.Student, error) {
	students := make([]student.Student, 0)
	err := repo.db.SelectContext(ctx, &students, `SELECT id, name, email FROM student ORDER BY id`)
	if err != nil {
		return nil, errors.Wrap(err, "querying students")
	}
	return students, nil
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id int) (student.Student, error) {
	var std student.Student
	err := repo.db.GetContext(ctx, &std, `SELECT id, name, email FROM student WHERE id = ?`, id)
	if err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student")
	}
	return std, nil
}

func (repo *studentRepository) GetStudentByEmail(ctx context.Context, email string) (student.Student, error) {
	var std student.Student
	err := repo.db.GetContext(ctx, &std, `SELECT id, name, email FROM student WHERE email = ?`, email)
	if err != nil {
		if err == sql.ErrNoRows {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, errors.Wrap(err, "getting student by email")
	}
	return std, nil
}
