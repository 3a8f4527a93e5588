package student

import (
	"context"
	"errors"

	"github.com/trezcool/ubao/core"
)

var (
	// errors
	ErrNotFound    = errors.New("student not found")
	ErrEmailExists = errors.New("a student with this email already exists")
)

type (
	Repository interface {
		CheckEmailUniqueness(ctx context.Context, email string, excludedStudents ...Student) error
		CreateStudent(ctx context.Context, std Student) (Student, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		QueryAllStudents(ctx context.Context) ([]Student, error)
		GetStudentByID(ctx context.Context, id int) (Student, error)
		GetStudentByEmail(ctx context.Context, email string) (Student, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (svc *Service) CheckEmailUniqueness(email string, exclStudents ...Student) error {
	if err := svc.repo.CheckEmailUniqueness(context.Background(), email, exclStudents...); err != nil {
		if errors.Is(err, ErrEmailExists) {
			return core.NewValidationError(err, core.FieldError{Field: "email", Error: err.Error()})
		}
		return err
	}
	return nil
}

func (svc *Service) Create(ctx context.Context, ns NewStudent) (Student, error) {
	if err := ns.Validate(svc); err != nil {
		return Student{}, err
	}
	return svc.repo.CreateStudent(ctx, Student{Name: ns.Name, Email: ns.Email})
}

// UpdateOrCreate registers a student, or renames the existing one matching the email.
// The email is the operator-facing identity; registering it twice must not duplicate.
func (svc *Service) UpdateOrCreate(ctx context.Context, ns NewStudent) (Student, error) {
	ns.Name = core.CleanString(ns.Name)
	ns.Email = core.CleanString(ns.Email, true /* lower */)

	std, err := svc.repo.GetStudentByEmail(ctx, ns.Email)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			return Student{}, err
		}
		return svc.Create(ctx, ns)
	}
	std.Name = ns.Name
	return svc.repo.UpdateStudent(ctx, std)
}

func (svc *Service) QueryAll(ctx context.Context) ([]Student, error) {
	return svc.repo.QueryAllStudents(ctx)
}

func (svc *Service) GetByID(ctx context.Context, id int) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *Service) GetByEmail(ctx context.Context, email string) (Student, error) {
	return svc.repo.GetStudentByEmail(ctx, core.CleanString(email, true /* lower */))
}
