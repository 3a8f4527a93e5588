package student_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/trezcool/ubao/core"
	"github.com/trezcool/ubao/core/student"
	inmemdb "github.com/trezcool/ubao/storage/database/inmem"
	testutil "github.com/trezcool/ubao/tests"
)

func setup(t *testing.T) (*student.Service, student.Repository) {
	t.Helper()

	db, err := inmemdb.Open()
	require.NoError(t, err)
	repo := inmemdb.NewStudentRepository(db)
	return student.NewService(repo), repo
}

func TestService_Create(t *testing.T) {
	svc, _ := setup(t)
	ctx := context.Background()

	std, err := svc.Create(ctx, student.NewStudent{Name: " Ann ", Email: "A@X.com "})
	require.NoError(t, err)
	assert.NotZero(t, std.ID)
	assert.Equal(t, "Ann", std.Name)
	assert.Equal(t, "a@x.com", std.Email)
}

func TestService_Create_duplicateEmail(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	testutil.CreateStudent(t, repo, "Ann", "a@x.com")

	_, err := svc.Create(ctx, student.NewStudent{Name: "Another Ann", Email: "a@x.com"})
	require.Error(t, err)
	vErr, ok := err.(*core.ValidationError)
	require.True(t, ok, "want *core.ValidationError, got %T", err)
	require.Len(t, vErr.Fields, 1)
	assert.Equal(t, "email", vErr.Fields[0].Field)
}

func TestService_Create_invalid(t *testing.T) {
	svc, _ := setup(t)

	tests := []struct {
		name string
		ns   student.NewStudent
	}{
		{name: "missing name", ns: student.NewStudent{Email: "a@x.com"}},
		{name: "missing email", ns: student.NewStudent{Name: "Ann"}},
		{name: "bad email", ns: student.NewStudent{Name: "Ann", Email: "not-an-email"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.ns)
			assert.Error(t, err)
		})
	}
}

func TestService_UpdateOrCreate(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	std, err := svc.UpdateOrCreate(ctx, student.NewStudent{Name: "Ann", Email: "a@x.com"})
	require.NoError(t, err)

	// same email again renames instead of duplicating
	updated, err := svc.UpdateOrCreate(ctx, student.NewStudent{Name: "Ann B.", Email: "a@x.com"})
	require.NoError(t, err)
	assert.Equal(t, std.ID, updated.ID)
	assert.Equal(t, "Ann B.", updated.Name)

	students, err := repo.QueryAllStudents(ctx)
	require.NoError(t, err)
	assert.Len(t, students, 1)
}

func TestService_GetByID(t *testing.T) {
	svc, repo := setup(t)
	ctx := context.Background()

	std := testutil.CreateStudent(t, repo, "Ann", "a@x.com")

	got, err := svc.GetByID(ctx, std.ID)
	require.NoError(t, err)
	assert.Equal(t, std, got)

	_, err = svc.GetByID(ctx, 404)
	assert.Equal(t, student.ErrNotFound, err)
}
