package user

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/apperr"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/lib/password"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/models"
	"github.com/FSDTeam-SAA/lharris5324-backend/internal/storage"
)

type RepoMock struct{ mock.Mock }

func (m *RepoMock) CreateUser(ctx context.Context, u *models.User) (*models.User, error) {
	args := m.Called(ctx, u)
	if r, ok := args.Get(0).(*models.User); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) GetUser(ctx context.Context, id string) (*models.User, error) {
	args := m.Called(ctx, id)
	if r, ok := args.Get(0).(*models.User); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if r, ok := args.Get(0).(*models.User); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) ListUsers(ctx context.Context, f models.UserFilter, page *models.Page) ([]*models.User, error) {
	args := m.Called(ctx, f, page)
	if r, ok := args.Get(0).([]*models.User); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) CountUsers(ctx context.Context, f models.UserFilter) (int, error) {
	args := m.Called(ctx, f)
	return args.Int(0), args.Error(1)
}

func (m *RepoMock) UpdateUser(ctx context.Context, u *models.User) (*models.User, error) {
	args := m.Called(ctx, u)
	if r, ok := args.Get(0).(*models.User); ok {
		return r, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *RepoMock) DeleteUser(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func newTestService(repo *RepoMock) *Service {
	svc := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	svc.now = func() time.Time { return time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc
}

func TestService_List(t *testing.T) {
	repo := new(RepoMock)
	f := models.UserFilter{Role: models.RoleStaff, Search: "ann"}
	page := models.NewPage(2, 5)

	repo.On("ListUsers", mock.Anything, f, &page).Return([]*models.User{
		{ID: "1", Fullname: "Ann", Email: "ann@x.io", Role: models.RoleStaff, PasswordHash: "h"},
	}, nil).Once()
	repo.On("CountUsers", mock.Anything, f).Return(7, nil).Once()

	svc := newTestService(repo)
	users, p, err := svc.List(context.Background(), models.UserFilter{Role: models.RoleStaff, Search: "  ann "}, page)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Ann", users[0].Fullname)
	assert.Equal(t, models.Pagination{CurrentPage: 2, TotalPages: 2, TotalItems: 7, ItemsPerPage: 5}, p)
	repo.AssertExpectations(t)
}

func TestService_ListByRoleAndStatusAndStaff(t *testing.T) {
	repo := new(RepoMock)
	staff := []*models.User{{ID: "s1", Fullname: "Sam", Role: models.RoleStaff, Status: models.UserActive}}
	repo.On("ListUsers", mock.Anything, models.UserFilter{Role: models.RoleStaff, Status: models.UserActive}, (*models.Page)(nil)).
		Return(staff, nil).Once()
	repo.On("ListUsers", mock.Anything, models.UserFilter{Role: models.RoleStaff}, (*models.Page)(nil)).
		Return(staff, nil).Once()

	svc := newTestService(repo)

	byRole, err := svc.ListByRoleAndStatus(context.Background(), models.RoleStaff, models.UserActive)
	require.NoError(t, err)
	assert.Equal(t, "s1", byRole[0].ID)

	public, err := svc.ListStaff(context.Background())
	require.NoError(t, err)
	require.Len(t, public, 1)
	assert.Equal(t, "Sam", public[0].Fullname)
	repo.AssertExpectations(t)
}

func TestService_Create(t *testing.T) {
	req := models.CreateUserRequest{Fullname: " Ann ", Email: "Ann@X.io", Password: "secret1", Role: models.RoleClient}

	t.Run("success", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByEmail", mock.Anything, "ann@x.io").Return(nil, storage.ErrNotFound).Once()
		repo.On("CreateUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
			return u.Fullname == "Ann" &&
				u.Status == models.UserActive &&
				!u.IsVerified &&
				len(u.Sessions) == 1 &&
				u.LastActive != nil &&
				password.CompareHash(u.PasswordHash, "secret1") == nil
		})).Return(&models.User{ID: "new", Role: models.RoleClient}, nil).Once()

		u, err := newTestService(repo).Create(context.Background(), req)
		require.NoError(t, err)
		assert.Equal(t, "new", u.ID)
		repo.AssertExpectations(t)
	})

	t.Run("blank fullname rejected", func(t *testing.T) {
		repo := new(RepoMock)

		_, err := newTestService(repo).Create(context.Background(),
			models.CreateUserRequest{Fullname: "   ", Email: "ann@x.io", Password: "secret1", Role: models.RoleClient})
		appErr, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, apperr.KindValidation, appErr.Kind)
		assert.Equal(t, MsgRequiredFields, appErr.Message)
		repo.AssertNotCalled(t, "GetUserByEmail", mock.Anything, mock.Anything)
		repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("duplicate email pre-check", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByEmail", mock.Anything, "ann@x.io").Return(&models.User{ID: "old"}, nil).Once()

		_, err := newTestService(repo).Create(context.Background(), req)
		appErr, ok := apperr.As(err)
		require.True(t, ok)
		assert.Equal(t, apperr.KindConflict, appErr.Kind)
		assert.Equal(t, MsgUserExists, appErr.Message)
		repo.AssertNotCalled(t, "CreateUser", mock.Anything, mock.Anything)
	})

	t.Run("duplicate email race", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByEmail", mock.Anything, "ann@x.io").Return(nil, storage.ErrNotFound).Once()
		repo.On("CreateUser", mock.Anything, mock.Anything).Return(nil, storage.ErrConflict).Once()

		_, err := newTestService(repo).Create(context.Background(), req)
		assert.True(t, apperr.IsKind(err, apperr.KindConflict))
	})

	t.Run("lookup failure", func(t *testing.T) {
		repo := new(RepoMock)
		repo.On("GetUserByEmail", mock.Anything, "ann@x.io").Return(nil, errors.New("boom")).Once()

		_, err := newTestService(repo).Create(context.Background(), req)
		require.Error(t, err)
		_, ok := apperr.As(err)
		assert.False(t, ok)
	})
}

func TestService_Update(t *testing.T) {
	existing := func() *models.User {
		return &models.User{ID: "u1", Fullname: "Old", Email: "old@x.io", Role: models.RoleClient, Status: models.UserActive, PasswordHash: "keep"}
	}

	tests := []struct {
		name     string
		req      models.UpdateUserRequest
		setup    func(repo *RepoMock)
		wantKind apperr.Kind
		wantMsg  string
	}{
		{
			name:     "missing fullname",
			req:      models.UpdateUserRequest{Email: "a@x.io"},
			setup:    func(*RepoMock) {},
			wantKind: apperr.KindValidation,
			wantMsg:  MsgRequiredFields,
		},
		{
			name: "not found",
			req:  models.UpdateUserRequest{Fullname: "N", Email: "a@x.io"},
			setup: func(repo *RepoMock) {
				repo.On("GetUser", mock.Anything, "u1").Return(nil, storage.ErrNotFound).Once()
			},
			wantKind: apperr.KindNotFound,
			wantMsg:  MsgUserNotFound,
		},
		{
			name: "invalid role",
			req:  models.UpdateUserRequest{Fullname: "N", Email: "a@x.io", Role: "root"},
			setup: func(repo *RepoMock) {
				repo.On("GetUser", mock.Anything, "u1").Return(existing(), nil).Once()
			},
			wantKind: apperr.KindValidation,
			wantMsg:  MsgInvalidRole,
		},
		{
			name: "duplicate email",
			req:  models.UpdateUserRequest{Fullname: "N", Email: "taken@x.io"},
			setup: func(repo *RepoMock) {
				repo.On("GetUser", mock.Anything, "u1").Return(existing(), nil).Once()
				repo.On("UpdateUser", mock.Anything, mock.Anything).Return(nil, storage.ErrConflict).Once()
			},
			wantKind: apperr.KindConflict,
			wantMsg:  MsgUserExists,
		},
		{
			name: "merges provided fields",
			req:  models.UpdateUserRequest{Fullname: "New", Email: "New@x.io", Status: models.UserSuspended},
			setup: func(repo *RepoMock) {
				repo.On("GetUser", mock.Anything, "u1").Return(existing(), nil).Once()
				repo.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
					return u.Fullname == "New" && u.Email == "new@x.io" &&
						u.Role == models.RoleClient && u.Status == models.UserSuspended &&
						u.PasswordHash == "keep"
				})).Return(&models.User{ID: "u1", Fullname: "New"}, nil).Once()
			},
		},
		{
			name: "rehashes new password",
			req:  models.UpdateUserRequest{Fullname: "N", Email: "a@x.io", Password: "another1"},
			setup: func(repo *RepoMock) {
				repo.On("GetUser", mock.Anything, "u1").Return(existing(), nil).Once()
				repo.On("UpdateUser", mock.Anything, mock.MatchedBy(func(u *models.User) bool {
					return password.CompareHash(u.PasswordHash, "another1") == nil
				})).Return(&models.User{ID: "u1"}, nil).Once()
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(RepoMock)
			tt.setup(repo)

			u, err := newTestService(repo).Update(context.Background(), "u1", tt.req)
			if tt.wantKind != 0 {
				appErr, ok := apperr.As(err)
				require.True(t, ok, "expected apperr, got %v", err)
				assert.Equal(t, tt.wantKind, appErr.Kind)
				assert.Equal(t, tt.wantMsg, appErr.Message)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "u1", u.ID)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestService_Delete(t *testing.T) {
	repo := new(RepoMock)
	repo.On("DeleteUser", mock.Anything, "u1").Return(nil).Once()
	repo.On("DeleteUser", mock.Anything, "missing").Return(storage.ErrNotFound).Once()

	svc := newTestService(repo)
	require.NoError(t, svc.Delete(context.Background(), "u1"))

	err := svc.Delete(context.Background(), "missing")
	assert.True(t, apperr.IsKind(err, apperr.KindNotFound))
	repo.AssertExpectations(t)
}
