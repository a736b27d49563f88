package auth_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/tu-usuario/mercado-api/internal/application/auth"
	"github.com/tu-usuario/mercado-api/internal/application/dto"
	"github.com/tu-usuario/mercado-api/internal/domain"
	"github.com/tu-usuario/mercado-api/internal/domain/entity"
	pkgjwt "github.com/tu-usuario/mercado-api/pkg/jwt"
)

type fakeUserRepo struct {
	byEmail map[string]*entity.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byEmail: map[string]*entity.User{}}
}

func (r *fakeUserRepo) Create(u *entity.User) error {
	if _, ok := r.byEmail[u.Email]; ok {
		return domain.ErrEmailAlreadyExists
	}
	r.byEmail[u.Email] = u
	return nil
}
func (r *fakeUserRepo) GetByID(id string) (*entity.User, error) {
	for _, u := range r.byEmail {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, nil
}
func (r *fakeUserRepo) FindByEmail(email string) (*entity.User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return nil, nil
	}
	return u, nil
}

var testJWT = auth.JWTConfig{Secret: "test-secret", ExpMinutes: 60, Issuer: "mercado-api-test"}

func TestRegister_HasheaPasswordYAsignaStaff(t *testing.T) {
	repo := newFakeUserRepo()
	uc := auth.NewAuthUseCase(repo, testJWT)

	out, err := uc.RegisterUser(dto.RegisterRequest{
		Email:    "cajero@mercado.co",
		Password: "secreto123",
	})
	require.NoError(t, err)

	assert.Equal(t, entity.RoleStaff, out.Role, "sin rol explícito asigna staff")
	assert.Equal(t, "active", out.Status)

	stored := repo.byEmail["cajero@mercado.co"]
	require.NotNil(t, stored)
	assert.NotEqual(t, "secreto123", stored.PasswordHash, "el password nunca se guarda plano")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("secreto123")))
}

func TestRegister_EmailDuplicadoRechazado(t *testing.T) {
	uc := auth.NewAuthUseCase(newFakeUserRepo(), testJWT)

	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "a@b.co", Password: "x12345"})
	require.NoError(t, err)

	_, err = uc.RegisterUser(dto.RegisterRequest{Email: "a@b.co", Password: "y67890"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyExists)
}

func TestRegister_RolDesconocidoRechazado(t *testing.T) {
	uc := auth.NewAuthUseCase(newFakeUserRepo(), testJWT)

	_, err := uc.RegisterUser(dto.RegisterRequest{
		Email:    "a@b.co",
		Password: "x12345",
		Role:     "superadmin",
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestLogin_TokenLlevaUserIDYRol(t *testing.T) {
	repo := newFakeUserRepo()
	uc := auth.NewAuthUseCase(repo, testJWT)

	created, err := uc.RegisterUser(dto.RegisterRequest{
		Email:    "admin@mercado.co",
		Password: "secreto123",
		Role:     entity.RoleAdmin,
	})
	require.NoError(t, err)

	out, err := uc.Login(dto.LoginRequest{Email: "admin@mercado.co", Password: "secreto123"})
	require.NoError(t, err)
	require.NotEmpty(t, out.Token)

	userID, role, err := pkgjwt.Parse(testJWT.Secret, out.Token)
	require.NoError(t, err)
	assert.Equal(t, created.ID, userID, "el claim user_id es el actor del ledger")
	assert.Equal(t, entity.RoleAdmin, role)
}

func TestLogin_PasswordIncorrectoRetornaUnauthorized(t *testing.T) {
	uc := auth.NewAuthUseCase(newFakeUserRepo(), testJWT)

	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "a@b.co", Password: "correcto1"})
	require.NoError(t, err)

	_, err = uc.Login(dto.LoginRequest{Email: "a@b.co", Password: "incorrecto"})
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestLogin_UsuarioInexistenteRetornaNotFound(t *testing.T) {
	uc := auth.NewAuthUseCase(newFakeUserRepo(), testJWT)

	_, err := uc.Login(dto.LoginRequest{Email: "nadie@b.co", Password: "x"})
	assert.ErrorIs(t, err, domain.ErrUserNotFound)
}

func TestLogin_UsuarioInactivoRetornaForbidden(t *testing.T) {
	repo := newFakeUserRepo()
	uc := auth.NewAuthUseCase(repo, testJWT)

	_, err := uc.RegisterUser(dto.RegisterRequest{Email: "ex@b.co", Password: "secreto123"})
	require.NoError(t, err)
	repo.byEmail["ex@b.co"].Status = "inactive"

	_, err = uc.Login(dto.LoginRequest{Email: "ex@b.co", Password: "secreto123"})
	assert.ErrorIs(t, err, domain.ErrForbidden)
}
