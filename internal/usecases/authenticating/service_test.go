package authenticating

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vfg2006/mar-forecast-api/infrastructure/repository/mocks"
	"github.com/vfg2006/mar-forecast-api/internal/config"
	"github.com/vfg2006/mar-forecast-api/internal/domain"
	"go.uber.org/mock/gomock"
	"golang.org/x/crypto/bcrypt"
)

func authTestConfig() *config.Config {
	return &config.Config{
		SecretKey: "chave_de_teste",
	}
}

func hashPassword(t *testing.T, password string) string {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return string(hash)
}

func TestService_LoginUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUserRepo := mocks.NewMockUserRepository(ctrl)
	service := &Service{
		userRepo: mockUserRepo,
		cfg:      authTestConfig(),
	}

	t.Run("Deve autenticar e retornar um token com as claims do usuário", func(t *testing.T) {
		user := &domain.User{
			ID:           7,
			Name:         "Ana",
			Lastname:     "Souza",
			Email:        "ana@example.com",
			PasswordHash: hashPassword(t, "Senha@123"),
			Active:       true,
			RoleID:       2,
		}

		mockUserRepo.EXPECT().GetUserByEmail("ana@example.com").Return(user, nil)

		token, err := service.LoginUser("ana@example.com", "Senha@123")

		assert.NoError(t, err)
		require.NotEmpty(t, token)

		claims, err := service.ValidateToken(token)
		require.NoError(t, err)
		assert.Equal(t, 7, claims.UserID)
		assert.Equal(t, "ana@example.com", claims.UserEmail)
		assert.Equal(t, 2, claims.UserRoleID)
	})

	t.Run("Deve normalizar o email antes de consultar o banco", func(t *testing.T) {
		user := &domain.User{
			ID:           7,
			Email:        "ana@example.com",
			PasswordHash: hashPassword(t, "Senha@123"),
			Active:       true,
		}

		mockUserRepo.EXPECT().GetUserByEmail("ana@example.com").Return(user, nil)

		_, err := service.LoginUser("  Ana@Example.COM ", "Senha@123")

		assert.NoError(t, err)
	})

	t.Run("Deve rejeitar credenciais vazias", func(t *testing.T) {
		_, err := service.LoginUser("", "")

		assert.ErrorIs(t, err, ErrMissingRequiredData)
	})

	t.Run("Deve rejeitar usuário inexistente", func(t *testing.T) {
		mockUserRepo.EXPECT().GetUserByEmail("nao.existe@example.com").Return(nil, nil)

		_, err := service.LoginUser("nao.existe@example.com", "Senha@123")

		assert.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("Deve rejeitar conta desativada e identificar o usuário no erro", func(t *testing.T) {
		user := &domain.User{
			ID:           9,
			Email:        "inativo@example.com",
			PasswordHash: hashPassword(t, "Senha@123"),
			Active:       false,
		}

		mockUserRepo.EXPECT().GetUserByEmail("inativo@example.com").Return(user, nil)

		_, err := service.LoginUser("inativo@example.com", "Senha@123")

		assert.ErrorIs(t, err, ErrUserDisabled)

		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, 9, authErr.UserID)
	})

	t.Run("Deve rejeitar senha incorreta", func(t *testing.T) {
		user := &domain.User{
			ID:           7,
			Email:        "ana@example.com",
			PasswordHash: hashPassword(t, "Senha@123"),
			Active:       true,
		}

		mockUserRepo.EXPECT().GetUserByEmail("ana@example.com").Return(user, nil)

		_, err := service.LoginUser("ana@example.com", "senha_errada")

		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("Deve embrulhar erro do banco com o código de operação", func(t *testing.T) {
		mockUserRepo.EXPECT().GetUserByEmail("ana@example.com").Return(nil, errors.New("conexão recusada"))

		_, err := service.LoginUser("ana@example.com", "Senha@123")

		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, "SRV_002", authErr.Code)
	})
}

func TestService_ValidateToken(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUserRepo := mocks.NewMockUserRepository(ctrl)

	t.Run("Deve rejeitar token assinado com outra chave", func(t *testing.T) {
		issuer := &Service{
			userRepo: mockUserRepo,
			cfg:      &config.Config{SecretKey: "chave_do_emissor"},
		}
		validator := &Service{
			userRepo: mockUserRepo,
			cfg:      &config.Config{SecretKey: "outra_chave"},
		}

		user := &domain.User{
			ID:           1,
			Email:        "ana@example.com",
			PasswordHash: hashPassword(t, "Senha@123"),
			Active:       true,
		}
		mockUserRepo.EXPECT().GetUserByEmail("ana@example.com").Return(user, nil)

		token, err := issuer.LoginUser("ana@example.com", "Senha@123")
		require.NoError(t, err)

		claims, err := validator.ValidateToken(token)

		assert.Error(t, err)
		assert.Nil(t, claims)
	})

	t.Run("Deve rejeitar token malformado", func(t *testing.T) {
		service := &Service{cfg: authTestConfig()}

		claims, err := service.ValidateToken("nao-e-um-jwt")

		assert.Error(t, err)
		assert.Nil(t, claims)
	})
}

func TestService_CreateUser(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUserRepo := mocks.NewMockUserRepository(ctrl)
	service := &Service{
		userRepo: mockUserRepo,
		cfg:      authTestConfig(),
	}

	t.Run("Deve criar usuário inativo com senha em hash e perfil padrão", func(t *testing.T) {
		var created *domain.User

		mockUserRepo.EXPECT().GetUserByEmail("novo@example.com").Return(nil, nil)
		mockUserRepo.EXPECT().
			CreateUser(gomock.Any()).
			DoAndReturn(func(user *domain.User) (*domain.User, error) {
				created = user
				return user, nil
			})

		_, err := service.CreateUser(&domain.User{
			Name:         "Novo",
			Lastname:     "Usuário",
			Email:        "Novo@Example.com",
			PasswordHash: "Senha@123",
		})

		assert.NoError(t, err)
		require.NotNil(t, created)

		// A senha nunca é persistida em texto plano
		assert.NotEqual(t, "Senha@123", created.PasswordHash)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(created.PasswordHash), []byte("Senha@123")))

		assert.Equal(t, "novo@example.com", created.Email)
		assert.Equal(t, 3, created.RoleID)
		assert.False(t, created.Active)
	})

	t.Run("Deve rejeitar cadastro sem os dados obrigatórios", func(t *testing.T) {
		_, err := service.CreateUser(&domain.User{
			Name:  "Sem",
			Email: "sem.senha@example.com",
		})

		assert.ErrorIs(t, err, ErrMissingRequiredData)
	})

	t.Run("Deve rejeitar email já cadastrado", func(t *testing.T) {
		existing := &domain.User{ID: 3, Email: "novo@example.com"}

		mockUserRepo.EXPECT().GetUserByEmail("novo@example.com").Return(existing, nil)

		_, err := service.CreateUser(&domain.User{
			Name:         "Novo",
			Lastname:     "Usuário",
			Email:        "novo@example.com",
			PasswordHash: "Senha@123",
		})

		assert.ErrorIs(t, err, ErrUserAlreadyExists)
	})
}

func TestService_ChangePassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUserRepo := mocks.NewMockUserRepository(ctrl)
	service := &Service{
		userRepo: mockUserRepo,
		cfg:      authTestConfig(),
	}

	t.Run("Deve trocar a senha quando a atual confere e a nova é forte", func(t *testing.T) {
		user := &domain.User{
			ID:           5,
			PasswordHash: hashPassword(t, "Antiga@123"),
		}

		var updated *domain.User

		mockUserRepo.EXPECT().GetUserByID(5).Return(user, nil)
		mockUserRepo.EXPECT().
			UpdateUser(gomock.Any()).
			DoAndReturn(func(u *domain.User) error {
				updated = u
				return nil
			})

		err := service.ChangePassword(5, "Antiga@123", "NovaSenha@123")

		assert.NoError(t, err)
		require.NotNil(t, updated)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte("NovaSenha@123")))
	})

	t.Run("Deve rejeitar quando a senha atual não confere", func(t *testing.T) {
		user := &domain.User{
			ID:           5,
			PasswordHash: hashPassword(t, "Antiga@123"),
		}

		mockUserRepo.EXPECT().GetUserByID(5).Return(user, nil)

		err := service.ChangePassword(5, "errada", "NovaSenha@123")

		assert.EqualError(t, err, "senha atual incorreta")
	})

	t.Run("Deve rejeitar nova senha fraca", func(t *testing.T) {
		user := &domain.User{
			ID:           5,
			PasswordHash: hashPassword(t, "Antiga@123"),
		}

		mockUserRepo.EXPECT().GetUserByID(5).Return(user, nil)

		err := service.ChangePassword(5, "Antiga@123", "fraca")

		assert.ErrorContains(t, err, "a senha deve conter")
	})
}

func TestService_ValidatePasswordStrength(t *testing.T) {
	service := &Service{cfg: authTestConfig()}

	tests := []struct {
		name          string
		password      string
		expectedError string
	}{
		{
			name:     "Senha forte válida",
			password: "Forte@123",
		},
		{
			name:          "Senha curta demais",
			password:      "Ab@1",
			expectedError: "a senha deve conter pelo menos 8 caracteres",
		},
		{
			name:          "Sem letra maiúscula",
			password:      "fraca@123",
			expectedError: "a senha deve conter pelo menos uma letra maiúscula",
		},
		{
			name:          "Sem letra minúscula",
			password:      "FORTE@123",
			expectedError: "a senha deve conter pelo menos uma letra minúscula",
		},
		{
			name:          "Sem número",
			password:      "Forte@abc",
			expectedError: "a senha deve conter pelo menos um número",
		},
		{
			name:          "Sem caractere especial",
			password:      "Forte1234",
			expectedError: "a senha deve conter pelo menos um caractere especial",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.ValidatePasswordStrength(tt.password)

			if tt.expectedError == "" {
				assert.NoError(t, err)
			} else {
				assert.EqualError(t, err, tt.expectedError)
			}
		})
	}
}

func TestService_GenerateStrongPassword(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUserRepo := mocks.NewMockUserRepository(ctrl)
	service := &Service{
		userRepo: mockUserRepo,
		cfg:      authTestConfig(),
	}

	t.Run("Deve gerar senha forte quando solicitada por administrador", func(t *testing.T) {
		admin := &domain.User{ID: 1, RoleID: 1}
		target := &domain.User{ID: 4, RoleID: 3, PasswordHash: hashPassword(t, "Antiga@123")}

		var updated *domain.User

		mockUserRepo.EXPECT().GetUserByID(1).Return(admin, nil)
		mockUserRepo.EXPECT().GetUserByID(4).Return(target, nil)
		mockUserRepo.EXPECT().
			UpdateUser(gomock.Any()).
			DoAndReturn(func(u *domain.User) error {
				updated = u
				return nil
			})

		password, err := service.GenerateStrongPassword(1, 4)

		assert.NoError(t, err)
		assert.Len(t, password, 12)
		assert.NoError(t, service.ValidatePasswordStrength(password))

		require.NotNil(t, updated)
		assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(updated.PasswordHash), []byte(password)))
	})

	t.Run("Deve negar a geração para quem não é administrador", func(t *testing.T) {
		viewer := &domain.User{ID: 2, RoleID: 3}

		mockUserRepo.EXPECT().GetUserByID(2).Return(viewer, nil)

		_, err := service.GenerateStrongPassword(2, 4)

		assert.EqualError(t, err, "apenas administradores podem gerar novas senhas")
	})
}
