package api_test

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/limbo/virtualpet/internal/api"
	errorvalues "github.com/limbo/virtualpet/internal/error_values"
	"github.com/limbo/virtualpet/internal/service"
	"github.com/limbo/virtualpet/internal/service/mocks"
	"github.com/limbo/virtualpet/pkg/entity"
	"github.com/limbo/virtualpet/pkg/httputil"
	jwtservice "github.com/limbo/virtualpet/pkg/jwt_service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const secret = "test_secret"

var (
	username = "test_name"
	email    = "test@pets.local"
	password = "test_password"
	uid      = uuid.New()
)

func TestMain(m *testing.M) {
	service.InitValidator()
	m.Run()
}

func testUser() *entity.User {
	return &entity.User{
		ID:        uid,
		Username:  username,
		Email:     email,
		Roles:     []string{entity.RoleUser},
		CreatedAt: time.Now(),
	}
}

func decodeError(t *testing.T, body io.Reader) httputil.ErrorResponse {
	t.Helper()
	var resp httputil.ErrorResponse
	require.NoError(t, sonic.ConfigDefault.NewDecoder(body).Decode(&resp))
	return resp
}

func TestRegister(t *testing.T) {
	ctrl := gomock.NewController(t)
	uService := mocks.NewMockUserServiceI(ctrl)
	serv := api.New(&api.ServicesList{
		UserService: uService,
		JwtService:  jwtservice.New(secret, time.Hour),
	})
	body, err := sonic.ConfigDefault.Marshal(api.RegisterRequest{
		Username: username,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)
	req := &service.RegisterRequest{Username: username, Email: email, Password: password}

	testCases := []struct {
		Desc         string
		ExpectedCode int
		MockPrepFunc func()
		Body         io.Reader
	}{
		{
			Desc:         "registered",
			ExpectedCode: http.StatusOK,
			MockPrepFunc: func() {
				uService.EXPECT().Register(gomock.Any(), req).Return(testUser(), nil)
			},
			Body: bytes.NewReader(body),
		},
		{
			Desc:         "username taken",
			ExpectedCode: http.StatusConflict,
			MockPrepFunc: func() {
				uService.EXPECT().Register(gomock.Any(), req).Return(nil, errorvalues.ErrUserExists)
			},
			Body: bytes.NewReader(body),
		},
		{
			Desc:         "email taken",
			ExpectedCode: http.StatusConflict,
			MockPrepFunc: func() {
				uService.EXPECT().Register(gomock.Any(), req).Return(nil, errorvalues.ErrEmailTaken)
			},
			Body: bytes.NewReader(body),
		},
		{
			Desc:         "service error",
			ExpectedCode: http.StatusInternalServerError,
			MockPrepFunc: func() {
				uService.EXPECT().Register(gomock.Any(), req).Return(nil, errors.New("service error"))
			},
			Body: bytes.NewReader(body),
		},
		{
			Desc:         "invalid body",
			ExpectedCode: http.StatusBadRequest,
			MockPrepFunc: func() {},
			Body:         bytes.NewReader([]byte("corrupted")),
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			rr := httptest.NewRecorder()
			serv.Register(rr, httptest.NewRequest(http.MethodPost, "/auth/register", tc.Body))
			assert.Equal(t, tc.ExpectedCode, rr.Result().StatusCode)
			if tc.ExpectedCode != http.StatusOK {
				return
			}
			var resp api.AuthResponse
			require.NoError(t, sonic.ConfigDefault.NewDecoder(rr.Body).Decode(&resp))
			assert.Equal(t, uid.String(), resp.UserID)
			assert.Equal(t, username, resp.Username)
			assert.Equal(t, []string{entity.RoleUser}, resp.Roles)
			assert.NotEmpty(t, resp.Token)
		})
	}
}

func TestRegisterValidationErrors(t *testing.T) {
	ctrl := gomock.NewController(t)
	uService := mocks.NewMockUserServiceI(ctrl)
	serv := api.New(&api.ServicesList{UserService: uService})
	uService.EXPECT().Register(gomock.Any(), gomock.Any()).Return(nil, &service.ValidationError{
		Fields: []service.FieldError{{Field: "email", Message: "must be a valid email"}},
	})

	rr := httptest.NewRecorder()
	serv.Register(rr, httptest.NewRequest(http.MethodPost, "/auth/register", bytes.NewReader([]byte(`{"email":"nope"}`))))
	assert.Equal(t, http.StatusBadRequest, rr.Result().StatusCode)
	resp := decodeError(t, rr.Body)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
	assert.Equal(t, []httputil.FieldError{{Field: "email", Message: "must be a valid email"}}, resp.Errors)
}

func TestLogin(t *testing.T) {
	ctrl := gomock.NewController(t)
	uService := mocks.NewMockUserServiceI(ctrl)
	serv := api.New(&api.ServicesList{
		UserService: uService,
		JwtService:  jwtservice.New(secret, time.Hour),
	})
	body, err := sonic.ConfigDefault.Marshal(api.LoginRequest{Email: email, Password: password})
	require.NoError(t, err)

	testCases := []struct {
		Desc         string
		ExpectedCode int
		MockPrepFunc func()
		Body         io.Reader
	}{
		{
			Desc:         "logged in",
			ExpectedCode: http.StatusOK,
			MockPrepFunc: func() {
				uService.EXPECT().Login(gomock.Any(), email, password).Return(testUser(), nil)
			},
			Body: bytes.NewReader(body),
		},
		{
			Desc:         "wrong credentials",
			ExpectedCode: http.StatusUnauthorized,
			MockPrepFunc: func() {
				uService.EXPECT().Login(gomock.Any(), email, password).Return(nil, errorvalues.ErrWrongCredentials)
			},
			Body: bytes.NewReader(body),
		},
		{
			Desc:         "service error",
			ExpectedCode: http.StatusInternalServerError,
			MockPrepFunc: func() {
				uService.EXPECT().Login(gomock.Any(), email, password).Return(nil, errors.New("service error"))
			},
			Body: bytes.NewReader(body),
		},
		{
			Desc:         "invalid body",
			ExpectedCode: http.StatusBadRequest,
			MockPrepFunc: func() {},
			Body:         http.NoBody,
		},
	}
	for _, tc := range testCases {
		t.Run(tc.Desc, func(t *testing.T) {
			tc.MockPrepFunc()
			rr := httptest.NewRecorder()
			serv.Login(rr, httptest.NewRequest(http.MethodPost, "/auth/login", tc.Body))
			assert.Equal(t, tc.ExpectedCode, rr.Result().StatusCode)
		})
	}
}

func TestHealth(t *testing.T) {
	serv := api.New(&api.ServicesList{})
	rr := httptest.NewRecorder()
	serv.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rr.Result().StatusCode)
	assert.NotEmpty(t, rr.Header().Get(api.RequestIDHeader))
}
