package identity

import (
	"errors"
	"fmt"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/goliatone/go-print"
	"github.com/goliatone/go-router"
)

// Fixed controller error messages, part of the behavioral contract
const (
	MsgUserDisabled   = "Usuário desativado"
	MsgBadCredentials = "Credenciais inválidas"
	MsgInternalError  = "Erro interno"
	MsgRefreshExpired = "Refresh token expirado"
	MsgRefreshInvalid = "Refresh token inválido"
	MsgRefreshFailed  = "Erro ao renovar token"
	MsgAlreadyExists  = "Usuário já cadastrado"
)

// ErrorResponse is the JSON error body shape
type ErrorResponse struct {
	Error string `json:"error"`
}

type AuthControllerRoutes struct {
	Login    string
	Refresh  string
	Register string
}

type AuthController struct {
	Debug     bool
	Logger    Logger
	Auther    Authenticator
	Registrar AccountRegistrar
	Routes    *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Logger = logger
		return c
	}
}

func WithControllerAuthenticator(auther Authenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = auther
		return c
	}
}

func WithControllerRegistrar(registrar AccountRegistrar) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Registrar = registrar
		return c
	}
}

func WithControllerDebug(debug bool) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Debug = debug
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger{},
		Routes: &AuthControllerRoutes{
			Login:    "/api/auth/login",
			Refresh:  "/api/auth/refresh",
			Register: "/api/auth/register",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Auther == nil {
		panic("Missing Authenticator in auth controller...")
	}

	if c.Registrar == nil {
		panic("Missing AccountRegistrar in auth controller...")
	}

	return c
}

func RegisterAuthRoutes[T any](app router.Router[T], opts ...AuthControllerOption) {
	controller := NewAuthController(opts...)

	app.Post(controller.Routes.Login, controller.LoginPost).
		SetName("auth.login")

	app.Post(controller.Routes.Refresh, controller.RefreshPost).
		SetName("auth.refresh")

	app.Post(controller.Routes.Register, controller.RegisterPost).
		SetName("auth.register")
}

// LoginRequest payload
type LoginRequest struct {
	Username string `form:"username" json:"username"`
	Password string `form:"password" json:"password"`
}

// Validate will run validation rules
func (r LoginRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Username,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
	)
}

// RefreshRequest payload
type RefreshRequest struct {
	RefreshToken string `form:"refreshToken" json:"refreshToken"`
}

func (r RefreshRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.RefreshToken,
			validation.Required,
		),
	)
}

// RegisterRequest payload
type RegisterRequest struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
	CPF      string `form:"cpf" json:"cpf"`
}

func (r RegisterRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(
			&r.Email,
			validation.Required,
			is.Email,
		),
		validation.Field(
			&r.Password,
			validation.Required,
		),
		validation.Field(
			&r.CPF,
			validation.Required,
		),
	)
}

func (a *AuthController) LoginPost(ctx router.Context) error {
	payload := new(LoginRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Warn("login bind error: %v", err)
		return errorJSON(ctx, http.StatusBadRequest, err.Error())
	}

	if err := payload.Validate(); err != nil {
		return errorJSON(ctx, http.StatusBadRequest, err.Error())
	}

	if a.Debug {
		fmt.Println("======= AUTH LOGIN ======")
		fmt.Println(print.MaybePrettyJSON(map[string]any{"username": payload.Username}))
		fmt.Println("=========================")
	}

	pair, err := a.Auther.Login(ctx.Context(), payload.Username, payload.Password)
	if err != nil {
		switch {
		case errors.Is(err, ErrUserDisabled):
			return errorJSON(ctx, http.StatusUnauthorized, MsgUserDisabled)
		case errors.Is(err, ErrBadCredentials):
			return errorJSON(ctx, http.StatusUnauthorized, MsgBadCredentials)
		default:
			a.Logger.Error("login error: %v", err)
			return errorJSON(ctx, http.StatusInternalServerError, MsgInternalError)
		}
	}

	return ctx.JSON(http.StatusOK, pair)
}

func (a *AuthController) RefreshPost(ctx router.Context) error {
	payload := new(RefreshRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Warn("refresh bind error: %v", err)
		return errorJSON(ctx, http.StatusBadRequest, err.Error())
	}

	if err := payload.Validate(); err != nil {
		return errorJSON(ctx, http.StatusBadRequest, err.Error())
	}

	pair, err := a.Auther.Refresh(ctx.Context(), payload.RefreshToken)
	if err != nil {
		switch {
		case errors.Is(err, ErrRefreshExpired):
			return errorJSON(ctx, http.StatusUnauthorized, MsgRefreshExpired)
		case errors.Is(err, ErrRefreshInvalid):
			return errorJSON(ctx, http.StatusUnauthorized, MsgRefreshInvalid)
		default:
			a.Logger.Warn("refresh error: %v", err)
			return errorJSON(ctx, http.StatusBadRequest, MsgRefreshFailed)
		}
	}

	return ctx.JSON(http.StatusOK, pair)
}

func (a *AuthController) RegisterPost(ctx router.Context) error {
	payload := new(RegisterRequest)

	if err := ctx.Bind(payload); err != nil {
		a.Logger.Warn("register bind error: %v", err)
		return errorJSON(ctx, http.StatusBadRequest, err.Error())
	}

	if err := payload.Validate(); err != nil {
		return errorJSON(ctx, http.StatusBadRequest, err.Error())
	}

	if a.Debug {
		fmt.Println("======= AUTH REGISTER ======")
		fmt.Println(print.MaybePrettyJSON(map[string]any{"email": payload.Email, "cpf": payload.CPF}))
		fmt.Println("============================")
	}

	user, err := a.Registrar.Register(ctx.Context(), RegisterInput{
		Email:    payload.Email,
		Password: payload.Password,
		CPF:      payload.CPF,
	})

	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			return errorJSON(ctx, http.StatusConflict, MsgAlreadyExists)
		}
		a.Logger.Error("register error: %v", err)
		return errorJSON(ctx, http.StatusInternalServerError, MsgInternalError)
	}

	// the password hash is excluded from serialization at the model level
	return ctx.JSON(http.StatusCreated, user)
}

func errorJSON(ctx router.Context, status int, message string) error {
	return ctx.JSON(status, ErrorResponse{Error: message})
}
