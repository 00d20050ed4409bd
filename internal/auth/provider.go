package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider"
	ctypes "github.com/aws/aws-sdk-go-v2/service/cognitoidentityprovider/types"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotConfirmed   = errors.New("user not confirmed")
	ErrUserExists         = errors.New("user already exists")
	ErrInvalidPassword    = errors.New("password does not meet policy")
	ErrCodeMismatch       = errors.New("confirmation code mismatch")
)

type cognitoAPI interface {
	SignUp(ctx context.Context, params *cognitoidentityprovider.SignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.SignUpOutput, error)
	ConfirmSignUp(ctx context.Context, params *cognitoidentityprovider.ConfirmSignUpInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.ConfirmSignUpOutput, error)
	InitiateAuth(ctx context.Context, params *cognitoidentityprovider.InitiateAuthInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.InitiateAuthOutput, error)
	RevokeToken(ctx context.Context, params *cognitoidentityprovider.RevokeTokenInput, optFns ...func(*cognitoidentityprovider.Options)) (*cognitoidentityprovider.RevokeTokenOutput, error)
}

type Tokens struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int
}

// IdentityProvider wraps the Cognito user pool client.
type IdentityProvider struct {
	client   cognitoAPI
	clientID string
}

func NewIdentityProvider(client cognitoAPI, clientID string) *IdentityProvider {
	return &IdentityProvider{client: client, clientID: clientID}
}

// SignUp registers the user and returns the subject the pool assigned.
func (p *IdentityProvider) SignUp(ctx context.Context, email, password, fullName string) (string, error) {
	out, err := p.client.SignUp(ctx, &cognitoidentityprovider.SignUpInput{
		ClientId: aws.String(p.clientID),
		Username: aws.String(email),
		Password: aws.String(password),
		UserAttributes: []ctypes.AttributeType{
			{Name: aws.String("email"), Value: aws.String(email)},
			{Name: aws.String("name"), Value: aws.String(fullName)},
		},
	})
	if err != nil {
		return "", mapCognitoError(err)
	}

	return aws.ToString(out.UserSub), nil
}

func (p *IdentityProvider) ConfirmSignUp(ctx context.Context, email, code string) error {
	_, err := p.client.ConfirmSignUp(ctx, &cognitoidentityprovider.ConfirmSignUpInput{
		ClientId:         aws.String(p.clientID),
		Username:         aws.String(email),
		ConfirmationCode: aws.String(code),
	})
	return mapCognitoError(err)
}

func (p *IdentityProvider) Login(ctx context.Context, email, password string) (*Tokens, error) {
	resp, err := p.client.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: ctypes.AuthFlowTypeUserPasswordAuth,
		ClientId: aws.String(p.clientID),
		AuthParameters: map[string]string{
			"USERNAME": email,
			"PASSWORD": password,
		},
	})
	if err != nil {
		return nil, mapCognitoError(err)
	}

	return tokensFrom(resp, "")
}

// Refresh trades a refresh token for a new access token. Cognito does not rotate the
// refresh token so the given one is carried over.
func (p *IdentityProvider) Refresh(ctx context.Context, refreshToken string) (*Tokens, error) {
	resp, err := p.client.InitiateAuth(ctx, &cognitoidentityprovider.InitiateAuthInput{
		AuthFlow: ctypes.AuthFlowTypeRefreshTokenAuth,
		ClientId: aws.String(p.clientID),
		AuthParameters: map[string]string{
			"REFRESH_TOKEN": refreshToken,
		},
	})
	if err != nil {
		return nil, mapCognitoError(err)
	}

	return tokensFrom(resp, refreshToken)
}

func (p *IdentityProvider) Revoke(ctx context.Context, refreshToken string) error {
	if refreshToken == "" {
		return nil
	}

	_, err := p.client.RevokeToken(ctx, &cognitoidentityprovider.RevokeTokenInput{
		ClientId: aws.String(p.clientID),
		Token:    aws.String(refreshToken),
	})
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func tokensFrom(resp *cognitoidentityprovider.InitiateAuthOutput, refreshToken string) (*Tokens, error) {
	if resp.AuthenticationResult == nil || resp.AuthenticationResult.AccessToken == nil {
		return nil, ErrInvalidCredentials
	}

	result := resp.AuthenticationResult
	tokens := &Tokens{
		AccessToken:  aws.ToString(result.AccessToken),
		RefreshToken: aws.ToString(result.RefreshToken),
		ExpiresIn:    int(result.ExpiresIn),
	}
	if tokens.RefreshToken == "" {
		tokens.RefreshToken = refreshToken
	}

	return tokens, nil
}

func mapCognitoError(err error) error {
	if err == nil {
		return nil
	}

	var notAuthorized *ctypes.NotAuthorizedException
	if errors.As(err, &notAuthorized) {
		return ErrInvalidCredentials
	}

	var userNotFound *ctypes.UserNotFoundException
	if errors.As(err, &userNotFound) {
		return ErrInvalidCredentials
	}

	var notConfirmed *ctypes.UserNotConfirmedException
	if errors.As(err, &notConfirmed) {
		return ErrUserNotConfirmed
	}

	var userExists *ctypes.UsernameExistsException
	if errors.As(err, &userExists) {
		return ErrUserExists
	}

	var invalidPw *ctypes.InvalidPasswordException
	if errors.As(err, &invalidPw) {
		return ErrInvalidPassword
	}

	var codeMismatch *ctypes.CodeMismatchException
	if errors.As(err, &codeMismatch) {
		return ErrCodeMismatch
	}

	return fmt.Errorf("cognito: %w", err)
}
