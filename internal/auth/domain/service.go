package domain

import "context"

//go:generate mockgen -source=service.go -destination=../mocks/mock_service.go -package=mocks
type Service interface {
	CreateUser(ctx context.Context, req CreateUserRequest) (*UserView, error)
	IssueAPIKey(ctx context.Context, userID string, name string) (*SecretResponse, error)
	Authenticate(ctx context.Context, rawKey string) (*Principal, error)
	DeleteUser(ctx context.Context, userID string) (*DeleteResult, error)
}

type CreateUserRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Password    string `json:"password"`
	Role        string `json:"role"`
}

type UserView struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
}

type SecretResponse struct {
	KeyID  string `json:"key_id"`
	APIKey string `json:"api_key"`
}

// DeleteResult reports how many owned records were detached.
type DeleteResult struct {
	DetachedTools       int64 `json:"detached_tools"`
	DetachedSubmissions int64 `json:"detached_submissions"`
}
