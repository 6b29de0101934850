package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/m04kA/SMC-StudioBooking/internal/api/handlers"
)

type contextKey string

const (
	customerIDKey    contextKey = "customer_id"
	customerEmailKey contextKey = "customer_email"
)

const (
	msgMissingToken = "требуется токен авторизации"
	msgInvalidToken = "некорректный токен авторизации"
)

// Claims полезная нагрузка токена: sub содержит UUID клиента
type Claims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

// Auth проверяет Bearer токен (HS256) и кладёт идентификатор клиента в контекст
func Auth(secret string) func(http.Handler) http.Handler {
	key := []byte(secret)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if !strings.HasPrefix(header, "Bearer ") {
				handlers.RespondUnauthorized(w, msgMissingToken)
				return
			}
			raw := strings.TrimPrefix(header, "Bearer ")

			claims := &Claims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
				return key, nil
			}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
			if err != nil || !token.Valid {
				handlers.RespondUnauthorized(w, msgInvalidToken)
				return
			}

			customerID, err := uuid.Parse(claims.Subject)
			if err != nil {
				handlers.RespondUnauthorized(w, msgInvalidToken)
				return
			}

			ctx := WithCustomer(r.Context(), customerID, claims.Email)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithCustomer кладёт идентификатор и email клиента в контекст
func WithCustomer(ctx context.Context, customerID uuid.UUID, email string) context.Context {
	ctx = context.WithValue(ctx, customerIDKey, customerID)
	return context.WithValue(ctx, customerEmailKey, email)
}

// GetCustomerID извлекает UUID клиента из контекста
func GetCustomerID(ctx context.Context) (uuid.UUID, bool) {
	id, ok := ctx.Value(customerIDKey).(uuid.UUID)
	return id, ok && id != uuid.Nil
}

// GetCustomerEmail email из токена, пустая строка если claim отсутствует
func GetCustomerEmail(ctx context.Context) string {
	email, _ := ctx.Value(customerEmailKey).(string)
	return email
}
