package auth

import (
	"net/http"
)

// CheckPermissions проверяет, что payload содержит требуемое разрешение.
// Отсутствие списка permissions целиком - это 400 (некорректные claims),
// отсутствие конкретного разрешения в списке - 403.
func CheckPermissions(permission string, claims Claims) *AuthError {
	raw, ok := claims["permissions"]
	if !ok {
		return &AuthError{
			Code:        "invalid_claims",
			Description: "Permissions are not included in JWT",
			Status:      http.StatusBadRequest,
		}
	}

	for _, granted := range permissionList(raw) {
		if granted == permission {
			return nil
		}
	}

	return &AuthError{
		Code:        "forbidden",
		Description: "Permission not found",
		Status:      http.StatusForbidden,
	}
}

// permissionList приводит claim к списку строк: после json.Decode это
// []interface{}, в тестах и при ручной сборке claims - []string.
func permissionList(raw interface{}) []string {
	switch values := raw.(type) {
	case []string:
		return values
	case []interface{}:
		list := make([]string, 0, len(values))
		for _, value := range values {
			if s, ok := value.(string); ok {
				list = append(list, s)
			}
		}
		return list
	default:
		return nil
	}
}
