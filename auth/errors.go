package auth

// AuthError описывает отказ на любом шаге авторизации.
// Code и Description уходят клиенту в теле ответа, Status - в заголовке.
type AuthError struct {
	Code        string `json:"error"`
	Description string `json:"description"`
	Status      int    `json:"-"`
}

func (e *AuthError) Error() string {
	return e.Code + ": " + e.Description
}
