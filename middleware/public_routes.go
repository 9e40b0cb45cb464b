package middleware

// IsPublicRoute проверяет, является ли маршрут публичным
func IsPublicRoute(path string) bool {
	publicRoutes := []string{
		"/",
		"/health",
	}

	for _, route := range publicRoutes {
		if path == route {
			return true
		}
	}

	return false
}
