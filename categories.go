package logward

// GetLogger returns a logger for general application logging. It is
// equivalent to GetAppLogger and exists as the conventional entry point.
//
//	logger := logward.GetLogger("checkout")
//	logger.Info("user logged in", map[string]any{"user_id": 123})
func GetLogger(name string) *Logger {
	return GetAppLogger(name)
}

// GetAppLogger returns a logger writing to app/app.log. Records at ERROR and
// above are routed to error/error.log instead of the app file.
func GetAppLogger(name string) *Logger {
	s := ensure()
	if name == "" {
		name = CategoryApp
	}

	mu.Lock()
	defer mu.Unlock()
	return newCategoryLogger(s, CategoryApp, name, "")
}

// GetErrorLogger returns a logger for error reporting. Its file output goes
// to error/error.log and only records ERROR and above; lower levels still
// reach the console.
func GetErrorLogger(name string) *Logger {
	s := ensure()
	if name == "" {
		name = CategoryError
	}

	mu.Lock()
	defer mu.Unlock()
	return newCategoryLogger(s, CategoryError, name, "")
}

// GetDebugLogger returns a logger writing to debug/debug.log. An optional
// sublog name adds debug/{sublog}.log as a second destination:
//
//	apiLog := logward.GetDebugLogger("api", "api")
//	apiLog.Debug("api call", map[string]any{"endpoint": "/users"})
func GetDebugLogger(name string, sublog ...string) *Logger {
	s := ensure()
	if name == "" {
		name = CategoryDebug
	}

	sub := ""
	if len(sublog) > 0 {
		sub = sublog[0]
	}

	mu.Lock()
	defer mu.Unlock()
	return newCategoryLogger(s, CategoryDebug, name, sub)
}

// GetSecurityLogger returns a logger writing to security/security.log. The
// security directory and file are created on first use only.
func GetSecurityLogger(name string) *Logger {
	s := ensure()
	if name == "" {
		name = CategorySecurity
	}

	mu.Lock()
	defer mu.Unlock()
	return newCategoryLogger(s, CategorySecurity, name, "")
}
