package core

// Logger is the structured logger used across the app.
// expected args: error, map[string]interface{}, or any value worth reporting.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}

// Person identifies the signed-in administrator in error reports.
type Person struct {
	ID       string
	Username string
	Email    string
}
