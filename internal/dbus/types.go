package dbus

// Notification carries the fields consumed from a Notify method call.
// Per the freedesktop argument list, summary is positional argument 3
// and body is argument 4; the app name (argument 0) is kept for logs
// and the live viewer, everything else is ignored.
type Notification struct {
	AppName string
	Summary string
	Body    string
}

// Handler receives each captured notification.
type Handler func(n Notification)
