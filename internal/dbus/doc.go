// Package dbus passively observes org.freedesktop.Notifications
// traffic on the session bus. It never claims the notification service
// name, so it runs alongside whatever notification daemon the desktop
// already has.
package dbus
