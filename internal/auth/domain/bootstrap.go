package domain

// BootstrapData describes the first administrator created on an empty system.
type BootstrapData struct {
	AdminUsername string
	AdminPassword string
}
