package browser

// Config controls the Chrome window used as the rendering surface.
type Config struct {
	// Headless hides the window; useful for scripted runs and tests.
	Headless bool

	WindowWidth  int
	WindowHeight int

	// ExecPath overrides Chrome discovery when non-empty.
	ExecPath string
}

func DefaultConfig() Config {
	return Config{
		Headless:     false,
		WindowWidth:  1200,
		WindowHeight: 800,
	}
}
