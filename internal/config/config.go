// Package config handles viewer configuration loading and management.
package config

// Config holds all viewer settings.
type Config struct {
	Graphics GraphicsConfig `yaml:"graphics"`
	Viewer   ViewerConfig   `yaml:"viewer"`
	Assets   AssetsConfig   `yaml:"assets"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// GraphicsConfig holds display settings handed to the rendering backend.
type GraphicsConfig struct {
	Width      int  `yaml:"width"`
	Height     int  `yaml:"height"`
	Fullscreen bool `yaml:"fullscreen"`
	VSync      bool `yaml:"vsync"`
	FPSLimit   int  `yaml:"fps_limit"`
}

// ViewerConfig holds scene presentation settings.
type ViewerConfig struct {
	Model      string  `yaml:"model"` // Model to open at startup
	FOV        float32 `yaml:"fov"`   // Vertical field of view in degrees
	AutoRotate bool    `yaml:"auto_rotate"`
	Wireframe  bool    `yaml:"wireframe"`
}

// AssetsConfig holds asset lookup settings.
type AssetsConfig struct {
	SearchPaths []string `yaml:"search_paths"` // Directories searched for models and textures
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Graphics: GraphicsConfig{
			Width:      1280,
			Height:     720,
			Fullscreen: false,
			VSync:      true,
			FPSLimit:   0,
		},
		Viewer: ViewerConfig{
			Model:      "",
			FOV:        60,
			AutoRotate: false,
			Wireframe:  false,
		},
		Assets: AssetsConfig{
			SearchPaths: []string{"assets"},
		},
		Logging: LoggingConfig{
			Level:   "info",
			LogFile: "",
		},
	}
}
