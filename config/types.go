package config

import (
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

type Validator interface {
	Validate() error
}

type ConfigInterface interface {
	Bind(instance any) error
	BindWithDefaults(instance any) error
	Get(key string) any
	Set(key string, value any)
}

type Config struct {
	instance   *viper.Viper
	opts       ConfigOptions
	watchOnce  sync.Once
	watchMutex sync.RWMutex
}

type ConfigOptions struct {
	BasePath  string
	FileName  string
	FileType  string
	EnvPrefix string
	// EnvKeys are bound to environment variables even when no file sets them.
	EnvKeys []string
	// Optional tolerates a missing config directory or file.
	Optional  bool
	WatchAble bool
	OnChange  func(e fsnotify.Event)
}
