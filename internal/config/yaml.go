package config

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v2"
)

// LoadYAMLConfig load config from filename in YAML format
func LoadYAMLConfig(filename string, cfg interface{}) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("ReadFile: %v", err)
	}
	err = yaml.Unmarshal(data, cfg)
	return err
}

func InitConfig(configPath string) (*Config, error) {
	conf := DefaultConfig()

	err := LoadYAMLConfig(configPath, conf)
	if err != nil {
		return nil, err
	}

	if err := Validate(conf); err != nil {
		return nil, err
	}

	return conf, nil
}

func Validate(conf *Config) error {
	if err := validator.New().Struct(conf); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
