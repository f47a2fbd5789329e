package conf

/*
   This package wraps viper, a package designed to handle config files, for
   the fleet app. Configuration is primarily sourced from an env file; any
   variable not tracked by the file is looked up in the process environment.

   Assumptions:
   1. The configuration file is an env file.
   2. The configuration file, once made available to the application, stays
   immutable during the uptime of the application (exception is test).
*/

import (
	"errors"
	"os"
	"reflect"
	"strings"
	"testing"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

// An instance of the viper struct containing the conf information. Only made
// accessible through public functions GetEnv, SetEnv, etc.
var envVars viper.Viper

// Track whether a config file was found and loaded.
const (
	configgood    uint8 = 0
	configbad     uint8 = 1
	noconfigfound uint8 = 2
)

var state uint8 = configgood

// setup is called once during initialization of the package.
func setup(dir string) *viper.Viper {
	var v = viper.New()
	v.SetConfigName("local")
	v.SetConfigType("env")
	v.AddConfigPath(dir)
	// Viper is lazy, do the read and parse of the config file
	if err := v.ReadInConfig(); err != nil {
		state = configbad
	}

	return v
}

func init() {
	// Possible config file locations: local development and deployed
	// environments respectively. FLEET_CONFIG_PATH overrides both.
	locations := []string{
		"./shared_files/env",
		"/etc/fleet-app",
	}
	if override := os.Getenv("FLEET_CONFIG_PATH"); override != "" {
		locations = append([]string{override}, locations...)
	}

	if success, loc := findEnv(locations); success {
		envVars = *setup(loc)
	} else {
		state = noconfigfound
	}
}

// findEnv determines which of the candidate locations holds a config file.
// If none is found, the package falls back to plain environment variables.
func findEnv(location []string) (bool, string) {
	if _, err := os.Stat(location[0] + "/local.env"); err == nil {
		return true, location[0]
	}

	if len(location) == 1 {
		return false, ""
	}

	return findEnv(location[1:])
}

// GetEnv retrieves the value stored in conf. If it does not exist, an empty
// string is returned.
func GetEnv(key string) string {
	if state == configgood {
		var value = envVars.GetString(key)

		// Even if the config file is loaded, if the key doesn't exist in
		// conf, try the environment.
		if value == "" {
			if v, ok := os.LookupEnv(key); ok {
				// Copy it over to conf to prevent additional OS calls.
				test := &testing.T{}
				_ = SetEnv(test, key, v)
				value = v
			}
		}

		return value
	}

	return os.Getenv(key)
}

// LookupEnv augments os.LookupEnv to look in the viper struct first.
func LookupEnv(key string) (string, bool) {
	if state == configgood {
		if value := envVars.Get(key); value != nil && value != "" {
			return value.(string), true
		}

		if v, exist := os.LookupEnv(key); exist {
			test := &testing.T{}
			_ = SetEnv(test, key, v)
			return v, exist
		}

		return "", false
	}

	return os.LookupEnv(key)
}

// SetEnv adds key values into conf. This function should only be used either
// in this package itself or testing. The protect parameter is type *testing.T
// to ensure developers knowingly use it in the appropriate scope.
func SetEnv(protect *testing.T, key string, value string) error {
	var err error

	if state == configgood {
		envVars.Set(key, value)
	} else {
		err = os.Setenv(key, value)
	}

	return err
}

// UnsetEnv "unsets" a variable. Like SetEnv, this should only be used either
// in this package itself or testing.
func UnsetEnv(protect *testing.T, key string) error {
	if state == configgood {
		envVars.Set(key, "")
	}

	// Unset the environment variable too, since GetEnv copies values over.
	return os.Unsetenv(key)
}

// Checkout populates the supplied struct pointer from conf. Fields are
// matched by their `conf` tag; a `conf_default` tag supplies the value used
// when the variable is unset. Nested structs tagged `conf:",squash"` are
// flattened, matching mapstructure semantics.
func Checkout(v interface{}) error {
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Struct {
		return errors.New("conf: Checkout requires a pointer to a struct")
	}

	values := make(map[string]interface{})
	collect(rv.Elem().Type(), values)

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           v,
		TagName:          "conf",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}

	return decoder.Decode(values)
}

func collect(t reflect.Type, values map[string]interface{}) {
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		tag := field.Tag.Get("conf")
		if tag == ",squash" && field.Type.Kind() == reflect.Struct {
			collect(field.Type, values)
			continue
		}

		key := strings.Split(tag, ",")[0]
		if key == "" || key == "-" {
			continue
		}

		value := GetEnv(key)
		if value == "" {
			value = field.Tag.Get("conf_default")
		}
		if value != "" {
			values[key] = value
		}
	}
}
