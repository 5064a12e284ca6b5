package testutil

import "github.com/spf13/viper"

// Viper returns a fresh viper instance with values set as overrides.
// Keys use dotted paths ("canvas.port_selection").
func Viper(values map[string]any) *viper.Viper {
	v := viper.New()
	for k, val := range values {
		v.Set(k, val)
	}
	return v
}
