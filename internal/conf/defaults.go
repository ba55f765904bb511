package conf

import "github.com/spf13/viper"

// setDefaultConfig sets the default configuration values in viper.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	// Detection service
	viper.SetDefault("service.baseurl", "http://localhost:8000")
	viper.SetDefault("service.pollintervalms", 5000)
	viper.SetDefault("service.timeoutsec", 30)
	viper.SetDefault("service.pagesize", 100)

	// Operator session
	viper.SetDefault("session.username", "")
	viper.SetDefault("session.role", "stationmaster")
	viper.SetDefault("session.token", "")

	// Report export
	viper.SetDefault("export.directory", ".")

	// Telemetry
	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.listen", "0.0.0.0:8090")
}
