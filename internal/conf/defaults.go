// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("main.name", "StaffCast")
	viper.SetDefault("main.log.enabled", true)
	viper.SetDefault("main.log.path", "staffcast.log")
	viper.SetDefault("main.log.rotation", RotationDaily)
	viper.SetDefault("main.log.maxsize", 1048576)

	viper.SetDefault("restaurant.name", "")
	viper.SetDefault("restaurant.latitude", 54.323)
	viper.SetDefault("restaurant.longitude", 10.139)
	viper.SetDefault("restaurant.timezone", "Europe/Berlin")
	viper.SetDefault("restaurant.capacity", 350)
	viper.SetDefault("restaurant.holidayregions", []string{"de", "de-sh", "de-hh", "dk"})

	viper.SetDefault("weather.provider", "openmeteo")
	viper.SetDefault("weather.debug", false)
	viper.SetDefault("weather.openmeteo.endpoint", "https://api.open-meteo.com/v1/forecast")
	viper.SetDefault("weather.openmeteo.archiveendpoint", "https://archive-api.open-meteo.com/v1/era5")
	viper.SetDefault("weather.openmeteo.forecastdays", 16)

	viper.SetDefault("weather.score.idealtempmin", 18.0)
	viper.SetDefault("weather.score.idealtempmax", 25.0)
	viper.SetDefault("weather.score.perfectmaxrain", 2.0)
	viper.SetDefault("weather.score.perfectmaxcloud", 50.0)
	viper.SetDefault("weather.score.poortempbelow", 5.0)
	viper.SetDefault("weather.score.poortempabove", 35.0)
	viper.SetDefault("weather.score.poorrainabove", 15.0)
	viper.SetDefault("weather.score.stormwindspeed", 60.0)
	viper.SetDefault("weather.score.tempfalloff", 0.15)
	viper.SetDefault("weather.score.rainfalloff", 0.12)

	viper.SetDefault("booking.endpoint", "")
	viper.SetDefault("booking.locationid", "")
	viper.SetDefault("booking.token", "")
	viper.SetDefault("booking.horizondays", 60)
	viper.SetDefault("booking.cacheminutes", 15)

	viper.SetDefault("forecast.horizon", 7)
	viper.SetDefault("forecast.modelpath", "models/walkin_ridge.json")
	viper.SetDefault("forecast.band.basewidth", 5.0)
	viper.SetDefault("forecast.band.growth", 0.35)
	viper.SetDefault("forecast.neutral.score", 3)
	viper.SetDefault("forecast.neutral.monthlytempmax",
		[]float64{3.5, 4.2, 7.5, 12.1, 16.5, 19.8, 21.9, 22.1, 18.4, 13.2, 7.9, 4.8})
	viper.SetDefault("forecast.neutral.cloudcover", 50.0)
	viper.SetDefault("forecast.neutral.windspeed", 15.0)

	viper.SetDefault("staffing.buckets", []map[string]any{
		{"name": "lunch", "start": "12:00", "end": "15:00", "loadshare": 0.25},
		{"name": "afternoon", "start": "15:00", "end": "18:00", "loadshare": 0.10},
		{"name": "dinner", "start": "18:00", "end": "22:00", "loadshare": 0.55},
		{"name": "late", "start": "22:00", "end": "23:00", "loadshare": 0.10},
	})
	viper.SetDefault("staffing.shifts.fullstart", "12:00")
	viper.SetDefault("staffing.shifts.fullend", "23:00")
	viper.SetDefault("staffing.shifts.minsplithours", 3.0)

	viper.SetDefault("staffing.roles.kitchen.min", 2)
	viper.SetDefault("staffing.roles.kitchen.guestsperhead", 80)
	viper.SetDefault("staffing.roles.pizza.min", 1)
	viper.SetDefault("staffing.roles.pizza.stepthreshold", 120)
	viper.SetDefault("staffing.roles.pizza.stepsize", 100)
	viper.SetDefault("staffing.roles.bar.min", 1)
	viper.SetDefault("staffing.roles.bar.baseline", 2)
	viper.SetDefault("staffing.roles.bar.lowguestmax", 100)
	viper.SetDefault("staffing.roles.bar.weekendpressure", 200)
	viper.SetDefault("staffing.roles.service.min", 1)
	viper.SetDefault("staffing.roles.service.coversperserver", 18)
	viper.SetDefault("staffing.roles.service.weekdayoverrides", map[string]int{"monday": 22})
	viper.SetDefault("staffing.roles.runner.min", 1)
	viper.SetDefault("staffing.roles.runner.guestsperhead", 100)

	viper.SetDefault("output.sqlite.enabled", true)
	viper.SetDefault("output.sqlite.path", "staffcast.db")

	viper.SetDefault("output.mysql.enabled", false)
	viper.SetDefault("output.mysql.username", "staffcast")
	viper.SetDefault("output.mysql.password", "secret")
	viper.SetDefault("output.mysql.database", "staffcast")
	viper.SetDefault("output.mysql.host", "localhost")
	viper.SetDefault("output.mysql.port", 3306)

	viper.SetDefault("webserver.enabled", true)
	viper.SetDefault("webserver.port", "8080")
	viper.SetDefault("webserver.log.enabled", false)
	viper.SetDefault("webserver.log.path", "webapi.log")
	viper.SetDefault("webserver.log.rotation", RotationDaily)
	viper.SetDefault("webserver.log.maxsize", 1048576)
}
