package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

type SysConfig struct {
	Appid    string `yaml:"appid"`
	Location string `yaml:"location"`
	Workdir  string `yaml:"workdir"`
	Debug    bool   `yaml:"debug"`
}

type WebConfig struct {
	Host      string `yaml:"host"`
	Port      int    `yaml:"port"`
	Secret    string `yaml:"secret"`
	JwtExpire int    `yaml:"jwt_expire"`
}

type DBConfig struct {
	Type     string `yaml:"type"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Passwd   string `yaml:"passwd"`
	MaxConn  int    `yaml:"max_conn"`
	IdleConn int    `yaml:"idle_conn"`
	Debug    bool   `yaml:"debug"`
}

type LogConfig struct {
	Mode       string `yaml:"mode"`
	FileEnable bool   `yaml:"file_enable"`
	Filename   string `yaml:"filename"`
}

// CommerceConfig holds the storefront pricing constants.
type CommerceConfig struct {
	TaxRate               float64 `yaml:"tax_rate"`
	FreeShippingThreshold float64 `yaml:"free_shipping_threshold"`
	FlatShippingFee       float64 `yaml:"flat_shipping_fee"`
	ReturnWindowDays      int     `yaml:"return_window_days"`
	AbandonedCartDays     int     `yaml:"abandoned_cart_days"`
}

// WeatherConfig points at the external weather provider used to enrich
// advisory responses. Leave the key empty to disable lookups.
type WeatherConfig struct {
	ApiUrl string `yaml:"api_url"`
	ApiKey string `yaml:"api_key"`
}

type AppConfig struct {
	System   SysConfig      `yaml:"system"`
	Web      WebConfig      `yaml:"web"`
	Database DBConfig       `yaml:"database"`
	Logger   LogConfig      `yaml:"logger"`
	Commerce CommerceConfig `yaml:"commerce"`
	Weather  WeatherConfig  `yaml:"weather"`
}

var DefaultAppConfig = &AppConfig{
	System: SysConfig{
		Appid:    "agrimart",
		Location: "Asia/Kolkata",
		Workdir:  "/var/agrimart",
		Debug:    true,
	},
	Web: WebConfig{
		Host:      "0.0.0.0",
		Port:      1816,
		Secret:    "9b6de5cc-agrimart-1816-9e02-6f3206f54a10",
		JwtExpire: 24,
	},
	Database: DBConfig{
		Type:     "postgres",
		Host:     "127.0.0.1",
		Port:     5432,
		Name:     "agrimart",
		User:     "postgres",
		Passwd:   "",
		MaxConn:  100,
		IdleConn: 10,
	},
	Logger: LogConfig{
		Mode:       "development",
		FileEnable: true,
		Filename:   "/var/agrimart/agrimart.log",
	},
	Commerce: CommerceConfig{
		TaxRate:               0.18,
		FreeShippingThreshold: 500,
		FlatShippingFee:       50,
		ReturnWindowDays:      7,
		AbandonedCartDays:     30,
	},
	Weather: WeatherConfig{
		ApiUrl: "https://api.weatherapi.com",
		ApiKey: "",
	},
}

func setEnvValue(name string, f func(v string)) {
	var evalue = os.Getenv(name)
	if evalue != "" {
		f(evalue)
	}
}

// LoadConfig reads the YAML config file, falling back to defaults when the
// file is absent. AGRIMART_DB_* environment variables override credentials.
func LoadConfig(cfile string) *AppConfig {
	cfg := DefaultAppConfig
	if cfile != "" {
		if data, err := os.ReadFile(cfile); err == nil {
			fileCfg := new(AppConfig)
			if err := yaml.Unmarshal(data, fileCfg); err == nil {
				cfg = fileCfg
			}
		}
	}

	setEnvValue("AGRIMART_DB_HOST", func(v string) { cfg.Database.Host = v })
	setEnvValue("AGRIMART_DB_NAME", func(v string) { cfg.Database.Name = v })
	setEnvValue("AGRIMART_DB_USER", func(v string) { cfg.Database.User = v })
	setEnvValue("AGRIMART_DB_PWD", func(v string) { cfg.Database.Passwd = v })
	setEnvValue("AGRIMART_WEB_SECRET", func(v string) { cfg.Web.Secret = v })
	setEnvValue("AGRIMART_WEATHER_KEY", func(v string) { cfg.Weather.ApiKey = v })

	return cfg
}
