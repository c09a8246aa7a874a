package config

import (
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"strings"
	"sync"
	"time"
)

var once sync.Once

func InitConfig() {
	once.Do(func() {
		viper.AutomaticEnv()

		viper.BindEnv("telegram_bot_token", "TELEGRAM_BOT_TOKEN")
		viper.BindEnv("debug", "DEBUG")
		viper.BindEnv("lang", "BOT_LANG")
		viper.BindEnv("locales_dir", "LOCALES_DIR")
		viper.BindEnv("port", "PORT")
		viper.BindEnv("webhook_url", "WEBHOOK_URL")
		viper.BindEnv("market_provider", "MARKET_PROVIDER")
		viper.BindEnv("coingecko_api_url", "COINGECKO_API_URL")
		viper.BindEnv("coingecko_api_key", "COINGECKO_API_KEY")
		viper.BindEnv("api_pro_key", "API_PRO_KEY")
		viper.BindEnv("http_timeout", "HTTP_TIMEOUT")
		viper.BindEnv("db_path", "DB_PATH")

		viper.SetDefault("debug", false)
		viper.SetDefault("lang", "en")
		viper.SetDefault("locales_dir", "locales")
		viper.SetDefault("port", 8080)
		viper.SetDefault("market_provider", "coingecko")
		viper.SetDefault("coingecko_api_url", "https://api.coingecko.com/api/v3")
		viper.SetDefault("http_timeout", 10*time.Second)
		viper.SetDefault("db_path", "data/bot.db")
	})
}

// BindFlags lets command line flags override the environment. Flag names use
// dashes, config keys use underscores.
func BindFlags(flags *pflag.FlagSet) error {
	InitConfig()

	var err error
	flags.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		err = viper.BindPFlag(strings.ReplaceAll(f.Name, "-", "_"), f)
	})
	return err
}

func GetString(key string) string {
	InitConfig()
	return viper.GetString(key)
}

func GetInt(key string) int {
	InitConfig()
	return viper.GetInt(key)
}

func GetBool(key string) bool {
	InitConfig()
	return viper.GetBool(key)
}

func GetDuration(key string) time.Duration {
	InitConfig()
	return viper.GetDuration(key)
}
