package configs

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type ENV struct {
	AppEnv      string
	Port        string
	LogLevel    string
	DBDriver    string
	DBHost      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBPort      string
	DBPath      string
	AppAuthKey  string
	AppEncKey   string
	CSRFKey     string
	CSRFSecure  bool
	TemplateDir string
	StaticDir   string
}

func LoadEnv() ENV {

	if err := godotenv.Load(".env"); err != nil {
		log.Println("Warning: No .env file found ")
	}

	return ENV{
		AppEnv:      getEnv("APP_ENV", "development"),
		Port:        getEnv("APP_PORT", ":5000"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
		DBDriver:    getEnv("DB_DRIVER", "sqlite"),
		DBHost:      os.Getenv("DB_HOST"),
		DBUser:      os.Getenv("DB_USER"),
		DBPassword:  os.Getenv("DB_PASSWORD"),
		DBName:      os.Getenv("DB_NAME"),
		DBPort:      os.Getenv("DB_PORT"),
		DBPath:      getEnv("DB_PATH", "blog.db"),
		AppAuthKey:  os.Getenv("APP_AUTH_KEY"),
		AppEncKey:   os.Getenv("APP_ENC_KEY"),
		CSRFKey:     os.Getenv("CSRF_KEY"),
		CSRFSecure:  getBool("CSRF_SECURE", false),
		TemplateDir: getEnv("TEMPLATE_DIR", "templates"),
		StaticDir:   getEnv("STATIC_DIR", "static"),
	}

}

func (e ENV) IsProduction() bool {
	return e.AppEnv == "production"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Printf("Warning: %s=%q is not a boolean, using %t", key, v, fallback)
		return fallback
	}
	return b
}
