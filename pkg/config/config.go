package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

var Empty = new(Config)

type Config struct {
	AppEnv       string  `envconfig:"APP_ENV"`
	Port         int     `envconfig:"PORT"`
	SentryDSN    string  `envconfig:"SENTRY_DSN"`
	AllowOrigins string  `envconfig:"ALLOW_ORIGINS"`
	LogLevel     string  `envconfig:"LOG_LEVEL"`
	RateLimit    float64 `envconfig:"RATE_LIMIT" default:"20"`

	// AccountStore selects where users and login attempts live:
	// mongodb, postgres or dynamodb.
	AccountStore string `envconfig:"ACCOUNT_STORE" default:"mongodb"`

	Mongo struct {
		URI            string `envconfig:"MONGO_URI" default:"mongodb://localhost:27017"`
		Database       string `envconfig:"MONGO_DATABASE" default:"moviecatalog"`
		ConnectTimeout int    `envconfig:"MONGO_CONNECT_TIMEOUT" default:"10"`
	}
	DB struct {
		Driver    string `envconfig:"DB_DRIVER"`
		Name      string `envconfig:"DB_NAME"`
		Host      string `envconfig:"DB_HOST"`
		Port      int    `envconfig:"DB_PORT"`
		User      string `envconfig:"DB_USER"`
		Pass      string `envconfig:"DB_PASS"`
		EnableSSL bool   `envconfig:"ENABLE_SSL"`
	}
	DynamoDB struct {
		Region             string `envconfig:"DDB_REGION"`
		Endpoint           string `envconfig:"DDB_ENDPOINT"`
		AccessKey          string `envconfig:"DDB_ACCESS_KEY"`
		SecretKey          string `envconfig:"DDB_SECRET_KEY"`
		SessionToken       string `envconfig:"DDB_SESSION_TOKEN"`
		UsersTable         string `envconfig:"DDB_USERS_TABLE"`
		LoginAttemptsTable string `envconfig:"DDB_LOGIN_ATTEMPTS_TABLE"`
	}
	OMDB struct {
		BaseURL string `envconfig:"OMDB_BASE_URL" default:"https://www.omdbapi.com"`
		APIKey  string `envconfig:"OMDB_API_KEY"`
		Timeout int    `envconfig:"OMDB_TIMEOUT" default:"10"`
	}
	TMDB struct {
		BaseURL  string `envconfig:"TMDB_BASE_URL" default:"https://api.themoviedb.org/3"`
		ImageURL string `envconfig:"TMDB_IMAGE_URL" default:"https://image.tmdb.org/t/p/w500"`
		APIKey   string `envconfig:"TMDB_API_KEY"`
		Timeout  int    `envconfig:"TMDB_TIMEOUT" default:"10"`
	}
	Catalog struct {
		MovieSeeds    []string `envconfig:"CATALOG_MOVIE_SEEDS" default:"tt0111161,tt0068646,tt0468569,tt0071562,tt0050083,tt0108052,tt0167260,tt0110912,tt0060196,tt0137523,tt0120737,tt0109830,tt1375666,tt0080684,tt0167261,tt0133093,tt0099685,tt0073486,tt0047478,tt0114369"`
		ActorSeeds    []string `envconfig:"CATALOG_ACTOR_SEEDS" default:"31,192,6193,287,1892,3223,2888,8891,1245,5292,17419,976,6384,2963,380,72129,1136406,10990,1397778,3894"`
		ProducerSeeds []string `envconfig:"CATALOG_PRODUCER_SEEDS" default:"488,1032,138,7467,5655,1884,510,4762,2710,20907"`
	}
	Auth struct {
		JWTSecret          string `envconfig:"AUTH_JWT_SECRET"`
		TokenTTL           int    `envconfig:"AUTH_TOKEN_TTL" default:"7200"`
		RefreshTTL         int    `envconfig:"AUTH_REFRESH_TTL" default:"604800"`
		GoogleClientID     string `envconfig:"AUTH_GOOGLE_CLIENT_ID"`
		GoogleClientSecret string `envconfig:"AUTH_GOOGLE_CLIENT_SECRET"`
		GoogleRedirectURL  string `envconfig:"AUTH_GOOGLE_REDIRECT_URL"`
	}
}

func LoadConfig() (*Config, error) {
	// load default .env file, ignore the error
	_ = godotenv.Load()

	cfg := new(Config)
	err := envconfig.Process("", cfg)
	if err != nil {
		return nil, fmt.Errorf("load config error: %v", err)
	}

	return cfg, nil
}
