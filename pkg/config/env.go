package config

const EnvPrefix = "STOREFRONT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const DefaultTaxRate = "0.15"

const (
	StorageDriverCookie = "cookie"
	StorageDriverRedis  = "redis"
	StorageDriverSQL    = "sql"
	StorageDriverMemory = "memory"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"
)

const (
	EnvAppEnv          = "STOREFRONT_APP_ENV"
	EnvPort            = "STOREFRONT_APP_PORT"
	EnvTaxRate         = "STOREFRONT_TAX_RATE"
	EnvMaxLineQuantity = "STOREFRONT_MAX_LINE_QUANTITY"
	EnvDefaultCountry  = "STOREFRONT_DEFAULT_COUNTRY"
	EnvStorageDriver   = "STOREFRONT_STORAGE_DRIVER"
	EnvDBDSN           = "STOREFRONT_DB_DSN"
	EnvDBDriver        = "STOREFRONT_DB_DRIVER"
	EnvRedisURL        = "STOREFRONT_REDIS_URL"
	EnvRedisAddr       = "STOREFRONT_REDIS_ADDR"
	EnvJWTSecret       = "STOREFRONT_JWT_SECRET"
	EnvJWTIssuer       = "STOREFRONT_JWT_ISSUER"
	EnvBackendURL      = "STOREFRONT_BACKEND_URL"
	EnvSquareToken     = "STOREFRONT_SQUARE_ACCESS_TOKEN"
	EnvOrdersTopic     = "STOREFRONT_PUBSUB_ORDERS_TOPIC"
)
