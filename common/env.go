// Package common provides the wire types, method names and environment
// variable names shared by the namaadhu daemon and its clients.
package common

// Environment variable names for configuration.
const (
	// DBPathEnv overrides the location of the prayer times database.
	DBPathEnv = "NAMAADHU_DB_PATH"

	// ZoneEnv is the IANA zone prayer times are expressed in.
	ZoneEnv = "NAMAADHU_ZONE"

	// AddrEnv is the daemon's listen address.
	AddrEnv = "NAMAADHU_ADDR"

	// RPCSecretEnv is the Bearer token required by the RPC endpoints.
	RPCSecretEnv = "NAMAADHU_RPC_SECRET"

	// ConfigDirEnv overrides the directory holding the database and the
	// selected island.
	ConfigDirEnv = "NAMAADHU_CONFIG_DIR"

	// MQTTBrokerEnv enables publishing to the given broker URL.
	MQTTBrokerEnv = "NAMAADHU_MQTT_BROKER"

	// MQTTTopicEnv is the topic prefix for published schedules.
	MQTTTopicEnv = "NAMAADHU_MQTT_TOPIC"

	// DebugEnv is the environment variable to enable debug logging.
	DebugEnv = "NAMAADHU_DEBUG"

	// LogFileEnv additionally writes daemon records as JSON to this file.
	LogFileEnv = "NAMAADHU_LOG_FILE"

	// KeyringEnv stores the generated RPC secret in the OS keyring.
	KeyringEnv = "NAMAADHU_KEYRING"
)
