package config

import (
	"fmt"
	"log"
	"os"
	"regexp"
	"strings"
	"sync"

	"github.com/spf13/viper"
)

var config *Config
var m sync.Mutex

// Config is the top-level application configuration, unmarshalled from a
// YAML file by viper. It is validated and normalized by Validate() after
// loading, mirroring the settings-cleaning pass of the repository this
// service was ported from.
type Config struct {
	Env        string     `yaml:"env"`
	App        App        `yaml:"app"`
	HttpServer HttpServer `yaml:"httpServer"`
	Log        Log        `yaml:"log"`
	Postgres   Postgres   `yaml:"postgres"`
	Redis      []Redis    `yaml:"redis"`
	Repository Repository `yaml:"repository"`
	Importer   Importer   `yaml:"importer"`
}

type HttpServer struct {
	Port int `yaml:"port"`
}

type Log struct {
	Level           string `yaml:"level"`
	StacktraceLevel string `yaml:"stacktraceLevel"`
	FileEnabled     bool   `yaml:"fileEnabled"`
	FileSize        int    `yaml:"fileSize"`
	FilePath        string `yaml:"filePath"`
	FileCompress    bool   `yaml:"fileCompress"`
	MaxAge          int    `yaml:"maxAge"`
	MaxBackups      int    `yaml:"maxBackups"`
}

type App struct {
	Name      string `yaml:"name"`
	NameSlug  string `yaml:"nameSlug"`
	BaseURL   string `yaml:"baseUrl"`
	JWTSecret string `yaml:"jwtSecret"`
}

type Postgres struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Username        string `yaml:"username"`
	Password        string `yaml:"password"`
	Database        string `yaml:"database"`
	Schema          string `yaml:"schema"`
	MaxConnections  int32  `yaml:"maxConnections"`
	MaxConnIdleTime int32  `yaml:"maxConnIdleTime"`
}

type Redis struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	Database int    `yaml:"database"`
}

// DeletedRecordsPolicy is the repository's tombstone policy, one of
// "no", "transient" or "persistent" (spec §6).
type DeletedRecordsPolicy string

const (
	DeletedRecordsNo         DeletedRecordsPolicy = "no"
	DeletedRecordsTransient  DeletedRecordsPolicy = "transient"
	DeletedRecordsPersistent DeletedRecordsPolicy = "persistent"
)

// IgnoreDeleted reports whether Store queries under this policy should
// exclude tombstoned rows entirely, rather than exposing them with
// xml=null.
func (p DeletedRecordsPolicy) IgnoreDeleted() bool {
	return p == DeletedRecordsNo
}

// Repository holds the settings exposed through the Identify verb and
// consumed by the ProtocolEngine, equivalent to clean_oai_settings() in
// the Python source this was ported from.
type Repository struct {
	Name                    string               `yaml:"name"`
	AdminEmails             []string             `yaml:"adminEmails"`
	DeletedRecords          DeletedRecordsPolicy `yaml:"deletedRecords"`
	ItemListLimit           int                  `yaml:"itemListLimit"`
	RepositoryDescriptions  []string             `yaml:"repositoryDescriptions"`
	LoadedDescriptions      []string             `yaml:"-"`
}

// Importer holds settings that only the importer binary reads.
type Importer struct {
	ForceUpdate         bool   `yaml:"forceUpdate"`
	TimestampFile       string `yaml:"timestampFile"`
	MetadataProvider    string `yaml:"metadataProvider"`
	MetadataProviderArgs string `yaml:"metadataProviderArgs"`
}

func GetConfig() *Config {
	return config
}

func SetConfig(configFile string) {
	m.Lock()
	defer m.Unlock()

	viper.SetConfigFile(configFile)
	err := viper.ReadInConfig()
	if err != nil {
		log.Fatalf("Error getting config file, %s", err)
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		fmt.Println("Unable to decode into struct, ", err)
	}

	if err := config.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %s", err)
	}
}

// ApplyOverrides applies "key=value" overrides given on the command line,
// following the importer's "config_uri [var=value]..." CLI contract.
// Supported keys are viper dotted paths into the Config struct, e.g.
// "repository.itemListLimit=50".
func ApplyOverrides(overrides []string) error {
	m.Lock()
	defer m.Unlock()

	for _, kv := range overrides {
		parts := strings.SplitN(kv, "=", 2)
		if len(parts) != 2 {
			return fmt.Errorf("invalid override %q, expected key=value", kv)
		}
		viper.Set(parts[0], parts[1])
	}
	if err := viper.Unmarshal(&config); err != nil {
		return fmt.Errorf("unable to decode overrides: %w", err)
	}
	return config.Validate()
}

var adminEmailPattern = regexp.MustCompile(`^\S+@(\S+\.)+\S+$`)

// Validate checks and normalizes the settings required by the repository
// and, when applicable, the importer. It is the Go equivalent of
// clean_oai_settings/clean_importer_settings.
func (c *Config) Validate() error {
	switch c.Repository.DeletedRecords {
	case DeletedRecordsNo, DeletedRecordsTransient, DeletedRecordsPersistent:
	case "":
		c.Repository.DeletedRecords = DeletedRecordsNo
	default:
		return fmt.Errorf("deletedRecords must be one of no, transient, persistent")
	}

	if c.Repository.ItemListLimit <= 0 {
		return fmt.Errorf("repository.itemListLimit must be positive")
	}

	if c.App.JWTSecret == "" {
		return fmt.Errorf("app.jwtSecret must be set (used to sign resumption tokens)")
	}

	if len(c.Repository.AdminEmails) == 0 {
		return fmt.Errorf("repository.adminEmails must contain at least one address")
	}
	for _, email := range c.Repository.AdminEmails {
		if !adminEmailPattern.MatchString(email) {
			return fmt.Errorf("invalid admin email address: %q", email)
		}
	}

	descriptions := make([]string, 0, len(c.Repository.RepositoryDescriptions))
	for _, path := range c.Repository.RepositoryDescriptions {
		contents, err := loadRepositoryDescription(path)
		if err != nil {
			return fmt.Errorf("invalid repository description %q: %w", path, err)
		}
		descriptions = append(descriptions, contents)
	}
	c.Repository.LoadedDescriptions = descriptions

	return nil
}

var schemaLocationPattern = regexp.MustCompile(`xsi:schemaLocation\s*=`)

// loadRepositoryDescription reads an XML fragment from disk and requires
// it to declare an xsi:schemaLocation, as the provider-supplied
// descriptions must per spec §6.
func loadRepositoryDescription(path string) (string, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if !schemaLocationPattern.Match(contents) {
		return "", fmt.Errorf("no xsi:schemaLocation attribute")
	}
	return string(contents), nil
}
