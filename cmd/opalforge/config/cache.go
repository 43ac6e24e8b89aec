package config

import (
	"github.com/zachmann/go-utils/duration"
)

type cachingConf struct {
	RedisAddr string `yaml:"redis_addr"`
	Username  string `yaml:"username"`
	Password  string `yaml:"password"`
	RedisDB   int    `yaml:"redis_db"`
	Disabled  bool   `yaml:"disabled"`
	// CertificateTTL bounds the lifetime of cached certificate projections.
	CertificateTTL duration.DurationOption `yaml:"certificate_ttl"`
	// PDFTTL bounds the lifetime of cached rendered documents.
	PDFTTL duration.DurationOption `yaml:"pdf_ttl"`
}

var defaultCachingConf = cachingConf{}
