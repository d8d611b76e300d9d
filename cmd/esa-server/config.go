package main

import (
	"crypto/tls"
	"crypto/x509"
	"math/big"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gopkg.in/yaml.v2"

	"github.com/Bren2010/esa/crypto/group"
	"github.com/Bren2010/esa/crypto/suites"
)

const defaultModulusBits = 256

// Config specifies the file format of config files.
type Config struct {
	ServerAddr   string `yaml:"addr"`
	MetricsAddr  string `yaml:"metrics-addr"`
	DatabaseFile string `yaml:"database"`
	HomeRedirect string `yaml:"home"`

	LogLevel string `yaml:"log-level"`
	logLevel log.Level

	TLSConfig *TLSConfig `yaml:"tls"`
	tlsConfig *tls.Config

	AccumulatorConfig AccumulatorConfig `yaml:"accumulator"`
}

// TLSConfig specifies the API server's TLS config. Since this is only intended
// for use with Cloudflare OriginCA, TLS on the server also starts requiring a
// valid client certificate.
type TLSConfig struct {
	Cert     string `yaml:"cert"`
	Key      string `yaml:"key"`
	ClientCA string `yaml:"client-ca"` // CA for validating client certificates.
}

// AccumulatorConfig specifies the parameters used when the database does not
// already hold an accumulator.
type AccumulatorConfig struct {
	Suite string `yaml:"suite"`
	suite suites.CipherSuite

	Modulus   string `yaml:"modulus"`   // Hex-encoded prime modulus.
	Generator string `yaml:"generator"` // Hex-encoded generator. Optional if the modulus is a safe prime.
	params    *group.Params

	ModulusBits int `yaml:"modulus-bits"` // Size of generated moduli when none is configured.
}

func parseHex(name, s string) (*big.Int, error) {
	x, ok := new(big.Int).SetString(s, 16)
	if !ok {
		return nil, errors.Errorf("failed to parse %v: not a hex integer", name)
	}
	return x, nil
}

func ReadConfig(filename string) (*Config, error) {
	// Read from file and parse.
	raw, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return parseConfig(raw)
}

func parseConfig(raw []byte) (*Config, error) {
	var parsed Config
	err := yaml.Unmarshal(raw, &parsed)
	if err != nil {
		return nil, err
	}

	// Check that all required fields are populated.
	if parsed.ServerAddr == "" {
		return nil, errors.New("field not provided: addr")
	} else if parsed.DatabaseFile == "" {
		return nil, errors.New("field not provided: database")
	} else if parsed.AccumulatorConfig.Generator != "" && parsed.AccumulatorConfig.Modulus == "" {
		return nil, errors.New("field not provided: accumulator.modulus")
	}

	parsed.logLevel = log.InfoLevel
	if parsed.LogLevel != "" {
		parsed.logLevel, err = log.ParseLevel(parsed.LogLevel)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse log-level")
		}
	}

	// Parse TLS config if necessary.
	if parsed.TLSConfig != nil {
		cert, err := tls.LoadX509KeyPair(parsed.TLSConfig.Cert, parsed.TLSConfig.Key)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load TLS certificate/key")
		}

		certPool := x509.NewCertPool()
		caCerts, err := os.ReadFile(parsed.TLSConfig.ClientCA)
		if err != nil {
			return nil, errors.Wrap(err, "failed to load TLS client CA")
		} else if ok := certPool.AppendCertsFromPEM(caCerts); !ok {
			return nil, errors.New("no client CA certificates successfully parsed from file")
		}

		parsed.tlsConfig = &tls.Config{
			Certificates: []tls.Certificate{cert},
			ClientAuth:   tls.RequireAndVerifyClientCert,
			ClientCAs:    certPool,
		}
	}

	// Parse accumulator parameters.
	ac := &parsed.AccumulatorConfig
	ac.suite, err = suites.FromName(ac.Suite)
	if err != nil {
		return nil, err
	}
	if ac.ModulusBits == 0 {
		ac.ModulusBits = defaultModulusBits
	} else if ac.ModulusBits < group.MinModulusBits {
		return nil, errors.Errorf("accumulator.modulus-bits must be at least %v", group.MinModulusBits)
	}
	if ac.Modulus != "" {
		modulus, err := parseHex("accumulator.modulus", ac.Modulus)
		if err != nil {
			return nil, err
		}
		var generator *big.Int
		if ac.Generator != "" {
			if generator, err = parseHex("accumulator.generator", ac.Generator); err != nil {
				return nil, err
			}
		}
		ac.params, err = group.NewParams(modulus, generator)
		if err != nil {
			return nil, errors.Wrap(err, "failed to parse accumulator parameters")
		}
	}

	return &parsed, nil
}
