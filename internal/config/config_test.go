package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateSSLMode(t *testing.T) {
	tests := []struct {
		name        string
		env         string
		sslMode     string
		expectError bool
	}{
		{"Production with empty SSL mode", "production", "", true},
		{"Production with disable SSL mode", "production", "disable", true},
		{"Production with require SSL mode", "production", "require", false},
		{"Prod with verify-full SSL mode", "prod", "verify-full", false},
		{"Development with disable SSL mode", "development", "disable", false},
		{"Test with empty SSL mode", "test", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &Config{
				Env:       tt.env,
				DBSSLMode: tt.sslMode,
				JWTSecret: "secure-secret-at-least-32-chars-long",
				Port:      "8080",
			}

			err := c.validate()
			if tt.expectError {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateRequiresJWTSecret(t *testing.T) {
	c := &Config{Env: "development"}
	assert.Error(t, c.validate())
}

func TestDSN(t *testing.T) {
	c := &Config{
		DBHost:     "db.internal",
		DBPort:     "5432",
		DBUser:     "omega",
		DBPassword: "hunter2",
		DBName:     "omegahub",
		DBSSLMode:  "require",
	}
	assert.Equal(t,
		"host=db.internal port=5432 user=omega password=hunter2 dbname=omegahub sslmode=require",
		c.DSN())
}
