package env

import (
	"testing"

	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type storage struct {
	Backend string  `env:"STORAGE_BACKEND" envDefault:"sqlite"`
	File    string  `env:"SQLITE_DATABASE_FILE"`
	Limit   int     `env:"LIMIT"`
	Ratio   float64 `env:"RATIO"`
	Enabled bool    `env:"ENABLED"`
	skipped string  `env:"SKIPPED"`
	NoTag   string
}

type provider struct {
	Model string `env:"LLM_MODEL,required"`
}

func TestMarshalEnv(t *testing.T) {
	out, err := MarshalEnv(
		&storage{Backend: "chromem", Limit: 7, Ratio: 0.9, Enabled: true, skipped: "x", NoTag: "y"},
		&provider{Model: "gpt 4"},
	)
	require.NoError(t, err)

	assert.Equal(t, "STORAGE_BACKEND=chromem\nLIMIT=7\nRATIO=0.9\nENABLED=true\nLLM_MODEL=\"gpt 4\"\n", out)

	parsed, err := godotenv.Unmarshal(out)
	require.NoError(t, err)
	assert.Equal(t, "gpt 4", parsed["LLM_MODEL"])
	assert.Equal(t, "chromem", parsed["STORAGE_BACKEND"])
}

func TestMarshalEnv_Empty(t *testing.T) {
	out, err := MarshalEnv(&storage{})
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestMarshalEnv_Errors(t *testing.T) {
	_, err := MarshalEnv(storage{})
	require.Error(t, err)

	_, err = MarshalEnv(&provider{Model: "a"}, &provider{Model: "b"})
	require.Error(t, err)
}
