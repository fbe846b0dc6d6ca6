package configutil

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// ReadEnv decodes environment variables into T using `envconfig` tags.
// A `.env` file in the cwd is loaded first when present, it never
// overrides variables that are already set.
func ReadEnv[T any](prefix string) (T, error) {
	var out T
	err := godotenv.Load()
	if err != nil && !os.IsNotExist(err) {
		return out, fmt.Errorf("load .env: %w", err)
	}
	err = envconfig.Process(prefix, &out)
	if err != nil {
		return out, err
	}
	return out, nil
}
