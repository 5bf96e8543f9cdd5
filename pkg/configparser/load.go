package configparser

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

var ErrNoFilePath = errors.New("no file path provided")

// LoadYamlFile reads a flat YAML config file and exports its values as
// environment variables. Section names become prefixes: `database: host`
// turns into DATABASE_HOST. Variables that are already set win over the
// file, so the process environment always takes precedence.
//
// Only the subset of YAML the config files actually use is understood:
// nested sections, scalar values, comments and `${VAR:-default}`
// substitution. Lists and multi-line values are not.
func LoadYamlFile(filepath string) error {
	if filepath == "" {
		return ErrNoFilePath
	}

	file, err := os.Open(filepath)
	if err != nil {
		return fmt.Errorf("could not open YAML file: %w", err)
	}
	defer file.Close()

	var sections []string
	previousIndent := 0

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := scanner.Text()

		content := strings.TrimSpace(line)
		if content == "" || strings.HasPrefix(content, "#") {
			continue
		}

		indent := len(line) - len(strings.TrimLeft(line, " "))

		// Дедент закрывает секции, по одной на каждые два пробела
		if indent < previousIndent {
			for i := 0; i < (previousIndent-indent)/2 && len(sections) > 0; i++ {
				sections = sections[:len(sections)-1]
			}
		}
		previousIndent = indent

		// Section header: a bare "name:" with no value after it
		if strings.HasSuffix(content, ":") && !strings.Contains(content, ": ") {
			sections = append(sections, strings.TrimSuffix(content, ":"))
			continue
		}

		key, value, found := strings.Cut(content, ":")
		if !found {
			continue
		}
		key = strings.TrimSpace(key)
		value = strings.Trim(strings.TrimSpace(value), `"'`)
		if value == "" {
			continue
		}

		value = substituteEnv(value)

		name := strings.ToUpper(strings.Join(append(sections, key), "_"))
		if os.Getenv(name) == "" {
			if err := os.Setenv(name, value); err != nil {
				return fmt.Errorf("could not set env var %s: %w", name, err)
			}
		}
	}

	if err := scanner.Err(); err != nil {
		return fmt.Errorf("error reading YAML file: %w", err)
	}

	return nil
}

// substituteEnv resolves the `${VAR:-default}` form: the value of VAR when
// it is set and non-empty, the default otherwise. Any other value passes
// through unchanged.
func substituteEnv(value string) string {
	if !strings.HasPrefix(value, "${") || !strings.HasSuffix(value, "}") {
		return value
	}

	name, fallback, found := strings.Cut(value[2:len(value)-1], ":-")
	if !found {
		return value
	}

	if env := os.Getenv(strings.TrimSpace(name)); env != "" {
		return env
	}
	return strings.TrimSpace(fallback)
}
