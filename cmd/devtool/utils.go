package main

import (
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// getEnv retrieves an environment variable or returns a fallback
func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// dbURL builds the connection string from the environment, honoring DB_URL
// when set.
func dbURL() string {
	if url := os.Getenv("DB_URL"); url != "" {
		return url
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		getEnv("DB_USER", "dev"),
		getEnv("DB_PASSWORD", "change_this_secure_password"),
		getEnv("DB_HOST", "localhost"),
		getEnv("DB_PORT", "5432"),
		getEnv("DB_NAME", "draw10"))
}

// checkHostile checks for potentially dangerous strings in command arguments.
// It focuses on common shell injection patterns while being permissive enough
// for valid data like URLs (containing '&') and SQL (containing ';').
func checkHostile(inputs ...string) error {
	for _, s := range inputs {
		// Newlines/CR are always suspicious in command args as they can split commands
		if strings.ContainsAny(s, "\n\r") {
			return fmt.Errorf("hostile input detected: newlines or carriage returns")
		}

		// Null bytes are often used in exploit payloads
		if strings.Contains(s, "\x00") {
			return fmt.Errorf("hostile input detected: null byte")
		}

		dangerousPats := []string{"|", "`", "$(", "&&", "||", ">", "<"}
		for _, p := range dangerousPats {
			if strings.Contains(s, p) {
				return fmt.Errorf("hostile input detected: pattern %q in %q", p, s)
			}
		}
	}
	return nil
}

func getCommandOutput(name string, args ...string) (string, error) {
	if err := checkHostile(append([]string{name}, args...)...); err != nil {
		return "", err
	}
	// #nosec G204 - Generic command wrapper
	cmd := exec.Command(name, args...)
	out, err := cmd.Output()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(out)), nil
}

// runCommand runs a command silently
func runCommand(name string, args ...string) error {
	if err := checkHostile(append([]string{name}, args...)...); err != nil {
		return err
	}
	// #nosec G204 - Generic command wrapper
	cmd := exec.Command(name, args...)
	return cmd.Run()
}

// runCommandVerbose runs a command and pipes output to stdout/stderr
func runCommandVerbose(name string, args ...string) error {
	if err := checkHostile(append([]string{name}, args...)...); err != nil {
		return err
	}
	// #nosec G204 - Generic command wrapper
	cmd := exec.Command(name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
