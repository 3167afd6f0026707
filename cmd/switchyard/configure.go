package main

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"

	"github.com/sagarc03/switchyard/config"
	"github.com/sagarc03/switchyard/keybackend"
)

var configureCmd = &cobra.Command{
	Use:   "configure [path]",
	Short: "Write a config file interactively",
	Long: `Prompt for the common settings and write them to a YAML config file
(default: ./config.yaml). A random signing key is generated for the chosen
key id. Settings that are not prompted for keep their defaults.`,
	Args: cobra.MaximumNArgs(1),
	// The config being written may not exist or validate yet.
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE:              runConfigure,
}

func init() {
	rootCmd.AddCommand(configureCmd)
}

func runConfigure(_ *cobra.Command, args []string) error {
	path := "config.yaml"
	if len(args) > 0 {
		path = args[0]
	}

	if _, err := os.Stat(path); err == nil {
		prompt := promptui.Prompt{
			Label:     fmt.Sprintf("%s already exists. Overwrite it", path),
			IsConfirm: true,
		}
		if _, promptErr := prompt.Run(); promptErr != nil {
			fmt.Println("Cancelled.")
			return nil //nolint:nilerr // User cancelled, not an error
		}
	}

	envSelect := promptui.Select{
		Label: "Environment",
		Items: []string{config.EnvDevelopment, config.EnvProduction},
	}
	_, env, err := envSelect.Run()
	if err != nil {
		return handlePromptError(err)
	}

	portPrompt := promptui.Prompt{
		Label:   "Port",
		Default: "3000",
		Validate: func(input string) error {
			port, convErr := strconv.Atoi(input)
			if convErr != nil || port < 1 || port > 65535 {
				return errors.New("port must be a number between 1 and 65535")
			}
			return nil
		},
	}
	portStr, err := portPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}
	port, _ := strconv.Atoi(portStr)

	dbSelect := promptui.Select{
		Label: "Database",
		Items: []string{"sqlite", "postgres"},
	}
	_, dbType, err := dbSelect.Run()
	if err != nil {
		return handlePromptError(err)
	}

	defaultDSN := "switchyard.db"
	if dbType == "postgres" {
		defaultDSN = "postgres://localhost:5432/switchyard?sslmode=disable"
	}
	dsnPrompt := promptui.Prompt{
		Label:   "Connection string",
		Default: defaultDSN,
		Validate: func(input string) error {
			if input == "" {
				return errors.New("connection string is required")
			}
			return nil
		},
	}
	dsn, err := dsnPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	storagePrompt := promptui.Prompt{
		Label:   "Upload directory",
		Default: "./uploads",
	}
	storagePath, err := storagePrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	keyIDPrompt := promptui.Prompt{
		Label:   "Signing key id",
		Default: "default",
	}
	keyID, err := keyIDPrompt.Run()
	if err != nil {
		return handlePromptError(err)
	}

	docs := true
	docsPrompt := promptui.Prompt{
		Label:     "Serve API docs",
		IsConfirm: true,
		Default:   "y",
	}
	if _, promptErr := docsPrompt.Run(); promptErr != nil {
		if errors.Is(promptErr, promptui.ErrInterrupt) {
			return handlePromptError(promptErr)
		}
		docs = false
	}

	secret, err := newSecret()
	if err != nil {
		return err
	}

	level := "debug"
	if env == config.EnvProduction {
		level = "info"
	}

	scaffold := config.Scaffold{
		Env:      env,
		Server:   config.ScaffoldServer{Port: port},
		Database: config.ScaffoldDatabase{Type: dbType, DSN: dsn, AutoMigrate: true},
		Storage:  config.StorageConfig{Path: storagePath},
		Auth: config.ScaffoldAuth{
			KeyID: keyID,
			Keys: keybackend.KeysConfig{
				Inline: []keybackend.SigningKey{{KeyID: keyID, Secret: secret}},
			},
		},
		Docs: config.ScaffoldDocs{Enabled: docs},
		Log:  config.LogConfig{Level: level},
	}

	if err := scaffold.Save(path); err != nil {
		return err
	}

	fmt.Printf("Config written to %s.\n", path)
	return nil
}

func newSecret() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate signing key: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func handlePromptError(err error) error {
	if errors.Is(err, promptui.ErrInterrupt) {
		fmt.Println("\nCancelled.")
		os.Exit(0)
	}
	if errors.Is(err, promptui.ErrAbort) {
		fmt.Println("Cancelled.")
		return nil
	}
	return err
}
