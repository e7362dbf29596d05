package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/jrsteele09/go-taskmaster/api"
	"github.com/jrsteele09/go-taskmaster/credentials"
	"github.com/jrsteele09/go-taskmaster/internal/config"
	"github.com/jrsteele09/go-taskmaster/internal/logging"
	"github.com/jrsteele09/go-taskmaster/internal/storage"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

// NowTimeFunc is the clock used for overdue and deadline output.
var NowTimeFunc = time.Now

type app struct {
	configPath string
	client     *api.Client
	closeStore func() error
}

// cliStorage keeps tokens on disk unless another persistent store is configured.
type cliStorage struct {
	config.StorageConfig
}

func (c cliStorage) GetStorageDriver() string {
	if driver := c.StorageConfig.GetStorageDriver(); driver != config.StorageDriverMemory {
		return driver
	}
	return config.StorageDriverFile
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:           "taskctl",
		Short:         "Manage your TaskMaster tasks from the terminal",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	root.PersistentFlags().StringVar(&a.configPath, "config", "", "path to a YAML config file (defaults to CONFIG_PATH, ./local.yaml, then env)")

	root.AddCommand(
		newLoginCmd(a),
		newRegisterCmd(a),
		newLogoutCmd(a),
		newWhoamiCmd(a),
		newResetPasswordCmd(a),
		newProfileCmd(a),
		newTasksCmd(a),
		newStatsCmd(a),
	)
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(a.configPath)
	if err != nil {
		return err
	}
	log.Logger = logging.NewWithWriter(cmd.ErrOrStderr(), cfg.GetEnv(), cfg.GetLogLevel())

	repo, closeStore, err := storage.Open(cmd.Context(), cliStorage{cfg}, 0)
	if err != nil {
		return fmt.Errorf("open credential storage: %w", err)
	}
	a.closeStore = closeStore

	creds, err := credentials.New(repo, api.NewTokenRefresher(cfg, nil), credentials.WithLogger(log.Logger))
	if err != nil {
		return err
	}
	a.client, err = api.New(cfg, creds, api.WithLogger(log.Logger))
	return err
}

func (a *app) close() {
	if a.closeStore == nil {
		return
	}
	if err := a.closeStore(); err != nil {
		log.Err(err).Msg("Failed to close credential storage")
	}
}

// password returns the flag value, or reads one line from stdin when the flag was not given.
func password(cmd *cobra.Command, flagValue, prompt string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	fmt.Fprint(cmd.ErrOrStderr(), prompt+": ")
	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read %s: %w", strings.ToLower(prompt), err)
	}
	if line = strings.TrimRight(line, "\r\n"); line == "" {
		return "", fmt.Errorf("%s is required", strings.ToLower(prompt))
	}
	return line, nil
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid task id %q", arg)
	}
	return id, nil
}
